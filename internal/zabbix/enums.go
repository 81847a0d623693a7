package zabbix

import (
	"strconv"
	"strings"
)

// Severity is the 0-5 problem severity scale.
type Severity int

const (
	SeverityNotClassified Severity = iota
	SeverityInformation
	SeverityWarning
	SeverityAverage
	SeverityHigh
	SeverityDisaster
)

// Label returns the human-readable severity name. Codes outside 0-5 fall
// back to the not-classified label, mirroring how the API treats them.
func (s Severity) Label() string {
	switch s {
	case SeverityInformation:
		return "Information"
	case SeverityWarning:
		return "Warning"
	case SeverityAverage:
		return "Average"
	case SeverityHigh:
		return "High"
	case SeverityDisaster:
		return "Disaster"
	default:
		return "Not classified"
	}
}

// ParseSeverity converts the API's string severity code to a Severity.
func ParseSeverity(code string) Severity {
	n, err := strconv.Atoi(code)
	if err != nil || n < 0 || n > 5 {
		return SeverityNotClassified
	}
	return Severity(n)
}

// ActionType is the acknowledgement action bitmask.
type ActionType int

const (
	ActionCloseProblem     ActionType = 1 << iota // 1
	ActionAcknowledgeEvent                        // 2
	ActionAddComment                              // 4
	ActionChangeSeverity                          // 8
)

const (
	actionSeparator    = " + "
	unknownActionLabel = "Unknown Action"
)

// label mapping is intentionally a closed switch so an unhandled bit is a
// test failure, not a silent dictionary miss.
func (a ActionType) label() string {
	switch a {
	case ActionCloseProblem:
		return "Close Problem"
	case ActionAcknowledgeEvent:
		return "Acknowledge Event"
	case ActionAddComment:
		return "Add Comment"
	case ActionChangeSeverity:
		return "Change Severity"
	default:
		return unknownActionLabel
	}
}

// DecodeActions expands an acknowledgement action bitmask into a " + "
// separated list of action labels. A code with no known bits decodes to
// "Unknown Action".
func DecodeActions(code int) string {
	known := []ActionType{ActionCloseProblem, ActionAcknowledgeEvent, ActionAddComment, ActionChangeSeverity}

	var labels []string
	for _, a := range known {
		if code&int(a) != 0 {
			labels = append(labels, a.label())
		}
	}
	if len(labels) == 0 {
		return unknownActionLabel
	}
	return strings.Join(labels, actionSeparator)
}
