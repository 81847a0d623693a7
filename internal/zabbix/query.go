package zabbix

import "time"

// EventQuery describes one bounded event.get request: a single local-day
// time window plus the severity filter. The remaining parameters are fixed
// to "active, resolved-type problem events" (source=trigger, object=trigger,
// value=problem) with embedded hosts, tags, alert counts and
// acknowledgements, sorted ascending by clock then eventid so result order
// is stable across runs.
type EventQuery struct {
	From       time.Time
	Till       time.Time
	Severities []Severity
}

// Params renders the query as an event.get parameter map.
func (q EventQuery) Params() map[string]any {
	sevs := make([]int, len(q.Severities))
	for i, s := range q.Severities {
		sevs[i] = int(s)
	}

	return map[string]any{
		"output":              []string{"eventid", "clock", "severity", "name", "r_eventid", "acknowledged"},
		"severities":          sevs,
		"source":              0,
		"object":              0,
		"value":               1,
		"time_from":           q.From.Unix(),
		"time_till":           q.Till.Unix(),
		"selectHosts":         []string{"hostid"},
		"selectTags":          "extend",
		"select_alerts":       "count",
		"select_acknowledges": "extend",
		"sortfield":           []string{"clock", "eventid"},
		"sortorder":           "ASC",
	}
}
