package zabbix

import "strconv"

// Event is a raw problem event as returned by event.get. Zabbix serializes
// every scalar as a string, so numeric fields stay strings here and are
// converted at the edges.
type Event struct {
	EventID      string        `json:"eventid"`
	Clock        string        `json:"clock"`
	Severity     string        `json:"severity"`
	Name         string        `json:"name"`
	RecoveryID   string        `json:"r_eventid"`
	Acknowledged string        `json:"acknowledged"`
	Hosts        []EventHost   `json:"hosts"`
	Tags         []Tag         `json:"tags"`
	Alerts       string        `json:"alerts"`
	Acknowledges []Acknowledge `json:"acknowledges"`
}

// EventHost is the hostid-only host reference embedded in an event.
type EventHost struct {
	HostID string `json:"hostid"`
}

// Tag is one (key, value) tag pair attached to an event.
type Tag struct {
	Tag   string `json:"tag"`
	Value string `json:"value"`
}

// Acknowledge is one acknowledgement action attached to an event.
type Acknowledge struct {
	UserID  string `json:"userid"`
	Clock   string `json:"clock"`
	Action  string `json:"action"`
	Message string `json:"message"`
}

// Host is a host record from host.get.
type Host struct {
	HostID string `json:"hostid"`
	Name   string `json:"name"`
}

// User is a user record from user.get.
type User struct {
	UserID  string `json:"userid"`
	Alias   string `json:"alias"`
	Name    string `json:"name"`
	Surname string `json:"surname"`
}

// ClockUnix returns the event occurrence time as epoch seconds.
func (e Event) ClockUnix() int64 {
	return parseClock(e.Clock)
}

// ClockUnix returns the acknowledgement time as epoch seconds.
func (a Acknowledge) ClockUnix() int64 {
	return parseClock(a.Clock)
}

// ActionCode returns the acknowledgement action bitmask as an int.
func (a Acknowledge) ActionCode() int {
	n, _ := strconv.Atoi(a.Action)
	return n
}

func parseClock(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
