package models

import "time"

// AckRow is one acknowledgement action, fanned out from its parent event.
type AckRow struct {
	EventTime  time.Time
	Host       string
	Problem    string
	User       string
	ActionType string
	Message    string
	AckTime    time.Time
}
