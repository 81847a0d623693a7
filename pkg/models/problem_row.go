package models

import "time"

// Status labels for a problem row.
const (
	StatusProblem  = "Problem"
	StatusResolved = "Resolved"
)

// HostFallback is shown when an event references no resolvable host.
const HostFallback = "N/A"

// ProblemRow is one normalized problem event with all lookups applied.
// EndTime and Duration are both nil while the problem is still open, and
// FirstAckTime and FirstAckUser are both nil when no acknowledgement
// exists; the pairs are never half-set.
type ProblemRow struct {
	EventID      string
	StartTime    time.Time
	EndTime      *time.Time
	Duration     *time.Duration
	Severity     string
	Status       string
	Host         string
	Problem      string
	Acknowledged bool
	FirstAckTime *time.Time
	FirstAckUser *string
	Actions      string
	Tags         string
}
