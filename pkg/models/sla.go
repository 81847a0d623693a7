package models

import "time"

// SLA status labels.
const (
	SLAMet      = "Met"
	SLAViolated = "Violated"
)

// SLADetailRow is the per-event SLA classification for an acknowledged
// problem. AckDurationMin is rounded to two decimals for display; the
// met/violated decision is made on the unrounded latency.
type SLADetailRow struct {
	EventID        string
	Host           string
	Problem        string
	StartTime      time.Time
	FirstAckTime   time.Time
	FirstAckUser   string
	AckDurationMin float64
	Status         string
}

// DailySLARow is the met/violated breakdown for one calendar date.
type DailySLARow struct {
	Date       time.Time
	Met        int
	Violated   int
	Total      int
	PercentMet float64
}

// DailyVolumeRow counts all problem events (acknowledged or not) per date.
type DailyVolumeRow struct {
	Date        time.Time
	TotalEvents int
}

// TopProblemRow is one entry of the top-10 recurring problem titles.
type TopProblemRow struct {
	Problem string
	Count   int
}

// UserProductivityRow aggregates first-acknowledgement activity per user.
type UserProductivityRow struct {
	User          string
	TotalAcks     int
	SLAViolations int
}

// MonthlySummaryRow is one of the two Met/Violated totals feeding the
// dashboard charts.
type MonthlySummaryRow struct {
	Status string
	Count  int
}
