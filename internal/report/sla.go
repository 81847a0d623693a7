package report

import (
	"math"
	"sort"
	"time"

	"github.com/zbxtools/zbxreport/pkg/models"
)

const topProblemsLimit = 10

// SLAReport bundles the aggregate views derived from the acknowledged
// problem rows. It is nil when no row carries a first-acknowledgement time,
// in which case the workbook contains only the Problems and Actions sheets.
type SLAReport struct {
	Details          []models.SLADetailRow
	DailySummary     []models.DailySLARow
	DailyVolume      []models.DailyVolumeRow
	TopProblems      []models.TopProblemRow
	UserProductivity []models.UserProductivityRow
	MonthlySummary   []models.MonthlySummaryRow
}

// Analyze computes all SLA views for the given threshold in minutes.
// The met/violated decision uses the unrounded latency and a non-strict
// comparison: exactly at the threshold counts as met. All views are
// deterministically ordered so identical inputs yield identical tables.
func Analyze(rows []models.ProblemRow, thresholdMinutes float64) *SLAReport {
	details := slaDetails(rows, thresholdMinutes)
	if len(details) == 0 {
		return nil
	}

	daily := dailySummary(details)

	return &SLAReport{
		Details:          details,
		DailySummary:     daily,
		DailyVolume:      dailyVolume(rows),
		TopProblems:      topProblems(rows),
		UserProductivity: userProductivity(details),
		MonthlySummary:   monthlySummary(daily),
	}
}

func slaDetails(rows []models.ProblemRow, thresholdMinutes float64) []models.SLADetailRow {
	var details []models.SLADetailRow
	for _, row := range rows {
		if row.FirstAckTime == nil || row.FirstAckUser == nil {
			continue
		}

		latency := row.FirstAckTime.Sub(row.StartTime)
		status := models.SLAViolated
		if latency.Seconds() <= thresholdMinutes*60 {
			status = models.SLAMet
		}

		details = append(details, models.SLADetailRow{
			EventID:        row.EventID,
			Host:           row.Host,
			Problem:        row.Problem,
			StartTime:      row.StartTime,
			FirstAckTime:   *row.FirstAckTime,
			FirstAckUser:   *row.FirstAckUser,
			AckDurationMin: round2(latency.Seconds() / 60),
			Status:         status,
		})
	}
	return details
}

func dailySummary(details []models.SLADetailRow) []models.DailySLARow {
	type counts struct {
		met      int
		violated int
	}
	byDate := make(map[time.Time]*counts)

	for _, d := range details {
		date := truncateToDay(d.StartTime)
		c, ok := byDate[date]
		if !ok {
			c = &counts{}
			byDate[date] = c
		}
		if d.Status == models.SLAMet {
			c.met++
		} else {
			c.violated++
		}
	}

	rows := make([]models.DailySLARow, 0, len(byDate))
	for date, c := range byDate {
		total := c.met + c.violated
		rows = append(rows, models.DailySLARow{
			Date:       date,
			Met:        c.met,
			Violated:   c.violated,
			Total:      total,
			PercentMet: round2(float64(c.met) / float64(total) * 100),
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })
	return rows
}

func dailyVolume(rows []models.ProblemRow) []models.DailyVolumeRow {
	byDate := make(map[time.Time]int)
	for _, row := range rows {
		byDate[truncateToDay(row.StartTime)]++
	}

	volume := make([]models.DailyVolumeRow, 0, len(byDate))
	for date, n := range byDate {
		volume = append(volume, models.DailyVolumeRow{Date: date, TotalEvents: n})
	}

	sort.Slice(volume, func(i, j int) bool { return volume[i].Date.Before(volume[j].Date) })
	return volume
}

func topProblems(rows []models.ProblemRow) []models.TopProblemRow {
	byTitle := make(map[string]int)
	for _, row := range rows {
		byTitle[row.Problem]++
	}

	top := make([]models.TopProblemRow, 0, len(byTitle))
	for title, n := range byTitle {
		top = append(top, models.TopProblemRow{Problem: title, Count: n})
	}

	// Count descending, title ascending on ties, so reruns are stable.
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Problem < top[j].Problem
	})

	if len(top) > topProblemsLimit {
		top = top[:topProblemsLimit]
	}
	return top
}

func userProductivity(details []models.SLADetailRow) []models.UserProductivityRow {
	type stats struct {
		acks       int
		violations int
	}
	byUser := make(map[string]*stats)

	for _, d := range details {
		s, ok := byUser[d.FirstAckUser]
		if !ok {
			s = &stats{}
			byUser[d.FirstAckUser] = s
		}
		s.acks++
		if d.Status == models.SLAViolated {
			s.violations++
		}
	}

	rows := make([]models.UserProductivityRow, 0, len(byUser))
	for user, s := range byUser {
		rows = append(rows, models.UserProductivityRow{
			User:          user,
			TotalAcks:     s.acks,
			SLAViolations: s.violations,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalAcks != rows[j].TotalAcks {
			return rows[i].TotalAcks > rows[j].TotalAcks
		}
		return rows[i].User < rows[j].User
	})
	return rows
}

func monthlySummary(daily []models.DailySLARow) []models.MonthlySummaryRow {
	var met, violated int
	for _, d := range daily {
		met += d.Met
		violated += d.Violated
	}
	return []models.MonthlySummaryRow{
		{Status: models.SLAMet, Count: met},
		{Status: models.SLAViolated, Count: violated},
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
