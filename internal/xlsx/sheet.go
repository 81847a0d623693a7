// Package xlsx renders the normalized tables and SLA views into a styled
// multi-sheet workbook.
package xlsx

import (
	"fmt"
	"time"

	"github.com/zbxtools/zbxreport/internal/report"
	"github.com/zbxtools/zbxreport/pkg/models"
)

// ColumnKind selects the cell style and width policy for a column.
type ColumnKind int

const (
	ColText ColumnKind = iota
	ColInt
	ColFloat2 // two-decimal number format
	ColDateTime
	ColDate
)

// Column describes one sheet column. Wide marks the free-form tag column,
// which gets a fixed extra-wide width instead of auto-sizing.
type Column struct {
	Header string
	Kind   ColumnKind
	Wide   bool
}

// Sheet is a writer-agnostic table: a name, typed columns and row cells.
// Cells hold string, int, float64, time.Time or nil (rendered empty).
type Sheet struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Sheet names, in workbook order.
const (
	SheetProblems     = "Problems"
	SheetActions      = "Actions"
	SheetSLADetails   = "SLA Details"
	SheetDailySLA     = "Daily SLA Summary"
	SheetDailyVolume  = "Daily Event Volume"
	SheetTopProblems  = "Top 10 Problems"
	SheetUserProd     = "User Productivity"
	SheetDashboard    = "Monthly Dashboard"
)

// BuildSheets assembles the workbook's data sheets in their fixed order.
// rep may be nil, in which case only the Problems and Actions sheets are
// produced.
func BuildSheets(problems []models.ProblemRow, acks []models.AckRow, rep *report.SLAReport) []Sheet {
	sheets := []Sheet{problemsSheet(problems), actionsSheet(acks)}
	if rep != nil {
		sheets = append(sheets,
			slaDetailsSheet(rep.Details),
			dailySLASheet(rep.DailySummary),
			dailyVolumeSheet(rep.DailyVolume),
			topProblemsSheet(rep.TopProblems),
			userProductivitySheet(rep.UserProductivity),
		)
	}
	return sheets
}

func problemsSheet(rows []models.ProblemRow) Sheet {
	s := Sheet{
		Name: SheetProblems,
		Columns: []Column{
			{Header: "Time", Kind: ColDateTime},
			{Header: "Severity"},
			{Header: "Recovery Time", Kind: ColDateTime},
			{Header: "Status"},
			{Header: "Host"},
			{Header: "Problem"},
			{Header: "Duration"},
			{Header: "Ack"},
			{Header: "Actions"},
			{Header: "Tags", Wide: true},
		},
	}
	for _, r := range rows {
		ack := "No"
		if r.Acknowledged {
			ack = "Yes"
		}
		s.Rows = append(s.Rows, []any{
			r.StartTime,
			r.Severity,
			timeCell(r.EndTime),
			r.Status,
			r.Host,
			r.Problem,
			durationCell(r.Duration),
			ack,
			r.Actions,
			r.Tags,
		})
	}
	return s
}

func actionsSheet(rows []models.AckRow) Sheet {
	s := Sheet{
		Name: SheetActions,
		Columns: []Column{
			{Header: "Event Time", Kind: ColDateTime},
			{Header: "Host"},
			{Header: "Problem"},
			{Header: "User"},
			{Header: "Action Type"},
			{Header: "Message"},
			{Header: "Ack Time", Kind: ColDateTime},
		},
	}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{
			r.EventTime, r.Host, r.Problem, r.User, r.ActionType, r.Message, r.AckTime,
		})
	}
	return s
}

func slaDetailsSheet(rows []models.SLADetailRow) Sheet {
	s := Sheet{
		Name: SheetSLADetails,
		Columns: []Column{
			{Header: "EventID"},
			{Header: "Host"},
			{Header: "Problem"},
			{Header: "Time", Kind: ColDateTime},
			{Header: "First Ack Time", Kind: ColDateTime},
			{Header: "First Ack User"},
			{Header: "Ack Duration (min)", Kind: ColFloat2},
			{Header: "SLA Status"},
		},
	}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{
			r.EventID, r.Host, r.Problem, r.StartTime, r.FirstAckTime,
			r.FirstAckUser, r.AckDurationMin, r.Status,
		})
	}
	return s
}

func dailySLASheet(rows []models.DailySLARow) Sheet {
	s := Sheet{
		Name: SheetDailySLA,
		Columns: []Column{
			{Header: "Date", Kind: ColDate},
			{Header: "Met", Kind: ColInt},
			{Header: "Violated", Kind: ColInt},
			{Header: "Total Acks", Kind: ColInt},
			{Header: "% Met", Kind: ColFloat2},
		},
	}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{r.Date, r.Met, r.Violated, r.Total, r.PercentMet})
	}
	return s
}

func dailyVolumeSheet(rows []models.DailyVolumeRow) Sheet {
	s := Sheet{
		Name: SheetDailyVolume,
		Columns: []Column{
			{Header: "Date", Kind: ColDate},
			{Header: "Total Events", Kind: ColInt},
		},
	}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{r.Date, r.TotalEvents})
	}
	return s
}

func topProblemsSheet(rows []models.TopProblemRow) Sheet {
	s := Sheet{
		Name: SheetTopProblems,
		Columns: []Column{
			{Header: "Problem"},
			{Header: "Count", Kind: ColInt},
		},
	}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{r.Problem, r.Count})
	}
	return s
}

func userProductivitySheet(rows []models.UserProductivityRow) Sheet {
	s := Sheet{
		Name: SheetUserProd,
		Columns: []Column{
			{Header: "First Ack User"},
			{Header: "Total Acks", Kind: ColInt},
			{Header: "SLA Violations", Kind: ColInt},
		},
	}
	for _, r := range rows {
		s.Rows = append(s.Rows, []any{r.User, r.TotalAcks, r.SLAViolations})
	}
	return s
}

func timeCell(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func durationCell(d *time.Duration) any {
	if d == nil {
		return nil
	}
	return formatDuration(*d)
}

// formatDuration renders "HH:MM:SS", with a day prefix past 24 hours.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, h, m, s)
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
