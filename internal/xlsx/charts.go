package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/zbxtools/zbxreport/pkg/models"
)

const (
	colorMet      = "00B050"
	colorViolated = "C00000"
	colorTrend    = "4472C4"
)

// addDailyTrendChart draws the stacked met/violated columns with the
// percent-met line on a secondary 0-100 axis, anchored next to the daily
// summary table. dataRows is the number of data rows on that sheet.
func addDailyTrendChart(f *excelize.File, dataRows int) error {
	sheet := SheetDailySLA
	last := dataRows + 1
	categories := fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last)

	columns := &excelize.Chart{
		Type: excelize.ColStacked,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("'%s'!$B$1", sheet),
				Categories: categories,
				Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
				Fill:       excelize.Fill{Type: "pattern", Color: []string{colorMet}, Pattern: 1},
			},
			{
				Name:       fmt.Sprintf("'%s'!$C$1", sheet),
				Categories: categories,
				Values:     fmt.Sprintf("'%s'!$C$2:$C$%d", sheet, last),
				Fill:       excelize.Fill{Type: "pattern", Color: []string{colorViolated}, Pattern: 1},
			},
		},
		Title:  []excelize.RichTextRun{{Text: "Daily SLA Trend"}},
		XAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Date"}}},
		YAxis:  excelize.ChartAxis{Title: []excelize.RichTextRun{{Text: "Event Count"}}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		Format: excelize.GraphicOptions{ScaleX: 2.5, ScaleY: 1.5},
	}

	zero, hundred := 0.0, 100.0
	line := &excelize.Chart{
		Type: excelize.Line,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$E$1", sheet),
			Categories: categories,
			Values:     fmt.Sprintf("'%s'!$E$2:$E$%d", sheet, last),
			Fill:       excelize.Fill{Type: "pattern", Color: []string{colorTrend}, Pattern: 1},
		}},
		YAxis: excelize.ChartAxis{
			Secondary: true,
			Minimum:   &zero,
			Maximum:   &hundred,
			Title:     []excelize.RichTextRun{{Text: "Percentage (%) Met"}},
		},
	}

	return f.AddChart(sheet, "G2", columns, line)
}

// addDashboard writes the two-row monthly summary table onto its own sheet
// and anchors the column and pie charts beside it.
func addDashboard(f *excelize.File, monthly []models.MonthlySummaryRow) error {
	sheet := SheetDashboard
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	if err := f.SetCellValue(sheet, "A1", "Status"); err != nil {
		return err
	}
	if err := f.SetCellValue(sheet, "B1", "Count"); err != nil {
		return err
	}
	for i, row := range monthly {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), row.Status); err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), row.Count); err != nil {
			return err
		}
	}

	// One single-cell series per status so each column keeps its own color.
	series := make([]excelize.ChartSeries, len(monthly))
	for i, row := range monthly {
		color := colorMet
		if row.Status == models.SLAViolated {
			color = colorViolated
		}
		series[i] = excelize.ChartSeries{
			Name:   fmt.Sprintf("'%s'!$A$%d", sheet, i+2),
			Values: fmt.Sprintf("'%s'!$B$%d", sheet, i+2),
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		}
	}

	columns := &excelize.Chart{
		Type:   excelize.Col,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: "Monthly SLA Summary (Count)"}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		Format: excelize.GraphicOptions{ScaleX: 1.5, ScaleY: 1.5},
	}
	if err := f.AddChart(sheet, "D2", columns); err != nil {
		return err
	}

	last := len(monthly) + 1
	vary := true
	pie := &excelize.Chart{
		Type:       excelize.Pie,
		VaryColors: &vary,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
		}},
		Title:    []excelize.RichTextRun{{Text: "Monthly SLA Distribution"}},
		PlotArea: excelize.ChartPlotArea{ShowPercent: true},
		Legend:   excelize.ChartLegend{Position: "bottom"},
		Format:   excelize.GraphicOptions{ScaleX: 1.5, ScaleY: 1.5},
	}
	return f.AddChart(sheet, "M2", pie)
}
