package xlsx

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/zbxtools/zbxreport/pkg/models"
)

// ErrFilesystem marks failures writing the final workbook to disk.
var ErrFilesystem = errors.New("cannot write report file")

const (
	filenamePrefix = "zabbix_full_report"
	tableStyle     = "TableStyleMedium9"
	maxColWidth    = 60
	dateColWidth   = 20
	wideColWidth   = 80
)

// Writer serializes sheets into one timestamped .xlsx file per run.
type Writer struct {
	outputDir string
	now       func() time.Time
	progress  func(string)
}

// NewWriter creates a Writer targeting outputDir; progress may be nil.
func NewWriter(outputDir string, progress func(string)) *Writer {
	return &Writer{outputDir: outputDir, now: time.Now, progress: progress}
}

// Write renders all non-empty sheets plus, when monthly data is present,
// the daily trend chart and the dashboard sheet. It returns the path of the
// written file. The filename embeds a second-resolution timestamp so
// repeated runs never overwrite each other.
func (w *Writer) Write(year int, month time.Month, sheets []Sheet, monthly []models.MonthlySummaryRow) (string, error) {
	f := excelize.NewFile()
	defer f.Close()

	st, err := newStyles(f)
	if err != nil {
		return "", fmt.Errorf("creating styles: %w", err)
	}

	defaultSheet := f.GetSheetName(0)
	first := true
	written := make(map[string]int)
	for _, sheet := range sheets {
		if len(sheet.Rows) == 0 {
			w.emit(fmt.Sprintf("Warning: Skipping empty sheet: %s", sheet.Name))
			continue
		}

		if first {
			if err := f.SetSheetName(defaultSheet, sheet.Name); err != nil {
				return "", fmt.Errorf("creating sheet %s: %w", sheet.Name, err)
			}
			first = false
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return "", fmt.Errorf("creating sheet %s: %w", sheet.Name, err)
		}

		if err := w.writeSheet(f, st, sheet); err != nil {
			return "", fmt.Errorf("writing sheet %s: %w", sheet.Name, err)
		}
		written[sheet.Name] = len(sheet.Rows)
	}

	if first {
		return "", errors.New("no non-empty sheets to write")
	}

	if len(monthly) > 0 {
		if n, ok := written[SheetDailySLA]; ok {
			if err := addDailyTrendChart(f, n); err != nil {
				return "", fmt.Errorf("adding daily trend chart: %w", err)
			}
		}
		if err := addDashboard(f, monthly); err != nil {
			return "", fmt.Errorf("adding dashboard: %w", err)
		}
	} else {
		w.emit("Warning: Skipping chart generation as SLA data is missing.")
	}

	path := filepath.Join(w.outputDir, fmt.Sprintf("%s_%d_%02d_%s.xlsx",
		filenamePrefix, year, int(month), w.now().Format("20060102-150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("%w: %v", ErrFilesystem, err)
	}
	return path, nil
}

func (w *Writer) writeSheet(f *excelize.File, st styles, s Sheet) error {
	for c, col := range s.Columns {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(s.Name, cell, col.Header); err != nil {
			return err
		}
	}

	for r, row := range s.Rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(s.Name, cell, v); err != nil {
				return err
			}
		}
	}

	lastRow := len(s.Rows) + 1
	for c, col := range s.Columns {
		if styleID := st.forKind(col.Kind); styleID != 0 {
			top, _ := excelize.CoordinatesToCellName(c+1, 2)
			bottom, _ := excelize.CoordinatesToCellName(c+1, lastRow)
			if err := f.SetCellStyle(s.Name, top, bottom, styleID); err != nil {
				return err
			}
		}

		colName, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.Name, colName, colName, columnWidth(col, s.Rows, c)); err != nil {
			return err
		}
	}

	lastCell, err := excelize.CoordinatesToCellName(len(s.Columns), lastRow)
	if err != nil {
		return err
	}
	if err := f.AddTable(s.Name, &excelize.Table{
		Range:     "A1:" + lastCell,
		Name:      tableName(s.Name),
		StyleName: tableStyle,
	}); err != nil {
		return err
	}

	if err := f.SetPanes(s.Name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return applyConditionalFills(f, st, s, lastRow)
}

// applyConditionalFills colors severity and SLA-status cells by exact text
// match, using the classic Excel good/neutral/bad palette.
func applyConditionalFills(f *excelize.File, st styles, s Sheet, lastRow int) error {
	for c, col := range s.Columns {
		var fills []textFill
		switch col.Header {
		case "Severity":
			fills = st.severityFills
		case "SLA Status":
			fills = st.slaFills
		default:
			continue
		}

		top, _ := excelize.CoordinatesToCellName(c+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(c+1, lastRow)
		ref := top + ":" + bottom
		for _, fill := range fills {
			styleID := fill.style
			err := f.SetConditionalFormat(s.Name, ref, []excelize.ConditionalFormatOptions{{
				Type:     "cell",
				Criteria: "equal to",
				Value:    fmt.Sprintf("%q", fill.text),
				Format:   styleID,
			}})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

type textFill struct {
	text  string
	style int
}

type styles struct {
	dateTime      int
	date          int
	float2        int
	severityFills []textFill
	slaFills      []textFill
}

func (st styles) forKind(k ColumnKind) int {
	switch k {
	case ColDateTime:
		return st.dateTime
	case ColDate:
		return st.date
	case ColFloat2:
		return st.float2
	default:
		return 0
	}
}

func newStyles(f *excelize.File) (styles, error) {
	var st styles
	var err error

	dtFmt := "yyyy-mm-dd hh:mm:ss"
	if st.dateTime, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dtFmt}); err != nil {
		return st, err
	}
	dFmt := "yyyy-mm-dd"
	if st.date, err = f.NewStyle(&excelize.Style{CustomNumFmt: &dFmt}); err != nil {
		return st, err
	}
	fFmt := "0.00"
	if st.float2, err = f.NewStyle(&excelize.Style{CustomNumFmt: &fFmt}); err != nil {
		return st, err
	}

	fill := func(bg, fg string) (int, error) {
		return f.NewConditionalStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{bg}, Pattern: 1},
			Font: &excelize.Font{Color: fg},
		})
	}

	disaster, err := fill("FFC7CE", "9C0006")
	if err != nil {
		return st, err
	}
	high, err := fill("FFEB9C", "9C6500")
	if err != nil {
		return st, err
	}
	average, err := fill("FFFFCC", "595959")
	if err != nil {
		return st, err
	}
	st.severityFills = []textFill{
		{text: "Disaster", style: disaster},
		{text: "High", style: high},
		{text: "Average", style: average},
	}

	met, err := fill("C6EFCE", "006100")
	if err != nil {
		return st, err
	}
	violated, err := fill("FFC7CE", "9C0006")
	if err != nil {
		return st, err
	}
	st.slaFills = []textFill{
		{text: models.SLAMet, style: met},
		{text: models.SLAViolated, style: violated},
	}

	return st, nil
}

func columnWidth(col Column, rows [][]any, idx int) float64 {
	if col.Wide {
		return wideColWidth
	}
	if col.Kind == ColDateTime || col.Kind == ColDate {
		return dateColWidth
	}

	width := len(col.Header)
	for _, row := range rows {
		if l := len(cellText(row[idx], col.Kind)); l > width {
			width = l
		}
	}
	if width+2 > maxColWidth {
		return maxColWidth
	}
	return float64(width + 2)
}

func cellText(v any, kind ColumnKind) string {
	if v == nil {
		return ""
	}
	if kind == ColFloat2 {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprint(v)
}

var tableNameSanitizer = regexp.MustCompile(`[^A-Za-z0-9]`)

// tableName derives a valid, unique table identifier from the sheet name.
func tableName(sheet string) string {
	return "tbl" + tableNameSanitizer.ReplaceAllString(sheet, "")
}

func (w *Writer) emit(msg string) {
	if w.progress != nil {
		w.progress(msg)
	}
}
