// Package pipeline sequences the report run: fetch, resolve, normalize,
// analyze, write. The run is strictly sequential with no internal
// concurrency and no retry; the first error aborts it.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zbxtools/zbxreport/internal/fetch"
	"github.com/zbxtools/zbxreport/internal/report"
	"github.com/zbxtools/zbxreport/internal/xlsx"
	"github.com/zbxtools/zbxreport/internal/zabbix"
	"github.com/zbxtools/zbxreport/pkg/models"
)

// Sink receives the ordered, human-readable progress messages emitted while
// the pipeline advances. Calls happen synchronously on the pipeline's
// goroutine.
type Sink interface {
	Progress(msg string)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(string)

func (fn SinkFunc) Progress(msg string) { fn(msg) }

// Params are the pre-validated inputs of one report run.
type Params struct {
	Year                int
	Month               time.Month
	Severities          []zabbix.Severity
	SLAThresholdMinutes float64
	OutputDir           string
}

// Result is the terminal outcome of a successful run. OutputPath is empty
// when the run ended early with nothing to report; Message then explains
// why.
type Result struct {
	RunID      uuid.UUID
	OutputPath string
	EventCount int
	Message    string
}

// Pipeline owns one report generation run end to end.
type Pipeline struct {
	client zabbix.Client
	params Params
	sink   Sink
	loc    *time.Location
	now    func() time.Time
}

// New creates a Pipeline. The client is constructed by the caller and used
// exclusively by this run; sink may be nil.
func New(client zabbix.Client, params Params, sink Sink) *Pipeline {
	return &Pipeline{
		client: client,
		params: params,
		sink:   sink,
		loc:    time.Local,
		now:    time.Now,
	}
}

// Run executes the full pipeline and returns its terminal outcome. Any
// error aborts the run immediately; no partial workbook is left usable.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	runID := uuid.New()
	started := p.now()
	p.emit("Starting report generation...")

	fetcher := fetch.NewFetcher(p.client, p.loc, p.emit)
	events, err := fetcher.FetchMonth(ctx, p.params.Year, p.params.Month, p.params.Severities)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		msg := "No events found for the selected period and severities. Exiting."
		p.emit(msg)
		return &Result{RunID: runID, Message: msg}, nil
	}
	p.emit(fmt.Sprintf("Total events found: %d.", len(events)))

	resolver := fetch.NewResolver(p.client, p.emit)
	related, err := resolver.Resolve(ctx, events)
	if err != nil {
		return nil, err
	}

	p.emit("Processing events and building reports...")
	problemRows, ackRows := report.Normalize(events, related, p.loc)

	p.emit("Generating SLA analysis reports...")
	rep := report.Analyze(problemRows, p.params.SLAThresholdMinutes)
	if rep == nil {
		p.emit("Warning: No acknowledged events found to generate SLA reports.")
	}

	sheets := xlsx.BuildSheets(problemRows, ackRows, rep)
	if !anyNonEmpty(sheets) {
		msg := "No data available to generate a report."
		p.emit(msg)
		return &Result{RunID: runID, EventCount: len(events), Message: msg}, nil
	}

	p.emit("Saving consolidated Excel report with charts...")
	writer := xlsx.NewWriter(p.params.OutputDir, p.emit)
	path, err := writer.Write(p.params.Year, p.params.Month, sheets, monthlyRows(rep))
	if err != nil {
		return nil, err
	}
	p.emit(fmt.Sprintf("Full report with dashboards exported to: %s", path))

	p.emit(fmt.Sprintf("Process completed in %.2f seconds.", p.now().Sub(started).Seconds()))
	return &Result{
		RunID:      runID,
		OutputPath: path,
		EventCount: len(events),
		Message:    fmt.Sprintf("Report generated successfully in %s", p.params.OutputDir),
	}, nil
}

func (p *Pipeline) emit(msg string) {
	if p.sink != nil {
		p.sink.Progress(msg)
	}
}

func anyNonEmpty(sheets []xlsx.Sheet) bool {
	for _, s := range sheets {
		if len(s.Rows) > 0 {
			return true
		}
	}
	return false
}

func monthlyRows(rep *report.SLAReport) []models.MonthlySummaryRow {
	if rep == nil {
		return nil
	}
	return rep.MonthlySummary
}
