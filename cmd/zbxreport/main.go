// Package main is the entrypoint for the zbxreport CLI, which generates a
// monthly acknowledgement-SLA workbook from a Zabbix server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/zbxtools/zbxreport/internal/config"
	"github.com/zbxtools/zbxreport/internal/pipeline"
	"github.com/zbxtools/zbxreport/internal/zabbix"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("report generation failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"year", cfg.Report.Year,
		"month", int(cfg.Report.Month),
		"sla_minutes", cfg.Report.SLAMinutes,
		"output_dir", cfg.Report.OutputDir,
	)

	ctx := context.Background()

	// 2. Ensure the output directory exists and is writable
	if err := os.MkdirAll(cfg.Report.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// 3. Connectivity probe before starting the run
	client := zabbix.NewHTTPClient(cfg.Zabbix.URL, cfg.Zabbix.Token, cfg.Zabbix.Timeout)

	probeCtx, cancel := context.WithTimeout(ctx, cfg.Zabbix.ProbeTimeout)
	defer cancel()

	slog.Info("testing connection", "url", cfg.Zabbix.URL)
	version, err := client.Version(probeCtx)
	if err != nil {
		return fmt.Errorf("could not connect to the Zabbix API: %w", err)
	}
	slog.Info("connection successful", "server_version", version)

	// 4. Run the pipeline, streaming progress into the log
	sink := pipeline.SinkFunc(func(msg string) {
		slog.Info(msg)
	})

	p := pipeline.New(client, pipeline.Params{
		Year:                cfg.Report.Year,
		Month:               cfg.Report.Month,
		Severities:          cfg.Report.Severities,
		SLAThresholdMinutes: cfg.Report.SLAMinutes,
		OutputDir:           cfg.Report.OutputDir,
	}, sink)

	result, err := p.Run(ctx)
	if err != nil {
		failure := pipeline.Classify(err)
		slog.Error(failure.Message, "kind", failure.Kind.String())
		return err
	}

	if result.OutputPath != "" {
		slog.Info(result.Message, "run_id", result.RunID, "path", result.OutputPath, "events", result.EventCount)
	} else {
		slog.Info(result.Message, "run_id", result.RunID)
	}
	return nil
}
