// Package config loads and validates the report settings from environment
// variables. The pipeline treats the resulting values as pre-validated.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/zbxtools/zbxreport/internal/zabbix"
)

// Config holds all configuration for one report run.
type Config struct {
	Zabbix ZabbixConfig
	Report ReportConfig
}

type ZabbixConfig struct {
	URL          string
	Token        string
	Timeout      time.Duration
	ProbeTimeout time.Duration
}

type ReportConfig struct {
	Year       int
	Month      time.Month
	Severities []zabbix.Severity
	SLAMinutes float64
	OutputDir  string
}

// Load reads configuration from ZBXREPORT_* environment variables and
// returns a validated Config. Year and month default to the previous
// calendar month.
func Load() (*Config, error) {
	defaultYear, defaultMonth := previousMonth(time.Now())

	severities, err := parseSeverities(envString("ZBXREPORT_SEVERITIES", "0,1,2,3,4,5"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Zabbix: ZabbixConfig{
			URL:          os.Getenv("ZBXREPORT_URL"),
			Token:        os.Getenv("ZBXREPORT_TOKEN"),
			Timeout:      envDuration("ZBXREPORT_TIMEOUT", 10*time.Minute),
			ProbeTimeout: envDuration("ZBXREPORT_PROBE_TIMEOUT", 10*time.Second),
		},
		Report: ReportConfig{
			Year:       envInt("ZBXREPORT_YEAR", defaultYear),
			Month:      time.Month(envInt("ZBXREPORT_MONTH", int(defaultMonth))),
			Severities: severities,
			SLAMinutes: envFloat("ZBXREPORT_SLA_MINUTES", 20),
			OutputDir:  envString("ZBXREPORT_OUTPUT_DIR", "."),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Zabbix.URL == "" {
		return fmt.Errorf("ZBXREPORT_URL is required")
	}
	if !strings.HasPrefix(c.Zabbix.URL, "http://") && !strings.HasPrefix(c.Zabbix.URL, "https://") {
		return fmt.Errorf("ZBXREPORT_URL must start with http:// or https://, got %q", c.Zabbix.URL)
	}
	if c.Zabbix.Token == "" {
		return fmt.Errorf("ZBXREPORT_TOKEN is required")
	}

	if c.Report.Year < 2000 || c.Report.Year > 2200 {
		return fmt.Errorf("ZBXREPORT_YEAR must be a four-digit year, got %d", c.Report.Year)
	}
	if c.Report.Month < time.January || c.Report.Month > time.December {
		return fmt.Errorf("ZBXREPORT_MONTH must be 1-12, got %d", int(c.Report.Month))
	}
	if len(c.Report.Severities) == 0 {
		return fmt.Errorf("ZBXREPORT_SEVERITIES must select at least one severity")
	}
	if c.Report.SLAMinutes <= 0 {
		return fmt.Errorf("ZBXREPORT_SLA_MINUTES must be positive, got %v", c.Report.SLAMinutes)
	}
	if c.Report.OutputDir == "" {
		return fmt.Errorf("ZBXREPORT_OUTPUT_DIR cannot be empty")
	}

	return nil
}

// parseSeverities parses a comma-separated list of severity codes 0-5,
// deduplicating while preserving order.
func parseSeverities(raw string) ([]zabbix.Severity, error) {
	var out []zabbix.Severity
	seen := make(map[zabbix.Severity]bool)

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 5 {
			return nil, fmt.Errorf("ZBXREPORT_SEVERITIES entries must be 0-5, got %q", part)
		}
		s := zabbix.Severity(n)
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	return out, nil
}

func previousMonth(now time.Time) (int, time.Month) {
	prev := now.AddDate(0, 0, -now.Day())
	return prev.Year(), prev.Month()
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func envFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
