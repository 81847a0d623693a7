// Package fetch retrieves the month's raw problem events and resolves the
// record sets they reference (recoveries, hosts, users) from the Zabbix API.
package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/zbxtools/zbxreport/internal/zabbix"
)

// throttleDelay is the courtesy pause between consecutive remote queries.
// It is a rate limit, not a retry mechanism.
const throttleDelay = 100 * time.Millisecond

// Fetcher pulls one calendar month of problem events, one bounded query per
// local day. Any single day's failure aborts the whole fetch; a report is
// never built from a partial month.
type Fetcher struct {
	client   zabbix.Client
	loc      *time.Location
	delay    time.Duration
	progress func(string)
}

// NewFetcher creates a Fetcher. loc determines the local midnight-to-midnight
// day windows; progress may be nil.
func NewFetcher(client zabbix.Client, loc *time.Location, progress func(string)) *Fetcher {
	return &Fetcher{
		client:   client,
		loc:      loc,
		delay:    throttleDelay,
		progress: progress,
	}
}

// FetchMonth returns every matching problem event of the given month,
// concatenated in day order. Within a day the API's clock/eventid ascending
// order is preserved.
func (f *Fetcher) FetchMonth(ctx context.Context, year int, month time.Month, severities []zabbix.Severity) ([]zabbix.Event, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, f.loc)
	last := first.AddDate(0, 1, -1)
	totalDays := last.Day()

	f.emit(fmt.Sprintf("Fetching events from %s to %s...",
		first.Format("2006-01-02"), last.Format("2006-01-02")))

	var all []zabbix.Event
	for day := 1; day <= totalDays; day++ {
		from := time.Date(year, month, day, 0, 0, 0, 0, f.loc)
		till := time.Date(year, month, day, 23, 59, 59, 0, f.loc)

		f.emit(fmt.Sprintf("Fetching day %d/%d: %s", day, totalDays, from.Format("2006-01-02")))

		events, err := f.client.Events(ctx, zabbix.EventQuery{
			From:       from,
			Till:       till,
			Severities: severities,
		})
		if err != nil {
			return nil, fmt.Errorf("fetching events for %s: %w", from.Format("2006-01-02"), err)
		}

		all = append(all, events...)
		time.Sleep(f.delay)
	}

	return all, nil
}

func (f *Fetcher) emit(msg string) {
	if f.progress != nil {
		f.progress(msg)
	}
}
