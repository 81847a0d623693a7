// Package report turns raw problem events into row-oriented tables and
// computes the acknowledgement-SLA aggregate views.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/zbxtools/zbxreport/internal/fetch"
	"github.com/zbxtools/zbxreport/internal/zabbix"
	"github.com/zbxtools/zbxreport/pkg/models"
)

const tagSeparator = "; "

// Normalize joins raw events with the resolved lookup tables, producing one
// ProblemRow per event and one AckRow per acknowledgement action. It is a
// pure function over its inputs; loc sets the timezone all timestamps are
// rendered in.
func Normalize(events []zabbix.Event, related fetch.RelatedData, loc *time.Location) ([]models.ProblemRow, []models.AckRow) {
	problemRows := make([]models.ProblemRow, 0, len(events))
	var ackRows []models.AckRow

	for _, ev := range events {
		start := time.Unix(ev.ClockUnix(), 0).In(loc)

		hostID := ""
		if len(ev.Hosts) > 0 {
			hostID = ev.Hosts[0].HostID
		}
		host := related.HostName(hostID)

		var end *time.Time
		var duration *time.Duration
		status := models.StatusProblem
		if ev.RecoveryID != "" && ev.RecoveryID != "0" {
			if ts, ok := related.RecoveryTimes[ev.RecoveryID]; ok {
				e := time.Unix(ts, 0).In(loc)
				d := e.Sub(start)
				end, duration = &e, &d
				status = models.StatusResolved
			}
		}

		var firstAckTime *time.Time
		var firstAckUser *string
		if len(ev.Acknowledges) > 0 {
			first := ev.Acknowledges[0]
			for _, ack := range ev.Acknowledges[1:] {
				if ack.ClockUnix() < first.ClockUnix() {
					first = ack
				}
			}
			t := time.Unix(first.ClockUnix(), 0).In(loc)
			u := related.UserName(first.UserID)
			firstAckTime, firstAckUser = &t, &u
		}

		problemRows = append(problemRows, models.ProblemRow{
			EventID:      ev.EventID,
			StartTime:    start,
			EndTime:      end,
			Duration:     duration,
			Severity:     zabbix.ParseSeverity(ev.Severity).Label(),
			Status:       status,
			Host:         host,
			Problem:      ev.Name,
			Acknowledged: ev.Acknowledged == "1",
			FirstAckTime: firstAckTime,
			FirstAckUser: firstAckUser,
			Actions:      dispatchSummary(ev.Alerts),
			Tags:         joinTags(ev.Tags),
		})

		for _, ack := range ev.Acknowledges {
			ackRows = append(ackRows, models.AckRow{
				EventTime:  start,
				Host:       host,
				Problem:    ev.Name,
				User:       related.UserName(ack.UserID),
				ActionType: zabbix.DecodeActions(ack.ActionCode()),
				Message:    ack.Message,
				AckTime:    time.Unix(ack.ClockUnix(), 0).In(loc),
			})
		}
	}

	return problemRows, ackRows
}

func dispatchSummary(alerts string) string {
	if alerts == "" {
		alerts = "0"
	}
	return fmt.Sprintf("Messages sent: %s", alerts)
}

func joinTags(tags []zabbix.Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = fmt.Sprintf("%s=%s", t.Tag, t.Value)
	}
	return strings.Join(parts, tagSeparator)
}
