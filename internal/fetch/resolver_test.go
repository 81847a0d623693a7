package fetch

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/zbxtools/zbxreport/internal/zabbix"
)

func newTestResolver(client zabbix.Client) *Resolver {
	r := NewResolver(client, nil)
	r.delay = 0
	return r
}

func TestResolve_EmptyEvents_NoCalls(t *testing.T) {
	fake := &fakeClient{}
	r := newTestResolver(fake)

	related, err := r.Resolve(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fake.byIDBatches) != 0 || len(fake.hostBatches) != 0 || len(fake.userBatches) != 0 {
		t.Errorf("expected no remote calls, got byID=%d hosts=%d users=%d",
			len(fake.byIDBatches), len(fake.hostBatches), len(fake.userBatches))
	}
	if len(related.RecoveryTimes) != 0 || len(related.HostNames) != 0 || len(related.UserNames) != 0 {
		t.Errorf("expected empty lookup tables, got %+v", related)
	}
}

func TestResolve_CollectsDistinctSortedIDs(t *testing.T) {
	events := []zabbix.Event{
		{
			RecoveryID: "20",
			Hosts:      []zabbix.EventHost{{HostID: "9"}, {HostID: "3"}},
			Acknowledges: []zabbix.Acknowledge{
				{UserID: "7"}, {UserID: "2"},
			},
		},
		{
			RecoveryID:   "10",
			Hosts:        []zabbix.EventHost{{HostID: "3"}},
			Acknowledges: []zabbix.Acknowledge{{UserID: "7"}},
		},
		{RecoveryID: "0"}, // never resolved
		{RecoveryID: ""},
	}

	fake := &fakeClient{}
	r := newTestResolver(fake)

	if _, err := r.Resolve(context.Background(), events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fake.byIDBatches) != 1 {
		t.Fatalf("expected 1 recovery batch, got %d", len(fake.byIDBatches))
	}
	gotRecoveries := fake.byIDBatches[0]
	if len(gotRecoveries) != 2 || gotRecoveries[0] != "10" || gotRecoveries[1] != "20" {
		t.Errorf("unexpected recovery ids: %v", gotRecoveries)
	}

	if len(fake.hostBatches) != 1 {
		t.Fatalf("expected 1 host lookup, got %d", len(fake.hostBatches))
	}
	gotHosts := fake.hostBatches[0]
	if len(gotHosts) != 2 || gotHosts[0] != "3" || gotHosts[1] != "9" {
		t.Errorf("unexpected host ids: %v", gotHosts)
	}

	if len(fake.userBatches) != 1 {
		t.Fatalf("expected 1 user lookup, got %d", len(fake.userBatches))
	}
	gotUsers := fake.userBatches[0]
	if len(gotUsers) != 2 || gotUsers[0] != "2" || gotUsers[1] != "7" {
		t.Errorf("unexpected user ids: %v", gotUsers)
	}
}

func TestResolve_BatchesRecoveryLookups(t *testing.T) {
	events := make([]zabbix.Event, 0, 2500)
	for i := 0; i < 2500; i++ {
		events = append(events, zabbix.Event{RecoveryID: fmt.Sprintf("r%04d", i)})
	}

	fake := &fakeClient{
		byIDFn: func(ids []string) ([]zabbix.Event, error) {
			out := make([]zabbix.Event, 0, len(ids))
			for _, id := range ids {
				out = append(out, zabbix.Event{EventID: id, Clock: "1700000000"})
			}
			return out, nil
		},
	}
	r := newTestResolver(fake)

	related, err := r.Resolve(context.Background(), events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fake.byIDBatches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(fake.byIDBatches))
	}
	if len(fake.byIDBatches[0]) != 2000 || len(fake.byIDBatches[1]) != 500 {
		t.Errorf("unexpected batch sizes: %d, %d",
			len(fake.byIDBatches[0]), len(fake.byIDBatches[1]))
	}
	if len(related.RecoveryTimes) != 2500 {
		t.Errorf("expected 2500 recovery times, got %d", len(related.RecoveryTimes))
	}
	if related.RecoveryTimes["r0042"] != 1700000000 {
		t.Errorf("unexpected recovery time: %d", related.RecoveryTimes["r0042"])
	}
}

func TestResolve_PopulatesLookupTables(t *testing.T) {
	events := []zabbix.Event{
		{
			RecoveryID:   "50",
			Hosts:        []zabbix.EventHost{{HostID: "77"}},
			Acknowledges: []zabbix.Acknowledge{{UserID: "5"}, {UserID: "6"}},
		},
	}

	fake := &fakeClient{
		byIDFn: func(ids []string) ([]zabbix.Event, error) {
			return []zabbix.Event{{EventID: "50", Clock: "1708130000"}}, nil
		},
		hosts: []zabbix.Host{{HostID: "77", Name: "web-01"}},
		users: []zabbix.User{
			{UserID: "5", Alias: "jdoe", Name: "John", Surname: "Doe"},
			{UserID: "6", Alias: "", Name: "Mona", Surname: ""},
		},
	}
	r := newTestResolver(fake)

	related, err := r.Resolve(context.Background(), events)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := related.RecoveryTimes["50"]; got != 1708130000 {
		t.Errorf("unexpected recovery time: %d", got)
	}
	if got := related.HostName("77"); got != "web-01" {
		t.Errorf("unexpected host name: %s", got)
	}
	if got := related.HostName("unknown"); got != "N/A" {
		t.Errorf("expected N/A for unknown host, got %s", got)
	}
	if got := related.UserName("5"); got != "John Doe (jdoe)" {
		t.Errorf("unexpected user name: %s", got)
	}
	if got := related.UserName("6"); got != "Mona  (no_alias)" {
		t.Errorf("unexpected alias fallback: %s", got)
	}
	if got := related.UserName("999"); got != "ID:999" {
		t.Errorf("expected id fallback for unknown user, got %s", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		user     zabbix.User
		expected string
	}{
		{zabbix.User{Name: "John", Surname: "Doe", Alias: "jdoe"}, "John Doe (jdoe)"},
		{zabbix.User{Alias: "svc"}, "(svc)"},
		{zabbix.User{}, "(no_alias)"},
	}

	for i, tt := range tests {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			if got := displayName(tt.user); got != tt.expected {
				t.Errorf("displayName(%+v) = %q, want %q", tt.user, got, tt.expected)
			}
		})
	}
}
