package fetch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/zbxtools/zbxreport/internal/zabbix"
	"github.com/zbxtools/zbxreport/pkg/models"
)

// recoveryBatchSize bounds one event-lookup query; Zabbix handles id lists
// of this size comfortably while keeping response payloads bounded.
const recoveryBatchSize = 2000

// userIDPrefix labels an acknowledgement actor whose user record could not
// be resolved.
const userIDPrefix = "ID:"

// userAliasFallback substitutes for a blank login alias in display names.
const userAliasFallback = "no_alias"

// RelatedData holds the three lookup tables derived from a month of events.
type RelatedData struct {
	RecoveryTimes map[string]int64  // recovery eventid -> epoch seconds
	HostNames     map[string]string // hostid -> display name
	UserNames     map[string]string // userid -> display name
}

// HostName resolves a host reference, falling back for an empty or unknown
// id. Only the first host of an event is ever passed here; events spanning
// several hosts are attributed to the first one.
func (r RelatedData) HostName(hostID string) string {
	if name, ok := r.HostNames[hostID]; ok {
		return name
	}
	return models.HostFallback
}

// UserName resolves an acknowledgement actor, falling back to an id-prefixed
// label for unknown users.
func (r RelatedData) UserName(userID string) string {
	if name, ok := r.UserNames[userID]; ok {
		return name
	}
	return userIDPrefix + userID
}

// Resolver performs the batched lookups for the record sets referenced by
// the fetched events.
type Resolver struct {
	client   zabbix.Client
	delay    time.Duration
	progress func(string)
}

// NewResolver creates a Resolver; progress may be nil.
func NewResolver(client zabbix.Client, progress func(string)) *Resolver {
	return &Resolver{
		client:   client,
		delay:    throttleDelay,
		progress: progress,
	}
}

// Resolve derives the distinct recovery, host and user id sets referenced by
// events and resolves each through the API. Empty sets produce empty maps
// without issuing a call.
func (r *Resolver) Resolve(ctx context.Context, events []zabbix.Event) (RelatedData, error) {
	recoveryIDs := collectRecoveryIDs(events)
	hostIDs := collectHostIDs(events)
	userIDs := collectUserIDs(events)

	recoveryTimes, err := r.resolveRecoveries(ctx, recoveryIDs)
	if err != nil {
		return RelatedData{}, err
	}

	hostNames, err := r.resolveHosts(ctx, hostIDs)
	if err != nil {
		return RelatedData{}, err
	}

	userNames, err := r.resolveUsers(ctx, userIDs)
	if err != nil {
		return RelatedData{}, err
	}

	return RelatedData{
		RecoveryTimes: recoveryTimes,
		HostNames:     hostNames,
		UserNames:     userNames,
	}, nil
}

func (r *Resolver) resolveRecoveries(ctx context.Context, ids []string) (map[string]int64, error) {
	times := make(map[string]int64, len(ids))
	r.emit(fmt.Sprintf("Fetching details for %d recovery events...", len(ids)))

	for start := 0; start < len(ids); start += recoveryBatchSize {
		end := start + recoveryBatchSize
		if end > len(ids) {
			end = len(ids)
		}

		events, err := r.client.EventsByID(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("fetching recovery events: %w", err)
		}
		for _, ev := range events {
			times[ev.EventID] = ev.ClockUnix()
		}
		time.Sleep(r.delay)
	}

	return times, nil
}

func (r *Resolver) resolveHosts(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	r.emit(fmt.Sprintf("Fetching names for %d hosts...", len(ids)))
	if len(ids) == 0 {
		return names, nil
	}

	hosts, err := r.client.Hosts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching hosts: %w", err)
	}
	for _, h := range hosts {
		names[h.HostID] = h.Name
	}
	return names, nil
}

func (r *Resolver) resolveUsers(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	r.emit(fmt.Sprintf("Fetching names for %d users...", len(ids)))
	if len(ids) == 0 {
		return names, nil
	}

	users, err := r.client.Users(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching users: %w", err)
	}
	for _, u := range users {
		names[u.UserID] = displayName(u)
	}
	return names, nil
}

// displayName formats "name surname (alias)", substituting a fallback when
// the alias is blank.
func displayName(u zabbix.User) string {
	alias := u.Alias
	if alias == "" {
		alias = userAliasFallback
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s (%s)", u.Name, u.Surname, alias))
}

func (r *Resolver) emit(msg string) {
	if r.progress != nil {
		r.progress(msg)
	}
}

func collectRecoveryIDs(events []zabbix.Event) []string {
	seen := make(map[string]struct{})
	for _, ev := range events {
		if ev.RecoveryID != "" && ev.RecoveryID != "0" {
			seen[ev.RecoveryID] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func collectHostIDs(events []zabbix.Event) []string {
	seen := make(map[string]struct{})
	for _, ev := range events {
		for _, h := range ev.Hosts {
			if h.HostID != "" {
				seen[h.HostID] = struct{}{}
			}
		}
	}
	return sortedKeys(seen)
}

func collectUserIDs(events []zabbix.Event) []string {
	seen := make(map[string]struct{})
	for _, ev := range events {
		for _, ack := range ev.Acknowledges {
			if ack.UserID != "" {
				seen[ack.UserID] = struct{}{}
			}
		}
	}
	return sortedKeys(seen)
}

// sortedKeys keeps lookup request bodies deterministic across runs.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
