package zabbix

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// --- helpers ---

func apiServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(handler)
}

func newTestClient(t *testing.T, baseURL string) *HTTPClient {
	t.Helper()
	return NewHTTPClient(baseURL, "test-token", 5*time.Second)
}

func decodeRequest(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding request payload: %v", err)
	}
	return payload
}

// --- Events tests ---

func TestEvents_ValidResponse(t *testing.T) {
	ts := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}

		payload := decodeRequest(t, r)
		if payload["jsonrpc"] != "2.0" {
			t.Errorf("unexpected jsonrpc version: %v", payload["jsonrpc"])
		}
		if payload["method"] != "event.get" {
			t.Errorf("unexpected method: %v", payload["method"])
		}
		if payload["auth"] != "test-token" {
			t.Errorf("unexpected auth token: %v", payload["auth"])
		}

		params := payload["params"].(map[string]any)
		if params["value"] != float64(1) {
			t.Errorf("expected value=1, got %v", params["value"])
		}
		if params["sortorder"] != "ASC" {
			t.Errorf("expected ascending sort, got %v", params["sortorder"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"result": []map[string]any{
				{
					"eventid":      "1001",
					"clock":        "1708128000",
					"severity":     "4",
					"name":         "High CPU load",
					"r_eventid":    "1050",
					"acknowledged": "1",
					"hosts":        []map[string]string{{"hostid": "77"}},
					"tags":         []map[string]string{{"tag": "env", "value": "prod"}},
					"alerts":       "3",
					"acknowledges": []map[string]string{
						{"userid": "5", "clock": "1708128300", "action": "6", "message": "on it"},
					},
				},
			},
			"id": 1,
		})
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	events, err := c.Events(context.Background(), EventQuery{
		From:       time.Unix(1708128000, 0),
		Till:       time.Unix(1708214399, 0),
		Severities: []Severity{SeverityHigh},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}

	ev := events[0]
	if ev.EventID != "1001" {
		t.Errorf("unexpected eventid: %s", ev.EventID)
	}
	if ev.ClockUnix() != 1708128000 {
		t.Errorf("unexpected clock: %d", ev.ClockUnix())
	}
	if ev.RecoveryID != "1050" {
		t.Errorf("unexpected r_eventid: %s", ev.RecoveryID)
	}
	if len(ev.Hosts) != 1 || ev.Hosts[0].HostID != "77" {
		t.Errorf("unexpected hosts: %+v", ev.Hosts)
	}
	if len(ev.Acknowledges) != 1 {
		t.Fatalf("expected 1 acknowledge, got %d", len(ev.Acknowledges))
	}
	if ev.Acknowledges[0].ActionCode() != 6 {
		t.Errorf("unexpected action code: %d", ev.Acknowledges[0].ActionCode())
	}
}

func TestEvents_APIErrorEnvelope(t *testing.T) {
	ts := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"error": map[string]any{
				"code":    -32602,
				"message": "Invalid params.",
				"data":    "Incorrect severity value.",
			},
			"id": 1,
		})
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	_, err := c.Events(context.Background(), EventQuery{})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	if !errors.Is(err, ErrAPI) {
		t.Errorf("expected ErrAPI, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Method != "event.get" {
		t.Errorf("unexpected method: %s", apiErr.Method)
	}
	if apiErr.Message != "Incorrect severity value." {
		t.Errorf("unexpected message: %s", apiErr.Message)
	}
}

func TestEvents_Non200Status(t *testing.T) {
	ts := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	_, err := c.Events(context.Background(), EventQuery{})
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

func TestEvents_ServerUnreachable(t *testing.T) {
	ts := apiServer(t, func(w http.ResponseWriter, r *http.Request) {})
	ts.Close() // closed before the call

	c := newTestClient(t, ts.URL)
	_, err := c.Events(context.Background(), EventQuery{})
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}

// --- batched lookup tests ---

func TestEventsByID_SendsIDList(t *testing.T) {
	ts := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		payload := decodeRequest(t, r)
		params := payload["params"].(map[string]any)
		ids := params["eventids"].([]any)
		if len(ids) != 2 || ids[0] != "10" || ids[1] != "11" {
			t.Errorf("unexpected eventids: %v", ids)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"result": []map[string]string{
				{"eventid": "10", "clock": "1700000000"},
				{"eventid": "11", "clock": "1700000600"},
			},
			"id": 1,
		})
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	events, err := c.EventsByID(context.Background(), []string{"10", "11"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[1].ClockUnix() != 1700000600 {
		t.Errorf("unexpected clock: %d", events[1].ClockUnix())
	}
}

func TestHostsAndUsers(t *testing.T) {
	ts := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		payload := decodeRequest(t, r)
		w.Header().Set("Content-Type", "application/json")

		switch payload["method"] {
		case "host.get":
			json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0",
				"result":  []map[string]string{{"hostid": "77", "name": "web-01"}},
				"id":      1,
			})
		case "user.get":
			json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0",
				"result": []map[string]string{
					{"userid": "5", "alias": "jdoe", "name": "John", "surname": "Doe"},
				},
				"id": 1,
			})
		default:
			t.Errorf("unexpected method: %v", payload["method"])
		}
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)

	hosts, err := c.Hosts(context.Background(), []string{"77"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hosts) != 1 || hosts[0].Name != "web-01" {
		t.Errorf("unexpected hosts: %+v", hosts)
	}

	users, err := c.Users(context.Background(), []string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 1 || users[0].Alias != "jdoe" {
		t.Errorf("unexpected users: %+v", users)
	}
}

// --- Version tests ---

func TestVersion_OmitsAuth(t *testing.T) {
	ts := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		payload := decodeRequest(t, r)
		if payload["method"] != "apiinfo.version" {
			t.Errorf("unexpected method: %v", payload["method"])
		}
		if _, ok := payload["auth"]; ok {
			t.Error("apiinfo.version must not carry an auth token")
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"result":  "6.4.10",
			"id":      1,
		})
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	version, err := c.Version(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if version != "6.4.10" {
		t.Errorf("unexpected version: %s", version)
	}
}

func TestVersion_ProbeTimeout(t *testing.T) {
	ts := apiServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Version(ctx)
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected ErrTransport, got %v", err)
	}
}
