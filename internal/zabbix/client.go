package zabbix

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Sentinel errors for Zabbix API failures.
var (
	ErrTransport = errors.New("zabbix api unreachable")
	ErrAPI       = errors.New("zabbix api error")
)

// APIError is an application-level rejection carried inside an otherwise
// successful JSON-RPC response. It wraps ErrAPI so callers can match the
// class with errors.Is and still read the method and server message.
type APIError struct {
	Method  string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("while calling '%s': %s", e.Method, e.Message)
}

func (e *APIError) Unwrap() error { return ErrAPI }

// Client is the interface for querying the Zabbix JSON-RPC API.
type Client interface {
	Events(ctx context.Context, q EventQuery) ([]Event, error)
	EventsByID(ctx context.Context, ids []string) ([]Event, error)
	Hosts(ctx context.Context, ids []string) ([]Host, error)
	Users(ctx context.Context, ids []string) ([]User, error)
	Version(ctx context.Context) (string, error)
}

// HTTPClient implements Client against a single api_jsonrpc.php endpoint.
// One instance is built per report run; there is no shared session state.
type HTTPClient struct {
	url    string
	token  string
	client *http.Client
}

// NewHTTPClient creates a Zabbix client. The timeout caps every call and
// must be generous: a single batched event lookup may legitimately run for
// minutes. Short-lived calls (the connectivity probe) pass a tighter
// deadline through their context instead.
func NewHTTPClient(url, token string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

// Events runs one bounded event.get query.
func (c *HTTPClient) Events(ctx context.Context, q EventQuery) ([]Event, error) {
	raw, err := c.call(ctx, "event.get", q.Params(), true)
	if err != nil {
		return nil, err
	}

	var events []Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("decoding event.get result: %w", err)
	}
	return events, nil
}

// EventsByID looks up events by id, returning only id and clock. Used to
// resolve recovery timestamps.
func (c *HTTPClient) EventsByID(ctx context.Context, ids []string) ([]Event, error) {
	params := map[string]any{
		"eventids": ids,
		"output":   []string{"eventid", "clock"},
	}
	raw, err := c.call(ctx, "event.get", params, true)
	if err != nil {
		return nil, err
	}

	var events []Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("decoding event.get result: %w", err)
	}
	return events, nil
}

// Hosts looks up host display names by id.
func (c *HTTPClient) Hosts(ctx context.Context, ids []string) ([]Host, error) {
	params := map[string]any{
		"hostids": ids,
		"output":  []string{"hostid", "name"},
	}
	raw, err := c.call(ctx, "host.get", params, true)
	if err != nil {
		return nil, err
	}

	var hosts []Host
	if err := json.Unmarshal(raw, &hosts); err != nil {
		return nil, fmt.Errorf("decoding host.get result: %w", err)
	}
	return hosts, nil
}

// Users looks up user name fields by id.
func (c *HTTPClient) Users(ctx context.Context, ids []string) ([]User, error) {
	params := map[string]any{
		"userids": ids,
		"output":  []string{"userid", "alias", "name", "surname"},
	}
	raw, err := c.call(ctx, "user.get", params, true)
	if err != nil {
		return nil, err
	}

	var users []User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("decoding user.get result: %w", err)
	}
	return users, nil
}

// Version fetches the server version via apiinfo.version, which takes no
// auth token. It doubles as the connectivity probe during validation.
func (c *HTTPClient) Version(ctx context.Context) (string, error) {
	raw, err := c.call(ctx, "apiinfo.version", []any{}, false)
	if err != nil {
		return "", err
	}

	var version string
	if err := json.Unmarshal(raw, &version); err != nil {
		return "", fmt.Errorf("decoding apiinfo.version result: %w", err)
	}
	return version, nil
}

type rpcRequest struct {
	JSONRPC string  `json:"jsonrpc"`
	Method  string  `json:"method"`
	Params  any     `json:"params"`
	Auth    *string `json:"auth,omitempty"`
	ID      int     `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// call performs one authenticated JSON-RPC round trip and unwraps the
// response envelope, which has the same shape for success and failure.
func (c *HTTPClient) call(ctx context.Context, method string, params any, auth bool) (json.RawMessage, error) {
	payload := rpcRequest{JSONRPC: "2.0", Method: method, Params: params, ID: 1}
	if auth {
		payload.Auth = &c.token
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
	}

	var rpc rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpc); err != nil {
		return nil, fmt.Errorf("decoding %s response: %w", method, err)
	}

	if rpc.Error != nil {
		msg := rpc.Error.Data
		if msg == "" {
			msg = rpc.Error.Message
		}
		if msg == "" {
			msg = "unknown Zabbix API error"
		}
		return nil, &APIError{Method: method, Message: msg}
	}

	return rpc.Result, nil
}

// classifyError maps transport-level errors onto ErrTransport.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: timeout: %v", ErrTransport, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: timeout: %v", ErrTransport, err)
	}

	return fmt.Errorf("%w: %v", ErrTransport, err)
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
