// Package catalog is the product-resolution client: an MCP-style JSON-RPC
// session over one HTTP endpoint, used to turn meal-plan ingredients into
// ranked product suggestions.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

const (
	protocolVersion = "2024-11-05"
	clientName      = "nutrigenie-product-finder"
	clientVersion   = "1.0.0"

	searchTimeout = 30 * time.Second
	detailTimeout = 10 * time.Second
)

// PersistentSession marks sessions with no discoverable identity; the
// shared cookie jar carries whatever continuity the server maintains.
const PersistentSession = "persistent"

type State int

const (
	StateUninitialized State = iota
	StateHandshaking
	StateReady
	StateQuerying
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateQuerying:
		return "querying"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session is the handle returned by Initialize and threaded through every
// subsequent call.
type Session struct {
	ID string
}

// Persistent reports whether the session relies purely on cookie
// continuity instead of an explicit id.
func (s *Session) Persistent() bool {
	return s == nil || s.ID == PersistentSession
}

// Client speaks JSON-RPC 2.0 to one catalog endpoint. It supports a single
// concurrent resolution flow; calls are issued and awaited sequentially.
type Client struct {
	logger   *log.Logger
	endpoint string

	searchClient *http.Client
	detailClient *http.Client

	state  State
	nextID atomic.Int64
}

func NewClient(logger *log.Logger, endpoint string) *Client {
	// One jar across both clients so cookie-based sessions survive the
	// switch between search and detail timeouts.
	jar, _ := cookiejar.New(nil)
	return &Client{
		logger:       logger,
		endpoint:     endpoint,
		searchClient: &http.Client{Timeout: searchTimeout, Jar: jar},
		detailClient: &http.Client{Timeout: detailTimeout, Jar: jar},
		state:        StateUninitialized,
	}
}

// State returns the client's current protocol state.
func (c *Client) State() State {
	return c.state
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// Initialize performs the protocol handshake and returns the session
// handle. The session is reused for the process lifetime; there is no
// expiry or refresh.
func (c *Client) Initialize(ctx context.Context) (*Session, error) {
	c.state = StateHandshaking

	params := map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools":     map[string]any{},
			"prompts":   map[string]any{},
			"resources": map[string]any{},
		},
		"clientInfo": map[string]any{
			"name":    clientName,
			"version": clientVersion,
		},
	}

	resp, body, err := c.post(ctx, c.searchClient, nil, "initialize", params)
	if err != nil {
		c.state = StateFailed
		return nil, fmt.Errorf("handshake failed: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		c.state = StateFailed
		return nil, fmt.Errorf("handshake returned malformed JSON: %w", err)
	}
	if rpcResp.Error != nil {
		c.state = StateFailed
		return nil, fmt.Errorf("handshake rejected: %s (code %d)", rpcResp.Error.Message, rpcResp.Error.Code)
	}

	session := &Session{ID: discoverSessionID(resp, body)}
	c.state = StateReady
	c.logger.Info("Catalog session established", "session_id", session.ID)
	return session, nil
}

// discoverSessionID checks, in priority order: response headers (several
// case variants), cookies, nested body fields, then the persistent
// sentinel.
func discoverSessionID(resp *http.Response, body []byte) string {
	// http.Header.Get is case-insensitive, so each name covers its
	// lower/upper variants.
	for _, header := range []string{"Mcp-Session-Id", "X-Session-Id", "Session-Id"} {
		if v := resp.Header.Get(header); v != "" {
			return v
		}
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "session_id" || cookie.Name == "sessionId" {
			if cookie.Value != "" {
				return cookie.Value
			}
		}
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err == nil {
		paths := [][]string{
			{"result", "meta", "sessionId"},
			{"result", "sessionId"},
			{"meta", "sessionId"},
			{"sessionId"},
		}
		for _, path := range paths {
			if v := lookupString(parsed, path); v != "" {
				return v
			}
		}
	}

	return PersistentSession
}

func lookupString(m map[string]any, path []string) string {
	current := any(m)
	for _, key := range path {
		obj, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current, ok = obj[key]
		if !ok {
			return ""
		}
	}
	s, _ := current.(string)
	return s
}

// Tool is one operation advertised by the catalog server.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListTools returns the operations the server advertises.
func (c *Client) ListTools(ctx context.Context, session *Session) ([]Tool, error) {
	result, err := c.call(ctx, c.searchClient, session, "tools/list", nil)
	if err != nil {
		return nil, err
	}
	var parsed struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil, fmt.Errorf("malformed tools/list result: %w", err)
	}
	return parsed.Tools, nil
}

// callTool invokes one named server operation with arguments.
func (c *Client) callTool(ctx context.Context, httpClient *http.Client, session *Session, tool string, arguments map[string]any) (json.RawMessage, error) {
	return c.call(ctx, httpClient, session, "tools/call", map[string]any{
		"name":      tool,
		"arguments": arguments,
	})
}

func (c *Client) call(ctx context.Context, httpClient *http.Client, session *Session, method string, params any) (json.RawMessage, error) {
	c.state = StateQuerying
	defer func() {
		if c.state == StateQuerying {
			c.state = StateReady
		}
	}()

	_, body, err := c.post(ctx, httpClient, session, method, params)
	if err != nil {
		return nil, err
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("malformed JSON-RPC response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("%s failed: %s (code %d)", method, rpcResp.Error.Message, rpcResp.Error.Code)
	}
	return rpcResp.Result, nil
}

func (c *Client) post(ctx context.Context, httpClient *http.Client, session *Session, method string, params any) (*http.Response, []byte, error) {
	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      c.nextID.Add(1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if session != nil && !session.Persistent() {
		req.Header.Set("Mcp-Session-Id", session.ID)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, nil, fmt.Errorf("%s returned HTTP %d", method, resp.StatusCode)
	}
	return resp, body, nil
}
