package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type incomingRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int64           `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

func writeRPCResult(w http.ResponseWriter, id int64, result any) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	})
}

func TestInitializeDiscoversSessionFromHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req incomingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "initialize", req.Method)
		assert.Equal(t, "application/json, text/event-stream", r.Header.Get("Accept"))

		var params map[string]any
		require.NoError(t, json.Unmarshal(req.Params, &params))
		assert.Equal(t, "2024-11-05", params["protocolVersion"])

		w.Header().Set("Mcp-Session-Id", "sess-42")
		writeRPCResult(w, req.ID, map[string]any{"protocolVersion": "2024-11-05"})
	}))
	defer server.Close()

	client := NewClient(log.New(io.Discard), server.URL)
	require.Equal(t, StateUninitialized, client.State())

	session, err := client.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sess-42", session.ID)
	assert.False(t, session.Persistent())
	assert.Equal(t, StateReady, client.State())
}

func TestInitializeDiscoversSessionFromBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req incomingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeRPCResult(w, req.ID, map[string]any{
			"meta": map[string]any{"sessionId": "body-session"},
		})
	}))
	defer server.Close()

	client := NewClient(log.New(io.Discard), server.URL)
	session, err := client.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "body-session", session.ID)
}

func TestInitializeDiscoversSessionFromCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req incomingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "cookie-session"})
		writeRPCResult(w, req.ID, map[string]any{})
	}))
	defer server.Close()

	client := NewClient(log.New(io.Discard), server.URL)
	session, err := client.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cookie-session", session.ID)
}

func TestInitializeFallsBackToPersistentSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req incomingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeRPCResult(w, req.ID, map[string]any{})
	}))
	defer server.Close()

	client := NewClient(log.New(io.Discard), server.URL)
	session, err := client.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PersistentSession, session.ID)
	assert.True(t, session.Persistent())
}

func TestInitializeHeaderBeatsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req incomingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("X-Session-Id", "header-wins")
		writeRPCResult(w, req.ID, map[string]any{
			"sessionId": "body-loses",
		})
	}))
	defer server.Close()

	client := NewClient(log.New(io.Discard), server.URL)
	session, err := client.Initialize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "header-wins", session.ID)
}

func TestInitializeServerErrorSetsFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(log.New(io.Discard), server.URL)
	_, err := client.Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateFailed, client.State())
}

func TestSubsequentCallsCarrySessionHeader(t *testing.T) {
	var toolsListSession string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req incomingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		switch req.Method {
		case "initialize":
			w.Header().Set("Mcp-Session-Id", "sess-7")
			writeRPCResult(w, req.ID, map[string]any{})
		case "tools/list":
			toolsListSession = r.Header.Get("Mcp-Session-Id")
			writeRPCResult(w, req.ID, map[string]any{
				"tools": []map[string]string{
					{"name": "searchProducts", "description": "Search the catalog"},
					{"name": "getProductByBarcode", "description": "Fetch one product"},
				},
			})
		default:
			t.Fatalf("unexpected method %s", req.Method)
		}
	}))
	defer server.Close()

	client := NewClient(log.New(io.Discard), server.URL)
	session, err := client.Initialize(context.Background())
	require.NoError(t, err)

	tools, err := client.ListTools(context.Background(), session)
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "searchProducts", tools[0].Name)
	assert.Equal(t, "sess-7", toolsListSession)
}
