package lister

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/HeidiZHH/skull-tools-list/internal/config"
	"github.com/HeidiZHH/skull-tools-list/internal/mcp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer answers the three calls of a listing run. Handlers left nil
// fall back to a well-behaved server.
type fakeServer struct {
	initialize func(w http.ResponseWriter)
	notify     func(w http.ResponseWriter)
	list       func(w http.ResponseWriter)

	mu      sync.Mutex
	methods []string
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Method string `json:"method"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	f.methods = append(f.methods, body.Method)
	f.mu.Unlock()

	switch body.Method {
	case "initialize":
		if f.initialize != nil {
			f.initialize(w)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set(mcp.SessionHeader, "abc123")
		event(w, `{"jsonrpc":"2.0","id":1,"result":{"protocolVersion":"2025-06-18","serverInfo":{"name":"fake","version":"1"}}}`)
	case "notifications/initialized":
		if f.notify != nil {
			f.notify(w)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	case "tools/list":
		if f.list != nil {
			f.list(w)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		event(w, `{"jsonrpc":"2.0","id":2,"result":{"tools":[]}}`)
	default:
		http.Error(w, "unexpected method", http.StatusBadRequest)
	}
}

func (f *fakeServer) Methods() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.methods...)
}

func event(w http.ResponseWriter, payload string) {
	fmt.Fprintf(w, "data: %s\n\n", payload)
}

func testConfig(url string) *config.Config {
	return &config.Config{MCP: config.MCPConfig{
		URL:         url,
		InitTimeout: 5 * time.Second,
		ListTimeout: 5 * time.Second,
	}}
}

func run(t *testing.T, url string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), testConfig(url), &out, zerolog.Nop())
	return out.String(), err
}

func TestRunPrintsTools(t *testing.T) {
	fake := &fakeServer{list: func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keepalive\n")
		event(w, `not json`)
		event(w, `{"jsonrpc":"2.0","id":2,"result":{"tools":[`+
			`{"name":"a","description":"x"},`+
			`{"name":"b","description":"  first line\nsecond line"},`+
			`{"description":"anonymous"},`+
			`{"name":"d"}]}}`)
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	out, err := run(t, srv.URL+"/mcp/")
	require.NoError(t, err)
	assert.Equal(t, "Session established: abc123\n"+
		"Available tools:\n"+
		"- a: x\n"+
		"- b: first line\n"+
		"- <unknown>: anonymous\n"+
		"- d: \n", out)
	assert.Equal(t, []string{"initialize", "notifications/initialized", "tools/list"}, fake.Methods())
}

func TestRunNoTools(t *testing.T) {
	fake := &fakeServer{list: func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "text/event-stream")
		event(w, "[DONE]")
		event(w, `{"jsonrpc":"2.0","id":2,"result":{"tools":[{"name":"late"}]}}`)
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	out, err := run(t, srv.URL+"/mcp/")
	require.NoError(t, err)
	assert.Equal(t, "Session established: abc123\nNo tools received (check server logs).\n", out)
}

func TestRunEmptyToolListIsNoTools(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{})
	defer srv.Close()

	out, err := run(t, srv.URL+"/mcp/")
	require.NoError(t, err)
	assert.Contains(t, out, "No tools received (check server logs).")
}

func TestRunInitializeFailure(t *testing.T) {
	fake := &fakeServer{initialize: func(w http.ResponseWriter) {
		http.Error(w, "down for maintenance", http.StatusInternalServerError)
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	out, err := run(t, srv.URL+"/mcp/")
	require.Error(t, err)
	assert.Equal(t, "initialize failed: HTTP 500 - down for maintenance", err.Error())
	assert.Empty(t, out)
	assert.Equal(t, []string{"initialize"}, fake.Methods())
}

func TestRunMissingSessionID(t *testing.T) {
	fake := &fakeServer{initialize: func(w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"jsonrpc":"2.0","id":1,"result":{}}`)
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := run(t, srv.URL+"/mcp/")
	assert.ErrorIs(t, err, mcp.ErrNoSessionID)
}

func TestRunContinuesAfterNotifyFailure(t *testing.T) {
	fake := &fakeServer{
		notify: func(w http.ResponseWriter) {
			http.Error(w, "not supported", http.StatusInternalServerError)
		},
		list: func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "text/event-stream")
			event(w, `{"jsonrpc":"2.0","id":2,"result":{"tools":[{"name":"a","description":"x"}]}}`)
		},
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	out, err := run(t, srv.URL+"/mcp/")
	require.NoError(t, err)
	assert.Contains(t, out, "notifications/initialized failed: HTTP 500 - not supported\n")
	assert.Contains(t, out, "- a: x\n")
	assert.Equal(t, []string{"initialize", "notifications/initialized", "tools/list"}, fake.Methods())
}

func TestRunListFailure(t *testing.T) {
	fake := &fakeServer{list: func(w http.ResponseWriter) {
		http.Error(w, "session expired", http.StatusNotFound)
	}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	_, err := run(t, srv.URL+"/mcp/")
	require.Error(t, err)
	assert.Equal(t, "tools/list failed: HTTP 404 - session expired", err.Error())
}

func TestRunUnreachable(t *testing.T) {
	srv := httptest.NewServer(&fakeServer{})
	url := srv.URL + "/mcp/"
	srv.Close()

	_, err := run(t, url)
	var unreachable *mcp.UnreachableError
	require.ErrorAs(t, err, &unreachable)
	assert.Equal(t, url, unreachable.URL)
}

func TestRunAgainstDemoServer(t *testing.T) {
	server := mcp.NewServer(mcp.ServerConfig{Name: "demo", Version: "1.0.0"}, zerolog.Nop())
	mux := http.NewServeMux()
	mux.Handle("/mcp/", server.Handler())
	srv := httptest.NewServer(mux)
	defer srv.Close()

	// Without the trailing slash the mux answers with a redirect to /mcp/.
	out, err := run(t, srv.URL+"/mcp")
	require.NoError(t, err)
	assert.Contains(t, out, "Session established: ")
	assert.Contains(t, out, "Available tools:\n")
	assert.Contains(t, out, "- echo: Echo the provided text back to the caller.\n")
	assert.Contains(t, out, "- fetch_page: Fetch a web page and return its title and text.\n")
	assert.NotContains(t, out, "failed")
}
