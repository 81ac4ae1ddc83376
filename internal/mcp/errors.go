package mcp

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxErrorBody = 64 * 1024

// ErrNoSessionID is returned when initialize succeeds without issuing a session.
var ErrNoSessionID = errors.New("no mcp-session-id header returned from initialize")

// StatusError reports an unexpected HTTP status for a JSON-RPC method.
type StatusError struct {
	Method     string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: HTTP %d - %s", e.Method, e.StatusCode, e.Body)
}

// UnreachableError reports a transport failure talking to the server.
type UnreachableError struct {
	URL string
	Err error
}

func (e *UnreachableError) Error() string {
	return fmt.Sprintf("failed to reach MCP server at %s: %v", e.URL, e.Err)
}

func (e *UnreachableError) Unwrap() error { return e.Err }

func newStatusError(method string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Method:     method,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}
