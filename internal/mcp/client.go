package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// serverInfoWait bounds how long Initialize reads the response body for
// server info once the session ID is known.
const serverInfoWait = 500 * time.Millisecond

// ClientConfig represents the MCP client configuration
type ClientConfig struct {
	BaseURL     string
	ClientInfo  Implementation
	InitTimeout time.Duration // initialize and notifications/initialized
	ListTimeout time.Duration // tools/list, including reading the stream
	HTTPClient  *http.Client
}

// Client speaks the streamable HTTP transport to a single MCP endpoint
type Client struct {
	config ClientConfig
	http   *http.Client
	logger zerolog.Logger
}

// Session is an initialized MCP session
type Session struct {
	ID      string
	BaseURL string            // endpoint after any initialize redirect
	Server  *InitializeResult // nil when the initialize body could not be decoded
}

// NewClient creates a new MCP client
func NewClient(config ClientConfig, logger zerolog.Logger) *Client {
	httpClient := http.Client{}
	if config.HTTPClient != nil {
		httpClient = *config.HTTPClient
	}
	// Redirects are handled by Initialize, once.
	httpClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	if config.InitTimeout <= 0 {
		config.InitTimeout = 10 * time.Second
	}
	if config.ListTimeout <= 0 {
		config.ListTimeout = 20 * time.Second
	}

	return &Client{
		config: config,
		http:   &httpClient,
		logger: logger.With().Str("component", "mcp-client").Logger(),
	}
}

// Initialize opens a session. A redirect on the first attempt is followed
// once; the endpoint it points to is used for the rest of the session.
func (c *Client) Initialize(ctx context.Context) (*Session, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.InitTimeout)
	defer cancel()

	payload := newCall(initializeID, "initialize", initializeParams{
		ProtocolVersion: ProtocolVersion,
		Capabilities:    map[string]any{"tools": map[string]any{}},
		ClientInfo:      c.config.ClientInfo,
	})

	baseURL := c.config.BaseURL
	resp, err := c.post(ctx, baseURL, "", payload)
	if err != nil {
		return nil, &UnreachableError{URL: baseURL, Err: err}
	}

	if isRedirect(resp.StatusCode) && resp.Header.Get("Location") != "" {
		next, err := redirectTarget(resp)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve initialize redirect: %w", err)
		}
		c.logger.Info().Str("from", baseURL).Str("to", next).Int("status", resp.StatusCode).Msg("Following initialize redirect")

		baseURL = next
		resp, err = c.post(ctx, baseURL, "", payload)
		if err != nil {
			return nil, &UnreachableError{URL: baseURL, Err: err}
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError("initialize", resp)
	}

	sessionID := resp.Header.Get(SessionHeader)
	if sessionID == "" {
		return nil, ErrNoSessionID
	}

	// The initialize result is only logged. A stream that never carries it is
	// abandoned after serverInfoWait rather than holding the session.
	stop := time.AfterFunc(serverInfoWait, cancel)
	defer stop.Stop()

	session := &Session{
		ID:      sessionID,
		BaseURL: baseURL,
		Server:  c.initializeResult(resp),
	}
	if session.Server != nil {
		c.logger.Debug().
			Str("server", session.Server.ServerInfo.Name).
			Str("server_version", session.Server.ServerInfo.Version).
			Str("protocol_version", session.Server.ProtocolVersion).
			Msg("Session initialized")
	}
	return session, nil
}

// NotifyInitialized sends notifications/initialized. 200 and 202 count as
// success; any other status is returned as a *StatusError.
func (c *Client) NotifyInitialized(ctx context.Context, session *Session) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.InitTimeout)
	defer cancel()

	resp, err := c.post(ctx, session.BaseURL, session.ID, newNotification("notifications/initialized"))
	if err != nil {
		return &UnreachableError{URL: session.BaseURL, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted:
		return nil
	}
	return newStatusError("notifications/initialized", resp)
}

// ListTools sends tools/list and returns the tools from the first message
// that carries a non-empty list. The stream is not read past that message.
// A nil slice with a nil error means the stream ended without tools.
func (c *Client) ListTools(ctx context.Context, session *Session) ([]Tool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.ListTimeout)
	defer cancel()

	resp, err := c.post(ctx, session.BaseURL, session.ID, newCall(listToolsID, "tools/list", map[string]any{}))
	if err != nil {
		return nil, &UnreachableError{URL: session.BaseURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError("tools/list", resp)
	}

	for msg, err := range responseMessages(resp) {
		if err != nil {
			return nil, fmt.Errorf("tools/list: %w", err)
		}
		if msg.Error != nil {
			c.logger.Warn().Int("code", msg.Error.Code).Str("message", msg.Error.Message).Msg("Server returned a JSON-RPC error")
			continue
		}
		if tools := msg.Tools(); len(tools) > 0 {
			c.logger.Debug().Int("count", len(tools)).Msg("Received tools")
			return tools, nil
		}
	}
	return nil, nil
}

func (c *Client) post(ctx context.Context, url, sessionID string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}

	return c.http.Do(req)
}

// initializeResult decodes the first result in the initialize body. Any
// failure only costs the debug log line.
func (c *Client) initializeResult(resp *http.Response) *InitializeResult {
	for msg, err := range responseMessages(resp) {
		if err != nil {
			c.logger.Debug().Err(err).Msg("Failed to read initialize response")
			return nil
		}
		if len(msg.Result) == 0 {
			continue
		}
		var result InitializeResult
		if err := json.Unmarshal(msg.Result, &result); err != nil {
			return nil
		}
		return &result
	}
	return nil
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// redirectTarget resolves Location against the request URL and normalizes
// it to a single trailing slash.
func redirectTarget(resp *http.Response) (string, error) {
	loc, err := resp.Location()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(loc.String(), "/") + "/", nil
}
