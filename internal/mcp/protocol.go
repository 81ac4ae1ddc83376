package mcp

import (
	"encoding/json"
	"strings"
)

const (
	// ProtocolVersion is the MCP revision sent in the initialize request.
	ProtocolVersion = "2025-06-18"

	// SessionHeader carries the session identifier issued by initialize.
	SessionHeader = "Mcp-Session-Id"

	jsonrpcVersion = "2.0"

	initializeID = 1
	listToolsID  = 2
)

// Implementation identifies a client or server by name and version
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// request is a JSON-RPC call, or a notification when ID is nil
type request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int   `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

func newCall(id int, method string, params any) request {
	return request{JSONRPC: jsonrpcVersion, ID: &id, Method: method, Params: params}
}

func newNotification(method string) request {
	return request{JSONRPC: jsonrpcVersion, Method: method, Params: map[string]any{}}
}

type initializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      Implementation `json:"clientInfo"`
}

// InitializeResult is the part of the initialize response the client reports on
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion"`
	ServerInfo      Implementation `json:"serverInfo"`
}

// RPCError is a JSON-RPC error object
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Message is a JSON-RPC message received from the server.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// Tools returns the tool list carried in the message result, or nil when
// the message has no result or the result holds no decodable tools.
func (m Message) Tools() []Tool {
	if len(m.Result) == 0 {
		return nil
	}
	var result struct {
		Tools []Tool `json:"tools"`
	}
	if err := json.Unmarshal(m.Result, &result); err != nil {
		return nil
	}
	return result.Tools
}

// Tool describes a callable tool advertised by the server.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DisplayName returns the tool name, or "<unknown>" when the server sent none.
// An empty name is treated the same as a missing one.
func (t Tool) DisplayName() string {
	if t.Name == "" {
		return "<unknown>"
	}
	return t.Name
}

// Summary returns the first line of the trimmed description.
func (t Tool) Summary() string {
	desc := strings.TrimSpace(t.Description)
	if i := strings.IndexAny(desc, "\r\n"); i >= 0 {
		desc = desc[:i]
	}
	return desc
}
