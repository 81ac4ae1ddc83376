package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/HeidiZHH/skull-tools-list/internal/scraper"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// ServerConfig represents the demo server configuration
type ServerConfig struct {
	Name    string
	Version string
	Scraper scraper.Config
}

// Server is a small streamable HTTP MCP server for exercising the lister
// locally. It is built on the official SDK.
type Server struct {
	config         ServerConfig
	logger         zerolog.Logger
	server         *mcp.Server
	scraperService *scraper.Service
}

// EchoParams represents the parameters for the echo tool
type EchoParams struct {
	Text string `json:"text"`
}

// FetchPageParams represents the parameters for the fetch_page tool
type FetchPageParams struct {
	URL      string `json:"url"`
	Selector string `json:"selector,omitempty"`
}

// NewServer creates the demo server and registers its tools
func NewServer(config ServerConfig, logger zerolog.Logger) *Server {
	impl := &mcp.Implementation{
		Name:    config.Name,
		Version: config.Version,
	}

	s := &Server{
		config:         config,
		logger:         logger.With().Str("component", "mcp-server").Logger(),
		server:         mcp.NewServer(impl, &mcp.ServerOptions{}),
		scraperService: scraper.NewService(config.Scraper, logger),
	}
	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "echo",
		Description: "Echo the provided text back to the caller.\nUseful as a connectivity check.",
	}, s.handleEcho)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "fetch_page",
		Description: "Fetch a web page and return its title and text.\nAn optional CSS selector narrows the extracted text.",
	}, s.handleFetchPage)
}

func (s *Server) handleEcho(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[EchoParams],
) (*mcp.CallToolResultFor[any], error) {
	s.logger.Debug().Int("length", len(params.Arguments.Text)).Msg("Echo")

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{Text: params.Arguments.Text},
		},
	}, nil
}

func (s *Server) handleFetchPage(
	ctx context.Context,
	session *mcp.ServerSession,
	params *mcp.CallToolParamsFor[FetchPageParams],
) (*mcp.CallToolResultFor[any], error) {
	result, err := s.scraperService.ScrapeURL(ctx, params.Arguments.URL, params.Arguments.Selector)
	if err != nil {
		return &mcp.CallToolResultFor[any]{
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Error fetching page: %v", err)},
			},
			IsError: true,
		}, nil
	}

	return &mcp.CallToolResultFor[any]{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Title: %s\n\n%s", result.Title, result.CleanText),
			},
		},
	}, nil
}

// Handler returns the streamable HTTP handler serving this server
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// ListenAndServe serves the MCP endpoint at path until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, s.Handler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	s.logger.Info().Str("addr", addr).Str("path", path).Str("name", s.config.Name).Msg("Starting MCP server")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info().Msg("Shutting down MCP server")
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("MCP server failed: %w", err)
	}
}
