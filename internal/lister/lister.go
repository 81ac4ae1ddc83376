// Package lister runs the initialize, notify and list sequence against an
// MCP server and prints the tools it advertises.
package lister

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/HeidiZHH/skull-tools-list/internal/config"
	"github.com/HeidiZHH/skull-tools-list/internal/mcp"
	"github.com/rs/zerolog"
)

// Client identity sent in initialize.
const (
	ClientName    = "simple-tools-list"
	ClientVersion = "0.1"
)

// Run lists the tools of the server configured in cfg, writing human-readable
// output to out. It returns an error only for fatal conditions; a server that
// sends no tools is reported on out and is not an error.
func Run(ctx context.Context, cfg *config.Config, out io.Writer, logger zerolog.Logger) error {
	client := mcp.NewClient(mcp.ClientConfig{
		BaseURL:     cfg.BaseURL(),
		ClientInfo:  mcp.Implementation{Name: ClientName, Version: ClientVersion},
		InitTimeout: cfg.MCP.InitTimeout,
		ListTimeout: cfg.MCP.ListTimeout,
	}, logger)

	session, err := client.Initialize(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Session established: %s\n", session.ID)

	if err := client.NotifyInitialized(ctx, session); err != nil {
		var statusErr *mcp.StatusError
		if !errors.As(err, &statusErr) {
			return err
		}
		// Some servers accept the session implicitly.
		fmt.Fprintln(out, statusErr.Error())
		logger.Warn().Int("status", statusErr.StatusCode).Msg("Continuing without initialized acknowledgement")
	}

	tools, err := client.ListTools(ctx, session)
	if err != nil {
		return err
	}
	if len(tools) == 0 {
		fmt.Fprintln(out, "No tools received (check server logs).")
		return nil
	}

	fmt.Fprintln(out, "Available tools:")
	for _, t := range tools {
		fmt.Fprintf(out, "- %s: %s\n", t.DisplayName(), t.Summary())
	}
	return nil
}
