package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/HeidiZHH/skull-tools-list/internal/config"
	"github.com/HeidiZHH/skull-tools-list/internal/mcp"
	"github.com/HeidiZHH/skull-tools-list/internal/scraper"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Create logger
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(cfg.LogLevel.Level()).
		With().Timestamp().Logger()

	server := mcp.NewServer(mcp.ServerConfig{
		Name:    "skull-demo",
		Version: "1.0.0",
		Scraper: scraper.Config{
			UserAgent:   "skull-agent/1.0",
			Timeout:     30 * time.Second,
			MaxBodySize: 10 * 1024 * 1024, // 10MB
		},
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.ListenAndServe(ctx, cfg.ListenAddr(), cfg.MCP.Path); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
