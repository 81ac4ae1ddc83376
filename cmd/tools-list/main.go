package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/HeidiZHH/skull-tools-list/internal/config"
	"github.com/HeidiZHH/skull-tools-list/internal/lister"
	"github.com/HeidiZHH/skull-tools-list/internal/llm"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		exit(err)
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(cfg.LogLevel.Level()).
		With().Timestamp().Logger()

	// Not used yet; kept configured for later steps.
	assistant := llm.NewService(llm.Config{
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
	}, logger)
	warnMissingKey(os.Stdout, assistant, logger)

	if err := lister.Run(context.Background(), cfg, os.Stdout, logger); err != nil {
		exit(err)
	}
}

// warnMissingKey reports a missing LLM key on out alongside the log.
func warnMissingKey(out io.Writer, assistant *llm.Service, logger zerolog.Logger) {
	if assistant.Enabled() {
		return
	}
	fmt.Fprintln(out, "Warning: GEMINI_API_KEY not found in .env (LLM not used yet)")
	logger.Warn().Msg("GEMINI_API_KEY not found in environment or .env")
}

func exit(err error) {
	fmt.Printf("Error: %s\n", err.Error())
	os.Exit(1)
}
