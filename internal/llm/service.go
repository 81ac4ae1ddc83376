package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

// ErrMissingAPIKey is returned when the client is requested without a key.
var ErrMissingAPIKey = errors.New("llm api key is not configured")

// Config represents the OpenAI-compatible endpoint configuration
type Config struct {
	APIKey  string
	BaseURL string // For custom OpenAI-compatible endpoints
	Model   string
}

// Service holds an optional OpenAI-compatible client. Nothing is constructed
// until Client is first called.
type Service struct {
	config Config
	logger zerolog.Logger

	once   sync.Once
	client *openai.Client
	err    error
}

// NewService records the configuration without building a client
func NewService(config Config, logger zerolog.Logger) *Service {
	return &Service{
		config: config,
		logger: logger.With().Str("component", "llm").Logger(),
	}
}

// Enabled reports whether an API key is configured
func (s *Service) Enabled() bool {
	return s.config.APIKey != ""
}

// Model returns the configured model name
func (s *Service) Model() string {
	return s.config.Model
}

// Client builds the client on first use and returns the same result afterwards.
func (s *Service) Client() (*openai.Client, error) {
	s.once.Do(func() {
		if !s.Enabled() {
			s.err = ErrMissingAPIKey
			return
		}
		clientConfig := openai.DefaultConfig(s.config.APIKey)
		if s.config.BaseURL != "" {
			clientConfig.BaseURL = s.config.BaseURL
		}
		s.client = openai.NewClientWithConfig(clientConfig)
		s.logger.Debug().Str("base_url", clientConfig.BaseURL).Str("model", s.config.Model).Msg("LLM client constructed")
	})
	return s.client, s.err
}

// Ping checks that the endpoint answers an authenticated models request
func (s *Service) Ping(ctx context.Context) error {
	client, err := s.Client()
	if err != nil {
		return err
	}
	if _, err := client.ListModels(ctx); err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	return nil
}
