// Package config loads the process configuration once at startup.
package config

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config is the complete configuration, passed explicitly to each component.
type Config struct {
	MCP      MCPConfig
	LLM      LLMConfig
	LogLevel LogLevel `env:"LOG_LEVEL,default=info"`
}

// MCPConfig locates the MCP endpoint.
type MCPConfig struct {
	// URL overrides Host, Port and Path when set. ENV: MCP_URL
	URL  string `env:"MCP_URL"`
	Host string `env:"MCP_HOST,default=localhost"`
	Port int    `env:"MCP_PORT,default=9000"`
	Path string `env:"MCP_PATH,default=/mcp/"`

	InitTimeout time.Duration `env:"MCP_INIT_TIMEOUT,default=10s"`
	ListTimeout time.Duration `env:"MCP_LIST_TIMEOUT,default=20s"`
}

// LLMConfig configures the optional OpenAI-compatible client.
type LLMConfig struct {
	// APIKey is the first of GEMINI_API_KEY, GEMINI_APIKEY, GEMINI_KEY that is set.
	APIKey  string
	BaseURL string `env:"OPENAI_BASE_URL,default=https://openrouter.ai/api"`
	Model   string `env:"MODEL,default=google/gemini-2.0-flash-exp"`
}

// LogLevel is a zerolog level decodable from the environment.
type LogLevel zerolog.Level

// Decode implements envdecode.Decoder.
func (l *LogLevel) Decode(repl string) error {
	lvl, err := zerolog.ParseLevel(repl)
	if err != nil {
		return err
	}
	*l = LogLevel(lvl)
	return nil
}

// Level returns the zerolog level.
func (l LogLevel) Level() zerolog.Level { return zerolog.Level(l) }

// Load reads .env from the working directory, then the environment.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom reads envFile, if it exists, then the environment. Variables
// already present in the environment win over the file.
func LoadFrom(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}
	cfg.LLM.APIKey = cmp.Or(os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_APIKEY"), os.Getenv("GEMINI_KEY"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MCP.URL == "" && (c.MCP.Port <= 0 || c.MCP.Port > 65535) {
		return fmt.Errorf("invalid MCP_PORT %d", c.MCP.Port)
	}
	if c.MCP.InitTimeout <= 0 {
		return fmt.Errorf("invalid MCP_INIT_TIMEOUT %s", c.MCP.InitTimeout)
	}
	if c.MCP.ListTimeout <= 0 {
		return fmt.Errorf("invalid MCP_LIST_TIMEOUT %s", c.MCP.ListTimeout)
	}
	return nil
}

// BaseURL returns the MCP endpoint URL.
func (c *Config) BaseURL() string {
	if c.MCP.URL != "" {
		return c.MCP.URL
	}
	return fmt.Sprintf("http://%s:%d%s", c.MCP.Host, c.MCP.Port, c.MCP.Path)
}

// ListenAddr returns host:port for serving the demo server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.MCP.Host, c.MCP.Port)
}
