package server

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds server configuration, loadable from YAML.
type Config struct {
	// Addr is the listen address.
	Addr string `yaml:"addr"`

	// CORSOrigins are the allowed CORS origins. Defaults to all.
	CORSOrigins []string `yaml:"corsOrigins"`

	// SearchLimit caps how many places one search turn returns.
	SearchLimit int `yaml:"searchLimit"`

	// RequestTimeout bounds request handling.
	RequestTimeout time.Duration `yaml:"requestTimeout"`

	// Postgres configures the optional Postgres stores. An empty URL means
	// the caller wires storage explicitly (e.g. in-memory).
	Postgres PostgresConfig `yaml:"postgres"`

	// Ranker selects the relevance provider.
	Ranker RankerConfig `yaml:"ranker"`
}

// PostgresConfig configures the Postgres stores.
type PostgresConfig struct {
	URL                string `yaml:"url"`
	ConversationsTable string `yaml:"conversationsTable"`
	CollectionsTable   string `yaml:"collectionsTable"`
}

// RankerConfig configures the relevance provider.
type RankerConfig struct {
	// Provider is "openai" or "anthropic".
	Provider string `yaml:"provider"`

	// Model overrides the provider's default model.
	Model string `yaml:"model"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		CORSOrigins:    []string{"*"},
		SearchLimit:    9,
		RequestTimeout: 60 * time.Second,
	}
}

// LoadConfig reads a YAML config file and applies defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg.withDefaults(), nil
}

// withDefaults fills in zero values.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = def.CORSOrigins
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = def.SearchLimit
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = def.RequestTimeout
	}
	return c
}
