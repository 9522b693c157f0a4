// Package config loads and finalizes the service configuration from a TOML
// base file, an environment-specific overlay, and GAVEL_* environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/gavelhq/gavel/pkg/database"
	"github.com/gavelhq/gavel/pkg/embedding"
	"github.com/gavelhq/gavel/pkg/retrieval"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvGavelEnv             = "GAVEL_ENV"
	EnvGavelShutdownTimeout = "GAVEL_SHUTDOWN_TIMEOUT"
	EnvGavelVersion         = "GAVEL_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "GAVEL_DB_HOST",
	Port:            "GAVEL_DB_PORT",
	Name:            "GAVEL_DB_NAME",
	User:            "GAVEL_DB_USER",
	Password:        "GAVEL_DB_PASSWORD",
	SSLMode:         "GAVEL_DB_SSL_MODE",
	MaxOpenConns:    "GAVEL_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "GAVEL_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "GAVEL_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "GAVEL_DB_CONN_TIMEOUT",
}

var embeddingEnv = &embedding.Env{
	BaseURL: "GAVEL_EMBEDDING_BASE_URL",
	APIKey:  "GAVEL_EMBEDDING_API_KEY",
	Model:   "GAVEL_EMBEDDING_MODEL",
	Width:   "GAVEL_EMBEDDING_WIDTH",
}

var rerankEnv = &retrieval.Env{
	Enabled: "GAVEL_RERANK_ENABLED",
	APIKey:  "GAVEL_RERANK_API_KEY",
	Model:   "GAVEL_RERANK_MODEL",
}

// Config is the root configuration for the Gavel service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	Embedding       embedding.Config     `toml:"embedding"`
	Rerank          retrieval.Config     `toml:"rerank"`
	Pipeline        PipelineConfig       `toml:"pipeline"`
	API             APIConfig            `toml:"api"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the GAVEL_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvGavelEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Agent.Merge(&overlay.Agent)
	c.Embedding.Merge(&overlay.Embedding)
	c.Rerank.Merge(&overlay.Rerank)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.Embedding.Finalize(embeddingEnv); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := c.Rerank.Finalize(rerankEnv); err != nil {
		return fmt.Errorf("rerank: %w", err)
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvGavelShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvGavelVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvGavelEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
