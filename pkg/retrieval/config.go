package retrieval

import (
	"fmt"
	"os"
)

// Config holds cross-encoder reranking parameters.
type Config struct {
	Enabled bool   `toml:"enabled"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled string
	APIKey  string
	Model   string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites fields from overlay. The boolean always applies; strings
// only apply when non-empty.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
}

func (c *Config) loadDefaults() {
	if c.Model == "" {
		c.Model = "rerank-v3.5"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			c.Enabled = v == "true" || v == "1"
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
}

func (c *Config) validate() error {
	if c.Enabled && c.APIKey == "" {
		return fmt.Errorf("api_key required when reranking is enabled")
	}
	return nil
}
