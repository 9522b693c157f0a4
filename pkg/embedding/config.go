package embedding

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds embedding backend parameters. BaseURL may point at any
// OpenAI-compatible endpoint. Width is the storage layer's fixed vector
// width; native model vectors are padded or truncated to fit.
type Config struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Width   int    `toml:"width"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	BaseURL string
	APIKey  string
	Model   string
	Width   string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Width != 0 {
		c.Width = overlay.Width
	}
}

func (c *Config) loadDefaults() {
	if c.Model == "" {
		c.Model = "text-embedding-3-small"
	}
	if c.Width == 0 {
		c.Width = 4000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.BaseURL != "" {
		if v := os.Getenv(env.BaseURL); v != "" {
			c.BaseURL = v
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
	if env.Width != "" {
		if v := os.Getenv(env.Width); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Width = n
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Width < 1 {
		return fmt.Errorf("width must be positive")
	}
	return nil
}
