package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvPipelineMaxScenarios  = "GAVEL_PIPELINE_MAX_SCENARIOS"
	EnvPipelineLawTopK       = "GAVEL_PIPELINE_LAW_TOP_K"
	EnvPipelineCaseTopK      = "GAVEL_PIPELINE_CASE_TOP_K"
	EnvPipelineStageTimeout  = "GAVEL_PIPELINE_STAGE_TIMEOUT"
	EnvPipelineWorkers       = "GAVEL_PIPELINE_WORKERS"
	EnvPipelineRetryAttempts = "GAVEL_PIPELINE_RETRY_ATTEMPTS"
	EnvPipelineRetryBase     = "GAVEL_PIPELINE_RETRY_BASE"
)

// PipelineConfig holds audit pipeline tuning parameters. MaxScenarios is the
// hard scenario-batch contract: the generator must return exactly this many
// scenarios per run. StageTimeout bounds each pipeline stage; a timed-out
// stage takes the same degraded path as an unavailable collaborator.
type PipelineConfig struct {
	MaxScenarios  int    `toml:"max_scenarios"`
	LawTopK       int    `toml:"law_top_k"`
	CaseTopK      int    `toml:"case_top_k"`
	StageTimeout  string `toml:"stage_timeout"`
	Workers       int    `toml:"workers"`
	RetryAttempts int    `toml:"retry_attempts"`
	RetryBase     string `toml:"retry_base"`
}

// StageTimeoutDuration returns StageTimeout as a time.Duration.
func (c *PipelineConfig) StageTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.StageTimeout)
	return d
}

// RetryBaseDuration returns RetryBase as a time.Duration.
func (c *PipelineConfig) RetryBaseDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryBase)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.MaxScenarios != 0 {
		c.MaxScenarios = overlay.MaxScenarios
	}
	if overlay.LawTopK != 0 {
		c.LawTopK = overlay.LawTopK
	}
	if overlay.CaseTopK != 0 {
		c.CaseTopK = overlay.CaseTopK
	}
	if overlay.StageTimeout != "" {
		c.StageTimeout = overlay.StageTimeout
	}
	if overlay.Workers != 0 {
		c.Workers = overlay.Workers
	}
	if overlay.RetryAttempts != 0 {
		c.RetryAttempts = overlay.RetryAttempts
	}
	if overlay.RetryBase != "" {
		c.RetryBase = overlay.RetryBase
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.MaxScenarios == 0 {
		c.MaxScenarios = 3
	}
	if c.LawTopK == 0 {
		c.LawTopK = 10
	}
	if c.CaseTopK == 0 {
		c.CaseTopK = 5
	}
	if c.StageTimeout == "" {
		c.StageTimeout = "5m"
	}
	if c.Workers == 0 {
		c.Workers = 3
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 5
	}
	if c.RetryBase == "" {
		c.RetryBase = "1s"
	}
}

func (c *PipelineConfig) loadEnv() {
	setInt := func(envVar string, target *int) {
		if v := os.Getenv(envVar); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*target = n
			}
		}
	}

	setInt(EnvPipelineMaxScenarios, &c.MaxScenarios)
	setInt(EnvPipelineLawTopK, &c.LawTopK)
	setInt(EnvPipelineCaseTopK, &c.CaseTopK)
	setInt(EnvPipelineWorkers, &c.Workers)
	setInt(EnvPipelineRetryAttempts, &c.RetryAttempts)

	if v := os.Getenv(EnvPipelineStageTimeout); v != "" {
		c.StageTimeout = v
	}
	if v := os.Getenv(EnvPipelineRetryBase); v != "" {
		c.RetryBase = v
	}
}

func (c *PipelineConfig) validate() error {
	if c.MaxScenarios < 1 {
		return fmt.Errorf("max_scenarios must be positive")
	}
	if c.LawTopK < 1 {
		return fmt.Errorf("law_top_k must be positive")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive")
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("retry_attempts must be positive")
	}
	if _, err := time.ParseDuration(c.StageTimeout); err != nil {
		return fmt.Errorf("invalid stage_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.RetryBase); err != nil {
		return fmt.Errorf("invalid retry_base: %w", err)
	}
	return nil
}
