// Package genai provides the text-generation capability consumed by the
// retrieval and audit components: a Generator interface, a structured-output
// adapter for JSON responses, and bounded retry with exponential backoff.
package genai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

// Generator produces text from a prompt. Implementations may fail or return
// an empty string; callers own the retry and fallback policy.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type agentGenerator struct {
	cfg    gaconfig.AgentConfig
	logger *slog.Logger
}

// New creates a Generator backed by a go-agents chat agent. A fresh agent is
// constructed per call so concurrent generations never share client state.
func New(cfg gaconfig.AgentConfig, logger *slog.Logger) Generator {
	return &agentGenerator{
		cfg:    cfg,
		logger: logger.With("system", "generator"),
	}
}

func (g *agentGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	a, err := agent.New(&g.cfg)
	if err != nil {
		return "", fmt.Errorf("create agent: %w", err)
	}

	resp, err := a.Chat(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("chat call: %w", err)
	}

	return resp.Content(), nil
}
