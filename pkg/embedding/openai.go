package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sashabaranov/go-openai"
)

type openaiEmbedder struct {
	client *openai.Client
	model  string
	width  int
	logger *slog.Logger
}

// New creates an Embedder backed by an OpenAI-compatible embeddings endpoint.
func New(cfg *Config, logger *slog.Logger) Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &openaiEmbedder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
		width:  cfg.Width,
		logger: logger.With("system", "embedder"),
	}
}

func (e *openaiEmbedder) Width() int {
	return e.width
}

func (e *openaiEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding count mismatch: sent %d, received %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if len(item.Embedding) > e.width {
			e.logger.Warn(
				"embedding truncated to storage width",
				"native", len(item.Embedding),
				"width", e.width,
			)
		}
		vectors[item.Index] = Normalize(item.Embedding, e.width)
	}

	return vectors, nil
}
