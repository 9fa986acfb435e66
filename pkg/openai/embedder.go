// Package openai provides the embedding client used by knowledge search.
package openai

import (
	"context"
	"fmt"

	"github.com/Gobusters/ectologger"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Config holds the embedding client configuration.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Embedder turns text into embedding vectors via the OpenAI API, or any
// compatible endpoint when BaseURL points elsewhere.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
	logger ectologger.Logger
}

// NewEmbedder creates an embedding client.
func NewEmbedder(cfg Config, logger ectologger.Logger) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := openai.EmbeddingModel(cfg.Model)
	if cfg.Model == "" {
		model = openai.SmallEmbedding3
	}

	return &Embedder{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
		logger: logger,
	}, nil
}

// Embed returns the embedding vector for a piece of text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, span := tracing.StartSpan(ctx, "openai.Embedder.Embed")
	defer span.End()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: e.model,
	})
	if err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to create embedding")
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response is empty")
	}

	return resp.Data[0].Embedding, nil
}
