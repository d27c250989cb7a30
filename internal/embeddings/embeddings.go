// Package embeddings creates text embedders backed by the configured
// provider.
package embeddings

import (
	"errors"
	"fmt"
	"net/http"

	lcembeddings "github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/riftlabs/riftqa/internal/config"
)

// ErrUnknownProvider is returned for providers this package does not support.
var ErrUnknownProvider = errors.New("unknown embedding provider")

// New creates an embedder for the configured provider. The returned embedder
// batches documents at the configured batch size.
func New(cfg *config.EmbeddingConfig) (lcembeddings.Embedder, error) {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout.Duration()}

	var client lcembeddings.EmbedderClient
	switch cfg.Provider {
	case "openai":
		llm, err := openai.New(
			openai.WithToken(cfg.OpenAIAPIKey.Value()),
			openai.WithEmbeddingModel(cfg.Model),
			openai.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, fmt.Errorf("creating openai embedding client: %w", err)
		}
		client = llm
	case "ollama":
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
		)
		if err != nil {
			return nil, fmt.Errorf("creating ollama embedding client: %w", err)
		}
		client = llm
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	embedder, err := lcembeddings.NewEmbedder(client,
		lcembeddings.WithBatchSize(cfg.BatchSize),
		lcembeddings.WithStripNewLines(true),
	)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	return embedder, nil
}
