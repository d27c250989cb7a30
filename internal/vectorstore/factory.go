package vectorstore

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/riftlabs/riftqa/internal/config"
)

// New creates a Store for the configured provider.
func New(cfg *config.VectorStoreConfig, embedder Embedder, logger *zap.Logger) (Store, error) {
	switch cfg.Provider {
	case "chromem":
		return NewChromemStore(cfg.Path, cfg.Collection, embedder, logger)
	case "qdrant":
		return NewQdrantStore(cfg.URL, cfg.Collection, embedder, logger)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
