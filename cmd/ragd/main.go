// Ragd is the query service: it answers questions over HTTP by retrieving
// relevant chunks from the vector store and asking the configured language
// model, with optional tool dispatch for corpus-level questions.
//
// Configuration is loaded from an optional YAML file plus environment
// variables (SECTION_FIELD, e.g. SERVER_PORT, LLM_PROVIDER).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riftlabs/riftqa/internal/api"
	"github.com/riftlabs/riftqa/internal/config"
	"github.com/riftlabs/riftqa/internal/embeddings"
	"github.com/riftlabs/riftqa/internal/llm"
	"github.com/riftlabs/riftqa/internal/logging"
	"github.com/riftlabs/riftqa/internal/rag"
	"github.com/riftlabs/riftqa/internal/vectorstore"
)

var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "ragd",
		Short:   "Question answering service for the League of Legends knowledge base",
		Version: version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.LoadRAG(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	embedder, err := embeddings.New(&cfg.Embedding)
	if err != nil {
		return fmt.Errorf("initializing embedder: %w", err)
	}

	store, err := vectorstore.New(&cfg.Store, embedder, logger)
	if err != nil {
		return fmt.Errorf("initializing vector store: %w", err)
	}
	defer func() { _ = store.Close() }()

	client, err := llm.New(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("initializing llm client: %w", err)
	}

	orchestrator := rag.New(store, client, rag.NewRegistry(store), &cfg.Query, cfg.Store.Collection, logger)
	server := api.NewRAGServer(&cfg.Server, orchestrator, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	logger.Info("ragd stopped")
	return nil
}
