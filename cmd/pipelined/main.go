// Pipelined is the ingestion service: it accepts ingestion requests over
// HTTP, queues them, and runs a background worker that collects, chunks, and
// indexes documents into the vector store.
//
// Configuration is loaded from an optional YAML file plus environment
// variables (SECTION_FIELD, e.g. SERVER_PORT, QUEUE_REDIS_URL).
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/riftlabs/riftqa/internal/api"
	"github.com/riftlabs/riftqa/internal/chunk"
	"github.com/riftlabs/riftqa/internal/collect"
	"github.com/riftlabs/riftqa/internal/config"
	"github.com/riftlabs/riftqa/internal/embeddings"
	"github.com/riftlabs/riftqa/internal/jobs"
	"github.com/riftlabs/riftqa/internal/logging"
	"github.com/riftlabs/riftqa/internal/pipeline"
	"github.com/riftlabs/riftqa/internal/queue"
	"github.com/riftlabs/riftqa/internal/vectorstore"
)

var version = "dev"

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "pipelined",
		Short:   "Ingestion pipeline service for the League of Legends knowledge base",
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
	cfg, err := config.LoadPipeline(configPath)
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

	broker, err := newBroker(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing queue: %w", err)
	}
	defer func() { _ = broker.Close() }()

	jobStore, err := newJobStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing job store: %w", err)
	}
	defer func() { _ = jobStore.Close() }()

	aggregator := collect.NewAggregator(&cfg.Collectors, logger)
	splitter := chunk.NewSplitter(&cfg.Chunking)
	pipe := pipeline.New(aggregator, splitter, store, logger)
	worker := pipeline.NewWorker(broker, jobStore, pipe, cfg.Queue.DequeueTimeout.Duration(), logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Supervise(ctx)
	}()

	server := api.NewPipelineServer(&cfg.Server, broker, jobStore, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			cancel()
			wg.Wait()
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	cancel()
	wg.Wait()
	logger.Info("pipelined stopped")
	return nil
}

// newBroker uses Redis when configured, otherwise an in-process queue for
// single-node setups.
func newBroker(cfg *config.PipelineConfig, logger *zap.Logger) (queue.Broker, error) {
	if cfg.Queue.RedisURL.IsSet() {
		return queue.NewRedisBroker(cfg.Queue.RedisURL.Value(), cfg.Queue.Name, logger)
	}
	logger.Warn("no redis URL configured, using in-process queue")
	return queue.NewMemoryBroker(), nil
}

// newJobStore uses Postgres when configured, otherwise in-process state.
func newJobStore(ctx context.Context, cfg *config.PipelineConfig, logger *zap.Logger) (jobs.Store, error) {
	if cfg.Jobs.PostgresURL.IsSet() {
		return jobs.NewPostgresStore(ctx, cfg.Jobs.PostgresURL.Value(), logger)
	}
	logger.Warn("no postgres URL configured, job state will not survive restarts")
	return jobs.NewMemoryStore(), nil
}
