// Package pipeline runs ingestion jobs: collect documents, chunk them, and
// write the chunks to the vector store.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/riftlabs/riftqa/internal/chunk"
	"github.com/riftlabs/riftqa/internal/collect"
	"github.com/riftlabs/riftqa/internal/jobs"
	"github.com/riftlabs/riftqa/internal/vectorstore"
)

// ErrNoDocuments is returned when collection produces nothing to index.
var ErrNoDocuments = errors.New("no documents collected")

// Collector gathers documents from the configured sources. An empty sources
// slice selects all of them.
type Collector interface {
	Collect(ctx context.Context, sources []string) ([]collect.Document, error)
}

// Pipeline executes one ingestion run end to end.
type Pipeline struct {
	collector Collector
	splitter  *chunk.Splitter
	store     vectorstore.Store
	logger    *zap.Logger
}

// New wires a pipeline from its dependencies.
func New(collector Collector, splitter *chunk.Splitter, store vectorstore.Store, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		collector: collector,
		splitter:  splitter,
		store:     store,
		logger:    logger,
	}
}

// Run collects, chunks, and indexes documents according to the task's mode.
//
// Modes:
//   - create: index only when the store is empty, otherwise leave it as is
//   - force_refresh: drop the store and rebuild it from scratch
//   - append: upsert chunks into the existing store
func (p *Pipeline) Run(ctx context.Context, task jobs.Task) (jobs.Result, error) {
	docs, err := p.collector.Collect(ctx, task.Sources)
	if err != nil {
		return jobs.Result{}, fmt.Errorf("collecting documents: %w", err)
	}
	if len(docs) == 0 {
		return jobs.Result{}, ErrNoDocuments
	}

	chunks, err := p.splitter.Split(docs)
	if err != nil {
		return jobs.Result{}, fmt.Errorf("chunking documents: %w", err)
	}

	switch task.Mode {
	case jobs.ModeCreate:
		count, err := p.store.Count(ctx)
		if err != nil {
			return jobs.Result{}, fmt.Errorf("checking store: %w", err)
		}
		if count > 0 {
			p.logger.Info("index already exists, skipping create",
				zap.String("job_id", task.JobID), zap.Int("existing", count))
			return jobs.Result{DocumentsProcessed: len(docs)}, nil
		}
	case jobs.ModeForceRefresh:
		if err := p.store.DeleteAll(ctx); err != nil {
			return jobs.Result{}, fmt.Errorf("dropping store: %w", err)
		}
	case jobs.ModeAppend:
		// Chunk IDs are content hashes, so a plain add upserts.
	default:
		return jobs.Result{}, fmt.Errorf("unknown index mode %q", task.Mode)
	}

	storeDocs := make([]vectorstore.Document, len(chunks))
	for i, c := range chunks {
		storeDocs[i] = vectorstore.Document{
			ID:       c.ID,
			Content:  c.Text,
			Metadata: c.Metadata,
		}
	}

	if _, err := p.store.AddDocuments(ctx, storeDocs); err != nil {
		return jobs.Result{}, fmt.Errorf("indexing chunks: %w", err)
	}

	p.logger.Info("pipeline run finished",
		zap.String("job_id", task.JobID),
		zap.String("mode", string(task.Mode)),
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)))

	return jobs.Result{
		DocumentsProcessed: len(docs),
		ChunksCreated:      len(chunks),
	}, nil
}
