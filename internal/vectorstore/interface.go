// Package vectorstore provides vector storage implementations for the
// knowledge base.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	ErrInvalidConfig      = errors.New("invalid vector store config")
	ErrEmptyDocuments     = errors.New("no documents provided")
	ErrEmbeddingFailed    = errors.New("embedding generation failed")
	ErrCollectionNotFound = errors.New("collection not found")
)

// Document is a unit of storage: chunk text plus its metadata. ID must be
// stable across runs so repeated writes upsert rather than duplicate.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]any
}

// SearchResult is a retrieved document with its similarity score.
type SearchResult struct {
	ID       string
	Content  string
	Score    float32
	Metadata map[string]any
}

// Embedder generates embeddings for documents and queries. It is shaped to
// match langchaingo's embeddings.Embedder so implementations satisfy both.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the vector storage interface used by the pipeline and the query
// service.
type Store interface {
	// AddDocuments embeds and upserts documents, returning their IDs.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// Search returns up to k documents most similar to the query.
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// DeleteAll drops every stored document.
	DeleteAll(ctx context.Context) error

	// Close releases store resources.
	Close() error
}
