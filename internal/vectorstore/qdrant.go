package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores/qdrant"
	"go.uber.org/zap"
)

// QdrantStore implements Store against a Qdrant server, using langchaingo's
// qdrant wrapper for document and search traffic. Collection management ops
// that the wrapper does not expose (count, drop) go through Qdrant's REST
// API directly.
type QdrantStore struct {
	inner      qdrant.Store
	baseURL    *url.URL
	collection string
	client     *http.Client
	logger     *zap.Logger
}

// NewQdrantStore connects to the Qdrant server at rawURL.
func NewQdrantStore(rawURL, collection string, embedder Embedder, logger *zap.Logger) (*QdrantStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("%w: embedder is required", ErrInvalidConfig)
	}
	if collection == "" {
		return nil, fmt.Errorf("%w: collection name is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid qdrant URL %q: %v", ErrInvalidConfig, rawURL, err)
	}

	inner, err := qdrant.New(
		qdrant.WithURL(*u),
		qdrant.WithCollectionName(collection),
		qdrant.WithEmbedder(embedder),
	)
	if err != nil {
		return nil, fmt.Errorf("creating qdrant store: %w", err)
	}

	logger.Info("qdrant store initialized",
		zap.String("url", u.String()),
		zap.String("collection", collection))

	return &QdrantStore{
		inner:      inner,
		baseURL:    u,
		collection: collection,
		client:     &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// AddDocuments embeds and stores documents. Qdrant assigns its own point
// IDs; the stable chunk ID is preserved in payload metadata.
func (s *QdrantStore) AddDocuments(ctx context.Context, docs []Document) ([]string, error) {
	if len(docs) == 0 {
		return nil, ErrEmptyDocuments
	}

	lcDocs := make([]schema.Document, len(docs))
	for i, doc := range docs {
		meta := make(map[string]any, len(doc.Metadata)+1)
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		meta["chunk_id"] = doc.ID
		lcDocs[i] = schema.Document{PageContent: doc.Content, Metadata: meta}
	}

	ids, err := s.inner.AddDocuments(ctx, lcDocs)
	if err != nil {
		return nil, fmt.Errorf("adding documents: %w", err)
	}
	return ids, nil
}

// Search performs similarity search over the collection.
func (s *QdrantStore) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query cannot be empty")
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}

	docs, err := s.inner.SimilaritySearch(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("querying collection %s: %w", s.collection, err)
	}

	out := make([]SearchResult, len(docs))
	for i, d := range docs {
		id, _ := d.Metadata["chunk_id"].(string)
		out[i] = SearchResult{
			ID:       id,
			Content:  d.PageContent,
			Score:    d.Score,
			Metadata: d.Metadata,
		}
	}
	return out, nil
}

// Count returns the collection's point count via the REST API.
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	endpoint := s.baseURL.JoinPath("collections", s.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return 0, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetching collection info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, nil
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetching collection info: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Result struct {
			PointsCount int `json:"points_count"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decoding collection info: %w", err)
	}
	return payload.Result.PointsCount, nil
}

// DeleteAll drops the collection via the REST API.
func (s *QdrantStore) DeleteAll(ctx context.Context) error {
	endpoint := s.baseURL.JoinPath("collections", s.collection)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint.String(), nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("deleting collection: unexpected status %d", resp.StatusCode)
	}

	s.logger.Info("dropped collection", zap.String("collection", s.collection))
	return nil
}

// Close is a no-op: the qdrant client holds no persistent connection.
func (s *QdrantStore) Close() error { return nil }
