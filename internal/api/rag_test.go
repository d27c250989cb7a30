package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riftlabs/riftqa/internal/config"
	"github.com/riftlabs/riftqa/internal/llm"
	"github.com/riftlabs/riftqa/internal/rag"
	"github.com/riftlabs/riftqa/internal/vectorstore"
)

type fixedStore struct {
	docs []vectorstore.SearchResult
}

func (s *fixedStore) AddDocuments(context.Context, []vectorstore.Document) ([]string, error) {
	return nil, nil
}

func (s *fixedStore) Search(_ context.Context, _ string, k int) ([]vectorstore.SearchResult, error) {
	if k > len(s.docs) {
		k = len(s.docs)
	}
	return s.docs[:k], nil
}

func (s *fixedStore) Count(context.Context) (int, error) { return len(s.docs), nil }
func (s *fixedStore) DeleteAll(context.Context) error    { return nil }
func (s *fixedStore) Close() error                       { return nil }

type cannedClient struct {
	answer string
}

func (c *cannedClient) Chat(context.Context, []llm.Message) (*llm.Response, error) {
	return &llm.Response{Content: c.answer}, nil
}

func (c *cannedClient) ChatWithTools(context.Context, []llm.Message, []llm.Tool) (*llm.Response, error) {
	return &llm.Response{Content: c.answer}, nil
}

func newRAGServer(t *testing.T) *RAGServer {
	t.Helper()
	store := &fixedStore{docs: []vectorstore.SearchResult{
		{ID: "ahri", Content: "Ahri's abilities include Charm.", Score: 0.9},
	}}
	orch := rag.New(store, &cannedClient{answer: "Ahri can use Charm."}, rag.NewRegistry(store),
		&config.QueryConfig{RetrievalK: 3, MinQuestionLength: 3}, "lol_knowledge", zap.NewNop())
	return NewRAGServer(&config.ServerConfig{Host: "127.0.0.1", Port: 8002}, orch, zap.NewNop())
}

func TestQueryEndpoint(t *testing.T) {
	s := newRAGServer(t)

	rec := doJSON(t, s.Echo(), http.MethodPost, "/query",
		`{"question": "What are Ahri's abilities?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var answer rag.Answer
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &answer))
	assert.Contains(t, answer.Answer, "Charm")
	require.Len(t, answer.Context, 1)
	assert.Contains(t, answer.Context[0].Content, "Ahri")
}

func TestQueryEndpointValidation(t *testing.T) {
	s := newRAGServer(t)

	rec := doJSON(t, s.Echo(), http.MethodPost, "/query", `{"question": "ab"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "at least 3 characters")
}

func TestQueryEndpointWithHistory(t *testing.T) {
	s := newRAGServer(t)

	rec := doJSON(t, s.Echo(), http.MethodPost, "/query", `{
		"question": "What is his ultimate called?",
		"conversation_history": [
			{"role": "user", "content": "Who is Yasuo?"},
			{"role": "assistant", "content": "Yasuo is a swordsman champion."}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRetrieveEndpoint(t *testing.T) {
	s := newRAGServer(t)

	rec := doJSON(t, s.Echo(), http.MethodPost, "/retrieve",
		`{"question": "Ahri abilities", "k": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp RetrieveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Results, 1)
	assert.Contains(t, resp.Results[0].Content, "Charm")
}

func TestStatsEndpoint(t *testing.T) {
	s := newRAGServer(t)

	rec := doJSON(t, s.Echo(), http.MethodGet, "/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats rag.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, "lol_knowledge", stats.Collection)
}

func TestRAGHealth(t *testing.T) {
	s := newRAGServer(t)
	rec := doJSON(t, s.Echo(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
