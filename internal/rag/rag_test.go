package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riftlabs/riftqa/internal/collect"
	"github.com/riftlabs/riftqa/internal/config"
	"github.com/riftlabs/riftqa/internal/llm"
	"github.com/riftlabs/riftqa/internal/vectorstore"
)

// fakeStore serves a fixed document set in a fixed order.
type fakeStore struct {
	docs []vectorstore.SearchResult
}

func (s *fakeStore) AddDocuments(context.Context, []vectorstore.Document) ([]string, error) {
	return nil, nil
}

func (s *fakeStore) Search(_ context.Context, _ string, k int) ([]vectorstore.SearchResult, error) {
	if k > len(s.docs) {
		k = len(s.docs)
	}
	return s.docs[:k], nil
}

func (s *fakeStore) Count(context.Context) (int, error) { return len(s.docs), nil }
func (s *fakeStore) DeleteAll(context.Context) error    { return nil }
func (s *fakeStore) Close() error                       { return nil }

// scriptedClient returns canned responses in order and records what it was
// asked.
type scriptedClient struct {
	responses []*llm.Response
	calls     [][]llm.Message
	toolCalls int
}

func (c *scriptedClient) next(messages []llm.Message) (*llm.Response, error) {
	c.calls = append(c.calls, messages)
	resp := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return resp, nil
}

func (c *scriptedClient) Chat(_ context.Context, messages []llm.Message) (*llm.Response, error) {
	return c.next(messages)
}

func (c *scriptedClient) ChatWithTools(_ context.Context, messages []llm.Message, _ []llm.Tool) (*llm.Response, error) {
	c.toolCalls++
	return c.next(messages)
}

func championStore() *fakeStore {
	return &fakeStore{docs: []vectorstore.SearchResult{
		{
			ID:      "ahri",
			Content: "Ahri's abilities: Orb of Deception, Fox-Fire, Charm, Spirit Rush.",
			Score:   0.92,
			Metadata: map[string]any{
				collect.MetaChampion: "Ahri",
				collect.MetaRole:     "Mage/Assassin",
			},
		},
		{
			ID:      "yasuo",
			Content: "Yasuo's ultimate is Last Breath.",
			Score:   0.81,
			Metadata: map[string]any{
				collect.MetaChampion: "Yasuo",
				collect.MetaRole:     "Fighter/Assassin",
			},
		},
		{
			ID:       "mechanics",
			Content:  "Objectives include Dragon and Baron Nashor.",
			Score:    0.55,
			Metadata: map[string]any{collect.MetaType: "game_mechanics"},
		},
	}}
}

func newOrchestrator(store vectorstore.Store, client llm.Client) *Orchestrator {
	return New(store, client, NewRegistry(store), &config.QueryConfig{
		RetrievalK:        3,
		MinQuestionLength: 3,
	}, "lol_knowledge", zap.NewNop())
}

func TestQueryRejectsShortQuestions(t *testing.T) {
	o := newOrchestrator(championStore(), &scriptedClient{})

	for _, q := range []string{"", "  ", "ab"} {
		_, err := o.Query(context.Background(), q, nil, 0)
		require.ErrorIs(t, err, ErrInvalidQuestion, "question %q", q)
		assert.ErrorContains(t, err, "at least 3 characters")
	}
}

func TestQueryAnswersFromContext(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{Content: "Ahri's abilities are Orb of Deception, Fox-Fire, Charm, and Spirit Rush."},
	}}
	o := newOrchestrator(championStore(), client)

	answer, err := o.Query(context.Background(), "What are Ahri's abilities?", nil, 0)
	require.NoError(t, err)
	assert.Contains(t, answer.Answer, "Ahri")
	assert.Contains(t, answer.Answer, "Charm")
	require.Len(t, answer.Context, 3)

	// One model call when no tools were requested.
	require.Len(t, client.calls, 1)
	system := client.calls[0][0]
	assert.Equal(t, llm.RoleSystem, system.Role)
	assert.Contains(t, system.Content, "[Source 1]")
	assert.Contains(t, system.Content, "Orb of Deception")
	assert.Contains(t, system.Content, RefusalPhrase)
}

func TestQueryInjectsHistory(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{Content: "Yasuo's ultimate is Last Breath."},
	}}
	o := newOrchestrator(championStore(), client)

	history := []Turn{
		{Role: "user", Content: "Who is Yasuo?"},
		{Role: "assistant", Content: "Yasuo is a swordsman champion."},
	}
	answer, err := o.Query(context.Background(), "What is his ultimate called?", history, 0)
	require.NoError(t, err)
	assert.Contains(t, answer.Answer, "Last Breath")

	system := client.calls[0][0].Content
	assert.Contains(t, system, "User: Who is Yasuo?")
	assert.Contains(t, system, "Assistant: Yasuo is a swordsman champion.")
	assert.Contains(t, system, "pronouns")
}

func TestQueryDispatchesTools(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "count_champions", Args: "{}"}}},
		{Content: "There are 2 champions in the knowledge base."},
	}}
	o := newOrchestrator(championStore(), client)

	answer, err := o.Query(context.Background(), "How many champions do you know?", nil, 0)
	require.NoError(t, err)
	assert.Contains(t, answer.Answer, "2 champions")

	// Exactly two model calls: the tool-enabled call plus the follow-up.
	require.Len(t, client.calls, 2)
	assert.Equal(t, 1, client.toolCalls, "follow-up call must not offer tools again")

	followUpSystem := client.calls[1][0].Content
	assert.Contains(t, followUpSystem, "Tool results")
	assert.Contains(t, followUpSystem, "There are 2 champions")
}

func TestQueryFoldsToolErrors(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{ToolCalls: []llm.ToolCall{{ID: "call_1", Name: "predict_winner", Args: "{}"}}},
		{Content: RefusalPhrase + "."},
	}}
	o := newOrchestrator(championStore(), client)

	answer, err := o.Query(context.Background(), "Who will win worlds?", nil, 0)
	require.NoError(t, err, "a failing tool must not abort the query")
	assert.Contains(t, answer.Answer, RefusalPhrase)

	followUpSystem := client.calls[1][0].Content
	assert.Contains(t, followUpSystem, `unknown tool "predict_winner"`)
}

func TestQueryGroundingRefusal(t *testing.T) {
	client := &scriptedClient{responses: []*llm.Response{
		{Content: RefusalPhrase + "."},
	}}
	o := newOrchestrator(&fakeStore{}, client)

	answer, err := o.Query(context.Background(), "What is the capital of France?", nil, 0)
	require.NoError(t, err)
	assert.Contains(t, answer.Answer, RefusalPhrase)

	system := client.calls[0][0].Content
	assert.Contains(t, system, "(no relevant documents found)")
}

func TestRetrieveIsDeterministic(t *testing.T) {
	o := newOrchestrator(championStore(), &scriptedClient{})

	first, err := o.Retrieve(context.Background(), "Ahri abilities", 2)
	require.NoError(t, err)
	second, err := o.Retrieve(context.Background(), "Ahri abilities", 2)
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Equal(t, first, second)
}

func TestStats(t *testing.T) {
	o := newOrchestrator(championStore(), &scriptedClient{})
	stats, err := o.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Documents)
	assert.Equal(t, "lol_knowledge", stats.Collection)
}

func TestFormatContextOrder(t *testing.T) {
	docs := []RetrievedDoc{
		{Content: "most similar"},
		{Content: "second"},
	}
	got := formatContext(docs)
	first := strings.Index(got, "most similar")
	second := strings.Index(got, "second")
	assert.True(t, first < second, "retrieval order must be preserved")
	assert.Contains(t, got, "[Source 1]")
	assert.Contains(t, got, "[Source 2]")
}
