// Package rag orchestrates retrieval-augmented question answering: retrieve
// relevant chunks, assemble a grounded prompt, call the model, and dispatch
// any tool calls it requests.
package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/riftlabs/riftqa/internal/config"
	"github.com/riftlabs/riftqa/internal/llm"
	"github.com/riftlabs/riftqa/internal/vectorstore"
)

// ErrInvalidQuestion marks user-facing validation failures, as opposed to
// system errors.
var ErrInvalidQuestion = errors.New("invalid question")

// Turn is one conversation history entry supplied by the caller. The core
// never persists history.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RetrievedDoc is a chunk returned from similarity search.
type RetrievedDoc struct {
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
	Score    float32        `json:"score"`
}

// Answer is the orchestrator's response to one query.
type Answer struct {
	Answer  string         `json:"answer"`
	Context []RetrievedDoc `json:"context,omitempty"`
}

// Stats summarizes the state of the knowledge base.
type Stats struct {
	Documents  int    `json:"documents"`
	Collection string `json:"collection"`
}

// Orchestrator answers questions against the indexed knowledge base. Each
// query is stateless; identical inputs against a fixed index are
// independently reproducible modulo model nondeterminism.
type Orchestrator struct {
	store      vectorstore.Store
	client     llm.Client
	registry   *Registry
	k          int
	minLength  int
	collection string
	logger     *zap.Logger
}

// New wires an orchestrator from its dependencies.
func New(store vectorstore.Store, client llm.Client, registry *Registry, cfg *config.QueryConfig, collection string, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		store:      store,
		client:     client,
		registry:   registry,
		k:          cfg.RetrievalK,
		minLength:  cfg.MinQuestionLength,
		collection: collection,
		logger:     logger,
	}
}

// Retrieve returns the top-k chunks most similar to the question. A
// non-positive k falls back to the configured default.
func (o *Orchestrator) Retrieve(ctx context.Context, question string, k int) ([]RetrievedDoc, error) {
	if err := o.validate(question); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = o.k
	}

	results, err := o.store.Search(ctx, question, k)
	if err != nil {
		return nil, fmt.Errorf("retrieving context: %w", err)
	}

	docs := make([]RetrievedDoc, len(results))
	for i, r := range results {
		docs[i] = RetrievedDoc{
			Content:  r.Content,
			Metadata: r.Metadata,
			Score:    r.Score,
		}
	}
	return docs, nil
}

// Query answers a question grounded in retrieved context. When the model
// requests tool calls, each is executed locally and a single follow-up model
// call answers from the tool results; there is no further tool round.
func (o *Orchestrator) Query(ctx context.Context, question string, history []Turn, k int) (*Answer, error) {
	docs, err := o.Retrieve(ctx, question, k)
	if err != nil {
		return nil, err
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: buildSystemPrompt(docs, history)},
		{Role: llm.RoleUser, Content: question},
	}

	resp, err := o.client.ChatWithTools(ctx, messages, o.registry.Definitions())
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	if len(resp.ToolCalls) == 0 {
		return &Answer{Answer: resp.Content, Context: docs}, nil
	}

	o.logger.Debug("dispatching tool calls", zap.Int("count", len(resp.ToolCalls)))

	var results strings.Builder
	toolMessages := make([]llm.Message, 0, len(resp.ToolCalls))
	for _, call := range resp.ToolCalls {
		result := o.registry.Dispatch(ctx, call)
		fmt.Fprintf(&results, "%s:\n%s\n\n", call.Name, result)
		toolMessages = append(toolMessages, llm.Message{
			Role:       llm.RoleTool,
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Content:    result,
		})
	}

	followUp := []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(toolResultsPrompt, strings.TrimSpace(results.String()))},
		{Role: llm.RoleUser, Content: question},
		{Role: llm.RoleAssistant, ToolCalls: resp.ToolCalls},
	}
	followUp = append(followUp, toolMessages...)

	final, err := o.client.Chat(ctx, followUp)
	if err != nil {
		return nil, fmt.Errorf("generating final answer: %w", err)
	}
	return &Answer{Answer: final.Content, Context: docs}, nil
}

// Stats reports the size of the knowledge base.
func (o *Orchestrator) Stats(ctx context.Context) (*Stats, error) {
	count, err := o.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	return &Stats{Documents: count, Collection: o.collection}, nil
}

func (o *Orchestrator) validate(question string) error {
	if len(strings.TrimSpace(question)) < o.minLength {
		return fmt.Errorf("%w: question must be at least %d characters", ErrInvalidQuestion, o.minLength)
	}
	return nil
}
