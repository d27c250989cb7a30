package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/riftlabs/riftqa/internal/collect"
	"github.com/riftlabs/riftqa/internal/llm"
	"github.com/riftlabs/riftqa/internal/vectorstore"
)

// ToolID names an auxiliary function the model may call.
type ToolID string

const (
	ToolCountChampions     ToolID = "count_champions"
	ToolListChampions      ToolID = "list_champions"
	ToolSearchChampionInfo ToolID = "search_champion_info"
)

// Handler executes one tool call. Its string result is fed back to the model
// verbatim.
type Handler func(ctx context.Context, args json.RawMessage) (string, error)

type registeredTool struct {
	def     llm.Tool
	handler Handler
}

// Registry is the static mapping from tool ID to handler, fixed at
// construction. Unknown tool names are rejected deterministically at dispatch.
type Registry struct {
	tools map[ToolID]registeredTool
	order []ToolID
}

// NewRegistry builds the tool registry over the vector store.
func NewRegistry(store vectorstore.Store) *Registry {
	r := &Registry{tools: make(map[ToolID]registeredTool)}
	t := &toolset{store: store}

	r.register(ToolCountChampions, llm.Tool{
		Name:        string(ToolCountChampions),
		Description: "Count how many distinct champions are in the knowledge base.",
		Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	}, t.countChampions)

	r.register(ToolListChampions, llm.Tool{
		Name:        string(ToolListChampions),
		Description: "List the champions in the knowledge base, optionally filtered by role.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"role": map[string]any{
					"type":        "string",
					"description": "Optional role filter, e.g. Support or Marksman.",
				},
			},
		},
	}, t.listChampions)

	r.register(ToolSearchChampionInfo, llm.Tool{
		Name:        string(ToolSearchChampionInfo),
		Description: "Search the knowledge base for information about champions.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Free-text search query.",
				},
			},
			"required": []string{"query"},
		},
	}, t.searchChampionInfo)

	return r
}

func (r *Registry) register(id ToolID, def llm.Tool, handler Handler) {
	r.tools[id] = registeredTool{def: def, handler: handler}
	r.order = append(r.order, id)
}

// Definitions returns the tool definitions in registration order, for the
// model call.
func (r *Registry) Definitions() []llm.Tool {
	defs := make([]llm.Tool, len(r.order))
	for i, id := range r.order {
		defs[i] = r.tools[id].def
	}
	return defs
}

// Dispatch executes one model-requested tool call. Failures, including
// unknown tool names, are folded into the returned string so a bad call
// degrades the answer instead of aborting the query.
func (r *Registry) Dispatch(ctx context.Context, call llm.ToolCall) string {
	tool, ok := r.tools[ToolID(call.Name)]
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q", call.Name)
	}

	args := json.RawMessage(call.Args)
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	result, err := tool.handler(ctx, args)
	if err != nil {
		return fmt.Sprintf("Error executing %s: %v", call.Name, err)
	}
	return result
}

// toolset holds the handlers' shared state.
type toolset struct {
	store vectorstore.Store
}

// scanChampions enumerates champion documents by searching with k capped at
// the collection size, then deduplicating on the champion metadata key.
func (t *toolset) scanChampions(ctx context.Context) (map[string]string, error) {
	count, err := t.store.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	if count == 0 {
		return map[string]string{}, nil
	}

	results, err := t.store.Search(ctx, "champion", count)
	if err != nil {
		return nil, fmt.Errorf("scanning documents: %w", err)
	}

	champions := make(map[string]string)
	for _, r := range results {
		name, ok := r.Metadata[collect.MetaChampion].(string)
		if !ok || name == "" {
			continue
		}
		role, _ := r.Metadata[collect.MetaRole].(string)
		champions[name] = role
	}
	return champions, nil
}

func (t *toolset) countChampions(ctx context.Context, _ json.RawMessage) (string, error) {
	champions, err := t.scanChampions(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("There are %d champions in the knowledge base.", len(champions)), nil
}

func (t *toolset) listChampions(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Role string `json:"role"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("parsing arguments: %w", err)
	}

	champions, err := t.scanChampions(ctx)
	if err != nil {
		return "", err
	}

	var names []string
	for name, role := range champions {
		if params.Role != "" && !strings.Contains(strings.ToLower(role), strings.ToLower(params.Role)) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(names) == 0 {
		if params.Role != "" {
			return fmt.Sprintf("No champions with role %q in the knowledge base.", params.Role), nil
		}
		return "No champions in the knowledge base.", nil
	}
	return "Champions: " + strings.Join(names, ", "), nil
}

func (t *toolset) searchChampionInfo(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("parsing arguments: %w", err)
	}
	if strings.TrimSpace(params.Query) == "" {
		return "", fmt.Errorf("query argument is required")
	}

	results, err := t.store.Search(ctx, params.Query, 3)
	if err != nil {
		return "", fmt.Errorf("searching: %w", err)
	}
	if len(results) == 0 {
		return "No matching information found.", nil
	}

	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[Result %d]\n%s\n\n", i+1, r.Content)
	}
	return strings.TrimSpace(b.String()), nil
}
