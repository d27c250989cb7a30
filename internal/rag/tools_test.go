package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riftlabs/riftqa/internal/llm"
)

func TestRegistryDefinitions(t *testing.T) {
	r := NewRegistry(championStore())
	defs := r.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "count_champions", defs[0].Name)
	assert.Equal(t, "list_champions", defs[1].Name)
	assert.Equal(t, "search_champion_info", defs[2].Name)
}

func TestCountChampions(t *testing.T) {
	r := NewRegistry(championStore())
	result := r.Dispatch(context.Background(), llm.ToolCall{Name: "count_champions", Args: "{}"})
	assert.Equal(t, "There are 2 champions in the knowledge base.", result)
}

func TestCountChampionsEmptyStore(t *testing.T) {
	r := NewRegistry(&fakeStore{})
	result := r.Dispatch(context.Background(), llm.ToolCall{Name: "count_champions"})
	assert.Equal(t, "There are 0 champions in the knowledge base.", result)
}

func TestListChampions(t *testing.T) {
	r := NewRegistry(championStore())

	result := r.Dispatch(context.Background(), llm.ToolCall{Name: "list_champions", Args: "{}"})
	assert.Equal(t, "Champions: Ahri, Yasuo", result)

	result = r.Dispatch(context.Background(), llm.ToolCall{
		Name: "list_champions",
		Args: `{"role": "mage"}`,
	})
	assert.Equal(t, "Champions: Ahri", result)

	result = r.Dispatch(context.Background(), llm.ToolCall{
		Name: "list_champions",
		Args: `{"role": "support"}`,
	})
	assert.Contains(t, result, `No champions with role "support"`)
}

func TestSearchChampionInfo(t *testing.T) {
	r := NewRegistry(championStore())

	result := r.Dispatch(context.Background(), llm.ToolCall{
		Name: "search_champion_info",
		Args: `{"query": "Ahri abilities"}`,
	})
	assert.Contains(t, result, "[Result 1]")
	assert.Contains(t, result, "Orb of Deception")

	result = r.Dispatch(context.Background(), llm.ToolCall{
		Name: "search_champion_info",
		Args: `{"query": ""}`,
	})
	assert.Contains(t, result, "Error executing search_champion_info")
}

func TestDispatchUnknownTool(t *testing.T) {
	r := NewRegistry(championStore())
	result := r.Dispatch(context.Background(), llm.ToolCall{Name: "ban_player"})
	assert.Equal(t, `Error: unknown tool "ban_player"`, result)
}

func TestDispatchMalformedArgs(t *testing.T) {
	r := NewRegistry(championStore())
	result := r.Dispatch(context.Background(), llm.ToolCall{
		Name: "list_champions",
		Args: "not json",
	})
	assert.Contains(t, result, "Error executing list_champions")
}
