// Package llm wraps chat language models behind a provider-neutral client.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/riftlabs/riftqa/internal/config"
)

// ErrUnknownProvider is returned for providers this package does not support.
var ErrUnknownProvider = errors.New("unknown llm provider")

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model request to invoke a named tool with JSON arguments.
type ToolCall struct {
	ID   string
	Name string
	Args string
}

// Message is one chat turn. Assistant messages may carry tool calls; tool
// messages carry the result for the call identified by ToolCallID.
type Message struct {
	Role       Role
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	ToolName   string
}

// Tool describes a function the model may call. Parameters is a JSON schema
// object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Response is the model's reply: either content, tool calls, or both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Client is the chat interface used by the answer orchestrator.
type Client interface {
	// Chat sends the conversation and returns the model's reply.
	Chat(ctx context.Context, messages []Message) (*Response, error)

	// ChatWithTools sends the conversation along with tool definitions the
	// model may invoke.
	ChatWithTools(ctx context.Context, messages []Message, tools []Tool) (*Response, error)
}

type client struct {
	model       llms.Model
	temperature float64
}

// New creates a Client for the configured provider.
func New(cfg *config.LLMConfig) (Client, error) {
	httpClient := &http.Client{Timeout: cfg.RequestTimeout.Duration()}

	var model llms.Model
	var err error
	switch cfg.Provider {
	case "openai":
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey.Value()),
			openai.WithModel(cfg.Model),
			openai.WithHTTPClient(httpClient),
		)
	case "ollama":
		model, err = ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithModel(cfg.Model),
			ollama.WithHTTPClient(httpClient),
		)
	case "anthropic":
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey.Value()),
			anthropic.WithModel(cfg.Model),
			anthropic.WithHTTPClient(httpClient),
		)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", cfg.Provider, err)
	}

	return &client{model: model, temperature: cfg.Temperature}, nil
}

func (c *client) Chat(ctx context.Context, messages []Message) (*Response, error) {
	return c.generate(ctx, messages, nil)
}

func (c *client) ChatWithTools(ctx context.Context, messages []Message, tools []Tool) (*Response, error) {
	return c.generate(ctx, messages, tools)
}

func (c *client) generate(ctx context.Context, messages []Message, tools []Tool) (*Response, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		mc, err := toMessageContent(m)
		if err != nil {
			return nil, err
		}
		content = append(content, mc)
	}

	opts := []llms.CallOption{llms.WithTemperature(c.temperature)}
	if len(tools) > 0 {
		lcTools := make([]llms.Tool, len(tools))
		for i, t := range tools {
			lcTools[i] = llms.Tool{
				Type: "function",
				Function: &llms.FunctionDefinition{
					Name:        t.Name,
					Description: t.Description,
					Parameters:  t.Parameters,
				},
			}
		}
		opts = append(opts, llms.WithTools(lcTools))
	}

	resp, err := c.model.GenerateContent(ctx, content, opts...)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("model returned no choices")
	}

	choice := resp.Choices[0]
	out := &Response{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil {
			continue
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:   tc.ID,
			Name: tc.FunctionCall.Name,
			Args: tc.FunctionCall.Arguments,
		})
	}
	return out, nil
}

func toMessageContent(m Message) (llms.MessageContent, error) {
	switch m.Role {
	case RoleSystem:
		return llms.TextParts(llms.ChatMessageTypeSystem, m.Content), nil
	case RoleUser:
		return llms.TextParts(llms.ChatMessageTypeHuman, m.Content), nil
	case RoleAssistant:
		mc := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		if m.Content != "" {
			mc.Parts = append(mc.Parts, llms.TextContent{Text: m.Content})
		}
		for _, tc := range m.ToolCalls {
			mc.Parts = append(mc.Parts, llms.ToolCall{
				ID:   tc.ID,
				Type: "function",
				FunctionCall: &llms.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Args,
				},
			})
		}
		return mc, nil
	case RoleTool:
		return llms.MessageContent{
			Role: llms.ChatMessageTypeTool,
			Parts: []llms.ContentPart{llms.ToolCallResponse{
				ToolCallID: m.ToolCallID,
				Name:       m.ToolName,
				Content:    m.Content,
			}},
		}, nil
	default:
		return llms.MessageContent{}, fmt.Errorf("unknown message role %q", m.Role)
	}
}
