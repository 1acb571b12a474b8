// Package openai adapts the OpenAI Chat Completions API to the
// squire.ChatClient contract. The adapter is request-response only: the
// observer receives the final text in a single callback instead of
// incremental fragments, and reasoning is never surfaced.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ostglass/squire"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.ChatModelGPT4oMini

// Client wraps the official OpenAI client. Configuration is fixed at
// construction; a Client is stateless across calls and safe to share.
type Client struct {
	api      openai.Client
	model    string
	tools    []squire.ToolDefinition
	observer squire.EventSink
	logger   *slog.Logger

	clientOpts []option.RequestOption
}

var _ squire.ChatClient = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model identifier sent with every request.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithToolDefs attaches the tool definitions advertised on every request.
func WithToolDefs(defs []squire.ToolDefinition) Option {
	return func(c *Client) { c.tools = defs }
}

// WithObserver sets the sink that receives the response text.
func WithObserver(obs squire.EventSink) Option {
	return func(c *Client) {
		if obs != nil {
			c.observer = obs
		}
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithClientOptions forwards request options to the underlying SDK client,
// e.g. option.WithBaseURL or option.WithAPIKey. The SDK reads
// OPENAI_API_KEY from the environment when no key option is given.
func WithClientOptions(opts ...option.RequestOption) Option {
	return func(c *Client) { c.clientOpts = append(c.clientOpts, opts...) }
}

// New builds a Client with [DefaultModel] and no tools.
func New(opts ...Option) *Client {
	c := &Client{
		model:    DefaultModel,
		observer: squire.NopSink{},
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, fn := range opts {
		fn(c)
	}
	c.api = openai.NewClient(c.clientOpts...)
	return c
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Chat sends the conversation as one completion call and converts the first
// choice back into the runtime's response shape.
func (c *Client) Chat(ctx context.Context, messages []squire.Message) (*squire.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toMessageParams(messages),
	}
	if len(c.tools) > 0 {
		params.Tools = toToolParams(c.tools)
	}
	c.logger.Debug("chat request",
		"model", c.model, "messages", len(messages), "tools", len(c.tools))

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: no choices returned")
	}

	msg := completion.Choices[0].Message
	resp := &squire.Response{
		Content: msg.Content,
		Usage: squire.Usage{
			PromptTokens:     completion.Usage.PromptTokens,
			CompletionTokens: completion.Usage.CompletionTokens,
		},
	}
	for _, call := range msg.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, squire.ToolCall{
			ID: call.ID,
			Function: squire.FunctionCall{
				Name:      call.Function.Name,
				Arguments: argumentsJSON(call.Function.Arguments),
			},
		})
	}
	if resp.Content != "" {
		c.observer.OnContent(resp.Content)
	}
	return resp, nil
}

// argumentsJSON normalizes the API's encoded-string arguments to the object
// form the runtime carries.
func argumentsJSON(s string) json.RawMessage {
	if s == "" {
		return nil
	}
	return json.RawMessage(s)
}

func toMessageParams(messages []squire.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case squire.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case squire.RoleAssistant:
			if len(m.ToolCalls) == 0 {
				out = append(out, openai.AssistantMessage(m.Content))
				continue
			}
			out = append(out, openai.ChatCompletionMessageParamUnion{
				OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: toCallParams(m.ToolCalls),
				},
			})
		case squire.RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

func toCallParams(calls []squire.ToolCall) []openai.ChatCompletionMessageToolCallParam {
	out := make([]openai.ChatCompletionMessageToolCallParam, len(calls))
	for i, call := range calls {
		out[i] = openai.ChatCompletionMessageToolCallParam{
			ID:   call.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      call.Function.Name,
				Arguments: string(call.Function.Arguments),
			},
		}
	}
	return out
}

func toToolParams(defs []squire.ToolDefinition) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, len(defs))
	for i, def := range defs {
		out[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        def.Function.Name,
				Description: openai.String(def.Function.Description),
				Parameters:  schemaMap(def.Function.Parameters),
			},
		}
	}
	return out
}

func schemaMap(p squire.ParametersSchema) map[string]any {
	typ := p.Type
	if typ == "" {
		typ = "object"
	}
	props := p.Properties
	if props == nil {
		props = map[string]any{}
	}
	m := map[string]any{
		"type":       typ,
		"properties": props,
	}
	if len(p.Required) > 0 {
		m["required"] = p.Required
	}
	return m
}
