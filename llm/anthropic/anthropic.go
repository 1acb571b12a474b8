// Package anthropic adapts the Anthropic Messages API to the
// squire.ChatClient contract. Like the openai adapter it is
// request-response only: the observer receives the final text in a single
// callback and reasoning is never surfaced.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/ostglass/squire"
)

// Defaults applied when no overriding option is given.
const (
	DefaultModel     = anthropic.ModelClaudeSonnet4_5
	DefaultMaxTokens = 16_384
)

// Client wraps the official Anthropic client. Configuration is fixed at
// construction; a Client is stateless across calls and safe to share.
type Client struct {
	api       anthropic.Client
	model     string
	maxTokens int64
	tools     []squire.ToolDefinition
	observer  squire.EventSink
	logger    *slog.Logger

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

// WithMaxTokens caps the output tokens per response. The Messages API
// requires an explicit cap on every call.
func WithMaxTokens(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
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
// ANTHROPIC_API_KEY from the environment when no key option is given.
func WithClientOptions(opts ...option.RequestOption) Option {
	return func(c *Client) { c.clientOpts = append(c.clientOpts, opts...) }
}

// New builds a Client with [DefaultModel], [DefaultMaxTokens], and no tools.
func New(opts ...Option) *Client {
	c := &Client{
		model:     string(DefaultModel),
		maxTokens: DefaultMaxTokens,
		observer:  squire.NopSink{},
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, fn := range opts {
		fn(c)
	}
	c.api = anthropic.NewClient(c.clientOpts...)
	return c
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Chat sends the conversation as one message call and converts the content
// blocks back into the runtime's response shape.
func (c *Client) Chat(ctx context.Context, messages []squire.Message) (*squire.Response, error) {
	msgs, system := toMessageParams(messages)
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  msgs,
	}
	if len(system) > 0 {
		params.System = system
	}
	if len(c.tools) > 0 {
		params.Tools = toToolParams(c.tools)
	}
	c.logger.Debug("chat request",
		"model", c.model, "messages", len(msgs), "tools", len(c.tools))

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	var text strings.Builder
	resp := &squire.Response{
		Usage: squire.Usage{
			PromptTokens:     msg.Usage.InputTokens,
			CompletionTokens: msg.Usage.OutputTokens,
		},
	}
	for _, block := range msg.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			tu := block.AsToolUse()
			resp.ToolCalls = append(resp.ToolCalls, squire.ToolCall{
				ID: tu.ID,
				Function: squire.FunctionCall{
					Name:      tu.Name,
					Arguments: json.RawMessage(tu.Input),
				},
			})
		}
	}
	resp.Content = text.String()
	if resp.Content != "" {
		c.observer.OnContent(resp.Content)
	}
	return resp, nil
}

// toMessageParams converts the flat history into Messages API turns. System
// messages are pulled out into the dedicated system field.
func toMessageParams(messages []squire.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var out []anthropic.MessageParam
	var system []anthropic.TextBlockParam

	for i := 0; i < len(messages); i++ {
		m := messages[i]
		switch m.Role {
		case squire.RoleSystem:
			if m.Content != "" {
				system = append(system, anthropic.TextBlockParam{Text: m.Content})
			}
		case squire.RoleAssistant:
			if blocks := assistantBlocks(m); len(blocks) > 0 {
				out = append(out, anthropic.NewAssistantMessage(blocks...))
			}
		case squire.RoleTool:
			// Consecutive tool results answer one assistant turn and must
			// share a single user message.
			var blocks []anthropic.ContentBlockParamUnion
			for ; i < len(messages) && messages[i].Role == squire.RoleTool; i++ {
				blocks = append(blocks,
					anthropic.NewToolResultBlock(messages[i].ToolCallID, messages[i].Content, false))
			}
			i--
			out = append(out, anthropic.NewUserMessage(blocks...))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out, system
}

func assistantBlocks(m squire.Message) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	if m.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(m.Content))
	}
	for _, call := range m.ToolCalls {
		var input any
		if len(call.Function.Arguments) > 0 {
			if err := json.Unmarshal(call.Function.Arguments, &input); err != nil {
				input = string(call.Function.Arguments)
			}
		}
		if input == nil {
			input = map[string]any{}
		}
		blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, input, call.Function.Name))
	}
	return blocks
}

func toToolParams(defs []squire.ToolDefinition) []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, len(defs))
	for i, def := range defs {
		out[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.Function.Name,
				Description: param.NewOpt(def.Function.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: def.Function.Parameters.Properties,
					Required:   def.Function.Parameters.Required,
				},
			},
		}
	}
	return out
}
