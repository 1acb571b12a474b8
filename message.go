package squire

import (
	"encoding/json"
	"time"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry in a conversation history. Messages are value objects:
// once appended to a Conversation they are never mutated.
type Message struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool message to the assistant tool call it answers.
	// It round-trips the model-assigned call ID verbatim, including empty.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message carrying any tool calls
// the model requested alongside its (possibly empty) content.
func AssistantMessage(content string, calls []ToolCall) Message {
	return Message{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// ToolMessage builds a tool-role result message answering the call with the
// given ID.
func ToolMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: callID}
}

// ToolCall is a model-requested tool invocation decoded from a response.
// IDs are produced only by the model; an endpoint that omits them leaves the
// field empty and it stays empty through the round trip.
type ToolCall struct {
	ID       string       `json:"id,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the tool and carries its arguments as raw JSON. Ollama
// delivers arguments as a JSON object; adapters for providers that send an
// encoded string normalize to the object form.
type FunctionCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolDefinition is the wire-format capability descriptor advertised to the
// model. Definitions are constructed once and shared read-only across all
// agents for the process lifetime.
type ToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes one callable function.
type FunctionDefinition struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Parameters  ParametersSchema `json:"parameters"`
}

// ParametersSchema is the object-typed JSON Schema for a tool's arguments.
type ParametersSchema struct {
	Type       string         `json:"type"`
	Properties map[string]any `json:"properties"`
	Required   []string       `json:"required,omitempty"`
}

// NewToolDefinition builds a function-typed ToolDefinition.
func NewToolDefinition(name, description string, params ParametersSchema) ToolDefinition {
	if params.Type == "" {
		params.Type = "object"
	}
	return ToolDefinition{
		Type: "function",
		Function: FunctionDefinition{
			Name:        name,
			Description: description,
			Parameters:  params,
		},
	}
}

// Response is the aggregated result of one chat call: the assistant text plus
// any tool invocations the model requested, in request order. It is transient,
// consumed immediately by the loop that requested it.
type Response struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

// HasToolCalls reports whether the model requested any tool invocations.
func (r *Response) HasToolCalls() bool {
	return len(r.ToolCalls) > 0
}

// Usage carries the token counts a provider reported for one call. Endpoints
// that do not report usage leave it zero.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
	TotalDuration    time.Duration
}
