package ollama

import (
	"encoding/json"
	"fmt"

	"github.com/ostglass/squire"
)

const chatPath = "/api/chat"

// chatRequest is the body of one POST to the chat endpoint.
type chatRequest struct {
	Model    string                  `json:"model"`
	Messages []squire.Message        `json:"messages"`
	Stream   bool                    `json:"stream"`
	Think    bool                    `json:"think"`
	Tools    []squire.ToolDefinition `json:"tools,omitempty"`
}

// chatChunk is one decoded stream object. A non-streaming call returns a
// single object of the same shape with Done set. The eval counters and
// duration only appear on the terminal chunk.
type chatChunk struct {
	Model      string       `json:"model"`
	CreatedAt  string       `json:"created_at"`
	Message    chunkMessage `json:"message"`
	Done       bool         `json:"done"`
	DoneReason string       `json:"done_reason"`

	TotalDuration   int64 `json:"total_duration"`
	PromptEvalCount int64 `json:"prompt_eval_count"`
	EvalCount       int64 `json:"eval_count"`
}

type chunkMessage struct {
	Role      string          `json:"role"`
	Content   string          `json:"content"`
	Thinking  string          `json:"thinking"`
	ToolCalls []chunkToolCall `json:"tool_calls"`
}

// chunkToolCall mirrors the wire shape of one requested invocation. The
// endpoint may omit IDs entirely; they stay empty through the round trip.
type chunkToolCall struct {
	ID       string        `json:"id"`
	Function chunkFunction `json:"function"`
}

type chunkFunction struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func (tc chunkToolCall) toCall() squire.ToolCall {
	return squire.ToolCall{
		ID: tc.ID,
		Function: squire.FunctionCall{
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		},
	}
}

// errorBody models the endpoint's error payload.
type errorBody struct {
	Error string `json:"error"`
}

// APIError surfaces a non-2xx chat endpoint reply with HTTP metadata.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ollama api error (%d): %s", e.StatusCode, e.Message)
}
