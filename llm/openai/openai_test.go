package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostglass/squire"
)

type recordSink struct {
	squire.NopSink
	content []string
}

func (s *recordSink) OnContent(text string) { s.content = append(s.content, text) }

// capturedRequest mirrors the wire fields the adapter is responsible for.
type capturedRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role       string `json:"role"`
		Content    any    `json:"content"`
		ToolCallID string `json:"tool_call_id"`
		ToolCalls  []struct {
			ID       string `json:"id"`
			Type     string `json:"type"`
			Function struct {
				Name      string `json:"name"`
				Arguments string `json:"arguments"`
			} `json:"function"`
		} `json:"tool_calls"`
	} `json:"messages"`
	Tools []struct {
		Type     string `json:"type"`
		Function struct {
			Name       string         `json:"name"`
			Parameters map[string]any `json:"parameters"`
		} `json:"function"`
	} `json:"tools"`
}

const minimalCompletion = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"model": "gpt-4o-mini",
	"choices": [
		{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "ok"}}
	],
	"usage": {"prompt_tokens": 1, "completion_tokens": 1, "total_tokens": 2}
}`

func testClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	opts = append(opts, WithClientOptions(
		option.WithBaseURL(srv.URL),
		option.WithAPIKey("test-key"),
		option.WithMaxRetries(0),
	))
	return New(opts...)
}

// --- Tests for Chat ---

func TestChatPostsPayload(t *testing.T) {
	var got capturedRequest
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, minimalCompletion)
	},
		WithModel("gpt-4o"),
		WithToolDefs([]squire.ToolDefinition{
			squire.NewToolDefinition("lookup", "Look something up", squire.ParametersSchema{
				Properties: map[string]any{"query": map[string]any{"type": "string"}},
				Required:   []string{"query"},
			}),
		}),
	)

	_, err := c.Chat(context.Background(), []squire.Message{
		squire.SystemMessage("be brief"),
		squire.UserMessage("look up go"),
		squire.AssistantMessage("", []squire.ToolCall{{
			ID:       "call_1",
			Function: squire.FunctionCall{Name: "lookup", Arguments: json.RawMessage(`{"query":"go"}`)},
		}}),
		squire.ToolMessage("call_1", "golang.org"),
	})

	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "be brief", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	require.Len(t, got.Messages[2].ToolCalls, 1)
	assert.Equal(t, "call_1", got.Messages[2].ToolCalls[0].ID)
	assert.Equal(t, "function", got.Messages[2].ToolCalls[0].Type)
	assert.Equal(t, "lookup", got.Messages[2].ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"query":"go"}`, got.Messages[2].ToolCalls[0].Function.Arguments)
	assert.Equal(t, "tool", got.Messages[3].Role)
	assert.Equal(t, "call_1", got.Messages[3].ToolCallID)
	assert.Equal(t, "golang.org", got.Messages[3].Content)

	require.Len(t, got.Tools, 1)
	assert.Equal(t, "function", got.Tools[0].Type)
	assert.Equal(t, "lookup", got.Tools[0].Function.Name)
	assert.Equal(t, "object", got.Tools[0].Function.Parameters["type"])
	assert.Contains(t, got.Tools[0].Function.Parameters, "properties")
	assert.Equal(t, []any{"query"}, got.Tools[0].Function.Parameters["required"])
}

func TestChatConvertsResponse(t *testing.T) {
	sink := &recordSink{}
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-2",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "tool_calls",
				"message": {
					"role": "assistant",
					"content": "checking",
					"tool_calls": [{
						"id": "call_9",
						"type": "function",
						"function": {"name": "lookup", "arguments": "{\"query\":\"weather\"}"}
					}]
				}
			}],
			"usage": {"prompt_tokens": 42, "completion_tokens": 7, "total_tokens": 49}
		}`)
	}, WithObserver(sink))

	resp, err := c.Chat(context.Background(), []squire.Message{squire.UserMessage("weather?")})

	require.NoError(t, err)
	assert.Equal(t, "checking", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "call_9", resp.ToolCalls[0].ID)
	assert.Equal(t, "lookup", resp.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"query":"weather"}`, string(resp.ToolCalls[0].Function.Arguments))
	assert.Equal(t, int64(42), resp.Usage.PromptTokens)
	assert.Equal(t, int64(7), resp.Usage.CompletionTokens)
	assert.Equal(t, []string{"checking"}, sink.content)
}

func TestChatNoChoices(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": "chatcmpl-3", "object": "chat.completion", "choices": []}`)
	})

	_, err := c.Chat(context.Background(), []squire.Message{squire.UserMessage("hi")})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestChatAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "bad request"}}`, http.StatusBadRequest)
	})

	_, err := c.Chat(context.Background(), []squire.Message{squire.UserMessage("hi")})

	assert.Error(t, err)
}

// --- Tests for schema conversion ---

func TestSchemaMapFillsDefaults(t *testing.T) {
	m := schemaMap(squire.ParametersSchema{})

	assert.Equal(t, "object", m["type"])
	assert.Equal(t, map[string]any{}, m["properties"])
	assert.NotContains(t, m, "required")
}

func TestClientDefaults(t *testing.T) {
	c := New()

	assert.Equal(t, string(DefaultModel), c.Model())
	assert.Empty(t, c.tools)
}
