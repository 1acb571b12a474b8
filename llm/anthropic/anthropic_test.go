package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
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
	Model     string `json:"model"`
	MaxTokens int64  `json:"max_tokens"`
	System    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"system"`
	Messages []struct {
		Role    string           `json:"role"`
		Content []map[string]any `json:"content"`
	} `json:"messages"`
	Tools []struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		InputSchema map[string]any `json:"input_schema"`
	} `json:"tools"`
}

const minimalMessage = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "claude-sonnet-4-5",
	"content": [{"type": "text", "text": "ok"}],
	"stop_reason": "end_turn",
	"usage": {"input_tokens": 1, "output_tokens": 1}
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
		io.WriteString(w, minimalMessage)
	},
		WithModel("claude-haiku-4-5"),
		WithMaxTokens(512),
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
		squire.AssistantMessage("on it", []squire.ToolCall{
			{ID: "toolu_1", Function: squire.FunctionCall{Name: "lookup", Arguments: json.RawMessage(`{"query":"go"}`)}},
			{ID: "toolu_2", Function: squire.FunctionCall{Name: "lookup", Arguments: json.RawMessage(`{"query":"gopher"}`)}},
		}),
		squire.ToolMessage("toolu_1", "golang.org"),
		squire.ToolMessage("toolu_2", "go.dev"),
	})

	require.NoError(t, err)
	assert.Equal(t, "claude-haiku-4-5", got.Model)
	assert.Equal(t, int64(512), got.MaxTokens)
	require.Len(t, got.System, 1)
	assert.Equal(t, "be brief", got.System[0].Text)

	require.Len(t, got.Messages, 3, "system is lifted out, tool results share one turn")
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	require.Len(t, got.Messages[1].Content, 3)
	assert.Equal(t, "text", got.Messages[1].Content[0]["type"])
	assert.Equal(t, "on it", got.Messages[1].Content[0]["text"])
	assert.Equal(t, "tool_use", got.Messages[1].Content[1]["type"])
	assert.Equal(t, "toolu_1", got.Messages[1].Content[1]["id"])
	assert.Equal(t, map[string]any{"query": "go"}, got.Messages[1].Content[1]["input"])

	assert.Equal(t, "user", got.Messages[2].Role)
	require.Len(t, got.Messages[2].Content, 2)
	assert.Equal(t, "tool_result", got.Messages[2].Content[0]["type"])
	assert.Equal(t, "toolu_1", got.Messages[2].Content[0]["tool_use_id"])
	assert.Equal(t, "tool_result", got.Messages[2].Content[1]["type"])
	assert.Equal(t, "toolu_2", got.Messages[2].Content[1]["tool_use_id"])

	require.Len(t, got.Tools, 1)
	assert.Equal(t, "lookup", got.Tools[0].Name)
	assert.Equal(t, "Look something up", got.Tools[0].Description)
	assert.Contains(t, got.Tools[0].InputSchema, "properties")
	assert.Equal(t, []any{"query"}, got.Tools[0].InputSchema["required"])
}

func TestChatConvertsResponse(t *testing.T) {
	sink := &recordSink{}
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_2",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [
				{"type": "text", "text": "checking"},
				{"type": "tool_use", "id": "toolu_9", "name": "lookup", "input": {"query": "weather"}}
			],
			"stop_reason": "tool_use",
			"usage": {"input_tokens": 42, "output_tokens": 7}
		}`)
	}, WithObserver(sink))

	resp, err := c.Chat(context.Background(), []squire.Message{squire.UserMessage("weather?")})

	require.NoError(t, err)
	assert.Equal(t, "checking", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "toolu_9", resp.ToolCalls[0].ID)
	assert.Equal(t, "lookup", resp.ToolCalls[0].Function.Name)
	assert.JSONEq(t, `{"query":"weather"}`, string(resp.ToolCalls[0].Function.Arguments))
	assert.Equal(t, int64(42), resp.Usage.PromptTokens)
	assert.Equal(t, int64(7), resp.Usage.CompletionTokens)
	assert.Equal(t, []string{"checking"}, sink.content)
}

func TestChatAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"type": "error", "error": {"type": "invalid_request_error", "message": "bad"}}`,
			http.StatusBadRequest)
	})

	_, err := c.Chat(context.Background(), []squire.Message{squire.UserMessage("hi")})

	assert.Error(t, err)
}

func TestClientDefaults(t *testing.T) {
	c := New()

	assert.Equal(t, string(DefaultModel), c.Model())
	assert.Equal(t, int64(DefaultMaxTokens), c.maxTokens)
	assert.Empty(t, c.tools)
}
