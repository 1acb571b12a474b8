package squire_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostglass/squire"
	"github.com/ostglass/squire/internal/budget"
	"github.com/ostglass/squire/llm/ollama"
	"github.com/ostglass/squire/subagent"
)

// captureSink records everything an end-to-end run emits.
type captureSink struct {
	mu        sync.Mutex
	reasoning []string
	content   strings.Builder
	starts    []string
	results   []string
	notices   []string
}

func (s *captureSink) OnReasoning(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reasoning = append(s.reasoning, line)
}

func (s *captureSink) OnContent(delta string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content.WriteString(delta)
}

func (s *captureSink) OnToolStart(name, _ string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.starts = append(s.starts, name)
}

func (s *captureSink) OnToolResult(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, content)
}

func (s *captureSink) OnToolError(string) {}

func (s *captureSink) OnNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, msg)
}

// chatScript is a fake chat endpoint that picks its scripted reply from the
// shape of the incoming conversation.
type chatScript struct {
	mu       sync.Mutex
	requests int
}

type wireMessage struct {
	Role       string `json:"role"`
	Content    string `json:"content"`
	ToolCallID string `json:"tool_call_id"`
}

func (s *chatScript) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()

		require.Equal(t, "/api/chat", r.URL.Path)

		var req struct {
			Messages []wireMessage `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Messages)
		last := req.Messages[len(req.Messages)-1]

		w.Header().Set("Content-Type", "application/x-ndjson")
		switch {
		case last.Role == "tool":
			// The delegation came back; answer the user.
			writeChunks(w,
				`{"model":"qwen3-test","message":{"role":"assistant","content":"The scout"},"done":false}`,
				`{"model":"qwen3-test","message":{"role":"assistant","content":" reports back."},"done":false}`,
				`{"model":"qwen3-test","message":{"role":"assistant"},"done":true,"done_reason":"stop","prompt_eval_count":30,"eval_count":8,"total_duration":2000000}`,
			)
		case strings.HasPrefix(last.Content, "Task:"):
			// A subagent seed; answer the task directly.
			writeChunks(w,
				`{"model":"qwen3-test","message":{"role":"assistant","content":"repo mapped"},"done":false}`,
				`{"model":"qwen3-test","message":{"role":"assistant"},"done":true,"done_reason":"stop","prompt_eval_count":20,"eval_count":6,"total_duration":1000000}`,
			)
		default:
			// First turn: think, then delegate to an explore subagent.
			writeChunks(w,
				`{"model":"qwen3-test","message":{"role":"assistant","thinking":"Let me delegate."},"done":false}`,
				`not a json chunk, decoder must skip it`,
				`{"model":"qwen3-test","message":{"role":"assistant","tool_calls":[{"function":{"name":"task","arguments":{"subagent_type":"explore","prompt":"map the layout","description":"map the repo"}}}]},"done":false}`,
				`{"model":"qwen3-test","message":{"role":"assistant"},"done":true,"done_reason":"stop","prompt_eval_count":12,"eval_count":5,"total_duration":1000000}`,
			)
		}
	}
}

func writeChunks(w http.ResponseWriter, lines ...string) {
	for _, line := range lines {
		_, _ = w.Write([]byte(line + "\n"))
	}
}

// TestIntegration_DelegationRoundTrip drives a full turn through the real
// stream decoder: the model thinks, delegates to a subagent, the subagent
// answers over its own connection, and the parent folds the report into its
// final answer.
func TestIntegration_DelegationRoundTrip(t *testing.T) {
	script := &chatScript{}
	server := httptest.NewServer(script.handler(t))
	defer server.Close()

	sink := &captureSink{}
	tracker := budget.NewTracker(nil)

	newClient := func(_ bool) (squire.ChatClient, error) {
		return ollama.New(
			ollama.WithBaseURL(server.URL),
			ollama.WithModel("qwen3-test"),
			ollama.WithObserver(sink),
		), nil
	}

	runner := subagent.NewRunner(newClient,
		subagent.WithSink(sink),
		subagent.WithTracker(tracker),
		subagent.WithMaxTurns(3),
	)

	parentClient, err := newClient(true)
	require.NoError(t, err)

	a := squire.New(parentClient,
		squire.WithModel("qwen3-test"),
		squire.WithSpawner(runner),
		squire.WithSink(sink),
		squire.WithTracker(tracker),
	)

	out, err := a.Invoke(context.Background(), "what is in this repo?")

	require.NoError(t, err)
	assert.Equal(t, "The scout reports back.", out)
	assert.Equal(t, 3, script.requests, "parent turn, subagent turn, parent follow-up")

	// Reasoning stayed out of the answer but reached the sink.
	assert.Equal(t, []string{"Let me delegate."}, sink.reasoning)
	assert.NotContains(t, out, "Let me delegate.")

	// Both the child's answer and the final answer streamed through.
	streamed := sink.content.String()
	assert.Contains(t, streamed, "repo mapped")
	assert.Contains(t, streamed, "The scout reports back.")

	// The delegation produced a report tool result for the parent model.
	assert.Equal(t, []string{"task"}, sink.starts)
	require.Len(t, sink.results, 1)
	assert.Contains(t, sink.results[0], "=== Subagent Task Complete ===")
	assert.Contains(t, sink.results[0], `"result": "repo mapped"`)
	assert.Contains(t, sink.results[0], `"agent_type": "explore"`)

	// Spawn notices bracketed the subagent run.
	require.Len(t, sink.notices, 2)
	assert.Contains(t, sink.notices[0], "Spawning")
	assert.Contains(t, sink.notices[1], "Subagent completed")

	// The shared tracker saw parent and child usage.
	usage := tracker.TotalUsage()
	assert.Equal(t, int64(62), usage.PromptTokens)
	assert.Equal(t, int64(19), usage.CompletionTokens)

	// The ledger kept the completed run.
	runs := runner.Ledger().List()
	require.Len(t, runs, 1)
	assert.Equal(t, subagent.StatusCompleted, runs[0].Status)
	assert.Equal(t, "repo mapped", runs[0].Result)
}

// TestIntegration_ToolLoopAgainstFakeEndpoint exercises the registry path end
// to end: the model requests a local tool, its result is folded back into the
// conversation, and the follow-up turn produces the answer.
func TestIntegration_ToolLoopAgainstFakeEndpoint(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++

		var req struct {
			Messages []wireMessage `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		last := req.Messages[len(req.Messages)-1]

		w.Header().Set("Content-Type", "application/x-ndjson")
		if last.Role == "tool" {
			writeChunks(w,
				`{"message":{"role":"assistant","content":"It says: `+last.Content+`"},"done":false}`,
				`{"message":{"role":"assistant"},"done":true,"prompt_eval_count":9,"eval_count":4}`,
			)
			return
		}
		writeChunks(w,
			`{"message":{"role":"assistant","tool_calls":[{"id":"call_1","function":{"name":"greet","arguments":{"name":"squire"}}}]},"done":false}`,
			`{"message":{"role":"assistant"},"done":true,"prompt_eval_count":7,"eval_count":3}`,
		)
	}))
	defer server.Close()

	registry := squire.NewToolRegistry()
	registry.RegisterRaw(
		squire.NewToolDefinition("greet", "Greet someone", squire.ParametersSchema{
			Properties: map[string]any{"name": map[string]any{"type": "string"}},
			Required:   []string{"name"},
		}),
		func(_ context.Context, raw json.RawMessage) (*squire.ToolResult, error) {
			var in struct {
				Name string `json:"name"`
			}
			require.NoError(t, json.Unmarshal(raw, &in))
			return squire.TextResult("hello " + in.Name), nil
		},
	)

	client := ollama.New(
		ollama.WithBaseURL(server.URL),
		ollama.WithModel("qwen3-test"),
		ollama.WithToolDefs(registry.Definitions()),
	)
	a := squire.New(client, squire.WithModel("qwen3-test"), squire.WithTools(registry))

	out, err := a.Invoke(context.Background(), "greet squire")

	require.NoError(t, err)
	assert.Equal(t, "It says: hello squire", out)
	assert.Equal(t, 2, requests)
	assert.Equal(t, int64(16), a.Usage().PromptTokens)
	assert.Equal(t, int64(7), a.Usage().CompletionTokens)
}
