package squire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ostglass/squire/internal/budget"
)

// TaskToolName is the wire name of the delegation tool. Calls naming it are
// intercepted structurally by the agent loop and routed to the Spawner; they
// never reach the tool registry.
const TaskToolName = "task"

// recursionRejection is the tool-result payload a running subagent receives
// when it attempts to delegate again.
const recursionRejection = `{"error":"Subagents cannot spawn additional subagents","suggestion":"Complete the task yourself using available tools"}`

// ChatClient is the transport boundary of an agent. One call sends a full
// conversation and blocks until the response stream has been decoded into a
// single aggregated Response. Implementations own their model, endpoint, and
// tool-advertisement configuration; the agent never adjusts them per call.
type ChatClient interface {
	Chat(ctx context.Context, messages []Message) (*Response, error)
}

// Spawner handles delegation tool calls. Dispatch parses the raw arguments of
// one call, runs the described subagent task to completion, and returns its
// formatted result block. Argument and execution failures come back as error
// results, not Go errors, so the calling loop applies its normal dispatch
// policy to them.
type Spawner interface {
	Dispatch(ctx context.Context, args json.RawMessage) (*ToolResult, error)
}

// Agent drives one conversation against a ChatClient, interleaving model
// turns with tool execution. It exclusively owns its Conversation; an Agent
// is not safe for concurrent use, but independent Agents (each with its own
// client and conversation) run concurrently without coordination.
type Agent struct {
	client        ChatClient
	model         string
	conv          *Conversation
	tools         *ToolRegistry
	spawner       Spawner
	sink          EventSink
	logger        *slog.Logger
	tracker       *budget.Tracker
	depth         int
	maxIterations int
}

// New creates an Agent talking through the given client. The client is
// required; everything else has a usable default.
func New(client ChatClient, opts ...AgentOption) *Agent {
	o := resolveOptions(opts)
	return &Agent{
		client:        client,
		model:         o.model,
		conv:          NewConversation(),
		tools:         o.tools,
		spawner:       o.spawner,
		sink:          o.sink,
		logger:        o.logger,
		tracker:       o.tracker,
		depth:         o.depth,
		maxIterations: o.maxIterations,
	}
}

// Invoke runs one top-level turn: it appends input as a user message, then
// alternates model calls and tool dispatch until the model answers without
// requesting tools. The turn is bounded by the iteration ceiling; exceeding
// it returns ErrTooManyIterations. Dispatch failures at this level fail the
// turn immediately. A failed turn leaves the conversation as it stood, so
// the next Invoke continues from intact history.
func (a *Agent) Invoke(ctx context.Context, input string) (string, error) {
	a.conv.Append(UserMessage(input))
	a.logger.Debug("turn started", "model", a.model, "history", a.conv.Len())

	for iteration := 0; iteration < a.maxIterations; iteration++ {
		resp, err := a.client.Chat(ctx, a.conv.Messages())
		if err != nil {
			return "", fmt.Errorf("chat call: %w", err)
		}
		a.record(resp.Usage)

		if !resp.HasToolCalls() {
			a.conv.Append(AssistantMessage(resp.Content, nil))
			a.logger.Debug("turn complete", "iterations", iteration+1)
			return resp.Content, nil
		}

		a.conv.Append(AssistantMessage(resp.Content, resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			name := call.Function.Name
			a.logger.Debug("dispatching tool", "tool", name, "call_id", call.ID)
			a.sink.OnToolStart(name, displayArgs(name, call.Function.Arguments))

			result, err := a.executeCall(ctx, call)
			if err != nil {
				a.sink.OnToolError(err.Error())
				return "", err
			}
			if result.IsError {
				a.sink.OnToolError(result.Content)
				return "", fmt.Errorf("tool %s: %s", name, result.Content)
			}
			a.sink.OnToolResult(result.Content)
			a.conv.Append(ToolMessage(call.ID, result.Content))
		}
	}

	a.logger.Warn("iteration ceiling reached", "limit", a.maxIterations)
	return "", ErrTooManyIterations
}

// RunTask drives one delegated task seeded with the given messages. Unlike
// Invoke, dispatch failures degrade to tool-result messages so the task stays
// alive; only transport errors are fatal. The loop is bounded by maxTurns
// model calls (DefaultMaxTaskTurns when non-positive). Exhausting the ceiling
// falls back to the last assistant content seen, or ErrNoResponse when there
// was none.
func (a *Agent) RunTask(ctx context.Context, seed []Message, maxTurns int) (string, error) {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTaskTurns
	}
	a.conv = NewConversationFrom(seed)
	a.logger.Debug("task started", "model", a.model, "max_turns", maxTurns)

	for turn := 0; turn < maxTurns; turn++ {
		resp, err := a.client.Chat(ctx, a.conv.Messages())
		if err != nil {
			return "", fmt.Errorf("chat call: %w", err)
		}
		a.record(resp.Usage)

		if !resp.HasToolCalls() {
			a.conv.Append(AssistantMessage(resp.Content, nil))
			a.logger.Debug("task complete", "turns", turn+1)
			return resp.Content, nil
		}

		a.conv.Append(AssistantMessage(resp.Content, resp.ToolCalls))
		for _, call := range resp.ToolCalls {
			name := call.Function.Name
			a.sink.OnToolStart(name, displayArgs(name, call.Function.Arguments))

			var content string
			switch result, err := a.executeCall(ctx, call); {
			case err != nil:
				content = fmt.Sprintf("Tool execution error: %v", err)
				a.sink.OnToolError(content)
			case result.IsError:
				content = fmt.Sprintf("Tool execution error: %s", result.Content)
				a.sink.OnToolError(content)
			default:
				content = result.Content
				a.sink.OnToolResult(content)
			}
			a.conv.Append(ToolMessage(call.ID, content))
		}
	}

	a.logger.Warn("turn ceiling reached", "limit", maxTurns)
	if content, ok := a.conv.LastAssistant(); ok {
		return content, nil
	}
	return "", ErrNoResponse
}

// executeCall routes one tool call. The delegation tool is handled
// structurally: at depth >= 1 it is rejected outright, and without a
// configured Spawner it fails dispatch like any unknown tool. Everything
// else goes through the registry.
func (a *Agent) executeCall(ctx context.Context, call ToolCall) (*ToolResult, error) {
	name := call.Function.Name
	if name == TaskToolName {
		if a.depth > 0 {
			a.logger.Warn("delegation rejected", "depth", a.depth)
			return TextResult(recursionRejection), nil
		}
		if a.spawner == nil {
			return nil, fmt.Errorf("tool not found: %s", name)
		}
		return a.spawner.Dispatch(ctx, call.Function.Arguments)
	}
	return a.tools.Execute(ctx, name, call.Function.Arguments)
}

func (a *Agent) record(u Usage) {
	a.tracker.Record(a.model, u.PromptTokens, u.CompletionTokens)
}

// Conversation returns the agent's message log. Callers may seed it (for
// example with a system message) before the first Invoke; mutating it while
// a turn is in flight is a race.
func (a *Agent) Conversation() *Conversation { return a.conv }

// Tools returns the registry this agent dispatches against.
func (a *Agent) Tools() *ToolRegistry { return a.tools }

// Model returns the model identifier usage is recorded under.
func (a *Agent) Model() string { return a.model }

// Usage returns cumulative token usage recorded by this agent's tracker.
func (a *Agent) Usage() budget.Usage { return a.tracker.TotalUsage() }

// Cost returns the cumulative cost recorded by this agent's tracker.
func (a *Agent) Cost() decimal.Decimal { return a.tracker.TotalCost() }

// displayArgs renders tool-call arguments for the OnToolStart callback.
// Delegation calls show just the quoted task description and todo updates
// collapse to a fixed marker; other tools get their arguments pretty-printed.
func displayArgs(name string, raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	switch name {
	case TaskToolName:
		var args struct {
			Description string `json:"description"`
		}
		if json.Unmarshal(raw, &args) == nil && args.Description != "" {
			return strconv.Quote(args.Description)
		}
	case "todo_write":
		return "updated"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
