// Package subagent spawns isolated child agents on behalf of a parent
// conversation. A Runner builds every child its own chat client, conversation,
// and turn budget, seeds it from the task description, and hands the caller a
// formatted report; parent and child never share mutable state. Fan-out
// helpers run independent tasks concurrently while keeping results in request
// order, and a Ledger records every run for inspection.
package subagent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ostglass/squire"
	"github.com/ostglass/squire/internal/budget"
)

// ClientFactory builds the chat client for one child agent. withTools reports
// whether the child may use tools; factories advertise tool definitions to
// the model only when it is true, so tool-less children never see them.
type ClientFactory func(withTools bool) (squire.ChatClient, error)

// Runner spawns and tracks subagents. It is safe for concurrent use; every
// spawn builds a fresh client and agent, and shared collaborators (sink,
// logger, tracker, ledger) are concurrent-safe themselves.
type Runner struct {
	factory  ClientFactory
	tools    *squire.ToolRegistry
	sink     squire.EventSink
	logger   *slog.Logger
	tracker  *budget.Tracker
	maxTurns int
	ledger   *Ledger
}

var _ squire.Spawner = (*Runner)(nil)

// Option configures a Runner.
type Option func(*Runner)

// WithTools sets the registry children dispatch against when their task
// allows tool use.
func WithTools(reg *squire.ToolRegistry) Option {
	return func(r *Runner) { r.tools = reg }
}

// WithSink sets the observer children report their events through. The
// parent's sink is the usual choice, so subagent activity shows up in the
// same place as the parent's.
func WithSink(sink squire.EventSink) Option {
	return func(r *Runner) {
		if sink != nil {
			r.sink = sink
		}
	}
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTracker sets the usage tracker children record into. Sharing the
// parent's tracker rolls subagent token usage into the parent's totals.
func WithTracker(t *budget.Tracker) Option {
	return func(r *Runner) { r.tracker = t }
}

// WithMaxTurns overrides the model-call ceiling for each child run.
func WithMaxTurns(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.maxTurns = n
		}
	}
}

// NewRunner creates a Runner that builds child clients through factory.
func NewRunner(factory ClientFactory, opts ...Option) *Runner {
	r := &Runner{
		factory:  factory,
		sink:     squire.NopSink{},
		logger:   slog.New(slog.DiscardHandler),
		maxTurns: squire.DefaultMaxTaskTurns,
		ledger:   NewLedger(),
	}
	for _, fn := range opts {
		fn(r)
	}
	return r
}

// Ledger returns the run ledger for inspection.
func (r *Runner) Ledger() *Ledger { return r.ledger }

// Dispatch parses raw delegation-tool arguments, runs the described task, and
// wraps its report as the tool result. Parse and execution failures come back
// as error results so the calling loop applies its own dispatch policy.
func (r *Runner) Dispatch(ctx context.Context, args json.RawMessage) (*squire.ToolResult, error) {
	task, err := ParseTask(args)
	if err != nil {
		return squire.ErrorResult(err.Error()), nil
	}
	res, err := r.Spawn(ctx, task, nil)
	if err != nil {
		return squire.ErrorResult(err.Error()), nil
	}
	return squire.TextResult(res.Report()), nil
}

// Spawn runs one delegation to completion. The child gets its own chat
// client and conversation, seeded from the task and, when the task asks for
// it, the tail of the caller's history. The ledger records the run whether it
// succeeds or fails.
func (r *Runner) Spawn(ctx context.Context, task Task, history []squire.Message) (*Result, error) {
	id := r.ledger.begin(task)

	withTools := task.IncludeTools && task.Role.UsesTools()
	client, err := r.factory(withTools)
	if err != nil {
		err = fmt.Errorf("build subagent client: %w", err)
		r.ledger.fail(id, err)
		return nil, err
	}

	r.sink.OnNotice(fmt.Sprintf("🤖 Spawning %s subagent: %s", task.Role.Description(), task.Description))
	r.logger.Info("spawning subagent",
		"run_id", id, "role", task.Role, "task", task.Description, "tools", withTools)

	child := squire.New(client, r.childOptions(client, withTools)...)
	r.ledger.start(id)
	start := time.Now()

	output, err := child.RunTask(ctx, r.seedMessages(task, history), r.maxTurns)
	elapsed := time.Since(start)
	if err != nil {
		r.ledger.fail(id, err)
		return nil, err
	}
	r.ledger.complete(id, output)

	r.sink.OnNotice(fmt.Sprintf("✓ Subagent completed in %.2fs", elapsed.Seconds()))
	r.logger.Info("subagent complete", "run_id", id, "role", task.Role, "duration", elapsed)

	return &Result{
		Output:    output,
		Role:      task.Role,
		Task:      task.Description,
		Model:     child.Model(),
		Duration:  elapsed,
		UsedTools: withTools,
	}, nil
}

// SpawnAll runs tasks concurrently and returns their outputs in request
// order. It is all or nothing: when any task fails, SpawnAll still waits for
// the rest, then returns the first failure in request order.
func (r *Runner) SpawnAll(ctx context.Context, tasks []Task) ([]string, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	r.sink.OnNotice(fmt.Sprintf("🚀 Spawning %d subagent tasks concurrently...", len(tasks)))
	start := time.Now()

	outputs := make([]string, len(tasks))
	for i, res := range r.fanOut(ctx, tasks) {
		if res.Err != nil {
			return nil, fmt.Errorf("subagent task %d: %w", i+1, res.Err)
		}
		outputs[i] = res.Output
	}

	r.sink.OnNotice(fmt.Sprintf("✓ All %d subagent tasks completed in %.2fs", len(tasks), time.Since(start).Seconds()))
	return outputs, nil
}

// SpawnEach runs tasks concurrently and returns one outcome per task in
// request order, failures included. A failed task never hides the results of
// the ones that succeeded.
func (r *Runner) SpawnEach(ctx context.Context, tasks []Task) []TaskResult {
	if len(tasks) == 0 {
		return nil
	}
	r.sink.OnNotice(fmt.Sprintf("🚀 Spawning %d subagent tasks concurrently...", len(tasks)))
	start := time.Now()

	results := r.fanOut(ctx, tasks)

	r.sink.OnNotice(fmt.Sprintf("✓ All %d subagent tasks completed in %.2fs", len(tasks), time.Since(start).Seconds()))
	return results
}

// fanOut runs one goroutine per task and collects outcomes indexed by
// request position.
func (r *Runner) fanOut(ctx context.Context, tasks []Task) []TaskResult {
	results := make([]TaskResult, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			res, err := r.Spawn(ctx, task, nil)
			if err != nil {
				results[i] = TaskResult{Err: err}
				return
			}
			results[i] = TaskResult{Output: res.Output}
		}(i, task)
	}
	wg.Wait()
	return results
}

// childOptions assembles the agent options for one child run.
func (r *Runner) childOptions(client squire.ChatClient, withTools bool) []squire.AgentOption {
	opts := []squire.AgentOption{
		squire.WithDepth(1),
		squire.WithSink(r.sink),
		squire.WithLogger(r.logger),
	}
	if withTools && r.tools != nil {
		opts = append(opts, squire.WithTools(r.tools))
	}
	if r.tracker != nil {
		opts = append(opts, squire.WithTracker(r.tracker))
	}
	if m, ok := client.(interface{ Model() string }); ok {
		opts = append(opts, squire.WithModel(m.Model()))
	}
	return opts
}

// seedMessages builds the child's starting conversation: the role's system
// prompt, optionally the tail of the caller's history, then the task itself
// as the opening user message.
func (r *Runner) seedMessages(task Task, history []squire.Message) []squire.Message {
	var seed []squire.Message
	if prompt := task.Role.SystemPrompt(); prompt != "" {
		seed = append(seed, squire.SystemMessage(prompt))
	}
	if task.IncludeContext && len(history) > 0 {
		tail := squire.NewConversationFrom(history).ContextTail(squire.DefaultContextTail)
		seed = append(seed, tail...)
	}
	seed = append(seed, squire.UserMessage(fmt.Sprintf("Task: %s\n\nDetails:\n%s", task.Description, task.Prompt)))
	return seed
}

// TaskResult pairs one fan-out task's output with its error. Exactly one of
// the two fields is meaningful.
type TaskResult struct {
	Output string
	Err    error
}

// Result is the outcome of one completed delegation.
type Result struct {
	Output    string
	Role      Role
	Task      string
	Model     string
	Duration  time.Duration
	UsedTools bool
}

// reportBanner heads every delegation report handed back to the model.
const reportBanner = "=== Subagent Task Complete ===\n"

// taskReport is the wire shape of the report block. Keys stay in alphabetical
// order so reports are stable across runs.
type taskReport struct {
	AgentType  string `json:"agent_type"`
	DurationMS int64  `json:"duration_ms"`
	Model      string `json:"model"`
	Result     string `json:"result"`
	Task       string `json:"task"`
	UsedTools  bool   `json:"used_tools"`
}

// Report renders the banner-plus-JSON block the parent model reads the
// delegation outcome from.
func (r *Result) Report() string {
	body, err := json.MarshalIndent(taskReport{
		AgentType:  string(r.Role),
		DurationMS: r.Duration.Milliseconds(),
		Model:      r.Model,
		Result:     r.Output,
		Task:       r.Task,
		UsedTools:  r.UsedTools,
	}, "", "  ")
	if err != nil {
		return reportBanner + r.Output
	}
	return reportBanner + string(body)
}
