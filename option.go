package squire

import (
	"log/slog"

	"github.com/ostglass/squire/internal/budget"
)

// AgentOption configures an Agent via the functional options pattern.
type AgentOption func(*agentOptions)

// agentOptions holds all configurable fields set via AgentOption functions.
type agentOptions struct {
	model         string
	tools         *ToolRegistry
	spawner       Spawner
	sink          EventSink
	logger        *slog.Logger
	tracker       *budget.Tracker
	depth         int
	maxIterations int
}

// applyDefaults fills in zero-value fields with sensible defaults.
func (o *agentOptions) applyDefaults() {
	if o.model == "" {
		o.model = DefaultModel
	}
	if o.tools == nil {
		o.tools = NewToolRegistry()
	}
	if o.sink == nil {
		o.sink = NopSink{}
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	if o.tracker == nil {
		o.tracker = budget.NewTracker(nil)
	}
	if o.maxIterations == 0 {
		o.maxIterations = DefaultMaxIterations
	}
}

// resolveOptions applies all option functions and fills defaults.
func resolveOptions(opts []AgentOption) agentOptions {
	var o agentOptions
	for _, fn := range opts {
		fn(&o)
	}
	o.applyDefaults()
	return o
}

// --- Model & Loop ---

// WithModel sets the model identifier sent with every chat call.
func WithModel(model string) AgentOption {
	return func(o *agentOptions) { o.model = model }
}

// WithMaxIterations overrides the tool-call iteration ceiling for a turn.
func WithMaxIterations(n int) AgentOption {
	return func(o *agentOptions) { o.maxIterations = n }
}

// --- Collaborators ---

// WithTools sets the tool registry the agent dispatches against.
func WithTools(reg *ToolRegistry) AgentOption {
	return func(o *agentOptions) { o.tools = reg }
}

// WithSpawner wires the subagent orchestrator that handles delegation tool
// calls. Without a spawner, delegation calls fail dispatch like any unknown
// tool.
func WithSpawner(s Spawner) AgentOption {
	return func(o *agentOptions) { o.spawner = s }
}

// WithSink sets the observer for streaming and tool dispatch events.
func WithSink(sink EventSink) AgentOption {
	return func(o *agentOptions) { o.sink = sink }
}

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l *slog.Logger) AgentOption {
	return func(o *agentOptions) { o.logger = l }
}

// WithTracker sets the usage tracker that token counts are recorded into.
// Sharing one tracker between a parent agent and its orchestrator aggregates
// subagent usage into the parent's totals.
func WithTracker(t *budget.Tracker) AgentOption {
	return func(o *agentOptions) { o.tracker = t }
}

// --- Delegation depth ---

// WithDepth sets the delegation depth this agent runs at. The orchestrator
// constructs subagents one level deeper than their parent; any delegation
// attempt at depth >= 1 is rejected before dispatch.
func WithDepth(depth int) AgentOption {
	return func(o *agentOptions) { o.depth = depth }
}
