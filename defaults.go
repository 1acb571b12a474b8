package squire

// Model and endpoint defaults.
const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "qwen3"

	// DefaultBaseURL is the well-known local chat endpoint.
	DefaultBaseURL = "http://localhost:11434"
)

// Loop ceilings. These bounds are the only protection against unbounded
// model/tool loops; there are no timeouts below them.
const (
	// DefaultMaxIterations bounds tool-call iterations within one top-level
	// turn. Exceeding it fails the turn with ErrTooManyIterations.
	DefaultMaxIterations = 5

	// DefaultMaxTaskTurns bounds model calls within one delegated task.
	// Exhausting it falls back to the last assistant content seen.
	DefaultMaxTaskTurns = 10

	// DefaultContextTail is the maximum number of caller messages forwarded
	// to a subagent that requests conversation context.
	DefaultContextTail = 10
)
