package squire

import "errors"

// Sentinel errors returned by the agent loops.
var (
	// ErrTooManyIterations is returned when a top-level turn exhausts its
	// tool-call iteration ceiling without producing a final response.
	ErrTooManyIterations = errors.New("squire: too many tool call iterations")

	// ErrNoResponse is returned when a delegated task exhausts its turn
	// ceiling without a single assistant message to fall back on.
	ErrNoResponse = errors.New("squire: no response generated")
)
