package squire

// EventSink receives advisory notifications as a turn progresses: reasoning
// and response text as it streams, and tool dispatch milestones. Callbacks are
// a side channel for display; they must not affect control flow, and
// implementations should return quickly.
type EventSink interface {
	// OnReasoning delivers one complete line of model reasoning text.
	// Reasoning is display-only: it never enters the conversation history.
	OnReasoning(line string)

	// OnContent delivers an incremental fragment of final response text.
	OnContent(delta string)

	// OnToolStart fires before a tool dispatch. args is display-formatted,
	// not necessarily valid JSON.
	OnToolStart(name, args string)

	// OnToolResult delivers the result text of a successful dispatch.
	OnToolResult(content string)

	// OnToolError delivers the message of a failed dispatch.
	OnToolError(msg string)

	// OnNotice delivers orchestration announcements, such as subagent
	// spawn and completion notes.
	OnNotice(msg string)
}

// NopSink is an EventSink that discards every event. It is the default sink
// for agents constructed without WithSink.
type NopSink struct{}

func (NopSink) OnReasoning(string)         {}
func (NopSink) OnContent(string)           {}
func (NopSink) OnToolStart(string, string) {}
func (NopSink) OnToolResult(string)        {}
func (NopSink) OnToolError(string)         {}
func (NopSink) OnNotice(string)            {}

var _ EventSink = NopSink{}
