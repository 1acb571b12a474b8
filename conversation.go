package squire

import (
	"github.com/samber/lo"
)

// Conversation is the append-only, insertion-ordered message log that forms
// the unit of context for a chat call. Each agent exclusively owns one
// Conversation; it is not safe for concurrent use and is never shared between
// a parent and its subagents.
type Conversation struct {
	messages []Message
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// NewConversationFrom creates a conversation seeded with the given messages.
// The slice is copied.
func NewConversationFrom(messages []Message) *Conversation {
	msgs := make([]Message, len(messages))
	copy(msgs, messages)
	return &Conversation{messages: msgs}
}

// Append adds msg to the end of the log.
func (c *Conversation) Append(msg Message) {
	c.messages = append(c.messages, msg)
}

// Messages returns a copy of the log in append order.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages appended so far.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// Clear drops all messages.
func (c *Conversation) Clear() {
	c.messages = c.messages[:0]
}

// LastAssistant returns the content of the most recent assistant message.
func (c *Conversation) LastAssistant() (string, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			return c.messages[i].Content, true
		}
	}
	return "", false
}

// ContextTail returns the newest n non-system messages in append order. It is
// the bounded context window handed to subagents; older history is dropped,
// never an error.
func (c *Conversation) ContextTail(n int) []Message {
	tail := lo.Filter(c.messages, func(m Message, _ int) bool {
		return m.Role != RoleSystem
	})
	if len(tail) > n {
		tail = tail[len(tail)-n:]
	}
	return tail
}
