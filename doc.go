// Package squire is a conversational agent runtime for local chat-completion
// endpoints.
//
// It turns one streaming chat endpoint (Ollama by default) into a multi-turn,
// tool-using assistant that can delegate bounded sub-tasks to independently
// configured subagents. Two entry points matter:
//
//   - [Agent] drives one conversation: model calls, tool dispatch, and
//     iteration ceilings for a single logical turn.
//   - [Spawner] (implemented by the subagent package) intercepts delegation
//     tool calls and runs isolated child agents, optionally several
//     concurrently.
//
// # Quick Start
//
//	client := ollama.New(ollama.WithToolDefs(reg.Definitions()))
//	a := squire.New(client, squire.WithTools(reg))
//	answer, err := a.Invoke(ctx, "what files are in this directory?")
//
// # Sub-packages
//
//   - [llm/ollama] streams NDJSON chat responses and decodes them.
//   - [llm/openai] and [llm/anthropic] adapt hosted providers to the same
//     ChatClient contract.
//   - [subagent] provides the delegation tool, role catalog, and concurrent
//     task fan-out.
//   - [tools] provides built-in tools (bash, read, write, edit, glob, grep,
//     web_fetch, todo_write).
//   - [config] loads provider settings from disk and environment.
package squire
