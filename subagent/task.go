package subagent

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/ostglass/squire"
)

// Task describes one delegation request: who should do it, what it is, and
// how much of the caller's world the child may see. A Task is a value
// object; it has no lifecycle beyond the spawn that consumes it.
type Task struct {
	Role        Role
	Description string
	Prompt      string

	// IncludeContext carries a bounded tail of the caller's conversation
	// into the child. Only programmatic spawns can enable it; the wire
	// surface does not expose it.
	IncludeContext bool

	// IncludeTools lets the child carry the shared tool registry. Roles
	// whose capability flag forbids tools override this to false.
	IncludeTools bool
}

// NewTask builds a Task with context and tools off.
func NewTask(role Role, description, prompt string) Task {
	return Task{Role: role, Description: description, Prompt: prompt}
}

// ParseTask decodes the delegation tool's wire arguments. The role defaults
// to general-purpose when absent; description and prompt are required.
func ParseTask(raw json.RawMessage) (Task, error) {
	var args struct {
		SubagentType string `json:"subagent_type"`
		Description  string `json:"description"`
		Prompt       string `json:"prompt"`
		IncludeTools bool   `json:"include_tools"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &args); err != nil {
			return Task{}, fmt.Errorf("parse task arguments: %w", err)
		}
	}

	role, err := ParseRole(args.SubagentType)
	if err != nil {
		return Task{}, err
	}
	if args.Description == "" {
		return Task{}, errors.New("missing 'description' argument")
	}
	if args.Prompt == "" {
		return Task{}, errors.New("missing 'prompt' argument")
	}

	return Task{
		Role:         role,
		Description:  args.Description,
		Prompt:       args.Prompt,
		IncludeTools: args.IncludeTools,
	}, nil
}

// Definition returns the delegation tool advertised to the model alongside
// the ordinary tools. The subagent_type enum closes over the role set.
func Definition() squire.ToolDefinition {
	names := lo.Map(Roles(), func(r Role, _ int) string { return string(r) })

	return squire.NewToolDefinition(
		squire.TaskToolName,
		"Launch a specialized subagent to handle complex, multi-step tasks autonomously",
		squire.ParametersSchema{
			Properties: map[string]any{
				"subagent_type": map[string]any{
					"type":        "string",
					"description": "The type of subagent to launch",
					"enum":        names,
				},
				"prompt": map[string]any{
					"type":        "string",
					"description": "The detailed task for the agent to perform",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "A short description (3-5 words) of what the agent will do",
				},
				"include_tools": map[string]any{
					"type":        "boolean",
					"description": "Whether the subagent may use tools; roles that forbid tools ignore this",
				},
			},
			Required: []string{"subagent_type", "prompt", "description"},
		})
}
