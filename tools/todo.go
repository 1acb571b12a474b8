package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/ostglass/squire"
)

// TodoItem is a single entry in the todo list.
type TodoItem struct {
	Content    string `json:"content" jsonschema:"required,description=The task description in imperative form (e.g. 'Run tests')"`
	Status     string `json:"status" jsonschema:"required,enum=pending,enum=in_progress,enum=completed,description=The current status of the task"`
	ActiveForm string `json:"activeForm" jsonschema:"required,description=The task description in present continuous form (e.g. 'Running tests')"`
}

// TodoInput defines the input for the todo_write tool.
type TodoInput struct {
	Todos []TodoItem `json:"todos" jsonschema:"required,description=The updated todo list with all current tasks"`
}

// TodoTool formats the model's todo list into a progress summary. It keeps
// no state: the model sends the complete list on every update.
type TodoTool struct{}

var _ squire.Tool[TodoInput] = (*TodoTool)(nil)

func (t *TodoTool) Name() string { return "todo_write" }
func (t *TodoTool) Description() string {
	return "Update the todo list to track progress and organize tasks"
}

func (t *TodoTool) Execute(_ context.Context, input TodoInput) (*squire.ToolResult, error) {
	pending, inProgress, completed := 0, 0, 0

	var b strings.Builder
	b.WriteString("Todo list updated:\n")
	for i, todo := range input.Todos {
		if todo.Content == "" {
			return squire.ErrorResult(fmt.Sprintf("todo %d: content is required", i+1)), nil
		}
		if todo.ActiveForm == "" {
			return squire.ErrorResult(fmt.Sprintf("todo %d: activeForm is required", i+1)), nil
		}

		var icon string
		switch todo.Status {
		case "pending":
			icon = "○"
			pending++
		case "in_progress":
			icon = "◐"
			inProgress++
		case "completed":
			icon = "●"
			completed++
		default:
			return squire.ErrorResult(fmt.Sprintf(
				"todo %d: invalid status %q, must be one of 'pending', 'in_progress', or 'completed'",
				i+1, todo.Status,
			)), nil
		}
		fmt.Fprintf(&b, "  %s %s\n", icon, todo.ActiveForm)
	}

	fmt.Fprintf(&b, "\nTotal: %d tasks (%d pending, %d in progress, %d completed)",
		len(input.Todos), pending, inProgress, completed)

	return squire.TextResult(b.String()), nil
}
