package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoTool_Execute_Basic(t *testing.T) {
	tool := &TodoTool{}
	result, err := tool.Execute(context.Background(), TodoInput{Todos: []TodoItem{
		{Content: "Write tests", Status: "completed", ActiveForm: "Writing tests"},
		{Content: "Fix the bug", Status: "in_progress", ActiveForm: "Fixing the bug"},
		{Content: "Ship it", Status: "pending", ActiveForm: "Shipping it"},
	}})
	require.NoError(t, err)
	assert.False(t, result.IsError)

	assert.Contains(t, result.Content, "Todo list updated:")
	assert.Contains(t, result.Content, "● Writing tests")
	assert.Contains(t, result.Content, "◐ Fixing the bug")
	assert.Contains(t, result.Content, "○ Shipping it")
	assert.Contains(t, result.Content, "Total: 3 tasks (1 pending, 1 in progress, 1 completed)")
}

func TestTodoTool_Execute_EmptyList(t *testing.T) {
	tool := &TodoTool{}
	result, err := tool.Execute(context.Background(), TodoInput{})
	require.NoError(t, err)
	assert.Contains(t, result.Content, "Total: 0 tasks (0 pending, 0 in progress, 0 completed)")
}

func TestTodoTool_Execute_InvalidStatus(t *testing.T) {
	tool := &TodoTool{}
	result, err := tool.Execute(context.Background(), TodoInput{Todos: []TodoItem{
		{Content: "Task", Status: "paused", ActiveForm: "Tasking"},
	}})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, `invalid status "paused"`)
}

func TestTodoTool_Execute_MissingFields(t *testing.T) {
	tool := &TodoTool{}

	result, err := tool.Execute(context.Background(), TodoInput{Todos: []TodoItem{
		{Status: "pending", ActiveForm: "Doing"},
	}})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "content is required")

	result, err = tool.Execute(context.Background(), TodoInput{Todos: []TodoItem{
		{Content: "Task", Status: "pending"},
	}})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "activeForm is required")
}
