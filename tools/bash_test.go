package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBashTool_Name(t *testing.T) {
	tool := &BashTool{}
	assert.Equal(t, "bash", tool.Name())
}

func TestBashTool_Execute_SimpleCommand(t *testing.T) {
	tool := &BashTool{}
	result, err := tool.Execute(context.Background(), BashInput{Command: "echo hello"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content, "hello")
	assert.Equal(t, 0, result.Metadata["exit_code"])
}

func TestBashTool_Execute_Pipe(t *testing.T) {
	tool := &BashTool{}
	result, err := tool.Execute(context.Background(), BashInput{Command: "echo hello | tr a-z A-Z"})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content, "HELLO")
}

func TestBashTool_Execute_ExitCode(t *testing.T) {
	tool := &BashTool{}
	result, err := tool.Execute(context.Background(), BashInput{Command: "exit 42"})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, 42, result.Metadata["exit_code"])
}

func TestBashTool_Execute_Stderr(t *testing.T) {
	tool := &BashTool{}
	result, err := tool.Execute(context.Background(), BashInput{Command: "echo boom >&2"})
	require.NoError(t, err)
	assert.Contains(t, result.Content, "boom")
}

func TestBashTool_Execute_EmptyCommand(t *testing.T) {
	tool := &BashTool{}
	result, err := tool.Execute(context.Background(), BashInput{Command: ""})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "command is required")
}

func TestBashTool_Execute_Timeout(t *testing.T) {
	tool := &BashTool{}
	timeoutMs := 200
	result, err := tool.Execute(context.Background(), BashInput{
		Command: "sleep 10",
		Timeout: &timeoutMs,
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
