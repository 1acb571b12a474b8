package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEditTool_Execute_ReplaceFirst(t *testing.T) {
	path := writeTempFile(t, "hello world")

	tool := &EditTool{}
	result, err := tool.Execute(context.Background(), EditInput{
		FilePath:  path,
		OldString: "world",
		NewString: "there",
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, result.Content, "Successfully replaced 1 occurrence(s)")

	data, _ := os.ReadFile(path)
	assert.Equal(t, "hello there", string(data))
}

func TestEditTool_Execute_ReplaceAll(t *testing.T) {
	path := writeTempFile(t, "a b a b a")

	tool := &EditTool{}
	result, err := tool.Execute(context.Background(), EditInput{
		FilePath:   path,
		OldString:  "a",
		NewString:  "c",
		ReplaceAll: true,
	})
	require.NoError(t, err)
	assert.Contains(t, result.Content, "Successfully replaced 3 occurrence(s)")

	data, _ := os.ReadFile(path)
	assert.Equal(t, "c b c b c", string(data))
}

func TestEditTool_Execute_AmbiguousWithoutReplaceAll(t *testing.T) {
	path := writeTempFile(t, "dup dup")

	tool := &EditTool{}
	result, err := tool.Execute(context.Background(), EditInput{
		FilePath:  path,
		OldString: "dup",
		NewString: "uniq",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "appears 2 times")

	// File unchanged on error.
	data, _ := os.ReadFile(path)
	assert.Equal(t, "dup dup", string(data))
}

func TestEditTool_Execute_NotFound(t *testing.T) {
	path := writeTempFile(t, "hello world")

	tool := &EditTool{}
	result, err := tool.Execute(context.Background(), EditInput{
		FilePath:  path,
		OldString: "absent",
		NewString: "anything",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "old_string not found")
}

func TestEditTool_Execute_IdenticalStrings(t *testing.T) {
	tool := &EditTool{}
	result, err := tool.Execute(context.Background(), EditInput{
		FilePath:  "/tmp/whatever.txt",
		OldString: "same",
		NewString: "same",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "must be different")
}

func TestEditTool_Execute_MissingFile(t *testing.T) {
	tool := &EditTool{}
	result, err := tool.Execute(context.Background(), EditInput{
		FilePath:  "/nonexistent/file.txt",
		OldString: "a",
		NewString: "b",
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content, "failed to read file")
}
