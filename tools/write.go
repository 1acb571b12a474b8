package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ostglass/squire"
)

// WriteInput defines the input for the write tool.
type WriteInput struct {
	FilePath string `json:"file_path" jsonschema:"required,description=The absolute path to the file to write"`
	Content  string `json:"content" jsonschema:"required,description=The content to write to the file"`
}

// WriteTool writes content to a file, creating parent directories as needed
// and overwriting any existing file.
type WriteTool struct{}

var _ squire.Tool[WriteInput] = (*WriteTool)(nil)

func (t *WriteTool) Name() string { return "write" }
func (t *WriteTool) Description() string {
	return "Write content to a file. Creates the file if it doesn't exist, overwrites if it does."
}

func (t *WriteTool) Execute(ctx context.Context, input WriteInput) (*squire.ToolResult, error) {
	if input.FilePath == "" {
		return squire.ErrorResult("file_path is required"), nil
	}

	path := resolvePath(ctx, input.FilePath)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return squire.ErrorResult(fmt.Sprintf("failed to create directory: %s", err.Error())), nil
		}
	}

	if err := os.WriteFile(path, []byte(input.Content), 0o644); err != nil {
		return squire.ErrorResult(fmt.Sprintf("failed to write file: %s", err.Error())), nil
	}

	return squire.TextResult(fmt.Sprintf("Successfully wrote to file: %s", input.FilePath)), nil
}
