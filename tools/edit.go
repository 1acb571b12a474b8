package tools

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ostglass/squire"
)

// EditInput defines the input for the edit tool.
type EditInput struct {
	FilePath   string `json:"file_path" jsonschema:"required,description=The absolute path to the file to edit"`
	OldString  string `json:"old_string" jsonschema:"required,description=The exact string to search for and replace"`
	NewString  string `json:"new_string" jsonschema:"required,description=The new string to replace the old_string with"`
	ReplaceAll bool   `json:"replace_all,omitempty" jsonschema:"description=Replace all occurrences instead of just the first"`
}

// EditTool performs exact string replacements in files.
type EditTool struct{}

var _ squire.Tool[EditInput] = (*EditTool)(nil)

func (t *EditTool) Name() string { return "edit" }
func (t *EditTool) Description() string {
	return "Edit a file by replacing text. Reads the file, replaces occurrences of old_string with new_string, and writes it back."
}

func (t *EditTool) Execute(ctx context.Context, input EditInput) (*squire.ToolResult, error) {
	if input.FilePath == "" {
		return squire.ErrorResult("file_path is required"), nil
	}
	if input.OldString == "" {
		return squire.ErrorResult("old_string is required"), nil
	}
	if input.OldString == input.NewString {
		return squire.ErrorResult("old_string and new_string must be different"), nil
	}

	path := resolvePath(ctx, input.FilePath)
	data, err := os.ReadFile(path)
	if err != nil {
		return squire.ErrorResult(fmt.Sprintf("failed to read file: %s", err.Error())), nil
	}

	content := string(data)
	count := strings.Count(content, input.OldString)
	if count == 0 {
		return squire.ErrorResult("old_string not found in file"), nil
	}
	if !input.ReplaceAll && count > 1 {
		return squire.ErrorResult(fmt.Sprintf(
			"old_string appears %d times in file; use replace_all=true to replace all occurrences, or provide more context to make it unique",
			count,
		)), nil
	}

	replaced := count
	var newContent string
	if input.ReplaceAll {
		newContent = strings.ReplaceAll(content, input.OldString, input.NewString)
	} else {
		newContent = strings.Replace(content, input.OldString, input.NewString, 1)
		replaced = 1
	}

	if err := os.WriteFile(path, []byte(newContent), 0o644); err != nil {
		return squire.ErrorResult(fmt.Sprintf("failed to write file: %s", err.Error())), nil
	}

	return squire.TextResult(fmt.Sprintf("Successfully replaced %d occurrence(s) in %s", replaced, input.FilePath)), nil
}
