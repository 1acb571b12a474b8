package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ostglass/squire"
)

// GlobInput defines the input for the glob tool.
type GlobInput struct {
	Pattern string `json:"pattern" jsonschema:"required,description=The glob pattern to match files (e.g. '**/*.go'). * matches within a path segment and ** spans segments"`
	Path    string `json:"path,omitempty" jsonschema:"description=The base directory to search in. Defaults to the current working directory"`
}

// GlobTool matches files against a glob pattern under a base directory and
// returns the matches sorted by modification time, newest first.
type GlobTool struct{}

var _ squire.Tool[GlobInput] = (*GlobTool)(nil)

func (t *GlobTool) Name() string { return "glob" }
func (t *GlobTool) Description() string {
	return "Search for files matching a glob pattern. Returns a list of matching file paths sorted by modification time."
}

func (t *GlobTool) Execute(ctx context.Context, input GlobInput) (*squire.ToolResult, error) {
	if input.Pattern == "" {
		return squire.ErrorResult("pattern is required"), nil
	}

	basePath := input.Path
	if basePath == "" {
		basePath = squire.ContextWorkDir(ctx)
	}
	if basePath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return squire.ErrorResult(fmt.Sprintf("failed to get working directory: %s", err.Error())), nil
		}
		basePath = wd
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return squire.ErrorResult(fmt.Sprintf("invalid path: %s", err.Error())), nil
	}

	matches, err := doublestar.Glob(os.DirFS(absBase), input.Pattern)
	if err != nil {
		return squire.ErrorResult(fmt.Sprintf("invalid glob pattern '%s': %s", input.Pattern, err.Error())), nil
	}
	if len(matches) == 0 {
		return squire.TextResult(fmt.Sprintf("No files found matching pattern: %s", input.Pattern)), nil
	}

	type fileEntry struct {
		path    string
		modTime int64
	}
	entries := make([]fileEntry, 0, len(matches))
	for _, m := range matches {
		fullPath := filepath.Join(absBase, m)
		info, err := os.Stat(fullPath)
		if err != nil {
			continue
		}
		entries = append(entries, fileEntry{path: fullPath, modTime: info.ModTime().UnixNano()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime > entries[j].modTime
	})

	var b strings.Builder
	for _, e := range entries {
		b.WriteString(e.path)
		b.WriteByte('\n')
	}
	return squire.TextResult(b.String()), nil
}
