package tools

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/ostglass/squire"
)

// GrepInput defines the input for the grep tool.
type GrepInput struct {
	Pattern         string `json:"pattern" jsonschema:"required,description=The regular expression pattern to search for in file contents"`
	Path            string `json:"path,omitempty" jsonschema:"description=The file or directory to search in. A directory is searched recursively"`
	Glob            string `json:"glob,omitempty" jsonschema:"description=Glob pattern to filter files when searching a directory (e.g. '**/*.go')"`
	OutputMode      string `json:"output_mode,omitempty" jsonschema:"description=content shows matching lines; files_with_matches shows only file paths; count shows match counts per file. Default is content"`
	CaseInsensitive bool   `json:"case_insensitive,omitempty" jsonschema:"description=Case insensitive search"`
}

// GrepTool searches file contents with a regular expression. Directories are
// walked recursively; files that cannot be read (permissions, binary
// content past the scanner limit) are skipped rather than failing the whole
// search.
type GrepTool struct{}

var _ squire.Tool[GrepInput] = (*GrepTool)(nil)

func (t *GrepTool) Name() string { return "grep" }
func (t *GrepTool) Description() string {
	return "Search for text patterns in files using regular expressions. Supports recursive directory searching and multiple output modes."
}

func (t *GrepTool) Execute(ctx context.Context, input GrepInput) (*squire.ToolResult, error) {
	if input.Pattern == "" {
		return squire.ErrorResult("pattern is required"), nil
	}

	pattern := input.Pattern
	if input.CaseInsensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return squire.ErrorResult(fmt.Sprintf("invalid regex pattern '%s': %s", input.Pattern, err.Error())), nil
	}

	path := input.Path
	if path == "" {
		path = squire.ContextWorkDir(ctx)
	}
	if path == "" {
		path = "."
	}
	info, err := os.Stat(path)
	if err != nil {
		return squire.ErrorResult(fmt.Sprintf("path '%s' is not a valid file or directory", path)), nil
	}

	var results []string
	if info.IsDir() {
		files, err := filesToSearch(path, input.Glob)
		if err != nil {
			return squire.ErrorResult(err.Error()), nil
		}
		for _, file := range files {
			found, err := searchFile(file, re, input.OutputMode)
			if err != nil {
				continue
			}
			results = append(results, found...)
		}
	} else {
		if results, err = searchFile(path, re, input.OutputMode); err != nil {
			return squire.ErrorResult(err.Error()), nil
		}
	}

	if len(results) == 0 {
		return squire.TextResult(fmt.Sprintf("No matches found for pattern: %s", input.Pattern)), nil
	}
	text := strings.Join(results, "\n")
	if len(text) > maxOutputBytes {
		text = text[:maxOutputBytes] + "\n... [output truncated]"
	}
	return squire.TextResult(text), nil
}

// filesToSearch lists the regular files under dir, filtered by the glob
// pattern when one is given, in sorted order.
func filesToSearch(dir, globPattern string) ([]string, error) {
	var files []string
	if globPattern != "" {
		matches, err := doublestar.Glob(os.DirFS(dir), globPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern '%s': %s", globPattern, err.Error())
		}
		for _, m := range matches {
			full := filepath.Join(dir, m)
			if info, err := os.Stat(full); err == nil && info.Mode().IsRegular() {
				files = append(files, full)
			}
		}
	} else {
		_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if d.Type().IsRegular() {
				files = append(files, path)
			}
			return nil
		})
	}
	sort.Strings(files)
	return files, nil
}

func searchFile(path string, re *regexp.Regexp, mode string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file '%s': %s", path, err.Error())
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var out []string
	count := 0
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if !re.MatchString(line) {
			continue
		}
		switch mode {
		case "files_with_matches":
			return []string{path}, nil
		case "count":
			count++
		default:
			out = append(out, fmt.Sprintf("%s:%d:%s", path, lineNum, line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file '%s': %s", path, err.Error())
	}
	if mode == "count" && count > 0 {
		return []string{fmt.Sprintf("%s:%d", path, count)}, nil
	}
	return out, nil
}
