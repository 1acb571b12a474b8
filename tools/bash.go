package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/creack/pty"

	"github.com/ostglass/squire"
)

const (
	defaultBashTimeoutMs = 120_000
	maxBashTimeoutMs     = 600_000
	maxOutputBytes       = 30_000
)

// BashInput defines the input for the bash tool.
type BashInput struct {
	Command string `json:"command" jsonschema:"required,description=The bash command to execute"`
	Timeout *int   `json:"timeout,omitempty" jsonschema:"description=Timeout in milliseconds (max 600000)"`
}

// BashTool runs shell commands through `sh -c` under a pseudo-terminal, so
// programs that adjust their output for a TTY behave as they would
// interactively. When no PTY can be allocated it falls back to plain
// execution.
type BashTool struct{}

var _ squire.Tool[BashInput] = (*BashTool)(nil)

func (t *BashTool) Name() string        { return "bash" }
func (t *BashTool) Description() string { return "Execute bash commands in the shell" }

func (t *BashTool) Execute(ctx context.Context, input BashInput) (*squire.ToolResult, error) {
	if input.Command == "" {
		return squire.ErrorResult("command is required"), nil
	}

	timeoutMs := defaultBashTimeoutMs
	if input.Timeout != nil && *input.Timeout > 0 {
		timeoutMs = min(*input.Timeout, maxBashTimeoutMs)
	}

	cmdCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, "sh", "-c", input.Command)
	applyExecContext(ctx, cmd)

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return t.executeWithoutPTY(cmdCtx, input.Command, timeoutMs)
	}
	defer ptmx.Close()

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, ptmx) // PTY reads end with EIO when the process exits

	waitErr := cmd.Wait()
	return commandResult(cmdCtx, buf.String(), waitErr, timeoutMs)
}

func (t *BashTool) executeWithoutPTY(ctx context.Context, command string, timeoutMs int) (*squire.ToolResult, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	applyExecContext(ctx, cmd)
	output, err := cmd.CombinedOutput()
	return commandResult(ctx, string(output), err, timeoutMs)
}

// commandResult turns captured output and the wait error into a ToolResult
// carrying the exit code. Non-zero exits are error results so the dispatch
// policy decides their fate.
func commandResult(ctx context.Context, output string, waitErr error, timeoutMs int) (*squire.ToolResult, error) {
	if len(output) > maxOutputBytes {
		output = output[:maxOutputBytes] + "\n... [output truncated]"
	}

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.As(waitErr, &exitErr):
			exitCode = exitErr.ExitCode()
		case ctx.Err() == context.DeadlineExceeded:
			return squire.ErrorResult(fmt.Sprintf("command timed out after %dms", timeoutMs)), nil
		default:
			exitCode = -1
		}
	}

	result := squire.TextResult(output)
	result.Metadata = map[string]any{"exit_code": exitCode}
	if exitCode != 0 {
		result.IsError = true
		if output == "" {
			result.Content = fmt.Sprintf("command failed with exit code %d", exitCode)
		}
	}
	return result, nil
}
