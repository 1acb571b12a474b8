package tools

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ostglass/squire"
)

// resolvePath resolves a file path against the working directory carried by
// the context. Absolute paths are returned as-is, and so are relative paths
// when the context has no working directory.
func resolvePath(ctx context.Context, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if dir := squire.ContextWorkDir(ctx); dir != "" {
		return filepath.Join(dir, path)
	}
	return path
}

// applyExecContext sets cmd.Dir and cmd.Env from the context values.
func applyExecContext(ctx context.Context, cmd *exec.Cmd) {
	if dir := squire.ContextWorkDir(ctx); dir != "" {
		cmd.Dir = dir
	}
	if env := squire.ContextEnv(ctx); len(env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}
}
