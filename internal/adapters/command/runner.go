// Package command provides command execution adapters.
package command

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/lightdash/lightdash-cli/internal/ports"
)

// RealRunner executes actual external commands.
type RealRunner struct {
	env []string
}

// NewRealRunner creates a new RealRunner that inherits the process environment.
func NewRealRunner() *RealRunner {
	return &RealRunner{}
}

// WithEnv returns a copy of the runner that appends extra KEY=VALUE pairs
// to the child environment.
func (r *RealRunner) WithEnv(env ...string) *RealRunner {
	merged := make([]string, 0, len(r.env)+len(env))
	merged = append(merged, r.env...)
	merged = append(merged, env...)
	return &RealRunner{env: merged}
}

// Run executes a command and returns the result. A non-zero exit code is
// reported in the result, not as an error; only launch failures and
// context cancellation return an error.
func (r *RealRunner) Run(ctx context.Context, command string, args ...string) (ports.CommandResult, error) {
	cmd := exec.CommandContext(ctx, command, args...)
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}

	var stdout, stderr strings.Builder
	combined := &lockedBuilder{}
	cmd.Stdout = io.MultiWriter(&stdout, combined)
	cmd.Stderr = io.MultiWriter(&stderr, combined)

	err := cmd.Run()

	result := ports.CommandResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Combined: combined.String(),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		return result, err
	}

	return result, nil
}

// lockedBuilder serialises writes from the stdout and stderr copiers.
type lockedBuilder struct {
	mu sync.Mutex
	b  strings.Builder
}

func (l *lockedBuilder) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuilder) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

// Ensure RealRunner implements ports.CommandRunner.
var _ ports.CommandRunner = (*RealRunner)(nil)
