// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
)

// CommandResult represents the result of executing an external command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	// Combined holds stdout and stderr interleaved in the order they were
	// written. Tools such as dbt print their version banner to either
	// stream depending on release.
	Combined string
}

// Success returns true if the command exited with code 0.
func (r CommandResult) Success() bool {
	return r.ExitCode == 0
}

// Output returns the combined output, falling back to stdout followed by
// stderr for results that were built without it.
func (r CommandResult) Output() string {
	if r.Combined != "" {
		return r.Combined
	}
	return r.Stdout + r.Stderr
}

// CommandCall records a command invocation.
type CommandCall struct {
	Command string
	Args    []string
}

// CommandRunner executes external commands.
type CommandRunner interface {
	Run(ctx context.Context, command string, args ...string) (CommandResult, error)
}
