package dbt

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/lightdash/lightdash-cli/internal/domain/config"
	"github.com/lightdash/lightdash-cli/internal/ports"
)

// VersionProbe reports the raw text of the dbt version banner.
type VersionProbe interface {
	Probe(ctx context.Context) (string, error)
}

// ProbeFunc adapts a function to VersionProbe.
type ProbeFunc func(ctx context.Context) (string, error)

// Probe calls f.
func (f ProbeFunc) Probe(ctx context.Context) (string, error) {
	return f(ctx)
}

// CommandProbe runs "<binary> --version" through a CommandRunner and
// returns the combined stdout and stderr.
type CommandProbe struct {
	runner ports.CommandRunner
	binary string
}

// NewCommandProbe creates a probe for the given dbt executable.
// An empty binary selects config.DefaultDbtBinary.
func NewCommandProbe(runner ports.CommandRunner, binary string) *CommandProbe {
	if binary == "" {
		binary = config.DefaultDbtBinary
	}
	return &CommandProbe{runner: runner, binary: binary}
}

// Binary returns the executable the probe runs.
func (p *CommandProbe) Binary() string {
	return p.binary
}

// Probe runs the binary. A non-zero exit is reported as an error alongside
// whatever output was captured.
func (p *CommandProbe) Probe(ctx context.Context) (string, error) {
	result, err := p.runner.Run(ctx, p.binary, "--version")
	output := result.Output()
	if err != nil {
		return output, err
	}
	if !result.Success() {
		return output, fmt.Errorf("%s --version exited with code %d: %s", p.binary, result.ExitCode, strings.TrimSpace(output))
	}
	return output, nil
}

var installedPattern = regexp.MustCompile(`installed:.*`)

// ParseVersionBanner extracts the version from the first "installed: <v>"
// line. Output without such a line, or with nothing after the colon, is a
// detection failure carrying the raw output.
func ParseVersionBanner(output string) (string, error) {
	line := installedPattern.FindString(output)
	if line == "" {
		return "", config.NewDbtVersionUndetectedError(output, nil)
	}
	_, after, _ := strings.Cut(line, ":")
	version := strings.TrimSpace(after)
	if version == "" {
		return "", config.NewDbtVersionUndetectedError(output, nil)
	}
	return version, nil
}

var (
	_ VersionProbe = (*CommandProbe)(nil)
	_ VersionProbe = ProbeFunc(nil)
)
