package prompt

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/lightdash/lightdash-cli/internal/ports"
)

// Spinner is a terminal activity indicator. Output that is not a terminal
// shows nothing.
type Spinner struct {
	s *spinner.Spinner
}

// SpinnerOption configures a Spinner.
type SpinnerOption func(*spinnerConfig)

type spinnerConfig struct {
	w     io.Writer
	color string
}

// WithSpinnerWriter sets where the spinner is drawn. Defaults to stderr.
func WithSpinnerWriter(w io.Writer) SpinnerOption {
	return func(c *spinnerConfig) {
		c.w = w
	}
}

// WithSpinnerColor sets the spinner color, for example "yellow".
func WithSpinnerColor(color string) SpinnerOption {
	return func(c *spinnerConfig) {
		c.color = color
	}
}

// NewSpinner creates a stopped spinner showing suffix next to it.
func NewSpinner(suffix string, opts ...SpinnerOption) *Spinner {
	cfg := spinnerConfig{w: os.Stderr, color: "yellow"}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cfg.w))
	if cfg.color != "" {
		s.Color(cfg.color) //nolint:errcheck
	}
	s.Suffix = " " + suffix
	return &Spinner{s: s}
}

// Start shows the spinner.
func (s *Spinner) Start() {
	s.s.Start()
}

// Stop hides the spinner. Stopping a stopped spinner does nothing.
func (s *Spinner) Stop() {
	s.s.Stop()
}

// Active reports whether the spinner is being drawn.
func (s *Spinner) Active() bool {
	return s.s.Active()
}

var _ ports.Progress = (*Spinner)(nil)
