package mocks

import (
	"context"
	"sync"

	"github.com/lightdash/lightdash-cli/internal/ports"
)

// Confirmer answers prompts from a script and records every message.
// When the script runs out it answers with Default.
type Confirmer struct {
	mu      sync.Mutex
	answers []bool
	err     error
	prompts []string

	Default bool
}

// NewConfirmer creates a confirmer that gives answers in order.
func NewConfirmer(answers ...bool) *Confirmer {
	return &Confirmer{answers: answers}
}

// FailWith makes every later Confirm call return err.
func (c *Confirmer) FailWith(err error) *Confirmer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	return c
}

// Confirm records message and returns the next scripted answer.
func (c *Confirmer) Confirm(_ context.Context, message string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, message)
	if c.err != nil {
		return false, c.err
	}
	if len(c.answers) == 0 {
		return c.Default, nil
	}
	answer := c.answers[0]
	c.answers = c.answers[1:]
	return answer, nil
}

// Prompts returns the messages shown so far.
func (c *Confirmer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.prompts))
	copy(out, c.prompts)
	return out
}

// Progress counts Start and Stop calls and remembers whether it is running.
type Progress struct {
	mu      sync.Mutex
	running bool
	starts  int
	stops   int
}

// NewProgress creates an indicator that is already running, as it would
// be when a command starts its spinner before resolving.
func NewProgress() *Progress {
	return &Progress{running: true}
}

// Start marks the indicator running.
func (p *Progress) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = true
	p.starts++
}

// Stop marks the indicator stopped.
func (p *Progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.stops++
}

// Running reports whether the indicator is currently shown.
func (p *Progress) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Counts returns the number of Start and Stop calls.
func (p *Progress) Counts() (starts, stops int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.starts, p.stops
}

var (
	_ ports.Confirmer = (*Confirmer)(nil)
	_ ports.Progress  = (*Progress)(nil)
)
