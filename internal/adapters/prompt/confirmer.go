// Package prompt implements ports.Confirmer and ports.Progress for the
// terminal.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lightdash/lightdash-cli/internal/ports"
	"golang.org/x/term"
)

// ErrInterrupted is returned when the operator quits the prompt with ctrl+c.
var ErrInterrupted = errors.New("prompt interrupted")

// TerminalConfirmer asks on the terminal. A bubbletea yes/no dialog is used
// when input is a TTY; otherwise a "[y/N]" line is read.
type TerminalConfirmer struct {
	in          io.Reader
	out         io.Writer
	interactive func() bool
}

// TerminalOption configures a TerminalConfirmer.
type TerminalOption func(*TerminalConfirmer)

// WithInput sets the reader answers come from.
func WithInput(r io.Reader) TerminalOption {
	return func(c *TerminalConfirmer) {
		c.in = r
	}
}

// WithOutput sets where the question is written.
func WithOutput(w io.Writer) TerminalOption {
	return func(c *TerminalConfirmer) {
		c.out = w
	}
}

// WithInteractive overrides terminal detection.
func WithInteractive(enabled bool) TerminalOption {
	return func(c *TerminalConfirmer) {
		c.interactive = func() bool { return enabled }
	}
}

// NewTerminalConfirmer creates a confirmer reading stdin and writing stderr.
func NewTerminalConfirmer(opts ...TerminalOption) *TerminalConfirmer {
	c := &TerminalConfirmer{
		in:  os.Stdin,
		out: os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.interactive == nil {
		c.interactive = func() bool { return IsTerminal(c.in) }
	}
	return c
}

// Confirm asks message and reports whether the operator said yes.
// The last line of message is the question; anything above it is shown
// as a warning.
func (c *TerminalConfirmer) Confirm(ctx context.Context, message string) (bool, error) {
	if c.interactive() {
		return c.confirmDialog(ctx, message)
	}
	return c.confirmLine(ctx, message)
}

func (c *TerminalConfirmer) confirmDialog(ctx context.Context, message string) (bool, error) {
	warning, question := splitQuestion(message)

	p := tea.NewProgram(newConfirmModel(warning, question),
		tea.WithContext(ctx),
		tea.WithInput(c.in),
		tea.WithOutput(c.out),
	)
	final, err := p.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return false, ctxErr
	}
	if err != nil {
		return false, fmt.Errorf("run confirm dialog: %w", err)
	}

	m, ok := final.(confirmModel)
	if !ok {
		return false, fmt.Errorf("run confirm dialog: unexpected model %T", final)
	}
	if m.quit {
		return false, ErrInterrupted
	}
	return m.answer, nil
}

func (c *TerminalConfirmer) confirmLine(ctx context.Context, message string) (bool, error) {
	if _, err := fmt.Fprintf(c.out, "%s [y/N]: ", message); err != nil {
		return false, fmt.Errorf("write prompt: %w", err)
	}

	type reply struct {
		line string
		err  error
	}
	replies := make(chan reply, 1)
	go func() {
		line, err := bufio.NewReader(c.in).ReadString('\n')
		replies <- reply{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case r := <-replies:
		if r.err != nil && !errors.Is(r.err, io.EOF) {
			return false, fmt.Errorf("read answer: %w", r.err)
		}
		return parseAnswer(r.line), nil
	}
}

// AutoConfirmer accepts every question without asking.
type AutoConfirmer struct{}

// Confirm returns true.
func (AutoConfirmer) Confirm(context.Context, string) (bool, error) {
	return true, nil
}

// IsTerminal reports whether v is a file attached to a terminal.
func IsTerminal(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func parseAnswer(line string) bool {
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func splitQuestion(message string) (warning, question string) {
	message = strings.TrimRight(message, "\n")
	i := strings.LastIndex(message, "\n")
	if i < 0 {
		return "", message
	}
	return message[:i], message[i+1:]
}

var (
	_ ports.Confirmer = (*TerminalConfirmer)(nil)
	_ ports.Confirmer = AutoConfirmer{}
)
