package prompt

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorWarning = lipgloss.AdaptiveColor{Light: "#df8e1d", Dark: "#f9e2af"}
	colorPrimary = lipgloss.AdaptiveColor{Light: "#1e66f5", Dark: "#89b4fa"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#9ca0b0", Dark: "#6c7086"}
)

type styles struct {
	Warning      lipgloss.Style
	Question     lipgloss.Style
	Button       lipgloss.Style
	ButtonActive lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Warning:  lipgloss.NewStyle().Foreground(colorWarning),
		Question: lipgloss.NewStyle().Bold(true),
		Button: lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted),
		ButtonActive: lipgloss.NewStyle().
			Padding(0, 2).
			Bold(true).
			Foreground(colorPrimary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary),
	}
}

type keyMap struct {
	Left   key.Binding
	Right  key.Binding
	Select key.Binding
	Accept key.Binding
	Reject key.Binding
	Cancel key.Binding
	Quit   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "yes"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "no"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "select"),
		),
		Accept: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "continue"),
		),
		Reject: key.NewBinding(
			key.WithKeys("n", "N"),
			key.WithHelp("n", "abort"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "abort"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// confirmModel is a yes/no question rendered under a warning.
// It defaults to No.
type confirmModel struct {
	warning  string
	question string
	yes      bool
	done     bool
	answer   bool
	quit     bool
	keys     keyMap
	styles   styles
}

func newConfirmModel(warning, question string) confirmModel {
	return confirmModel{
		warning:  warning,
		question: question,
		keys:     defaultKeyMap(),
		styles:   defaultStyles(),
	}
}

// Init implements tea.Model.
func (m confirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quit = true
		return m, tea.Quit
	case key.Matches(keyMsg, m.keys.Left):
		m.yes = true
	case key.Matches(keyMsg, m.keys.Right):
		m.yes = false
	case key.Matches(keyMsg, m.keys.Select):
		return m.finish(m.yes)
	case key.Matches(keyMsg, m.keys.Accept):
		return m.finish(true)
	case key.Matches(keyMsg, m.keys.Reject), key.Matches(keyMsg, m.keys.Cancel):
		return m.finish(false)
	}
	return m, nil
}

func (m confirmModel) finish(answer bool) (tea.Model, tea.Cmd) {
	m.done = true
	m.answer = answer
	return m, tea.Quit
}

// View implements tea.Model.
func (m confirmModel) View() string {
	if m.done || m.quit {
		return ""
	}

	yesBtn, noBtn := m.styles.Button, m.styles.ButtonActive
	if m.yes {
		yesBtn, noBtn = m.styles.ButtonActive, m.styles.Button
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Center, yesBtn.Render("Yes"), "  ", noBtn.Render("No"))

	parts := make([]string, 0, 4)
	if m.warning != "" {
		parts = append(parts, m.styles.Warning.Render(m.warning))
	}
	parts = append(parts, m.styles.Question.Render(m.question), buttons, "")
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
