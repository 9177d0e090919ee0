package prompt

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func update(t *testing.T, m confirmModel, msg tea.Msg) (confirmModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(confirmModel)
	require.True(t, ok)
	return out, cmd
}

func TestConfirmModel_DefaultsToNo(t *testing.T) {
	t.Parallel()

	m := newConfirmModel("warning", "Continue?")
	assert.False(t, m.yes)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.done)
	assert.False(t, m.answer)
}

func TestConfirmModel_Navigation(t *testing.T) {
	t.Parallel()

	m := newConfirmModel("", "Continue?")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.True(t, m.yes)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	assert.False(t, m.yes)
	m, _ = update(t, m, runes('h'))
	assert.True(t, m.yes)
	m, _ = update(t, m, runes('l'))
	assert.False(t, m.yes)
	assert.False(t, m.done)
}

func TestConfirmModel_SelectFocused(t *testing.T) {
	t.Parallel()

	m := newConfirmModel("", "Continue?")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.True(t, m.done)
	assert.True(t, m.answer)
}

func TestConfirmModel_Shortcuts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  tea.KeyMsg
		want bool
	}{
		{"y accepts", runes('y'), true},
		{"Y accepts", runes('Y'), true},
		{"n rejects", runes('n'), false},
		{"esc rejects", tea.KeyMsg{Type: tea.KeyEsc}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, cmd := update(t, newConfirmModel("", "Continue?"), tt.msg)
			require.NotNil(t, cmd)
			assert.True(t, m.done)
			assert.Equal(t, tt.want, m.answer)
			assert.False(t, m.quit)
		})
	}
}

func TestConfirmModel_CtrlCQuits(t *testing.T) {
	t.Parallel()

	m, cmd := update(t, newConfirmModel("", "Continue?"), tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.True(t, m.quit)
	assert.False(t, m.done)
}

func TestConfirmModel_IgnoresOtherMessages(t *testing.T) {
	t.Parallel()

	m, cmd := update(t, newConfirmModel("", "Continue?"), tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Nil(t, cmd)
	assert.False(t, m.done)
}

func TestConfirmModel_View(t *testing.T) {
	t.Parallel()

	m := newConfirmModel("We don't currently support version 1.10.0 on Lightdash.", "Do you still want to continue?")
	view := m.View()

	assert.Contains(t, view, "We don't currently support version 1.10.0")
	assert.Contains(t, view, "Do you still want to continue?")
	assert.Contains(t, view, "Yes")
	assert.Contains(t, view, "No")

	m, _ = update(t, m, runes('y'))
	assert.Empty(t, m.View())
}
