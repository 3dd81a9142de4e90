package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	pickTitle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	pickSub      = lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	pickCursor   = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	pickSelected = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	pickDesc     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	pickDim      = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	pickKey      = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

type pickerModel struct {
	names    []string
	describe func(string) string
	cursor   int
	chosen   string
}

func newPicker(names []string, describe func(string) string) pickerModel {
	if describe == nil {
		describe = func(string) string { return "" }
	}
	return pickerModel{names: names, describe: describe}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "enter":
		if len(m.names) > 0 {
			m.chosen = m.names[m.cursor]
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString("\n\n    " + pickTitle.Render("ORBITSIM") + "\n    " + pickSub.Render("choose a preset") + "\n    " + pickSub.Render("─────────────────────────") + "\n\n")
	for i, name := range m.names {
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pickCursor.Render("▸"), pickSelected.Render(fmt.Sprintf("%-10s", name)), pickDesc.Render(m.describe(name))))
		} else {
			b.WriteString(fmt.Sprintf("      %s  %s\n", pickDim.Render(fmt.Sprintf("%-10s", name)), pickDim.Render(m.describe(name))))
		}
	}
	b.WriteString("\n    " + pickKey.Render("j/k") + pickDim.Render(" navigate  ") + pickKey.Render("enter") + pickDim.Render(" select  ") + pickKey.Render("q") + pickDim.Render(" quit") + "\n")
	return b.String()
}

// PickPreset shows a menu of names and returns the chosen one, or "" when
// the user backs out.
func PickPreset(names []string, describe func(string) string) (string, error) {
	final, err := tea.NewProgram(newPicker(names, describe), tea.WithAltScreen()).Run()
	if err != nil {
		return "", err
	}
	return final.(pickerModel).chosen, nil
}
