package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/theme"
)

// sections names the groups returned by KeyMap.FullHelp, in order.
var sections = []string{"Navegação", "Telas", "Ferramentas", "Tarefas", "Notificações"}

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the help overlay, one titled block per key group.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue)

	m.help.Width = m.width - 4
	blocks := []string{titleStyle.Render("Atalhos de teclado")}
	for i, group := range m.keys.FullHelp() {
		name := ""
		if i < len(sections) {
			name = sections[i]
		}
		blocks = append(blocks,
			sectionStyle.Render(name),
			m.help.FullHelpView(columns(group, 4)),
			"",
		)
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, blocks...))
}

// columns splits a group into help columns of at most n bindings.
func columns(group []key.Binding, n int) [][]key.Binding {
	var out [][]key.Binding
	for len(group) > n {
		out = append(out, group[:n])
		group = group[n:]
	}
	if len(group) > 0 {
		out = append(out, group)
	}
	return out
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
