package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cronograma/internal/theme"
)

// Command is a parsed palette entry.
type Command struct {
	Name string
	Args []string
}

// Arg returns the i-th argument or an empty string.
func (c Command) Arg(i int) string {
	if i < len(c.Args) {
		return c.Args[i]
	}
	return ""
}

// CommandMsg is emitted when the user executes a command.
type CommandMsg Command

// Spec describes a command the palette knows about.
type Spec struct {
	Name  string
	Usage string
	Help  string
}

// Known lists the commands the root model handles.
var Known = []Spec{
	{"import", "import <arquivo> [projeto]", "importar planilha csv/xlsx"},
	{"export", "export <arquivo.csv|xlsx>", "exportar a planilha ativa"},
	{"sheets", "sheets", "trocar de planilha"},
	{"sync", "sync", "sincronizar fontes agora"},
	{"sweep", "sweep", "verificar tarefas atrasadas"},
	{"digest", "digest", "enviar resumo diário"},
	{"gcal", "gcal", "enviar eventos ao Google Calendar"},
	{"clear", "clear", "limpar filtros"},
	{"week", "week", "gantt semanal"},
	{"month", "month", "gantt mensal"},
	{"today", "today", "voltar para hoje"},
	{"settings", "settings", "configurações"},
	{"quit", "quit", "sair"},
}

// Parse splits a palette line into a command. Names are matched case
// insensitively and unique prefixes are expanded.
func Parse(line string) (Command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false
	}
	cmd := Command{Name: strings.ToLower(fields[0]), Args: fields[1:]}
	matches := Suggest(cmd.Name)
	if len(matches) == 1 {
		cmd.Name = matches[0].Name
		return cmd, true
	}
	for _, s := range matches {
		if s.Name == cmd.Name {
			return cmd, true
		}
	}
	return cmd, false
}

// Suggest returns the known commands whose name starts with prefix.
func Suggest(prefix string) []Spec {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var out []Spec
	for _, s := range Known {
		if strings.HasPrefix(s.Name, prefix) {
			out = append(out, s)
		}
	}
	return out
}

// Model is the command palette view.
type Model struct {
	input  textinput.Model
	errMsg string
	width  int
	height int
}

// New creates a new command palette model.
func New(width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "digite um comando..."
	ti.Prompt = ": "
	ti.Focus()
	ti.Width = width - 6

	return Model{
		input:  ti,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages for the command palette.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			cmd, ok := Parse(line)
			if !ok {
				m.errMsg = "comando desconhecido: " + cmd.Name
				return m, nil
			}
			m.input.Reset()
			m.errMsg = ""
			return m, func() tea.Msg { return CommandMsg(cmd) }

		case "tab":
			head, rest, _ := strings.Cut(m.input.Value(), " ")
			if matches := Suggest(head); len(matches) == 1 && rest == "" {
				m.input.SetValue(matches[0].Name + " ")
				m.input.CursorEnd()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the command palette.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	head, _, _ := strings.Cut(m.input.Value(), " ")
	var rows []string
	for _, s := range Suggest(head) {
		rows = append(rows, lipgloss.NewStyle().Foreground(theme.ColorBlue).Width(30).Render(s.Usage)+
			theme.DimmedStyle.Render(s.Help))
	}

	parts := []string{titleStyle.Render("Comandos"), m.input.View(), ""}
	parts = append(parts, rows...)
	if m.errMsg != "" {
		parts = append(parts, "", lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.errMsg))
	}

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// SetSize updates the command palette dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.Width = width - 6
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Reset clears the input and any error.
func (m *Model) Reset() {
	m.input.Reset()
	m.errMsg = ""
}
