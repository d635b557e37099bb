package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cronograma/internal/assistant"
	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/theme"
)

// CloseMsg asks the root to close the panel.
type CloseMsg struct{}

// ReplyMsg carries one chunk of a reply; Done ends it.
type ReplyMsg struct {
	Text string
	Done bool
	ch   <-chan assistant.StreamChunk
}

// Model is the chat panel. The conversation itself lives in the
// assistant; the panel only renders it.
type Model struct {
	assistant *assistant.Assistant
	input     textarea.Model
	viewport  viewport.Model
	pending   string
	failure   string
	streaming bool
	keys      *keys.KeyMap
	width     int
	height    int
}

// New creates the chat panel.
func New(a *assistant.Assistant, k *keys.KeyMap, width, height int) Model {
	ta := textarea.New()
	ta.Placeholder = "Pergunte sobre o cronograma..."
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.SetWidth(width - 4)
	ta.SetHeight(3)
	ta.CharLimit = 2000
	ta.Focus()

	vp := viewport.New(width-4, max(height-8, 4))
	vp.Style = lipgloss.NewStyle()

	m := Model{
		assistant: a,
		input:     ta,
		viewport:  vp,
		keys:      k,
		width:     width,
		height:    height,
	}
	m.refreshViewport()
	return m
}

// Init returns the initial command for the panel.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ReplyMsg:
		return m.handleReply(msg)

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd
	var taCmd, vpCmd tea.Cmd
	m.input, taCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, taCmd, vpCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		if m.streaming {
			return m, nil
		}
		return m, func() tea.Msg { return CloseMsg{} }

	case "ctrl+l":
		if !m.streaming {
			m.Reset()
		}
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "enter":
		if m.streaming {
			return m, nil
		}
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Reset()
		m.pending = text
		m.failure = ""
		m.streaming = true
		m.refreshViewport()
		return m, m.sendMessage(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleReply(msg ReplyMsg) (Model, tea.Cmd) {
	if msg.Done {
		m.streaming = false
		m.pending = ""
		m.refreshViewport()
		return m, nil
	}
	if msg.Text != "" && msg.ch == nil {
		m.failure = msg.Text
	}
	m.refreshViewport()
	if msg.ch != nil {
		return m, nextReply(msg.ch)
	}
	return m, nil
}

// sendMessage asks the assistant and delivers its first chunk.
func (m Model) sendMessage(text string) tea.Cmd {
	a := m.assistant
	return func() tea.Msg {
		ch, err := a.SendMessage(context.Background(), text)
		if err != nil {
			return ReplyMsg{Text: fmt.Sprintf("Error: %v", err), Done: true}
		}
		return nextReply(ch)()
	}
}

func nextReply(ch <-chan assistant.StreamChunk) tea.Cmd {
	return func() tea.Msg {
		chunk, ok := <-ch
		if !ok {
			return ReplyMsg{Done: true}
		}
		if chunk.Done {
			return ReplyMsg{Text: chunk.Text, Done: true}
		}
		return ReplyMsg{Text: chunk.Text, ch: ch}
	}
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderConversation())
	m.viewport.GotoBottom()
}

func (m Model) renderConversation() string {
	roleStyle := lipgloss.NewStyle().Bold(true)
	userStyle := roleStyle.Foreground(theme.ColorBlue)
	botStyle := roleStyle.Foreground(theme.ColorGreen)
	contentStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite).Width(max(m.width-6, 20))

	var sections []string
	add := func(label, content string) {
		sections = append(sections, label, contentStyle.Render(content), "")
	}

	history := m.assistant.Messages()
	for _, msg := range history {
		if msg.Role == assistant.RoleUser {
			add(userStyle.Render("Você:"), msg.Content)
		} else {
			add(botStyle.Render("Melora:"), msg.Content)
		}
	}

	if m.streaming {
		// The assistant records the question only once it starts answering.
		if n := len(history); n == 0 || history[n-1].Content != m.pending {
			add(userStyle.Render("Você:"), m.pending)
		}
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render("..."))
	}
	if m.failure != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(theme.ColorRed).Render(m.failure))
	}
	return strings.Join(sections, "\n")
}

// View renders the panel.
func (m Model) View() string {
	title := theme.TitleStyle.Render(fmt.Sprintf("Assistente  %s", theme.DimmedStyle.Render("modo "+m.assistant.Mode())))

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-6, 80), 1)))

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		m.viewport.View(),
		separator,
		m.input.View(),
		theme.HelpStyle.Render("enter send | ctrl+l new conversation | esc back"),
	)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Render(content)
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width - 4)
	m.viewport.Width = width - 4
	m.viewport.Height = max(height-8, 4)
	m.refreshViewport()
}

// Focus gives keyboard focus to the text input.
func (m *Model) Focus() tea.Cmd {
	return m.input.Focus()
}

// Reset clears the conversation back to the greeting.
func (m *Model) Reset() {
	m.streaming = false
	m.pending = ""
	m.failure = ""
	m.input.Reset()
	m.assistant.Reset()
	m.refreshViewport()
}
