// Package notifications lists the notification center.
package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/theme"
)

// Center is the subset of the notification center this view drives.
type Center interface {
	List(ctx context.Context) ([]model.Notification, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context) error
	Clear(ctx context.Context, id string) error
	ClearAll(ctx context.Context) error
}

// ChangedMsg tells the parent the unread count may have changed.
type ChangedMsg struct{}

type loadedMsg struct {
	items []model.Notification
	err   error
}

type doneMsg struct{ err error }

// Model is the notification list.
type Model struct {
	center      Center
	keys        *keys.KeyMap
	items       []model.Notification
	selectedIdx int
	statusMsg   string
	now         func() time.Time
	width       int
	height      int
}

// New creates the notification list.
func New(c Center, k *keys.KeyMap, width, height int) Model {
	return Model{center: c, keys: k, now: time.Now, width: width, height: height}
}

// Load reads the notifications, newest first.
func (m Model) Load() tea.Cmd {
	c := m.center
	return func() tea.Msg {
		items, err := c.List(context.Background())
		return loadedMsg{items: items, err: err}
	}
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.items = msg.items
		if m.selectedIdx >= len(m.items) {
			m.selectedIdx = max(len(m.items)-1, 0)
		}
		return m, nil

	case doneMsg:
		m.statusMsg = ""
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		}
		return m, tea.Batch(m.Load(), func() tea.Msg { return ChangedMsg{} })

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if len(m.items) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.items)
		}
	case key.Matches(msg, m.keys.Up):
		if len(m.items) > 0 {
			m.selectedIdx = (m.selectedIdx - 1 + len(m.items)) % len(m.items)
		}
	case key.Matches(msg, m.keys.MarkRead), key.Matches(msg, m.keys.Select):
		if n, ok := m.selected(); ok && !n.Read {
			return m, m.run(func(ctx context.Context) error { return m.center.MarkRead(ctx, n.ID) })
		}
	case key.Matches(msg, m.keys.MarkAllRead):
		return m, m.run(m.center.MarkAllRead)
	case key.Matches(msg, m.keys.Delete):
		if n, ok := m.selected(); ok {
			return m, m.run(func(ctx context.Context) error { return m.center.Clear(ctx, n.ID) })
		}
	case key.Matches(msg, m.keys.ClearAll):
		return m, m.run(m.center.ClearAll)
	}
	return m, nil
}

func (m Model) selected() (model.Notification, bool) {
	if m.selectedIdx < len(m.items) {
		return m.items[m.selectedIdx], true
	}
	return model.Notification{}, false
}

func (m Model) run(op func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return doneMsg{err: op(context.Background())}
	}
}

// View renders the list.
func (m Model) View() string {
	var b strings.Builder

	unread := 0
	for _, n := range m.items {
		if !n.Read {
			unread++
		}
	}
	b.WriteString(theme.TitleStyle.Render(fmt.Sprintf("Notificações (%d não lidas)", unread)))
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true).Render("Nothing here."))
	}
	for i, n := range m.items {
		b.WriteString(m.renderItem(i, n))
		b.WriteString("\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.NoticeStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.DimmedStyle.Render("x read | X read all | d delete | D clear all"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) renderItem(i int, n model.Notification) string {
	dot := "  "
	if !n.Read {
		dot = theme.NotificationStyle(n.Type).Render("● ")
	}
	title := theme.NotificationStyle(n.Type).Render(n.Title)
	when := theme.DimmedStyle.Render(relativeTime(n.CreatedAt, m.now()))

	body := n.Message
	if first, _, found := strings.Cut(body, "\n"); found {
		body = first + " …"
	}
	line := fmt.Sprintf("%s%s  %s  %s", dot, title, theme.DimmedStyle.Render(body), when)
	if n.Read {
		line = theme.DimmedStyle.Render(line)
	}
	if i == m.selectedIdx {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "agora"
	case d < time.Hour:
		return fmt.Sprintf("%dmin", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	default:
		return t.Format("02/01")
	}
}

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
