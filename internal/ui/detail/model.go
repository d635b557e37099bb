package detail

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/state"
	"github.com/nhle/cronograma/internal/store"
	"github.com/nhle/cronograma/internal/theme"
	"github.com/nhle/cronograma/internal/ui"
)

// BackMsg signals the parent to navigate back to the list view.
type BackMsg struct{}

// DetailLoadedMsg carries the loaded task.
type DetailLoadedMsg struct {
	Task *model.Task
	Err  error
}

// Model is the task detail view component.
type Model struct {
	task     *model.Task
	viewport viewport.Model
	store    store.Store
	keys     *keys.KeyMap
	session  *state.Session
	width    int
	height   int
	loading  bool
}

// New creates a new detail view model.
func New(s store.Store, keys *keys.KeyMap, sess *state.Session, width, height int) Model {
	vp := viewport.New(width, height-2)
	vp.Style = lipgloss.NewStyle()

	return Model{
		viewport: vp,
		store:    s,
		keys:     keys,
		session:  sess,
		width:    width,
		height:   height,
	}
}

// Init returns the initial command for the detail view.
func (m Model) Init() tea.Cmd {
	return nil
}

// Load fetches a task by ID.
func (m *Model) Load(id string) tea.Cmd {
	m.loading = true
	s := m.store
	return func() tea.Msg {
		t, err := s.GetTaskByID(context.Background(), id)
		return DetailLoadedMsg{Task: t, Err: err}
	}
}

// Update handles messages for the detail view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case DetailLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.task = nil
			return m, ui.Notice("", msg.Err)
		}
		m.SetTask(msg.Task)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Back) {
			return m, func() tea.Msg { return BackMsg{} }
		}
		if m.task != nil {
			if a, ok := m.actionFor(msg); ok {
				t := *m.task
				return m, func() tea.Msg { return ui.TaskActionMsg{Action: a, Task: t} }
			}
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) actionFor(msg tea.KeyMsg) (ui.TaskAction, bool) {
	switch {
	case key.Matches(msg, m.keys.Start):
		return ui.ActionStart, true
	case key.Matches(msg, m.keys.Unstart):
		return ui.ActionUnstart, true
	case key.Matches(msg, m.keys.Progress):
		return ui.ActionProgress, true
	case key.Matches(msg, m.keys.Regress):
		return ui.ActionRegress, true
	case key.Matches(msg, m.keys.Edit):
		return ui.ActionEdit, true
	case key.Matches(msg, m.keys.Delete):
		return ui.ActionDelete, true
	}
	return 0, false
}

// View renders the detail view.
func (m Model) View() string {
	placeholder := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.loading {
		return placeholder.Render("Loading task...")
	}
	if m.task == nil {
		return placeholder.Render("No task selected")
	}
	return m.viewport.View()
}

func (m Model) renderContent() string {
	if m.task == nil {
		return ""
	}

	task := m.task
	now := m.session.Now()
	status := schedule.TaskStatus(*task, now)
	var sections []string

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite)
	sections = append(sections, titleStyle.Render(fmt.Sprintf("#%d  %s", task.Number, task.Name)))

	priority := schedule.InferPriority(*task, m.session.Today())
	badgeLine := lipgloss.JoinHorizontal(
		lipgloss.Top,
		theme.StatusStyle(status).Render(status.Badge()),
		"  ",
		progressLine(task.Percent, status),
		"  ",
		theme.PriorityStyle(priority).Render(string(priority)),
	)
	sections = append(sections, badgeLine, "")

	metaStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Width(16)
	valStyle := lipgloss.NewStyle().Foreground(theme.ColorWhite)
	field := func(label, value string) {
		if value == "" {
			return
		}
		sections = append(sections, metaStyle.Render(label+":")+valStyle.Render(value))
	}

	responsible := task.ResponsibleName
	if responsible != "" {
		responsible = fmt.Sprintf("%s (%s)", responsible, schedule.ShortenName(responsible))
	}
	field("Responsável", responsible)
	field("Projeto", task.ProjectName)
	field("Classificação", task.Classification)
	field("Categoria", task.Category)
	field("Fase", task.Phase)
	field("Condição", task.Condition)
	field("Duração", fmt.Sprintf("%d dia(s)", task.DurationDays))
	field("Início", formatDate(task.StartDate))
	field("Fim", formatDate(task.EndDate))
	field("Prazo", formatDate(task.Deadline))
	if delay := schedule.EffectiveDelay(*task, now); delay > 0 {
		field("Atraso", fmt.Sprintf("%d dia(s)", delay))
	}
	field("Referência", task.ReferenceURL)
	if !task.UpdatedAt.IsZero() {
		field("Atualizada", task.UpdatedAt.In(m.session.Location()).Format("02/01/2006 15:04"))
	}

	sepStyle := lipgloss.NewStyle().Foreground(theme.ColorSubtle)
	separator := sepStyle.Render(strings.Repeat("─", max(min(m.width-4, 80), 1)))
	sections = append(sections, "", separator, "")

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)
	sections = append(sections, headerStyle.Render("Como fazer"))

	body := task.HowTo
	if body == "" {
		body = lipgloss.NewStyle().
			Foreground(theme.ColorGray).
			Italic(true).
			Render("No instructions")
	}
	sections = append(sections, lipgloss.NewStyle().Width(max(m.width-4, 20)).Render(body))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func progressLine(pct int, status model.Status) string {
	const cells = 20
	filled := pct * cells / 100
	return lipgloss.NewStyle().
		Foreground(theme.StatusColor(status)).
		Render(fmt.Sprintf("%s%s %d%%", strings.Repeat("█", filled), strings.Repeat("░", cells-filled), pct))
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}

// SetTask updates the task being displayed and re-renders the content.
func (m *Model) SetTask(t *model.Task) {
	m.task = t
	m.loading = false
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// Task returns the displayed task, or nil.
func (m Model) Task() *model.Task { return m.task }

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height - 2
	m.viewport.SetContent(m.renderContent())
}
