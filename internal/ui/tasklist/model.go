package tasklist

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/state"
	"github.com/nhle/cronograma/internal/store"
	"github.com/nhle/cronograma/internal/theme"
	"github.com/nhle/cronograma/internal/ui"
)

const view = "tasks"

// TasksLoadedMsg is sent when the active sheet and its tasks have been
// loaded from the store.
type TasksLoadedMsg struct {
	Token state.Token
	Sheet *model.Spreadsheet
	Tasks []model.Task
	Err   error
}

// Model is the schedule table of the active spreadsheet.
type Model struct {
	list        list.Model
	store       store.Store
	keys        *keys.KeyMap
	session     *state.Session
	gens        *state.Generations
	searchMode  bool
	searchInput textinput.Model
	sheet       *model.Spreadsheet
	all         []model.Task
	visible     []model.Task
	counters    schedule.Counters
	confirm     *huh.Form
	confirmed   *bool
	pending     model.Task
	width       int
	height      int
}

// New creates a new schedule table.
func New(s store.Store, k *keys.KeyMap, sess *state.Session, gens *state.Generations, width, height int) Model {
	delegate := ItemDelegate{now: sess.Now}
	l := list.New([]list.Item{}, delegate, width, height-3)
	l.Title = "Cronograma"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	si := textinput.New()
	si.Placeholder = "search tasks..."
	si.Prompt = "/ "
	si.Width = width - 4

	return Model{
		list:        l,
		store:       s,
		keys:        k,
		session:     sess,
		gens:        gens,
		searchInput: si,
		confirmed:   new(bool),
		width:       width,
		height:      height,
	}
}

// Init returns a command that loads the active sheet.
func (m Model) Init() tea.Cmd {
	return m.LoadTasks()
}

// Update handles messages for the schedule table.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		if !m.gens.Current(msg.Token) {
			return m, nil
		}
		if msg.Err != nil {
			return m, ui.Notice("", msg.Err)
		}
		m.sheet = msg.Sheet
		if msg.Sheet != nil {
			m.session.SelectSheet(msg.Sheet.ID)
			m.list.Title = msg.Sheet.Label()
		} else {
			m.list.Title = "Cronograma"
		}
		m.all = msg.Tasks
		cmd := m.Refresh()
		return m, cmd

	case tea.KeyMsg:
		if m.confirm != nil {
			return m.updateConfirm(msg)
		}
		if m.searchMode {
			return m.handleSearchKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	if m.confirm != nil {
		return m.updateConfirm(msg)
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// Refresh re-applies the session filter to the loaded tasks.
func (m *Model) Refresh() tea.Cmd {
	now := m.session.Now()
	m.counters = schedule.Count(m.all, now)
	m.visible = m.session.Filter.Apply(m.all, now)
	items := make([]list.Item, len(m.visible))
	for i, t := range m.visible {
		items[i] = TaskItem{Task: t, Status: schedule.TaskStatus(t, now)}
	}
	return m.list.SetItems(items)
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchMode = false
		m.session.Filter.Query = m.searchInput.Value()
		cmd := m.Refresh()
		return m, cmd

	case "esc":
		m.searchMode = false
		m.searchInput.Reset()
		m.session.Filter.Query = ""
		cmd := m.Refresh()
		return m, cmd
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Search) {
		m.searchMode = true
		m.searchInput.SetValue(m.session.Filter.Query)
		cmd := m.searchInput.Focus()
		return m, cmd
	}
	if key.Matches(msg, m.keys.New) && m.sheet != nil {
		t := model.Task{SheetID: m.sheet.ID, ProjectName: m.sheet.Project}
		return m, action(ui.ActionNew, t)
	}

	item, ok := m.list.SelectedItem().(TaskItem)
	if ok {
		switch {
		case key.Matches(msg, m.keys.Select):
			id := item.Task.ID
			return m, func() tea.Msg { return ui.SelectedTaskMsg{TaskID: id} }
		case key.Matches(msg, m.keys.Edit):
			return m, action(ui.ActionEdit, item.Task)
		case key.Matches(msg, m.keys.Start):
			return m, action(ui.ActionStart, item.Task)
		case key.Matches(msg, m.keys.Unstart):
			return m, action(ui.ActionUnstart, item.Task)
		case key.Matches(msg, m.keys.Progress):
			return m, action(ui.ActionProgress, item.Task)
		case key.Matches(msg, m.keys.Regress):
			return m, action(ui.ActionRegress, item.Task)
		case key.Matches(msg, m.keys.Delete):
			cmd := m.ConfirmDelete(item.Task)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// ConfirmDelete asks before deleting t.
func (m *Model) ConfirmDelete(t model.Task) tea.Cmd {
	*m.confirmed = false
	m.pending = t
	m.confirm = ui.NewConfirm(
		fmt.Sprintf("Delete task #%d?", t.Number),
		t.Name,
		m.confirmed,
		m.width, m.height,
	)
	return m.confirm.Init()
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.confirm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirm = f
	}
	switch m.confirm.State {
	case huh.StateCompleted:
		m.confirm = nil
		if *m.confirmed {
			return m, action(ui.ActionDelete, m.pending)
		}
		return m, nil
	case huh.StateAborted:
		m.confirm = nil
		return m, nil
	}
	return m, cmd
}

func action(a ui.TaskAction, t model.Task) tea.Cmd {
	return func() tea.Msg { return ui.TaskActionMsg{Action: a, Task: t} }
}

// View renders the schedule table.
func (m Model) View() string {
	if m.confirm != nil {
		return ui.ViewForm(m.confirm)
	}

	summary := m.renderSummary()
	if m.searchMode {
		searchBar := lipgloss.NewStyle().
			Foreground(theme.ColorWhite).
			Padding(0, 1).
			Render(m.searchInput.View())
		return lipgloss.JoinVertical(lipgloss.Left, summary, searchBar, m.list.View())
	}

	if len(m.list.Items()) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, summary, m.renderEmptyState())
	}

	return lipgloss.JoinVertical(lipgloss.Left, summary, m.list.View())
}

func (m Model) renderSummary() string {
	c := m.counters
	line := fmt.Sprintf(" %d tarefas · %d concluídas · %d em andamento · %d atrasadas · %d%%",
		c.Total, c.Done, c.InProgress, c.Overdue, c.Percent())
	if !m.session.Filter.IsEmpty() {
		line += theme.NoticeStyle.Render("  filtro: " + m.session.Filter.Summary())
	}
	return theme.DimmedStyle.Render(line)
}

func (m Model) renderEmptyState() string {
	style := lipgloss.NewStyle().
		Width(m.width).
		Height(m.height-2).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray)

	if m.sheet == nil {
		return style.Render(
			"No spreadsheet imported yet.\n\n" +
				"Press o to import one, or : then 'import <file>'.",
		)
	}
	if !m.session.Filter.IsEmpty() {
		return style.Render("No matching tasks.\nPress f to adjust the filters.")
	}
	return style.Render("This spreadsheet has no tasks.\nPress n to add one.")
}

// LoadTasks returns a tea.Cmd that loads the active sheet, falling back to
// the first available sheet when none is selected or it was deleted.
func (m Model) LoadTasks() tea.Cmd {
	tok := m.gens.Next(view)
	sheetID := m.session.SheetID
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		sheet, err := resolveSheet(ctx, s, sheetID)
		if err != nil || sheet == nil {
			return TasksLoadedMsg{Token: tok, Err: err}
		}
		tasks, err := s.GetTasks(ctx, store.TaskFilter{SheetID: &sheet.ID, SortBy: "number"})
		if err != nil {
			return TasksLoadedMsg{Token: tok, Err: err}
		}
		return TasksLoadedMsg{Token: tok, Sheet: sheet, Tasks: tasks}
	}
}

func resolveSheet(ctx context.Context, s store.Store, id string) (*model.Spreadsheet, error) {
	if id != "" {
		sheet, err := s.GetSpreadsheetByID(ctx, id)
		if err == nil {
			return sheet, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}
	sheets, err := s.GetSpreadsheets(ctx)
	if err != nil || len(sheets) == 0 {
		return nil, err
	}
	return &sheets[0], nil
}

// Sheet returns the active spreadsheet, or nil when none is loaded.
func (m Model) Sheet() *model.Spreadsheet { return m.sheet }

// Tasks returns the tasks that pass the current filter.
func (m Model) Tasks() []model.Task { return m.visible }

// AllTasks returns every task of the active sheet.
func (m Model) AllTasks() []model.Task { return m.all }

// Confirming reports whether a delete confirmation is open.
func (m Model) Confirming() bool { return m.confirm != nil }

// Searching reports whether the search bar has focus.
func (m Model) Searching() bool { return m.searchMode }

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
	m.searchInput.Width = width - 4
}
