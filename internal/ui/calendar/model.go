// Package calendar renders a month grid of user events and task deadlines.
package calendar

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
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

const view = "calendar"

var weekdays = []string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// Notifier raises the "new event" notification.
type Notifier interface {
	AddEvent(ctx context.Context, title, message string) (*model.Notification, error)
}

// EventsLoadedMsg carries stored events and the tasks they are merged with.
type EventsLoadedMsg struct {
	Token  state.Token
	Events []model.Event
	Tasks  []model.Task
	Err    error
}

// EventsChangedMsg is sent after an event was created or deleted.
type EventsChangedMsg struct {
	Notice string
	Err    error
}

type mode int

const (
	modeGrid mode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	title       string
	date        string
	time        string
	eventType   model.EventType
	duration    string
	priority    model.Priority
	description string
	confirm     bool
}

var (
	nextEvent = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next event"))
	prevEvent = key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous event"))
)

// Model is the calendar view.
type Model struct {
	store    store.Store
	keys     *keys.KeyMap
	session  *state.Session
	gens     *state.Generations
	notifier Notifier
	events   []model.Event
	selected time.Time
	cursor   int
	mode     mode
	form     *huh.Form
	confirm  *huh.Form
	fb       *formBindings
	width    int
	height   int
}

// New creates a calendar view positioned on today.
func New(s store.Store, k *keys.KeyMap, sess *state.Session, gens *state.Generations, n Notifier, width, height int) Model {
	return Model{
		store:    s,
		keys:     k,
		session:  sess,
		gens:     gens,
		notifier: n,
		selected: sess.Today(),
		fb:       &formBindings{},
		width:    width,
		height:   height,
	}
}

// Load reads stored events and every task.
func (m Model) Load() tea.Cmd {
	tok := m.gens.Next(view)
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		events, err := s.GetEvents(ctx)
		if err != nil {
			return EventsLoadedMsg{Token: tok, Err: err}
		}
		tasks, err := s.GetTasks(ctx, store.TaskFilter{})
		if err != nil {
			return EventsLoadedMsg{Token: tok, Err: err}
		}
		return EventsLoadedMsg{Token: tok, Events: events, Tasks: tasks}
	}
}

// Update handles messages for the calendar.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventsLoadedMsg:
		if !m.gens.Current(msg.Token) {
			return m, nil
		}
		if msg.Err != nil {
			return m, ui.Notice("", msg.Err)
		}
		m.events = append(msg.Events, schedule.TasksToEvents(msg.Tasks, m.session.Today())...)
		m.cursor = 0
		return m, nil

	case EventsChangedMsg:
		m.mode = modeGrid
		return m, tea.Batch(ui.Notice(msg.Notice, msg.Err), m.Load())

	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKeys(kmsg)
	}
	return m, nil
}

func (m Model) handleKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Left):
		m.moveDays(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveDays(1)
	case key.Matches(msg, m.keys.Up):
		m.moveDays(-7)
	case key.Matches(msg, m.keys.Down):
		m.moveDays(7)
	case key.Matches(msg, m.keys.Today):
		m.selected = m.session.Today()
		m.cursor = 0
	case key.Matches(msg, nextEvent):
		if n := len(m.dayEvents()); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}
	case key.Matches(msg, prevEvent):
		if n := len(m.dayEvents()); n > 0 {
			m.cursor = (m.cursor - 1 + n) % n
		}
	case key.Matches(msg, m.keys.New):
		return m, m.openForm()
	case key.Matches(msg, m.keys.Select):
		if ev, ok := m.current(); ok && ev.TaskID != "" {
			id := ev.TaskID
			return m, func() tea.Msg { return ui.SelectedTaskMsg{TaskID: id} }
		}
	case key.Matches(msg, m.keys.Delete):
		ev, ok := m.current()
		if !ok {
			return m, nil
		}
		if ev.TaskID != "" {
			return m, ui.Notice("Prazos de tarefas saem do cronograma, não do calendário.", nil)
		}
		m.fb.confirm = false
		m.confirm = ui.NewConfirm(fmt.Sprintf("Excluir evento %q?", ev.Title), ev.Date.Format("02/01/2006"), &m.fb.confirm, m.width, m.height)
		m.mode = modeConfirmDelete
		return m, m.confirm.Init()
	}
	return m, nil
}

func (m *Model) moveDays(n int) {
	m.selected = m.selected.AddDate(0, 0, n)
	m.cursor = 0
}

func (m Model) dayEvents() []model.Event {
	return schedule.EventsOn(m.events, m.selected)
}

func (m Model) current() (model.Event, bool) {
	evs := m.dayEvents()
	if m.cursor < len(evs) {
		return evs[m.cursor], true
	}
	return model.Event{}, false
}

func (m *Model) openForm() tea.Cmd {
	*m.fb = formBindings{
		date:      m.selected.Format("02/01/2006"),
		duration:  "1",
		eventType: model.EventMeeting,
		priority:  model.PriorityMedium,
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Título").
				Value(&m.fb.title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("%s is required", "Título")
					}
					return nil
				}),
			huh.NewInput().
				Title("Data").
				Placeholder("DD/MM/AAAA").
				Value(&m.fb.date).
				Validate(m.validateDate),
			huh.NewInput().
				Title("Hora").
				Placeholder("HH:MM (opcional)").
				Value(&m.fb.time).
				Validate(validateClock),
			huh.NewSelect[model.EventType]().
				Title("Tipo").
				Options(
					huh.NewOption("Reunião", model.EventMeeting),
					huh.NewOption("Prazo", model.EventDeadline),
					huh.NewOption("Revisão", model.EventReview),
					huh.NewOption("Outro", model.EventOther),
				).
				Value(&m.fb.eventType),
			huh.NewInput().
				Title("Duração (dias)").
				Value(&m.fb.duration),
			huh.NewSelect[model.Priority]().
				Title("Prioridade").
				Options(
					huh.NewOption("Alta", model.PriorityHigh),
					huh.NewOption("Média", model.PriorityMedium),
					huh.NewOption("Baixa", model.PriorityLow),
				).
				Value(&m.fb.priority),
			huh.NewText().
				Title("Descrição").
				Value(&m.fb.description),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
	m.mode = modeForm
	return m.form.Init()
}

func (m Model) validateDate(s string) error {
	if schedule.ParseDate(s, m.session.Location()) == nil {
		return fmt.Errorf("invalid date, use DD/MM/AAAA")
	}
	return nil
}

func validateClock(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("invalid time, use HH:MM")
	}
	return nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.mode = modeGrid
		return m, m.createEvent(m.eventFromForm())
	case huh.StateAborted:
		m.mode = modeGrid
		return m, nil
	}
	return m, cmd
}

func (m Model) eventFromForm() model.Event {
	date := schedule.ParseDate(m.fb.date, m.session.Location())
	ev := model.Event{
		Title:        strings.TrimSpace(m.fb.title),
		Time:         strings.TrimSpace(m.fb.time),
		Type:         m.fb.eventType,
		Description:  m.fb.description,
		DurationDays: max(schedule.ParseInt(m.fb.duration), 1),
		Priority:     m.fb.priority,
	}
	if date != nil {
		ev.Date = *date
	}
	return ev
}

func (m Model) createEvent(ev model.Event) tea.Cmd {
	s := m.store
	n := m.notifier
	return func() tea.Msg {
		ctx := context.Background()
		saved, err := s.CreateEvent(ctx, ev)
		if err != nil {
			return EventsChangedMsg{Err: err}
		}
		if n != nil {
			msg := fmt.Sprintf("%s em %s", saved.Title, saved.Date.Format("02/01/2006"))
			if _, err := n.AddEvent(ctx, "Novo evento", msg); err != nil {
				return EventsChangedMsg{Err: err}
			}
		}
		return EventsChangedMsg{Notice: "Evento criado: " + saved.Title}
	}
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.confirm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirm = f
	}
	switch m.confirm.State {
	case huh.StateCompleted:
		m.mode = modeGrid
		ev, ok := m.current()
		if !m.fb.confirm || !ok {
			return m, nil
		}
		s := m.store
		return m, func() tea.Msg {
			if err := s.DeleteEvent(context.Background(), ev.ID); err != nil {
				return EventsChangedMsg{Err: err}
			}
			return EventsChangedMsg{Notice: "Evento excluído: " + ev.Title}
		}
	case huh.StateAborted:
		m.mode = modeGrid
		return m, nil
	}
	return m, cmd
}

// View renders the month grid and the selected day's agenda.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return ui.ViewForm(m.form)
	case modeConfirmDelete:
		return ui.ViewForm(m.confirm)
	}

	grid := m.renderGrid()
	agenda := m.renderAgenda()
	return lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, grid, "", agenda))
}

func (m Model) renderGrid() string {
	cellWidth := max((m.width-4)/7, 6)
	cell := lipgloss.NewStyle().Width(cellWidth)

	first := time.Date(m.selected.Year(), m.selected.Month(), 1, 0, 0, 0, 0, m.selected.Location())
	counts := make(map[int]int)
	for _, ev := range schedule.EventsInMonth(m.events, first) {
		for d := schedule.StartOfDay(ev.Date); !d.After(ev.EndDate()); d = d.AddDate(0, 0, 1) {
			if d.Month() == first.Month() && d.Year() == first.Year() {
				counts[d.Day()]++
			}
		}
	}

	title := theme.TitleStyle.UnsetMarginBottom().Render(monthName(first.Month()) + " " + strconv.Itoa(first.Year()))
	header := make([]string, 7)
	for i, wd := range weekdays {
		header[i] = cell.Foreground(theme.ColorGray).Render(wd)
	}
	rows := []string{title, lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	today := m.session.Today()
	days := schedule.DaysInMonth(first.Year(), first.Month())
	lead := int(first.Weekday())
	var week []string
	for i := 0; i < lead; i++ {
		week = append(week, cell.Render(""))
	}
	for d := 1; d <= days; d++ {
		label := fmt.Sprintf("%2d", d)
		if n := counts[d]; n > 0 {
			label += fmt.Sprintf(" •%d", n)
		}
		style := cell
		date := time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, first.Location())
		switch {
		case sameDay(date, m.selected):
			style = style.Bold(true).Foreground(theme.ColorWhite).Background(theme.ColorBlue)
		case sameDay(date, today):
			style = style.Bold(true).Foreground(theme.ColorYellow)
		case counts[d] > 0:
			style = style.Foreground(theme.ColorGreen)
		}
		week = append(week, style.Render(label))
		if len(week) == 7 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, week...))
			week = nil
		}
	}
	if len(week) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, week...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) renderAgenda() string {
	evs := m.dayEvents()
	head := theme.TitleStyle.UnsetMarginBottom().Render(m.selected.Format("02/01/2006"))
	if len(evs) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, head, theme.DimmedStyle.Render("Nenhum evento. Pressione n para adicionar."))
	}
	lines := []string{head}
	for i, ev := range evs {
		at := ev.Time
		if at == "" {
			at = "--:--"
		}
		source := ""
		if ev.TaskID != "" {
			source = theme.DimmedStyle.Render(" (tarefa)")
		}
		line := fmt.Sprintf("%s %s %s%s",
			at,
			theme.EventTypeStyle(ev.Type).Render(fmt.Sprintf("%-8s", ev.Type)),
			theme.PriorityStyle(ev.Priority).Render(ev.Title),
			source,
		)
		if i == m.cursor {
			line = theme.SelectedItemStyle.Render(line)
		} else {
			line = theme.ListItemStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func monthName(m time.Month) string {
	return [...]string{
		"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
		"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
	}[m-1]
}

// Editing reports whether a form is open.
func (m Model) Editing() bool { return m.mode != modeGrid }

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
