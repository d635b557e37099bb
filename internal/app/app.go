package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/cronograma/internal/assistant"
	"github.com/nhle/cronograma/internal/jobs"
	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/notify"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/state"
	"github.com/nhle/cronograma/internal/store"
	appsync "github.com/nhle/cronograma/internal/sync"
	"github.com/nhle/cronograma/internal/ui"
	aiview "github.com/nhle/cronograma/internal/ui/ai"
	"github.com/nhle/cronograma/internal/ui/calendar"
	"github.com/nhle/cronograma/internal/ui/command"
	configview "github.com/nhle/cronograma/internal/ui/config"
	"github.com/nhle/cronograma/internal/ui/detail"
	"github.com/nhle/cronograma/internal/ui/filter"
	"github.com/nhle/cronograma/internal/ui/gantt"
	helpview "github.com/nhle/cronograma/internal/ui/help"
	"github.com/nhle/cronograma/internal/ui/notifications"
	"github.com/nhle/cronograma/internal/ui/sheets"
	"github.com/nhle/cronograma/internal/ui/taskform"
	"github.com/nhle/cronograma/internal/ui/tasklist"
	"github.com/nhle/cronograma/internal/ui/team"
)

// unreadCountMsg carries the number of unread notifications to the UI.
type unreadCountMsg struct {
	count int
}

// membersMsg carries the roster used for responsible suggestions.
type membersMsg struct {
	members []model.TeamMember
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewSchedule ViewState = iota
	ViewGantt
	ViewCalendar
	ViewTeam
	ViewNotifications
	ViewDetail
	ViewTaskForm
	ViewFilter
	ViewSheets
	ViewAssistant
	ViewSettings
	ViewHelp
	ViewCommand
)

// tabViews are the views reachable with the number keys, in tab order.
var tabViews = []ViewState{ViewSchedule, ViewGantt, ViewCalendar, ViewTeam, ViewNotifications}

// Deps are the long-lived services the TUI drives.
type Deps struct {
	Config     *model.AppConfig
	ConfigPath string
	Store      store.Store
	Secrets    Secrets
	Center     *notify.Center
	Poller     *appsync.Poller
	Assistant  *assistant.Assistant

	// Jobs runs the sweep and digest on demand; built from Store and
	// Center when nil.
	Jobs *jobs.Runner

	// Rows mirrors edits of backend sheets; nil keeps edits local.
	Rows RowWriter
}

// Model is the root Bubble Tea model that manages view routing,
// layout, and access to the services.
type Model struct {
	currentView  ViewState
	previousView ViewState
	detailReturn ViewState
	layout       ui.Layout

	cfg        *model.AppConfig
	configPath string
	store      store.Store
	secrets    Secrets
	center     *notify.Center
	poller     *appsync.Poller
	jobs       *jobs.Runner
	rows       RowWriter
	session    *state.Session
	gens       *state.Generations
	keys       *keys.KeyMap

	taskList      tasklist.Model
	detail        detail.Model
	taskForm      taskform.Model
	filterView    filter.Model
	ganttView     gantt.Model
	calendarView  calendar.Model
	teamView      team.Model
	notifyView    notifications.Model
	sheetsView    sheets.Model
	aiView        aiview.Model
	configView    configview.Model
	helpView      helpview.Model
	commandView   command.Model

	members          []model.TeamMember
	ready            bool
	unreadCount      int
	notice           string
	noticeErr        bool
	authErrorMessage string
}

// New creates the root model.
func New(d Deps) (Model, error) {
	sess, err := state.NewSession(d.Config.Display)
	if err != nil {
		return Model{}, fmt.Errorf("creating session: %w", err)
	}
	loc := sess.Location()
	gens := state.NewGenerations()
	k := keys.DefaultKeyMap()

	runner := d.Jobs
	if runner == nil {
		runner = jobs.New(d.Store, d.Center, loc)
	}
	poller := d.Poller
	if poller == nil {
		poller = appsync.New(d.Store, d.Center)
	}
	bot := d.Assistant
	if bot == nil {
		bot = assistant.New(assistant.NewLocalResponder(d.Store))
	}

	var tester configview.Tester
	var vault configview.Secrets
	if d.Secrets != nil {
		tester = ConnectionTester(d.Secrets, d.Store, loc)
		vault = d.Secrets
	}

	const w, h = 80, 24
	return Model{
		currentView:  ViewSchedule,
		cfg:          d.Config,
		configPath:   d.ConfigPath,
		store:        d.Store,
		secrets:      d.Secrets,
		center:       d.Center,
		poller:       poller,
		jobs:         runner,
		rows:         d.Rows,
		session:      sess,
		gens:         gens,
		keys:         k,
		taskList:     tasklist.New(d.Store, k, sess, gens, w, h),
		detail:       detail.New(d.Store, k, sess, w, h),
		taskForm:     taskform.New(loc, w, h),
		filterView:   filter.New(w, h),
		ganttView:    gantt.New(sess, k, w, h),
		calendarView: calendar.New(d.Store, k, sess, gens, d.Center, w, h),
		teamView:     team.New(d.Store, k, sess, gens, w, h),
		notifyView:   notifications.New(d.Center, k, w, h),
		sheetsView:   sheets.New(d.Store, k, d.Center, loc, w, h),
		aiView:       aiview.New(bot, k, w, h),
		configView:   configview.New(*d.Config, d.ConfigPath, vault, tester, k, w, h),
		helpView:     helpview.New(k, w, h),
		commandView:  command.New(w, h),
	}, nil
}

// Init loads the schedule, the roster and the unread count, and starts
// the poller.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.taskList.Init(),
		m.loadMembers(),
		m.fetchUnreadCount(),
		m.poller.Start(),
	)
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.resize()
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case appsync.SyncResultMsg:
		if msg.AuthError != nil {
			m.authErrorMessage = msg.AuthError.Message
		} else if msg.Error == nil {
			m.authErrorMessage = ""
		}
		if msg.Error != nil {
			log.Printf("sync %s: %v", msg.Source, msg.Error)
		}
		cmds := []tea.Cmd{m.poller.WaitForNextResult(), m.fetchUnreadCount()}
		if r := msg.Result; r.Sheets > 0 || r.Tasks > 0 {
			cmds = append(cmds, m.taskList.LoadTasks())
		}
		if msg.Result.Members > 0 {
			cmds = append(cmds, m.loadMembers())
		}
		cmds = append(cmds, m.reloadActive())
		return m, tea.Batch(cmds...)

	case unreadCountMsg:
		m.unreadCount = msg.count
		return m, nil

	case membersMsg:
		m.members = msg.members
		return m, nil

	case ui.NoticeMsg:
		m.setNotice(msg.Text, msg.Err)
		return m, nil

	case tasklist.TasksLoadedMsg:
		var cmd tea.Cmd
		m.taskList, cmd = m.taskList.Update(msg)
		m.ganttView.SetTasks(m.taskList.Tasks())
		return m, cmd

	case detail.DetailLoadedMsg:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd

	case calendar.EventsLoadedMsg, calendar.EventsChangedMsg:
		var cmd tea.Cmd
		m.calendarView, cmd = m.calendarView.Update(msg)
		return m, tea.Batch(cmd, m.fetchUnreadCount())

	case aiview.ReplyMsg:
		var cmd tea.Cmd
		m.aiView, cmd = m.aiView.Update(msg)
		return m, cmd

	case ui.SelectedTaskMsg:
		m.openView(ViewDetail)
		cmd := m.detail.Load(msg.TaskID)
		return m, cmd

	case ui.TaskActionMsg:
		return m.handleTaskAction(msg)

	case taskDoneMsg:
		m.setNotice(msg.notice, msg.err)
		return m, m.afterTaskChange()

	case taskform.SubmittedMsg:
		m.closeView()
		return m, m.saveTask(msg)

	case taskform.CancelMsg:
		m.closeView()
		return m, nil

	case filter.AppliedMsg:
		m.closeView()
		m.session.Filter = msg.Filter
		cmd := m.taskList.Refresh()
		m.ganttView.SetTasks(m.taskList.Tasks())
		return m, cmd

	case filter.CancelMsg:
		m.closeView()
		return m, nil

	case detail.BackMsg:
		m.closeView()
		return m, nil

	case team.MembersChangedMsg:
		return m, tea.Batch(m.loadMembers(), m.taskList.LoadTasks())

	case notifications.ChangedMsg:
		return m, m.fetchUnreadCount()

	case sheets.SelectedMsg:
		m.session.SelectSheet(msg.SheetID)
		m.currentView = ViewSchedule
		return m, m.taskList.LoadTasks()

	case sheets.ChangedMsg:
		return m, tea.Batch(m.taskList.LoadTasks(), m.fetchUnreadCount())

	case sheets.CloseMsg:
		m.closeView()
		return m, nil

	case aiview.CloseMsg:
		m.closeView()
		return m, nil

	case configview.SavedMsg:
		m.applySettings(msg)
		return m, nil

	case configview.ConfigDoneMsg:
		m.closeView()
		return m, nil

	case command.CommandMsg:
		m.closeView()
		cmd := m.executeCommand(command.Command(msg))
		return m, cmd

	case importedMsg:
		m.session.SelectSheet(msg.sheet.ID)
		m.currentView = ViewSchedule
		m.setNotice(fmt.Sprintf("Planilha %s importada", msg.sheet.Label()), nil)
		return m, tea.Batch(m.taskList.LoadTasks(), m.fetchUnreadCount())

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.poller.Stop()
			return m, tea.Quit
		}
		if !m.capturingInput() {
			if next, cmd, handled := m.handleGlobalKey(msg); handled {
				return next, cmd
			}
		}
	}

	// Delegate to active sub-view
	return m.updateActiveView(msg)
}

// capturingInput reports whether the active view is consuming keystrokes
// as text or form input.
func (m Model) capturingInput() bool {
	switch m.currentView {
	case ViewSchedule:
		return m.taskList.Searching() || m.taskList.Confirming()
	case ViewCalendar:
		return m.calendarView.Editing()
	case ViewTeam:
		return m.teamView.Editing()
	case ViewSheets:
		return m.sheetsView.Editing()
	case ViewSettings:
		return m.configView.Editing()
	case ViewTaskForm, ViewFilter, ViewAssistant, ViewCommand:
		return true
	}
	return false
}

func (m Model) isTab(v ViewState) bool {
	for _, t := range tabViews {
		if t == v {
			return true
		}
	}
	return false
}

// handleGlobalKey processes keys that work across views.
func (m Model) handleGlobalKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit) && m.isTab(m.currentView):
		m.poller.Stop()
		return m, tea.Quit, true

	case key.Matches(msg, m.keys.Help):
		if m.currentView == ViewHelp {
			m.closeView()
			return m, nil, true
		}
		m.openView(ViewHelp)
		return m, nil, true

	case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
		m.closeView()
		return m, nil, true

	case key.Matches(msg, m.keys.Command):
		m.openView(ViewCommand)
		m.commandView.Reset()
		cmd := m.commandView.Focus()
		return m, cmd, true
	}

	if !m.isTab(m.currentView) {
		return m, nil, false
	}

	for i, b := range []key.Binding{m.keys.ViewSchedule, m.keys.ViewGantt, m.keys.ViewCalendar, m.keys.ViewTeam, m.keys.ViewNotifications} {
		if key.Matches(msg, b) {
			m.currentView = tabViews[i]
			return m, m.reloadActive(), true
		}
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.setNotice("Sincronizando...", nil)
		return m, tea.Batch(m.poller.RefreshAll(), m.taskList.LoadTasks()), true

	case key.Matches(msg, m.keys.Filter) && (m.currentView == ViewSchedule || m.currentView == ViewGantt):
		m.openView(ViewFilter)
		cmd := m.filterView.Open(m.taskList.AllTasks(), m.session.Filter)
		return m, cmd, true

	case key.Matches(msg, m.keys.Sheets):
		m.openView(ViewSheets)
		cmd := m.sheetsView.Load(m.session.SheetID)
		return m, cmd, true

	case key.Matches(msg, m.keys.Assistant):
		m.openView(ViewAssistant)
		cmd := m.aiView.Focus()
		return m, cmd, true

	case key.Matches(msg, m.keys.Settings):
		m.openView(ViewSettings)
		return m, m.configView.Init(), true
	}
	return m, nil, false
}

// openView remembers where to return and switches to v. Overlays
// return to the tab or detail that opened them; the detail view returns
// to its tab.
func (m *Model) openView(v ViewState) {
	if m.currentView == v {
		return
	}
	switch {
	case v == ViewDetail:
		m.detailReturn = m.tabView()
	case m.isTab(m.currentView) || m.currentView == ViewDetail:
		m.previousView = m.currentView
	}
	m.currentView = v
}

// closeView returns to the view that opened the current one.
func (m *Model) closeView() {
	if m.currentView == ViewDetail {
		m.currentView = m.detailReturn
		return
	}
	m.currentView = m.previousView
}

// tabView is the tab the user is on, or last was on.
func (m Model) tabView() ViewState {
	switch {
	case m.isTab(m.currentView):
		return m.currentView
	case m.currentView == ViewDetail:
		return m.detailReturn
	case m.isTab(m.previousView):
		return m.previousView
	}
	return m.detailReturn
}

// reloadActive refreshes the data of the active tab.
func (m Model) reloadActive() tea.Cmd {
	switch m.currentView {
	case ViewCalendar:
		return m.calendarView.Load()
	case ViewTeam:
		return m.teamView.Load()
	case ViewNotifications:
		return m.notifyView.Load()
	}
	return nil
}

// afterTaskChange reloads everything that shows tasks.
func (m Model) afterTaskChange() tea.Cmd {
	cmds := []tea.Cmd{m.taskList.LoadTasks(), m.fetchUnreadCount(), m.reloadActive()}
	if m.currentView == ViewDetail {
		if t := m.detail.Task(); t != nil {
			cmds = append(cmds, m.detail.Load(t.ID))
		}
	}
	return tea.Batch(cmds...)
}

// applySettings pushes saved settings into the running services.
func (m *Model) applySettings(msg configview.SavedMsg) {
	*m.cfg = msg.Config
	switch msg.Section {
	case configview.SectionNotifications:
		if err := m.center.UpdateSettings(msg.Config.Notifications.NotificationSettings); err != nil {
			m.setNotice("", err)
			return
		}
		m.setNotice("Notificações atualizadas", nil)
	case configview.SectionDisplay:
		m.session.SetMode(schedule.ParseViewMode(msg.Config.Display.ViewMode))
		m.ganttView.SetTasks(m.taskList.Tasks())
		m.setNotice("Exibição atualizada; fuso e zoom valem no próximo início", nil)
	case configview.SectionBackend, configview.SectionMail, configview.SectionAssistant:
		m.setNotice("Configuração salva; vale no próximo início", nil)
	default:
		m.setNotice("Configuração salva", nil)
	}
}

func (m *Model) setNotice(text string, err error) {
	m.noticeErr = err != nil
	if err != nil {
		m.notice = fmt.Sprintf("Error: %v", err)
		return
	}
	m.notice = text
}

func (m *Model) resize() {
	w := m.layout.ContentWidth()
	h := m.layout.ContentHeight()
	m.taskList.SetSize(w, h)
	m.detail.SetSize(w, h)
	m.taskForm.SetSize(w, h)
	m.filterView.SetSize(w, h)
	m.ganttView.SetSize(w, h)
	m.calendarView.SetSize(w, h)
	m.teamView.SetSize(w, h)
	m.notifyView.SetSize(w, h)
	m.sheetsView.SetSize(w, h)
	m.aiView.SetSize(w, h)
	m.configView.SetSize(w, h)
	m.helpView.SetSize(w, h)
	m.commandView.SetSize(w, h)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewSchedule:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewGantt:
		m.ganttView, cmd = m.ganttView.Update(msg)
	case ViewCalendar:
		m.calendarView, cmd = m.calendarView.Update(msg)
	case ViewTeam:
		m.teamView, cmd = m.teamView.Update(msg)
	case ViewNotifications:
		m.notifyView, cmd = m.notifyView.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewTaskForm:
		m.taskForm, cmd = m.taskForm.Update(msg)
	case ViewFilter:
		m.filterView, cmd = m.filterView.Update(msg)
	case ViewSheets:
		m.sheetsView, cmd = m.sheetsView.Update(msg)
	case ViewAssistant:
		m.aiView, cmd = m.aiView.Update(msg)
	case ViewSettings:
		m.configView, cmd = m.configView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Back) {
			m.closeView()
			return m, nil
		}
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	headerTitle := "Cronograma"
	if sh := m.taskList.Sheet(); sh != nil {
		headerTitle += " · " + sh.Label()
	}
	if m.unreadCount > 0 {
		headerTitle += fmt.Sprintf(" [%d novas]", m.unreadCount)
	}
	header := m.layout.RenderHeader(headerTitle, m.syncStatus())
	tabs := m.layout.RenderTabs(m.tabLabels(), m.activeTab())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, tabs, m.renderContent(), statusBar)
}

func (m Model) tabLabels() []string {
	notes := "5 Notificações"
	if m.unreadCount > 0 {
		notes = fmt.Sprintf("5 Notificações (%d)", m.unreadCount)
	}
	return []string{"1 Cronograma", "2 Gantt", "3 Calendário", "4 Equipe", notes}
}

func (m Model) activeTab() int {
	v := m.tabView()
	for i, t := range tabViews {
		if t == v {
			return i
		}
	}
	return 0
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewSchedule:
		return m.taskList.View()
	case ViewGantt:
		return m.ganttView.View()
	case ViewCalendar:
		return m.calendarView.View()
	case ViewTeam:
		return m.teamView.View()
	case ViewNotifications:
		return m.notifyView.View()
	case ViewDetail:
		return m.detail.View()
	case ViewTaskForm:
		return m.taskForm.View()
	case ViewFilter:
		return m.filterView.View()
	case ViewSheets:
		return m.sheetsView.View()
	case ViewAssistant:
		return m.aiView.View()
	case ViewSettings:
		return m.configView.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// syncStatus returns a short string describing the combined sync state.
func (m Model) syncStatus() string {
	statuses := m.poller.GetStatuses()
	if len(statuses) == 0 {
		return "local"
	}

	running := 0
	var staleNames []string
	for _, s := range statuses {
		switch s.State {
		case appsync.SyncRunning:
			running++
		case appsync.SyncError:
			staleNames = append(staleNames, string(s.SourceType))
		}
	}

	if running > 0 {
		return fmt.Sprintf("syncing (%d)", running)
	}
	if len(staleNames) > 0 {
		return "⚠ unreachable: " + strings.Join(staleNames, ", ")
	}
	return "idle"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	if m.notice != "" && m.isTab(m.currentView) {
		return m.notice
	}
	if m.authErrorMessage != "" && m.isTab(m.currentView) {
		return m.authErrorMessage
	}

	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | s start | u unstart | +/_ progress | e edit | d delete | j/k scroll"
	case ViewTaskForm, ViewFilter:
		return "enter next | shift+tab previous | esc cancel"
	case ViewSheets:
		return "enter open | n import | x export | d delete | esc back"
	case ViewAssistant:
		return "enter send | esc close"
	case ViewSettings:
		return "enter edit | t test | esc back"
	case ViewGantt:
		return "h/l period | m week/month | =/- zoom | t today | f filter | enter open"
	case ViewCalendar:
		return "h/l day | j/k week | t today | n new event | d delete | enter open"
	case ViewTeam:
		return "n new | e edit | d delete"
	case ViewNotifications:
		return "x read | X read all | d delete | D clear all"
	default:
		if s := m.session.Filter.Summary(); s != "" {
			return s + " | f filters"
		}
		return "q quit | ? help | / search | f filter | n new | s start | +/_ progress | o sheets | : command"
	}
}

// fetchUnreadCount returns a tea.Cmd that asks the notification center
// for the number of unread notifications.
func (m Model) fetchUnreadCount() tea.Cmd {
	c := m.center
	return func() tea.Msg {
		n, err := c.UnreadCount(context.Background())
		if err != nil {
			log.Printf("counting unread notifications: %v", err)
			return unreadCountMsg{count: 0}
		}
		return unreadCountMsg{count: n}
	}
}

func (m Model) loadMembers() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		members, err := s.GetMembers(context.Background())
		if err != nil {
			log.Printf("loading team members: %v", err)
		}
		return membersMsg{members: members}
	}
}
