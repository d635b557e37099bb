package team

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-playground/validator/v10"

	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/state"
	"github.com/nhle/cronograma/internal/store"
	"github.com/nhle/cronograma/internal/theme"
	"github.com/nhle/cronograma/internal/ui"
)

const view = "team"

// MembersChangedMsg notifies the parent that the roster was modified.
type MembersChangedMsg struct{}

type membersLoadedMsg struct {
	token   state.Token
	members []model.TeamMember
	tasks   []model.Task
	err     error
}

type memberSavedMsg struct{ err error }
type memberDeletedMsg struct{ err error }

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirmDelete
)

type formBindings struct {
	name     string
	role     string
	team     string
	email    string
	phone    string
	location string
	status   model.MemberStatus
	confirm  bool
}

// Model is the team roster view.
type Model struct {
	mode        mode
	store       store.Store
	keys        *keys.KeyMap
	session     *state.Session
	gens        *state.Generations
	members     []model.TeamMember
	workload    map[string]schedule.Counters
	selectedIdx int
	editing     *model.TeamMember
	form        *huh.Form
	confirmForm *huh.Form
	fb          *formBindings
	statusMsg   string
	width       int
	height      int
}

// New creates a new team view.
func New(s store.Store, k *keys.KeyMap, sess *state.Session, gens *state.Generations, width, height int) Model {
	return Model{
		mode:    modeList,
		store:   s,
		keys:    k,
		session: sess,
		gens:    gens,
		fb:      &formBindings{},
		width:   width, height: height,
	}
}

// Init loads the roster.
func (m Model) Init() tea.Cmd {
	return m.Load()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case membersLoadedMsg:
		if !m.gens.Current(msg.token) {
			return m, nil
		}
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
			return m, nil
		}
		m.members = msg.members
		m.workload = schedule.ByResponsible(msg.tasks, m.session.Now())
		if m.selectedIdx >= len(m.members) {
			m.selectedIdx = max(len(m.members)-1, 0)
		}
		return m, nil

	case memberSavedMsg:
		m.statusMsg = "Member saved"
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		}
		m.mode = modeList
		return m, tea.Batch(m.Load(), func() tea.Msg { return MembersChangedMsg{} })

	case memberDeletedMsg:
		m.statusMsg = "Member deleted"
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("Error: %v", msg.err)
		}
		m.mode = modeList
		return m, tea.Batch(m.Load(), func() tea.Msg { return MembersChangedMsg{} })

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateActiveForm(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch m.mode {
	case modeList:
		return m.handleListKey(msg)
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		if len(m.members) > 0 {
			m.selectedIdx = (m.selectedIdx + 1) % len(m.members)
		}
		return m, nil

	case key.Matches(msg, m.keys.Up):
		if len(m.members) > 0 {
			m.selectedIdx--
			if m.selectedIdx < 0 {
				m.selectedIdx = len(m.members) - 1
			}
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		m.editing = nil
		*m.fb = formBindings{status: model.MemberActive}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if len(m.members) == 0 {
			return m, nil
		}
		mb := m.members[m.selectedIdx]
		m.editing = &mb
		*m.fb = formBindings{
			name:     mb.Name,
			role:     mb.Role,
			team:     mb.Team,
			email:    mb.Email,
			phone:    mb.Phone,
			location: mb.Location,
			status:   mb.Status,
		}
		m.form = m.buildForm()
		m.mode = modeForm
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Delete):
		if len(m.members) == 0 {
			return m, nil
		}
		mb := m.members[m.selectedIdx]
		m.fb.confirm = false
		m.confirmForm = ui.NewConfirm(
			fmt.Sprintf("Remove %s from the team?", mb.Name),
			"Tasks keep the responsible name.",
			&m.fb.confirm, m.width, m.height,
		)
		m.mode = modeConfirmDelete
		return m, m.confirmForm.Init()
	}
	return m, nil
}

func (m Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Nome").
				Value(&m.fb.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("name is required")
					}
					return nil
				}),
			huh.NewInput().Title("Cargo").Value(&m.fb.role),
			huh.NewInput().Title("Equipe").Value(&m.fb.team),
			huh.NewInput().
				Title("E-mail").
				Value(&m.fb.email).
				Validate(validateEmail),
			huh.NewInput().Title("Telefone").Value(&m.fb.phone),
			huh.NewInput().Title("Local").Value(&m.fb.location),
			huh.NewSelect[model.MemberStatus]().
				Title("Status").
				Options(
					huh.NewOption("Ativo", model.MemberActive),
					huh.NewOption("Inativo", model.MemberInactive),
					huh.NewOption("Férias", model.MemberVacation),
				).
				Value(&m.fb.status),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

var validate = validator.New()

func validateEmail(s string) error {
	if err := validate.Var(strings.TrimSpace(s), "omitempty,email"); err != nil {
		return fmt.Errorf("invalid e-mail address")
	}
	return nil
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	if m.form.State == huh.StateCompleted {
		m.mode = modeList
		return m, m.saveMember()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirm(msg tea.Msg) (Model, tea.Cmd) {
	if m.confirmForm == nil {
		return m, nil
	}
	mdl, cmd := m.confirmForm.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.confirmForm = f
	}
	if m.confirmForm.State == huh.StateCompleted {
		m.mode = modeList
		if m.fb.confirm && m.selectedIdx < len(m.members) {
			return m, m.deleteMember(m.members[m.selectedIdx].ID)
		}
		return m, nil
	}
	if m.confirmForm.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}
	return m, cmd
}

func (m Model) updateActiveForm(msg tea.Msg) (Model, tea.Cmd) {
	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	}
	return m, nil
}

// View renders the roster.
func (m Model) View() string {
	switch m.mode {
	case modeForm:
		return ui.ViewForm(m.form)
	case modeConfirmDelete:
		return ui.ViewForm(m.confirmForm)
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	b.WriteString(theme.TitleStyle.Render(fmt.Sprintf("Equipe (%d)", len(m.members))))
	b.WriteString("\n\n")

	if len(m.members) == 0 {
		emptyStyle := lipgloss.NewStyle().Foreground(theme.ColorGray).Italic(true)
		b.WriteString(emptyStyle.Render("No team members yet. Press 'n' to add one."))
	} else {
		for i, mb := range m.members {
			b.WriteString(m.renderMember(i, mb))
			b.WriteString("\n")
		}
	}

	if m.statusMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.NoticeStyle.Render(m.statusMsg))
	}

	b.WriteString("\n\n")
	b.WriteString(theme.DimmedStyle.Render("n new | e edit | d delete"))

	return lipgloss.NewStyle().Padding(1, 2).Width(m.width).Height(m.height).Render(b.String())
}

func (m Model) renderMember(i int, mb model.TeamMember) string {
	initials := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Background(memberColor(mb.Status)).
		Width(5).
		Align(lipgloss.Center).
		Render(mb.Initials())

	role := strings.Trim(strings.Join([]string{mb.Role, mb.Team}, " · "), " ·")
	w := m.workload[mb.Name]
	load := theme.DimmedStyle.Render(fmt.Sprintf("%d/%d concluídas", w.Done, w.Total))
	if w.Overdue > 0 {
		load += lipgloss.NewStyle().Foreground(theme.ColorRed).Render(fmt.Sprintf("  %d atrasadas", w.Overdue))
	}

	label := fmt.Sprintf("%s  %-28s %-30s %s", initials, mb.Name, role, load)
	if i == m.selectedIdx {
		return theme.SelectedItemStyle.Render(label)
	}
	return theme.ListItemStyle.Render(label)
}

func memberColor(s model.MemberStatus) lipgloss.AdaptiveColor {
	switch s {
	case model.MemberVacation:
		return theme.ColorOrange
	case model.MemberInactive:
		return theme.ColorGray
	default:
		return theme.ColorGreen
	}
}

// Editing reports whether a form is open.
func (m Model) Editing() bool { return m.mode != modeList }

// SetSize updates dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Load reads the roster and every task to compute workloads.
func (m Model) Load() tea.Cmd {
	tok := m.gens.Next(view)
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()
		members, err := s.GetMembers(ctx)
		if err != nil {
			return membersLoadedMsg{token: tok, err: err}
		}
		tasks, err := s.GetTasks(ctx, store.TaskFilter{})
		if err != nil {
			return membersLoadedMsg{token: tok, err: err}
		}
		return membersLoadedMsg{token: tok, members: members, tasks: tasks}
	}
}

func (m Model) saveMember() tea.Cmd {
	s := m.store
	fb := *m.fb
	editing := m.editing
	return func() tea.Msg {
		mb := model.TeamMember{}
		if editing != nil {
			mb = *editing
		}
		mb.Name = strings.TrimSpace(fb.name)
		mb.Role = strings.TrimSpace(fb.role)
		mb.Team = strings.TrimSpace(fb.team)
		mb.Email = strings.TrimSpace(fb.email)
		mb.Phone = strings.TrimSpace(fb.phone)
		mb.Location = strings.TrimSpace(fb.location)
		mb.Status = fb.status

		ctx := context.Background()
		if editing == nil {
			_, err := s.CreateMember(ctx, mb)
			return memberSavedMsg{err: err}
		}
		return memberSavedMsg{err: s.UpdateMember(ctx, mb)}
	}
}

func (m Model) deleteMember(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		return memberDeletedMsg{err: s.DeleteMember(context.Background(), id)}
	}
}
