package taskform

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/theme"
	"github.com/nhle/cronograma/internal/ui"
)

// SubmittedMsg is dispatched when the form is completed.
type SubmittedMsg struct {
	Task  model.Task
	IsNew bool
}

// CancelMsg is dispatched when the user cancels the form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	number         string
	name           string
	classification string
	category       string
	phase          string
	condition      string
	duration       string
	percent        string
	startDate      string
	deadline       string
	responsible    string
	howTo          string
	referenceURL   string
}

// Model is the create/edit form for a schedule task.
type Model struct {
	form            *huh.Form
	fb              *formBindings
	base            model.Task
	editMode        bool
	classifications []string
	phases          []string
	members         []string
	loc             *time.Location
	width           int
	height          int
}

// New creates a new task form.
func New(loc *time.Location, width, height int) Model {
	return Model{
		fb:     &formBindings{},
		loc:    loc,
		width:  width,
		height: height,
	}
}

// SetOptions sets the suggestions offered by free-text fields.
func (m *Model) SetOptions(tasks []model.Task, members []model.TeamMember) {
	m.classifications, m.phases = schedule.Options(tasks)
	m.members = m.members[:0]
	for _, mb := range members {
		m.members = append(m.members, mb.Name)
	}
}

// StartCreate opens an empty form for a new task of base.SheetID. The
// number defaults to one past the highest in tasks.
func (m *Model) StartCreate(base model.Task, tasks []model.Task) tea.Cmd {
	next := 1
	for _, t := range tasks {
		if t.Number >= next {
			next = t.Number + 1
		}
	}
	m.editMode = false
	m.base = base
	*m.fb = formBindings{
		number:   strconv.Itoa(next),
		duration: "1",
		percent:  "0",
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit opens the form filled with t.
func (m *Model) StartEdit(t model.Task) tea.Cmd {
	m.editMode = true
	m.base = t
	*m.fb = formBindings{
		number:         strconv.Itoa(t.Number),
		name:           t.Name,
		classification: t.Classification,
		category:       t.Category,
		phase:          t.Phase,
		condition:      t.Condition,
		duration:       strconv.Itoa(t.DurationDays),
		percent:        strconv.Itoa(t.Percent),
		startDate:      formatDate(t.StartDate),
		deadline:       formatDate(t.Deadline),
		responsible:    t.ResponsibleName,
		howTo:          t.HowTo,
		referenceURL:   t.ReferenceURL,
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m, m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "Nova tarefa"
	if m.editMode {
		titleText = fmt.Sprintf("Editar tarefa #%d", m.base.Number)
	}

	content := theme.TitleStyle.Render(titleText) + "\n" + m.form.View()
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	conditions := []huh.Option[string]{huh.NewOption("—", "")}
	for _, c := range []string{model.ConditionA, model.ConditionB, model.ConditionC, model.ConditionAlways} {
		conditions = append(conditions, huh.NewOption(c, c))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Número").
				Value(&m.fb.number).
				Validate(validateInt("Número", 1, 1<<31-1)),
			huh.NewInput().
				Title("Nome").
				Placeholder("O que precisa ser feito?").
				Value(&m.fb.name).
				Validate(validateRequired("Nome")),
			huh.NewInput().
				Title("Responsável").
				Suggestions(m.members).
				Value(&m.fb.responsible),
			huh.NewInput().
				Title("Duração (dias)").
				Value(&m.fb.duration).
				Validate(validateInt("Duração", 1, 3650)),
			huh.NewInput().
				Title("% Concluído").
				Value(&m.fb.percent).
				Validate(validateInt("% Concluído", 0, 100)),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Classificação").
				Suggestions(m.classifications).
				Value(&m.fb.classification),
			huh.NewInput().
				Title("Categoria").
				Suggestions(model.Categories).
				Value(&m.fb.category),
			huh.NewInput().
				Title("Fase").
				Suggestions(m.phases).
				Value(&m.fb.phase),
			huh.NewSelect[string]().
				Title("Condição").
				Options(conditions...).
				Value(&m.fb.condition),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Início").
				Placeholder("DD/MM/AAAA (opcional)").
				Value(&m.fb.startDate).
				Validate(m.validateOptionalDate),
			huh.NewInput().
				Title("Prazo").
				Placeholder("DD/MM/AAAA (opcional)").
				Value(&m.fb.deadline).
				Validate(m.validateOptionalDate),
			huh.NewText().
				Title("Como fazer").
				Value(&m.fb.howTo),
			huh.NewInput().
				Title("Referência").
				Placeholder("https://...").
				Value(&m.fb.referenceURL),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
}

func (m Model) handleSubmit() tea.Cmd {
	t := m.base
	t.Number, _ = strconv.Atoi(strings.TrimSpace(m.fb.number))
	t.Name = strings.TrimSpace(m.fb.name)
	t.Classification = strings.TrimSpace(m.fb.classification)
	t.Category = strings.TrimSpace(m.fb.category)
	t.Phase = strings.TrimSpace(m.fb.phase)
	t.Condition = m.fb.condition
	t.DurationDays = schedule.ParseDurationDays(m.fb.duration)
	t.Percent = schedule.ClampPercent(schedule.ParseInt(m.fb.percent))
	t.StartDate = schedule.ParseDate(m.fb.startDate, m.loc)
	t.Deadline = schedule.ParseDate(m.fb.deadline, m.loc)
	t.HowTo = m.fb.howTo
	t.ReferenceURL = strings.TrimSpace(m.fb.referenceURL)
	if name := strings.TrimSpace(m.fb.responsible); name != t.ResponsibleName {
		t.ResponsibleName = name
		t.ResponsibleID = ""
	}

	isNew := !m.editMode
	return func() tea.Msg { return SubmittedMsg{Task: t, IsNew: isNew} }
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateInt(fieldName string, lo, hi int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s must be a number", fieldName)
		}
		if n < lo || n > hi {
			return fmt.Errorf("%s must be between %d and %d", fieldName, lo, hi)
		}
		return nil
	}
}

func (m Model) validateOptionalDate(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	if schedule.ParseDate(s, m.loc) == nil {
		return fmt.Errorf("invalid date, use DD/MM/AAAA")
	}
	return nil
}
