// Package filter is the schedule filter panel.
package filter

import (
	"sort"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/theme"
	"github.com/nhle/cronograma/internal/ui"
)

// AppliedMsg carries the filter chosen by the user.
type AppliedMsg struct {
	Filter schedule.Filter
}

// CancelMsg is dispatched when the panel is closed without applying.
type CancelMsg struct{}

type formBindings struct {
	classification []string
	category       []string
	phase          []string
	condition      []string
	status         string
	responsible    string
	query          string
	clear          bool
}

// Model is the filter panel.
type Model struct {
	form   *huh.Form
	fb     *formBindings
	width  int
	height int
}

// New creates a filter panel.
func New(width, height int) Model {
	return Model{fb: &formBindings{}, width: width, height: height}
}

// Open builds the panel for the tasks of the active sheet, preselecting
// the criteria of current.
func (m *Model) Open(tasks []model.Task, current schedule.Filter) tea.Cmd {
	*m.fb = formBindings{
		classification: current.Classification,
		category:       current.Category,
		phase:          current.Phase,
		condition:      current.Condition,
		status:         current.Status,
		responsible:    current.Responsible,
		query:          current.Query,
	}
	classifications, phases := schedule.Options(tasks)

	var fields []huh.Field
	if len(classifications) > 0 {
		fields = append(fields, huh.NewMultiSelect[string]().
			Title("Classificação").
			Options(huh.NewOptions(classifications...)...).
			Value(&m.fb.classification))
	}
	fields = append(fields, huh.NewMultiSelect[string]().
		Title("Categoria").
		Options(huh.NewOptions(model.Categories...)...).
		Value(&m.fb.category))
	if len(phases) > 0 {
		fields = append(fields, huh.NewMultiSelect[string]().
			Title("Fase").
			Options(huh.NewOptions(phases...)...).
			Value(&m.fb.phase))
	}
	fields = append(fields, huh.NewMultiSelect[string]().
		Title("Condição").
		Options(huh.NewOptions(model.ConditionA, model.ConditionB, model.ConditionC)...).
		Value(&m.fb.condition))

	statuses := []huh.Option[string]{huh.NewOption("Todos", "")}
	statuses = append(statuses, huh.NewOptions(schedule.StatusLabels...)...)

	responsible := []huh.Option[string]{huh.NewOption("Todos", "")}
	for _, name := range responsibles(tasks) {
		responsible = append(responsible, huh.NewOption(schedule.DisplayName(name), name))
	}

	m.form = huh.NewForm(
		huh.NewGroup(fields...),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Status").
				Options(statuses...).
				Value(&m.fb.status),
			huh.NewSelect[string]().
				Title("Responsável").
				Options(responsible...).
				Value(&m.fb.responsible),
			huh.NewInput().
				Title("Busca").
				Value(&m.fb.query),
			huh.NewConfirm().
				Title("Limpar todos os filtros?").
				Affirmative("Limpar").
				Negative("Aplicar").
				Value(&m.fb.clear),
		),
	).WithWidth(ui.FormWidth(m.width)).WithHeight(ui.FormHeight(m.height))
	return m.form.Init()
}

// responsibles lists the distinct responsible names of tasks.
func responsibles(tasks []model.Task) []string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range tasks {
		if t.ResponsibleName == "" || seen[t.ResponsibleName] {
			continue
		}
		seen[t.ResponsibleName] = true
		out = append(out, t.ResponsibleName)
	}
	sort.Strings(out)
	return out
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		f := m.result()
		return m, func() tea.Msg { return AppliedMsg{Filter: f} }
	case huh.StateAborted:
		return m, func() tea.Msg { return CancelMsg{} }
	}
	return m, cmd
}

func (m Model) result() schedule.Filter {
	if m.fb.clear {
		return schedule.Filter{}
	}
	return schedule.Filter{
		Classification: m.fb.classification,
		Category:       m.fb.category,
		Phase:          m.fb.phase,
		Condition:      m.fb.condition,
		Status:         m.fb.status,
		Responsible:    m.fb.responsible,
		Query:          m.fb.query,
	}
}

// View renders the panel.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}
	content := theme.TitleStyle.Render("Filtros") + "\n" + m.form.View()
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
