// Package gantt draws the schedule as horizontal bars over the session
// timeline.
package gantt

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/state"
	"github.com/nhle/cronograma/internal/theme"
	"github.com/nhle/cronograma/internal/ui"
)

const labelWidth = 28

// cellsPerDay is the number of terminal columns one day takes at zoom 1.
func cellsPerDay(mode schedule.ViewMode) int {
	if mode == schedule.ViewMonth {
		return 2
	}
	return 5
}

// toCells converts a pixel offset into terminal columns for mode.
func toCells(px float64, mode schedule.ViewMode) int {
	perCell := schedule.ColumnWidth(mode) / float64(cellsPerDay(mode))
	return int(math.Round(px / perCell))
}

// span returns the first column and width of a bar, never narrower than
// one column.
func span(pos schedule.BarPosition, mode schedule.ViewMode) (start, width int) {
	start = toCells(pos.Left, mode)
	width = max(toCells(pos.Width, mode), 1)
	return start, width
}

// Model is the Gantt chart view.
type Model struct {
	session *state.Session
	keys    *keys.KeyMap
	tasks   []model.Task
	cursor  int
	offset  int
	width   int
	height  int
}

// New creates a Gantt view bound to the session timeline.
func New(sess *state.Session, k *keys.KeyMap, width, height int) Model {
	return Model{session: sess, keys: k, width: width, height: height}
}

// SetTasks replaces the rows of the chart.
func (m *Model) SetTasks(tasks []model.Task) {
	m.tasks = tasks
	if m.cursor >= len(tasks) {
		m.cursor = max(len(tasks)-1, 0)
	}
	m.clampOffset()
}

// Update handles navigation keys.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(kmsg, m.keys.Left):
		m.session.Shift(-1)
	case key.Matches(kmsg, m.keys.Right):
		m.session.Shift(1)
	case key.Matches(kmsg, m.keys.ToggleMode):
		m.session.ToggleMode()
	case key.Matches(kmsg, m.keys.ZoomIn):
		m.session.ZoomIn()
	case key.Matches(kmsg, m.keys.ZoomOut):
		m.session.ZoomOut()
	case key.Matches(kmsg, m.keys.Today):
		m.session.GoToday()
	case key.Matches(kmsg, m.keys.Down):
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
	case key.Matches(kmsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(kmsg, m.keys.Select):
		if m.cursor < len(m.tasks) {
			id := m.tasks[m.cursor].ID
			return m, func() tea.Msg { return ui.SelectedTaskMsg{TaskID: id} }
		}
	}
	m.clampOffset()
	return m, nil
}

func (m *Model) rows() int {
	return max(m.height-4, 1)
}

func (m *Model) clampOffset() {
	rows := m.rows()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// View renders the chart.
func (m Model) View() string {
	days := m.session.Timeline()
	if len(days) == 0 {
		return ""
	}
	mode := m.session.Mode()
	chartWidth := max(m.width-labelWidth-1, 10)

	title := fmt.Sprintf("%s  %s – %s  zoom x%.1f",
		modeLabel(mode),
		days[0].Format("02/01"),
		days[len(days)-1].Format("02/01/2006"),
		m.session.Zoom(),
	)
	lines := []string{
		theme.TitleStyle.UnsetMarginBottom().Render(title),
		strings.Repeat(" ", labelWidth+1) + m.renderRuler(days, chartWidth),
	}

	if len(m.tasks) == 0 {
		lines = append(lines, theme.DimmedStyle.Render("No tasks to chart."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	now := m.session.Now()
	todayCol := m.todayColumn(days)
	end := min(m.offset+m.rows(), len(m.tasks))
	for i := m.offset; i < end; i++ {
		t := m.tasks[i]
		label := fmt.Sprintf("#%-4d %s", t.Number, t.Name)
		label = lipgloss.NewStyle().Width(labelWidth).MaxWidth(labelWidth).Render(label)
		if i == m.cursor {
			label = lipgloss.NewStyle().Bold(true).Foreground(theme.ColorBlue).Render(label)
		}
		start, width := span(m.session.Bar(t), mode)
		row := renderBar(start, width, chartWidth, todayCol, t.Percent, schedule.TaskStatus(t, now))
		lines = append(lines, label+" "+row)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderRuler labels day columns, highlighting today.
func (m Model) renderRuler(days []time.Time, chartWidth int) string {
	mode := m.session.Mode()
	col := schedule.ColumnWidth(mode) * m.session.Zoom()
	today := m.session.Today()

	ruler := []rune(strings.Repeat(" ", chartWidth))
	todayAt := -1
	for i, d := range days {
		at := toCells(float64(i)*col, mode)
		if at >= chartWidth {
			break
		}
		next := toCells(float64(i+1)*col, mode)
		label := []rune(d.Format("02"))
		if next-at < len(label) && d.Day()%5 != 1 {
			continue
		}
		if d.Equal(today) {
			todayAt = at
		}
		for j, r := range label {
			if at+j < chartWidth {
				ruler[at+j] = r
			}
		}
	}

	out := string(ruler)
	if todayAt >= 0 {
		head := string(ruler[:todayAt])
		mark := string(ruler[todayAt:min(todayAt+2, chartWidth)])
		tail := string(ruler[min(todayAt+2, chartWidth):])
		out = theme.DimmedStyle.Render(head) +
			lipgloss.NewStyle().Bold(true).Foreground(theme.ColorYellow).Render(mark) +
			theme.DimmedStyle.Render(tail)
		return out
	}
	return theme.DimmedStyle.Render(out)
}

func (m Model) todayColumn(days []time.Time) int {
	today := m.session.Today()
	for i, d := range days {
		if d.Equal(today) {
			col := schedule.ColumnWidth(m.session.Mode()) * m.session.Zoom()
			return toCells(float64(i)*col, m.session.Mode())
		}
	}
	return -1
}

// renderBar draws one row: the done share of the bar solid, the rest
// shaded, a marker on today's column and an arrow when the bar starts past
// the right edge.
func renderBar(start, width, chartWidth, todayCol, pct int, status model.Status) string {
	background := func(from, to int) string {
		if from >= to {
			return ""
		}
		cells := []rune(strings.Repeat(" ", to-from))
		if todayCol >= from && todayCol < to {
			cells[todayCol-from] = '┊'
		}
		return theme.DimmedStyle.Render(string(cells))
	}

	if start >= chartWidth {
		return background(0, chartWidth-1) + theme.DimmedStyle.Render("›")
	}
	end := min(start+width, chartWidth)
	done := (end - start) * pct / 100

	bar := strings.Repeat("█", done) + strings.Repeat("▒", end-start-done)
	barStyle := lipgloss.NewStyle().Foreground(theme.StatusColor(status))
	return background(0, start) + barStyle.Render(bar) + background(end, chartWidth)
}

func modeLabel(mode schedule.ViewMode) string {
	if mode == schedule.ViewMonth {
		return "Mês"
	}
	return "Semana"
}

// Cursor returns the highlighted task, if any.
func (m Model) Cursor() (model.Task, bool) {
	if m.cursor < len(m.tasks) {
		return m.tasks[m.cursor], true
	}
	return model.Task{}, false
}

// SetSize updates the chart dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clampOffset()
}
