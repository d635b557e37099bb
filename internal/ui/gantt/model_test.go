package gantt

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/keys"
	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/state"
	"github.com/nhle/cronograma/internal/ui"
)

func TestSpan(t *testing.T) {
	start, width := span(schedule.BarPosition{Left: 300, Width: 300}, schedule.ViewWeek)
	assert.Equal(t, 15, start)
	assert.Equal(t, 15, width)

	start, width = span(schedule.BarPosition{Left: 60, Width: 50}, schedule.ViewMonth)
	assert.Equal(t, 4, start)
	assert.Equal(t, 3, width)

	_, width = span(schedule.BarPosition{Left: 0, Width: 1}, schedule.ViewWeek)
	assert.Equal(t, 1, width, "a bar is never narrower than one column")
}

func TestRenderBar(t *testing.T) {
	row := renderBar(2, 4, 10, -1, 50, model.StatusInProgress)
	assert.Equal(t, 10, lipgloss.Width(row))
	assert.Contains(t, row, "██▒▒")

	past := renderBar(20, 4, 10, -1, 0, model.StatusNotStarted)
	assert.Equal(t, 10, lipgloss.Width(past))
	assert.Contains(t, past, "›")

	clipped := renderBar(8, 6, 10, 1, 100, model.StatusCompleted)
	assert.Equal(t, 10, lipgloss.Width(clipped))
	assert.Contains(t, clipped, "┊")
}

func newModel(t *testing.T) Model {
	t.Helper()
	sess, err := state.NewSession(model.DisplayConfig{ViewMode: "week", Zoom: 1, Timezone: "UTC"})
	require.NoError(t, err)
	sess.SetClock(func() time.Time { return time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC) })
	return New(sess, keys.DefaultKeyMap(), 120, 20)
}

func TestModel_Navigation(t *testing.T) {
	m := newModel(t)
	start := time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC)
	m.SetTasks([]model.Task{
		{ID: "a", Number: 1, Name: "Arte", StartDate: &start, DurationDays: 3},
		{ID: "b", Number: 2, Name: "Prova", DurationDays: 2},
	})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	got, ok := m.Cursor()
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, ui.SelectedTaskMsg{TaskID: "b"}, cmd())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	assert.Equal(t, schedule.ViewMonth, m.session.Mode())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	assert.Equal(t, time.April, m.session.Ref().Month())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	assert.Equal(t, 10, m.session.Ref().Day())

	view := m.View()
	assert.Contains(t, view, "Mês")
	assert.Contains(t, view, "Arte")
}
