package state

import (
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(model.DisplayConfig{ViewMode: "week", Zoom: 1, Timezone: "America/Sao_Paulo"})
	require.NoError(t, err)
	// 02:00 UTC is still the previous day in São Paulo.
	s.SetClock(func() time.Time { return time.Date(2024, time.March, 10, 2, 0, 0, 0, time.UTC) })
	return s
}

func TestSession_TodayUsesZone(t *testing.T) {
	s := newSession(t)
	assert.Equal(t, 9, s.Today().Day())
	assert.Equal(t, s.Today(), s.Ref())
}

func TestNewSession_BadZone(t *testing.T) {
	_, err := NewSession(model.DisplayConfig{Timezone: "Mars/Olympus"})
	assert.Error(t, err)
}

func TestSession_Navigation(t *testing.T) {
	s := newSession(t)
	require.Len(t, s.Timeline(), 15)

	s.Shift(1)
	assert.Equal(t, 16, s.Ref().Day())

	s.ToggleMode()
	assert.Equal(t, schedule.ViewMonth, s.Mode())
	assert.Len(t, s.Timeline(), 31)

	s.GoToday()
	assert.Equal(t, 9, s.Ref().Day())

	for i := 0; i < 20; i++ {
		s.ZoomIn()
	}
	assert.Equal(t, schedule.MaxZoom, s.Zoom())
}

func TestSession_Bar(t *testing.T) {
	s := newSession(t)
	start := time.Date(2024, time.March, 5, 0, 0, 0, 0, s.Location())
	pos := s.Bar(model.Task{StartDate: &start, DurationDays: 3})
	assert.Equal(t, 300.0, pos.Left)
	assert.Equal(t, 300.0, pos.Width)
}

func TestSession_SelectSheetResetsFilter(t *testing.T) {
	s := newSession(t)
	s.SelectSheet("a")
	s.Filter.Status = "Atrasadas"
	s.SelectSheet("a")
	assert.Equal(t, "Atrasadas", s.Filter.Status)
	s.SelectSheet("b")
	assert.True(t, s.Filter.IsEmpty())
}

func TestSession_Display(t *testing.T) {
	s := newSession(t)
	s.ToggleMode()
	d := s.Display(model.DisplayConfig{Theme: "dark"})
	assert.Equal(t, "month", d.ViewMode)
	assert.Equal(t, "dark", d.Theme)
	assert.Equal(t, "America/Sao_Paulo", d.Timezone)
}

func TestGenerations(t *testing.T) {
	g := NewGenerations()
	first := g.Next("tasks")
	assert.True(t, g.Current(first))

	second := g.Next("tasks")
	assert.False(t, g.Current(first), "older load is stale")
	assert.True(t, g.Current(second))

	other := g.Next("team")
	assert.True(t, g.Current(other), "views are counted separately")

	g.Invalidate("tasks")
	assert.False(t, g.Current(second))
	assert.False(t, g.Current(Token{View: "tasks"}))
}

func TestGenerations_Concurrent(t *testing.T) {
	g := NewGenerations()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Next("tasks")
		}()
	}
	wg.Wait()
	assert.True(t, g.Current(Token{View: "tasks", Gen: 50}))
}
