// Package state holds the application-session state shared by the views:
// what is selected, how the timeline is framed, and which load results are
// still current.
package state

import (
	"fmt"
	"time"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
)

// Session is the per-run view state. It is owned by the TUI goroutine and
// is not safe for concurrent use.
type Session struct {
	SheetID string
	Filter  schedule.Filter

	mode schedule.ViewMode
	zoom float64
	ref  time.Time
	loc  *time.Location
	now  func() time.Time
}

// NewSession builds a session from the display preferences. An unknown
// timezone is an error.
func NewSession(cfg model.DisplayConfig) (*Session, error) {
	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}
	s := &Session{
		mode: schedule.ParseViewMode(cfg.ViewMode),
		zoom: schedule.ClampZoom(cfg.Zoom),
		loc:  loc,
		now:  time.Now,
	}
	s.ref = s.Today()
	return s, nil
}

// SetClock replaces the time source and re-anchors the reference date.
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
	s.ref = s.Today()
}

// Location is the zone that decides what "today" is.
func (s *Session) Location() *time.Location { return s.loc }

// Now is the current instant in the session zone.
func (s *Session) Now() time.Time { return s.now().In(s.loc) }

// Today is midnight of the current day in the session zone.
func (s *Session) Today() time.Time { return schedule.StartOfDay(s.Now()) }

func (s *Session) Mode() schedule.ViewMode { return s.mode }
func (s *Session) Zoom() float64           { return s.zoom }
func (s *Session) Ref() time.Time          { return s.ref }

// ToggleMode switches between week and month views.
func (s *Session) ToggleMode() {
	if s.mode == schedule.ViewMonth {
		s.mode = schedule.ViewWeek
	} else {
		s.mode = schedule.ViewMonth
	}
}

func (s *Session) SetMode(m schedule.ViewMode) { s.mode = schedule.ParseViewMode(string(m)) }

func (s *Session) ZoomIn()  { s.zoom = schedule.ZoomIn(s.zoom) }
func (s *Session) ZoomOut() { s.zoom = schedule.ZoomOut(s.zoom) }

// Shift moves the reference date one period in dir.
func (s *Session) Shift(dir int) { s.ref = schedule.Shift(s.ref, s.mode, dir) }

// GoToday resets the reference date.
func (s *Session) GoToday() { s.ref = s.Today() }

// Timeline returns the days of the current frame.
func (s *Session) Timeline() []time.Time {
	return schedule.GenerateTimeline(s.ref, s.mode)
}

// Bar places a task on the current frame.
func (s *Session) Bar(t model.Task) schedule.BarPosition {
	return schedule.PositionOnTimeline(
		s.Timeline(),
		schedule.TaskStart(t, s.Today()),
		t.DurationDays,
		schedule.ColumnWidth(s.mode),
		s.zoom,
	)
}

// SelectSheet changes the active spreadsheet and drops the filter, whose
// options belonged to the previous sheet.
func (s *Session) SelectSheet(id string) {
	if id == s.SheetID {
		return
	}
	s.SheetID = id
	s.Filter = schedule.Filter{}
}

// Display returns the preferences to persist back to the config file.
func (s *Session) Display(base model.DisplayConfig) model.DisplayConfig {
	base.ViewMode = string(s.mode)
	base.Zoom = s.zoom
	base.Timezone = s.loc.String()
	return base
}
