// Package schedule holds the calendar arithmetic behind the schedule views:
// timeline generation, Gantt bar placement, task status derivation and the
// small coercions applied to spreadsheet and backend values.
//
// Everything here is deterministic and side-effect free. Callers pass the
// current time explicitly.
package schedule

import "time"

// ViewMode selects how many days a timeline spans.
type ViewMode string

const (
	// ViewWeek spans 15 days centered on the reference date.
	ViewWeek ViewMode = "week"
	// ViewMonth spans the reference date's calendar month.
	ViewMonth ViewMode = "month"
)

// weekRadius is the number of days shown on each side of the reference
// date in week mode.
const weekRadius = 7

// ParseViewMode maps a config or query value to a ViewMode, defaulting to week.
func ParseViewMode(s string) ViewMode {
	if ViewMode(s) == ViewMonth {
		return ViewMonth
	}
	return ViewWeek
}

// ColumnWidth returns the pixel width of one day column for the mode.
// Week columns are wider so each day can show more detail.
func ColumnWidth(mode ViewMode) float64 {
	if mode == ViewMonth {
		return 30
	}
	return 100
}

// StartOfDay truncates t to midnight in t's own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DaysBetween returns the number of calendar days from a to b. The result
// is negative when b falls before a. Wall-clock dates are compared, so DST
// transitions never produce fractional days.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// GenerateTimeline returns the ordered days to render as columns.
//
// In week mode it returns 15 consecutive days starting 7 days before ref.
// In month mode it returns every day of ref's month. Each day is at
// midnight in ref's location and the result is never empty.
func GenerateTimeline(ref time.Time, mode ViewMode) []time.Time {
	day := StartOfDay(ref)

	if mode == ViewMonth {
		y, m, _ := day.Date()
		n := DaysInMonth(y, m)
		days := make([]time.Time, n)
		for i := 0; i < n; i++ {
			days[i] = time.Date(y, m, i+1, 0, 0, 0, 0, day.Location())
		}
		return days
	}

	first := day.AddDate(0, 0, -weekRadius)
	days := make([]time.Time, 2*weekRadius+1)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}

// Shift moves a reference date one period forward (dir > 0) or backward
// (dir < 0). Weeks move by 7 days; months move to the same day of the
// adjacent month, clamped to that month's length.
func Shift(ref time.Time, mode ViewMode, dir int) time.Time {
	if dir == 0 {
		return ref
	}
	step := 1
	if dir < 0 {
		step = -1
	}

	if mode == ViewMonth {
		y, m, d := ref.Date()
		target := time.Date(y, m+time.Month(step), 1, 0, 0, 0, 0, ref.Location())
		if last := DaysInMonth(target.Year(), target.Month()); d > last {
			d = last
		}
		return time.Date(target.Year(), target.Month(), d, 0, 0, 0, 0, ref.Location())
	}

	return StartOfDay(ref).AddDate(0, 0, 7*step)
}
