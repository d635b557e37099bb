package schedule

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/nhle/cronograma/internal/model"
)

// TaskStart returns the day a task's bar begins: its start date, else the
// day that makes it end on its deadline, else today.
func TaskStart(t model.Task, today time.Time) time.Time {
	if t.StartDate != nil {
		return StartOfDay(*t.StartDate)
	}
	if t.Deadline != nil {
		dur := ParseDurationDays(t.DurationDays)
		return StartOfDay(*t.Deadline).AddDate(0, 0, -(dur - 1))
	}
	return StartOfDay(today)
}

// TasksToEvents maps tasks to calendar entries. Tasks with a deadline but
// no start date become deadline events; everything else is "other".
func TasksToEvents(tasks []model.Task, today time.Time) []model.Event {
	events := make([]model.Event, 0, len(tasks))
	for _, t := range tasks {
		typ := model.EventOther
		if t.StartDate == nil && t.Deadline != nil {
			typ = model.EventDeadline
		}

		project := t.ProjectName
		if project == "" {
			project = t.SheetID
		}
		if project == "" {
			project = "Projeto"
		}

		sheet := t.SheetID
		if sheet == "" {
			sheet = "x"
		}

		events = append(events, model.Event{
			ID:           fmt.Sprintf("task-%s-%d", sheet, t.Number),
			Title:        fmt.Sprintf("Tarefa: %d ➡ Projeto: %s", t.Number, project),
			Date:         TaskStart(t, today),
			Type:         typ,
			Description:  t.Name,
			DurationDays: ParseDurationDays(t.DurationDays),
			Progress:     ClampPercent(t.Percent),
			Priority:     InferPriority(t, today),
			TaskID:       t.ID,
		})
	}
	return events
}

// InferPriority ranks a task by how little slack it has left.
//
// Finished tasks are low. Without any deadline, only a large amount of
// remaining work (10 days or more) raises priority to medium. With a
// deadline, late tasks are high, deadlines a week or more away are low,
// and otherwise two days of slack or less is medium.
func InferPriority(t model.Task, today time.Time) model.Priority {
	pct := ClampPercent(t.Percent)
	if pct >= 100 {
		return model.PriorityLow
	}

	dur := ParseDurationDays(t.DurationDays)
	remaining := int(math.Ceil(float64(dur) * (1 - float64(pct)/100)))

	var deadline *time.Time
	switch {
	case t.Deadline != nil:
		d := StartOfDay(*t.Deadline)
		deadline = &d
	case t.StartDate != nil:
		d := StartOfDay(*t.StartDate).AddDate(0, 0, dur-1)
		deadline = &d
	}

	if deadline == nil {
		if remaining >= 10 {
			return model.PriorityMedium
		}
		return model.PriorityLow
	}

	daysLeft := DaysBetween(today, *deadline)
	switch {
	case daysLeft < 0:
		return model.PriorityHigh
	case daysLeft >= 7:
		return model.PriorityLow
	case daysLeft-remaining <= 2:
		return model.PriorityMedium
	default:
		return model.PriorityLow
	}
}

// EventsOn returns the events that cover day, ordered by time of day.
func EventsOn(events []model.Event, day time.Time) []model.Event {
	var out []model.Event
	for _, e := range events {
		if DaysBetween(e.Date, day) >= 0 && DaysBetween(day, e.EndDate()) >= 0 {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// EventsInMonth returns the events that overlap ref's calendar month,
// ordered by date.
func EventsInMonth(events []model.Event, ref time.Time) []model.Event {
	y, m, _ := ref.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, ref.Location())
	last := time.Date(y, m, DaysInMonth(y, m), 0, 0, 0, 0, ref.Location())

	var out []model.Event
	for _, e := range events {
		if DaysBetween(e.Date, last) >= 0 && DaysBetween(first, e.EndDate()) >= 0 {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
