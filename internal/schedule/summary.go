package schedule

import (
	"math"
	"time"

	"github.com/nhle/cronograma/internal/model"
)

// Counters tallies tasks by status.
type Counters struct {
	Total      int `json:"total"`
	Done       int `json:"done"`
	InProgress int `json:"in_progress"`
	Overdue    int `json:"overdue"`
	NotStarted int `json:"not_started"`
}

// Count classifies every task as of now and tallies the results.
func Count(tasks []model.Task, now time.Time) Counters {
	c := Counters{Total: len(tasks)}
	for _, t := range tasks {
		switch TaskStatus(t, now) {
		case model.StatusCompleted:
			c.Done++
		case model.StatusOverdue:
			c.Overdue++
		case model.StatusNotStarted:
			c.NotStarted++
		default:
			c.InProgress++
		}
	}
	return c
}

// Percent returns the share of done tasks, rounded to a whole percentage.
func (c Counters) Percent() int {
	if c.Total == 0 {
		return 0
	}
	return int(math.Round(float64(c.Done) * 100 / float64(c.Total)))
}

// SheetProgress returns completed rows over total rows across all sheets
// as a whole percentage. No rows means 0.
func SheetProgress(sheets []model.Spreadsheet) int {
	var total, done int
	for _, s := range sheets {
		total += s.TotalRows
		done += s.CompletedRows
	}
	if total == 0 {
		return 0
	}
	return ClampPercent(int(math.Round(float64(done) * 100 / float64(total))))
}

// ByResponsible groups counters by responsible name. Tasks without one
// are grouped under NotDefined.
func ByResponsible(tasks []model.Task, now time.Time) map[string]Counters {
	groups := make(map[string][]model.Task)
	for _, t := range tasks {
		name := t.ResponsibleName
		if name == "" {
			name = NotDefined
		}
		groups[name] = append(groups[name], t)
	}
	out := make(map[string]Counters, len(groups))
	for name, ts := range groups {
		out[name] = Count(ts, now)
	}
	return out
}
