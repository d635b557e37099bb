package schedule

import (
	"time"

	"github.com/nhle/cronograma/internal/model"
)

// ClassifyStatus derives the display state of a task.
//
// Completion is checked before delay, so a task finished late is shown as
// Completed. hasStarted is accepted for callers that track start dates but
// does not change the outcome: a started task still at 0% is NotStarted.
func ClassifyStatus(pct int, delayDays int, hasStarted bool) model.Status {
	pct = ClampPercent(pct)

	switch {
	case pct == 100:
		return model.StatusCompleted
	case delayDays > 0:
		return model.StatusOverdue
	case pct == 0:
		return model.StatusNotStarted
	default:
		return model.StatusInProgress
	}
}

// EffectiveDelay returns the task's delay in days as of now. The backend
// delay wins when positive; otherwise an end date in the past on an
// unfinished task counts as a delay.
func EffectiveDelay(t model.Task, now time.Time) int {
	if t.DelayDays > 0 {
		return t.DelayDays
	}
	if t.EndDate == nil || ClampPercent(t.Percent) >= 100 {
		return 0
	}
	if late := DaysBetween(*t.EndDate, now); late > 0 {
		return late
	}
	return 0
}

// TaskStatus classifies a stored task as of now.
func TaskStatus(t model.Task, now time.Time) model.Status {
	return ClassifyStatus(t.Percent, EffectiveDelay(t, now), t.HasStarted())
}

// StatusFromPercentage is the coarse three-state label written to exports.
func StatusFromPercentage(pct int) string {
	switch ClampPercent(pct) {
	case 100:
		return "Concluído"
	case 0:
		return "Não Iniciado"
	default:
		return "Em Andamento"
	}
}
