package model

import "time"

// EventType classifies calendar entries.
type EventType string

const (
	EventMeeting  EventType = "meeting"
	EventDeadline EventType = "deadline"
	EventReview   EventType = "review"
	EventOther    EventType = "other"
)

// Priority ranks calendar entries and Gantt bars.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Event is a calendar or Gantt entry. It is either created by the user
// or derived from a Task, in which case TaskID is set.
type Event struct {
	ID           string    `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Date         time.Time `json:"date" db:"date"`
	Time         string    `json:"time" db:"time"`
	Type         EventType `json:"type" db:"type"`
	Description  string    `json:"description" db:"description"`
	DurationDays int       `json:"duration_days" db:"duration_days"`
	Progress     int       `json:"progress" db:"progress"`
	Priority     Priority  `json:"priority" db:"priority"`
	Dependencies []string  `json:"dependencies,omitempty" db:"-"`
	TaskID       string    `json:"task_id,omitempty" db:"task_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// EndDate returns the last day covered by the event.
func (e Event) EndDate() time.Time {
	d := e.DurationDays
	if d < 1 {
		d = 1
	}
	return e.Date.AddDate(0, 0, d-1)
}
