package model

import "time"

// Status is the display state derived from a task's completion and delay.
type Status string

const (
	StatusCompleted  Status = "completed"
	StatusOverdue    Status = "overdue"
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
)

// Label returns the filter label used by the schedule table.
func (s Status) Label() string {
	switch s {
	case StatusCompleted:
		return "Concluídas"
	case StatusOverdue:
		return "Atrasadas"
	case StatusNotStarted:
		return "Não iniciada"
	default:
		return "Em Andamento"
	}
}

// Badge returns the singular label shown next to a single task.
func (s Status) Badge() string {
	switch s {
	case StatusCompleted:
		return "Concluída"
	case StatusOverdue:
		return "Atrasada"
	case StatusNotStarted:
		return "Não iniciada"
	default:
		return "Em andamento"
	}
}

// Condition values used to tag tasks. ConditionAlways matches any filter.
const (
	ConditionA      = "A"
	ConditionB      = "B"
	ConditionC      = "C"
	ConditionAlways = "Sempre"
)

// Categories lists the packaging categories offered by the filter panel.
var Categories = []string{
	"Blisters",
	"Bisnagas",
	"Cartucho",
	"Frascos de Plástico",
	"Ampolas",
	"Monodoses",
	"Potes para Pó",
	"Frascos de Vidro",
	"Sachets",
}

// Task is a single row of an imported schedule.
type Task struct {
	// ID is the internal unique identifier for this task.
	ID string `json:"id" db:"id"`

	// SheetID identifies the spreadsheet the task was imported from.
	SheetID string `json:"sheet_id" db:"sheet_id"`

	// Number is the row number shown to users; unique within a sheet.
	Number int `json:"number" db:"number"`

	// Classification is the free-form class column of the sheet.
	Classification string `json:"classification" db:"classification"`

	// Category is one of Categories, or any other value the sheet carries.
	Category string `json:"category" db:"category"`

	// Phase groups tasks into project phases.
	Phase string `json:"phase" db:"phase"`

	// Condition is A, B, C or Sempre.
	Condition string `json:"condition" db:"condition"`

	// Name is the task description.
	Name string `json:"name" db:"name"`

	// DurationDays is the planned duration; always at least 1.
	DurationDays int `json:"duration_days" db:"duration_days"`

	// Percent is the completion percentage, clamped to [0,100].
	Percent int `json:"percent" db:"percent"`

	// StartDate is set when the task has been started.
	StartDate *time.Time `json:"start_date,omitempty" db:"start_date"`

	// EndDate is the planned or actual end date.
	EndDate *time.Time `json:"end_date,omitempty" db:"end_date"`

	// Deadline is the declared due date, when the sheet has one.
	Deadline *time.Time `json:"deadline,omitempty" db:"deadline"`

	// DelayDays is the backend-computed delay; positive means late.
	DelayDays int `json:"delay_days" db:"delay_days"`

	// ResponsibleID identifies the assigned team member, if any.
	ResponsibleID string `json:"responsible_id" db:"responsible_id"`

	// ResponsibleName is the full name of the assigned person.
	ResponsibleName string `json:"responsible_name" db:"responsible_name"`

	// HowTo holds the "Como Fazer" instructions.
	HowTo string `json:"how_to" db:"how_to"`

	// ReferenceURL points to the reference document.
	ReferenceURL string `json:"reference_url" db:"reference_url"`

	// ProjectName is the project the sheet belongs to.
	ProjectName string `json:"project_name" db:"project_name"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasStarted reports whether the task has a start date or any progress.
func (t Task) HasStarted() bool {
	return t.StartDate != nil || t.Percent > 0
}
