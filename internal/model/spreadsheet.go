package model

import "time"

// SheetType distinguishes primary-packaging schedules from everything else.
type SheetType string

const (
	SheetPrimaryPackaging SheetType = "embalagem_primaria"
	SheetOther            SheetType = "outros"
)

// Spreadsheet is an imported schedule file.
type Spreadsheet struct {
	ID            string    `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	Project       string    `json:"project" db:"project"`
	Type          SheetType `json:"type" db:"type"`
	ImportedAt    time.Time `json:"imported_at" db:"imported_at"`
	TotalRows     int       `json:"total_rows" db:"total_rows"`
	CompletedRows int       `json:"completed_rows" db:"completed_rows"`
}

// Label is the "project | name" string used by pickers.
func (s Spreadsheet) Label() string {
	if s.Project == "" {
		return s.Name
	}
	return s.Project + " | " + s.Name
}
