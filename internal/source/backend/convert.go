package backend

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
)

// validate is shared by every conversion; validator caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// RowToTask validates a backend row and converts it to a task of sheetID.
// Missing or malformed fields are defaulted here and nowhere else.
func RowToTask(row RowDTO, sheetID string, loc *time.Location) (model.Task, error) {
	if err := validate.Struct(row); err != nil {
		return model.Task{}, fmt.Errorf("invalid row: %w", err)
	}

	name := firstNonEmpty(row.Name, row.Nome)
	if name == "" {
		return model.Task{}, fmt.Errorf("invalid row %v: missing name", row.Num)
	}
	number := schedule.ParseInt(row.Num)
	if number <= 0 {
		return model.Task{}, fmt.Errorf("invalid row number %v", row.Num)
	}

	duration := row.Duration
	if anyString(duration) == "" {
		duration = row.Duracao
	}

	return model.Task{
		SheetID:         sheetID,
		Number:          number,
		Classification:  firstNonEmpty(row.Classe, row.Classification),
		Category:        firstNonEmpty(row.Category, row.Categoria),
		Phase:           firstNonEmpty(row.Phase, row.Fase),
		Condition:       firstNonEmpty(row.Condicao, row.Condition, row.Status),
		Name:            name,
		DurationDays:    schedule.ParseDurationDays(duration),
		Percent:         schedule.ParseProgress(row.Conclusion),
		StartDate:       schedule.ParseDate(derefString(row.StartDate), loc),
		EndDate:         schedule.ParseDate(derefString(row.EndDate), loc),
		Deadline:        schedule.ParseDate(derefString(row.Deadline), loc),
		DelayDays:       max(0, schedule.ParseInt(row.Atraso)),
		ResponsibleName: firstNonEmpty(row.Responsavel, row.Responsible),
		HowTo:           strings.TrimSpace(row.ComoFazer),
		ReferenceURL:    strings.TrimSpace(row.Documento),
		ProjectName:     strings.TrimSpace(row.ProjectName),
	}, nil
}

// FileToSheet validates a backend file entry and converts it.
func FileToSheet(f FileDTO, loc *time.Location) (model.Spreadsheet, error) {
	if err := validate.Struct(f); err != nil {
		return model.Spreadsheet{}, fmt.Errorf("invalid file: %w", err)
	}

	sheet := model.Spreadsheet{
		ID:      string(f.ID),
		Name:    firstNonEmpty(f.Name, f.Nome, "Planilha "+string(f.ID)),
		Project: firstNonEmpty(f.Project, f.Projeto),
		Type:    model.SheetType(firstNonEmpty(f.Tipo, string(model.SheetOther))),
	}
	if t := schedule.ParseDate(f.ImportedAt, loc); t != nil {
		sheet.ImportedAt = *t
	}
	return sheet, nil
}

// EmployeeToMember validates a backend employee and converts it.
func EmployeeToMember(e EmployeeDTO) (model.TeamMember, error) {
	if err := validate.Struct(e); err != nil {
		return model.TeamMember{}, fmt.Errorf("invalid employee: %w", err)
	}

	email := strings.TrimSpace(e.Email)
	if email != "" && validate.Var(email, "email") != nil {
		email = ""
	}

	name := strings.TrimSpace(strings.TrimSpace(e.FirstName) + " " + strings.TrimSpace(e.LastName))
	if name == "" {
		name = email
	}
	if name == "" {
		return model.TeamMember{}, fmt.Errorf("employee %s has no name", e.UserID)
	}

	var parts []string
	for _, p := range []string{e.Address.Street, e.Address.City, e.Address.State, e.Address.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	status := model.MemberInactive
	if schedule.ParseActive(e.Active) {
		status = model.MemberActive
	}

	return model.TeamMember{
		ID:             string(e.UserID),
		Name:           name,
		Role:           strings.TrimSpace(e.Role),
		Team:           firstNonEmpty(e.TeamName, "Equipe"),
		Email:          email,
		Phone:          strings.TrimSpace(e.Cellphone),
		Location:       strings.Join(parts, ", "),
		Status:         status,
		TasksCompleted: max(0, schedule.ParseInt(e.CompletedTasks)),
	}, nil
}

// TaskToPayload builds the PATCH body for a task, validating it first.
func TaskToPayload(t model.Task) (RowPayload, error) {
	p := RowPayload{
		Num:         t.Number,
		Classe:      t.Classification,
		Category:    t.Category,
		Phase:       t.Phase,
		Status:      t.Condition,
		Name:        strings.TrimSpace(t.Name),
		Duration:    max(1, t.DurationDays),
		Conclusion:  float64(schedule.ClampPercent(t.Percent)) / 100,
		Responsible: strings.TrimSpace(t.ResponsibleName),
	}
	if err := validate.Struct(p); err != nil {
		return RowPayload{}, fmt.Errorf("invalid task %d: %w", t.Number, err)
	}
	return p, nil
}
