package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
)

type createTaskRequest struct {
	SheetID         string `json:"sheet_id" validate:"required"`
	Number          int    `json:"number" validate:"min=0"`
	Name            string `json:"name" validate:"required,notblank,max=500"`
	Classification  string `json:"classification"`
	Category        string `json:"category"`
	Phase           string `json:"phase"`
	Condition       string `json:"condition" validate:"omitempty,oneof=A B C Sempre"`
	DurationDays    int    `json:"duration_days" validate:"min=0"`
	Percent         int    `json:"percent" validate:"min=0,max=100"`
	StartDate       string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Deadline        string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	ResponsibleName string `json:"responsible_name"`
	HowTo           string `json:"how_to"`
	ReferenceURL    string `json:"reference_url" validate:"omitempty,url"`
}

// patchTaskRequest carries only the fields to change.
type patchTaskRequest struct {
	Name            *string `json:"name" validate:"omitempty,notblank,max=500"`
	Classification  *string `json:"classification"`
	Category        *string `json:"category"`
	Phase           *string `json:"phase"`
	Condition       *string `json:"condition" validate:"omitempty,oneof=A B C Sempre"`
	DurationDays    *int    `json:"duration_days" validate:"omitempty,min=1"`
	Percent         *int    `json:"percent" validate:"omitempty,min=0,max=100"`
	StartDate       *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Deadline        *string `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	ResponsibleName *string `json:"responsible_name"`
	HowTo           *string `json:"how_to"`
	ReferenceURL    *string `json:"reference_url" validate:"omitempty,url"`
}

func (s *Server) parseDay(v string) *time.Time {
	if v == "" {
		return nil
	}
	d, err := time.ParseInLocation(dayLayout, v, s.loc)
	if err != nil {
		return nil
	}
	return &d
}

// CreateTask adds a task to a sheet. A zero number takes the next free one.
func (s *Server) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	sheet, err := s.store.GetSpreadsheetByID(ctx, req.SheetID)
	if err != nil {
		fail(c, err)
		return
	}

	task, err := s.store.CreateTask(ctx, model.Task{
		SheetID:         req.SheetID,
		Number:          req.Number,
		Name:            req.Name,
		Classification:  req.Classification,
		Category:        req.Category,
		Phase:           req.Phase,
		Condition:       req.Condition,
		DurationDays:    req.DurationDays,
		Percent:         req.Percent,
		StartDate:       s.parseDay(req.StartDate),
		Deadline:        s.parseDay(req.Deadline),
		ResponsibleName: req.ResponsibleName,
		HowTo:           req.HowTo,
		ReferenceURL:    req.ReferenceURL,
		ProjectName:     sheet.Project,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// PatchTask updates the given fields of a task.
func (s *Server) PatchTask(c *gin.Context) {
	var req patchTaskRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	task, err := s.store.GetTaskByID(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}

	setString(&task.Name, req.Name)
	setString(&task.Classification, req.Classification)
	setString(&task.Category, req.Category)
	setString(&task.Phase, req.Phase)
	setString(&task.Condition, req.Condition)
	setString(&task.ResponsibleName, req.ResponsibleName)
	setString(&task.HowTo, req.HowTo)
	setString(&task.ReferenceURL, req.ReferenceURL)
	if req.DurationDays != nil {
		task.DurationDays = *req.DurationDays
	}
	if req.Percent != nil {
		task.Percent = schedule.ClampPercent(*req.Percent)
	}
	if req.StartDate != nil {
		task.StartDate = s.parseDay(*req.StartDate)
	}
	if req.Deadline != nil {
		task.Deadline = s.parseDay(*req.Deadline)
	}

	if err := s.store.UpdateTask(ctx, *task); err != nil {
		fail(c, err)
		return
	}
	updated, err := s.store.GetTaskByID(ctx, task.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// StartTask stamps today's date as the task start.
func (s *Server) StartTask(c *gin.Context) {
	task, err := s.store.StartTask(c.Request.Context(), c.Param("id"), s.today())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// UnstartTask clears the start date and progress. Completed tasks get 409.
func (s *Server) UnstartTask(c *gin.Context) {
	task, err := s.store.UnstartTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task.
func (s *Server) DeleteTask(c *gin.Context) {
	if err := s.store.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
