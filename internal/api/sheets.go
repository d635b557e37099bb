package api

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/sheet"
	"github.com/nhle/cronograma/internal/store"
)

// ListSheets returns every imported spreadsheet.
func (s *Server) ListSheets(c *gin.Context) {
	sheets, err := s.store.GetSpreadsheets(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sheets)
}

// ImportSheet reads the multipart "file" field as a schedule and stores it.
// Optional form fields: name, project, type.
func (s *Server) ImportSheet(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, err)
		return
	}
	defer f.Close()

	typ := model.SheetType(c.PostForm("type"))
	if typ != model.SheetPrimaryPackaging {
		typ = model.SheetOther
	}

	saved, err := sheet.Import(c.Request.Context(), s.store, fh.Filename, f, sheet.ImportOptions{
		Name:     c.PostForm("name"),
		Project:  c.PostForm("project"),
		Type:     typ,
		Location: s.loc,
	})
	if err != nil {
		if errors.Is(err, sheet.ErrUnsupportedFormat) || errors.Is(err, sheet.ErrNoHeader) {
			badRequest(c, err.Error())
			return
		}
		fail(c, err)
		return
	}

	if s.notify != nil {
		_, err := s.notify.AddEvent(c.Request.Context(), "Planilha importada",
			fmt.Sprintf("%s com %d tarefas", saved.Label(), saved.TotalRows))
		if err != nil {
			log.Printf("api: import notification: %v", err)
		}
	}
	c.JSON(http.StatusCreated, saved)
}

// DeleteSheet removes a spreadsheet and its tasks.
func (s *Server) DeleteSheet(c *gin.Context) {
	if err := s.store.DeleteSpreadsheet(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportSheet streams the tasks of a sheet as CSV (default) or XLSX.
func (s *Server) ExportSheet(c *gin.Context) {
	ctx := c.Request.Context()
	sh, err := s.store.GetSpreadsheetByID(ctx, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	tasks, err := s.store.GetTasks(ctx, store.TaskFilter{SheetID: &sh.ID})
	if err != nil {
		fail(c, err)
		return
	}

	format := c.DefaultQuery("format", "csv")
	switch format {
	case "csv":
		c.Header("Content-Type", "text/csv; charset=utf-8")
	case "xlsx":
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	default:
		badRequest(c, "format must be csv or xlsx")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sh.Name+"."+format))
	c.Status(http.StatusOK)

	if format == "xlsx" {
		err = sheet.WriteXLSX(c.Writer, tasks)
	} else {
		err = sheet.WriteCSV(c.Writer, tasks)
	}
	if err != nil {
		log.Printf("api: exporting sheet %s: %v", sh.ID, err)
	}
}

type taskView struct {
	model.Task
	Status      model.Status `json:"status"`
	StatusLabel string       `json:"status_label"`
	Responsible string       `json:"responsible"`
}

// SheetTasks lists the tasks of a sheet with their derived status and the
// short responsible name. Query parameters mirror schedule.Filter:
// status, then condition, classification, category and phase (repeatable),
// responsible and q.
func (s *Server) SheetTasks(c *gin.Context) {
	id := c.Param("id")
	tasks, err := s.sheetTasks(c, id)
	if err != nil {
		fail(c, err)
		return
	}

	f := schedule.Filter{
		Classification: c.QueryArray("classification"),
		Category:       c.QueryArray("category"),
		Condition:      c.QueryArray("condition"),
		Phase:          c.QueryArray("phase"),
		Status:         statusLabel(c.Query("status")),
		Responsible:    c.Query("responsible"),
		Query:          c.Query("q"),
	}
	now := s.today()

	out := make([]taskView, 0, len(tasks))
	for _, t := range f.Apply(tasks, now) {
		st := schedule.TaskStatus(t, now)
		out = append(out, taskView{
			Task:        t,
			Status:      st,
			StatusLabel: st.Badge(),
			Responsible: schedule.DisplayName(t.ResponsibleName),
		})
	}
	c.JSON(http.StatusOK, out)
}

// SheetCounters tallies the tasks of one sheet by status.
func (s *Server) SheetCounters(c *gin.Context) {
	tasks, err := s.sheetTasks(c, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	counters := schedule.Count(tasks, s.today())
	c.JSON(http.StatusOK, gin.H{
		"counters": counters,
		"percent":  counters.Percent(),
	})
}

func (s *Server) sheetTasks(c *gin.Context, id string) ([]model.Task, error) {
	ctx := c.Request.Context()
	if _, err := s.store.GetSpreadsheetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.GetTasks(ctx, store.TaskFilter{SheetID: &id})
}

// statusLabel accepts either a status key ("overdue") or its label.
func statusLabel(v string) string {
	switch model.Status(v) {
	case model.StatusCompleted, model.StatusInProgress, model.StatusOverdue, model.StatusNotStarted:
		return model.Status(v).Label()
	}
	return v
}
