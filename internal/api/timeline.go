package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/store"
)

const dayLayout = "2006-01-02"

type barResponse struct {
	TaskID   string         `json:"task_id"`
	Number   int            `json:"number"`
	Name     string         `json:"name"`
	Status   model.Status   `json:"status"`
	Priority model.Priority `json:"priority"`
	Start    string         `json:"start"`
	schedule.BarPosition
}

type timelineResponse struct {
	Mode        schedule.ViewMode `json:"mode"`
	Zoom        float64           `json:"zoom"`
	ColumnWidth float64           `json:"column_width"`
	Days        []string          `json:"days"`
	Bars        []barResponse     `json:"bars"`
}

// Timeline returns the days of the requested view and the bar of every
// task, optionally limited to one sheet.
//
//	GET /timeline?date=2024-03-10&mode=week&zoom=1.2&sheet=<id>
func (s *Server) Timeline(c *gin.Context) {
	today := s.today()
	ref := today
	if d := c.Query("date"); d != "" {
		parsed, err := time.ParseInLocation(dayLayout, d, s.loc)
		if err != nil {
			badRequest(c, "date must be YYYY-MM-DD")
			return
		}
		ref = parsed
	}

	mode := schedule.ParseViewMode(c.Query("mode"))
	zoom := schedule.DefaultZoom
	if z := c.Query("zoom"); z != "" {
		f, err := strconv.ParseFloat(z, 64)
		if err != nil {
			badRequest(c, "zoom must be a number")
			return
		}
		zoom = f
	}
	zoom = schedule.ClampZoom(zoom)

	var filter store.TaskFilter
	if id := c.Query("sheet"); id != "" {
		filter.SheetID = &id
	}
	tasks, err := s.store.GetTasks(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}

	timeline := schedule.GenerateTimeline(ref, mode)
	width := schedule.ColumnWidth(mode)

	resp := timelineResponse{
		Mode:        mode,
		Zoom:        zoom,
		ColumnWidth: width,
		Days:        make([]string, len(timeline)),
		Bars:        make([]barResponse, 0, len(tasks)),
	}
	for i, d := range timeline {
		resp.Days[i] = d.Format(dayLayout)
	}
	for _, t := range tasks {
		start := schedule.TaskStart(t, today)
		resp.Bars = append(resp.Bars, barResponse{
			TaskID:      t.ID,
			Number:      t.Number,
			Name:        t.Name,
			Status:      schedule.TaskStatus(t, today),
			Priority:    schedule.InferPriority(t, today),
			Start:       start.Format(dayLayout),
			BarPosition: schedule.PositionOnTimeline(timeline, start, t.DurationDays, width, zoom),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Progress returns the overall completion across every sheet.
func (s *Server) Progress(c *gin.Context) {
	ctx := c.Request.Context()
	sheets, err := s.store.GetSpreadsheets(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	tasks, err := s.store.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		fail(c, err)
		return
	}
	counters := schedule.Count(tasks, s.today())
	c.JSON(http.StatusOK, gin.H{
		"percent":  schedule.SheetProgress(sheets),
		"counters": counters,
	})
}
