package api

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/schedule"
	"github.com/nhle/cronograma/internal/store"
)

type createEventRequest struct {
	Title        string   `json:"title" validate:"required,notblank,max=200"`
	Date         string   `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string   `json:"time" validate:"omitempty,datetime=15:04"`
	Type         string   `json:"type" validate:"omitempty,oneof=meeting deadline review other"`
	Description  string   `json:"description"`
	DurationDays int      `json:"duration_days" validate:"min=0,max=366"`
	Progress     int      `json:"progress" validate:"min=0,max=100"`
	Priority     string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	Dependencies []string `json:"dependencies"`
}

// ListEvents returns the stored events plus the entries derived from tasks
// that overlap the requested month (default: the current one).
//
//	GET /events?month=2024-03&tasks=false
func (s *Server) ListEvents(c *gin.Context) {
	ref := s.today()
	if m := c.Query("month"); m != "" {
		parsed, err := time.ParseInLocation("2006-01", m, s.loc)
		if err != nil {
			badRequest(c, "month must be YYYY-MM")
			return
		}
		ref = parsed
	}

	ctx := c.Request.Context()
	events, err := s.store.GetEvents(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	if c.DefaultQuery("tasks", "true") != "false" {
		tasks, err := s.store.GetTasks(ctx, store.TaskFilter{})
		if err != nil {
			fail(c, err)
			return
		}
		events = append(events, schedule.TasksToEvents(tasks, s.today())...)
	}
	c.JSON(http.StatusOK, schedule.EventsInMonth(events, ref))
}

// CreateEvent stores a calendar event and raises an event notification.
func (s *Server) CreateEvent(c *gin.Context) {
	var req createEventRequest
	if !bindJSON(c, &req) {
		return
	}
	date, _ := time.ParseInLocation(dayLayout, req.Date, s.loc)

	ev, err := s.store.CreateEvent(c.Request.Context(), model.Event{
		Title:        req.Title,
		Date:         date,
		Time:         req.Time,
		Type:         model.EventType(req.Type),
		Description:  req.Description,
		DurationDays: req.DurationDays,
		Progress:     req.Progress,
		Priority:     model.Priority(req.Priority),
		Dependencies: req.Dependencies,
	})
	if err != nil {
		fail(c, err)
		return
	}

	if s.notify != nil {
		msg := fmt.Sprintf("%s em %s", ev.Title, ev.Date.Format("02/01/2006"))
		if _, err := s.notify.AddEvent(c.Request.Context(), "Novo evento", msg); err != nil {
			log.Printf("api: event notification: %v", err)
		}
	}
	c.JSON(http.StatusCreated, ev)
}

// DeleteEvent removes a stored event.
func (s *Server) DeleteEvent(c *gin.Context) {
	if err := s.store.DeleteEvent(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
