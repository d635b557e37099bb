// Package api exposes the schedule over a small local HTTP API so other
// tools (a browser front end, scripts) can read and update it.
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/nhle/cronograma/internal/model"
	"github.com/nhle/cronograma/internal/notify"
	"github.com/nhle/cronograma/internal/store"
)

// Deps are the services the handlers work against.
type Deps struct {
	Store    store.Store
	Notify   *notify.Center
	Location *time.Location

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server holds the handler dependencies.
type Server struct {
	store  store.Store
	notify *notify.Center
	loc    *time.Location
	now    func() time.Time
}

// NewServer creates a Server from deps.
func NewServer(deps Deps) *Server {
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Server{store: deps.Store, notify: deps.Notify, loc: loc, now: now}
}

func (s *Server) today() time.Time {
	return s.now().In(s.loc)
}

// NewRouter builds the gin engine with CORS and every /api/v1 route.
func NewRouter(cfg model.APIConfig, deps Deps) *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	s := NewServer(deps)
	s.Register(r.Group("/api/v1"))
	return r
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	return c
}

// Register mounts the routes on g.
func (s *Server) Register(g *gin.RouterGroup) {
	g.GET("/timeline", s.Timeline)
	g.GET("/progress", s.Progress)

	g.GET("/sheets", s.ListSheets)
	g.POST("/sheets/import", s.ImportSheet)
	g.DELETE("/sheets/:id", s.DeleteSheet)
	g.GET("/sheets/:id/export", s.ExportSheet)
	g.GET("/sheets/:id/tasks", s.SheetTasks)
	g.GET("/sheets/:id/counters", s.SheetCounters)

	g.POST("/tasks", s.CreateTask)
	g.PATCH("/tasks/:id", s.PatchTask)
	g.POST("/tasks/:id/start", s.StartTask)
	g.POST("/tasks/:id/unstart", s.UnstartTask)
	g.DELETE("/tasks/:id", s.DeleteTask)

	g.GET("/events", s.ListEvents)
	g.POST("/events", s.CreateEvent)
	g.DELETE("/events/:id", s.DeleteEvent)

	g.GET("/members", s.ListMembers)
	g.POST("/members", s.CreateMember)
	g.PUT("/members/:id", s.UpdateMember)
	g.DELETE("/members/:id", s.DeleteMember)

	g.GET("/notifications", s.ListNotifications)
	g.POST("/notifications/read-all", s.MarkAllNotificationsRead)
	g.POST("/notifications/:id/read", s.MarkNotificationRead)
	g.DELETE("/notifications/:id", s.DeleteNotification)
	g.DELETE("/notifications", s.ClearNotifications)
}
