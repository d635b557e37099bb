package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListNotifications returns the inbox, newest first, with the unread count.
func (s *Server) ListNotifications(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := s.notify.List(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	unread, err := s.notify.UnreadCount(ctx)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "unread": unread})
}

func (s *Server) MarkNotificationRead(c *gin.Context) {
	if err := s.notify.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) MarkAllNotificationsRead(c *gin.Context) {
	if err := s.notify.MarkAllRead(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) DeleteNotification(c *gin.Context) {
	if err := s.notify.Clear(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) ClearNotifications(c *gin.Context) {
	if err := s.notify.ClearAll(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
