package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nhle/cronograma/internal/model"
)

type memberRequest struct {
	Name           string `json:"name" validate:"required,notblank,max=200"`
	Role           string `json:"role"`
	Team           string `json:"team"`
	Email          string `json:"email" validate:"omitempty,email"`
	Phone          string `json:"phone"`
	Location       string `json:"location"`
	Status         string `json:"status" validate:"omitempty,oneof=active inactive vacation"`
	TasksCompleted int    `json:"tasks_completed" validate:"min=0"`
}

func (r memberRequest) toModel(id string) model.TeamMember {
	return model.TeamMember{
		ID:             id,
		Name:           r.Name,
		Role:           r.Role,
		Team:           r.Team,
		Email:          r.Email,
		Phone:          r.Phone,
		Location:       r.Location,
		Status:         model.MemberStatus(r.Status),
		TasksCompleted: r.TasksCompleted,
	}
}

func (s *Server) ListMembers(c *gin.Context) {
	members, err := s.store.GetMembers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (s *Server) CreateMember(c *gin.Context) {
	var req memberRequest
	if !bindJSON(c, &req) {
		return
	}
	m, err := s.store.CreateMember(c.Request.Context(), req.toModel(""))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (s *Server) UpdateMember(c *gin.Context) {
	var req memberRequest
	if !bindJSON(c, &req) {
		return
	}
	ctx := c.Request.Context()
	id := c.Param("id")
	if err := s.store.UpdateMember(ctx, req.toModel(id)); err != nil {
		fail(c, err)
		return
	}
	m, err := s.store.GetMemberByID(ctx, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) DeleteMember(c *gin.Context) {
	if err := s.store.DeleteMember(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
