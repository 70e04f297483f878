package backend

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/gin-gonic/gin"

	"github.com/tgienger/taskdeck/internal/models"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

type projectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (r projectRequest) input() models.ProjectInput {
	return models.ProjectInput{Name: r.Name, Description: r.Description, Color: r.Color}
}

func (s *Server) bindProject(c *gin.Context) (projectRequest, bool) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return req, false
	}
	if req.Color != "" && !hexColor.MatchString(req.Color) {
		s.respondError(c, http.StatusBadRequest, errors.New("color must be a hex value like #4f46e5"))
		return req, false
	}
	return req, true
}

func (s *Server) handleListProjects(c *gin.Context) {
	limit, offset := pageParams(c)
	projects, err := s.store.ListProjects(c.Request.Context(), currentUserID(c), limit, offset)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) handleGetProject(c *gin.Context) {
	project, err := s.store.GetProject(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		s.respondStoreError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) handleCreateProject(c *gin.Context) {
	req, ok := s.bindProject(c)
	if !ok {
		return
	}
	project, err := s.store.CreateProject(c.Request.Context(), currentUserID(c), req.input())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (s *Server) handleUpdateProject(c *gin.Context) {
	req, ok := s.bindProject(c)
	if !ok {
		return
	}
	project, err := s.store.UpdateProject(c.Request.Context(), currentUserID(c), c.Param("id"), req.input())
	if err != nil {
		s.respondStoreError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) handleDeleteProject(c *gin.Context) {
	if err := s.store.DeleteProject(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		s.respondStoreError(c, err, "Project not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
