package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/models"
)

type createTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Priority    string  `json:"priority" binding:"required,oneof=low medium high"`
	DueDate     *string `json:"due_date"`
	ProjectID   *string `json:"project_id"`
}

type updateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Priority    string  `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status      string  `json:"status" binding:"omitempty,oneof=todo in_progress done"`
	DueDate     *string `json:"due_date"`
	ProjectID   *string `json:"project_id"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=todo in_progress done"`
}

func (s *Server) handleListTasks(c *gin.Context) {
	limit, offset := pageParams(c)
	tasks, err := s.store.ListTasks(c.Request.Context(), currentUserID(c), db.TaskListOptions{
		Filter: models.TaskFilter{
			Status:    models.TaskStatus(c.Query("status")),
			Priority:  models.TaskPriority(c.Query("priority")),
			ProjectID: c.Query("project_id"),
			Search:    strings.TrimSpace(c.Query("search")),
		},
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleGetTask(c *gin.Context) {
	task, err := s.store.GetTask(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		s.respondStoreError(c, err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if !s.checkTaskRefs(c, req.DueDate, req.ProjectID) {
		return
	}

	task, err := s.store.CreateTask(c.Request.Context(), currentUserID(c), models.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.TaskPriority(req.Priority),
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if !s.checkTaskRefs(c, req.DueDate, req.ProjectID) {
		return
	}

	task, err := s.store.UpdateTask(c.Request.Context(), currentUserID(c), c.Param("id"), models.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    models.TaskPriority(req.Priority),
		Status:      models.TaskStatus(req.Status),
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
	})
	if err != nil {
		s.respondStoreError(c, err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleUpdateTaskStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.store.UpdateTaskStatus(c.Request.Context(), currentUserID(c), c.Param("id"), models.TaskStatus(req.Status))
	if err != nil {
		s.respondStoreError(c, err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.store.DeleteTask(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		s.respondStoreError(c, err, "Task not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// checkTaskRefs validates the due date format and that the project, when
// given, belongs to the caller.
func (s *Server) checkTaskRefs(c *gin.Context, dueDate, projectID *string) bool {
	if dueDate != nil && *dueDate != "" {
		if _, err := models.ParseDate(*dueDate); err != nil {
			s.respondError(c, http.StatusBadRequest, errors.New("Invalid date format (YYYY-MM-DD)"))
			return false
		}
	}
	if projectID != nil && *projectID != "" {
		_, err := s.store.GetProject(c.Request.Context(), currentUserID(c), *projectID)
		if errors.Is(err, db.ErrNotFound) {
			s.respondError(c, http.StatusBadRequest, errors.New("Project not found"))
			return false
		}
		if err != nil {
			s.respondError(c, http.StatusInternalServerError, err)
			return false
		}
	}
	return true
}
