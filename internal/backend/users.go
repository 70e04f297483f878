package backend

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/models"
)

type registerRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type profileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), models.Registration{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
	})
	if errors.Is(err, db.ErrEmailTaken) {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := s.setSession(c, user.ID); err != nil {
		s.respondError(c, http.StatusInternalServerError, errors.New("Failed to generate token"))
		return
	}
	s.logger.Info("user registered", "user", user.ID)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.store.Authenticate(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, db.ErrInvalidCredentials) {
		s.respondError(c, http.StatusUnauthorized, errors.New("Invalid credentials"))
		return
	}
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := s.setSession(c, user.ID); err != nil {
		s.respondError(c, http.StatusInternalServerError, errors.New("Failed to generate token"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) handleLogout(c *gin.Context) {
	clearSession(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (s *Server) handleGetProfile(c *gin.Context) {
	user, err := s.store.GetUser(c.Request.Context(), currentUserID(c))
	if errors.Is(err, db.ErrNotFound) {
		// the account behind a still-valid token is gone
		clearSession(c)
		s.respondError(c, http.StatusUnauthorized, errors.New("User not found"))
		return
	}
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) handleUpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	first, last := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)
	if first == "" && last == "" {
		s.respondError(c, http.StatusBadRequest, errors.New("At least one field must be provided"))
		return
	}

	user, err := s.store.UpdateUserNames(c.Request.Context(), currentUserID(c), first, last)
	if err != nil {
		s.respondStoreError(c, err, "User not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"updated_at": user.UpdatedAt,
		},
		"message": "Profile updated successfully",
	})
}
