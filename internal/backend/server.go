// Package backend is the reference REST backend served by `taskdeck serve`.
package backend

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/tgienger/taskdeck/internal/db"
)

const (
	defaultLimit = 10
	maxLimit     = 1000
)

// Options configures the backend
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

// Server provides the HTTP handlers for the task tracker API
type Server struct {
	engine  *gin.Engine
	handler http.Handler
	store   *db.DB
	tokens  *tokenIssuer
	logger  *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured
func New(store *db.DB, opts Options, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.JWTSecret == "" {
		return nil, errors.New("jwt secret must be set")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	srv := &Server{
		engine: router,
		store:  store,
		tokens: newTokenIssuer([]byte(opts.JWTSecret)),
		logger: logger,
	}
	srv.registerRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	})
	srv.handler = c.Handler(router)

	return srv, nil
}

// Handler is the engine wrapped with CORS handling
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.HEAD("/health", s.handleHealth)

	public := s.engine.Group("/api")
	{
		public.POST("/register", s.handleRegister)
		public.POST("/login", s.handleLogin)
		public.POST("/logout", s.handleLogout)
	}

	api := s.engine.Group("/api")
	api.Use(s.requireAuth())
	{
		api.GET("/profile", s.handleGetProfile)
		api.PUT("/profile", s.handleUpdateProfile)

		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleCreateTask)
		api.GET("/tasks/:id", s.handleGetTask)
		api.PUT("/tasks/:id", s.handleUpdateTask)
		api.PUT("/tasks/:id/status", s.handleUpdateTaskStatus)
		api.DELETE("/tasks/:id", s.handleDeleteTask)

		api.GET("/projects", s.handleListProjects)
		api.POST("/projects", s.handleCreateProject)
		api.GET("/projects/:id", s.handleGetProject)
		api.PUT("/projects/:id", s.handleUpdateProject)
		api.DELETE("/projects/:id", s.handleDeleteProject)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, "ok")
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// respondError logs server side failures and writes {"error": msg}
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// respondStoreError maps storage errors to HTTP statuses
func (s *Server) respondStoreError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, db.ErrNotFound) {
		s.respondError(c, http.StatusNotFound, errors.New(notFound))
		return
	}
	s.respondError(c, http.StatusInternalServerError, err)
}

// pageParams reads page and limit, falling back to 1 and 10
func pageParams(c *gin.Context) (limit, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit, (page - 1) * limit
}
