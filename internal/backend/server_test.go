package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/models"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv, err := New(store, Options{JWTSecret: "test-secret", AllowedOrigins: []string{"http://localhost:3000"}}, nil)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func newClient(t *testing.T, ts *httptest.Server) *api.Client {
	t.Helper()
	c, err := api.New(ts.URL, 5*time.Second, nil)
	require.NoError(t, err)
	return c
}

var ann = models.Registration{Email: "ann@example.com", Password: "secret1", FirstName: "Ann", LastName: "Lee"}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New(nil, Options{}, nil)
	require.Error(t, err)
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t, ts)
	ctx := context.Background()

	_, err := c.Profile(ctx)
	require.True(t, api.IsUnauthorized(err))

	u, err := c.Register(ctx, ann)
	require.NoError(t, err)
	require.Equal(t, "Ann", u.FirstName)

	_, err = newClient(t, ts).Register(ctx, ann)
	require.Equal(t, "email already registered", api.Message(err, "Registration failed"))

	profile, err := c.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, u.ID, profile.ID)

	patch, err := c.UpdateProfile(ctx, "Annie", "Lee")
	require.NoError(t, err)
	require.Equal(t, "Annie", *patch.FirstName)
	require.Nil(t, patch.CreatedAt)

	require.NoError(t, c.Logout(ctx))
	_, err = c.Profile(ctx)
	require.True(t, api.IsUnauthorized(err))

	_, err = c.Login(ctx, ann.Email, "wrong-password")
	require.True(t, api.IsUnauthorized(err))
	require.Equal(t, "Invalid credentials", api.Message(err, "Login failed"))

	u, err = c.Login(ctx, ann.Email, ann.Password)
	require.NoError(t, err)
	require.Equal(t, "Annie", u.FirstName)
}

func TestRegister_Validation(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t, ts)

	_, err := c.Register(context.Background(), models.Registration{Email: "x@y.z", Password: "123", FirstName: "A", LastName: "B"})
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
}

func TestRefreshCookieReissuesAccess(t *testing.T) {
	srv, ts := newTestServer(t)
	c := newClient(t, ts)
	ctx := context.Background()
	_, err := c.Register(ctx, ann)
	require.NoError(t, err)

	start := time.Now()
	srv.tokens.now = func() time.Time { return start.Add(time.Hour) }
	_, err = c.Profile(ctx)
	require.NoError(t, err, "expired access token should be refreshed")

	srv.tokens.now = func() time.Time { return start.Add(100 * time.Hour) }
	_, err = c.Profile(ctx)
	require.True(t, api.IsUnauthorized(err))
}

func TestTaskLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	c := newClient(t, ts)
	ctx := context.Background()
	_, err := c.Register(ctx, ann)
	require.NoError(t, err)

	p, err := c.CreateProject(ctx, models.ProjectInput{Name: "Home"})
	require.NoError(t, err)
	require.Equal(t, models.DefaultProjectColor, p.Color)

	_, err = c.CreateProject(ctx, models.ProjectInput{Name: "Bad", Color: "red"})
	require.Error(t, err)

	due := "2024-01-05"
	task, err := c.CreateTask(ctx, models.TaskInput{Title: "Buy milk", Priority: models.PriorityHigh, DueDate: &due, ProjectID: &p.ID})
	require.NoError(t, err)
	require.Equal(t, models.StatusTodo, task.Status)
	require.Equal(t, "Home", task.Project.Name)

	bad := "05/01/2024"
	_, err = c.CreateTask(ctx, models.TaskInput{Title: "x", Priority: models.PriorityLow, DueDate: &bad})
	require.Equal(t, "Invalid date format (YYYY-MM-DD)", api.Message(err, ""))

	_, err = c.CreateTask(ctx, models.TaskInput{Title: "x", Priority: "urgent"})
	require.Error(t, err)

	require.NoError(t, c.UpdateTaskStatus(ctx, task.ID, models.StatusDone))
	require.Error(t, c.UpdateTaskStatus(ctx, task.ID, "blocked"))

	projects, err := c.ListProjects(ctx, 50)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, 1, projects[0].TotalTasks)
	require.Equal(t, 1, projects[0].CompletedTasks)

	tasks, err := c.ListTasks(ctx, api.TaskQuery{Filter: models.TaskFilter{Status: models.StatusDone}, Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	updated, err := c.UpdateTask(ctx, task.ID, models.TaskInput{Title: "Buy oat milk", Priority: models.PriorityLow})
	require.NoError(t, err)
	require.Equal(t, "Buy oat milk", updated.Title)
	require.Equal(t, models.StatusDone, updated.Status)
	require.Nil(t, updated.ProjectID)

	require.NoError(t, c.DeleteTask(ctx, task.ID))
	err = c.DeleteTask(ctx, task.ID)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestTasksAreScopedToUser(t *testing.T) {
	_, ts := newTestServer(t)
	ctx := context.Background()

	a := newClient(t, ts)
	_, err := a.Register(ctx, ann)
	require.NoError(t, err)
	task, err := a.CreateTask(ctx, models.TaskInput{Title: "mine", Priority: models.PriorityLow})
	require.NoError(t, err)

	b := newClient(t, ts)
	_, err = b.Register(ctx, models.Registration{Email: "bo@example.com", Password: "secret1", FirstName: "Bo", LastName: "Ng"})
	require.NoError(t, err)

	tasks, err := b.ListTasks(ctx, api.TaskQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Empty(t, tasks)
	require.Error(t, b.DeleteTask(ctx, task.ID))
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/tasks", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
}
