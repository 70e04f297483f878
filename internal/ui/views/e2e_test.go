package views

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/backend"
	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/session"
	"github.com/tgienger/taskdeck/internal/stats"
)

func newLiveDeps(t *testing.T) Deps {
	t.Helper()
	store, err := db.New(filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv, err := backend.New(store, backend.Options{JWTSecret: "e2e-secret"}, nil)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := api.New(ts.URL, 5*time.Second, nil)
	require.NoError(t, err)

	sess := session.NewStore(client, nil)
	_, err = sess.Register(context.Background(), models.Registration{
		Email: "ann@example.com", Password: "secret1", FirstName: "Ann", LastName: "Lee",
	})
	require.NoError(t, err)

	return Deps{Session: sess, Backend: client, PageSize: 10, RecentLimit: 5}
}

func TestEndToEnd_TaskLifecycle(t *testing.T) {
	deps := newLiveDeps(t)
	ctx := context.Background()
	for _, title := range []string{"First", "Second"} {
		_, err := deps.Backend.CreateTask(ctx, models.TaskInput{Title: title, Priority: models.PriorityLow})
		require.NoError(t, err)
	}

	v := NewTasksView(deps)
	run(v, v.Init())
	require.Len(t, v.Tasks(), 2)
	total := stats.CountTotal(v.Tasks())

	// create: the new task becomes index 0
	press(v, keyRunes("n"))
	typeText(v, "Third")
	press(v, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.Empty(t, v.banner.text)
	created := v.Tasks()[0]
	require.Equal(t, "Third", created.Title)
	require.Equal(t, total+1, stats.CountTotal(v.Tasks()))

	// status: only the status changes
	press(v, keyRunes("s"))
	require.Empty(t, v.banner.text)
	patched := v.Tasks()[0]
	require.Equal(t, models.StatusInProgress, patched.Status)
	patched.Status = created.Status
	require.Equal(t, created, patched)

	// the backend agrees
	fresh, err := deps.Backend.ListTasks(ctx, api.TaskQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, fresh[0].Status)

	// delete: gone, and the count drops by exactly one
	before := stats.CountTotal(v.Tasks())
	press(v, keyRunes("d"))
	press(v, keyRunes("y"))
	require.Empty(t, v.banner.text)
	require.Equal(t, before-1, stats.CountTotal(v.Tasks()))
	for _, task := range v.Tasks() {
		require.NotEqual(t, created.ID, task.ID)
	}
}

func TestEndToEnd_LogoutExpiresScreens(t *testing.T) {
	deps := newLiveDeps(t)
	deps.Session.Logout(context.Background())

	v := NewDashboardView(deps)
	msgs := run(v, v.Init())
	_, ok := findMsg[SessionExpired](msgs)
	require.True(t, ok)
}
