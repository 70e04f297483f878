package ui

import (
	"context"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/session"
	"github.com/tgienger/taskdeck/internal/ui/views"
)

type stubAuth struct {
	user models.User
	err  error
}

func (s *stubAuth) Login(ctx context.Context, email, password string) (models.User, error) {
	return s.user, s.err
}

func (s *stubAuth) Register(ctx context.Context, r models.Registration) (models.User, error) {
	return s.user, s.err
}

func (s *stubAuth) Logout(ctx context.Context) error { return nil }

func (s *stubAuth) Profile(ctx context.Context) (models.User, error) { return s.user, s.err }

func (s *stubAuth) UpdateProfile(ctx context.Context, firstName, lastName string) (models.UserPatch, error) {
	return models.UserPatch{FirstName: &firstName, LastName: &lastName}, s.err
}

type stubBackend struct {
	mu      sync.Mutex
	tasks   []models.Task
	listErr error
}

func (b *stubBackend) ListTasks(ctx context.Context, q api.TaskQuery) ([]models.Task, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tasks, b.listErr
}

func (b *stubBackend) CreateTask(ctx context.Context, in models.TaskInput) (models.Task, error) {
	return models.Task{ID: "new", Title: in.Title}, nil
}

func (b *stubBackend) UpdateTask(ctx context.Context, id string, in models.TaskInput) (models.Task, error) {
	return models.Task{ID: id, Title: in.Title}, nil
}

func (b *stubBackend) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	return nil
}

func (b *stubBackend) DeleteTask(ctx context.Context, id string) error { return nil }

func (b *stubBackend) ListProjects(ctx context.Context, limit int) ([]models.Project, error) {
	return nil, nil
}

func (b *stubBackend) CreateProject(ctx context.Context, in models.ProjectInput) (models.Project, error) {
	return models.Project{ID: "p", Name: in.Name}, nil
}

func (b *stubBackend) UpdateProject(ctx context.Context, id string, in models.ProjectInput) (models.Project, error) {
	return models.Project{ID: id, Name: in.Name}, nil
}

func (b *stubBackend) DeleteProject(ctx context.Context, id string) error { return nil }

type memPrefs map[string]string

func (p memPrefs) GetSetting(key string) (string, error) { return p[key], nil }

func (p memPrefs) SetSetting(key, value string) error {
	p[key] = value
	return nil
}

var ann = models.User{ID: "u1", Email: "ann@example.com", FirstName: "Ann", LastName: "Lee"}

func newTestApp(t *testing.T, auth *stubAuth, prefs memPrefs) (*App, *stubBackend) {
	t.Helper()
	backend := &stubBackend{tasks: []models.Task{{ID: "t1", Title: "Write docs", Status: models.StatusTodo}}}
	app := NewApp(views.Deps{
		Session: session.NewStore(auth, nil),
		Backend: backend,
	}, prefs)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return app, backend
}

// start runs the session check and the first screen's initial fetches
func start(app *App) {
	drain(app, app.Init())
}

// drain runs cmd to completion, feeding every message back to the app.
// Cursor blinks are skipped so nothing waits on a timer.
func drain(app *App, cmd tea.Cmd) []tea.Msg {
	var seen []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		seen = append(seen, msg)
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
		default:
			if !forApp(msg) {
				continue
			}
			_, next := app.Update(msg)
			queue = append(queue, next)
		}
	}
	return seen
}

func forApp(msg tea.Msg) bool {
	switch msg.(type) {
	case sessionCheckedMsg, loggedOutMsg, views.Navigate, views.LoggedIn, views.SessionExpired:
		return true
	case interface{ MountID() uint64 }:
		return true
	}
	return false
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestApp_NoSessionShowsLogin(t *testing.T) {
	app, _ := newTestApp(t, &stubAuth{err: &api.Error{StatusCode: 401}}, memPrefs{db.SettingLastEmail: "ann@example.com"})
	start(app)

	require.Equal(t, views.ScreenLogin, app.Screen())
	require.Contains(t, app.View(), "Sign in")
}

func TestApp_RestoresLastScreen(t *testing.T) {
	prefs := memPrefs{db.SettingLastScreen: "projects"}
	app, _ := newTestApp(t, &stubAuth{user: ann}, prefs)
	start(app)

	require.Equal(t, views.ScreenProjects, app.Screen())
	require.Contains(t, app.View(), "3 Projects")
}

func TestApp_IgnoresUnusableLastScreen(t *testing.T) {
	for _, last := range []string{"", "login", "settings"} {
		app, _ := newTestApp(t, &stubAuth{user: ann}, memPrefs{db.SettingLastScreen: last})
		start(app)
		require.Equal(t, views.ScreenDashboard, app.Screen(), last)
	}
}

func TestApp_NumberKeysSwitchScreens(t *testing.T) {
	prefs := memPrefs{}
	app, _ := newTestApp(t, &stubAuth{user: ann}, prefs)
	start(app)

	for key, want := range map[string]views.Screen{
		"2": views.ScreenTasks,
		"3": views.ScreenProjects,
		"4": views.ScreenProfile,
		"1": views.ScreenDashboard,
	} {
		_, cmd := app.Update(keyRunes(key))
		drain(app, cmd)
		require.Equal(t, want, app.Screen())
		require.Equal(t, want.String(), prefs[db.SettingLastScreen])
	}
}

func TestApp_QuitKeys(t *testing.T) {
	app, _ := newTestApp(t, &stubAuth{err: &api.Error{StatusCode: 401}}, nil)
	start(app)

	// the email field owns q on the login screen
	_, cmd := app.Update(keyRunes("q"))
	require.False(t, isQuit(cmd))

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.True(t, isQuit(cmd))
}

func TestApp_QuitFromDashboard(t *testing.T) {
	app, _ := newTestApp(t, &stubAuth{user: ann}, nil)
	start(app)

	_, cmd := app.Update(keyRunes("q"))
	require.True(t, isQuit(cmd))
}

func TestApp_LoggedInSavesEmail(t *testing.T) {
	prefs := memPrefs{}
	auth := &stubAuth{err: &api.Error{StatusCode: 401}}
	app, _ := newTestApp(t, auth, prefs)
	start(app)

	auth.err, auth.user = nil, ann
	_, err := app.deps.Session.Login(context.Background(), ann.Email, "secret1")
	require.NoError(t, err)
	_, cmd := app.Update(views.LoggedIn{User: ann, Email: ann.Email})
	drain(app, cmd)

	require.Equal(t, views.ScreenDashboard, app.Screen())
	require.Equal(t, ann.Email, prefs[db.SettingLastEmail])
}

func TestApp_SessionExpiredReturnsToLogin(t *testing.T) {
	app, backend := newTestApp(t, &stubAuth{user: ann}, memPrefs{})
	start(app)
	require.Equal(t, views.ScreenDashboard, app.Screen())

	backend.mu.Lock()
	backend.listErr = &api.Error{StatusCode: 401}
	backend.mu.Unlock()

	_, cmd := app.Update(keyRunes("2"))
	drain(app, cmd)

	require.Equal(t, views.ScreenLogin, app.Screen())
	require.False(t, app.deps.Session.LoggedIn())
	require.Contains(t, app.View(), msgSessionExpired)
}

func TestApp_LogoutKey(t *testing.T) {
	app, _ := newTestApp(t, &stubAuth{user: ann}, memPrefs{})
	start(app)

	_, cmd := app.Update(keyRunes("L"))
	drain(app, cmd)

	require.Equal(t, views.ScreenLogin, app.Screen())
	require.False(t, app.deps.Session.LoggedIn())
}

func TestApp_NavigateToGatedScreenWhileLoggedOut(t *testing.T) {
	app, _ := newTestApp(t, &stubAuth{err: &api.Error{StatusCode: 401}}, nil)
	start(app)

	_, cmd := app.Update(views.Navigate{To: views.ScreenTasks})
	drain(app, cmd)
	require.Equal(t, views.ScreenLogin, app.Screen())

	_, cmd = app.Update(views.Navigate{To: views.ScreenRegister})
	drain(app, cmd)
	require.Equal(t, views.ScreenRegister, app.Screen())
}

func TestApp_DropsResultsForReplacedScreen(t *testing.T) {
	app, backend := newTestApp(t, &stubAuth{user: ann}, memPrefs{})
	start(app)

	// Dashboard fetches are issued but not yet delivered
	_, cmd := app.Update(keyRunes("r"))
	backend.mu.Lock()
	backend.listErr = &api.Error{StatusCode: 401}
	backend.mu.Unlock()
	var stale []tea.Msg
	for _, c := range cmd().(tea.BatchMsg) {
		stale = append(stale, c())
	}

	backend.mu.Lock()
	backend.listErr = nil
	backend.mu.Unlock()
	_, next := app.Update(keyRunes("4"))
	drain(app, next)
	require.Equal(t, views.ScreenProfile, app.Screen())

	for _, msg := range stale {
		_, cmd := app.Update(msg)
		require.Nil(t, cmd)
	}
	require.Equal(t, views.ScreenProfile, app.Screen())
	require.True(t, app.deps.Session.LoggedIn())
}
