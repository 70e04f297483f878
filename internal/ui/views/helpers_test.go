package views

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/session"
)

var testNow = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

type fakeAuth struct {
	user  models.User
	err   error
	patch models.UserPatch
}

func (f *fakeAuth) Login(ctx context.Context, email, password string) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	return f.user, nil
}

func (f *fakeAuth) Register(ctx context.Context, r models.Registration) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	return models.User{ID: "u-new", Email: r.Email, FirstName: r.FirstName, LastName: r.LastName}, nil
}

func (f *fakeAuth) Logout(ctx context.Context) error { return nil }

func (f *fakeAuth) Profile(ctx context.Context) (models.User, error) {
	if f.err != nil {
		return models.User{}, f.err
	}
	return f.user, nil
}

func (f *fakeAuth) UpdateProfile(ctx context.Context, firstName, lastName string) (models.UserPatch, error) {
	if f.err != nil {
		return models.UserPatch{}, f.err
	}
	f.user.FirstName, f.user.LastName = firstName, lastName
	return models.UserPatch{FirstName: &firstName, LastName: &lastName}, nil
}

// fakeBackend keeps tasks and projects in memory, newest first
type fakeBackend struct {
	mu sync.Mutex

	tasks    []models.Task
	projects []models.Project
	seq      int

	listErr     error
	projectsErr error
	createErr   error
	updateErr   error
	statusErr   error
	deleteErr   error

	queries       []api.TaskQuery
	projectLimits []int
	statusCalls   []models.TaskStatus
	deletes       int
	deletedTasks  []string
}

func (f *fakeBackend) ListTasks(ctx context.Context, q api.TaskQuery) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.listErr != nil {
		return nil, f.listErr
	}
	var matched []models.Task
	for _, t := range f.tasks {
		if q.Filter.Status != "" && t.Status != q.Filter.Status {
			continue
		}
		if q.Filter.Priority != "" && t.Priority != q.Filter.Priority {
			continue
		}
		matched = append(matched, t)
	}
	start := min(max(q.Page-1, 0)*q.Limit, len(matched))
	end := min(start+q.Limit, len(matched))
	return append([]models.Task(nil), matched[start:end]...), nil
}

func (f *fakeBackend) CreateTask(ctx context.Context, in models.TaskInput) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return models.Task{}, f.createErr
	}
	f.seq++
	t := models.Task{
		ID:          fmt.Sprintf("new-%d", f.seq),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Status:      models.StatusTodo,
		ProjectID:   in.ProjectID,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
	f.tasks = append([]models.Task{t}, f.tasks...)
	return t, nil
}

func (f *fakeBackend) UpdateTask(ctx context.Context, id string, in models.TaskInput) (models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return models.Task{}, f.updateErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			t.Title, t.Description, t.Priority = in.Title, in.Description, in.Priority
			if in.Status != "" {
				t.Status = in.Status
			}
			f.tasks[i] = t
			return t, nil
		}
	}
	return models.Task{}, &api.Error{StatusCode: 404, Message: "Task not found"}
}

func (f *fakeBackend) UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusCalls = append(f.statusCalls, status)
	return f.statusErr
}

func (f *fakeBackend) DeleteTask(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	f.deletedTasks = append(f.deletedTasks, id)
	return f.deleteErr
}

func (f *fakeBackend) ListProjects(ctx context.Context, limit int) ([]models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projectLimits = append(f.projectLimits, limit)
	if f.projectsErr != nil {
		return nil, f.projectsErr
	}
	return append([]models.Project(nil), f.projects...), nil
}

func (f *fakeBackend) CreateProject(ctx context.Context, in models.ProjectInput) (models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return models.Project{}, f.createErr
	}
	f.seq++
	p := models.Project{ID: fmt.Sprintf("p-new-%d", f.seq), Name: in.Name, Description: in.Description, Color: in.Color}
	f.projects = append([]models.Project{p}, f.projects...)
	return p, nil
}

func (f *fakeBackend) UpdateProject(ctx context.Context, id string, in models.ProjectInput) (models.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return models.Project{}, f.updateErr
	}
	for i, p := range f.projects {
		if p.ID == id {
			p.Name, p.Description, p.Color = in.Name, in.Description, in.Color
			f.projects[i] = p
			return p, nil
		}
	}
	return models.Project{}, &api.Error{StatusCode: 404, Message: "Project not found"}
}

func (f *fakeBackend) DeleteProject(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	return f.deleteErr
}

var ann = models.User{ID: "u1", Email: "ann@example.com", FirstName: "Ann", LastName: "Lee", CreatedAt: testNow}

func loggedInStore(t *testing.T, auth *fakeAuth) *session.Store {
	t.Helper()
	store := session.NewStore(auth, nil)
	_, err := store.Login(context.Background(), auth.user.Email, "secret1")
	require.NoError(t, err)
	return store
}

func testDeps(t *testing.T, backend Backend) Deps {
	t.Helper()
	return Deps{
		Session:     loggedInStore(t, &fakeAuth{user: ann}),
		Backend:     backend,
		PageSize:    10,
		RecentLimit: 5,
		Now:         func() time.Time { return testNow },
	}
}

type model interface {
	Update(tea.Msg) (tea.Model, tea.Cmd)
}

// run executes cmd and everything it leads to. Results addressed to a
// screen are fed back into m; anything else is returned.
func run(m model, cmd tea.Cmd) []tea.Msg {
	var out []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case interface{ MountID() uint64 }:
			_, next := m.Update(msg)
			queue = append(queue, next)
		default:
			out = append(out, msg)
		}
	}
	return out
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends one key and runs whatever it triggers
func press(m model, k tea.KeyMsg) []tea.Msg {
	_, cmd := m.Update(k)
	return run(m, cmd)
}

func typeText(m model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: "t3", Title: "Ship release", Status: models.StatusInProgress, Priority: models.PriorityHigh,
			DueDate: &models.Date{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, CreatedAt: testNow},
		{ID: "t2", Title: "Write docs", Status: models.StatusTodo, Priority: models.PriorityLow, CreatedAt: testNow},
		{ID: "t1", Title: "Set up CI", Status: models.StatusDone, Priority: models.PriorityMedium, CreatedAt: testNow},
	}
}
