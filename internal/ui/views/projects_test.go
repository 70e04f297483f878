package views

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/models"
)

func sampleProjects() []models.Project {
	return []models.Project{
		{ID: "p2", Name: "Website", Color: "#22c55e", TotalTasks: 8, CompletedTasks: 1},
		{ID: "p1", Name: "Launch", TotalTasks: 0},
	}
}

func newLoadedProjectsView(t *testing.T, backend *fakeBackend) *ProjectsView {
	t.Helper()
	v := NewProjectsView(testDeps(t, backend))
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	run(v, v.Init())
	return v
}

func TestProjects_LoadRendersCards(t *testing.T) {
	v := newLoadedProjectsView(t, &fakeBackend{projects: sampleProjects()})

	require.Len(t, v.Projects(), 2)
	out := v.View()
	require.Contains(t, out, "Website")
	require.Contains(t, out, "8 tasks · 1 done")
	require.Contains(t, out, "13%")
}

func TestProjects_CreateInsertsAtFront(t *testing.T) {
	backend := &fakeBackend{projects: sampleProjects()}
	v := newLoadedProjectsView(t, backend)

	press(v, keyRunes("n"))
	require.True(t, v.Capturing())
	require.Equal(t, models.DefaultProjectColor, v.form.value(projColor))

	typeText(v, "Mobile app")
	press(v, tea.KeyMsg{Type: tea.KeyCtrlS})

	require.False(t, v.editing)
	require.Equal(t, "Mobile app", v.Projects()[0].Name)
	require.Equal(t, models.DefaultProjectColor, v.Projects()[0].Color)
	require.Len(t, v.Projects(), 3)
}

func TestProjects_InvalidColor(t *testing.T) {
	backend := &fakeBackend{projects: sampleProjects()}
	v := newLoadedProjectsView(t, backend)

	press(v, keyRunes("n"))
	typeText(v, "Mobile app")
	v.form.set(projColor, "green")
	press(v, tea.KeyMsg{Type: tea.KeyCtrlS})

	require.True(t, v.editing)
	require.Equal(t, errorBanner(string(errInvalidColor)), v.banner)
	require.Len(t, backend.projects, 2)
}

func TestProjects_EditFromDetail(t *testing.T) {
	backend := &fakeBackend{projects: sampleProjects()}
	v := newLoadedProjectsView(t, backend)

	press(v, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, v.viewing)
	require.Contains(t, v.View(), "Progress")

	press(v, keyRunes("e"))
	require.True(t, v.editing)
	require.Equal(t, "Website", v.form.value(projName))

	v.form.set(projName, "Marketing site")
	press(v, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.Equal(t, "Marketing site", v.Projects()[0].Name)
	require.Equal(t, "p2", v.Projects()[0].ID)
}

func TestProjects_DeleteRequiresConfirmation(t *testing.T) {
	backend := &fakeBackend{projects: sampleProjects()}
	v := newLoadedProjectsView(t, backend)

	press(v, keyRunes("d"))
	require.True(t, v.confirmingDelete)
	press(v, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, v.confirmingDelete)
	require.Zero(t, backend.deletes)

	press(v, keyRunes("d"))
	press(v, keyRunes("y"))
	require.Equal(t, []string{"p1"}, []string{v.Projects()[0].ID})
	require.Len(t, v.Projects(), 1)
}

func TestProjects_DeleteFailureKeepsProject(t *testing.T) {
	backend := &fakeBackend{projects: sampleProjects(), deleteErr: &api.Error{StatusCode: 500}}
	v := newLoadedProjectsView(t, backend)

	press(v, keyRunes("d"))
	press(v, keyRunes("y"))
	require.Len(t, v.Projects(), 2)
	require.Equal(t, errorBanner(msgDeleteProject), v.banner)
}

func TestProjects_RefreshFailureKeepsLastSnapshot(t *testing.T) {
	backend := &fakeBackend{projects: sampleProjects()}
	v := newLoadedProjectsView(t, backend)

	backend.projectsErr = &api.Error{StatusCode: 500}
	press(v, keyRunes("r"))

	require.Equal(t, errorBanner(msgFetchProjects), v.banner)
	require.Len(t, v.Projects(), 2)
	out := v.View()
	require.Contains(t, out, msgFetchProjects)
	require.Contains(t, out, "Website")
}
