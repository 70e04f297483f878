package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/collection"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/stats"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

const (
	msgFetchTasks    = "Failed to fetch tasks"
	msgFetchProjects = "Failed to fetch projects"
)

// DashboardView shows the aggregate figures and the most recent tasks
type DashboardView struct {
	base

	recent   collection.Collection[models.Task]
	all      collection.Collection[models.Task]
	projects collection.Collection[models.Project]

	// Latest request token per fetch; older results are dropped
	recentToken   uint64
	allToken      uint64
	projectsToken uint64

	pending int
	loaded  bool
}

func NewDashboardView(deps Deps) *DashboardView {
	return &DashboardView{base: newBase(deps)}
}

type recentTasksMsg struct {
	result
	tasks []models.Task
	err   error
}

type allTasksMsg struct {
	result
	tasks []models.Task
	err   error
}

type dashboardProjectsMsg struct {
	result
	projects []models.Project
	err      error
}

func (v *DashboardView) Init() tea.Cmd {
	return v.load()
}

func (v *DashboardView) Capturing() bool { return false }

// load issues the three fetches at once; each completion updates only
// its own piece of state.
func (v *DashboardView) load() tea.Cmd {
	backend := v.deps.Backend
	recentMeta, allMeta, projectsMeta := v.stamp(), v.stamp(), v.stamp()
	v.recentToken, v.allToken, v.projectsToken = recentMeta.token, allMeta.token, projectsMeta.token
	v.pending = 3

	recentQuery := api.TaskQuery{Page: 1, Limit: v.deps.RecentLimit}
	return tea.Batch(
		func() tea.Msg {
			tasks, err := backend.ListTasks(context.Background(), recentQuery)
			return recentTasksMsg{result: recentMeta, tasks: tasks, err: err}
		},
		func() tea.Msg {
			tasks, err := backend.ListTasks(context.Background(), api.TaskQuery{Page: 1, Limit: statsLimit})
			return allTasksMsg{result: allMeta, tasks: tasks, err: err}
		},
		func() tea.Msg {
			projects, err := backend.ListProjects(context.Background(), statsLimit)
			return dashboardProjectsMsg{result: projectsMeta, projects: projects, err: err}
		},
	)
}

func (v *DashboardView) settle() {
	if v.pending > 0 {
		v.pending--
	}
	if v.pending == 0 {
		v.loaded = true
	}
}

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg.Width, msg.Height)
		return v, nil

	case recentTasksMsg:
		if msg.token != v.recentToken {
			return v, nil
		}
		v.settle()
		if msg.err != nil {
			return v, v.fail(msg.err, msgFetchTasks)
		}
		v.recent = v.recent.ReplaceAll(msg.tasks)
		return v, nil

	case allTasksMsg:
		if msg.token != v.allToken {
			return v, nil
		}
		v.settle()
		if msg.err != nil {
			return v, v.fail(msg.err, msgFetchTasks)
		}
		v.all = v.all.ReplaceAll(msg.tasks)
		return v, nil

	case dashboardProjectsMsg:
		if msg.token != v.projectsToken {
			return v, nil
		}
		v.settle()
		if msg.err != nil {
			return v, v.fail(msg.err, msgFetchProjects)
		}
		v.projects = v.projects.ReplaceAll(msg.projects)
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		switch {
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
		case key.Matches(msg, v.keys.Refresh):
			v.banner = banner{}
			return v, v.load()
		case key.Matches(msg, v.keys.New):
			return v, func() tea.Msg { return Navigate{To: ScreenTasks} }
		}
	}
	return v, nil
}

// Summary is the aggregate over the last fetched snapshots
func (v *DashboardView) Summary() stats.Summary {
	return stats.Summarize(v.all.Items(), v.projects.Items(), v.deps.Now())
}

var dashboardHelp = [][2]string{
	{"r", "refresh"},
	{"n", "go to tasks"},
	{"1-4", "switch screen"},
	{"L", "log out"},
	{"q", "quit"},
}

func (v *DashboardView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup(dashboardHelp)
	}
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	greeting := "Welcome back"
	if u := v.deps.Session.Current(); u != nil && u.FirstName != "" {
		greeting = "Welcome back, " + u.FirstName
	}

	parts := []string{
		s.Title.Render(greeting),
		s.TitleMuted.Render("Here's an overview of your tasks and projects"),
		"",
	}
	if b := v.banner.render(s); b != "" {
		parts = append(parts, b, "")
	}

	if !v.loaded {
		parts = append(parts, s.TitleMuted.Render("Loading..."))
	} else {
		parts = append(parts, v.renderStats(contentWidth), "", v.renderRecent(contentWidth))
	}
	parts = append(parts, v.renderHelpLine(dashboardHelp))

	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, parts...), v.width, v.height)
}

func (v *DashboardView) renderStats(width int) string {
	s := v.styles
	sum := v.Summary()
	cardWidth := clamp(width/4-2, 12, 18)

	card := func(value, label, sub string) string {
		lines := []string{s.StatValue.Render(value), s.StatLabel.Render(label)}
		if sub != "" {
			lines = append(lines, s.TitleMuted.Render(sub))
		}
		return s.Card.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		card(fmt.Sprint(sum.Total), "Total tasks", ""),
		card(fmt.Sprint(sum.Completed), "Completed", fmt.Sprintf("%d%% done", sum.CompletionRate)),
		card(fmt.Sprint(sum.Projects), "Active projects", ""),
		card(s.Overdue.Render(fmt.Sprint(sum.Overdue)), "Overdue", "Need attention"),
	)
}

func (v *DashboardView) renderRecent(width int) string {
	s := v.styles
	lines := []string{s.Title.Render("Recent tasks")}

	if v.recent.Len() == 0 {
		lines = append(lines, s.TitleMuted.Render("No tasks yet. Press n to create one."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	now := v.deps.Now()
	for _, t := range v.recent.Items() {
		lines = append(lines, v.renderTaskLine(t, now, width, false))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func truncate(s string, width int) string {
	if width <= 3 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-3 {
		r = r[:width-3]
	}
	return strings.TrimRight(string(r), " ") + "..."
}
