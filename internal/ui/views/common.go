package views

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/session"
	"github.com/tgienger/taskdeck/internal/stats"
	"github.com/tgienger/taskdeck/internal/ui/keys"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

// statsLimit is the page size used when a screen needs every task or
// project to compute aggregates.
const statsLimit = 1000

// TaskService is the task half of the backend API
type TaskService interface {
	ListTasks(ctx context.Context, q api.TaskQuery) ([]models.Task, error)
	CreateTask(ctx context.Context, in models.TaskInput) (models.Task, error)
	UpdateTask(ctx context.Context, id string, in models.TaskInput) (models.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status models.TaskStatus) error
	DeleteTask(ctx context.Context, id string) error
}

// ProjectService is the project half of the backend API
type ProjectService interface {
	ListProjects(ctx context.Context, limit int) ([]models.Project, error)
	CreateProject(ctx context.Context, in models.ProjectInput) (models.Project, error)
	UpdateProject(ctx context.Context, id string, in models.ProjectInput) (models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// Backend is everything the screens need from the API. *api.Client
// implements it.
type Backend interface {
	TaskService
	ProjectService
}

// Deps is what every screen is constructed with
type Deps struct {
	Session     *session.Store
	Backend     Backend
	Logger      *slog.Logger
	PageSize    int
	RecentLimit int
	Now         func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.PageSize <= 0 {
		d.PageSize = 10
	}
	if d.RecentLimit <= 0 {
		d.RecentLimit = 5
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

var requestSeq atomic.Uint64

// nextToken returns a process-unique, increasing id. Screens use it both
// as their mount id and to stamp fetches.
func nextToken() uint64 {
	return requestSeq.Add(1)
}

// result is embedded in every message a screen's commands send back to it
type result struct {
	mount uint64
	token uint64
}

// MountID names the screen instance the message belongs to
func (r result) MountID() uint64 { return r.mount }

// Screen identifies a top level screen
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenDashboard
	ScreenTasks
	ScreenProjects
	ScreenProfile
)

var screenNames = map[Screen]string{
	ScreenLogin:     "login",
	ScreenRegister:  "register",
	ScreenDashboard: "dashboard",
	ScreenTasks:     "tasks",
	ScreenProjects:  "projects",
	ScreenProfile:   "profile",
}

func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

// RequiresSession reports whether the screen is only shown when logged in
func (s Screen) RequiresSession() bool {
	return s != ScreenLogin && s != ScreenRegister
}

// ParseScreen is the inverse of Screen.String
func ParseScreen(name string) (Screen, bool) {
	for s, n := range screenNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// Navigate asks the app to mount another screen
type Navigate struct {
	To Screen
}

// LoggedIn is sent after a successful login or registration
type LoggedIn struct {
	User  models.User
	Email string
}

// SessionExpired is sent when the backend rejected the session cookies
type SessionExpired struct{}

type bannerKind int

const (
	bannerNone bannerKind = iota
	bannerError
	bannerSuccess
)

// banner is the message line shown above a screen's content. The last
// good data stays visible beneath it.
type banner struct {
	kind bannerKind
	text string
}

func errorBanner(text string) banner   { return banner{kind: bannerError, text: text} }
func successBanner(text string) banner { return banner{kind: bannerSuccess, text: text} }

func (b banner) render(s *styles.Styles) string {
	switch b.kind {
	case bannerError:
		return s.Error.Render(b.text)
	case bannerSuccess:
		return s.Success.Render(b.text)
	}
	return ""
}

// base holds the state shared by every screen
type base struct {
	deps   Deps
	styles *styles.Styles
	keys   keys.KeyMap
	mount  uint64

	width  int
	height int

	banner banner

	// Help popup (shown with ?)
	showHelpPopup bool
}

func newBase(deps Deps) base {
	return base{
		deps:   deps.withDefaults(),
		styles: styles.NewStyles(),
		keys:   keys.DefaultKeyMap(),
		mount:  nextToken(),
	}
}

func (b *base) MountID() uint64 { return b.mount }

func (b *base) resize(width, height int) {
	b.width = width
	b.height = height
}

func (b *base) stamp() result {
	return result{mount: b.mount, token: nextToken()}
}

// fail reports a backend error. A rejected session is escalated to the
// app; anything else sets the banner and keeps the current data.
func (b *base) fail(err error, message string) tea.Cmd {
	if api.IsUnauthorized(err) {
		return func() tea.Msg { return SessionExpired{} }
	}
	b.deps.Logger.Debug("request failed", "mount", b.mount, "error", err)
	b.banner = errorBanner(message)
	return nil
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

func (b *base) place(content string) string {
	contentWidth := styles.ContentWidth(b.width)
	centered := lipgloss.Place(contentWidth, b.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, b.width, b.height)
}

func (b *base) renderHelpPopup(items [][2]string) string {
	s := b.styles
	lines := []string{s.Title.Render("Keyboard Shortcuts"), ""}
	for _, item := range items {
		lines = append(lines, s.HelpKey.Render(fmt.Sprintf("%-7s", item[0]))+item[1])
	}
	lines = append(lines, "", s.TitleMuted.Render("Press any key to close"))
	return b.place(s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (b *base) renderHelpLine(items [][2]string) string {
	contentWidth := styles.ContentWidth(b.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return b.styles.Help.Render(b.styles.HelpKey.Render("?") + " help")
	}
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, b.styles.HelpKey.Render(item[0])+" "+item[1])
	}
	return b.styles.Help.Render(strings.Join(parts, " • "))
}

func (b *base) renderDeleteConfirm(kind, name string) string {
	s := b.styles
	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(styles.Current.Error).Render("Delete "+kind+"?"),
		"",
		s.TitleMuted.Render(fmt.Sprintf("Are you sure you want to delete %q?", name)),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)
	return b.place(content)
}

func (b *base) renderField(label, view string, focused bool, width int) string {
	style := b.styles.Input
	if focused {
		style = b.styles.InputFocused
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		b.styles.Label.Render(label),
		style.Width(width).Render(view),
	)
}

// renderTaskLine renders a task as one list row: status, title, project,
// priority and due date, with overdue tasks flagged.
func (b *base) renderTaskLine(t models.Task, now time.Time, width int, selected bool) string {
	s := b.styles

	status := lipgloss.NewStyle().Foreground(styles.StatusColor(string(t.Status))).Render(statusIcon(t.Status))
	priority := lipgloss.NewStyle().Foreground(styles.PriorityColor(string(t.DisplayPriority()))).Render(string(t.DisplayPriority()))

	var meta []string
	if t.Project != nil {
		meta = append(meta, styles.Swatch(t.Project.DisplayColor())+" "+t.Project.Name)
	}
	meta = append(meta, priority)
	if t.DueDate != nil {
		due := "due " + t.DueDate.String()
		if stats.IsOverdue(t, now) {
			due = s.Overdue.Render("overdue " + t.DueDate.String())
		}
		meta = append(meta, due)
	}
	suffix := "  " + s.TitleMuted.Render(strings.Join(meta, " · "))

	title := truncate(t.Title, clamp(width-lipgloss.Width(suffix)-8, 10, width))
	if selected {
		return s.ListSelected.Width(width).Render(status + " " + title + suffix)
	}
	return s.ListItem.Render(status + " " + s.TaskTitle.Render(title) + suffix)
}

func statusIcon(st models.TaskStatus) string {
	switch st {
	case models.StatusDone:
		return "✓"
	case models.StatusInProgress:
		return "◐"
	}
	return "○"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format("January 2, 2006")
}
