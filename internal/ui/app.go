// Package ui hosts the top level bubbletea model. It owns the session
// gate and routes between screens; each screen lives in ui/views.
package ui

import (
	"context"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/db"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/ui/keys"
	"github.com/tgienger/taskdeck/internal/ui/styles"
	"github.com/tgienger/taskdeck/internal/ui/views"
)

// Prefs persists small client preferences. *db.DB implements it.
type Prefs interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
}

// screen is what every view in ui/views provides
type screen interface {
	tea.Model
	MountID() uint64
	Capturing() bool
}

// mounted is implemented by every message a screen's commands send back
type mounted interface {
	MountID() uint64
}

// navHeight is the space the navigation bar takes above a screen
const navHeight = 2

const msgSessionExpired = "Your session has expired. Please sign in again."

type sessionCheckedMsg struct {
	user *models.User
}

type loggedOutMsg struct{}

type App struct {
	deps   views.Deps
	prefs  Prefs
	keys   keys.KeyMap
	styles *styles.Styles

	active  views.Screen
	current screen

	width  int
	height int
}

// NewApp creates the application. prefs may be nil.
func NewApp(deps views.Deps, prefs Prefs) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &App{
		deps:   deps,
		prefs:  prefs,
		keys:   keys.DefaultKeyMap(),
		styles: styles.NewStyles(),
	}
}

// Init asks the backend whether the stored cookies still name a session
func (a *App) Init() tea.Cmd {
	store := a.deps.Session
	return func() tea.Msg {
		return sessionCheckedMsg{user: store.Check(context.Background())}
	}
}

// Screen returns the mounted screen
func (a *App) Screen() views.Screen { return a.active }

func (a *App) setting(key string) string {
	if a.prefs == nil {
		return ""
	}
	value, err := a.prefs.GetSetting(key)
	if err != nil {
		a.deps.Logger.Warn("read setting", "key", key, "error", err)
	}
	return value
}

func (a *App) saveSetting(key, value string) {
	if a.prefs == nil {
		return
	}
	if err := a.prefs.SetSetting(key, value); err != nil {
		a.deps.Logger.Warn("save setting", "key", key, "error", err)
	}
}

// restore picks the screen to show after a successful session check
func (a *App) restore() views.Screen {
	if last, ok := views.ParseScreen(a.setting(db.SettingLastScreen)); ok && last.RequiresSession() {
		return last
	}
	return views.ScreenDashboard
}

// mount replaces the current screen. Screens that need a session fall
// back to login while logged out.
func (a *App) mount(to views.Screen) tea.Cmd {
	if to.RequiresSession() && !a.deps.Session.LoggedIn() {
		to = views.ScreenLogin
	}

	var next screen
	switch to {
	case views.ScreenLogin:
		next = views.NewLoginView(a.deps, a.setting(db.SettingLastEmail))
	case views.ScreenRegister:
		next = views.NewRegisterView(a.deps)
	case views.ScreenDashboard:
		next = views.NewDashboardView(a.deps)
	case views.ScreenTasks:
		next = views.NewTasksView(a.deps)
	case views.ScreenProjects:
		next = views.NewProjectsView(a.deps)
	case views.ScreenProfile:
		next = views.NewProfileView(a.deps)
	}

	a.active, a.current = to, next
	if to.RequiresSession() {
		a.saveSetting(db.SettingLastScreen, to.String())
	}
	a.deps.Logger.Debug("mount screen", "screen", to.String(), "mount", next.MountID())

	if a.width > 0 {
		next.Update(a.screenSize())
	}
	return next.Init()
}

func (a *App) screenSize() tea.WindowSizeMsg {
	if a.active.RequiresSession() {
		return tea.WindowSizeMsg{Width: a.width, Height: max(a.height-navHeight, 0)}
	}
	return tea.WindowSizeMsg{Width: a.width, Height: a.height}
}

func (a *App) logout() tea.Cmd {
	store := a.deps.Session
	return func() tea.Msg {
		store.Logout(context.Background())
		return loggedOutMsg{}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.current == nil {
			return a, nil
		}
		_, cmd := a.current.Update(a.screenSize())
		return a, cmd

	case sessionCheckedMsg:
		if msg.user == nil {
			return a, a.mount(views.ScreenLogin)
		}
		return a, a.mount(a.restore())

	case views.Navigate:
		return a, a.mount(msg.To)

	case views.LoggedIn:
		a.saveSetting(db.SettingLastEmail, msg.Email)
		return a, a.mount(views.ScreenDashboard)

	case views.SessionExpired:
		a.deps.Logger.Info("session expired")
		a.deps.Session.Clear()
		cmd := a.mount(views.ScreenLogin)
		if login, ok := a.current.(*views.LoginView); ok {
			login.Notice(msgSessionExpired)
		}
		return a, cmd

	case loggedOutMsg:
		return a, a.mount(views.ScreenLogin)

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.ForceQuit) {
			return a, tea.Quit
		}
		if a.current == nil {
			return a, nil
		}
		if !a.current.Capturing() {
			if cmd, ok := a.globalKey(msg); ok {
				return a, cmd
			}
		}

	case mounted:
		// Results for a screen that has since been replaced
		if a.current == nil || msg.MountID() != a.current.MountID() {
			a.deps.Logger.Debug("drop stale result", "mount", msg.MountID())
			return a, nil
		}
	}

	if a.current == nil {
		return a, nil
	}
	_, cmd := a.current.Update(msg)
	return a, cmd
}

// globalKey handles the keys that work on every screen not capturing input
func (a *App) globalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, a.keys.Quit) {
		return tea.Quit, true
	}
	if !a.active.RequiresSession() {
		return nil, false
	}

	switch {
	case key.Matches(msg, a.keys.Dashboard):
		return a.mount(views.ScreenDashboard), true
	case key.Matches(msg, a.keys.Tasks):
		return a.mount(views.ScreenTasks), true
	case key.Matches(msg, a.keys.Projects):
		return a.mount(views.ScreenProjects), true
	case key.Matches(msg, a.keys.Profile):
		return a.mount(views.ScreenProfile), true
	case key.Matches(msg, a.keys.Logout):
		return a.logout(), true
	}
	return nil, false
}

func (a *App) View() string {
	if a.current == nil {
		return a.styles.TitleMuted.Render("Checking session...")
	}
	if !a.active.RequiresSession() {
		return a.current.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.renderNav(), a.current.View())
}

func (a *App) renderNav() string {
	s := a.styles
	items := []struct {
		key    string
		label  string
		screen views.Screen
	}{
		{"1", "Dashboard", views.ScreenDashboard},
		{"2", "Tasks", views.ScreenTasks},
		{"3", "Projects", views.ScreenProjects},
		{"4", "Profile", views.ScreenProfile},
	}

	tabs := make([]string, 0, len(items))
	for _, it := range items {
		label := it.key + " " + it.label
		if it.screen == a.active {
			tabs = append(tabs, s.NavActive.Render(label))
		} else {
			tabs = append(tabs, s.NavItem.Render(label))
		}
	}

	user := ""
	if u := a.deps.Session.Current(); u != nil {
		user = s.TitleMuted.Render(strings.TrimSpace(u.FirstName+" "+u.LastName)) + "  " + s.HelpKey.Render("L") + s.HelpDesc.Render(" log out")
	}

	left := s.TitleBar.Render("taskdeck") + strings.Join(tabs, "")
	gap := max(styles.ContentWidth(a.width)-lipgloss.Width(left)-lipgloss.Width(user), 1)
	bar := left + strings.Repeat(" ", gap) + user
	return styles.CenterView(s.StatusBar.Render(bar), a.width, 1) + "\n"
}
