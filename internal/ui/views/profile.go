package views

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/stats"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

const (
	msgLoadProfile    = "Failed to load profile data"
	msgProfileUpdated = "Profile updated successfully!"
)

const (
	profFirstName = iota
	profLastName
)

// ProfileView shows the account and its statistics and edits the name
type ProfileView struct {
	base

	summary     stats.Summary
	statsLoaded bool
	loading     bool

	profileToken uint64
	statsToken   uint64

	editing bool
	saving  bool
	form    inputForm
}

func NewProfileView(deps Deps) *ProfileView {
	return &ProfileView{
		base:    newBase(deps),
		loading: true,
		form: newInputForm(1,
			newInput("First name", 100),
			newInput("Last name", 100),
		),
	}
}

type profileLoadedMsg struct {
	result
	user *models.User
	err  error
}

type profileStatsMsg struct {
	result
	summary stats.Summary
	err     error
}

type profileSavedMsg struct {
	result
	err error
}

func (v *ProfileView) Init() tea.Cmd {
	return tea.Batch(v.loadProfile(), v.loadStats())
}

func (v *ProfileView) Capturing() bool { return v.editing }

// Summary returns the last computed statistics
func (v *ProfileView) Summary() stats.Summary { return v.summary }

func (v *ProfileView) loadProfile() tea.Cmd {
	store, meta := v.deps.Session, v.stamp()
	v.profileToken = meta.token
	v.loading = true
	return func() tea.Msg {
		u, err := store.Refresh(context.Background())
		return profileLoadedMsg{result: meta, user: u, err: err}
	}
}

// loadStats fetches every task and project at once and summarises them
func (v *ProfileView) loadStats() tea.Cmd {
	backend, meta, now := v.deps.Backend, v.stamp(), v.deps.Now
	v.statsToken = meta.token
	return func() tea.Msg {
		var (
			tasks    []models.Task
			projects []models.Project
		)
		g, ctx := errgroup.WithContext(context.Background())
		g.Go(func() error {
			var err error
			tasks, err = backend.ListTasks(ctx, api.TaskQuery{Page: 1, Limit: statsLimit})
			return err
		})
		g.Go(func() error {
			var err error
			projects, err = backend.ListProjects(ctx, statsLimit)
			return err
		})
		if err := g.Wait(); err != nil {
			return profileStatsMsg{result: meta, err: err}
		}
		return profileStatsMsg{result: meta, summary: stats.Summarize(tasks, projects, now())}
	}
}

func (v *ProfileView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg.Width, msg.Height)
		return v, nil

	case profileLoadedMsg:
		if msg.token != v.profileToken {
			return v, nil
		}
		v.loading = false
		if msg.err != nil {
			return v, v.fail(msg.err, msgLoadProfile)
		}
		return v, nil

	case profileStatsMsg:
		if msg.token != v.statsToken {
			return v, nil
		}
		if msg.err != nil {
			return v, v.fail(msg.err, msgLoadProfile)
		}
		v.summary = msg.summary
		v.statsLoaded = true
		return v, nil

	case profileSavedMsg:
		v.saving = false
		if msg.err != nil {
			return v, v.fail(msg.err, msg.err.Error())
		}
		v.editing = false
		v.banner = successBanner(msgProfileUpdated)
		return v, v.loadProfile()

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		switch {
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
		case key.Matches(msg, v.keys.Edit):
			return v, v.startEditing()
		case key.Matches(msg, v.keys.Refresh):
			v.banner = banner{}
			return v, tea.Batch(v.loadProfile(), v.loadStats())
		}
		return v, nil
	}

	if v.editing {
		return v, v.form.update(msg)
	}
	return v, nil
}

func (v *ProfileView) startEditing() tea.Cmd {
	u := v.deps.Session.Current()
	if u == nil {
		return nil
	}
	v.editing = true
	v.form.reset()
	v.form.set(profFirstName, u.FirstName)
	v.form.set(profLastName, u.LastName)
	return textinput.Blink
}

func (v *ProfileView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil
	case key.Matches(msg, v.keys.Save):
		return v, v.save()
	case key.Matches(msg, v.keys.Tab):
		v.form.cycle(1)
		return v, nil
	case key.Matches(msg, v.keys.BackTab):
		v.form.cycle(-1)
		return v, nil
	case key.Matches(msg, v.keys.Enter):
		if v.form.focus == profFirstName {
			v.form.cycle(1)
			return v, nil
		}
		return v, v.save()
	}
	return v, v.form.update(msg)
}

func (v *ProfileView) save() tea.Cmd {
	if v.saving {
		return nil
	}
	first, last := v.form.value(profFirstName), v.form.value(profLastName)
	if err := validateNames(first, last); err != nil {
		v.banner = errorBanner(err.Error())
		return nil
	}
	v.saving = true
	v.banner = banner{}

	store, meta := v.deps.Session, v.stamp()
	return func() tea.Msg {
		_, err := store.UpdateProfile(context.Background(), first, last)
		return profileSavedMsg{result: meta, err: err}
	}
}

var profileHelp = [][2]string{
	{"e", "edit name"},
	{"r", "refresh"},
	{"1-4", "switch screen"},
	{"L", "log out"},
	{"q", "quit"},
}

func (v *ProfileView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup(profileHelp)
	}
	s := v.styles
	u := v.deps.Session.Current()

	parts := []string{s.Title.Render("Profile"), ""}
	if b := v.banner.render(s); b != "" {
		parts = append(parts, b, "")
	}

	switch {
	case u == nil && v.loading:
		parts = append(parts, s.TitleMuted.Render("Loading..."))
	case u == nil:
		parts = append(parts, s.TitleMuted.Render("Not signed in"))
	case v.editing:
		parts = append(parts, v.renderIdentity(*u), "", v.renderForm())
	default:
		parts = append(parts, v.renderIdentity(*u), "", v.renderStats())
	}
	parts = append(parts, v.renderHelpLine([][2]string{{"e", "edit"}, {"r", "refresh"}, {"?", "help"}}))

	return v.place(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (v *ProfileView) renderIdentity(u models.User) string {
	s := v.styles
	avatar := lipgloss.NewStyle().
		Foreground(styles.Current.Background).
		Background(styles.Current.Primary).
		Bold(true).
		Padding(1, 2).
		Render(u.Initials())

	row := func(label, value string) string {
		return s.Label.Render(fmt.Sprintf("%-13s", label)) + " " + value
	}
	info := lipgloss.JoinVertical(lipgloss.Left,
		s.StatValue.Render(u.FirstName+" "+u.LastName),
		row("Email", u.Email),
		row("Member since", formatDate(u.CreatedAt)),
		row("Last updated", formatDate(u.UpdatedAt)),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, avatar, "  ", info)
}

func (v *ProfileView) renderStats() string {
	s := v.styles
	if !v.statsLoaded {
		return s.TitleMuted.Render("Loading statistics...")
	}
	card := func(value, label string) string {
		return s.Card.Width(14).Render(lipgloss.JoinVertical(lipgloss.Left,
			s.StatValue.Render(value), s.StatLabel.Render(label)))
	}
	sum := v.summary
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card(fmt.Sprint(sum.Total), "Total tasks"),
		card(fmt.Sprint(sum.Completed), "Completed"),
		card(fmt.Sprint(sum.Projects), "Projects"),
		card(fmt.Sprintf("%d%%", sum.CompletionRate), "Completion"),
	)
}

func (v *ProfileView) renderForm() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)/2-4, 12, 24)
	btnStyle := s.Button
	if v.form.stop() == 0 {
		btnStyle = s.ButtonFocused
	}
	label := " Save changes "
	if v.saving {
		label = " Saving... "
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top,
			v.renderField("First name", v.form.inputs[profFirstName].View(), v.form.focus == profFirstName, inputWidth),
			" ",
			v.renderField("Last name", v.form.inputs[profLastName].View(), v.form.focus == profLastName, inputWidth),
		),
		"",
		btnStyle.Render(label),
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)
}
