package views

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

const (
	loginEmail = iota
	loginPassword
)

// Extra focus stops after the inputs
const (
	loginSubmit = iota
	loginRegisterLink
)

// LoginView is the sign-in screen
type LoginView struct {
	base
	form       inputForm
	submitting bool
}

// NewLoginView prefills the email of the last successful login
func NewLoginView(deps Deps, lastEmail string) *LoginView {
	v := &LoginView{
		base: newBase(deps),
		form: newInputForm(2,
			newInput("you@example.com", 254),
			newPasswordInput("Password"),
		),
	}
	if lastEmail != "" {
		v.form.set(loginEmail, lastEmail)
		v.form.setFocus(loginPassword)
	}
	return v
}

// Notice shows a message above the form, e.g. why the user was signed out
func (v *LoginView) Notice(text string) {
	v.banner = errorBanner(text)
}

type loginResultMsg struct {
	result
	user  *models.User
	email string
	err   error
}

func (v *LoginView) Init() tea.Cmd {
	return nil
}

// Capturing is true while keystrokes belong to a text input
func (v *LoginView) Capturing() bool {
	return v.form.onInput()
}

func (v *LoginView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg.Width, msg.Height)
		return v, nil

	case loginResultMsg:
		v.submitting = false
		if msg.err != nil {
			v.banner = errorBanner(msg.err.Error())
			return v, nil
		}
		user, email := *msg.user, msg.email
		return v, func() tea.Msg { return LoggedIn{User: user, Email: email} }

	case tea.KeyMsg:
		return v.updateKeys(msg)
	}

	return v, v.form.update(msg)
}

func (v *LoginView) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Tab), key.Matches(msg, v.keys.Down) && !v.form.onInput():
		v.form.cycle(1)
		return v, nil

	case key.Matches(msg, v.keys.BackTab), key.Matches(msg, v.keys.Up) && !v.form.onInput():
		v.form.cycle(-1)
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch {
		case v.form.focus == loginEmail:
			v.form.cycle(1)
			return v, nil
		case v.form.stop() == loginRegisterLink:
			return v, func() tea.Msg { return Navigate{To: ScreenRegister} }
		}
		return v, v.submit()
	}

	return v, v.form.update(msg)
}

func (v *LoginView) submit() tea.Cmd {
	if v.submitting {
		return nil
	}
	email, password := v.form.value(loginEmail), v.form.raw(loginPassword)
	if err := validateLogin(email, password); err != nil {
		v.banner = errorBanner(err.Error())
		return nil
	}
	v.submitting = true
	v.banner = banner{}

	store, meta := v.deps.Session, v.stamp()
	return func() tea.Msg {
		user, err := store.Login(context.Background(), email, password)
		return loginResultMsg{result: meta, user: user, email: email, err: err}
	}
}

func (v *LoginView) View() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 40)

	submit := s.Button
	if v.form.stop() == loginSubmit {
		submit = s.ButtonFocused
	}
	label := " Sign in "
	if v.submitting {
		label = " Signing in... "
	}
	link := s.Link
	if v.form.stop() == loginRegisterLink {
		link = s.LinkFocused
	}

	parts := []string{
		s.Title.Render("taskdeck"),
		s.TitleMuted.Render("Sign in to your account"),
		"",
	}
	if b := v.banner.render(s); b != "" {
		parts = append(parts, b, "")
	}
	parts = append(parts,
		v.renderField("Email", v.form.inputs[loginEmail].View(), v.form.focus == loginEmail, inputWidth),
		v.renderField("Password", v.form.inputs[loginPassword].View(), v.form.focus == loginPassword, inputWidth),
		"",
		submit.Render(label),
		"",
		s.TitleMuted.Render("No account? ")+link.Render("Create one"),
		"",
		s.TitleMuted.Render("Tab: next • ↵: sign in • Ctrl+C: quit"),
	)
	return v.place(lipgloss.JoinVertical(lipgloss.Center, parts...))
}
