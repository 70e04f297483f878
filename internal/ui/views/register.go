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
	regFirstName = iota
	regLastName
	regEmail
	regPassword
	regConfirm
)

const (
	regSubmit = iota
	regLoginLink
)

// RegisterView is the account creation screen
type RegisterView struct {
	base
	form       inputForm
	submitting bool
}

func NewRegisterView(deps Deps) *RegisterView {
	return &RegisterView{
		base: newBase(deps),
		form: newInputForm(2,
			newInput("First name", 100),
			newInput("Last name", 100),
			newInput("you@example.com", 254),
			newPasswordInput("At least 6 characters"),
			newPasswordInput("Repeat password"),
		),
	}
}

type registerResultMsg struct {
	result
	user  *models.User
	email string
	err   error
}

func (v *RegisterView) Init() tea.Cmd { return nil }

func (v *RegisterView) Capturing() bool { return v.form.onInput() }

func (v *RegisterView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg.Width, msg.Height)
		return v, nil

	case registerResultMsg:
		v.submitting = false
		if msg.err != nil {
			v.banner = errorBanner(msg.err.Error())
			return v, nil
		}
		user, email := *msg.user, msg.email
		return v, func() tea.Msg { return LoggedIn{User: user, Email: email} }

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Tab):
			v.form.cycle(1)
			return v, nil
		case key.Matches(msg, v.keys.BackTab):
			v.form.cycle(-1)
			return v, nil
		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return Navigate{To: ScreenLogin} }
		case key.Matches(msg, v.keys.Enter):
			switch {
			case v.form.stop() == regLoginLink:
				return v, func() tea.Msg { return Navigate{To: ScreenLogin} }
			case v.form.onInput() && v.form.focus < regConfirm:
				v.form.cycle(1)
				return v, nil
			}
			return v, v.submit()
		}
	}

	return v, v.form.update(msg)
}

func (v *RegisterView) registration() models.Registration {
	return models.Registration{
		Email:     v.form.value(regEmail),
		Password:  v.form.raw(regPassword),
		FirstName: v.form.value(regFirstName),
		LastName:  v.form.value(regLastName),
	}
}

func (v *RegisterView) submit() tea.Cmd {
	if v.submitting {
		return nil
	}
	reg := v.registration()
	if err := validateRegistration(reg, v.form.raw(regConfirm)); err != nil {
		v.banner = errorBanner(err.Error())
		return nil
	}
	v.submitting = true
	v.banner = banner{}

	store, meta := v.deps.Session, v.stamp()
	return func() tea.Msg {
		user, err := store.Register(context.Background(), reg)
		return registerResultMsg{result: meta, user: user, email: reg.Email, err: err}
	}
}

func (v *RegisterView) View() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 40)
	halfWidth := clamp(inputWidth/2-1, 10, 20)

	submit := s.Button
	if v.form.stop() == regSubmit {
		submit = s.ButtonFocused
	}
	label := " Create account "
	if v.submitting {
		label = " Creating account... "
	}
	link := s.Link
	if v.form.stop() == regLoginLink {
		link = s.LinkFocused
	}

	field := func(i int, label string, width int) string {
		return v.renderField(label, v.form.inputs[i].View(), v.form.focus == i, width)
	}

	parts := []string{
		s.Title.Render("taskdeck"),
		s.TitleMuted.Render("Create your account"),
		"",
	}
	if b := v.banner.render(s); b != "" {
		parts = append(parts, b, "")
	}
	parts = append(parts,
		lipgloss.JoinHorizontal(lipgloss.Top,
			field(regFirstName, "First name", halfWidth),
			" ",
			field(regLastName, "Last name", halfWidth),
		),
		field(regEmail, "Email", inputWidth),
		field(regPassword, "Password", inputWidth),
		field(regConfirm, "Confirm password", inputWidth),
		"",
		submit.Render(label),
		"",
		s.TitleMuted.Render("Already registered? ")+link.Render("Sign in"),
		"",
		s.TitleMuted.Render("Tab: next • ↵: create • Esc: back"),
	)
	return v.place(lipgloss.JoinVertical(lipgloss.Center, parts...))
}
