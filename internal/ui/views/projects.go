package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskdeck/internal/api"
	"github.com/tgienger/taskdeck/internal/collection"
	"github.com/tgienger/taskdeck/internal/models"
	"github.com/tgienger/taskdeck/internal/stats"
	"github.com/tgienger/taskdeck/internal/ui/styles"
)

const (
	msgCreateProject = "Failed to create project"
	msgUpdateProject = "Failed to update project"
	msgDeleteProject = "Failed to delete project"
)

type projectItem struct {
	project models.Project
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 3 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(projectItem)
	if !ok {
		return
	}
	p := i.project

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, descStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		descStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	desc := p.Description
	if desc == "" {
		desc = "No description"
	}
	summary := fmt.Sprintf("%d tasks · %d done · %s %d%%",
		p.TotalTasks, p.CompletedTasks, progressBar(stats.Progress(p), 10), stats.Progress(p))

	fmt.Fprintf(w, "%s\n%s\n%s",
		titleStyle.Render(styles.Swatch(p.DisplayColor())+" "+p.Name),
		descStyle.Render(truncate(desc, width-4)),
		descStyle.Render(summary),
	)
}

func progressBar(pct, width int) string {
	filled := clamp(pct*width/100, 0, width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

const (
	projName = iota
	projDescription
	projColor
)

// ProjectsView lists projects as cards and edits them
type ProjectsView struct {
	base

	projects collection.Collection[models.Project]
	list     list.Model
	delegate *projectDelegate

	token   uint64
	loading bool

	viewing          bool
	confirmingDelete bool
	deleteTarget     models.Project

	editing   bool
	editingID string
	form      inputForm
	saving    bool
}

func NewProjectsView(deps Deps) *ProjectsView {
	b := newBase(deps)

	delegate := &projectDelegate{styles: b.styles, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = b.styles.Title
	l.SetShowHelp(false)
	// Quitting belongs to the app
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)

	colour := newInput(models.DefaultProjectColor, 7)

	return &ProjectsView{
		base:     b,
		list:     l,
		delegate: delegate,
		loading:  true,
		form: newInputForm(1,
			newInput("Project name", 100),
			newInput("Description (optional)", 500),
			colour,
		),
	}
}

type projectsLoadedMsg struct {
	result
	projects []models.Project
	err      error
}

type projectCreatedMsg struct {
	result
	project models.Project
	err     error
}

type projectUpdatedMsg struct {
	result
	project models.Project
	err     error
}

type projectDeletedMsg struct {
	result
	id  string
	err error
}

func (v *ProjectsView) Init() tea.Cmd {
	return v.loadProjects()
}

func (v *ProjectsView) Capturing() bool {
	return v.editing || v.confirmingDelete || v.list.FilterState() == list.Filtering
}

// Projects returns the current snapshot
func (v *ProjectsView) Projects() []models.Project { return v.projects.Items() }

func (v *ProjectsView) loadProjects() tea.Cmd {
	backend, meta := v.deps.Backend, v.stamp()
	v.token = meta.token
	v.loading = true
	return func() tea.Msg {
		projects, err := backend.ListProjects(context.Background(), statsLimit)
		return projectsLoadedMsg{result: meta, projects: projects, err: err}
	}
}

// syncList rebuilds the list items from the collection
func (v *ProjectsView) syncList() tea.Cmd {
	items := make([]list.Item, v.projects.Len())
	for i, p := range v.projects.Items() {
		items[i] = projectItem{project: p}
	}
	return v.list.SetItems(items)
}

func (v *ProjectsView) selected() (models.Project, bool) {
	item, ok := v.list.SelectedItem().(projectItem)
	if !ok {
		return models.Project{}, false
	}
	return item.project, true
}

func (v *ProjectsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg.Width, msg.Height)
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-6)
		return v, nil

	case projectsLoadedMsg:
		if msg.token != v.token {
			return v, nil
		}
		v.loading = false
		if msg.err != nil {
			return v, v.fail(msg.err, msgFetchProjects)
		}
		v.projects = v.projects.ReplaceAll(msg.projects)
		return v, v.syncList()

	case projectCreatedMsg:
		v.saving = false
		if msg.err != nil {
			return v, v.fail(msg.err, api.Message(msg.err, msgCreateProject))
		}
		v.projects = v.projects.InsertFront(msg.project)
		v.editing = false
		v.banner = banner{}
		cmd := v.syncList()
		v.list.Select(0)
		return v, cmd

	case projectUpdatedMsg:
		v.saving = false
		if msg.err != nil {
			return v, v.fail(msg.err, api.Message(msg.err, msgUpdateProject))
		}
		v.projects = v.projects.ReplaceByID(msg.project.ID, msg.project)
		v.editing = false
		v.banner = banner{}
		return v, v.syncList()

	case projectDeletedMsg:
		if msg.err != nil {
			return v, v.fail(msg.err, api.Message(msg.err, msgDeleteProject))
		}
		v.projects = v.projects.RemoveByID(msg.id)
		v.banner = banner{}
		return v, v.syncList()

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}
		if v.editing {
			return v.updateEditing(msg)
		}
		if v.viewing {
			return v.updateViewing(msg)
		}
		if v.list.FilterState() == list.Filtering {
			break
		}

		switch {
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.New):
			return v, v.startForm(nil)
		case key.Matches(msg, v.keys.Enter):
			if _, ok := v.selected(); ok {
				v.viewing = true
			}
			return v, nil
		case key.Matches(msg, v.keys.Edit):
			if p, ok := v.selected(); ok {
				return v, v.startForm(&p)
			}
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			if p, ok := v.selected(); ok {
				v.confirmingDelete = true
				v.deleteTarget = p
			}
			return v, nil
		case key.Matches(msg, v.keys.Refresh):
			v.banner = banner{}
			return v, v.loadProjects()
		}

	default:
		if v.editing {
			return v, v.form.update(msg)
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *ProjectsView) updateViewing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
		v.viewing = false
	case key.Matches(msg, v.keys.Edit):
		v.viewing = false
		if p, ok := v.selected(); ok {
			return v, v.startForm(&p)
		}
	case key.Matches(msg, v.keys.Delete):
		if p, ok := v.selected(); ok {
			v.viewing = false
			v.confirmingDelete = true
			v.deleteTarget = p
		}
	}
	return v, nil
}

func (v *ProjectsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		backend, meta, id := v.deps.Backend, v.stamp(), v.deleteTarget.ID
		return v, func() tea.Msg {
			err := backend.DeleteProject(context.Background(), id)
			return projectDeletedMsg{result: meta, id: id, err: err}
		}
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *ProjectsView) startForm(p *models.Project) tea.Cmd {
	v.editing = true
	v.saving = false
	v.editingID = ""
	v.form.reset()
	v.form.set(projColor, models.DefaultProjectColor)
	if p != nil {
		v.editingID = p.ID
		v.form.set(projName, p.Name)
		v.form.set(projDescription, p.Description)
		v.form.set(projColor, p.DisplayColor())
	}
	return textinput.Blink
}

func (v *ProjectsView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.editing = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveProject()

	case key.Matches(msg, v.keys.BackTab):
		v.form.cycle(-1)
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.form.cycle(1)
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.form.onInput() {
			v.form.cycle(1)
			return v, nil
		}
		return v, v.saveProject()
	}

	return v, v.form.update(msg)
}

func (v *ProjectsView) saveProject() tea.Cmd {
	if v.saving {
		return nil
	}
	in := models.ProjectInput{
		Name:        v.form.value(projName),
		Description: v.form.value(projDescription),
		Color:       v.form.value(projColor),
	}
	if err := validateProject(in); err != nil {
		v.banner = errorBanner(err.Error())
		return nil
	}
	if in.Color == "" {
		in.Color = models.DefaultProjectColor
	}
	v.saving = true

	backend, meta, id := v.deps.Backend, v.stamp(), v.editingID
	if id == "" {
		return func() tea.Msg {
			p, err := backend.CreateProject(context.Background(), in)
			return projectCreatedMsg{result: meta, project: p, err: err}
		}
	}
	return func() tea.Msg {
		p, err := backend.UpdateProject(context.Background(), id, in)
		return projectUpdatedMsg{result: meta, project: p, err: err}
	}
}

var projectsHelp = [][2]string{
	{"↑/↓", "navigate"},
	{"↵", "details"},
	{"n", "new project"},
	{"e", "edit"},
	{"d", "delete"},
	{"/", "filter by name"},
	{"r", "refresh"},
	{"q", "quit"},
}

// View renders the view
func (v *ProjectsView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup(projectsHelp)
	}
	if v.confirmingDelete {
		return v.renderDeleteConfirm("project", v.deleteTarget.Name)
	}
	if v.editing {
		return v.renderForm()
	}
	if v.viewing {
		return v.renderDetail()
	}

	s := v.styles
	var parts []string
	if b := v.banner.render(s); b != "" {
		parts = append(parts, b)
	}

	switch {
	case v.loading && v.projects.Len() == 0:
		parts = append(parts, s.TitleMuted.Render("Loading..."))
	case v.projects.Len() == 0:
		return v.renderEmpty(parts)
	default:
		parts = append(parts, v.list.View())
	}
	parts = append(parts, v.renderHelpLine([][2]string{{"↵", "details"}, {"n", "new"}, {"e", "edit"}, {"d", "delete"}, {"?", "help"}}))

	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, parts...), v.width, v.height)
}

func (v *ProjectsView) renderEmpty(parts []string) string {
	s := v.styles
	parts = append(parts,
		s.Title.Render("No Projects"),
		"",
		s.TitleMuted.Render("Press 'n' to create your first project"),
		"",
		s.ButtonPrimary.Render(" New Project "),
	)
	return v.place(lipgloss.JoinVertical(lipgloss.Center, parts...))
}

func (v *ProjectsView) renderDetail() string {
	s := v.styles
	p, ok := v.selected()
	if !ok {
		return v.place(s.TitleMuted.Render("No project selected"))
	}
	contentWidth := styles.ContentWidth(v.width)

	row := func(label, value string) string {
		return s.Label.Render(fmt.Sprintf("%-10s", label)) + " " + value
	}
	desc := p.Description
	if desc == "" {
		desc = s.TitleMuted.Render("No description")
	}
	progress := stats.Progress(p)

	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.Swatch(p.DisplayColor())+" "+s.Title.Render(p.Name),
		"",
		lipgloss.NewStyle().Width(clamp(contentWidth-8, 20, 70)).Render(desc),
		"",
		row("Tasks", fmt.Sprint(p.TotalTasks)),
		row("Completed", fmt.Sprint(p.CompletedTasks)),
		row("Progress", fmt.Sprintf("%s %d%%", progressBar(progress, 20), progress)),
		row("Color", p.DisplayColor()),
		row("Created", formatDate(p.CreatedAt)),
		row("Updated", formatDate(p.UpdatedAt)),
		"",
		s.TitleMuted.Render("e: edit • d: delete • Esc: back"),
	)
	return v.place(s.Panel.Render(content))
}

func (v *ProjectsView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	formTitle := "New Project"
	if v.editingID != "" {
		formTitle = "Edit Project"
	}
	btnStyle := s.Button
	if v.form.stop() == 0 {
		btnStyle = s.ButtonFocused
	}
	label := " Save "
	if v.saving {
		label = " Saving... "
	}

	// Dynamic input width based on content width
	inputWidth := clamp(contentWidth-6, 20, 50)

	colour := v.form.value(projColor)
	swatch := ""
	if colorPattern.MatchString(colour) {
		swatch = " " + styles.Swatch(colour)
	}

	parts := []string{s.Title.Render(formTitle), ""}
	if b := v.banner.render(s); b != "" {
		parts = append(parts, b, "")
	}
	parts = append(parts,
		v.renderField("Name", v.form.inputs[projName].View(), v.form.focus == projName, inputWidth),
		v.renderField("Description", v.form.inputs[projDescription].View(), v.form.focus == projDescription, inputWidth),
		v.renderField("Color"+swatch, v.form.inputs[projColor].View(), v.form.focus == projColor, 12),
		"",
		btnStyle.Render(label),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)
	return v.place(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
