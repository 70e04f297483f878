package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
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
	msgCreateTask = "Failed to create task"
	msgUpdateTask = "Failed to update task"
	msgDeleteTask = "Failed to delete task"
	msgTaskStatus = "Failed to update task status"
)

// projectOptionsLimit bounds the projects offered in the filter and form
const projectOptionsLimit = 100

// taskMode is what the tasks screen is currently showing
type taskMode int

const (
	taskModeList taskMode = iota
	taskModeSearch
	taskModeFilter
	taskModeDetail
	taskModeForm
	taskModeConfirmDelete
)

// Task form focus stops
type taskField int

const (
	fieldTitle taskField = iota
	fieldDescription
	fieldPriority
	fieldStatus
	fieldDueDate
	fieldProject
	fieldSave
)

var (
	createStops = []taskField{fieldTitle, fieldDescription, fieldPriority, fieldDueDate, fieldProject, fieldSave}
	editStops   = []taskField{fieldTitle, fieldDescription, fieldPriority, fieldStatus, fieldDueDate, fieldProject, fieldSave}
)

// Filter panel rows
const (
	filterRowStatus = iota
	filterRowPriority
	filterRowProject
	filterRows
)

// TasksView lists, filters and edits tasks
type TasksView struct {
	base
	mode taskMode

	tasks    collection.Collection[models.Task]
	projects []models.Project

	filter  models.TaskFilter
	page    int
	hasNext bool
	loading bool

	tasksToken    uint64
	projectsToken uint64

	cursor  int
	scrollY int

	deleteTarget models.Task

	searchInput textinput.Model

	// Filter panel
	filterRow      int
	statusFilter   choice
	priorityFilter choice
	projectFilter  choice

	// Create/edit form
	editingID   string
	formStop    int
	editTitle   textinput.Model
	editDesc    textarea.Model
	editDue     textinput.Model
	editPrio    choice
	editStatus  choice
	editProject choice
	saving      bool
}

func NewTasksView(deps Deps) *TasksView {
	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	return &TasksView{
		base:        newBase(deps),
		page:        1,
		loading:     true,
		searchInput: search,
		editTitle:   newInput("Task title", 200),
		editDesc:    editDesc,
		editDue:     newInput("YYYY-MM-DD", 10),
		editPrio:    priorityChoice(""),
		editStatus:  statusChoice(""),
	}
}

func statusChoice(all string) choice {
	c := choice{}
	if all != "" {
		c.values, c.labels = []string{""}, []string{all}
	}
	for _, st := range models.TaskStatuses {
		c.values = append(c.values, string(st))
		c.labels = append(c.labels, st.Label())
	}
	return c
}

func priorityChoice(all string) choice {
	c := choice{}
	if all != "" {
		c.values, c.labels = []string{""}, []string{all}
	}
	for _, p := range models.TaskPriorities {
		c.values = append(c.values, string(p))
		c.labels = append(c.labels, strings.ToUpper(string(p[:1]))+string(p[1:]))
	}
	return c
}

func projectChoice(none string, projects []models.Project) choice {
	c := choice{values: []string{""}, labels: []string{none}}
	for _, p := range projects {
		c.values = append(c.values, p.ID)
		c.labels = append(c.labels, p.Name)
	}
	return c
}

type tasksLoadedMsg struct {
	result
	tasks []models.Task
	err   error
}

type taskProjectsMsg struct {
	result
	projects []models.Project
	err      error
}

type taskCreatedMsg struct {
	result
	task models.Task
	err  error
}

type taskUpdatedMsg struct {
	result
	task models.Task
	err  error
}

type taskStatusMsg struct {
	result
	id     string
	status models.TaskStatus
	err    error
}

type taskDeletedMsg struct {
	result
	id  string
	err error
}

func (v *TasksView) Init() tea.Cmd {
	return tea.Batch(v.loadTasks(), v.loadProjects())
}

// Capturing is true while keys go to an input, a popup or the form
func (v *TasksView) Capturing() bool {
	return v.mode != taskModeList && v.mode != taskModeDetail
}

// Tasks returns the current snapshot
func (v *TasksView) Tasks() []models.Task { return v.tasks.Items() }

func (v *TasksView) loadTasks() tea.Cmd {
	backend, meta := v.deps.Backend, v.stamp()
	v.tasksToken = meta.token
	v.loading = true

	q := api.TaskQuery{Filter: v.filter, Page: v.page, Limit: v.deps.PageSize}
	return func() tea.Msg {
		tasks, err := backend.ListTasks(context.Background(), q)
		return tasksLoadedMsg{result: meta, tasks: tasks, err: err}
	}
}

func (v *TasksView) loadProjects() tea.Cmd {
	backend, meta := v.deps.Backend, v.stamp()
	v.projectsToken = meta.token
	return func() tea.Msg {
		projects, err := backend.ListProjects(context.Background(), projectOptionsLimit)
		return taskProjectsMsg{result: meta, projects: projects, err: err}
	}
}

// applyFilter starts over from the first page
func (v *TasksView) applyFilter(f models.TaskFilter) tea.Cmd {
	v.filter = f
	v.page = 1
	v.cursor, v.scrollY = 0, 0
	return v.loadTasks()
}

func (v *TasksView) selected() (models.Task, bool) {
	if v.tasks.Len() == 0 {
		return models.Task{}, false
	}
	return v.tasks.At(clamp(v.cursor, 0, v.tasks.Len()-1)), true
}

func (v *TasksView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.resize(msg.Width, msg.Height)
		v.editDesc.SetWidth(clamp(styles.ContentWidth(v.width)-10, 20, 50))
		return v, nil

	case tasksLoadedMsg:
		if msg.token != v.tasksToken {
			return v, nil
		}
		v.loading = false
		if msg.err != nil {
			return v, v.fail(msg.err, msgFetchTasks)
		}
		v.tasks = v.tasks.ReplaceAll(msg.tasks)
		v.hasNext = len(msg.tasks) == v.deps.PageSize
		v.cursor = clamp(v.cursor, 0, max(v.tasks.Len()-1, 0))
		v.ensureVisible()
		return v, nil

	case taskProjectsMsg:
		if msg.token != v.projectsToken {
			return v, nil
		}
		if msg.err != nil {
			// Only the project pickers depend on this list
			v.deps.Logger.Debug("project options unavailable", "error", msg.err)
			if api.IsUnauthorized(msg.err) {
				return v, func() tea.Msg { return SessionExpired{} }
			}
			return v, nil
		}
		v.projects = msg.projects
		return v, nil

	case taskCreatedMsg:
		v.saving = false
		if msg.err != nil {
			return v, v.fail(msg.err, api.Message(msg.err, msgCreateTask))
		}
		v.tasks = v.tasks.InsertFront(msg.task)
		v.cursor, v.scrollY = 0, 0
		v.mode = taskModeList
		v.banner = banner{}
		return v, nil

	case taskUpdatedMsg:
		v.saving = false
		if msg.err != nil {
			return v, v.fail(msg.err, api.Message(msg.err, msgUpdateTask))
		}
		v.tasks = v.tasks.ReplaceByID(msg.task.ID, msg.task)
		v.mode = taskModeList
		v.banner = banner{}
		return v, nil

	case taskStatusMsg:
		if msg.err != nil {
			return v, v.fail(msg.err, api.Message(msg.err, msgTaskStatus))
		}
		status := msg.status
		v.tasks = v.tasks.PatchByID(msg.id, func(t models.Task) models.Task {
			t.Status = status
			return t
		})
		v.banner = banner{}
		return v, nil

	case taskDeletedMsg:
		if msg.err != nil {
			return v, v.fail(msg.err, api.Message(msg.err, msgDeleteTask))
		}
		v.tasks = v.tasks.RemoveByID(msg.id)
		v.cursor = clamp(v.cursor, 0, max(v.tasks.Len()-1, 0))
		v.ensureVisible()
		v.banner = banner{}
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}
		switch v.mode {
		case taskModeSearch:
			return v.updateSearch(msg)
		case taskModeFilter:
			return v.updateFilterPanel(msg)
		case taskModeDetail:
			return v.updateDetail(msg)
		case taskModeForm:
			return v.updateForm(msg)
		case taskModeConfirmDelete:
			return v.updateConfirmDelete(msg)
		}
		return v.updateList(msg)
	}

	if v.mode == taskModeForm {
		return v, v.updateFormInput(msg)
	}
	if v.mode == taskModeSearch {
		var cmd tea.Cmd
		v.searchInput, cmd = v.searchInput.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *TasksView) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Down):
		if v.cursor < v.tasks.Len()-1 {
			v.cursor++
			v.ensureVisible()
		}

	case key.Matches(msg, v.keys.Enter):
		if _, ok := v.selected(); ok {
			v.mode = taskModeDetail
		}

	case key.Matches(msg, v.keys.New):
		return v, v.startForm(nil)

	case key.Matches(msg, v.keys.Edit):
		if t, ok := v.selected(); ok {
			return v, v.startForm(&t)
		}

	case key.Matches(msg, v.keys.Delete):
		v.confirmDelete()

	case key.Matches(msg, v.keys.Status):
		return v, v.cycleStatus()

	case key.Matches(msg, v.keys.Search):
		v.mode = taskModeSearch
		v.searchInput.SetValue(v.filter.Search)
		v.searchInput.CursorEnd()
		v.searchInput.Focus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Filter):
		v.openFilterPanel()

	case key.Matches(msg, v.keys.ClearFilters):
		if !v.filter.IsZero() {
			return v, v.applyFilter(models.TaskFilter{})
		}

	case key.Matches(msg, v.keys.NextPage):
		if v.hasNext && !v.loading {
			v.page++
			v.cursor, v.scrollY = 0, 0
			return v, v.loadTasks()
		}

	case key.Matches(msg, v.keys.PrevPage):
		if v.page > 1 && !v.loading {
			v.page--
			v.cursor, v.scrollY = 0, 0
			return v, v.loadTasks()
		}

	case key.Matches(msg, v.keys.Refresh):
		v.banner = banner{}
		return v, tea.Batch(v.loadTasks(), v.loadProjects())
	}
	return v, nil
}

func (v *TasksView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.searchInput.Blur()
		v.mode = taskModeList
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		v.searchInput.Blur()
		v.mode = taskModeList
		f := v.filter
		f.Search = strings.TrimSpace(v.searchInput.Value())
		if f == v.filter {
			return v, nil
		}
		return v, v.applyFilter(f)
	}

	var cmd tea.Cmd
	v.searchInput, cmd = v.searchInput.Update(msg)
	return v, cmd
}

func (v *TasksView) openFilterPanel() {
	v.mode = taskModeFilter
	v.filterRow = filterRowStatus
	v.statusFilter = statusChoice("All statuses")
	v.statusFilter.selectValue(string(v.filter.Status))
	v.priorityFilter = priorityChoice("All priorities")
	v.priorityFilter.selectValue(string(v.filter.Priority))
	v.projectFilter = projectChoice("All projects", v.projects)
	v.projectFilter.selectValue(v.filter.ProjectID)
}

func (v *TasksView) filterChoice() *choice {
	switch v.filterRow {
	case filterRowPriority:
		return &v.priorityFilter
	case filterRowProject:
		return &v.projectFilter
	}
	return &v.statusFilter
}

func (v *TasksView) updateFilterPanel(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = taskModeList

	case key.Matches(msg, v.keys.Up), key.Matches(msg, v.keys.BackTab):
		v.filterRow = (v.filterRow + filterRows - 1) % filterRows

	case key.Matches(msg, v.keys.Down), key.Matches(msg, v.keys.Tab):
		v.filterRow = (v.filterRow + 1) % filterRows

	case msg.String() == "left" || msg.String() == "h":
		v.filterChoice().prev()

	case msg.String() == "right" || msg.String() == "l" || msg.String() == " ":
		v.filterChoice().next()

	case key.Matches(msg, v.keys.Enter):
		v.mode = taskModeList
		f := models.TaskFilter{
			Status:    models.TaskStatus(v.statusFilter.value()),
			Priority:  models.TaskPriority(v.priorityFilter.value()),
			ProjectID: v.projectFilter.value(),
			Search:    v.filter.Search,
		}
		if f == v.filter {
			return v, nil
		}
		return v, v.applyFilter(f)
	}
	return v, nil
}

func (v *TasksView) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
		v.mode = taskModeList
	case key.Matches(msg, v.keys.Edit):
		if t, ok := v.selected(); ok {
			return v, v.startForm(&t)
		}
	case key.Matches(msg, v.keys.Delete):
		v.confirmDelete()
	case key.Matches(msg, v.keys.Status):
		return v, v.cycleStatus()
	}
	return v, nil
}

// confirmDelete opens the confirmation for the selected task. The target
// is fixed here so a fetch landing meanwhile cannot change it.
func (v *TasksView) confirmDelete() {
	t, ok := v.selected()
	if !ok {
		return
	}
	v.deleteTarget = t
	v.mode = taskModeConfirmDelete
}

func (v *TasksView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.mode = taskModeList
		backend, meta, id := v.deps.Backend, v.stamp(), v.deleteTarget.ID
		return v, func() tea.Msg {
			err := backend.DeleteTask(context.Background(), id)
			return taskDeletedMsg{result: meta, id: id, err: err}
		}
	case "n", "N", "esc":
		v.mode = taskModeList
	}
	return v, nil
}

// cycleStatus moves the selected task to its next status through the
// narrow status endpoint.
func (v *TasksView) cycleStatus() tea.Cmd {
	t, ok := v.selected()
	if !ok {
		return nil
	}
	backend, meta := v.deps.Backend, v.stamp()
	id, next := t.ID, t.Status.Next()
	return func() tea.Msg {
		err := backend.UpdateTaskStatus(context.Background(), id, next)
		return taskStatusMsg{result: meta, id: id, status: next, err: err}
	}
}

func (v *TasksView) stops() []taskField {
	if v.editingID == "" {
		return createStops
	}
	return editStops
}

func (v *TasksView) focusedField() taskField {
	stops := v.stops()
	return stops[clamp(v.formStop, 0, len(stops)-1)]
}

func (v *TasksView) startForm(t *models.Task) tea.Cmd {
	v.mode = taskModeForm
	v.formStop = 0
	v.saving = false
	v.editTitle.Reset()
	v.editDesc.Reset()
	v.editDue.Reset()
	v.editPrio = priorityChoice("")
	v.editPrio.selectValue(string(models.PriorityMedium))
	v.editStatus = statusChoice("")
	v.editProject = projectChoice("No project", v.projects)
	v.editingID = ""

	if t != nil {
		v.editingID = t.ID
		v.editTitle.SetValue(t.Title)
		v.editDesc.SetValue(t.Description)
		v.editPrio.selectValue(string(t.DisplayPriority()))
		v.editStatus.selectValue(string(t.Status))
		if t.DueDate != nil {
			v.editDue.SetValue(t.DueDate.String())
		}
		if t.ProjectID != nil {
			v.editProject.selectValue(*t.ProjectID)
		}
	}
	v.updateFormFocus()
	return textinput.Blink
}

func (v *TasksView) updateFormFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	v.editDue.Blur()

	switch v.focusedField() {
	case fieldTitle:
		v.editTitle.Focus()
	case fieldDescription:
		v.editDesc.Focus()
	case fieldDueDate:
		v.editDue.Focus()
	}
}

func (v *TasksView) formChoice() *choice {
	switch v.focusedField() {
	case fieldPriority:
		return &v.editPrio
	case fieldStatus:
		return &v.editStatus
	case fieldProject:
		return &v.editProject
	}
	return nil
}

func (v *TasksView) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(v.stops())
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = taskModeList
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveTask()

	case key.Matches(msg, v.keys.Tab):
		v.formStop = (v.formStop + 1) % n
		v.updateFormFocus()
		return v, nil

	case key.Matches(msg, v.keys.BackTab):
		v.formStop = (v.formStop + n - 1) % n
		v.updateFormFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		switch v.focusedField() {
		case fieldSave:
			return v, v.saveTask()
		case fieldDescription:
			// newline in the textarea
		default:
			v.formStop = (v.formStop + 1) % n
			v.updateFormFocus()
			return v, nil
		}
	}

	if c := v.formChoice(); c != nil {
		switch msg.String() {
		case "left", "h":
			c.prev()
		case "right", "l", " ":
			c.next()
		}
		return v, nil
	}
	return v, v.updateFormInput(msg)
}

func (v *TasksView) updateFormInput(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch v.focusedField() {
	case fieldTitle:
		v.editTitle, cmd = v.editTitle.Update(msg)
	case fieldDescription:
		v.editDesc, cmd = v.editDesc.Update(msg)
	case fieldDueDate:
		v.editDue, cmd = v.editDue.Update(msg)
	}
	return cmd
}

func (v *TasksView) formInput() models.TaskInput {
	in := models.TaskInput{
		Title:       strings.TrimSpace(v.editTitle.Value()),
		Description: strings.TrimSpace(v.editDesc.Value()),
		Priority:    models.TaskPriority(v.editPrio.value()),
	}
	if v.editingID != "" {
		in.Status = models.TaskStatus(v.editStatus.value())
	}
	if due := strings.TrimSpace(v.editDue.Value()); due != "" {
		in.DueDate = &due
	}
	if pid := v.editProject.value(); pid != "" {
		in.ProjectID = &pid
	}
	return in
}

func (v *TasksView) saveTask() tea.Cmd {
	if v.saving {
		return nil
	}
	in := v.formInput()
	if err := validateTask(in); err != nil {
		v.banner = errorBanner(err.Error())
		return nil
	}
	v.saving = true

	backend, meta, id := v.deps.Backend, v.stamp(), v.editingID
	if id == "" {
		return func() tea.Msg {
			task, err := backend.CreateTask(context.Background(), in)
			return taskCreatedMsg{result: meta, task: task, err: err}
		}
	}
	return func() tea.Msg {
		task, err := backend.UpdateTask(context.Background(), id, in)
		return taskUpdatedMsg{result: meta, task: task, err: err}
	}
}

func (v *TasksView) visibleRows() int {
	// Header, filter line, banner, pagination and help take about 10 lines
	return max(v.height-10, 1)
}

func (v *TasksView) ensureVisible() {
	rows := v.visibleRows()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+rows {
		v.scrollY = v.cursor - rows + 1
	}
}

var tasksHelp = [][2]string{
	{"↑/↓", "navigate"},
	{"↵", "details"},
	{"n", "new task"},
	{"e", "edit"},
	{"s", "next status"},
	{"d", "delete"},
	{"/", "search"},
	{"f", "filters"},
	{"x", "clear filters"},
	{"[ ]", "page"},
	{"r", "refresh"},
}

func (v *TasksView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup(tasksHelp)
	}
	switch v.mode {
	case taskModeForm:
		return v.renderForm()
	case taskModeConfirmDelete:
		return v.renderDeleteConfirm("task", v.deleteTarget.Title)
	case taskModeDetail:
		return v.renderDetail()
	case taskModeFilter:
		return v.renderFilterPanel()
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	parts := []string{v.renderHeader(contentWidth)}
	if b := v.banner.render(s); b != "" {
		parts = append(parts, b)
	}
	parts = append(parts, "", v.renderList(contentWidth))
	if v.page > 1 || v.hasNext {
		parts = append(parts, "", v.renderPagination())
	}
	parts = append(parts, v.renderHelpLine([][2]string{{"n", "new"}, {"s", "status"}, {"/", "search"}, {"f", "filter"}, {"?", "help"}}))

	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, parts...), v.width, v.height)
}

func (v *TasksView) projectName(id string) string {
	for _, p := range v.projects {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}

func (v *TasksView) renderHeader(width int) string {
	s := v.styles
	title := s.Title.Render("Tasks")

	var search string
	if v.mode == taskModeSearch {
		search = s.InputFocused.Width(clamp(width-16, 10, 40)).Render(v.searchInput.View())
	} else if v.filter.Search != "" {
		search = s.TitleMuted.Render(fmt.Sprintf("search: %q", v.filter.Search))
	}
	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", search)

	var active []string
	if v.filter.Status != "" {
		active = append(active, "status: "+v.filter.Status.Label())
	}
	if v.filter.Priority != "" {
		active = append(active, "priority: "+string(v.filter.Priority))
	}
	if v.filter.ProjectID != "" {
		active = append(active, "project: "+v.projectName(v.filter.ProjectID))
	}
	if len(active) == 0 {
		return header
	}
	return lipgloss.JoinVertical(lipgloss.Left, header,
		s.TitleMuted.Render(strings.Join(active, " · ")+"  (x to clear)"))
}

func (v *TasksView) renderList(width int) string {
	s := v.styles
	if v.loading && v.tasks.Len() == 0 {
		return s.TitleMuted.Render("Loading tasks...")
	}
	if v.tasks.Len() == 0 {
		msg := "No tasks yet. Press n to create one."
		if !v.filter.IsZero() {
			msg = "No tasks match the current filters."
		}
		return s.TitleMuted.Render(msg)
	}

	now := v.deps.Now()
	end := min(v.scrollY+v.visibleRows(), v.tasks.Len())
	rows := make([]string, 0, end-v.scrollY)
	for i := v.scrollY; i < end; i++ {
		rows = append(rows, v.renderTaskLine(v.tasks.At(i), now, width, i == v.cursor))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *TasksView) renderPagination() string {
	s := v.styles
	prev, next := s.TitleMuted.Render("‹ ["), s.TitleMuted.Render("] ›")
	if v.page > 1 {
		prev = s.HelpKey.Render("‹ [")
	}
	if v.hasNext {
		next = s.HelpKey.Render("] ›")
	}
	return fmt.Sprintf("%s  Page %d  %s", prev, v.page, next)
}

func (v *TasksView) renderFilterPanel() string {
	s := v.styles
	row := func(i int, label string, c choice) string {
		value := "‹ " + c.label() + " ›"
		if i == v.filterRow {
			return s.ListSelected.Render(fmt.Sprintf("%-10s %s", label, value))
		}
		return s.ListItem.Render(fmt.Sprintf("%-10s %s", label, value))
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Filter tasks"),
		"",
		row(filterRowStatus, "Status", v.statusFilter),
		row(filterRowPriority, "Priority", v.priorityFilter),
		row(filterRowProject, "Project", v.projectFilter),
		"",
		s.TitleMuted.Render("↑↓: field • ←→: change • ↵: apply • Esc: cancel"),
	)
	return v.place(s.Panel.Render(content))
}

func (v *TasksView) renderDetail() string {
	s := v.styles
	t, ok := v.selected()
	if !ok {
		return v.place(s.TitleMuted.Render("No task selected"))
	}
	contentWidth := styles.ContentWidth(v.width)

	row := func(label, value string) string {
		return s.Label.Render(fmt.Sprintf("%-10s", label)) + " " + value
	}

	status := lipgloss.NewStyle().Foreground(styles.StatusColor(string(t.Status))).Render(t.Status.Label())
	priority := lipgloss.NewStyle().Foreground(styles.PriorityColor(string(t.DisplayPriority()))).Render(string(t.DisplayPriority()))
	due := "None"
	if t.DueDate != nil {
		due = formatDate(t.DueDate.Time)
		if stats.IsOverdue(t, v.deps.Now()) {
			due = s.Overdue.Render(due + " (overdue)")
		}
	}
	project := "None"
	if t.Project != nil {
		project = styles.Swatch(t.Project.DisplayColor()) + " " + t.Project.Name
	}
	desc := t.Description
	if desc == "" {
		desc = s.TitleMuted.Render("No description")
	}

	lines := []string{
		s.Title.Render(t.Title),
		"",
	}
	if b := v.banner.render(s); b != "" {
		lines = append(lines, b, "")
	}
	lines = append(lines,
		lipgloss.NewStyle().Width(clamp(contentWidth-8, 20, 70)).Render(desc),
		"",
		row("Status", status),
		row("Priority", priority),
		row("Due", due),
		row("Project", project),
		row("Created", formatDate(t.CreatedAt)),
		row("Updated", formatDate(t.UpdatedAt)),
		"",
		s.TitleMuted.Render("e: edit • s: next status • d: delete • Esc: back"),
	)
	return v.place(s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (v *TasksView) renderForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	inputWidth := clamp(contentWidth-10, 20, 50)
	focused := v.focusedField()

	formTitle := "New Task"
	if v.editingID != "" {
		formTitle = "Edit Task"
	}

	selector := func(label string, c choice, field taskField) string {
		style := s.Input
		if focused == field {
			style = s.InputFocused
		}
		return lipgloss.JoinVertical(lipgloss.Left,
			s.Label.Render(label),
			style.Width(inputWidth).Render("‹ "+c.label()+" ›"),
		)
	}

	descStyle := s.Input
	if focused == fieldDescription {
		descStyle = s.InputFocused
	}
	btnStyle := s.Button
	if focused == fieldSave {
		btnStyle = s.ButtonFocused
	}
	label := " Save "
	if v.saving {
		label = " Saving... "
	}

	parts := []string{s.Title.Render(formTitle), ""}
	if b := v.banner.render(s); b != "" {
		parts = append(parts, b, "")
	}
	parts = append(parts,
		v.renderField("Title", v.editTitle.View(), focused == fieldTitle, inputWidth),
		s.Label.Render("Description"),
		descStyle.Render(v.editDesc.View()),
		selector("Priority", v.editPrio, fieldPriority),
	)
	if v.editingID != "" {
		parts = append(parts, selector("Status", v.editStatus, fieldStatus))
	}
	parts = append(parts,
		v.renderField("Due date", v.editDue.View(), focused == fieldDueDate, inputWidth),
		selector("Project", v.editProject, fieldProject),
		"",
		btnStyle.Render(label),
		"",
		s.TitleMuted.Render("Tab: next • ←→: change • Ctrl+S: save • Esc: cancel"),
	)
	return v.place(lipgloss.JoinVertical(lipgloss.Left, parts...))
}
