package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/daybook/internal/planner"
	"github.com/sadopc/daybook/internal/views"
)

type todoModel struct {
	deps   Deps
	width  int
	height int

	tasks    []planner.Task
	visible  []planner.Task
	subjects []string
	cursor   int

	search    textinput.Model
	searching bool
	criteria  views.Criteria

	// confirming is "clear" or "selected" while a destructive action waits for y.
	confirming string

	formActive bool
	form       *huh.Form
	formType   string // "new" or "edit"
	editingID  string

	// Form field pointers (survive value copies)
	formTitle    *string
	formDate     *string
	formTime     *string
	formSubject  *string
	formPriority *planner.Priority
	formDesc     *string
}

func newTodoModel(d Deps) todoModel {
	ti := textinput.New()
	ti.Placeholder = "Search tasks"
	ti.Prompt = "/ "
	ti.CharLimit = 80

	title, date, tm, subj, desc := "", "", "", planner.DefaultSubject, ""
	prio := planner.PriorityMedium
	return todoModel{
		deps:         d,
		search:       ti,
		criteria:     views.AllCriteria(),
		subjects:     views.Subjects(nil),
		formTitle:    &title,
		formDate:     &date,
		formTime:     &tm,
		formSubject:  &subj,
		formPriority: &prio,
		formDesc:     &desc,
	}
}

func (m *todoModel) setSize(w, h int) {
	m.width = w
	m.height = h
	m.search.Width = max(10, w-12)
}

func (m todoModel) capturing() bool {
	return m.formActive || m.searching || m.confirming != ""
}

type todoDataMsg struct {
	tasks []planner.Task
}

func (m todoModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return todoDataMsg{tasks: m.deps.Tasks.Tasks()}
	}
}

func (m *todoModel) applyView() {
	m.subjects = views.Subjects(m.tasks)
	m.visible = views.Combined(m.tasks, m.search.Value(), m.criteria)
	if m.cursor >= len(m.visible) {
		m.cursor = max(0, len(m.visible)-1)
	}
}

func (m todoModel) current() (planner.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return planner.Task{}, false
	}
	return m.visible[m.cursor], true
}

func (m todoModel) update(msg tea.Msg) (todoModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case todoDataMsg:
		m.tasks = msg.tasks
		m.applyView()
		return m, nil

	case tea.KeyMsg:
		if m.confirming != "" {
			return m.updateConfirm(msg)
		}
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m todoModel) updateSearch(msg tea.KeyMsg) (todoModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.SetValue("")
		m.search.Blur()
		m.searching = false
		m.applyView()
		return m, nil
	case "enter":
		m.search.Blur()
		m.searching = false
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.applyView()
	return m, cmd
}

func (m todoModel) updateConfirm(msg tea.KeyMsg) (todoModel, tea.Cmd) {
	what := m.confirming
	m.confirming = ""
	if !key.Matches(msg, keys.Yes) {
		return m, status("Cancelled")
	}
	switch what {
	case "clear":
		m.deps.Tasks.Clear()
		return m, tea.Batch(m.refresh(), status("All tasks deleted"))
	case "selected":
		n := m.deps.Tasks.RemoveSelected()
		return m, tea.Batch(m.refresh(), status(fmt.Sprintf("Deleted %d %s", n, plural(n, "task", "tasks"))))
	}
	return m, nil
}

func (m todoModel) updateList(msg tea.KeyMsg) (todoModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Search):
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, keys.Back):
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.applyView()
		}
	case key.Matches(msg, keys.Subject):
		m.criteria.Subject = cycle(append([]string{views.All}, m.subjects...), m.criteria.Subject)
		m.applyView()
	case key.Matches(msg, keys.Priority):
		opts := []string{views.All}
		for _, p := range planner.Priorities {
			opts = append(opts, string(p))
		}
		m.criteria.Priority = cycle(opts, m.criteria.Priority)
		m.applyView()
	case key.Matches(msg, keys.Status):
		m.criteria.Status = cycle([]string{views.All, views.StatusPending, views.StatusCompleted}, m.criteria.Status)
		m.applyView()
	case key.Matches(msg, keys.Reset):
		m.criteria = views.AllCriteria()
		m.search.SetValue("")
		m.applyView()
	case key.Matches(msg, keys.Toggle):
		if t, ok := m.current(); ok {
			m.deps.Tasks.ToggleCompleted(t.ID)
			return m, m.refresh()
		}
	case key.Matches(msg, keys.Select):
		if t, ok := m.current(); ok {
			m.deps.Tasks.ToggleSelected(t.ID)
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
		}
	case key.Matches(msg, keys.Delete):
		if t, ok := m.current(); ok {
			m.deps.Tasks.Remove(t.ID)
			return m, tea.Batch(m.refresh(), status("Deleted: "+t.Title))
		}
	case key.Matches(msg, keys.DeleteSel):
		if len(m.deps.Tasks.Selected()) > 0 {
			m.confirming = "selected"
		}
	case key.Matches(msg, keys.ClearAll):
		if len(m.tasks) > 0 {
			m.confirming = "clear"
		}
	case key.Matches(msg, keys.New):
		return m.showForm(planner.Task{})
	case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
		if t, ok := m.current(); ok {
			return m.showForm(t)
		}
	}
	return m, nil
}

// showForm opens the task form, prefilled from t when t has an id.
func (m todoModel) showForm(t planner.Task) (todoModel, tea.Cmd) {
	m.formType = "new"
	m.editingID = ""
	*m.formTitle = ""
	*m.formDate = ""
	*m.formTime = ""
	*m.formSubject = planner.DefaultSubject
	*m.formPriority = planner.PriorityMedium
	*m.formDesc = ""
	if t.ID != "" {
		m.formType = "edit"
		m.editingID = t.ID
		*m.formTitle = t.Title
		*m.formDate = t.DueDate
		*m.formTime = t.DueTime
		*m.formSubject = t.Subject
		*m.formPriority = t.Priority
		*m.formDesc = t.Description
	}

	subjectOpts := make([]huh.Option[string], 0, len(m.subjects))
	for _, s := range m.subjects {
		subjectOpts = append(subjectOpts, huh.NewOption(s, s))
	}
	prioOpts := make([]huh.Option[planner.Priority], 0, len(planner.Priorities))
	for _, p := range planner.Priorities {
		prioOpts = append(prioOpts, huh.NewOption(string(p), p))
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(m.formTitle).Validate(validTitle),
			huh.NewInput().Title("Due date").Placeholder("YYYY-MM-DD").Value(m.formDate).Validate(validDate),
			huh.NewInput().Title("Due time").Placeholder(planner.DefaultDueTime).Value(m.formTime).Validate(validTime),
			huh.NewSelect[string]().Title("Subject").Options(subjectOpts...).Value(m.formSubject),
			huh.NewSelect[planner.Priority]().Title("Priority").Options(prioOpts...).Value(m.formPriority),
			huh.NewText().Title("Description").Value(m.formDesc),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m todoModel) updateForm(msg tea.Msg) (todoModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		m.form = nil
		return m, m.save()
	}
	return m, cmd
}

func (m todoModel) save() tea.Cmd {
	if m.formType == "edit" {
		t, ok := m.deps.Tasks.Get(m.editingID)
		if !ok {
			return tea.Batch(m.refresh(), failStatus("Task no longer exists"))
		}
		t.Title = *m.formTitle
		t.DueDate = *m.formDate
		t.DueTime = *m.formTime
		t.Subject = *m.formSubject
		t.Priority = *m.formPriority
		t.Description = *m.formDesc
		if _, err := m.deps.Tasks.Update(t); err != nil {
			return errorStatus(err)
		}
		return tea.Batch(m.refresh(), status("Task updated"))
	}

	t, err := m.deps.Tasks.Create(planner.TaskInput{
		Title:       *m.formTitle,
		DueDate:     *m.formDate,
		DueTime:     *m.formTime,
		Subject:     *m.formSubject,
		Priority:    *m.formPriority,
		Description: *m.formDesc,
	})
	if err != nil {
		return errorStatus(err)
	}
	return tea.Batch(m.refresh(), status("Added: "+t.Title))
}

func (m todoModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		if m.formType == "edit" {
			title = titleStyle.Render("Edit Task")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View()))
	}

	counts := views.CountByCompletion(m.tasks)
	header := fmt.Sprintf("%s  %s", titleStyle.Render("To-Do"),
		mutedStyle.Render(fmt.Sprintf("%d shown · %d done · %d pending", len(m.visible), counts.Completed, counts.Pending)))

	searchLine := mutedStyle.Render("/ search")
	if m.searching || m.search.Value() != "" {
		searchLine = m.search.View()
	}
	filterLine := mutedStyle.Render(fmt.Sprintf("subject: %s   priority: %s   status: %s",
		orAll(m.criteria.Subject), orAll(m.criteria.Priority), orAll(m.criteria.Status)))

	rows := []string{header, "", searchLine, filterLine, ""}

	if len(m.visible) == 0 {
		hint := "No tasks yet. Press n to add one."
		if len(m.tasks) > 0 {
			hint = "No tasks match. Press r to reset filters."
		}
		rows = append(rows, mutedStyle.Render(hint))
	}

	listHeight := max(3, m.height-14)
	start := 0
	if m.cursor >= listHeight {
		start = m.cursor - listHeight + 1
	}
	end := min(len(m.visible), start+listHeight)
	for i := start; i < end; i++ {
		rows = append(rows, m.renderRow(i, w))
	}

	if n := len(m.deps.Tasks.Selected()); n > 0 {
		rows = append(rows, "", accentStyle.Render(fmt.Sprintf("  %d selected · D: delete selected", n)))
	}

	switch m.confirming {
	case "clear":
		rows = append(rows, "", errorStyle.Render("  Delete ALL tasks? y: yes  any other key: cancel"))
	case "selected":
		rows = append(rows, "", errorStyle.Render("  Delete selected tasks? y: yes  any other key: cancel"))
	}

	rows = append(rows, "", mutedStyle.Render("  n: new  e: edit  space: done  v: select  d: delete  C: clear all  s/p/f: filter"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (m todoModel) renderRow(i, w int) string {
	t := m.visible[i]
	cursor := "  "
	style := normalItemStyle
	if i == m.cursor {
		cursor = "> "
		style = selectedItemStyle
	}
	mark := " "
	if m.deps.Tasks.IsSelected(t.ID) {
		mark = accentStyle.Render("●")
	}
	width := max(10, w-48)
	title := fmt.Sprintf("%-*s", width, truncate(t.Title, width))
	if t.Completed {
		title = mutedStyle.Strikethrough(true).Render(title)
	} else {
		title = style.Render(title)
	}
	due := t.DueDate
	if due == "" {
		due = "no date"
	}
	return fmt.Sprintf("%s%s %s %s  %s  %s  %s",
		cursor, mark, checkbox(t.Completed), title,
		mutedStyle.Render(fmt.Sprintf("%-10s", truncate(t.Subject, 10))),
		priorityStyle(t.Priority).Render(fmt.Sprintf("%-6s", t.Priority)),
		mutedStyle.Render(due+" "+t.DueTime),
	)
}

// cycle returns the option after cur, wrapping around.
func cycle(opts []string, cur string) string {
	if cur == "" {
		cur = views.All
	}
	for i, o := range opts {
		if o == cur {
			return opts[(i+1)%len(opts)]
		}
	}
	return opts[0]
}

func orAll(s string) string {
	if s == "" {
		return views.All
	}
	return s
}
