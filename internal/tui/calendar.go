package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/daybook/internal/planner"
	"github.com/sadopc/daybook/internal/views"
)

type calendarModel struct {
	deps   Deps
	width  int
	height int

	today    time.Time
	selected time.Time
	events   []planner.Event
	tasks    []planner.Task
	counts   map[string]int
	agenda   []views.Item

	// inAgenda moves the cursor from the month grid to the day's items.
	inAgenda bool
	cursor   int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit" or "rename"
	editingID  string

	formTitle    *string
	formDesc     *string
	formDate     *string
	formTime     *string
	formPriority *planner.Priority
	formKind     *planner.EventType
}

func newCalendarModel(d Deps) calendarModel {
	now := d.Now()
	title, desc, date, tm := "", "", "", ""
	prio, typ := planner.PriorityMedium, planner.EventTypeEvent
	return calendarModel{
		deps:         d,
		today:        dayOf(now),
		selected:     dayOf(now),
		counts:       map[string]int{},
		formTitle:    &title,
		formDesc:     &desc,
		formDate:     &date,
		formTime:     &tm,
		formPriority: &prio,
		formKind:     &typ,
	}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c calendarModel) capturing() bool { return c.formActive }

type calendarDataMsg struct {
	now    time.Time
	events []planner.Event
	tasks  []planner.Task
}

func (c calendarModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return calendarDataMsg{
			now:    c.deps.Now(),
			events: c.deps.Events.Events(),
			tasks:  c.deps.Tasks.Tasks(),
		}
	}
}

func (c calendarModel) selectedKey() string {
	return c.selected.Format(planner.DateLayout)
}

func (c *calendarModel) rebuild() {
	c.counts = views.CountsByDate(c.events)
	c.agenda = views.ItemsForDate(c.events, c.tasks, c.selectedKey())
	if c.cursor >= len(c.agenda) {
		c.cursor = max(0, len(c.agenda)-1)
	}
	if len(c.agenda) == 0 {
		c.inAgenda = false
	}
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case calendarDataMsg:
		c.today = dayOf(msg.now)
		c.events = msg.events
		c.tasks = msg.tasks
		c.rebuild()
		return c, nil

	case tea.KeyMsg:
		if c.inAgenda {
			return c.updateAgenda(msg)
		}
		return c.updateGrid(msg)
	}
	return c, nil
}

func (c calendarModel) updateGrid(msg tea.KeyMsg) (calendarModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Left):
		c.moveTo(c.selected.AddDate(0, 0, -1))
	case key.Matches(msg, keys.Right):
		c.moveTo(c.selected.AddDate(0, 0, 1))
	case key.Matches(msg, keys.Up):
		c.moveTo(c.selected.AddDate(0, 0, -7))
	case key.Matches(msg, keys.Down):
		c.moveTo(c.selected.AddDate(0, 0, 7))
	case key.Matches(msg, keys.PrevMonth):
		c.moveTo(c.selected.AddDate(0, -1, 0))
	case key.Matches(msg, keys.NextMonth):
		c.moveTo(c.selected.AddDate(0, 1, 0))
	case key.Matches(msg, keys.Today):
		c.moveTo(c.today)
	case key.Matches(msg, keys.Enter):
		if len(c.agenda) > 0 {
			c.inAgenda = true
			c.cursor = 0
		}
	case key.Matches(msg, keys.New):
		return c.showForm(planner.Event{Date: c.selectedKey()})
	}
	return c, nil
}

func (c *calendarModel) moveTo(day time.Time) {
	c.selected = dayOf(day)
	c.cursor = 0
	c.rebuild()
}

func (c calendarModel) updateAgenda(msg tea.KeyMsg) (calendarModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		c.inAgenda = false
	case key.Matches(msg, keys.Up):
		if c.cursor > 0 {
			c.cursor--
		}
	case key.Matches(msg, keys.Down):
		if c.cursor < len(c.agenda)-1 {
			c.cursor++
		}
	case key.Matches(msg, keys.Toggle):
		it := c.agenda[c.cursor]
		if it.Kind == views.KindEvent {
			c.deps.Events.ToggleCompleted(it.ID)
		} else {
			c.deps.Tasks.ToggleCompleted(it.ID)
		}
		return c, c.refresh()
	case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
		it := c.agenda[c.cursor]
		if it.Kind != views.KindEvent {
			return c, status("Edit tasks from the To-Do tab")
		}
		if e, ok := c.deps.Events.Get(it.ID); ok {
			return c.showForm(e)
		}
	case key.Matches(msg, keys.Rename):
		it := c.agenda[c.cursor]
		if it.Kind != views.KindEvent {
			return c, status("Edit tasks from the To-Do tab")
		}
		return c.showRename(it)
	case key.Matches(msg, keys.Delete):
		it := c.agenda[c.cursor]
		if it.Kind != views.KindEvent {
			return c, status("Delete tasks from the To-Do tab")
		}
		c.deps.Events.Remove(it.ID)
		return c, tea.Batch(c.refresh(), status("Deleted: "+it.Title))
	case key.Matches(msg, keys.New):
		return c.showForm(planner.Event{Date: c.selectedKey()})
	}
	return c, nil
}

func (c calendarModel) showForm(e planner.Event) (calendarModel, tea.Cmd) {
	c.formType = "new"
	c.editingID = ""
	*c.formTitle = e.Title
	*c.formDesc = e.Description
	*c.formDate = e.Date
	*c.formTime = e.Time
	*c.formPriority = planner.PriorityMedium
	*c.formKind = planner.EventTypeEvent
	if e.ID != "" {
		c.formType = "edit"
		c.editingID = e.ID
		*c.formPriority = e.Priority
		*c.formKind = e.Type
	}

	prioOpts := make([]huh.Option[planner.Priority], 0, len(planner.Priorities))
	for _, p := range planner.Priorities {
		prioOpts = append(prioOpts, huh.NewOption(string(p), p))
	}
	typeOpts := make([]huh.Option[planner.EventType], 0, len(planner.EventTypes))
	for _, t := range planner.EventTypes {
		typeOpts = append(typeOpts, huh.NewOption(string(t), t))
	}

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(c.formTitle).Validate(validTitle),
			huh.NewInput().Title("Date").Placeholder("YYYY-MM-DD").Value(c.formDate).Validate(validDate),
			huh.NewInput().Title("Time").Placeholder("HH:MM").Value(c.formTime).Validate(validTime),
			huh.NewSelect[planner.EventType]().Title("Type").Options(typeOpts...).Value(c.formKind),
			huh.NewSelect[planner.Priority]().Title("Priority").Options(prioOpts...).Value(c.formPriority),
			huh.NewText().Title("Description").Value(c.formDesc),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

// showRename asks for a new title only.
func (c calendarModel) showRename(it views.Item) (calendarModel, tea.Cmd) {
	c.formType = "rename"
	c.editingID = it.ID
	*c.formTitle = it.Title

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(c.formTitle).Validate(validTitle),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c calendarModel) updateForm(msg tea.Msg) (calendarModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		c.form = nil
		return c, c.save()
	}
	return c, cmd
}

func (c calendarModel) save() tea.Cmd {
	switch c.formType {
	case "rename":
		ok, err := c.deps.Events.EditTitle(c.editingID, *c.formTitle)
		if err != nil {
			return errorStatus(err)
		}
		if !ok {
			return tea.Batch(c.refresh(), failStatus("Event no longer exists"))
		}
		return tea.Batch(c.refresh(), status("Event renamed"))
	case "edit":
		e, ok := c.deps.Events.Get(c.editingID)
		if !ok {
			return tea.Batch(c.refresh(), failStatus("Event no longer exists"))
		}
		e.Title = *c.formTitle
		e.Description = *c.formDesc
		e.Date = *c.formDate
		e.Time = *c.formTime
		e.Priority = *c.formPriority
		e.Type = *c.formKind
		if _, err := c.deps.Events.Update(e); err != nil {
			return errorStatus(err)
		}
		return tea.Batch(c.refresh(), status("Event updated"))
	}

	e, err := c.deps.Events.Create(planner.EventInput{
		Title:       *c.formTitle,
		Description: *c.formDesc,
		Date:        *c.formDate,
		Time:        *c.formTime,
		Priority:    *c.formPriority,
		Type:        *c.formKind,
	})
	if err != nil {
		return errorStatus(err)
	}
	return tea.Batch(c.refresh(), status(fmt.Sprintf("Added %s on %s", e.Title, e.Date)))
}

func (c calendarModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		title := titleStyle.Render("New Event")
		switch c.formType {
		case "edit":
			title = titleStyle.Render("Edit Event")
		case "rename":
			title = titleStyle.Render("Rename Event")
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View()))
	}

	gridWidth := 7*5 + 6
	grid := panelStyle.Render(c.renderMonth())
	agenda := c.renderAgenda(max(20, w-gridWidth-4))
	return lipgloss.JoinHorizontal(lipgloss.Top, grid, agenda)
}

// renderMonth draws the selected month, weeks starting on Sunday. Days with
// events show their count.
func (c calendarModel) renderMonth() string {
	first := time.Date(c.selected.Year(), c.selected.Month(), 1, 0, 0, 0, 0, c.selected.Location())
	title := titleStyle.Render(first.Format("January 2006"))

	var b strings.Builder
	b.WriteString(title + "\n\n")
	for _, d := range []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"} {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%-5s", d)))
	}
	b.WriteString("\n")

	lead := int(first.Weekday())
	b.WriteString(strings.Repeat("     ", lead))
	col := lead
	for day := first; day.Month() == first.Month(); day = day.AddDate(0, 0, 1) {
		b.WriteString(c.renderDay(day))
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		}
	}
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("←→↑↓ move  [ ] month  t: today\nenter: agenda  n: new event"))
	return b.String()
}

func (c calendarModel) renderDay(day time.Time) string {
	date := day.Format(planner.DateLayout)
	label := fmt.Sprintf("%2d", day.Day())
	marker := "   "
	if n := c.counts[date]; n > 0 {
		marker = accentStyle.Render(fmt.Sprintf("•%-2d", min(n, 99)))
	}
	switch {
	case day.Equal(c.selected):
		label = cursorDayStyle.Render(label)
	case day.Equal(c.today):
		label = todayStyle.Render(label)
	}
	return label + marker
}

func (c calendarModel) renderAgenda(w int) string {
	title := titleStyle.Render(c.selected.Format("Monday, January 2"))
	style := panelStyle
	if c.inAgenda {
		style = activePanelStyle
	}
	if len(c.agenda) == 0 {
		return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("Nothing planned. Press n to add an event."),
		))
	}

	rows := []string{title, ""}
	for i, it := range c.agenda {
		cursor := "  "
		line := normalItemStyle
		if c.inAgenda && i == c.cursor {
			cursor = "> "
			line = selectedItemStyle
		}
		kind := highlightStyle.Render(fmt.Sprintf("%-8s", it.Label))
		if it.Kind == views.KindTask {
			kind = mutedStyle.Render(fmt.Sprintf("%-8s", truncate(it.Label, 8)))
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s %s %s",
			cursor, checkbox(it.Completed), mutedStyle.Render(it.Time), kind,
			priorityStyle(it.Priority).Render("●"), line.Render(truncate(it.Title, w-30)),
		))
	}
	if c.inAgenda {
		rows = append(rows, "", mutedStyle.Render("  space: done  e: edit  R: rename  d: delete  esc: back"))
	}
	return style.Width(w).Render(strings.Join(rows, "\n"))
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
