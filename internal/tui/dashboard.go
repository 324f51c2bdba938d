package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/daybook/internal/planner"
	"github.com/sadopc/daybook/internal/views"
)

const chartDays = 7

type dashboardModel struct {
	deps   Deps
	width  int
	height int

	now      time.Time
	name     string
	counts   views.Counts
	streak   int
	today    []planner.Task
	upcoming []planner.Task
	events   int
	perDay   []views.DayCount
	cursor   int

	chart barchart.Model
}

func newDashboardModel(d Deps) dashboardModel {
	return dashboardModel{
		deps:  d,
		chart: barchart.New(40, 8),
	}
}

func (d *dashboardModel) setSize(w, h int) {
	d.width = w
	d.height = h
	d.buildChart()
}

type dashboardDataMsg struct {
	now      time.Time
	name     string
	tasks    []planner.Task
	todayEvs int
}

func (d dashboardModel) loadData() tea.Cmd {
	return func() tea.Msg {
		now := d.deps.Now()
		msg := dashboardDataMsg{
			now:      now,
			tasks:    d.deps.Tasks.Tasks(),
			todayEvs: d.deps.Events.CountForDate(now.Format(planner.DateLayout)),
		}
		if a, ok := d.deps.Account.Current(); ok {
			msg.name = a.Username
		}
		return msg
	}
}

func (d dashboardModel) update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		d.now = msg.now
		d.name = msg.name
		d.counts = views.CountByCompletion(msg.tasks)
		d.streak = views.Streak(msg.tasks, msg.now)
		d.today = views.DueToday(msg.tasks, msg.now)
		d.upcoming = views.Upcoming(msg.tasks, d.deps.UpcomingDays, msg.now)
		d.events = msg.todayEvs
		d.perDay = views.CompletedPerDay(msg.tasks, msg.now, chartDays)
		if d.cursor >= len(d.today) {
			d.cursor = max(0, len(d.today)-1)
		}
		d.buildChart()
		return d, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if d.cursor > 0 {
				d.cursor--
			}
		case key.Matches(msg, keys.Down):
			if d.cursor < len(d.today)-1 {
				d.cursor++
			}
		case key.Matches(msg, keys.Toggle), key.Matches(msg, keys.Enter):
			if len(d.today) == 0 {
				return d, nil
			}
			t, ok := d.deps.Tasks.ToggleCompleted(d.today[d.cursor].ID)
			if !ok {
				return d, d.loadData()
			}
			text := "Marked pending: " + t.Title
			if t.Completed {
				text = "Completed: " + t.Title
			}
			return d, tea.Batch(d.loadData(), status(text))
		}
	}
	return d, nil
}

func (d *dashboardModel) buildChart() {
	chartWidth := d.width/2 - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	d.chart = barchart.New(chartWidth, 8)

	bars := make([]barchart.BarData, 0, len(d.perDay))
	for _, day := range d.perDay {
		bars = append(bars, barchart.BarData{
			Label: day.Label,
			Values: []barchart.BarValue{{
				Name:  day.Date,
				Value: float64(day.Count),
				Style: lipgloss.NewStyle().Foreground(colorPrimary),
			}},
		})
	}
	d.chart.PushAll(bars)
	d.chart.Draw()
}

func (d dashboardModel) view() string {
	if d.width < 20 {
		return "Terminal too small"
	}
	w := d.width - 4

	top := d.renderGreeting(w)
	half := w/2 - 1
	left := lipgloss.JoinVertical(lipgloss.Left,
		d.renderToday(half),
		d.renderUpcoming(half),
	)
	right := d.renderChart(w - half - 2)

	return lipgloss.JoinVertical(lipgloss.Left,
		top,
		lipgloss.JoinHorizontal(lipgloss.Top, left, right),
	)
}

func (d dashboardModel) renderGreeting(w int) string {
	name := d.name
	if name == "" {
		name = "there"
	}
	hello := titleStyle.Render(fmt.Sprintf("%s, %s", greeting(d.now), name))
	date := mutedStyle.Render(d.now.Format("Monday, January 2"))

	stat := func(label string, v int, s lipgloss.Style) string {
		return fmt.Sprintf("%s %s", s.Render(fmt.Sprint(v)), mutedStyle.Render(label))
	}
	stats := strings.Join([]string{
		stat("completed", d.counts.Completed, successStyle),
		stat("pending", d.counts.Pending, warningStyle),
		stat("day streak", d.streak, accentStyle),
		stat(plural(d.events, "event today", "events today"), d.events, highlightStyle),
	}, "   ")

	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, hello, date, "", stats),
	)
}

func (d dashboardModel) renderToday(w int) string {
	title := titleStyle.Render("Today")
	if len(d.today) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Nothing due today"),
		))
	}

	rows := []string{title}
	for i, t := range d.today {
		cursor := "  "
		style := normalItemStyle
		if i == d.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := fmt.Sprintf("%s%s %s %s", cursor, checkbox(t.Completed), t.DueTime, truncate(t.Title, w-20))
		rows = append(rows, style.Render(line))
	}
	rows = append(rows, "", mutedStyle.Render("  space: done/undo"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderUpcoming(w int) string {
	title := titleStyle.Render(fmt.Sprintf("Upcoming (%d days)", d.deps.UpcomingDays))
	if len(d.upcoming) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("No upcoming tasks"),
		))
	}

	rows := []string{title}
	limit := min(len(d.upcoming), 6)
	for _, t := range d.upcoming[:limit] {
		dot := priorityStyle(t.Priority).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %s  %s", dot, mutedStyle.Render(t.DueDate), truncate(t.Title, w-22)))
	}
	if more := len(d.upcoming) - limit; more > 0 {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  and %d more", more)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (d dashboardModel) renderChart(w int) string {
	title := titleStyle.Render("Completed, last 7 days")
	total := 0
	for _, day := range d.perDay {
		total += day.Count
	}
	if total == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			mutedStyle.Render("Complete a task to start the chart"),
		))
	}
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		title, "", d.chart.View(),
	))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
