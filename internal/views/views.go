// Package views holds the read-only projections the screens are drawn from.
// Every function is pure: it never mutates its input and keeps no state
// between calls.
package views

import (
	"slices"
	"strings"
	"time"

	"github.com/sadopc/daybook/internal/planner"
)

// All disables a filter criterion.
const All = "all"

const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// Criteria narrows a task list. An empty field behaves like All.
type Criteria struct {
	Subject  string
	Priority string
	Status   string
}

func AllCriteria() Criteria {
	return Criteria{Subject: All, Priority: All, Status: All}
}

func (c Criteria) unconstrained() bool {
	return isAll(c.Subject) && isAll(c.Priority) && isAll(c.Status)
}

func isAll(v string) bool { return v == "" || v == All }

// Search keeps the tasks whose title contains query, ignoring case. Spaces
// in the query count. An empty query returns tasks unchanged.
func Search(tasks []planner.Task, query string) []planner.Task {
	if query == "" {
		return tasks
	}
	q := strings.ToLower(query)
	var out []planner.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title), q) {
			out = append(out, t)
		}
	}
	return out
}

// Filter keeps the tasks matching every constrained field of c.
func Filter(tasks []planner.Task, c Criteria) []planner.Task {
	if c.unconstrained() {
		return tasks
	}
	var out []planner.Task
	for _, t := range tasks {
		if matches(t, c) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t planner.Task, c Criteria) bool {
	if !isAll(c.Subject) && t.Subject != c.Subject {
		return false
	}
	if !isAll(c.Priority) && string(t.Priority) != c.Priority {
		return false
	}
	switch {
	case isAll(c.Status):
		return true
	case c.Status == StatusCompleted:
		return t.Completed
	case c.Status == StatusPending:
		return !t.Completed
	}
	return false
}

// Combined is Filter applied to Search, keeping input order.
func Combined(tasks []planner.Task, query string, c Criteria) []planner.Task {
	return Filter(Search(tasks, query), c)
}

type Counts struct {
	Completed int
	Pending   int
}

func (c Counts) Total() int { return c.Completed + c.Pending }

func CountByCompletion(tasks []planner.Task) Counts {
	var c Counts
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		} else {
			c.Pending++
		}
	}
	return c
}

// Upcoming returns the pending tasks due between today and today+days, both
// inclusive, ordered by due date. Tasks without a parseable date are skipped.
func Upcoming(tasks []planner.Task, days int, today time.Time) []planner.Task {
	start := midnight(today)
	end := start.AddDate(0, 0, days)

	var out []planner.Task
	for _, t := range tasks {
		if t.Completed {
			continue
		}
		due, ok := parseDate(t.DueDate, start.Location())
		if !ok || due.Before(start) || due.After(end) {
			continue
		}
		out = append(out, t)
	}
	slices.SortStableFunc(out, func(a, b planner.Task) int {
		return strings.Compare(a.DueDate, b.DueDate)
	})
	return out
}

// DueToday returns the tasks due on today's date, done or not.
func DueToday(tasks []planner.Task, today time.Time) []planner.Task {
	return TasksForDate(tasks, today.Format(planner.DateLayout))
}

// Streak counts consecutive days with at least one completed task. The run
// ends today, or yesterday when nothing has been completed today yet.
func Streak(tasks []planner.Task, today time.Time) int {
	done := completionDays(tasks, today.Location())
	day := midnight(today)
	if !done[day.Format(planner.DateLayout)] {
		day = day.AddDate(0, 0, -1)
	}
	n := 0
	for done[day.Format(planner.DateLayout)] {
		n++
		day = day.AddDate(0, 0, -1)
	}
	return n
}

// DayCount is the number of tasks completed on one calendar day.
type DayCount struct {
	Date  string
	Label string
	Count int
}

// CompletedPerDay returns one entry per day for the last days days, oldest
// first and ending today.
func CompletedPerDay(tasks []planner.Task, today time.Time, days int) []DayCount {
	if days <= 0 {
		return nil
	}
	counts := make(map[string]int)
	for _, t := range tasks {
		if day, ok := completionDay(t, today.Location()); ok {
			counts[day]++
		}
	}
	start := midnight(today).AddDate(0, 0, -(days - 1))
	out := make([]DayCount, days)
	for i := range out {
		d := start.AddDate(0, 0, i)
		key := d.Format(planner.DateLayout)
		out[i] = DayCount{Date: key, Label: d.Format("Mon"), Count: counts[key]}
	}
	return out
}

func TasksForDate(tasks []planner.Task, date string) []planner.Task {
	var out []planner.Task
	for _, t := range tasks {
		if t.DueDate == date {
			out = append(out, t)
		}
	}
	return out
}

func EventsForDate(events []planner.Event, date string) []planner.Event {
	var out []planner.Event
	for _, e := range events {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out
}

func CountForDate(events []planner.Event, date string) int {
	return len(EventsForDate(events, date))
}

// CountsByDate maps each date to its number of events.
func CountsByDate(events []planner.Event) map[string]int {
	out := make(map[string]int)
	for _, e := range events {
		out[e.Date]++
	}
	return out
}

type ItemKind string

const (
	KindEvent ItemKind = "event"
	KindTask  ItemKind = "task"
)

// Item is one row of a day's agenda.
type Item struct {
	Kind      ItemKind
	ID        string
	Title     string
	Time      string
	Priority  planner.Priority
	Label     string
	Completed bool
}

// ItemsForDate lists a day's events followed by the tasks due that day, each
// group ordered by time.
func ItemsForDate(events []planner.Event, tasks []planner.Task, date string) []Item {
	var evs, tks []Item
	for _, e := range EventsForDate(events, date) {
		evs = append(evs, Item{
			Kind:      KindEvent,
			ID:        e.ID,
			Title:     e.Title,
			Time:      e.Time,
			Priority:  e.Priority,
			Label:     string(e.Type),
			Completed: e.Completed,
		})
	}
	for _, t := range TasksForDate(tasks, date) {
		tks = append(tks, Item{
			Kind:      KindTask,
			ID:        t.ID,
			Title:     t.Title,
			Time:      t.DueTime,
			Priority:  t.Priority,
			Label:     t.Subject,
			Completed: t.Completed,
		})
	}
	byTime := func(a, b Item) int { return strings.Compare(a.Time, b.Time) }
	slices.SortStableFunc(evs, byTime)
	slices.SortStableFunc(tks, byTime)
	return append(evs, tks...)
}

// Subjects returns the well-known subjects followed by any others used in
// tasks, in first-seen order.
func Subjects(tasks []planner.Task) []string {
	out := slices.Clone(planner.Subjects)
	for _, t := range tasks {
		if t.Subject != "" && !slices.Contains(out, t.Subject) {
			out = append(out, t.Subject)
		}
	}
	return out
}

func completionDays(tasks []planner.Task, loc *time.Location) map[string]bool {
	days := make(map[string]bool)
	for _, t := range tasks {
		if day, ok := completionDay(t, loc); ok {
			days[day] = true
		}
	}
	return days
}

// completionDay is the local date a task was finished on. Tasks completed
// before the timestamp was recorded fall back to their due date.
func completionDay(t planner.Task, loc *time.Location) (string, bool) {
	if !t.Completed {
		return "", false
	}
	if at, err := time.Parse(time.RFC3339, t.CompletedAt); err == nil {
		return at.In(loc).Format(planner.DateLayout), true
	}
	if _, ok := parseDate(t.DueDate, loc); ok {
		return t.DueDate, true
	}
	return "", false
}

func parseDate(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	d, err := time.ParseInLocation(planner.DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
