package tui

import (
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/daybook/internal/auth"
	"github.com/sadopc/daybook/internal/planner"
)

// viewState represents the currently active view.
type viewState int

const (
	viewDashboard viewState = iota
	viewTodo
	viewCalendar
	viewProfile
	viewSettings
)

var viewNames = []string{"Dashboard", "To-Do", "Calendar", "Profile", "Settings"}

// KeyLister lists the records held in the key-value store.
type KeyLister interface {
	Keys() ([]string, error)
}

// Deps is what the TUI needs from the rest of the program.
type Deps struct {
	Tasks        *planner.TaskStore
	Events       *planner.EventStore
	Account      *planner.AccountStore
	Prefs        *planner.PreferenceStore
	Records      KeyLister
	UpcomingDays int
	ExportDir    string
	AuthEnabled  bool
	Now          func() time.Time
}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	path string
}

type themeChangedMsg struct {
	theme planner.Theme
}

type accountMsg struct {
	account planner.Account
	err     error
	action  string
}

// --- Helpers ---

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func failStatus(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: true} }
}

func errorStatus(err error) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: userMessage(err), isError: true} }
}

// userMessage picks the text to show for err. Input errors carry their own
// message; account backend errors are translated.
func userMessage(err error) string {
	switch {
	case planner.IsValidation(err):
		return err.Error()
	case errors.Is(err, planner.ErrNotSignedIn):
		return "Sign in first"
	}
	return auth.Message(err)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}

func checkbox(done bool) string {
	if done {
		return successStyle.Render("[x]")
	}
	return "[ ]"
}

// validDate and validTime back the inline form validation.
func validDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(planner.DateLayout, s); err != nil {
		return planner.ErrInvalidDate
	}
	return nil
}

func validTime(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(planner.TimeLayout, s); err != nil {
		return planner.ErrInvalidTime
	}
	return nil
}

func validTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return planner.ErrEmptyTitle
	}
	return nil
}

func required(s string) error {
	if s == "" {
		return planner.ErrMissingFields
	}
	return nil
}

func greeting(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "Good morning"
	case h < 18:
		return "Good afternoon"
	}
	return "Good evening"
}
