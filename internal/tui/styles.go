package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/daybook/internal/planner"
)

// Fixed colors. The rest come from the active theme in applyTheme.
var (
	colorMuted   = lipgloss.Color("#888888")
	colorSuccess = lipgloss.Color("#2ECC71")
	colorWarning = lipgloss.Color("#F39C12")
	colorError   = lipgloss.Color("#E74C3C")
)

var (
	colorPrimary lipgloss.Color
	colorAccent  lipgloss.Color
	colorFg      lipgloss.Color
	colorSubtle  lipgloss.Color
)

var (
	activeTabStyle    lipgloss.Style
	inactiveTabStyle  lipgloss.Style
	panelStyle        lipgloss.Style
	activePanelStyle  lipgloss.Style
	titleStyle        lipgloss.Style
	accentStyle       lipgloss.Style
	successStyle      lipgloss.Style
	warningStyle      lipgloss.Style
	errorStyle        lipgloss.Style
	mutedStyle        lipgloss.Style
	highlightStyle    lipgloss.Style
	headerStyle       lipgloss.Style
	footerStyle       lipgloss.Style
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style
	todayStyle        lipgloss.Style
	cursorDayStyle    lipgloss.Style
)

func init() {
	applyTheme(planner.ThemeFor(planner.DefaultPreference()))
}

// applyTheme rebuilds every style from t. Called at start-up and whenever the
// preference changes.
func applyTheme(t planner.Theme) {
	colorPrimary = lipgloss.Color(t.Colors.Primary)
	colorAccent = lipgloss.Color(t.Colors.Notification)
	colorFg = lipgloss.Color(t.Colors.Text)
	colorSubtle = lipgloss.Color(t.Colors.Border)

	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorPrimary).
		Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	accentStyle = lipgloss.NewStyle().Foreground(colorAccent)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorPrimary)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle = lipgloss.NewStyle().Foreground(colorFg)

	todayStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	cursorDayStyle = lipgloss.NewStyle().Reverse(true).Bold(true)
}

func priorityStyle(p planner.Priority) lipgloss.Style {
	switch p {
	case planner.PriorityHigh:
		return errorStyle
	case planner.PriorityLow:
		return successStyle
	}
	return warningStyle
}
