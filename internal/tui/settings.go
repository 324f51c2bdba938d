package tui

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/daybook/internal/planner"
)

// accentPresets are offered alongside free-form hex input.
var accentPresets = []string{planner.DefaultAccentColor, "#2ECC71", "#E67E22", "#9B59B6", "#E74C3C"}

type settingsModel struct {
	deps   Deps
	width  int
	height int

	pref    planner.Preference
	records []string

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	mode   *planner.Mode
	accent *string
}

func newSettingsModel(d Deps) settingsModel {
	mode := planner.ModeLight
	accent := ""
	return settingsModel{
		deps:   d,
		mode:   &mode,
		accent: &accent,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

func (s settingsModel) capturing() bool { return s.formActive }

type settingsDataMsg struct {
	pref    planner.Preference
	records []string
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		msg := settingsDataMsg{pref: s.deps.Prefs.Preference()}
		if s.deps.Records != nil {
			if names, err := s.deps.Records.Keys(); err == nil {
				msg.records = names
			}
		}
		return msg
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.pref = msg.pref
		s.records = msg.records
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		case key.Matches(msg, keys.Mode):
			t := s.deps.Prefs.ToggleMode()
			return s, tea.Batch(s.refresh(), themeChanged(t), status(fmt.Sprintf("Switched to %s mode", t.Mode)))
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.mode = s.pref.Mode
	*s.accent = s.pref.AccentColor

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[planner.Mode]().Title("Mode").
				Options(
					huh.NewOption("Light", planner.ModeLight),
					huh.NewOption("Dark", planner.ModeDark),
				).Value(s.mode),
			huh.NewInput().Title("Accent color").Placeholder("#RRGGBB").
				Suggestions(accentPresets).
				Value(s.accent).Validate(required),
		).Title("Appearance"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.form = nil
		return s, s.save()
	}
	return s, cmd
}

func (s settingsModel) save() tea.Cmd {
	if _, err := s.deps.Prefs.SetMode(*s.mode); err != nil {
		return errorStatus(err)
	}
	t, err := s.deps.Prefs.SetAccentColor(*s.accent)
	if err != nil {
		return tea.Batch(s.refresh(), themeChanged(s.deps.Prefs.Theme()), errorStatus(err))
	}
	return tea.Batch(s.refresh(), themeChanged(t), status("Settings saved"))
}

func themeChanged(t planner.Theme) tea.Cmd {
	return func() tea.Msg { return themeChangedMsg{theme: t} }
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Settings"), "", s.form.View()),
		)
	}

	label := lipgloss.NewStyle().Width(16)
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(s.pref.AccentColor)).Render("■■■")
	rows := []string{
		titleStyle.Render("Appearance"),
		"",
		fmt.Sprintf("  %s %s", label.Render("Mode"), highlightStyle.Render(string(s.pref.Mode))),
		fmt.Sprintf("  %s %s %s", label.Render("Accent color"), highlightStyle.Render(s.pref.AccentColor), swatch),
		"",
		titleStyle.Render("Stored records"),
		"",
	}
	if len(s.records) == 0 {
		rows = append(rows, mutedStyle.Render("  none"))
	}
	for _, k := range s.records {
		mark := "  "
		if slices.Contains(knownRecords, k) {
			mark = successStyle.Render("✓ ")
		}
		rows = append(rows, "  "+mark+k)
	}
	rows = append(rows, "", mutedStyle.Render("enter: edit  m: toggle dark mode"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

var knownRecords = []string{planner.TasksKey, planner.EventsKey, planner.AccountKey, planner.PreferencesKey}
