package tui

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/daybook/internal/planner"
	"github.com/sadopc/daybook/internal/views"
)

const accountTimeout = 10 * time.Second

// maxPictureSize caps profile pictures read from disk.
const maxPictureSize = 2 << 20

type profileModel struct {
	deps   Deps
	width  int
	height int

	account  planner.Account
	signedIn bool
	counts   views.Counts
	events   int

	formActive bool
	form       *huh.Form
	formType   string // "signin", "signup" or "picture"

	// Form values as pointers (survive value copies)
	username *string
	email    *string
	password *string
	confirm  *string
	birthday *string
	terms    *bool
	picture  *string
}

func newProfileModel(d Deps) profileModel {
	u, e, p, c, b, pic := "", "", "", "", "", ""
	terms := false
	return profileModel{
		deps:     d,
		username: &u,
		email:    &e,
		password: &p,
		confirm:  &c,
		birthday: &b,
		terms:    &terms,
		picture:  &pic,
	}
}

func (p *profileModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

func (p profileModel) capturing() bool { return p.formActive }

type profileDataMsg struct {
	account  planner.Account
	signedIn bool
	tasks    []planner.Task
	events   int
}

func (p profileModel) refresh() tea.Cmd {
	return func() tea.Msg {
		a, ok := p.deps.Account.Current()
		return profileDataMsg{
			account:  a,
			signedIn: ok,
			tasks:    p.deps.Tasks.Tasks(),
			events:   len(p.deps.Events.Events()),
		}
	}
}

func (p profileModel) update(msg tea.Msg) (profileModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case profileDataMsg:
		p.account = msg.account
		p.signedIn = msg.signedIn
		p.counts = views.CountByCompletion(msg.tasks)
		p.events = msg.events
		return p, nil

	case profilePictureMsg:
		return p, tea.Batch(p.refresh(), status("Profile picture updated"))

	case accountMsg:
		if msg.err != nil {
			return p, errorStatus(msg.err)
		}
		text := "Welcome back, " + msg.account.Username
		if msg.action == "signup" {
			text = "Account created for " + msg.account.Username
		}
		return p, tea.Batch(p.refresh(), status(text))

	case tea.KeyMsg:
		if !p.signedIn {
			switch {
			case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
				return p.showSignIn()
			case key.Matches(msg, keys.SignUp):
				return p.showSignUp()
			}
			return p, nil
		}
		switch {
		case key.Matches(msg, keys.SignOut):
			p.deps.Account.Clear()
			return p, tea.Batch(p.refresh(), status("Signed out"))
		case key.Matches(msg, keys.Picture):
			return p.showPicture()
		}
	}
	return p, nil
}

func (p profileModel) showSignIn() (profileModel, tea.Cmd) {
	p.formType = "signin"
	*p.email = ""
	*p.password = ""

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(p.email).Validate(required),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(p.password).Validate(required),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p profileModel) showSignUp() (profileModel, tea.Cmd) {
	p.formType = "signup"
	*p.username = ""
	*p.email = ""
	*p.password = ""
	*p.confirm = ""
	*p.birthday = ""
	*p.terms = false

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(p.username).Validate(required),
			huh.NewInput().Title("Email").Value(p.email).Validate(required),
			huh.NewInput().Title("Birthday").Placeholder("YYYY-MM-DD").Value(p.birthday).Validate(required),
		),
		huh.NewGroup(
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(p.password).Validate(required),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(p.confirm).Validate(required),
			huh.NewConfirm().Title("I agree to the terms and conditions").Value(p.terms),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p profileModel) showPicture() (profileModel, tea.Cmd) {
	p.formType = "picture"
	*p.picture = ""

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Image file").Placeholder("~/Pictures/me.png").Value(p.picture).Validate(required),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p profileModel) updateForm(msg tea.Msg) (profileModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.form = nil
		return p, p.submit()
	}
	return p, cmd
}

// submit runs the completed form. Account calls may hit the database so
// they run as commands.
func (p profileModel) submit() tea.Cmd {
	accounts := p.deps.Account
	switch p.formType {
	case "signin":
		email, password := *p.email, *p.password
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), accountTimeout)
			defer cancel()
			a, err := accounts.SignIn(ctx, email, password)
			return accountMsg{account: a, err: err, action: "signin"}
		}

	case "signup":
		req := planner.SignUpRequest{
			Username:        *p.username,
			Email:           *p.email,
			Password:        *p.password,
			ConfirmPassword: *p.confirm,
			Birthday:        *p.birthday,
			AgreeTerms:      *p.terms,
		}
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), accountTimeout)
			defer cancel()
			a, err := accounts.SignUp(ctx, req)
			return accountMsg{account: a, err: err, action: "signup"}
		}

	case "picture":
		path := *p.picture
		return func() tea.Msg {
			dataURL, err := readPicture(path)
			if err != nil {
				return statusMsg{text: err.Error(), isError: true}
			}
			ctx, cancel := context.WithTimeout(context.Background(), accountTimeout)
			defer cancel()
			if err := accounts.SetProfilePicture(ctx, dataURL); err != nil {
				return statusMsg{text: userMessage(err), isError: true}
			}
			return profilePictureMsg{}
		}
	}
	return nil
}

type profilePictureMsg struct{}

// readPicture loads an image file and encodes it as a data URL.
func readPicture(path string) (string, error) {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + "/" + rest
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("could not read %s", path)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxPictureSize+1))
	if err != nil {
		return "", fmt.Errorf("could not read %s", path)
	}
	if len(data) > maxPictureSize {
		return "", fmt.Errorf("image is larger than %d MB", maxPictureSize>>20)
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%s is not an image", path)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (p profileModel) view() string {
	w := p.width - 4

	if p.formActive && p.form != nil {
		titles := map[string]string{
			"signin":  "Sign In",
			"signup":  "Create Account",
			"picture": "Profile Picture",
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(titles[p.formType]), "", p.form.View(),
		))
	}

	if !p.signedIn {
		hint := "Accounts are kept on this device only."
		if p.deps.AuthEnabled {
			hint = "Sign in to keep your profile in sync across sessions."
		}
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Profile"),
			"",
			"You are not signed in.",
			mutedStyle.Render(hint),
			"",
			mutedStyle.Render("enter: sign in  u: create account"),
		))
	}

	a := p.account
	row := func(label, value string) string {
		if value == "" {
			value = mutedStyle.Render("-")
		}
		return fmt.Sprintf("  %-10s %s", mutedStyle.Render(label), value)
	}
	picture := "not set"
	if a.ProfilePicture != "" {
		picture = successStyle.Render("set")
	}

	details := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(a.Username),
		"",
		row("Email", a.Email),
		row("Birthday", a.Birthday),
		row("Picture", picture),
	)

	stats := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Stats"),
		"",
		fmt.Sprintf("  %s %s", successStyle.Render(fmt.Sprint(p.counts.Completed)), mutedStyle.Render("tasks completed")),
		fmt.Sprintf("  %s %s", warningStyle.Render(fmt.Sprint(p.counts.Pending)), mutedStyle.Render("tasks pending")),
		fmt.Sprintf("  %s %s", highlightStyle.Render(fmt.Sprint(p.events)), mutedStyle.Render(plural(p.events, "event", "events"))),
	)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
		details, "", stats, "",
		mutedStyle.Render("i: set picture  o: sign out"),
	))
}
