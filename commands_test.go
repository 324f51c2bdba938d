package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sadopc/daybook/internal/planner"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("daybook %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	if got := run(t, "version"); !strings.HasPrefix(got, "daybook ") {
		t.Fatalf("version output = %q", got)
	}
}

func TestExportCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.toml")
	out := filepath.Join(dir, "out")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}

	path := strings.TrimSpace(run(t, "--config", cfg, "export", "--format", "json", "--out", out))
	if filepath.Dir(path) != out || filepath.Ext(path) != ".json" {
		t.Fatalf("export path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// A fresh install is seeded with samples.
	if !strings.Contains(string(data), "Buy groceries") {
		t.Fatal("export missing sample task")
	}
	if _, err := os.Stat(cfg); err != nil {
		t.Fatalf("config should be created: %v", err)
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "config.toml"), "export", "--format", "xml"})
	cmd.SetOut(&bytes.Buffer{})
	if err := cmd.Execute(); err == nil {
		t.Fatal("xml should be rejected")
	}
}

func TestUpcomingCommand(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.toml")
	got := run(t, "--config", cfg, "upcoming", "--days", "7")
	// Samples due in 0, 1 and 5 days; the one due today is completed.
	for _, want := range []string{"Buy groceries", "Gym workout", "Complete project proposal"} {
		if !strings.Contains(got, want) {
			t.Errorf("upcoming missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Read research paper") || strings.Contains(got, "Team meeting preparation") {
		t.Errorf("upcoming shows tasks it should not:\n%s", got)
	}
}

func TestPrintUpcomingEmpty(t *testing.T) {
	var b bytes.Buffer
	printUpcoming(&b, nil)
	if b.String() != "Nothing due.\n" {
		t.Fatalf("got %q", b.String())
	}

	b.Reset()
	printUpcoming(&b, []planner.Task{{Title: "Buy milk", DueDate: "2025-01-10", DueTime: "23:59", Priority: planner.PriorityMedium, Subject: "Personal"}})
	if !strings.Contains(b.String(), "2025-01-10 23:59") || !strings.Contains(b.String(), "Buy milk") {
		t.Fatalf("got %q", b.String())
	}
}
