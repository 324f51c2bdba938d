package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "daybook.log")
	log, err := New(path, "debug")
	if err != nil {
		t.Fatal(err)
	}
	log.Debug("hello")
	log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Fatalf("log = %s", data)
	}
}

func TestNewLevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daybook.log")
	log, err := New(path, "warn")
	if err != nil {
		t.Fatal(err)
	}
	log.Info("quiet")
	log.Sync()

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "quiet") {
		t.Fatalf("info logged at warn level: %s", data)
	}
}

func TestNewBadLevel(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "x.log"), "loud"); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewEmptyPath(t *testing.T) {
	log, err := New("", "info")
	if err != nil || log == nil {
		t.Fatalf("log=%v err=%v", log, err)
	}
}
