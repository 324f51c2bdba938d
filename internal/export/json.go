package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sadopc/daybook/internal/planner"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

type jsonExport struct {
	ExportedAt string          `json:"exported_at"`
	TaskCount  int             `json:"task_count"`
	EventCount int             `json:"event_count"`
	Tasks      []planner.Task  `json:"tasks"`
	Events     []planner.Event `json:"events"`
}

// ToJSON writes tasks and events into one indented document.
func ToJSON(tasks []planner.Task, events []planner.Event, path string) error {
	if tasks == nil {
		tasks = []planner.Task{}
	}
	if events == nil {
		events = []planner.Event{}
	}
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		TaskCount:  len(tasks),
		EventCount: len(events),
		Tasks:      tasks,
		Events:     events,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

// Write exports in format f to a dated file under dir and returns its path.
func Write(f Format, dir string, tasks []planner.Task, events []planner.Event, now time.Time) (string, error) {
	path := filepath.Join(dir, Filename(f, now))
	switch f {
	case FormatCSV:
		return path, ToCSV(tasks, path)
	case FormatJSON:
		return path, ToJSON(tasks, events, path)
	}
	return "", fmt.Errorf("unknown export format %q", f)
}

func Filename(f Format, now time.Time) string {
	return fmt.Sprintf("daybook-export-%s.%s", now.Format("2006-01-02"), f)
}
