package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/daybook/internal/planner"
)

var csvHeader = []string{"ID", "Title", "Subject", "Priority", "Due Date", "Due Time", "Completed", "Completed At", "Created At", "Description"}

// ToCSV writes tasks as one row each, preceded by a header row.
func ToCSV(tasks []planner.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, t := range tasks {
		row := []string{
			t.ID,
			t.Title,
			t.Subject,
			string(t.Priority),
			t.DueDate,
			t.DueTime,
			strconv.FormatBool(t.Completed),
			t.CompletedAt,
			t.CreatedAt,
			t.Description,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
