package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"workforce-portal/gateway/internal/models"
	"workforce-portal/gateway/internal/stats"
)

// ErrNoTasks means the filtered set is empty; callers surface a notification
// instead of producing a file.
var ErrNoTasks = errors.New("no tasks to export")

const timestampLayout = "2006-01-02 15:04"

var csvHeader = []string{
	"Project", "Title", "Description", "Assigned To", "Due Date",
	"Status", "Shift", "Created", "Updated", "Status Changed",
}

// WriteCSV serializes the task list as a fixed 10-column report: header plus
// one line per task, every field double-quote wrapped with internal quotes
// doubled.
func WriteCSV(w io.Writer, tasks []models.Task, projects []models.Project) error {
	if len(tasks) == 0 {
		return ErrNoTasks
	}

	if err := writeRow(w, csvHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		if err := writeRow(w, taskRow(t, projects)); err != nil {
			return err
		}
	}
	return nil
}

func taskRow(t models.Task, projects []models.Project) []string {
	name, ok := stats.ProjectName(projects, t.Project)
	if !ok {
		name = "Unknown"
	}
	return []string{
		name,
		t.Title,
		t.Description,
		strings.Join(t.AssignedTo, ", "),
		formatOptional(t.DueDate),
		t.Status,
		t.AssignedShift,
		t.CreatedAt.Format(timestampLayout),
		t.UpdatedAt.Format(timestampLayout),
		t.StatusChanged.Format(timestampLayout),
	}
}

func writeRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := fmt.Fprintln(w, strings.Join(quoted, ","))
	return err
}

func formatOptional(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(timestampLayout)
}

// CSVFileName names the download after the export date.
func CSVFileName() string {
	return "tasks_" + time.Now().Format("2006-01-02") + ".csv"
}
