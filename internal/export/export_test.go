package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"workforce-portal/gateway/internal/models"
)

var testProjects = []models.Project{
	{ID: 1, Name: "North Site"},
	{ID: 2, Name: "Depot"},
}

func mixedTasks() []models.Task {
	return []models.Task{
		{ID: 1, Project: 1, Title: "Pour foundation", Status: models.StatusPending, AssignedTo: []string{"a"}},
		{ID: 2, Project: 2, Title: "Inventory check", Status: models.StatusCompleted, AssignedTo: []string{"b"}},
		{ID: 3, Project: 1, Title: "Frame walls", Status: models.StatusPending, AssignedTo: []string{"a", "b"}},
	}
}

func TestFilterTasksEmptyInput(t *testing.T) {
	got := FilterTasks([]models.Task{}, models.TaskFilters{Status: models.StatusPending}, testProjects)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %d tasks", len(got))
	}
}

func TestFilterTasksIdentity(t *testing.T) {
	tasks := mixedTasks()
	got := FilterTasks(tasks, models.TaskFilters{}, testProjects)
	if len(got) != len(tasks) {
		t.Fatalf("identity filter dropped tasks: %d != %d", len(got), len(tasks))
	}
	for i := range got {
		if got[i].ID != tasks[i].ID {
			t.Errorf("identity filter reordered tasks at %d", i)
		}
	}
}

func TestFilterTasksByStatusPreservesOrder(t *testing.T) {
	got := FilterTasks(mixedTasks(), models.TaskFilters{Status: models.StatusPending}, testProjects)
	if len(got) != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", len(got))
	}
	if got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("order not preserved: %d, %d", got[0].ID, got[1].ID)
	}
}

func TestFilterTasksByAssigneeMembership(t *testing.T) {
	got := FilterTasks(mixedTasks(), models.TaskFilters{AssignedTo: "b"}, testProjects)
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks for b, got %d", len(got))
	}
}

func TestFilterTasksByProjectName(t *testing.T) {
	got := FilterTasks(mixedTasks(), models.TaskFilters{Project: "North Site"}, testProjects)
	if len(got) != 2 {
		t.Fatalf("expected 2 North Site tasks, got %d", len(got))
	}

	// a task whose project id is not in the loaded list silently drops out
	tasks := append(mixedTasks(), models.Task{ID: 4, Project: 99, Status: models.StatusPending})
	got = FilterTasks(tasks, models.TaskFilters{Project: "North Site"}, testProjects)
	for _, task := range got {
		if task.ID == 4 {
			t.Errorf("task with unknown project id should be excluded")
		}
	}
}

func TestFilterTasksConjunction(t *testing.T) {
	f := models.TaskFilters{Status: models.StatusPending, AssignedTo: "b", Project: "North Site"}
	got := FilterTasks(mixedTasks(), f, testProjects)
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected only task 3, got %v", got)
	}
}

func TestFilterTasksDateRange(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	today := now.Add(2 * time.Hour)
	nextWeek := now.AddDate(0, 0, 5)
	past := now.AddDate(0, 0, -3)

	tasks := []models.Task{
		{ID: 1, Status: models.StatusPending, DueDate: &today},
		{ID: 2, Status: models.StatusPending, DueDate: &nextWeek},
		{ID: 3, Status: models.StatusPending, DueDate: &past},
		{ID: 4, Status: models.StatusCompleted, DueDate: &past},
		{ID: 5, Status: models.StatusPending}, // no due date
	}

	got := filterTasksAt(tasks, models.TaskFilters{DateRange: RangeToday}, nil, now)
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("today: expected task 1, got %v", got)
	}

	got = filterTasksAt(tasks, models.TaskFilters{DateRange: RangeWeek}, nil, now)
	if len(got) != 2 {
		t.Errorf("week: expected 2 tasks, got %d", len(got))
	}

	got = filterTasksAt(tasks, models.TaskFilters{DateRange: RangeOverdue}, nil, now)
	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("overdue: expected only the pending past-due task, got %v", got)
	}
}

func TestWriteCSVLineCount(t *testing.T) {
	tasks := mixedTasks()
	var buf bytes.Buffer
	if err := WriteCSV(&buf, tasks, testProjects); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != len(tasks)+1 {
		t.Fatalf("expected %d lines, got %d", len(tasks)+1, len(lines))
	}
}

func TestWriteCSVQuoting(t *testing.T) {
	due := time.Date(2025, 6, 20, 17, 0, 0, 0, time.UTC)
	tasks := []models.Task{{
		ID:          1,
		Project:     2,
		Title:       `Check the "big" crane`,
		Description: "haul, then stack",
		Status:      models.StatusPending,
		AssignedTo:  []string{"a", "b"},
		DueDate:     &due,
	}}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, tasks, testProjects); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	row := lines[1]

	if !strings.Contains(row, `"Check the ""big"" crane"`) {
		t.Errorf("internal quotes not doubled: %s", row)
	}
	if !strings.Contains(row, `"haul, then stack"`) {
		t.Errorf("comma-bearing field not wrapped: %s", row)
	}
	if !strings.Contains(row, `"a, b"`) {
		t.Errorf("assignees not joined and wrapped: %s", row)
	}
	if !strings.HasPrefix(row, `"Depot"`) {
		t.Errorf("project name not resolved: %s", row)
	}

	// every field is quote-wrapped, so fields = quoted segments
	for _, line := range lines {
		if !strings.HasPrefix(line, `"`) || !strings.HasSuffix(line, `"`) {
			t.Errorf("line not fully quoted: %s", line)
		}
	}
}

func TestWriteCSVHeaderColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, mixedTasks(), testProjects); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	header := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")[0]
	if n := strings.Count(header, `","`) + 1; n != 10 {
		t.Errorf("expected 10 columns, got %d: %s", n, header)
	}
}

func TestWriteCSVEmptySet(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, nil, testProjects)
	if err != ErrNoTasks {
		t.Fatalf("expected ErrNoTasks, got %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("no file content should be produced for an empty set")
	}
}

func TestCSVFileName(t *testing.T) {
	name := CSVFileName()
	if !strings.HasPrefix(name, "tasks_") || !strings.HasSuffix(name, ".csv") {
		t.Errorf("unexpected file name: %s", name)
	}
	datePart := strings.TrimSuffix(strings.TrimPrefix(name, "tasks_"), ".csv")
	if _, err := time.Parse("2006-01-02", datePart); err != nil {
		t.Errorf("file name date not ISO formatted: %s", name)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, mixedTasks(), testProjects); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatalf("expected workbook bytes")
	}

	if err := WriteXLSX(&bytes.Buffer{}, nil, testProjects); err != ErrNoTasks {
		t.Errorf("expected ErrNoTasks for empty set, got %v", err)
	}
}
