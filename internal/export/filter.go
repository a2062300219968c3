package export

import (
	"time"

	"workforce-portal/gateway/internal/models"
	"workforce-portal/gateway/internal/stats"
)

// Named due-date windows accepted by TaskFilters.DateRange.
const (
	RangeToday   = "today"
	RangeWeek    = "week"
	RangeMonth   = "month"
	RangeOverdue = "overdue"
)

// FilterTasks keeps a task iff every non-empty filter field matches. The
// project filter matches by resolved project name: a task whose project id
// is absent from the loaded project list is excluded, silently. AssignedTo
// is a membership test on the assignee list, not equality. Order is
// preserved; an empty filter set is the identity.
func FilterTasks(tasks []models.Task, f models.TaskFilters, projects []models.Project) []models.Task {
	return filterTasksAt(tasks, f, projects, time.Now())
}

func filterTasksAt(tasks []models.Task, f models.TaskFilters, projects []models.Project, now time.Time) []models.Task {
	if f.Empty() {
		return tasks
	}

	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.AssignedTo != "" && !contains(t.AssignedTo, f.AssignedTo) {
			continue
		}
		if f.Project != "" {
			name, ok := stats.ProjectName(projects, t.Project)
			if !ok || name != f.Project {
				continue
			}
		}
		if f.DateRange != "" && !inRange(t, f.DateRange, now) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// inRange tests the due date against a named window. Tasks without a due
// date never match a window.
func inRange(t models.Task, window string, now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	due := *t.DueDate
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch window {
	case RangeToday:
		return !due.Before(today) && due.Before(today.AddDate(0, 0, 1))
	case RangeWeek:
		return !due.Before(today) && due.Before(today.AddDate(0, 0, 7))
	case RangeMonth:
		return !due.Before(today) && due.Before(today.AddDate(0, 1, 0))
	case RangeOverdue:
		return due.Before(now) && t.Status != models.StatusCompleted
	default:
		return false
	}
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
