package stats

import (
	"math"
	"sort"
	"strings"

	"workforce-portal/gateway/internal/models"
)

// Productivity joins the flat task list to the worker list and produces one
// record per worker with at least one assigned task. Workers with zero tasks
// are dropped: no division by zero and no noise in comparison charts.
// Output order follows the input worker order.
func Productivity(workers []models.Worker, tasks []models.Task) []models.ProductivityRecord {
	records := make([]models.ProductivityRecord, 0, len(workers))

	for _, w := range workers {
		assigned := tasksFor(w.User.Username, tasks)
		if len(assigned) == 0 {
			continue
		}

		var completed, inProgress, pending int
		for _, t := range assigned {
			switch t.Status {
			case models.StatusCompleted:
				completed++
			case models.StatusInProgress:
				inProgress++
			default:
				pending++
			}
		}

		total := len(assigned)
		rate := int(math.Round(float64(completed) / float64(total) * 100))

		records = append(records, models.ProductivityRecord{
			WorkerID:          w.User.ID,
			Name:              displayName(w.User),
			CompletionRate:    rate,
			CompletedTasks:    completed,
			InProgressTasks:   inProgress,
			PendingTasks:      pending,
			TotalTasks:        total,
			AvgCompletionDays: avgCompletionDays(assigned),
		})
	}

	return records
}

// avgCompletionDays averages (completed_at - created_at) over completed
// tasks that carry both timestamps. Completed tasks missing completed_at
// still count toward the completion rate but not toward timing.
func avgCompletionDays(tasks []models.Task) float64 {
	var sum float64
	var n int
	for _, t := range tasks {
		if t.Status != models.StatusCompleted || t.CompletedAt == nil || t.CreatedAt.IsZero() {
			continue
		}
		sum += t.CompletedAt.Sub(t.CreatedAt).Hours() / 24
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func tasksFor(username string, tasks []models.Task) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		for _, assignee := range t.AssignedTo {
			if assignee == username {
				out = append(out, t)
				break
			}
		}
	}
	return out
}

func displayName(u models.UserProfile) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// ProjectName resolves a task's numeric project id against the loaded
// project list. The second return is false when the id has no entry.
func ProjectName(projects []models.Project, id int64) (string, bool) {
	for _, p := range projects {
		if p.ID == id {
			return p.Name, true
		}
	}
	return "", false
}

// StatusBreakdown counts tasks per status for the dashboard charts.
func StatusBreakdown(tasks []models.Task) map[string]int {
	counts := make(map[string]int)
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}

// TopPerformers sorts a copy of the worker list descending by the backend's
// own productivity statistic. That number comes from a server aggregation
// endpoint and is not the completion rate computed by Productivity.
func TopPerformers(workers []models.Worker, limit int) []models.Worker {
	sorted := make([]models.Worker, len(workers))
	copy(sorted, workers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Productivity > sorted[j].Productivity
	})
	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}
	return sorted
}
