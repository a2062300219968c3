package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"workforce-portal/gateway/internal/export"
	"workforce-portal/gateway/internal/models"
	"workforce-portal/gateway/internal/services"
	"workforce-portal/gateway/internal/stats"
)

func filtersFromQuery(r *http.Request) models.TaskFilters {
	q := r.URL.Query()
	return models.TaskFilters{
		Project:    q.Get("project"),
		Status:     q.Get("status"),
		AssignedTo: q.Get("assigned_to"),
		DateRange:  q.Get("date_range"),
	}
}

// Tasks returns the task list narrowed by the query-string filters.
func (h *Handler) Tasks(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filters := filtersFromQuery(r)

	tasks, projects, err := h.fetchTasksAndProjects(r, filters.Project != "")
	if err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, export.FilterTasks(tasks, filters, projects))
}

// fetchTasksAndProjects issues the task fetch, plus the project fetch when
// the caller needs name resolution, as one fail-fast join.
func (h *Handler) fetchTasksAndProjects(r *http.Request, needProjects bool) ([]models.Task, []models.Project, error) {
	s := sessionFrom(r)

	var tasks []models.Task
	var projects []models.Project

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		tasks, err = s.Client.Tasks(ctx)
		return err
	})
	if needProjects {
		g.Go(func() error {
			var err error
			projects, err = s.Client.Projects(ctx, "")
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tasks, projects, nil
}

// ExportTasks streams the filtered task list as a CSV or XLSX download. An
// empty filtered set produces a notification instead of a file.
func (h *Handler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filters := filtersFromQuery(r)
	tasks, projects, err := h.fetchTasksAndProjects(r, true)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	filtered := export.FilterTasks(tasks, filters, projects)

	format := r.URL.Query().Get("format")
	var name, contentType string
	var write func() error

	switch format {
	case "xlsx":
		name = export.XLSXFileName()
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		write = func() error { return export.WriteXLSX(w, filtered, projects) }
	default:
		name = export.CSVFileName()
		contentType = "text/csv"
		write = func() error { return export.WriteCSV(w, filtered, projects) }
	}

	if len(filtered) == 0 {
		writeJSON(w, http.StatusOK, map[string]string{
			"notification": "No tasks match the current filters; nothing to export",
		})
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := write(); err != nil {
		log.Printf("export failed: %v", err)
		return
	}
	services.GetMetrics().IncrementExports()
	log.Printf("exported %d tasks as %s", len(filtered), name)
}

func (h *Handler) Projects(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := sessionFrom(r)
	projects, err := s.Client.Projects(r.Context(), s.Username())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// ClockHistory returns the principal's punch records with humanized
// durations alongside the raw timestamps.
func (h *Handler) ClockHistory(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := sessionFrom(r)
	entries, err := s.Client.ClockHistory(r.Context(), s.Username())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, humanizeClockEntries(entries))
}

func humanizeClockEntries(entries []models.ClockEntry) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(entries))
	for _, e := range entries {
		row := map[string]interface{}{
			"id":        e.ID,
			"username":  e.Username,
			"clock_in":  e.ClockIn,
			"clock_out": e.ClockOut,
			"started":   humanize.Time(e.ClockIn),
		}
		if e.ClockOut != nil {
			row["duration"] = strings.TrimSpace(humanize.RelTime(e.ClockIn, *e.ClockOut, "", ""))
		} else {
			row["duration"] = "still clocked in"
		}
		out = append(out, row)
	}
	return out
}

// ManagerDashboard joins the dashboard, worker and project fetches with
// fail-fast semantics: any one failure aborts the whole view.
func (h *Handler) ManagerDashboard(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := sessionFrom(r)

	var dash *models.Dashboard
	var workers []models.Worker
	var projects []models.Project

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		dash, err = s.Client.ManagerDashboard(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		workers, err = s.Client.Workers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.Client.Projects(ctx, "")
		return err
	})
	if err := g.Wait(); err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"recent_tasks":     dash.RecentTasks,
		"clock_history":    humanizeClockEntries(dash.ClockHistory),
		"projects":         projects,
		"status_breakdown": stats.StatusBreakdown(dash.RecentTasks),
		"productivity":     stats.Productivity(workers, dash.RecentTasks),
		"top_performers":   stats.TopPerformers(workers, 5),
		"generated_at":     time.Now().Format(time.RFC3339),
	})
}

// Productivity recomputes per-worker statistics from the full task list.
func (h *Handler) Productivity(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := sessionFrom(r)

	var workers []models.Worker
	var tasks []models.Task

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		workers, err = s.Client.Workers(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = s.Client.Tasks(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		writeBackendError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats.Productivity(workers, tasks))
}

// TopPerformers ranks workers by the backend's productivity statistic.
func (h *Handler) TopPerformers(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	s := sessionFrom(r)
	workers, err := s.Client.Workers(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats.TopPerformers(workers, limit))
}
