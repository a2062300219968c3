package models

// ProductivityRecord is derived per worker from a task snapshot. It is never
// persisted; internal/stats recomputes it on every request.
type ProductivityRecord struct {
	WorkerID          int64   `json:"worker_id"`
	Name              string  `json:"name"`
	CompletionRate    int     `json:"completion_rate"`
	CompletedTasks    int     `json:"completed_tasks"`
	InProgressTasks   int     `json:"in_progress_tasks"`
	PendingTasks      int     `json:"pending_tasks"`
	TotalTasks        int     `json:"total_tasks"`
	AvgCompletionDays float64 `json:"avg_completion_time"`
}

// TaskFilters is a conjunction of predicates. Empty string means no
// constraint on that field.
type TaskFilters struct {
	Project    string `json:"project"`
	Status     string `json:"status"`
	AssignedTo string `json:"assigned_to"`
	DateRange  string `json:"date_range"`
}

func (f TaskFilters) Empty() bool {
	return f.Project == "" && f.Status == "" && f.AssignedTo == "" && f.DateRange == ""
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AssignTaskRequest struct {
	Project       int64    `json:"project"`
	Title         string   `json:"task_title"`
	Description   string   `json:"description"`
	AssignedTo    []string `json:"assigned_to"`
	AssignedShift string   `json:"assigned_shift"`
	DueDate       string   `json:"estimated_completion_datetime"`
}

type UpdateTaskRequest struct {
	Title         string   `json:"task_title,omitempty"`
	Description   string   `json:"description,omitempty"`
	Status        string   `json:"status,omitempty"`
	AssignedTo    []string `json:"assigned_to,omitempty"`
	AssignedShift string   `json:"assigned_shift,omitempty"`
	DueDate       string   `json:"estimated_completion_datetime,omitempty"`
}

type AwardPointsRequest struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
	Reason   string `json:"reason,omitempty"`
}

type RewardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
	Active      bool   `json:"active"`
}
