package models

import "time"

// Task statuses as reported by the labor-management backend.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Roles returned by the role-lookup endpoint.
const (
	RoleWorker  = "worker"
	RoleManager = "manager"
)

type UserProfile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

type Worker struct {
	User        UserProfile `json:"user"`
	PhoneNumber string      `json:"phone_number,omitempty"`
	Skills      []string    `json:"skills,omitempty"`
	// Productivity is the backend's own aggregated statistic. It is not the
	// same number as the completion rate computed in internal/stats and the
	// two must stay separate.
	Productivity float64 `json:"productivity,omitempty"`
}

type Task struct {
	ID            int64      `json:"id"`
	Project       int64      `json:"project"`
	Title         string     `json:"task_title"`
	Description   string     `json:"description"`
	Status        string     `json:"status"`
	AssignedTo    []string   `json:"assigned_to"`
	AssignedShift string     `json:"assigned_shift"`
	DueDate       *time.Time `json:"estimated_completion_datetime,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	StatusChanged time.Time  `json:"status_changed_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

type Project struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Budget    float64    `json:"budget"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	Location  string     `json:"location"`
	Workers   []string   `json:"workers"`
	Documents []string   `json:"documents,omitempty"`
}

type ClockEntry struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	ClockIn  time.Time  `json:"clock_in"`
	ClockOut *time.Time `json:"clock_out,omitempty"`
	Project  int64      `json:"project,omitempty"`
}

type PointsAccount struct {
	Username string `json:"username"`
	Balance  int    `json:"balance"`
	Lifetime int    `json:"lifetime"`
}

type Reward struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
	Active      bool   `json:"active"`
}

type Dashboard struct {
	RecentTasks  []Task       `json:"recent_tasks"`
	ClockHistory []ClockEntry `json:"clock_history"`
}
