package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"workforce-portal/gateway/internal/models"
)

func (c *Client) Workers(ctx context.Context) ([]models.Worker, error) {
	var workers []models.Worker
	if err := c.do(ctx, http.MethodGet, "/api/workers/", nil, &workers); err != nil {
		return nil, err
	}
	if workers == nil {
		workers = []models.Worker{}
	}
	return workers, nil
}

// Projects returns the project list, optionally narrowed to the projects a
// worker is assigned to.
func (c *Client) Projects(ctx context.Context, username string) ([]models.Project, error) {
	path := "/api/projects/"
	if username != "" {
		path += "?username=" + url.QueryEscape(username)
	}
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, path, nil, &projects); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []models.Project{}
	}
	return projects, nil
}

func (c *Client) Tasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks/", nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	return tasks, nil
}

func (c *Client) ManagerDashboard(ctx context.Context) (*models.Dashboard, error) {
	var dash models.Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/manager/dashboard/", nil, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

func (c *Client) ClockHistory(ctx context.Context, username string) ([]models.ClockEntry, error) {
	path := "/api/clock/history/"
	if username != "" {
		path += "?username=" + url.QueryEscape(username)
	}
	var entries []models.ClockEntry
	if err := c.do(ctx, http.MethodGet, path, nil, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.ClockEntry{}
	}
	return entries, nil
}

// Task mutations are fire-and-forget: callers re-fetch the authoritative
// list afterwards instead of trusting the mutation response body.

func (c *Client) AssignTask(ctx context.Context, req models.AssignTaskRequest) error {
	return c.do(ctx, http.MethodPost, "/api/tasks/assign/", req, nil)
}

func (c *Client) UpdateTask(ctx context.Context, id int64, req models.UpdateTaskRequest) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%d/", id), req, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d/", id), nil, nil)
}

// CompleteTask returns the completed task so the caller can apply its narrow
// optimistic update before the re-fetch reconciles.
func (c *Client) CompleteTask(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/complete/", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}
