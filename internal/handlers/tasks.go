package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"workforce-portal/gateway/internal/live"
	"workforce-portal/gateway/internal/models"
)

func taskIDFromQuery(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	return id, err == nil && id > 0
}

// CompleteTask is the one optimistic path: the mutation response is returned
// to the caller immediately while the broadcast tells every dashboard to
// re-fetch and reconcile.
func (h *Handler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := taskIDFromQuery(r)
	if !ok {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	s := sessionFrom(r)
	task, err := s.Client.CompleteTask(r.Context(), id)
	if err != nil {
		writeBackendError(w, err)
		return
	}

	h.hub.Broadcast(live.EventTasksUpdated, map[string]interface{}{"task_id": id})
	writeJSON(w, http.StatusOK, task)
}

// AssignTask validates locally before any network call; a missing or
// malformed due date is surfaced against the field, not as a generic error.
func (h *Handler) AssignTask(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.AssignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if field, msg := validateAssign(req); field != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"field": field,
			"error": msg,
		})
		return
	}

	s := sessionFrom(r)
	if err := s.Client.AssignTask(r.Context(), req); err != nil {
		writeBackendError(w, err)
		return
	}

	h.hub.Broadcast(live.EventTasksUpdated, nil)
	h.respondWithTasks(w, r)
}

func validateAssign(req models.AssignTaskRequest) (field, msg string) {
	if req.Project <= 0 {
		return "project", "A project is required"
	}
	if req.Title == "" {
		return "task_title", "A title is required"
	}
	if len(req.AssignedTo) == 0 {
		return "assigned_to", "At least one assignee is required"
	}
	if req.DueDate == "" {
		return "estimated_completion_datetime", "A due date is required"
	}
	if _, err := time.Parse(time.RFC3339, req.DueDate); err != nil {
		return "estimated_completion_datetime", "Due date must be an RFC 3339 timestamp"
	}
	return "", ""
}

func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodPost && r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := taskIDFromQuery(r)
	if !ok {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	var req models.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	s := sessionFrom(r)
	if err := s.Client.UpdateTask(r.Context(), id, req); err != nil {
		writeBackendError(w, err)
		return
	}

	h.hub.Broadcast(live.EventTasksUpdated, map[string]interface{}{"task_id": id})
	h.respondWithTasks(w, r)
}

func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodPost && r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := taskIDFromQuery(r)
	if !ok {
		http.Error(w, "Invalid task ID", http.StatusBadRequest)
		return
	}

	s := sessionFrom(r)
	if err := s.Client.DeleteTask(r.Context(), id); err != nil {
		writeBackendError(w, err)
		return
	}

	h.hub.Broadcast(live.EventTasksUpdated, map[string]interface{}{"task_id": id})
	h.respondWithTasks(w, r)
}

// respondWithTasks re-fetches the authoritative list after a write instead
// of trusting the mutation response body.
func (h *Handler) respondWithTasks(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	tasks, err := s.Client.Tasks(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) Points(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := sessionFrom(r)
	acct, err := s.Client.Points(r.Context(), "")
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *Handler) Rewards(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := sessionFrom(r)
	rewards, err := s.Client.Rewards(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rewards)
}

func (h *Handler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, ok := taskIDFromQuery(r)
	if !ok {
		http.Error(w, "Invalid reward ID", http.StatusBadRequest)
		return
	}

	s := sessionFrom(r)
	if err := s.Client.RedeemReward(r.Context(), id); err != nil {
		writeBackendError(w, err)
		return
	}

	h.hub.Broadcast(live.EventRewardsUpdated, map[string]interface{}{"reward_id": id})

	acct, err := s.Client.Points(r.Context(), "")
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (h *Handler) AwardPoints(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.AwardPointsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"field": "username",
			"error": "A worker is required",
		})
		return
	}
	if req.Points <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"field": "points",
			"error": "Points must be positive",
		})
		return
	}

	s := sessionFrom(r)
	if err := s.Client.AwardPoints(r.Context(), req); err != nil {
		writeBackendError(w, err)
		return
	}

	h.hub.Broadcast(live.EventPointsAwarded, map[string]interface{}{
		"username": req.Username,
		"points":   req.Points,
	})

	acct, err := s.Client.Points(r.Context(), req.Username)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// ManageRewards covers the manager-side reward CRUD on one route.
func (h *Handler) ManageRewards(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)

	s := sessionFrom(r)

	switch r.Method {
	case http.MethodGet:
		// fall through to the shared list below

	case http.MethodPost, http.MethodPut:
		var req models.RewardRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request", http.StatusBadRequest)
			return
		}
		if req.Name == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"field": "name",
				"error": "A name is required",
			})
			return
		}
		if req.Cost <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"field": "cost",
				"error": "Cost must be positive",
			})
			return
		}

		var err error
		if r.Method == http.MethodPost {
			err = s.Client.CreateReward(r.Context(), req)
		} else {
			id, ok := taskIDFromQuery(r)
			if !ok {
				http.Error(w, "Invalid reward ID", http.StatusBadRequest)
				return
			}
			err = s.Client.UpdateReward(r.Context(), id, req)
		}
		if err != nil {
			writeBackendError(w, err)
			return
		}
		h.hub.Broadcast(live.EventRewardsUpdated, nil)

	case http.MethodDelete:
		id, ok := taskIDFromQuery(r)
		if !ok {
			http.Error(w, "Invalid reward ID", http.StatusBadRequest)
			return
		}
		if err := s.Client.DeleteReward(r.Context(), id); err != nil {
			writeBackendError(w, err)
			return
		}
		h.hub.Broadcast(live.EventRewardsUpdated, map[string]interface{}{"reward_id": id})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rewards, err := s.Client.Rewards(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rewards)
}
