package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"workforce-portal/gateway/internal/backend"
	"workforce-portal/gateway/internal/config"
	"workforce-portal/gateway/internal/guard"
	"workforce-portal/gateway/internal/live"
	"workforce-portal/gateway/internal/models"
	"workforce-portal/gateway/internal/services"
	"workforce-portal/gateway/internal/session"
)

// Handler owns the gateway's HTTP surface: auth endpoints, guarded worker
// and manager routes, the live-update socket and the health/metrics pair.
type Handler struct {
	cfg       *config.Config
	registry  *session.Registry
	hub       *live.Hub
	startedAt time.Time
}

func New(cfg *config.Config, registry *session.Registry, hub *live.Hub) *Handler {
	return &Handler{
		cfg:       cfg,
		registry:  registry,
		hub:       hub,
		startedAt: time.Now(),
	}
}

// Router wires every route. Worker routes sit behind the authentication
// guard; the manager subtree additionally requires the manager role.
func (h *Handler) Router() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", h.Login)
	mux.HandleFunc("/api/auth/logout", h.Logout)
	mux.HandleFunc("/api/auth/session", h.SessionState)

	mux.HandleFunc(guard.LoginPath, h.loginPage)
	mux.HandleFunc(guard.ManagerLoginPath, h.loginPage)
	mux.HandleFunc(guard.UnauthorizedPath, h.unauthorizedPage)

	mux.HandleFunc("/api/health", h.Health)
	mux.HandleFunc("/api/metrics", h.Metrics)

	mux.Handle("/ws", guard.RequireAuth(h.registry, http.HandlerFunc(h.hub.HandleWS)))

	auth := func(fn http.HandlerFunc) http.Handler {
		return guard.RequireAuth(h.registry, fn)
	}
	manager := func(fn http.HandlerFunc) http.Handler {
		return guard.RequireRole(h.registry, models.RoleManager, fn)
	}

	mux.Handle("/api/me", auth(h.Me))
	mux.Handle("/api/tasks", auth(h.Tasks))
	mux.Handle("/api/tasks/complete", auth(h.CompleteTask))
	mux.Handle("/api/tasks/export", auth(h.ExportTasks))
	mux.Handle("/api/projects", auth(h.Projects))
	mux.Handle("/api/points", auth(h.Points))
	mux.Handle("/api/rewards", auth(h.Rewards))
	mux.Handle("/api/rewards/redeem", auth(h.RedeemReward))
	mux.Handle("/api/clock/history", auth(h.ClockHistory))

	mux.Handle("/api/manager/dashboard", manager(h.ManagerDashboard))
	mux.Handle("/api/manager/productivity", manager(h.Productivity))
	mux.Handle("/api/manager/top-performers", manager(h.TopPerformers))
	mux.Handle("/api/manager/tasks/assign", manager(h.AssignTask))
	mux.Handle("/api/manager/tasks/update", manager(h.UpdateTask))
	mux.Handle("/api/manager/tasks/delete", manager(h.DeleteTask))
	mux.Handle("/api/manager/points/award", manager(h.AwardPoints))
	mux.Handle("/api/manager/rewards", manager(h.ManageRewards))

	return mux
}

func (h *Handler) enableCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", h.cfg.CORSOrigins)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Cookie")
	w.Header().Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeBackendError maps the client error taxonomy onto gateway responses.
func writeBackendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, backend.ErrSessionExpired):
		http.Error(w, "Session expired, please log in again", http.StatusUnauthorized)
	case errors.Is(err, backend.ErrForbidden):
		http.Error(w, "Manager access required", http.StatusForbidden)
	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			log.Printf("backend error: %v", apiErr)
			http.Error(w, "Backend request failed", http.StatusBadGateway)
			return
		}
		log.Printf("backend unreachable: %v", err)
		http.Error(w, "Backend unavailable", http.StatusBadGateway)
	}
}

func sessionFrom(r *http.Request) *session.Session {
	s, _ := guard.SessionFrom(r.Context())
	return s
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	client, err := backend.NewClient(h.cfg.BackendBaseURL, h.cfg.RequestTimeout)
	if err != nil {
		log.Printf("client setup failed: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	profile, err := client.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			http.Error(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		writeBackendError(w, err)
		return
	}

	// A fresh login replaces any previous session for this browser.
	if old, ok := h.registry.FromRequest(r); ok {
		h.registry.Delete(old.ID)
	}

	s := h.registry.Create(client, profile)
	h.registry.SetCookie(w, s)

	writeJSON(w, http.StatusOK, profile)
	log.Printf("user logged in: %s", profile.Username)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s, ok := h.registry.FromRequest(r); ok {
		if err := s.Client.Logout(r.Context()); err != nil {
			log.Printf("backend logout failed: %v", err)
		}
		s.Auth.Invalidate()
		h.registry.Delete(s.ID)
	}
	h.registry.ClearCookie(w)

	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// SessionState reports the auth snapshot without forcing a check, so the
// browser can poll while the state settles.
func (h *Handler) SessionState(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s, ok := h.registry.FromRequest(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"authenticated": false,
			"loading":       false,
		})
		return
	}

	s.Auth.EnsureChecked(r.Context(), s.Client)
	snap := s.Auth.Snapshot()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": snap.Authenticated,
		"loading":       snap.Loading,
		"user":          snap.User,
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s := sessionFrom(r)
	profile, err := s.Client.CurrentUser(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "healthy",
		"active_sessions": h.registry.Count(),
		"live_clients":    h.hub.Count(),
		"uptime_sec":      int(time.Since(h.startedAt).Seconds()),
		"timestamp":       time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) Metrics(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	m := services.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"backend_requests": m.GetBackendRequests(),
		"backend_errors":   m.GetBackendErrors(),
		"backend_retries":  m.GetBackendRetries(),
		"avg_latency_ms":   m.GetAvgLatency(),
		"exports":          m.GetExports(),
		"websocket":        m.GetWebSocketMetrics(),
		"timestamp":        time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) loginPage(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	writeJSON(w, http.StatusOK, map[string]string{
		"page":   "login",
		"target": r.URL.Path,
	})
}

func (h *Handler) unauthorizedPage(w http.ResponseWriter, r *http.Request) {
	h.enableCORS(w)
	writeJSON(w, http.StatusForbidden, map[string]string{
		"page":  "unauthorized",
		"error": "You do not have access to this area",
	})
}
