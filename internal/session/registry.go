package session

import (
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"workforce-portal/gateway/internal/backend"
	"workforce-portal/gateway/internal/models"
)

const CookieName = "portal_session"

// Session is one browser's state in the gateway: its own backend client
// (own cookie jar), auth store and role resolver. Nothing here is shared
// across sessions.
type Session struct {
	ID        string
	Client    *backend.Client
	Auth      *Store
	Role      *RoleResolver
	CreatedAt time.Time
}

func (s *Session) Username() string {
	if snap := s.Auth.Snapshot(); snap.User != nil {
		return snap.User.Username
	}
	return ""
}

// Registry maps session cookies to live sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

func (r *Registry) Create(client *backend.Client, user *models.UserProfile) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Client:    client,
		Auth:      NewStore(),
		Role:      NewRoleResolver(),
		CreatedAt: time.Now(),
	}
	s.Auth.SetAuthenticated(user)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	log.Printf("session created for %s", user.Username)
	return s
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if time.Since(s.CreatedAt) > r.ttl {
		r.Delete(id)
		return nil, false
	}
	return s, true
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// FromRequest resolves the portal session cookie, if any.
func (r *Registry) FromRequest(req *http.Request) (*Session, bool) {
	cookie, err := req.Cookie(CookieName)
	if err != nil {
		return nil, false
	}
	return r.Get(cookie.Value)
}

func (r *Registry) SetCookie(w http.ResponseWriter, s *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(r.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (r *Registry) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Count reports live sessions for the health endpoint.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
