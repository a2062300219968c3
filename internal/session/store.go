package session

import (
	"context"
	"sync"

	"workforce-portal/gateway/internal/backend"
	"workforce-portal/gateway/internal/models"
)

// Snapshot is an atomic read of the auth state. While Loading is true,
// Authenticated is not authoritative and guards must not act on it.
type Snapshot struct {
	Authenticated bool
	Loading       bool
	User          *models.UserProfile
}

// Store is the single source of truth for "is there a valid logged-in
// principal" within one portal session.
type Store struct {
	mu            sync.RWMutex
	authenticated bool
	loading       bool
	user          *models.UserProfile
}

func NewStore() *Store {
	return &Store{loading: true}
}

// CheckAuth asks the backend whether the session is still valid. It never
// fails: transport errors count as "not authenticated". Loading settles to
// false no matter what.
func (s *Store) CheckAuth(ctx context.Context, client *backend.Client) {
	ok, err := client.CheckAuth(ctx)
	if err != nil {
		ok = false
	}

	s.mu.Lock()
	s.authenticated = ok
	s.loading = false
	if !ok {
		s.user = nil
	}
	s.mu.Unlock()
}

// EnsureChecked runs CheckAuth only if the state has not settled yet.
func (s *Store) EnsureChecked(ctx context.Context, client *backend.Client) {
	s.mu.RLock()
	settled := !s.loading
	s.mu.RUnlock()
	if settled {
		return
	}
	s.CheckAuth(ctx, client)
}

// SetAuthenticated records a successful login.
func (s *Store) SetAuthenticated(user *models.UserProfile) {
	s.mu.Lock()
	s.authenticated = true
	s.loading = false
	s.user = user
	s.mu.Unlock()
}

// Invalidate drops the principal, e.g. on logout or session expiry.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.authenticated = false
	s.loading = false
	s.user = nil
	s.mu.Unlock()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Authenticated: s.authenticated,
		Loading:       s.loading,
		User:          s.user,
	}
}
