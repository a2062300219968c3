package session

import (
	"context"
	"log"
	"sync"

	"workforce-portal/gateway/internal/backend"
)

// RoleSnapshot mirrors Snapshot for the authorization class. An empty Role
// with Loading false means the lookup failed; guards treat that as
// unauthorized, not unknown.
type RoleSnapshot struct {
	Role    string
	Loading bool
}

// RoleResolver fetches and caches the principal's role independently of the
// auth store. The cache lives as long as the owning session; a new session
// re-fetches. There is no retry policy.
type RoleResolver struct {
	mu      sync.Mutex
	role    string
	loading bool
	fetched bool
}

func NewRoleResolver() *RoleResolver {
	return &RoleResolver{loading: true}
}

// Resolve performs the role lookup once per resolver. Loading settles to
// false regardless of outcome.
func (r *RoleResolver) Resolve(ctx context.Context, client *backend.Client) {
	r.mu.Lock()
	if r.fetched {
		r.mu.Unlock()
		return
	}
	r.fetched = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.loading = false
		r.mu.Unlock()
	}()

	role, err := client.FetchRole(ctx)
	if err != nil {
		log.Printf("role lookup failed: %v", err)
		return
	}

	r.mu.Lock()
	r.role = role
	r.mu.Unlock()
}

func (r *RoleResolver) Snapshot() RoleSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RoleSnapshot{Role: r.role, Loading: r.loading}
}
