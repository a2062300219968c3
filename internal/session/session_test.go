package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"workforce-portal/gateway/internal/backend"
	"workforce-portal/gateway/internal/models"
)

func testClient(t *testing.T, url string) *backend.Client {
	t.Helper()
	c, err := backend.NewClient(url, time.Second)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestStoreStartsLoading(t *testing.T) {
	s := NewStore()
	snap := s.Snapshot()
	if !snap.Loading {
		t.Errorf("fresh store must be loading")
	}
	if snap.Authenticated {
		t.Errorf("fresh store must not claim authentication")
	}
}

func TestCheckAuthSettlesOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"authenticated": true}`))
	}))
	defer srv.Close()

	s := NewStore()
	s.CheckAuth(context.Background(), testClient(t, srv.URL))

	snap := s.Snapshot()
	if snap.Loading {
		t.Errorf("loading must settle after CheckAuth")
	}
	if !snap.Authenticated {
		t.Errorf("expected authenticated")
	}
}

func TestCheckAuthTreatsFailureAsUnauthenticated(t *testing.T) {
	// unreachable backend: transport error, not a panic or a hang
	s := NewStore()
	s.CheckAuth(context.Background(), testClient(t, "http://127.0.0.1:1"))

	snap := s.Snapshot()
	if snap.Loading {
		t.Errorf("loading must settle even on failure")
	}
	if snap.Authenticated {
		t.Errorf("failure must read as not authenticated")
	}
}

func TestEnsureCheckedRunsOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"authenticated": true}`))
	}))
	defer srv.Close()

	s := NewStore()
	c := testClient(t, srv.URL)
	s.EnsureChecked(context.Background(), c)
	s.EnsureChecked(context.Background(), c)

	if got := calls.Load(); got != 1 {
		t.Errorf("expected a single check, got %d", got)
	}
}

func TestRoleResolverFetchesOncePerInstance(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"role": "worker"}`))
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	r := NewRoleResolver()
	r.Resolve(context.Background(), c)
	r.Resolve(context.Background(), c)

	if got := calls.Load(); got != 1 {
		t.Errorf("expected a single role fetch, got %d", got)
	}
	if snap := r.Snapshot(); snap.Role != models.RoleWorker || snap.Loading {
		t.Errorf("unexpected snapshot: %+v", snap)
	}

	// a new resolver re-fetches, like a fresh mount
	r2 := NewRoleResolver()
	r2.Resolve(context.Background(), c)
	if got := calls.Load(); got != 2 {
		t.Errorf("new resolver should fetch again, got %d calls", got)
	}
}

func TestRoleResolverFailureSettlesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewRoleResolver()
	r.Resolve(context.Background(), testClient(t, srv.URL))

	snap := r.Snapshot()
	if snap.Loading {
		t.Errorf("loading must settle even when the lookup fails")
	}
	if snap.Role != "" {
		t.Errorf("failed lookup must leave an empty role, got %q", snap.Role)
	}
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry(time.Hour)
	c := testClient(t, "http://127.0.0.1:1")

	s := reg.Create(c, &models.UserProfile{ID: 1, Username: "a"})
	if s.ID == "" {
		t.Fatalf("session needs an id")
	}

	got, ok := reg.Get(s.ID)
	if !ok || got.ID != s.ID {
		t.Fatalf("expected to find session %s", s.ID)
	}
	if got.Username() != "a" {
		t.Errorf("expected username a, got %q", got.Username())
	}

	reg.Delete(s.ID)
	if _, ok := reg.Get(s.ID); ok {
		t.Errorf("deleted session still resolvable")
	}
}

func TestRegistryExpiry(t *testing.T) {
	reg := NewRegistry(time.Millisecond)
	c := testClient(t, "http://127.0.0.1:1")

	s := reg.Create(c, &models.UserProfile{ID: 1, Username: "a"})
	time.Sleep(5 * time.Millisecond)

	if _, ok := reg.Get(s.ID); ok {
		t.Errorf("expired session must not resolve")
	}
	if reg.Count() != 0 {
		t.Errorf("expired session should be dropped from the registry")
	}
}

func TestRegistryCookies(t *testing.T) {
	reg := NewRegistry(time.Hour)
	c := testClient(t, "http://127.0.0.1:1")
	s := reg.Create(c, &models.UserProfile{ID: 1, Username: "a"})

	rec := httptest.NewRecorder()
	reg.SetCookie(rec, s)

	resp := rec.Result()
	cookies := resp.Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != s.ID {
		t.Fatalf("unexpected cookies: %v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.AddCookie(cookies[0])
	if got, ok := reg.FromRequest(req); !ok || got.ID != s.ID {
		t.Errorf("FromRequest did not resolve the session")
	}
}
