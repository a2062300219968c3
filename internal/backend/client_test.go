package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	c, err := NewClient(url, 2*time.Second)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestRefreshAndRetryOnce(t *testing.T) {
	var taskCalls, refreshCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		if taskCalls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[{"id": 1, "status": "pending"}]`))
	})
	mux.HandleFunc("/api/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	tasks, err := c.Tasks(context.Background())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != 1 {
		t.Errorf("unexpected tasks: %+v", tasks)
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("expected exactly 1 refresh call, got %d", got)
	}
	if got := taskCalls.Load(); got != 2 {
		t.Errorf("expected exactly 2 task calls, got %d", got)
	}
}

func TestPersistentUnauthorizedBecomesSessionExpired(t *testing.T) {
	var taskCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		taskCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Tasks(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	// one original attempt plus one retry, never more
	if got := taskCalls.Load(); got != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", got)
	}
}

func TestFailedRefreshStopsRetry(t *testing.T) {
	var taskCalls atomic.Int32

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		taskCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("/api/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Tasks(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if got := taskCalls.Load(); got != 1 {
		t.Errorf("failed refresh must not trigger a retry, got %d attempts", got)
	}
}

func TestForbiddenIsDomainError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.ManagerDashboard(context.Background())
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err.Error() != "manager access required" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestServerErrorIsNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "database down"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Workers(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", apiErr.Status)
	}
	if apiErr.Message != "database down" {
		t.Errorf("expected parsed message, got %q", apiErr.Message)
	}
}

func TestEmptyListIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	workers, err := c.Workers(context.Background())
	if err != nil {
		t.Fatalf("empty list must not be an error: %v", err)
	}
	if workers == nil || len(workers) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", workers)
	}
}

func TestCheckAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"authenticated": true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ok, err := c.CheckAuth(context.Background())
	if err != nil || !ok {
		t.Fatalf("expected authenticated, got ok=%v err=%v", ok, err)
	}
}

func TestCheckAuthExpiredSessionIsNo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	ok, err := c.CheckAuth(context.Background())
	if err != nil {
		t.Fatalf("an expired session is an answer, not an error: %v", err)
	}
	if ok {
		t.Errorf("expected not authenticated")
	}
}

func TestFetchRole(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"role": "manager"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	role, err := c.FetchRole(context.Background())
	if err != nil {
		t.Fatalf("FetchRole failed: %v", err)
	}
	if role != "manager" {
		t.Errorf("expected manager, got %q", role)
	}
}

func TestLoginStoresCookies(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "abc", Path: "/"})
		w.Write([]byte(`{"id": 1, "username": "a"}`))
	})
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("sessionid"); err != nil || cookie.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`[]`))
	})
	mux.HandleFunc("/api/auth/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	profile, err := c.Login(context.Background(), "a", "pw")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if profile.Username != "a" {
		t.Errorf("unexpected profile: %+v", profile)
	}

	if _, err := c.Tasks(context.Background()); err != nil {
		t.Errorf("cookie should ride along after login: %v", err)
	}
}
