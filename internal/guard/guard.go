package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"workforce-portal/gateway/internal/session"
)

// Navigation targets for rejected requests.
const (
	LoginPath        = "/login"
	ManagerLoginPath = "/manager/login"
	UnauthorizedPath = "/unauthorized"

	managerPrefix = "/manager"
)

// Outcome is a guard decision over a state snapshot. Decisions are pure;
// the middleware turns them into at most one redirect per request.
type Outcome int

const (
	Pending Outcome = iota
	Allow
	RedirectLogin
	RedirectUnauthorized
)

// LoginPathFor picks the login page by inspecting the target path for the
// manager area.
func LoginPathFor(target string) string {
	if strings.Contains(target, managerPrefix) {
		return ManagerLoginPath
	}
	return LoginPath
}

// DecideAuth gates on authentication alone. While the check is unsettled the
// outcome is Pending; Authenticated is never trusted during loading.
func DecideAuth(snap session.Snapshot) Outcome {
	if snap.Loading {
		return Pending
	}
	if !snap.Authenticated {
		return RedirectLogin
	}
	return Allow
}

// DecideRole gates on the authorization class. A failed role lookup leaves
// an empty role, which lands in RedirectUnauthorized: unauthorized, not
// unknown.
func DecideRole(auth session.Snapshot, role session.RoleSnapshot, required string) Outcome {
	if auth.Loading {
		return Pending
	}
	if !auth.Authenticated {
		return RedirectLogin
	}
	if role.Loading {
		return Pending
	}
	if role.Role != required {
		return RedirectUnauthorized
	}
	return Allow
}

type contextKey struct{}

func withSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// SessionFrom returns the portal session attached by a guard.
func SessionFrom(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(contextKey{}).(*session.Session)
	return s, ok
}

// RequireAuth wraps next so it only runs for an authenticated session.
func RequireAuth(reg *session.Registry, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := reg.FromRequest(r)
		if !ok {
			http.Redirect(w, r, LoginPathFor(r.URL.Path), http.StatusFound)
			return
		}

		s.Auth.EnsureChecked(r.Context(), s.Client)

		switch DecideAuth(s.Auth.Snapshot()) {
		case Allow:
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), s)))
		case Pending:
			writePlaceholder(w)
		default:
			http.Redirect(w, r, LoginPathFor(r.URL.Path), http.StatusFound)
		}
	})
}

// RequireRole wraps next so it only runs when the principal holds the
// required role. The role is resolved lazily on the first guarded request of
// the session.
func RequireRole(reg *session.Registry, required string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := reg.FromRequest(r)
		if !ok {
			http.Redirect(w, r, LoginPathFor(r.URL.Path), http.StatusFound)
			return
		}

		s.Auth.EnsureChecked(r.Context(), s.Client)
		s.Role.Resolve(r.Context(), s.Client)

		switch DecideRole(s.Auth.Snapshot(), s.Role.Snapshot(), required) {
		case Allow:
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), s)))
		case Pending:
			writePlaceholder(w)
		case RedirectUnauthorized:
			http.Redirect(w, r, UnauthorizedPath, http.StatusFound)
		default:
			http.Redirect(w, r, LoginPathFor(r.URL.Path), http.StatusFound)
		}
	})
}

func writePlaceholder(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "loading",
	})
}
