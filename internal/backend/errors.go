package backend

import (
	"errors"
	"fmt"
)

// Sentinel errors callers can match with errors.Is. Empty result sets are
// returned as empty slices, never as one of these, so "nothing to show" and
// "failed" stay distinguishable.
var (
	// ErrSessionExpired means a 401 survived the single refresh-and-retry.
	ErrSessionExpired = errors.New("session expired")

	// ErrForbidden is the 403 translation; the backend gates these routes
	// to managers.
	ErrForbidden = errors.New("manager access required")
)

// APIError is a normalized non-2xx response from the labor backend.
type APIError struct {
	Status  int
	Path    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend %s: status %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("backend %s: status %d", e.Path, e.Status)
}
