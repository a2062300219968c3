package backend

import (
	"context"
	"errors"
	"net/http"

	"workforce-portal/gateway/internal/models"
)

// Login authenticates against the backend; the session cookies land in the
// client's jar and ride along on every later call.
func (c *Client) Login(ctx context.Context, username, password string) (*models.UserProfile, error) {
	req := models.LoginRequest{Username: username, Password: password}
	var profile models.UserProfile
	if err := c.do(ctx, http.MethodPost, "/api/auth/login/", req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout/", nil, nil)
}

// CheckAuth asks the backend whether the held credentials are still valid.
// The error return is for transport problems only; an explicit "no" comes
// back as (false, nil).
func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	var resp struct {
		Authenticated bool `json:"authenticated"`
	}
	err := c.do(ctx, http.MethodGet, "/api/auth/check/", nil, &resp)
	if errors.Is(err, ErrSessionExpired) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return resp.Authenticated, nil
}

// FetchRole looks up the principal's coarse authorization class.
func (c *Client) FetchRole(ctx context.Context) (string, error) {
	var resp struct {
		Role string `json:"role"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/users/role/", nil, &resp); err != nil {
		return "", err
	}
	return resp.Role, nil
}

func (c *Client) CurrentUser(ctx context.Context) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := c.do(ctx, http.MethodGet, "/api/users/me/", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}
