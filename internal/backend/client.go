package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"workforce-portal/gateway/internal/services"
)

// Client talks to the labor-management backend on behalf of one portal
// session. Authentication is cookie-based, so every Client owns its own jar;
// nothing is shared between sessions.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: timeout,
		},
	}, nil
}

// do runs one backend round trip. On 401 it refreshes the token once through
// the shared refresh endpoint and retries; a second 401 becomes
// ErrSessionExpired. 403 becomes ErrForbidden. Any other non-2xx becomes a
// normalized *APIError. out, when non-nil, receives the decoded JSON body.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request for %s: %w", path, err)
		}
	}

	m := services.GetMetrics()
	start := time.Now()

	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		m.IncrementErrors()
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		m.IncrementRetries()
		if err := c.refresh(ctx); err != nil {
			return ErrSessionExpired
		}
		resp, err = c.send(ctx, method, path, body)
		if err != nil {
			m.IncrementErrors()
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			resp.Body.Close()
			return ErrSessionExpired
		}
	}
	defer resp.Body.Close()

	m.IncrementRequests()
	m.RecordLatency(time.Since(start))

	if resp.StatusCode == http.StatusForbidden {
		m.IncrementErrors()
		return ErrForbidden
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		m.IncrementErrors()
		return &APIError{
			Status:  resp.StatusCode,
			Path:    path,
			Message: readErrorMessage(resp.Body),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", path, err)
	}
	return resp, nil
}

// refresh performs the single token-refresh attempt shared by all 401 paths.
func (c *Client) refresh(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/refresh/", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Path: "/api/auth/refresh/"}
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return ""
	}
	var parsed struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return ""
	}
	if parsed.Error != "" {
		return parsed.Error
	}
	return parsed.Detail
}
