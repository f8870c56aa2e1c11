package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
)

// AuthService exchanges credentials for a bearer token.
type AuthService struct {
	c *Client
}

// Auth returns the auth service.
func (c *Client) Auth() *AuthService {
	return &AuthService{c: c}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

// Login posts credentials to /login and returns the access token. The token
// is not stored; callers decide where it goes.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	body, err := s.c.sendJSON(ctx, http.MethodPost, "/login", loginRequest{
		Username: strings.TrimSpace(username),
		Password: password,
	})
	if err != nil {
		return "", err
	}
	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", decodeError(err)
	}
	if resp.AccessToken == "" {
		return "", &Error{Status: http.StatusOK, Code: CodeNoToken, Message: "token not received from server"}
	}
	return resp.AccessToken, nil
}

// HealthService probes /health.
type HealthService struct {
	c *Client
}

// Health returns the health service.
func (c *Client) Health() *HealthService {
	return &HealthService{c: c}
}

// HealthStatus is the decoded /health response.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// Up reports whether the backend declared itself UP.
func (h HealthStatus) Up() bool {
	return strings.EqualFold(h.Status, "UP")
}

// Check fetches /health.
func (s *HealthService) Check(ctx context.Context) (HealthStatus, error) {
	body, err := s.c.get(ctx, "/health", nil)
	if err != nil {
		return HealthStatus{}, err
	}
	var hs HealthStatus
	if err := json.Unmarshal(body, &hs); err != nil {
		return HealthStatus{}, decodeError(err)
	}
	return hs, nil
}
