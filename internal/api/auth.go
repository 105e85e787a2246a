package api

import (
	"context"
	"net/http"

	"github.com/quizmaster-app/quiz-gateway/internal/models"
)

// AuthResponse is the upstream login/register payload.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates against the upstream. The returned token is NOT
// persisted here; the session store owns that.
func (c *Client) Login(ctx context.Context, email, password string, role models.UserRole) (*AuthResponse, error) {
	var payload AuthResponse
	req := loginRequest{Email: email, Password: password, Role: string(role)}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var payload AuthResponse
	req := registerRequest{Name: name, Email: email, Password: password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/register", req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Logout tells the upstream to invalidate the token. Best effort: local
// session teardown proceeds regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me verifies the current token and returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
