package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/quizmaster-app/quiz-gateway/internal/models"
)

func (c *Client) UserProfile(ctx context.Context) (*models.Profile, error) {
	var profile models.Profile
	if err := c.doJSON(ctx, http.MethodGet, "/users/profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GlobalLeaderboard returns the cross-quiz standings.
func (c *Client) GlobalLeaderboard(ctx context.Context) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	if err := c.doJSON(ctx, http.MethodGet, "/leaderboard", nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) QuizLeaderboard(ctx context.Context, quizID string) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	path := "/leaderboard/quiz/" + url.PathEscape(quizID)
	err := c.doJSON(ctx, http.MethodGet, path, nil, &entries)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, quizID)
		}
		return nil, err
	}
	return entries, nil
}

// ===== ADMIN OPERATIONS =====

func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.doJSON(ctx, http.MethodGet, "/admin/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

type updateUserStatusRequest struct {
	Status models.UserStatus `json:"status"`
}

func (c *Client) UpdateUserStatus(ctx context.Context, userID string, status models.UserStatus) (*models.User, error) {
	var user models.User
	path := "/admin/users/" + url.PathEscape(userID) + "/status"
	err := c.doJSON(ctx, http.MethodPut, path, updateUserStatusRequest{Status: status}, &user)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		return nil, err
	}
	return &user, nil
}
