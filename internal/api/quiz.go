package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/quizmaster-app/quiz-gateway/internal/models"
)

// ListQuizzes fetches the quiz catalogue. Learner sessions receive
// published quizzes only; the upstream filters on role.
func (c *Client) ListQuizzes(ctx context.Context) ([]models.Quiz, error) {
	var quizzes []models.Quiz
	if err := c.doJSON(ctx, http.MethodGet, "/quizzes", nil, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

func (c *Client) GetQuiz(ctx context.Context, quizID string) (*models.Quiz, error) {
	var quiz models.Quiz
	err := c.doJSON(ctx, http.MethodGet, "/quizzes/"+url.PathEscape(quizID), nil, &quiz)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, quizID)
		}
		return nil, err
	}
	return &quiz, nil
}

func (c *Client) CreateQuiz(ctx context.Context, req *models.CreateQuizRequest) (*models.Quiz, error) {
	var quiz models.Quiz
	if err := c.doJSON(ctx, http.MethodPost, "/quizzes", req, &quiz); err != nil {
		return nil, err
	}
	return &quiz, nil
}

func (c *Client) UpdateQuiz(ctx context.Context, quizID string, req *models.CreateQuizRequest) (*models.Quiz, error) {
	var quiz models.Quiz
	err := c.doJSON(ctx, http.MethodPut, "/quizzes/"+url.PathEscape(quizID), req, &quiz)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, quizID)
		}
		return nil, err
	}
	return &quiz, nil
}

func (c *Client) DeleteQuiz(ctx context.Context, quizID string) error {
	err := c.doJSON(ctx, http.MethodDelete, "/quizzes/"+url.PathEscape(quizID), nil, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrQuizNotFound, quizID)
		}
	}
	return err
}
