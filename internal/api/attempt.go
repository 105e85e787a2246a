package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/quizmaster-app/quiz-gateway/internal/models"
)

type startAttemptRequest struct {
	QuizID string `json:"quizId"`
}

type submitAttemptRequest struct {
	Answers []models.AnswerSubmission `json:"answers"`
}

type endAttemptRequest struct {
	QuizID string `json:"quizId"`
	Reason string `json:"reason,omitempty"`
}

// StartAttempt creates a fresh attempt for the quiz. The upstream
// rejects the call when an in-progress attempt already exists; callers
// detect that with IsActiveAttemptConflict and fall back to
// ResumeAttempt.
func (c *Client) StartAttempt(ctx context.Context, quizID string) (*models.StartAttemptResponse, error) {
	var payload models.StartAttemptResponse
	err := c.doJSON(ctx, http.MethodPost, "/attempts/start", startAttemptRequest{QuizID: quizID}, &payload)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrQuizNotFound, quizID)
		}
		return nil, err
	}
	return &payload, nil
}

// ResumeAttempt returns the caller's existing in-progress attempt for
// the quiz along with the quiz payload and any persisted answers.
func (c *Client) ResumeAttempt(ctx context.Context, quizID string) (*models.StartAttemptResponse, error) {
	var payload models.StartAttemptResponse
	err := c.doJSON(ctx, http.MethodGet, "/attempts/resume/"+url.PathEscape(quizID), nil, &payload)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: no active attempt for quiz %s", ErrAttemptNotFound, quizID)
		}
		return nil, err
	}
	return &payload, nil
}

// SubmitAttempt commits the buffered answers. The upstream scores the
// submission; the gateway never re-implements scoring.
func (c *Client) SubmitAttempt(ctx context.Context, attemptID string, answers []models.AnswerSubmission) (*models.QuizResult, error) {
	var result models.QuizResult
	path := "/attempts/" + url.PathEscape(attemptID) + "/submit"
	err := c.doJSON(ctx, http.MethodPost, path, submitAttemptRequest{Answers: answers}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// EndAttempt abandons the caller's active attempt for the quiz. The
// reason is advisory; the upstream tolerates unknown fields.
func (c *Client) EndAttempt(ctx context.Context, quizID string, reason models.AbandonReason) error {
	req := endAttemptRequest{QuizID: quizID, Reason: string(reason)}
	return c.doJSON(ctx, http.MethodPost, "/attempts/end", req, nil)
}

// UserAttempts lists the caller's attempt history, newest first.
func (c *Client) UserAttempts(ctx context.Context) ([]models.AttemptHistoryEntry, error) {
	var attempts []models.AttemptHistoryEntry
	if err := c.doJSON(ctx, http.MethodGet, "/attempts/user", nil, &attempts); err != nil {
		return nil, err
	}
	return attempts, nil
}

// AttemptResult fetches the read-only per-question report for a
// completed attempt.
func (c *Client) AttemptResult(ctx context.Context, attemptID string) (*models.QuizResult, error) {
	var result models.QuizResult
	err := c.doJSON(ctx, http.MethodGet, "/attempts/user/"+url.PathEscape(attemptID), nil, &result)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrAttemptNotFound, attemptID)
		}
		return nil, err
	}
	return &result, nil
}
