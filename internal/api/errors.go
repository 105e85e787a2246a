package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ===== COMMON CLIENT ERRORS =====

var (
	// Generic errors
	ErrUnauthorized  = errors.New("unauthorized access")
	ErrForbidden     = errors.New("forbidden - insufficient permissions")
	ErrInternalError = errors.New("upstream internal error")
	ErrUnavailable   = errors.New("quiz service unavailable")

	// Session errors
	ErrSessionExpired = errors.New("session expired - sign in again")

	// Quiz specific errors
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotPublished = errors.New("quiz is not published")

	// Attempt specific errors
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrAttemptNotActive = errors.New("attempt is not in progress")

	// User errors
	ErrUserNotFound = errors.New("user not found")
)

// APIError carries an upstream HTTP failure with its decoded message.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrQuizNotFound) ||
		errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrUserNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsUnauthorized checks if error represents an "unauthorized" condition.
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrSessionExpired) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		(apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden)
}

// IsAttemptNotActive checks if error represents the upstream's
// "only in-progress attempts" rejection. The upstream phrases the
// message slightly differently for submit and abandon, so match on the
// shared fragment rather than the exact string.
func IsAttemptNotActive(err error) bool {
	if errors.Is(err, ErrAttemptNotActive) {
		return true
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	msg := strings.ToLower(apiErr.Message)
	return strings.Contains(msg, "in-progress") || strings.Contains(msg, "in progress")
}

// IsActiveAttemptConflict checks for the upstream's "already has an
// active attempt" rejection on start, which signals the caller to fall
// back to resume.
func IsActiveAttemptConflict(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.StatusCode != http.StatusBadRequest && apiErr.StatusCode != http.StatusConflict {
		return false
	}
	return strings.Contains(strings.ToLower(apiErr.Message), "active attempt")
}

// IsUnavailable checks for transport-level failures where no upstream
// response was received at all.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
