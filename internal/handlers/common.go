package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizmaster-app/quiz-gateway/internal/api"
	"github.com/quizmaster-app/quiz-gateway/internal/attempt"
	apperrors "github.com/quizmaster-app/quiz-gateway/internal/errors"
	"github.com/quizmaster-app/quiz-gateway/internal/session"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
)

// ===== COMMON RESPONSE STRUCTURES =====

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
	Code    string      `json:"code,omitempty"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and response functionality for all handlers
type BaseHandler struct {
	logger utils.Logger
}

// NewBaseHandler creates a new base handler with logging capability
func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{
		logger: logger,
	}
}

// LogError logs error details with request context
func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.LogError(err, message, fields...)
}

// LogInfo logs informational messages with request context
func (h *BaseHandler) LogInfo(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := []interface{}{
		"request_id", c.GetHeader("X-Request-ID"),
		"user_id", h.extractUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	fields = append(fields, additionalFields...)

	h.logger.Info(message, fields...)
}

func (h *BaseHandler) extractUserID(c *gin.Context) interface{} {
	if userID, exists := c.Get("user_id"); exists {
		return userID
	}
	return nil
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	errorResp := ErrorResponse{
		Message: message,
	}
	if len(details) > 0 {
		errorResp.Details = details[0]
	}

	if err != nil {
		h.LogError(c, err, message, "status_code", statusCode)
	} else {
		h.logger.Warn(message, "status_code", statusCode, "path", c.Request.URL.Path)
	}

	c.JSON(statusCode, errorResp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// RespondWithUpstreamError maps a classified upstream or controller
// error to the matching gateway status. Session expiry additionally
// clears the auth cookies so the browser lands back on login.
func (h *BaseHandler) RespondWithUpstreamError(c *gin.Context, err error) {
	var validationErrs apperrors.ValidationErrors
	var apiErr *api.APIError

	switch {
	case errors.As(err, &validationErrs):
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrs)
	case errors.Is(err, api.ErrSessionExpired):
		h.RespondWithError(c, http.StatusUnauthorized, "Session expired, please sign in again", err)
	case api.IsUnauthorized(err):
		h.RespondWithError(c, http.StatusUnauthorized, "Not authorized", err)
	case api.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, attempt.ErrNotAllAnswered),
		errors.Is(err, attempt.ErrNotReady),
		errors.Is(err, attempt.ErrAlreadyCompleted),
		errors.Is(err, attempt.ErrAttemptAbandoned):
		h.RespondWithError(c, http.StatusConflict, err.Error(), err)
	case errors.Is(err, attempt.ErrCommitInFlight):
		h.RespondWithError(c, http.StatusTooManyRequests, err.Error(), err)
	case api.IsAttemptNotActive(err):
		h.RespondWithError(c, http.StatusConflict, err.Error(), err)
	case api.IsUnavailable(err):
		h.RespondWithError(c, http.StatusBadGateway, "Quiz service is unavailable, try again shortly", err)
	case errors.As(err, &apiErr):
		h.RespondWithError(c, apiErr.StatusCode, apiErr.Message, err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// CurrentSession returns the session the auth middleware attached.
func CurrentSession(c *gin.Context) *session.Session {
	value, exists := c.Get(contextSessionKey)
	if !exists {
		return nil
	}
	sess, ok := value.(*session.Session)
	if !ok {
		return nil
	}
	return sess
}
