package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizmaster-app/quiz-gateway/internal/attempt"
	"github.com/quizmaster-app/quiz-gateway/internal/models"
	"github.com/quizmaster-app/quiz-gateway/internal/session"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
	"github.com/quizmaster-app/quiz-gateway/internal/validator"
)

// AuthHandler owns the login, register, logout and session-introspection
// endpoints.
type AuthHandler struct {
	BaseHandler
	store     *session.Store
	attempts  *attempt.Manager
	validator *validator.Validator
	cookies   CookieSettings
}

func NewAuthHandler(store *session.Store, attempts *attempt.Manager, v *validator.Validator, cookies CookieSettings, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
		attempts:    attempts,
		validator:   v,
		cookies:     cookies,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty" validate:"omitempty,user_role"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Login authenticates against the upstream and issues the session cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	sess, err := h.store.Login(c.Request.Context(), req.Email, req.Password, models.UserRole(req.Role))
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	session.SetCookies(c, sess, h.cookies.Domain, h.cookies.MaxAge, h.cookies.Secure)
	h.LogInfo(c, "user logged in", "login_user_id", sess.User.ID)
	h.RespondWithSuccess(c, http.StatusOK, "Logged in", sess.User)
}

// Register creates an account upstream and signs the new user in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	sess, err := h.store.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	session.SetCookies(c, sess, h.cookies.Domain, h.cookies.MaxAge, h.cookies.Secure)
	h.RespondWithSuccess(c, http.StatusCreated, "Registered", sess.User)
}

// Logout tears down the session and every live attempt controller it
// holds. Untouched attempts survive the teardown for a later resume.
func (h *AuthHandler) Logout(c *gin.Context) {
	sess := CurrentSession(c)
	if sess != nil {
		h.attempts.CloseSession(c.Request.Context(), sess.ID)
		h.store.Logout(c.Request.Context(), sess.ID)
	}

	session.ClearCookies(c, h.cookies.Domain, h.cookies.Secure)
	h.RespondWithSuccess(c, http.StatusOK, "Logged out", nil)
}

// Me re-verifies the session against the upstream and returns the
// current user.
func (h *AuthHandler) Me(c *gin.Context) {
	sess := CurrentSession(c)
	refreshed, err := h.store.RefreshIfNeeded(c.Request.Context(), sess.ID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			session.ClearCookies(c, h.cookies.Domain, h.cookies.Secure)
			h.RespondWithError(c, http.StatusUnauthorized, "Session expired, please sign in again", err)
			return
		}
		h.RespondWithUpstreamError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "OK", refreshed.User)
}
