package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizmaster-app/quiz-gateway/internal/models"
	"github.com/quizmaster-app/quiz-gateway/internal/session"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
	"github.com/quizmaster-app/quiz-gateway/internal/validator"
)

// AdminHandler proxies the user-management surface. Routes behind this
// handler require an ADMIN session.
type AdminHandler struct {
	BaseHandler
	store     *session.Store
	validator *validator.Validator
}

func NewAdminHandler(store *session.Store, v *validator.Validator, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
		validator:   v,
	}
}

// ListUsers returns every registered user.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	sess := CurrentSession(c)
	users, err := h.store.Client(sess.ID).ListUsers(c.Request.Context())
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "OK", users)
}

type UpdateUserStatusRequest struct {
	Status models.UserStatus `json:"status" validate:"required,oneof=ACTIVE DISABLED"`
}

// UpdateUserStatus activates or disables a user account.
func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID := ParseStringIDParam(c, "id")
	if userID == "" {
		return
	}

	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	sess := CurrentSession(c)
	user, err := h.store.Client(sess.ID).UpdateUserStatus(c.Request.Context(), userID, req.Status)
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	h.LogInfo(c, "user status updated", "target_user_id", userID, "status", req.Status)
	h.RespondWithSuccess(c, http.StatusOK, "User status updated", user)
}
