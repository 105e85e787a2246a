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

// AttemptHandler exposes the attempt session controller over HTTP: one
// live controller per (session, quiz), driven by the endpoints below.
type AttemptHandler struct {
	BaseHandler
	store     *session.Store
	attempts  *attempt.Manager
	validator *validator.Validator
}

func NewAttemptHandler(store *session.Store, attempts *attempt.Manager, v *validator.Validator, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
		attempts:    attempts,
		validator:   v,
	}
}

// StartOrResume opens (or re-attaches to) the attempt for a quiz. A
// completed attempt answers 303 with the result location so the client
// routes to the results view instead of the quiz.
func (h *AttemptHandler) StartOrResume(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}
	sess := CurrentSession(c)

	ctrl, err := h.attempts.StartOrResume(c.Request.Context(), sess.ID, quizID)
	if err != nil {
		if errors.Is(err, attempt.ErrAlreadyCompleted) {
			c.JSON(http.StatusSeeOther, SuccessResponse{
				Message: err.Error(),
				Data:    gin.H{"redirect": "/api/v1/attempts/history"},
			})
			return
		}
		h.RespondWithUpstreamError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Attempt ready", ctrl.Snapshot())
}

// State returns the live controller's render snapshot: answer buffer,
// question index, remaining seconds.
func (h *AttemptHandler) State(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "OK", ctrl.Snapshot())
}

type SelectAnswerRequest struct {
	QuestionID string `json:"questionId" validate:"required"`
	OptionID   string `json:"optionId" validate:"required"`
}

// SelectAnswer records one option selection in the local buffer. No
// network round trip; selection rules (replace vs toggle, cap) live in
// the controller.
func (h *AttemptHandler) SelectAnswer(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req SelectAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	ctrl.Select(req.QuestionID, req.OptionID)
	h.RespondWithSuccess(c, http.StatusOK, "OK", ctrl.Snapshot())
}

type NavigateRequest struct {
	Direction string `json:"direction" validate:"required,oneof=next previous"`
}

// Navigate moves the current-question cursor.
func (h *AttemptHandler) Navigate(c *gin.Context) {
	ctrl, ok := h.controller(c)
	if !ok {
		return
	}

	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	if req.Direction == "next" {
		ctrl.Advance()
	} else {
		ctrl.Retreat()
	}
	h.RespondWithSuccess(c, http.StatusOK, "OK", ctrl.Snapshot())
}

// Submit commits the buffered answers and returns the scored result.
func (h *AttemptHandler) Submit(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}
	sess := CurrentSession(c)

	ctrl, err := h.attempts.Get(sess.ID, quizID)
	if err != nil {
		h.RespondWithError(c, http.StatusNotFound, err.Error(), err)
		return
	}

	result, err := ctrl.Submit(c.Request.Context())
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	h.attempts.Release(c.Request.Context(), sess.ID, quizID)
	h.RespondWithSuccess(c, http.StatusOK, "Attempt submitted", result)
}

type LeaveRequest struct {
	Confirmed bool `json:"confirmed"`
}

// Leave abandons the attempt on explicit, confirmed user intent. An
// unconfirmed leave is rejected; this is the navigation-guard dialog.
func (h *AttemptHandler) Leave(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}
	sess := CurrentSession(c)

	var req LeaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !req.Confirmed {
		h.RespondWithError(c, http.StatusConflict, "Leaving abandons the attempt; confirm to proceed", nil)
		return
	}

	ctrl, err := h.attempts.Get(sess.ID, quizID)
	if err != nil {
		h.RespondWithError(c, http.StatusNotFound, err.Error(), err)
		return
	}

	if err := ctrl.Abandon(c.Request.Context(), models.AbandonUser); err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	h.attempts.Release(c.Request.Context(), sess.ID, quizID)
	h.RespondWithSuccess(c, http.StatusOK, "Attempt abandoned", nil)
}

// History lists the caller's past attempts, newest first.
func (h *AttemptHandler) History(c *gin.Context) {
	sess := CurrentSession(c)
	entries, err := h.store.Client(sess.ID).UserAttempts(c.Request.Context())
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "OK", entries)
}

// Result fetches the per-question report for one finished attempt.
func (h *AttemptHandler) Result(c *gin.Context) {
	attemptID := ParseStringIDParam(c, "id")
	if attemptID == "" {
		return
	}
	sess := CurrentSession(c)

	result, err := h.store.Client(sess.ID).AttemptResult(c.Request.Context(), attemptID)
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "OK", result)
}

// controller resolves the live controller for the :id quiz, writing the
// error response itself when there is none.
func (h *AttemptHandler) controller(c *gin.Context) (*attempt.Controller, bool) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return nil, false
	}
	sess := CurrentSession(c)

	ctrl, err := h.attempts.Get(sess.ID, quizID)
	if err != nil {
		h.RespondWithError(c, http.StatusNotFound, err.Error(), err)
		return nil, false
	}
	return ctrl, true
}
