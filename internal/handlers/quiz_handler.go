package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizmaster-app/quiz-gateway/internal/cache"
	"github.com/quizmaster-app/quiz-gateway/internal/models"
	"github.com/quizmaster-app/quiz-gateway/internal/session"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
	"github.com/quizmaster-app/quiz-gateway/internal/validator"
)

// quizListTTL keeps the catalogue cache short-lived; admin writes
// invalidate it eagerly but other gateway instances only see the TTL.
const quizListTTL = 30 * time.Second

const quizCachePrefix = "quizzes:"

// QuizHandler serves the quiz catalogue and the admin CRUD flow.
type QuizHandler struct {
	BaseHandler
	store     *session.Store
	cache     cache.CacheService
	validator *validator.Validator
}

func NewQuizHandler(store *session.Store, cacheService cache.CacheService, v *validator.Validator, logger utils.Logger) *QuizHandler {
	return &QuizHandler{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
		cache:       cacheService,
		validator:   v,
	}
}

// ListQuizzes returns the catalogue, read through the cache per role.
// Learners only ever see published quizzes.
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	sess := CurrentSession(c)
	cacheKey := quizCachePrefix + "list:" + string(sess.User.Role)

	var quizzes []models.Quiz
	if err := h.cache.Get(c.Request.Context(), cacheKey, &quizzes); err == nil {
		h.RespondWithSuccess(c, http.StatusOK, "OK", quizzes)
		return
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		h.LogError(c, err, "quiz list cache read failed")
	}

	quizzes, err := h.store.Client(sess.ID).ListQuizzes(c.Request.Context())
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}
	if sess.User.Role != models.RoleAdmin {
		quizzes = publishedOnly(quizzes)
	}

	if err := h.cache.Set(c.Request.Context(), cacheKey, quizzes, quizListTTL); err != nil {
		h.LogError(c, err, "quiz list cache write failed")
	}
	h.RespondWithSuccess(c, http.StatusOK, "OK", quizzes)
}

func publishedOnly(quizzes []models.Quiz) []models.Quiz {
	published := make([]models.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		if quiz.Published {
			published = append(published, quiz)
		}
	}
	return published
}

// GetQuiz returns one quiz. Unpublished quizzes are hidden from
// learners even if the upstream leaks them.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}
	sess := CurrentSession(c)

	quiz, err := h.store.Client(sess.ID).GetQuiz(c.Request.Context(), quizID)
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}
	if !quiz.Published && sess.User.Role != models.RoleAdmin {
		h.RespondWithError(c, http.StatusNotFound, "quiz not found", nil)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "OK", quiz)
}

// CreateQuiz creates a quiz upstream (admin only).
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req models.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	sess := CurrentSession(c)
	quiz, err := h.store.Client(sess.ID).CreateQuiz(c.Request.Context(), &req)
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	h.invalidateCatalogue(c)
	h.LogInfo(c, "quiz created", "quiz_id", quiz.ID)
	h.RespondWithSuccess(c, http.StatusCreated, "Quiz created", quiz)
}

// UpdateQuiz replaces a quiz upstream (admin only).
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}

	var req models.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	sess := CurrentSession(c)
	quiz, err := h.store.Client(sess.ID).UpdateQuiz(c.Request.Context(), quizID, &req)
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	h.invalidateCatalogue(c)
	h.RespondWithSuccess(c, http.StatusOK, "Quiz updated", quiz)
}

// DeleteQuiz removes a quiz upstream (admin only).
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}

	sess := CurrentSession(c)
	if err := h.store.Client(sess.ID).DeleteQuiz(c.Request.Context(), quizID); err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	h.invalidateCatalogue(c)
	h.LogInfo(c, "quiz deleted", "quiz_id", quizID)
	h.RespondWithSuccess(c, http.StatusOK, "Quiz deleted", nil)
}

func (h *QuizHandler) invalidateCatalogue(c *gin.Context) {
	if err := h.cache.DeletePattern(c.Request.Context(), quizCachePrefix+"*"); err != nil {
		h.LogError(c, err, "quiz cache invalidation failed")
	}
}
