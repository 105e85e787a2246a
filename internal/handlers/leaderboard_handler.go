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
)

// leaderboardTTL trades a little staleness for not hammering the
// upstream on every dashboard render.
const leaderboardTTL = 30 * time.Second

// LeaderboardHandler serves the global and per-quiz standings through a
// short-TTL cache.
type LeaderboardHandler struct {
	BaseHandler
	store *session.Store
	cache cache.CacheService
}

func NewLeaderboardHandler(store *session.Store, cacheService cache.CacheService, logger utils.Logger) *LeaderboardHandler {
	return &LeaderboardHandler{
		BaseHandler: NewBaseHandler(logger),
		store:       store,
		cache:       cacheService,
	}
}

// Global returns the cross-quiz standings.
func (h *LeaderboardHandler) Global(c *gin.Context) {
	sess := CurrentSession(c)
	h.serve(c, "leaderboard:global", func() ([]models.LeaderboardEntry, error) {
		return h.store.Client(sess.ID).GlobalLeaderboard(c.Request.Context())
	})
}

// ByQuiz returns the standings for one quiz.
func (h *LeaderboardHandler) ByQuiz(c *gin.Context) {
	quizID := ParseStringIDParam(c, "id")
	if quizID == "" {
		return
	}
	sess := CurrentSession(c)
	h.serve(c, "leaderboard:quiz:"+quizID, func() ([]models.LeaderboardEntry, error) {
		return h.store.Client(sess.ID).QuizLeaderboard(c.Request.Context(), quizID)
	})
}

func (h *LeaderboardHandler) serve(c *gin.Context, cacheKey string, fetch func() ([]models.LeaderboardEntry, error)) {
	var entries []models.LeaderboardEntry
	if err := h.cache.Get(c.Request.Context(), cacheKey, &entries); err == nil {
		h.RespondWithSuccess(c, http.StatusOK, "OK", entries)
		return
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		h.LogError(c, err, "leaderboard cache read failed")
	}

	entries, err := fetch()
	if err != nil {
		h.RespondWithUpstreamError(c, err)
		return
	}

	if err := h.cache.Set(c.Request.Context(), cacheKey, entries, leaderboardTTL); err != nil {
		h.LogError(c, err, "leaderboard cache write failed")
	}
	h.RespondWithSuccess(c, http.StatusOK, "OK", entries)
}
