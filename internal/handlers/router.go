package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizmaster-app/quiz-gateway/internal/attempt"
	"github.com/quizmaster-app/quiz-gateway/internal/cache"
	"github.com/quizmaster-app/quiz-gateway/internal/export"
	"github.com/quizmaster-app/quiz-gateway/internal/session"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
	"github.com/quizmaster-app/quiz-gateway/internal/validator"
)

type HandlerManager struct {
	authHandler        *AuthHandler
	quizHandler        *QuizHandler
	attemptHandler     *AttemptHandler
	dashboardHandler   *DashboardHandler
	leaderboardHandler *LeaderboardHandler
	adminHandler       *AdminHandler

	store   *session.Store
	cookies CookieSettings
	logger  utils.Logger
}

func NewHandlerManager(
	store *session.Store,
	attempts *attempt.Manager,
	cacheService cache.CacheService,
	exporter *export.Service,
	v *validator.Validator,
	cookies CookieSettings,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:        NewAuthHandler(store, attempts, v, cookies, logger),
		quizHandler:        NewQuizHandler(store, cacheService, v, logger),
		attemptHandler:     NewAttemptHandler(store, attempts, v, logger),
		dashboardHandler:   NewDashboardHandler(store, exporter, logger),
		leaderboardHandler: NewLeaderboardHandler(store, cacheService, logger),
		adminHandler:       NewAdminHandler(store, v, logger),
		store:              store,
		cookies:            cookies,
		logger:             logger,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "quiz-gateway",
		})
	})

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/login", hm.authHandler.Login)
		auth.POST("/register", hm.authHandler.Register)
	}

	// Everything below requires a live session
	authed := v1.Group("")
	authed.Use(SessionMiddleware(hm.store, hm.cookies, hm.logger))
	{
		authed.POST("/auth/logout", hm.authHandler.Logout)
		authed.GET("/auth/me", hm.authHandler.Me)

		quizzes := authed.Group("/quizzes")
		{
			quizzes.GET("", hm.quizHandler.ListQuizzes)
			quizzes.GET("/:id", hm.quizHandler.GetQuiz)

			// Attempt session endpoints hang off the quiz they belong to
			quizzes.POST("/:id/attempt", hm.attemptHandler.StartOrResume)
			quizzes.GET("/:id/attempt", hm.attemptHandler.State)
			quizzes.POST("/:id/attempt/answers", hm.attemptHandler.SelectAnswer)
			quizzes.POST("/:id/attempt/navigate", hm.attemptHandler.Navigate)
			quizzes.POST("/:id/attempt/submit", hm.attemptHandler.Submit)
			quizzes.POST("/:id/attempt/leave", hm.attemptHandler.Leave)
		}

		attempts := authed.Group("/attempts")
		{
			attempts.GET("/history", hm.attemptHandler.History)
			attempts.GET("/:id/result", hm.attemptHandler.Result)
		}

		dashboard := authed.Group("/dashboard")
		{
			dashboard.GET("/profile", hm.dashboardHandler.Profile)
			dashboard.GET("/analytics", hm.dashboardHandler.Analytics)
			dashboard.GET("/export", hm.dashboardHandler.Export)
		}

		leaderboard := authed.Group("/leaderboard")
		{
			leaderboard.GET("", hm.leaderboardHandler.Global)
			leaderboard.GET("/quiz/:id", hm.leaderboardHandler.ByQuiz)
		}

		admin := authed.Group("/admin")
		admin.Use(AdminMiddleware())
		{
			admin.POST("/quizzes", hm.quizHandler.CreateQuiz)
			admin.PUT("/quizzes/:id", hm.quizHandler.UpdateQuiz)
			admin.DELETE("/quizzes/:id", hm.quizHandler.DeleteQuiz)

			admin.GET("/users", hm.adminHandler.ListUsers)
			admin.PUT("/users/:id/status", hm.adminHandler.UpdateUserStatus)
		}
	}
}
