package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quizmaster-app/quiz-gateway/internal/api"
	"github.com/quizmaster-app/quiz-gateway/internal/attempt"
	"github.com/quizmaster-app/quiz-gateway/internal/cache"
	"github.com/quizmaster-app/quiz-gateway/internal/config"
	"github.com/quizmaster-app/quiz-gateway/internal/export"
	"github.com/quizmaster-app/quiz-gateway/internal/handlers"
	"github.com/quizmaster-app/quiz-gateway/internal/session"
	"github.com/quizmaster-app/quiz-gateway/internal/utils"
	"github.com/quizmaster-app/quiz-gateway/internal/validator"
	"github.com/quizmaster-app/quiz-gateway/pkg"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		utils.NewDefaultLogger().Error("failed to load config", "error", err)
		os.Exit(1)
	}

	var logger utils.Logger
	if cfg.Environment == "production" {
		logger = utils.NewDefaultLogger()
		gin.SetMode(gin.ReleaseMode)
	} else {
		logger = utils.NewDevelopmentLogger()
	}

	redisClient, err := pkg.NewRedisClient(cfg)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	cacheService := cache.NewRedisCache(redisClient, logger)

	baseClient := api.NewClient(cfg.UpstreamURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}),
		api.WithRefreshSkew(cfg.RefreshSkew),
		api.WithLogger(logger),
	)

	store := session.NewStore(cacheService, baseClient, cfg.SessionTTL, logger)
	attempts := attempt.NewManager(func(sessionID string) attempt.UpstreamClient {
		return store.Client(sessionID)
	}, attempt.RealClock(), logger)

	cookies := handlers.CookieSettings{
		Domain: cfg.CookieDomain,
		MaxAge: int(cfg.SessionTTL / time.Second),
		Secure: cfg.Environment == "production",
	}

	manager := handlers.NewHandlerManager(
		store,
		attempts,
		cacheService,
		export.NewService(logger),
		validator.New(),
		cookies,
		logger,
	)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))
	router.Use(utils.ContextLogger(logger))
	manager.SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("quiz gateway listening", "port", cfg.Port, "upstream", cfg.UpstreamURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
