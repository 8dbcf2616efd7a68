package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/ctfacademy/academy-backend/internal/http/handlers"
	httpMW "github.com/ctfacademy/academy-backend/internal/http/middleware"
	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware

	ChallengeHandler *httpH.ChallengeHandler
	ProgressHandler  *httpH.ProgressHandler
	FavoriteHandler  *httpH.FavoriteHandler
	StatsHandler     *httpH.StatsHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Catalog
		if cfg.ChallengeHandler != nil {
			protected.GET("/categories", cfg.ChallengeHandler.ListCategories)
			protected.GET("/challenges", cfg.ChallengeHandler.ListChallenges)
			protected.GET("/challenges/:slug", cfg.ChallengeHandler.GetChallenge)
		}

		// Progress
		if cfg.ProgressHandler != nil {
			protected.POST("/progress/:challengeID/save", cfg.ProgressHandler.Save)
			protected.POST("/progress/:challengeID/status", cfg.ProgressHandler.UpdateStatus)
		}

		// Favorites
		if cfg.FavoriteHandler != nil {
			protected.GET("/favorites", cfg.FavoriteHandler.List)
			protected.POST("/favorites/:challengeID/toggle", cfg.FavoriteHandler.Toggle)
		}

		// Stats
		if cfg.StatsHandler != nil {
			protected.GET("/me/stats", cfg.StatsHandler.GetMyStats)
			protected.GET("/leaderboard", cfg.StatsHandler.Leaderboard)
		}
	}

	return r
}
