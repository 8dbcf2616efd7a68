package app

import (
	"github.com/gin-gonic/gin"

	httpServer "github.com/ctfacademy/academy-backend/internal/http"
	httpH "github.com/ctfacademy/academy-backend/internal/http/handlers"
	httpMW "github.com/ctfacademy/academy-backend/internal/http/middleware"
	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
)

type Handlers struct {
	Health    *httpH.HealthHandler
	Challenge *httpH.ChallengeHandler
	Progress  *httpH.ProgressHandler
	Favorite  *httpH.FavoriteHandler
	Stats     *httpH.StatsHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(log *logger.Logger, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Challenge: httpH.NewChallengeHandler(s.Challenge, s.Progress),
		Progress:  httpH.NewProgressHandler(s.Progress),
		Favorite:  httpH.NewFavoriteHandler(s.Favorite),
		Stats:     httpH.NewStatsHandler(s.Stats),
	}
}

func wireMiddleware(log *logger.Logger, s Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, s.Auth),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware) *gin.Engine {
	return httpServer.NewRouter(httpServer.RouterConfig{
		Log:              log,
		AuthMiddleware:   middleware.Auth,
		ChallengeHandler: handlers.Challenge,
		ProgressHandler:  handlers.Progress,
		FavoriteHandler:  handlers.Favorite,
		StatsHandler:     handlers.Stats,
		HealthHandler:    handlers.Health,
	})
}
