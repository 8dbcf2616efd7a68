package app

import (
	"gorm.io/gorm"

	redisclient "github.com/ctfacademy/academy-backend/internal/clients/redis"
	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
	"github.com/ctfacademy/academy-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Challenge services.ChallengeService
	Progress  services.ProgressService
	Favorite  services.FavoriteService
	Stats     services.StatsService

	Cache redisclient.Cache
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos) Services {
	log.Info("Wiring services...")

	// The leaderboard runs uncached when redis is not reachable.
	cache, err := redisclient.NewCache(log)
	if err != nil {
		log.Warn("Redis cache unavailable, leaderboard reads go to the database", "error", err)
		cache = nil
	}

	return Services{
		Auth:      services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Challenge: services.NewChallengeService(db, log, r.Category, r.Challenge),
		Progress:  services.NewProgressService(db, log, r.Challenge, r.ChallengeProgress),
		Favorite:  services.NewFavoriteService(db, log, r.Challenge, r.Favorite),
		Stats:     services.NewStatsService(db, log, r.ChallengeProgress, cache),
		Cache:     cache,
	}
}
