package app

import (
	"gorm.io/gorm"

	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
	"github.com/ctfacademy/academy-backend/internal/repos"
)

type Repos struct {
	User              repos.UserRepo
	Category          repos.CategoryRepo
	Challenge         repos.ChallengeRepo
	ChallengeProgress repos.ChallengeProgressRepo
	Favorite          repos.FavoriteRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:              repos.NewUserRepo(db, log),
		Category:          repos.NewCategoryRepo(db, log),
		Challenge:         repos.NewChallengeRepo(db, log),
		ChallengeProgress: repos.NewChallengeProgressRepo(db, log),
		Favorite:          repos.NewFavoriteRepo(db, log),
	}
}
