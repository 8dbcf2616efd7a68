package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/ctfacademy/academy-backend/internal/pkg/errors"
	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
	"github.com/ctfacademy/academy-backend/internal/repos"
	"github.com/ctfacademy/academy-backend/internal/requestdata"
	"github.com/ctfacademy/academy-backend/internal/types"
)

type FavoriteService interface {
	Toggle(ctx context.Context, challengeID uuid.UUID) (bool, error)
	IsFavorited(ctx context.Context, challengeID uuid.UUID) (bool, error)
	ListChallengeIDs(ctx context.Context) ([]uuid.UUID, error)
}

type favoriteService struct {
	db            *gorm.DB
	log           *logger.Logger
	challengeRepo repos.ChallengeRepo
	favoriteRepo  repos.FavoriteRepo
}

func NewFavoriteService(db *gorm.DB, baseLog *logger.Logger, challengeRepo repos.ChallengeRepo, favoriteRepo repos.FavoriteRepo) FavoriteService {
	return &favoriteService{
		db:            db,
		log:           baseLog.With("service", "FavoriteService"),
		challengeRepo: challengeRepo,
		favoriteRepo:  favoriteRepo,
	}
}

// Toggle flips membership and reports the state after the call. The
// unique (user, challenge) constraint resolves create races, so two
// concurrent toggle-ons still leave exactly one row.
func (s *favoriteService) Toggle(ctx context.Context, challengeID uuid.UUID) (bool, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return false, pkgerrors.ErrUnauthorized
	}

	ch, err := s.challengeRepo.GetByID(ctx, nil, challengeID)
	if err != nil {
		return false, fmt.Errorf("lookup challenge: %w", err)
	}
	if ch == nil {
		return false, fmt.Errorf("%w: challenge %s", pkgerrors.ErrNotFound, challengeID)
	}

	deleted, err := s.favoriteRepo.DeleteByUserAndChallenge(ctx, nil, rd.UserID, challengeID)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	if deleted > 0 {
		return false, nil
	}

	_, err = s.favoriteRepo.Create(ctx, nil, &types.Favorite{
		ID:          uuid.New(),
		UserID:      rd.UserID,
		ChallengeID: challengeID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	// Zero rows inserted means a concurrent toggle-on won; either way
	// the pair is favorited now.
	return true, nil
}

func (s *favoriteService) IsFavorited(ctx context.Context, challengeID uuid.UUID) (bool, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return false, pkgerrors.ErrUnauthorized
	}
	return s.favoriteRepo.Exists(ctx, nil, rd.UserID, challengeID)
}

func (s *favoriteService) ListChallengeIDs(ctx context.Context) ([]uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, pkgerrors.ErrUnauthorized
	}
	return s.favoriteRepo.ListChallengeIDsByUser(ctx, nil, rd.UserID)
}
