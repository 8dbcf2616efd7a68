package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
	"github.com/ctfacademy/academy-backend/internal/types"
)

type FavoriteRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Favorite) (int64, error)
	DeleteByUserAndChallenge(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID) (int64, error)
	Exists(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID) (bool, error)
	ListChallengeIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error)
}

type favoriteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFavoriteRepo(db *gorm.DB, baseLog *logger.Logger) FavoriteRepo {
	return &favoriteRepo{db: db, log: baseLog.With("repo", "FavoriteRepo")}
}

// Create inserts the membership row. The unique (user_id, challenge_id)
// constraint is the source of truth under a create race: a losing insert
// affects zero rows instead of producing a duplicate.
func (r *favoriteRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Favorite) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}},
			DoNothing: true,
		}).
		Create(row)
	return res.RowsAffected, res.Error
}

func (r *favoriteRepo) DeleteByUserAndChallenge(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Delete(&types.Favorite{})
	return res.RowsAffected, res.Error
}

func (r *favoriteRepo) Exists(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.Favorite{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Count(&count).Error
	return count > 0, err
}

func (r *favoriteRepo) ListChallengeIDsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var ids []uuid.UUID
	err := transaction.WithContext(ctx).
		Model(&types.Favorite{}).
		Where("user_id = ?", userID).
		Pluck("challenge_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
