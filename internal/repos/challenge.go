package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
	"github.com/ctfacademy/academy-backend/internal/types"
)

// ChallengeRepo reads the challenge catalog. The catalog is owned by the
// admin side; this service only needs lookups and the listing.
type ChallengeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.Challenge) ([]*types.Challenge, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Challenge, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Challenge, error)
	ListActive(ctx context.Context, tx *gorm.DB, categorySlug string) ([]*types.Challenge, error)
}

type challengeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeRepo {
	return &challengeRepo{db: db, log: baseLog.With("repo", "ChallengeRepo")}
}

func (r *challengeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.Challenge) ([]*types.Challenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(rows) == 0 {
		return []*types.Challenge{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *challengeRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Challenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Challenge
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *challengeRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Challenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.Challenge
	err := transaction.WithContext(ctx).
		Preload("Category").
		Where("slug = ?", slug).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *challengeRepo) ListActive(ctx context.Context, tx *gorm.DB, categorySlug string) ([]*types.Challenge, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Preload("Category").
		Where("challenges.is_active = ?", true)
	if categorySlug != "" {
		q = q.Joins("JOIN categories ON categories.id = challenges.category_id").
			Where("categories.slug = ?", categorySlug)
	}

	var results []*types.Challenge
	if err := q.Order("challenges.title ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
