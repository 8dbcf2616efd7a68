package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/ctfacademy/academy-backend/internal/pkg/errors"
	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
	"github.com/ctfacademy/academy-backend/internal/repos"
	"github.com/ctfacademy/academy-backend/internal/types"
)

var slugCleanRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a title, matching how catalog entries
// have historically been addressed.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = slugCleanRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

type ChallengeService interface {
	ListCategories(ctx context.Context) ([]*types.Category, error)
	ListChallenges(ctx context.Context, categorySlug string) ([]*types.Challenge, error)
	CreateChallenge(ctx context.Context, ch *types.Challenge) error
}

type challengeService struct {
	db            *gorm.DB
	log           *logger.Logger
	categoryRepo  repos.CategoryRepo
	challengeRepo repos.ChallengeRepo
}

func NewChallengeService(db *gorm.DB, baseLog *logger.Logger, categoryRepo repos.CategoryRepo, challengeRepo repos.ChallengeRepo) ChallengeService {
	return &challengeService{
		db:            db,
		log:           baseLog.With("service", "ChallengeService"),
		categoryRepo:  categoryRepo,
		challengeRepo: challengeRepo,
	}
}

func (s *challengeService) ListCategories(ctx context.Context) ([]*types.Category, error) {
	return s.categoryRepo.List(ctx, nil)
}

func (s *challengeService) ListChallenges(ctx context.Context, categorySlug string) ([]*types.Challenge, error) {
	return s.challengeRepo.ListActive(ctx, nil, categorySlug)
}

// CreateChallenge serves catalog seeding; day-to-day catalog management
// lives with the admin side.
func (s *challengeService) CreateChallenge(ctx context.Context, ch *types.Challenge) error {
	if ch == nil || strings.TrimSpace(ch.Title) == "" {
		return fmt.Errorf("%w: challenge title required", pkgerrors.ErrInvalidArgument)
	}
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	if ch.Slug == "" {
		ch.Slug = Slugify(ch.Title)
	}
	if ch.Points <= 0 {
		ch.Points = 100
	}
	if ch.Difficulty == "" {
		ch.Difficulty = types.DifficultyEasy
	}
	_, err := s.challengeRepo.Create(ctx, nil, []*types.Challenge{ch})
	return err
}
