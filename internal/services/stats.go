package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	redisclient "github.com/ctfacademy/academy-backend/internal/clients/redis"
	pkgerrors "github.com/ctfacademy/academy-backend/internal/pkg/errors"
	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
	"github.com/ctfacademy/academy-backend/internal/repos"
	"github.com/ctfacademy/academy-backend/internal/requestdata"
)

const leaderboardCacheTTL = 30 * time.Second

// UserStats is the per-user fold over completed progress records.
type UserStats struct {
	CompletedCount int64 `json:"completed_count"`
	TotalPoints    int64 `json:"total_points"`
	StreakDays     int   `json:"streak_days"`
}

// StatsService is the read side: it never mutates progress, only folds
// over it for the profile page and the leaderboard.
type StatsService interface {
	GetUserStats(ctx context.Context) (*UserStats, error)
	Leaderboard(ctx context.Context, limit int) ([]*repos.LeaderboardEntry, error)
}

type statsService struct {
	db           *gorm.DB
	log          *logger.Logger
	progressRepo repos.ChallengeProgressRepo
	cache        redisclient.Cache
}

// NewStatsService accepts a nil cache; leaderboard reads then always hit
// the database.
func NewStatsService(db *gorm.DB, baseLog *logger.Logger, progressRepo repos.ChallengeProgressRepo, cache redisclient.Cache) StatsService {
	return &statsService{
		db:           db,
		log:          baseLog.With("service", "StatsService"),
		progressRepo: progressRepo,
		cache:        cache,
	}
}

func (s *statsService) GetUserStats(ctx context.Context) (*UserStats, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, pkgerrors.ErrUnauthorized
	}

	completed, err := s.progressRepo.CountCompletedByUser(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("count completed: %w", err)
	}
	points, err := s.progressRepo.SumPointsByUser(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("sum points: %w", err)
	}
	times, err := s.progressRepo.CompletionTimesByUser(ctx, nil, rd.UserID)
	if err != nil {
		return nil, fmt.Errorf("completion times: %w", err)
	}

	return &UserStats{
		CompletedCount: completed,
		TotalPoints:    points,
		StreakDays:     Streak(times, time.Now().UTC()),
	}, nil
}

func (s *statsService) Leaderboard(ctx context.Context, limit int) ([]*repos.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	key := fmt.Sprintf("leaderboard:%d", limit)

	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, key); err != nil {
			s.log.Warn("leaderboard cache read failed", "error", err)
		} else if ok {
			var entries []*repos.LeaderboardEntry
			if err := json.Unmarshal(raw, &entries); err == nil {
				return entries, nil
			}
			s.log.Warn("leaderboard cache entry corrupt, refetching", "key", key)
		}
	}

	entries, err := s.progressRepo.Leaderboard(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query: %w", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(entries); err == nil {
			if err := s.cache.Set(ctx, key, raw, leaderboardCacheTTL); err != nil {
				s.log.Warn("leaderboard cache write failed", "error", err)
			}
		}
	}
	return entries, nil
}

// Streak counts the consecutive-day run of completions ending today or
// yesterday. A run that stopped two or more days ago scores zero; the
// grace day keeps the counter alive until the current day is over.
func Streak(completions []time.Time, now time.Time) int {
	if len(completions) == 0 {
		return 0
	}

	days := make(map[time.Time]struct{}, len(completions))
	for _, ts := range completions {
		t := ts.UTC()
		days[time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)] = struct{}{}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	cursor := today
	if _, ok := days[cursor]; !ok {
		cursor = today.AddDate(0, 0, -1)
		if _, ok := days[cursor]; !ok {
			return 0
		}
	}

	streak := 0
	for {
		if _, ok := days[cursor]; !ok {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
