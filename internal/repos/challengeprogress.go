package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
	"github.com/ctfacademy/academy-backend/internal/progress"
	"github.com/ctfacademy/academy-backend/internal/types"
)

// LeaderboardEntry is one aggregated row of the completed-challenge fold.
type LeaderboardEntry struct {
	UserID         uuid.UUID `json:"user_id"`
	Username       string    `json:"username"`
	CompletedCount int64     `json:"completed_count"`
	TotalPoints    int64     `json:"total_points"`
}

// ChallengeProgressRepo is the durable store for per-(user, challenge)
// progress. All status mutations are single conditional UPDATEs; the row
// is the only serialization point, so every method that races is
// expressed as one atomic statement and reports rows affected.
type ChallengeProgressRepo interface {
	GetByUserAndChallenge(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID) (*types.ChallengeProgress, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ChallengeProgress, error)
	GetOrCreate(ctx context.Context, tx *gorm.DB, row *types.ChallengeProgress) (*types.ChallengeProgress, bool, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID, now time.Time) (int64, error)
	MarkInProgress(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID, now time.Time) (int64, error)
	SetSnapshot(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID, snapshot datatypes.JSON, now time.Time) (int64, error)
	MarkOpened(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID, now time.Time) (int64, error)
	CountCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	SumPointsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error)
	CompletionTimesByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]time.Time, error)
	Leaderboard(ctx context.Context, tx *gorm.DB, limit int) ([]*LeaderboardEntry, error)
}

type challengeProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeProgressRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeProgressRepo {
	return &challengeProgressRepo{db: db, log: baseLog.With("repo", "ChallengeProgressRepo")}
}

func (r *challengeProgressRepo) GetByUserAndChallenge(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID) (*types.ChallengeProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var row types.ChallengeProgress
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *challengeProgressRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ChallengeProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChallengeProgress
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetOrCreate inserts the row unless the (user_id, challenge_id) pair
// already exists; the unique constraint resolves create races. Returns
// the live row and whether this call created it.
func (r *challengeProgressRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, row *types.ChallengeProgress) (*types.ChallengeProgress, bool, error) {
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
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return row, true, nil
	}

	existing, err := r.GetByUserAndChallenge(ctx, tx, row.UserID, row.ChallengeID)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, gorm.ErrRecordNotFound
	}
	return existing, false, nil
}

// MarkCompleted is the award guard: only a row not yet completed takes
// the update, so of N racing completions exactly one observes 1 row
// affected.
func (r *challengeProgressRepo) MarkCompleted(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.ChallengeProgress{}).
		Where("user_id = ? AND challenge_id = ? AND status <> ?", userID, challengeID, string(progress.StatusCompleted)).
		Updates(map[string]interface{}{
			"status":       string(progress.StatusCompleted),
			"completed_at": gorm.Expr("COALESCE(completed_at, ?)", now),
			"updated_at":   now,
		})
	return res.RowsAffected, res.Error
}

func (r *challengeProgressRepo) MarkInProgress(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.ChallengeProgress{}).
		Where("user_id = ? AND challenge_id = ? AND status NOT IN ?", userID, challengeID,
			[]string{string(progress.StatusInProgress), string(progress.StatusCompleted)}).
		Updates(map[string]interface{}{
			"status":     string(progress.StatusInProgress),
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

// SetSnapshot overwrites the resumable state and marks the save healthy.
// A save on an attempted row promotes it to in_progress in the same
// statement; completed and in_progress keep their status.
func (r *challengeProgressRepo) SetSnapshot(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID, snapshot datatypes.JSON, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.ChallengeProgress{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Updates(map[string]interface{}{
			"last_state":    snapshot,
			"last_saved_ok": true,
			"status": gorm.Expr("CASE WHEN status = ? THEN ? ELSE status END",
				string(progress.StatusAttempted), string(progress.StatusInProgress)),
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

// MarkOpened is the pessimistic view-open write: the save flag drops
// regardless of its prior value, and attempted/unsolved promote to
// in_progress.
func (r *challengeProgressRepo) MarkOpened(ctx context.Context, tx *gorm.DB, userID, challengeID uuid.UUID, now time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.ChallengeProgress{}).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Updates(map[string]interface{}{
			"last_saved_ok": false,
			"status": gorm.Expr("CASE WHEN status IN (?, ?) THEN ? ELSE status END",
				string(progress.StatusAttempted), string(progress.StatusUnsolved), string(progress.StatusInProgress)),
			"updated_at": now,
		})
	return res.RowsAffected, res.Error
}

func (r *challengeProgressRepo) CountCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	err := transaction.WithContext(ctx).
		Model(&types.ChallengeProgress{}).
		Where("user_id = ? AND status = ?", userID, string(progress.StatusCompleted)).
		Count(&count).Error
	return count, err
}

func (r *challengeProgressRepo) SumPointsByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var total int64
	err := transaction.WithContext(ctx).
		Model(&types.ChallengeProgress{}).
		Select("COALESCE(SUM(challenges.points), 0)").
		Joins("JOIN challenges ON challenges.id = challenge_progress.challenge_id").
		Where("challenge_progress.user_id = ? AND challenge_progress.status = ?", userID, string(progress.StatusCompleted)).
		Scan(&total).Error
	return total, err
}

func (r *challengeProgressRepo) CompletionTimesByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]time.Time, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var times []time.Time
	err := transaction.WithContext(ctx).
		Model(&types.ChallengeProgress{}).
		Where("user_id = ? AND status = ? AND completed_at IS NOT NULL", userID, string(progress.StatusCompleted)).
		Order("completed_at DESC").
		Pluck("completed_at", &times).Error
	if err != nil {
		return nil, err
	}
	return times, nil
}

func (r *challengeProgressRepo) Leaderboard(ctx context.Context, tx *gorm.DB, limit int) ([]*LeaderboardEntry, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 10
	}

	var entries []*LeaderboardEntry
	err := transaction.WithContext(ctx).Raw(`
		SELECT users.id AS user_id,
		       users.username AS username,
		       COUNT(challenge_progress.id) AS completed_count,
		       COALESCE(SUM(challenges.points), 0) AS total_points
		FROM users
		JOIN challenge_progress ON challenge_progress.user_id = users.id AND challenge_progress.status = ?
		JOIN challenges ON challenges.id = challenge_progress.challenge_id
		GROUP BY users.id, users.username
		ORDER BY total_points DESC, completed_count DESC, users.username ASC
		LIMIT ?`, string(progress.StatusCompleted), limit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
