package progress

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	pkgerrors "github.com/ctfacademy/academy-backend/internal/pkg/errors"
	"github.com/ctfacademy/academy-backend/internal/types"
)

// Status is the lifecycle state of a ChallengeProgress row. Completed is
// terminal: no transition leaves it. Unsolved is reserved for a future
// explicit give-up action; nothing here ever sets it.
type Status string

const (
	StatusAttempted  Status = "attempted"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusUnsolved   Status = "unsolved"
)

func (s Status) Known() bool {
	switch s {
	case StatusAttempted, StatusInProgress, StatusCompleted, StatusUnsolved:
		return true
	}
	return false
}

// ParseTarget validates a client-requested status. Only in_progress and
// completed are legal targets; everything else is a client error.
func ParseTarget(raw string) (Status, error) {
	switch Status(raw) {
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("%w: unknown target status %q", pkgerrors.ErrInvalidArgument, raw)
}

// Effect describes the side effects of a transition so the caller can
// persist and report without re-deriving them.
type Effect struct {
	PointsAwarded int
	Changed       bool
	Message       string
}

// NewRecord is the lazily created row for a first view: attempted, with
// nothing unsaved yet.
func NewRecord(userID, challengeID uuid.UUID, now time.Time) *types.ChallengeProgress {
	return &types.ChallengeProgress{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: challengeID,
		Status:      string(StatusAttempted),
		LastSavedOk: true,
		StartedAt:   now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Apply mutates rec for a requested transition and reports the effect.
// Persistence stays with the caller; re-requesting completed is a no-op
// that never re-awards points.
func Apply(rec *types.ChallengeProgress, target Status, points int, now time.Time) (Effect, error) {
	current := Status(rec.Status)

	switch target {
	case StatusInProgress:
		if current == StatusCompleted {
			return Effect{Message: "challenge already completed; status unchanged"}, nil
		}
		if current == StatusInProgress {
			return Effect{Message: "challenge already in progress"}, nil
		}
		rec.Status = string(StatusInProgress)
		rec.UpdatedAt = now
		return Effect{Changed: true, Message: "challenge marked in progress"}, nil

	case StatusCompleted:
		if current == StatusCompleted {
			return Effect{Message: "challenge already completed"}, nil
		}
		rec.Status = string(StatusCompleted)
		if rec.CompletedAt == nil {
			completed := now
			rec.CompletedAt = &completed
		}
		rec.UpdatedAt = now
		return Effect{PointsAwarded: points, Changed: true, Message: "challenge completed"}, nil
	}

	return Effect{}, fmt.Errorf("%w: unknown target status %q", pkgerrors.ErrInvalidArgument, target)
}

// Open applies the editable view-open side effect: attempted and
// unsolved promote to in_progress, and the save flag resets to false
// regardless, since the server cannot know what the editor now holds.
// Returns true when the row changed and needs persisting.
func Open(rec *types.ChallengeProgress, now time.Time) bool {
	changed := false
	switch Status(rec.Status) {
	case StatusAttempted, StatusUnsolved:
		rec.Status = string(StatusInProgress)
		changed = true
	}
	if rec.LastSavedOk {
		rec.LastSavedOk = false
		changed = true
	}
	if changed {
		rec.UpdatedAt = now
	}
	return changed
}

// ApplySave records a successful snapshot save. A save implies active
// work, so attempted promotes to in_progress; completed and in_progress
// keep their status.
func ApplySave(rec *types.ChallengeProgress, snapshot datatypes.JSON, now time.Time) {
	rec.LastState = snapshot
	rec.LastSavedOk = true
	if Status(rec.Status) == StatusAttempted {
		rec.Status = string(StatusInProgress)
	}
	rec.UpdatedAt = now
}
