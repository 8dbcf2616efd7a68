package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	pkgerrors "github.com/ctfacademy/academy-backend/internal/pkg/errors"
	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
	"github.com/ctfacademy/academy-backend/internal/progress"
	"github.com/ctfacademy/academy-backend/internal/repos"
	"github.com/ctfacademy/academy-backend/internal/requestdata"
	"github.com/ctfacademy/academy-backend/internal/types"
)

// StatusResult is the outcome of a status request, including the
// one-time point award on completion.
type StatusResult struct {
	Status        string `json:"status"`
	PointsAwarded int    `json:"points_awarded"`
	Message       string `json:"message"`
}

// ChallengeView is what the detail page renders: the catalog entry plus
// the caller's progress (last_state and last_saved_ok drive editor
// hydration and the unsaved-work warning).
type ChallengeView struct {
	Challenge *types.Challenge         `json:"challenge"`
	Progress  *types.ChallengeProgress `json:"progress,omitempty"`
}

type ProgressService interface {
	EnsureStarted(ctx context.Context, challengeID uuid.UUID) (*types.ChallengeProgress, error)
	OpenChallenge(ctx context.Context, slug string, readOnly bool) (*ChallengeView, error)
	SaveSnapshot(ctx context.Context, challengeID uuid.UUID, snapshot json.RawMessage) error
	UpdateStatus(ctx context.Context, challengeID uuid.UUID, target string) (*StatusResult, error)
}

type progressService struct {
	db            *gorm.DB
	log           *logger.Logger
	challengeRepo repos.ChallengeRepo
	progressRepo  repos.ChallengeProgressRepo
}

func NewProgressService(db *gorm.DB, baseLog *logger.Logger, challengeRepo repos.ChallengeRepo, progressRepo repos.ChallengeProgressRepo) ProgressService {
	return &progressService{
		db:            db,
		log:           baseLog.With("service", "ProgressService"),
		challengeRepo: challengeRepo,
		progressRepo:  progressRepo,
	}
}

func (s *progressService) EnsureStarted(ctx context.Context, challengeID uuid.UUID) (*types.ChallengeProgress, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, pkgerrors.ErrUnauthorized
	}

	rec, _, err := s.progressRepo.GetOrCreate(ctx, nil, progress.NewRecord(rd.UserID, challengeID, time.Now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("ensure progress record: %w", err)
	}
	return rec, nil
}

// OpenChallenge resolves the detail view. An editable open is itself a
// transition trigger: the record is created if missing, attempted and
// unsolved promote to in_progress, and the save flag drops. Those
// bookkeeping writes are best effort; a failed write is logged and the
// page still renders from last-known state.
func (s *progressService) OpenChallenge(ctx context.Context, slug string, readOnly bool) (*ChallengeView, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, pkgerrors.ErrUnauthorized
	}

	ch, err := s.challengeRepo.GetBySlug(ctx, nil, slug)
	if err != nil {
		return nil, fmt.Errorf("lookup challenge: %w", err)
	}
	if ch == nil || !ch.IsActive {
		return nil, fmt.Errorf("%w: challenge %q", pkgerrors.ErrNotFound, slug)
	}

	view := &ChallengeView{Challenge: ch}

	if readOnly {
		rec, err := s.progressRepo.GetByUserAndChallenge(ctx, nil, rd.UserID, ch.ID)
		if err != nil {
			s.log.Warn("progress read failed on read-only open", "challenge", slug, "error", err)
			return view, nil
		}
		view.Progress = rec
		return view, nil
	}

	now := time.Now().UTC()
	rec, _, err := s.progressRepo.GetOrCreate(ctx, nil, progress.NewRecord(rd.UserID, ch.ID, now))
	if err != nil {
		s.log.Warn("progress bookkeeping failed on open", "challenge", slug, "error", err)
		return view, nil
	}
	if progress.Open(rec, now) {
		if _, err := s.progressRepo.MarkOpened(ctx, nil, rd.UserID, ch.ID, now); err != nil {
			s.log.Warn("mark opened failed", "challenge", slug, "error", err)
		}
	}
	view.Progress = rec
	return view, nil
}

func (s *progressService) SaveSnapshot(ctx context.Context, challengeID uuid.UUID, snapshot json.RawMessage) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return pkgerrors.ErrUnauthorized
	}
	if len(snapshot) == 0 || !json.Valid(snapshot) {
		return fmt.Errorf("%w: snapshot must be valid JSON", pkgerrors.ErrInvalidArgument)
	}

	ch, err := s.challengeRepo.GetByID(ctx, nil, challengeID)
	if err != nil {
		return fmt.Errorf("lookup challenge: %w", err)
	}
	if ch == nil {
		return fmt.Errorf("%w: challenge %s", pkgerrors.ErrNotFound, challengeID)
	}

	now := time.Now().UTC()

	// A save that creates the record means work is already underway.
	rec := progress.NewRecord(rd.UserID, challengeID, now)
	rec.Status = string(progress.StatusInProgress)
	rec.LastState = datatypes.JSON(snapshot)
	rec.LastSavedOk = true

	_, created, err := s.progressRepo.GetOrCreate(ctx, nil, rec)
	if err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	if created {
		return nil
	}

	affected, err := s.progressRepo.SetSnapshot(ctx, nil, rd.UserID, challengeID, datatypes.JSON(snapshot), now)
	if err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("persist snapshot: progress record vanished")
	}
	return nil
}

func (s *progressService) UpdateStatus(ctx context.Context, challengeID uuid.UUID, target string) (*StatusResult, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, pkgerrors.ErrUnauthorized
	}

	parsed, err := progress.ParseTarget(target)
	if err != nil {
		return nil, err
	}

	ch, err := s.challengeRepo.GetByID(ctx, nil, challengeID)
	if err != nil {
		return nil, fmt.Errorf("lookup challenge: %w", err)
	}
	if ch == nil {
		return nil, fmt.Errorf("%w: challenge %s", pkgerrors.ErrNotFound, challengeID)
	}

	now := time.Now().UTC()
	rec, _, err := s.progressRepo.GetOrCreate(ctx, nil, progress.NewRecord(rd.UserID, challengeID, now))
	if err != nil {
		return nil, fmt.Errorf("ensure progress record: %w", err)
	}

	eff, err := progress.Apply(rec, parsed, ch.Points, now)
	if err != nil {
		return nil, err
	}
	if !eff.Changed {
		return &StatusResult{Status: rec.Status, Message: eff.Message}, nil
	}

	// The conditional update is the award guard: between our read and
	// this write another request may have completed the challenge, and
	// rows-affected tells us who won. No points without a durable write.
	switch parsed {
	case progress.StatusCompleted:
		affected, err := s.progressRepo.MarkCompleted(ctx, nil, rd.UserID, challengeID, now)
		if err != nil {
			return nil, fmt.Errorf("persist status: %w", err)
		}
		if affected == 0 {
			return &StatusResult{Status: string(progress.StatusCompleted), Message: "challenge already completed"}, nil
		}
		return &StatusResult{Status: rec.Status, PointsAwarded: eff.PointsAwarded, Message: eff.Message}, nil

	default:
		affected, err := s.progressRepo.MarkInProgress(ctx, nil, rd.UserID, challengeID, now)
		if err != nil {
			return nil, fmt.Errorf("persist status: %w", err)
		}
		if affected == 0 {
			// Lost a race with a completion or another in_progress; the
			// record is already where a legal transition put it.
			status := string(progress.StatusInProgress)
			if cur, gerr := s.progressRepo.GetByUserAndChallenge(ctx, nil, rd.UserID, challengeID); gerr == nil && cur != nil {
				status = cur.Status
			}
			return &StatusResult{Status: status, Message: "status unchanged"}, nil
		}
		return &StatusResult{Status: rec.Status, Message: eff.Message}, nil
	}
}
