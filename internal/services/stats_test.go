package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ctfacademy/academy-backend/internal/repos"
	"github.com/ctfacademy/academy-backend/internal/repos/testutil"
	"github.com/ctfacademy/academy-backend/internal/requestdata"
)

func TestStreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	day := func(offset int) time.Time { return now.AddDate(0, 0, offset) }

	cases := []struct {
		name        string
		completions []time.Time
		want        int
	}{
		{"empty", nil, 0},
		{"single today", []time.Time{day(0)}, 1},
		{"single yesterday", []time.Time{day(-1)}, 1},
		{"ended two days ago", []time.Time{day(-2), day(-3)}, 0},
		{"three day run", []time.Time{day(0), day(-1), day(-2)}, 3},
		{"run with gap", []time.Time{day(0), day(-1), day(-3), day(-4)}, 2},
		{"grace day run", []time.Time{day(-1), day(-2)}, 2},
		{"multiple same day", []time.Time{day(0), day(0).Add(2 * time.Hour), day(-1)}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Streak(tc.completions, now); got != tc.want {
				t.Fatalf("Streak = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestGetUserStats(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "stats_"+uuid.NewString()[:8])
	cat := testutil.SeedCategory(t, ctx, tx, "Cat "+uuid.NewString()[:8], "cat-"+uuid.NewString()[:8])
	ch1 := testutil.SeedChallenge(t, ctx, tx, cat.ID, "A "+uuid.NewString()[:8], "a-"+uuid.NewString()[:8], 100)
	ch2 := testutil.SeedChallenge(t, ctx, tx, cat.ID, "B "+uuid.NewString()[:8], "b-"+uuid.NewString()[:8], 250)
	ch3 := testutil.SeedChallenge(t, ctx, tx, cat.ID, "C "+uuid.NewString()[:8], "c-"+uuid.NewString()[:8], 500)

	challengeRepo := repos.NewChallengeRepo(tx, log)
	progressRepo := repos.NewChallengeProgressRepo(tx, log)
	progressSvc := NewProgressService(tx, log, challengeRepo, progressRepo)
	statsSvc := NewStatsService(tx, log, progressRepo, nil)

	ctx = requestdata.WithRequestData(ctx, &requestdata.RequestData{UserID: u.ID})

	if _, err := progressSvc.UpdateStatus(ctx, ch1.ID, "completed"); err != nil {
		t.Fatalf("complete ch1: %v", err)
	}
	if _, err := progressSvc.UpdateStatus(ctx, ch2.ID, "completed"); err != nil {
		t.Fatalf("complete ch2: %v", err)
	}
	if _, err := progressSvc.UpdateStatus(ctx, ch3.ID, "in_progress"); err != nil {
		t.Fatalf("start ch3: %v", err)
	}

	stats, err := statsSvc.GetUserStats(ctx)
	if err != nil {
		t.Fatalf("GetUserStats: %v", err)
	}
	if stats.CompletedCount != 2 {
		t.Fatalf("CompletedCount = %d, want 2", stats.CompletedCount)
	}
	if stats.TotalPoints != 350 {
		t.Fatalf("TotalPoints = %d, want 350", stats.TotalPoints)
	}
	if stats.StreakDays != 1 {
		t.Fatalf("StreakDays = %d, want 1", stats.StreakDays)
	}
}

func TestLeaderboardLimitClamp(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	progressRepo := repos.NewChallengeProgressRepo(tx, log)
	statsSvc := NewStatsService(tx, log, progressRepo, nil)

	for _, limit := range []int{0, -5, 101} {
		if _, err := statsSvc.Leaderboard(ctx, limit); err != nil {
			t.Fatalf("Leaderboard(%d): %v", limit, err)
		}
	}
}
