package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ctfacademy/academy-backend/internal/progress"
	"github.com/ctfacademy/academy-backend/internal/repos/testutil"
)

func TestChallengeProgressRepoGetOrCreate(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	repo := NewChallengeProgressRepo(gdb, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "progress_goc")
	cat := testutil.SeedCategory(t, ctx, tx, "Web GOC", "web-goc")
	ch := testutil.SeedChallenge(t, ctx, tx, cat.ID, "SQLi Basics GOC", "sqli-basics-goc", 100)

	now := time.Now().UTC()
	row, created, err := repo.GetOrCreate(ctx, tx, progress.NewRecord(u.ID, ch.ID, now))
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !created {
		t.Fatalf("first GetOrCreate should create")
	}
	if row.Status != string(progress.StatusAttempted) || !row.LastSavedOk || row.CompletedAt != nil {
		t.Fatalf("fresh row: %+v", row)
	}

	again, created, err := repo.GetOrCreate(ctx, tx, progress.NewRecord(u.ID, ch.ID, now.Add(time.Hour)))
	if err != nil {
		t.Fatalf("GetOrCreate again: %v", err)
	}
	if created {
		t.Fatalf("second GetOrCreate must not create")
	}
	if again.ID != row.ID {
		t.Fatalf("second GetOrCreate returned a different row: %s vs %s", again.ID, row.ID)
	}

	rows, err := repo.ListByUser(ctx, tx, u.ID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("ListByUser: err=%v len=%d", err, len(rows))
	}
}

func TestChallengeProgressRepoMarkCompletedOnce(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	repo := NewChallengeProgressRepo(gdb, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "progress_complete")
	cat := testutil.SeedCategory(t, ctx, tx, "Web MC", "web-mc")
	ch := testutil.SeedChallenge(t, ctx, tx, cat.ID, "XSS Hunt MC", "xss-hunt-mc", 150)

	now := time.Now().UTC()
	if _, _, err := repo.GetOrCreate(ctx, tx, progress.NewRecord(u.ID, ch.ID, now)); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	affected, err := repo.MarkCompleted(ctx, tx, u.ID, ch.ID, now)
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if affected != 1 {
		t.Fatalf("first completion affected %d rows, want 1", affected)
	}

	affected, err = repo.MarkCompleted(ctx, tx, u.ID, ch.ID, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("MarkCompleted repeat: %v", err)
	}
	if affected != 0 {
		t.Fatalf("repeat completion affected %d rows, want 0", affected)
	}

	row, err := repo.GetByUserAndChallenge(ctx, tx, u.ID, ch.ID)
	if err != nil || row == nil {
		t.Fatalf("GetByUserAndChallenge: row=%v err=%v", row, err)
	}
	if row.Status != string(progress.StatusCompleted) || row.CompletedAt == nil {
		t.Fatalf("completed row: %+v", row)
	}
	firstCompleted := *row.CompletedAt

	// Completed is terminal: in_progress cannot take it back.
	affected, err = repo.MarkInProgress(ctx, tx, u.ID, ch.ID, now.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("MarkInProgress on completed: %v", err)
	}
	if affected != 0 {
		t.Fatalf("revert affected %d rows, want 0", affected)
	}
	row, _ = repo.GetByUserAndChallenge(ctx, tx, u.ID, ch.ID)
	if row.Status != string(progress.StatusCompleted) || !row.CompletedAt.Equal(firstCompleted) {
		t.Fatalf("completed row mutated: %+v", row)
	}
}

func TestChallengeProgressRepoSnapshotAndOpen(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	repo := NewChallengeProgressRepo(gdb, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "progress_save")
	cat := testutil.SeedCategory(t, ctx, tx, "Crypto SV", "crypto-sv")
	ch := testutil.SeedChallenge(t, ctx, tx, cat.ID, "RSA Warmup SV", "rsa-warmup-sv", 200)

	now := time.Now().UTC()
	if _, _, err := repo.GetOrCreate(ctx, tx, progress.NewRecord(u.ID, ch.ID, now)); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	// Open: save flag drops, attempted promotes.
	affected, err := repo.MarkOpened(ctx, tx, u.ID, ch.ID, now)
	if err != nil || affected != 1 {
		t.Fatalf("MarkOpened: affected=%d err=%v", affected, err)
	}
	row, _ := repo.GetByUserAndChallenge(ctx, tx, u.ID, ch.ID)
	if row.LastSavedOk || row.Status != string(progress.StatusInProgress) {
		t.Fatalf("after open: %+v", row)
	}

	// Save: snapshot stored, flag restored.
	snap := datatypes.JSON([]byte(`{"cursor":5}`))
	affected, err = repo.SetSnapshot(ctx, tx, u.ID, ch.ID, snap, now.Add(time.Second))
	if err != nil || affected != 1 {
		t.Fatalf("SetSnapshot: affected=%d err=%v", affected, err)
	}
	row, _ = repo.GetByUserAndChallenge(ctx, tx, u.ID, ch.ID)
	if !row.LastSavedOk {
		t.Fatalf("save must restore last_saved_ok")
	}
	if string(row.LastState) != `{"cursor":5}` {
		t.Fatalf("last_state = %s", row.LastState)
	}

	// Save on a completed row keeps its status.
	if _, err := repo.MarkCompleted(ctx, tx, u.ID, ch.ID, now.Add(2*time.Second)); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if _, err := repo.SetSnapshot(ctx, tx, u.ID, ch.ID, snap, now.Add(3*time.Second)); err != nil {
		t.Fatalf("SetSnapshot on completed: %v", err)
	}
	row, _ = repo.GetByUserAndChallenge(ctx, tx, u.ID, ch.ID)
	if row.Status != string(progress.StatusCompleted) {
		t.Fatalf("save downgraded status to %q", row.Status)
	}
}

func TestChallengeProgressRepoAggregates(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	repo := NewChallengeProgressRepo(gdb, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "progress_agg")
	other := testutil.SeedUser(t, ctx, tx, "progress_agg_other")
	cat := testutil.SeedCategory(t, ctx, tx, "Forensics AG", "forensics-ag")
	ch1 := testutil.SeedChallenge(t, ctx, tx, cat.ID, "PCAP Dig AG", "pcap-dig-ag", 100)
	ch2 := testutil.SeedChallenge(t, ctx, tx, cat.ID, "Disk Image AG", "disk-image-ag", 250)
	ch3 := testutil.SeedChallenge(t, ctx, tx, cat.ID, "Memory Dump AG", "memory-dump-ag", 300)

	now := time.Now().UTC()
	seed := func(userID, chID uuid.UUID, complete bool) {
		t.Helper()
		if _, _, err := repo.GetOrCreate(ctx, tx, progress.NewRecord(userID, chID, now)); err != nil {
			t.Fatalf("GetOrCreate: %v", err)
		}
		if complete {
			if affected, err := repo.MarkCompleted(ctx, tx, userID, chID, now); err != nil || affected != 1 {
				t.Fatalf("MarkCompleted: affected=%d err=%v", affected, err)
			}
		}
	}
	seed(u.ID, ch1.ID, true)
	seed(u.ID, ch2.ID, true)
	seed(u.ID, ch3.ID, false)
	seed(other.ID, ch1.ID, true)

	count, err := repo.CountCompletedByUser(ctx, tx, u.ID)
	if err != nil || count != 2 {
		t.Fatalf("CountCompletedByUser: count=%d err=%v", count, err)
	}
	points, err := repo.SumPointsByUser(ctx, tx, u.ID)
	if err != nil || points != 350 {
		t.Fatalf("SumPointsByUser: points=%d err=%v", points, err)
	}
	times, err := repo.CompletionTimesByUser(ctx, tx, u.ID)
	if err != nil || len(times) != 2 {
		t.Fatalf("CompletionTimesByUser: len=%d err=%v", len(times), err)
	}

	entries, err := repo.Leaderboard(ctx, tx, 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Leaderboard entries = %d, want 2", len(entries))
	}
	if entries[0].UserID != u.ID || entries[0].TotalPoints != 350 || entries[0].CompletedCount != 2 {
		t.Fatalf("leaderboard head: %+v", entries[0])
	}
	if entries[1].UserID != other.ID || entries[1].TotalPoints != 100 {
		t.Fatalf("leaderboard second: %+v", entries[1])
	}
}
