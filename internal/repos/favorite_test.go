package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ctfacademy/academy-backend/internal/repos/testutil"
	"github.com/ctfacademy/academy-backend/internal/types"
)

func TestFavoriteRepo(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	repo := NewFavoriteRepo(gdb, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "favorite_repo")
	cat := testutil.SeedCategory(t, ctx, tx, "Pwn FV", "pwn-fv")
	ch := testutil.SeedChallenge(t, ctx, tx, cat.ID, "Stack Smash FV", "stack-smash-fv", 100)

	exists, err := repo.Exists(ctx, tx, u.ID, ch.ID)
	if err != nil || exists {
		t.Fatalf("Exists before create: exists=%v err=%v", exists, err)
	}

	inserted, err := repo.Create(ctx, tx, &types.Favorite{
		ID:          uuid.New(),
		UserID:      u.ID,
		ChallengeID: ch.ID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil || inserted != 1 {
		t.Fatalf("Create: inserted=%d err=%v", inserted, err)
	}

	// A racing duplicate insert loses to the unique constraint instead
	// of producing a second row.
	inserted, err = repo.Create(ctx, tx, &types.Favorite{
		ID:          uuid.New(),
		UserID:      u.ID,
		ChallengeID: ch.ID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("duplicate Create: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("duplicate Create inserted %d rows, want 0", inserted)
	}

	ids, err := repo.ListChallengeIDsByUser(ctx, tx, u.ID)
	if err != nil || len(ids) != 1 || ids[0] != ch.ID {
		t.Fatalf("ListChallengeIDsByUser: ids=%v err=%v", ids, err)
	}

	deleted, err := repo.DeleteByUserAndChallenge(ctx, tx, u.ID, ch.ID)
	if err != nil || deleted != 1 {
		t.Fatalf("Delete: deleted=%d err=%v", deleted, err)
	}
	deleted, err = repo.DeleteByUserAndChallenge(ctx, tx, u.ID, ch.ID)
	if err != nil || deleted != 0 {
		t.Fatalf("Delete again: deleted=%d err=%v", deleted, err)
	}
}
