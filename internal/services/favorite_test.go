package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	pkgerrors "github.com/ctfacademy/academy-backend/internal/pkg/errors"
	"github.com/ctfacademy/academy-backend/internal/repos"
	"github.com/ctfacademy/academy-backend/internal/repos/testutil"
	"github.com/ctfacademy/academy-backend/internal/requestdata"
)

func TestFavoriteToggle(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "fav_"+uuid.NewString()[:8])
	cat := testutil.SeedCategory(t, ctx, tx, "Cat "+uuid.NewString()[:8], "cat-"+uuid.NewString()[:8])
	ch := testutil.SeedChallenge(t, ctx, tx, cat.ID, "Ch "+uuid.NewString()[:8], "ch-"+uuid.NewString()[:8], 100)

	challengeRepo := repos.NewChallengeRepo(tx, log)
	favoriteRepo := repos.NewFavoriteRepo(tx, log)
	svc := NewFavoriteService(tx, log, challengeRepo, favoriteRepo)

	ctx = requestdata.WithRequestData(ctx, &requestdata.RequestData{UserID: u.ID})

	fav, err := svc.Toggle(ctx, ch.ID)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !fav {
		t.Fatalf("first toggle = off, want on")
	}
	if ok, _ := svc.IsFavorited(ctx, ch.ID); !ok {
		t.Fatalf("IsFavorited = false after toggle on")
	}

	fav, err = svc.Toggle(ctx, ch.ID)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if fav {
		t.Fatalf("second toggle = on, want off")
	}
	if ok, _ := svc.IsFavorited(ctx, ch.ID); ok {
		t.Fatalf("IsFavorited = true after toggle off")
	}

	ids, err := svc.ListChallengeIDs(ctx)
	if err != nil {
		t.Fatalf("ListChallengeIDs: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ListChallengeIDs = %v, want empty", ids)
	}
}

func TestFavoriteToggleUnknownChallenge(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "fav_"+uuid.NewString()[:8])

	challengeRepo := repos.NewChallengeRepo(tx, log)
	favoriteRepo := repos.NewFavoriteRepo(tx, log)
	svc := NewFavoriteService(tx, log, challengeRepo, favoriteRepo)

	ctx = requestdata.WithRequestData(ctx, &requestdata.RequestData{UserID: u.ID})

	if _, err := svc.Toggle(ctx, uuid.New()); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("toggle unknown challenge = %v, want ErrNotFound", err)
	}
}
