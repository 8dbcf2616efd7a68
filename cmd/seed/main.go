package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/ctfacademy/academy-backend/internal/db"
	"github.com/ctfacademy/academy-backend/internal/pkg/logger"
	"github.com/ctfacademy/academy-backend/internal/repos"
	"github.com/ctfacademy/academy-backend/internal/services"
	"github.com/ctfacademy/academy-backend/internal/types"
)

type seedFile struct {
	Categories []struct {
		Name       string `json:"name"`
		Slug       string `json:"slug"`
		Challenges []struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Difficulty  string `json:"difficulty"`
			Points      int    `json:"points"`
			Entrypoint  string `json:"entrypoint"`
		} `json:"challenges"`
	} `json:"categories"`
}

// Loads a catalog definition into the database, skipping entries whose
// slug already exists. Usage: seed <catalog.json>
func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: seed <catalog.json>")
		os.Exit(2)
	}

	log, err := logger.New(os.Getenv("LOG_MODE"))
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal("Read catalog file failed", "error", err)
	}
	var catalog seedFile
	if err := json.Unmarshal(raw, &catalog); err != nil {
		log.Fatal("Parse catalog file failed", "error", err)
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	gdb := pg.DB()

	categoryRepo := repos.NewCategoryRepo(gdb, log)
	challengeRepo := repos.NewChallengeRepo(gdb, log)
	challengeService := services.NewChallengeService(gdb, log, categoryRepo, challengeRepo)

	ctx := context.Background()
	existing, err := categoryRepo.List(ctx, nil)
	if err != nil {
		log.Fatal("List categories failed", "error", err)
	}
	bySlug := make(map[string]uuid.UUID, len(existing))
	for _, c := range existing {
		bySlug[c.Slug] = c.ID
	}

	for _, cat := range catalog.Categories {
		slug := cat.Slug
		if slug == "" {
			slug = services.Slugify(cat.Name)
		}
		catID, ok := bySlug[slug]
		if !ok {
			created := &types.Category{ID: uuid.New(), Name: cat.Name, Slug: slug}
			if _, err := categoryRepo.Create(ctx, nil, []*types.Category{created}); err != nil {
				log.Fatal("Create category failed", "category", cat.Name, "error", err)
			}
			catID = created.ID
			bySlug[slug] = catID
			log.Info("Created category", "name", cat.Name, "slug", slug)
		}

		for _, ch := range cat.Challenges {
			chSlug := services.Slugify(ch.Title)
			if existing, err := challengeRepo.GetBySlug(ctx, nil, chSlug); err != nil {
				log.Fatal("Lookup challenge failed", "challenge", ch.Title, "error", err)
			} else if existing != nil {
				log.Info("Challenge exists, skipping", "slug", chSlug)
				continue
			}
			err := challengeService.CreateChallenge(ctx, &types.Challenge{
				CategoryID:  catID,
				Title:       ch.Title,
				Slug:        chSlug,
				Description: ch.Description,
				Difficulty:  ch.Difficulty,
				Points:      ch.Points,
				Entrypoint:  ch.Entrypoint,
				IsActive:    true,
			})
			if err != nil {
				log.Fatal("Create challenge failed", "challenge", ch.Title, "error", err)
			}
			log.Info("Created challenge", "slug", chSlug, "points", ch.Points)
		}
	}
}
