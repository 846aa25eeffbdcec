// services/catalog.go - Catalog seeding and engine construction
package services

import (
	"context"
	"fmt"
	"time"

	"f1cards/achievements"
	"f1cards/cardgen"
	"f1cards/game"
	"f1cards/models"
	"f1cards/storage"

	"go.uber.org/zap"
)

// BuildEngine seeds the default catalog, then builds the card generator
// from tables and the achievement tracker from the stored definitions.
// Stored packs must use a tier the tables know about.
func BuildEngine(ctx context.Context, catalog storage.CatalogRepo, tables cardgen.Tables, loc *time.Location, log *zap.Logger) (*game.Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	defs := achievements.DefaultDefinitions()
	rows := make([]models.AchievementDefinition, 0, len(defs))
	for i, d := range defs {
		rows = append(rows, models.NewAchievementDefinition(d, i))
	}
	if err := catalog.SeedCatalog(ctx, models.DefaultPacks(), models.DefaultShopCards(), rows); err != nil {
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	gen, err := cardgen.NewGenerator(tables)
	if err != nil {
		return nil, err
	}

	packs, err := catalog.ListPacks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list packs: %w", err)
	}
	for _, p := range packs {
		if err := p.ToPack().Validate(); err != nil {
			return nil, fmt.Errorf("pack %s: %w", p.ID, err)
		}
	}

	stored, err := catalog.ListAchievementDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	loaded := make([]achievements.Definition, 0, len(stored))
	for _, d := range stored {
		loaded = append(loaded, d.ToDefinition())
	}
	tracker, err := achievements.NewTracker(loaded, achievements.WithLocation(loc))
	if err != nil {
		return nil, err
	}

	log.Info("catalog_ready",
		zap.Int("packs", len(packs)),
		zap.Int("achievements", len(loaded)),
		zap.String("zone", tracker.Location().String()))
	return game.NewEngine(gen, tracker), nil
}
