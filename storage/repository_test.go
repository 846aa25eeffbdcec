package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"f1cards/cardgen"
	"f1cards/game"
	"f1cards/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newSQLiteRepo(t *testing.T) Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.sqlite")), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.GameStateRecord{},
		&models.MarketListing{},
		&models.Transaction{},
		&models.Pack{},
		&models.ShopCard{},
		&models.AchievementDefinition{},
	))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewGorm(db)
}

func newMemoryRepo(t *testing.T) Repository { return NewMemory() }

var backends = map[string]func(t *testing.T) Repository{
	"memory": newMemoryRepo,
	"sqlite": newSQLiteRepo,
}

func forEachBackend(t *testing.T, fn func(t *testing.T, repo Repository)) {
	for name, newRepo := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, newRepo(t))
		})
	}
}

func TestStateStoreRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		_, err := repo.Load(ctx, 1)
		assert.ErrorIs(t, err, ErrNotFound)

		st := game.State{Coins: 2500, Cards: []cardgen.Card{{ID: "c1", Name: "Monza Circuit", Rarity: cardgen.Rare, Price: 3000}}}
		require.NoError(t, repo.Create(ctx, 1, st))
		assert.ErrorIs(t, repo.Create(ctx, 1, st), ErrExists)

		got, err := repo.Load(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2500, got.Coins)
		require.Len(t, got.Cards, 1)
		assert.Equal(t, "Monza Circuit", got.Cards[0].Name)

		updated, err := repo.Update(ctx, 1, func(st *game.State) error {
			st.Coins -= 500
			st.PacksOpened++
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2000, updated.Coins)

		got, err = repo.Load(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 2000, got.Coins)
		assert.Equal(t, 1, got.PacksOpened)
	})
}

func TestStateStoreVersionCountsWrites(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, 4, game.State{}))

		st, err := repo.Load(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 1, st.Version)

		for i := 0; i < 2; i++ {
			st, err = repo.Update(ctx, 4, func(st *game.State) error { st.Coins++; return nil })
			require.NoError(t, err)
		}
		assert.Equal(t, 3, st.Version)

		st, err = repo.Load(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 3, st.Version)
		assert.Equal(t, 2, st.Coins)
	})
}

func TestStateStoreUpdateAbortsOnError(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		require.NoError(t, repo.Create(ctx, 7, game.State{Coins: 100}))

		boom := errors.New("boom")
		_, err := repo.Update(ctx, 7, func(st *game.State) error {
			st.Coins = 0
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := repo.Load(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, 100, got.Coins)

		_, err = repo.Update(ctx, 8, func(st *game.State) error { return nil })
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUserRepo(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		u := &models.User{Username: "lewis", Email: "lewis@example.com", Password: "hash"}
		require.NoError(t, repo.CreateUser(ctx, u))
		require.NotZero(t, u.ID)

		dup := &models.User{Username: "lewis", Email: "other@example.com", Password: "hash"}
		assert.ErrorIs(t, repo.CreateUser(ctx, dup), ErrExists)

		exists, err := repo.UserExists(ctx, "someone", "LEWIS@example.com")
		require.NoError(t, err)
		assert.True(t, exists)
		exists, err = repo.UserExists(ctx, "max", "max@example.com")
		require.NoError(t, err)
		assert.False(t, exists)

		byEmail, err := repo.UserByEmail(ctx, "Lewis@Example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, byEmail.ID)

		updated, err := repo.UpdateProfile(ctx, u.ID, "a.png", "b.png", "7 titres")
		require.NoError(t, err)
		assert.Equal(t, "7 titres", updated.Bio)
		assert.Equal(t, "a.png", updated.AvatarURL)

		_, err = repo.UserByID(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = repo.UpdateProfile(ctx, 999, "", "", "")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, repo.TouchLogin(ctx, u.ID, time.Now()))

		require.NoError(t, repo.DeleteUser(ctx, u.ID))
		assert.ErrorIs(t, repo.DeleteUser(ctx, u.ID), ErrNotFound)
		exists, err = repo.UserExists(ctx, "lewis", "lewis@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})
}

func newListing(id string, seller uint, name string, price int, listed time.Time) *models.MarketListing {
	card := cardgen.Card{ID: "card-" + id, Name: name, Category: cardgen.Pilot, Rarity: cardgen.Epic, Price: price}
	return &models.MarketListing{
		ID:       id,
		SellerID: seller,
		CardID:   card.ID,
		Card:     datatypes.NewJSONType(card),
		CardName: name,
		Price:    price,
		Status:   models.ListingActive,
		ListedAt: listed,
	}
}

func TestListingRepo(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		base := time.Date(2024, 1, 25, 10, 0, 0, 0, time.UTC)
		require.NoError(t, repo.CreateListing(ctx, newListing("l1", 1, "Lando Norris Racing Card", 12000, base)))
		require.NoError(t, repo.CreateListing(ctx, newListing("l2", 1, "Monaco Circuit", 4000, base.Add(time.Hour))))
		require.NoError(t, repo.CreateListing(ctx, newListing("l3", 2, "Toto Wolff Boss Card", 8000, base.Add(2*time.Hour))))

		ids := func(ls []models.MarketListing) []string {
			out := []string{}
			for _, l := range ls {
				out = append(out, l.ID)
			}
			return out
		}

		all, err := repo.ListListings(ctx, ListingQuery{})
		require.NoError(t, err)
		assert.Equal(t, []string{"l3", "l2", "l1"}, ids(all))

		asc, err := repo.ListListings(ctx, ListingQuery{Sort: SortPriceAsc})
		require.NoError(t, err)
		assert.Equal(t, []string{"l2", "l3", "l1"}, ids(asc))

		desc, err := repo.ListListings(ctx, ListingQuery{Sort: SortPriceDesc})
		require.NoError(t, err)
		assert.Equal(t, []string{"l1", "l3", "l2"}, ids(desc))

		byName, err := repo.ListListings(ctx, ListingQuery{Sort: SortName})
		require.NoError(t, err)
		assert.Equal(t, []string{"l1", "l2", "l3"}, ids(byName))

		search, err := repo.ListListings(ctx, ListingQuery{Search: "monaco"})
		require.NoError(t, err)
		assert.Equal(t, []string{"l2"}, ids(search))

		mine, err := repo.ListListings(ctx, ListingQuery{SellerID: 2})
		require.NoError(t, err)
		assert.Equal(t, []string{"l3"}, ids(mine))

		got, err := repo.GetListing(ctx, "l1")
		require.NoError(t, err)
		assert.Equal(t, "Lando Norris Racing Card", got.Card.Data().Name)

		buyer := uint(9)
		require.NoError(t, repo.TransitionListing(ctx, "l1", models.ListingActive, models.ListingReserved, &buyer))
		assert.ErrorIs(t, repo.TransitionListing(ctx, "l1", models.ListingActive, models.ListingReserved, &buyer), ErrConflict)
		assert.ErrorIs(t, repo.TransitionListing(ctx, "nope", models.ListingActive, models.ListingReserved, &buyer), ErrNotFound)

		reserved, err := repo.GetListing(ctx, "l1")
		require.NoError(t, err)
		require.NotNil(t, reserved.BuyerID)
		assert.Equal(t, buyer, *reserved.BuyerID)

		require.NoError(t, repo.TransitionListing(ctx, "l1", models.ListingReserved, models.ListingSold, nil))
		sold, err := repo.GetListing(ctx, "l1")
		require.NoError(t, err)
		assert.Equal(t, models.ListingSold, sold.Status)
		assert.NotNil(t, sold.SoldAt)

		stale, err := repo.StaleListings(ctx, models.ListingSold, time.Now().Add(time.Minute), 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"l1"}, ids(stale))
		none, err := repo.StaleListings(ctx, models.ListingSold, time.Now().Add(-time.Hour), 10)
		require.NoError(t, err)
		assert.Empty(t, none)

		active, err := repo.ListListings(ctx, ListingQuery{})
		require.NoError(t, err)
		assert.Equal(t, []string{"l3", "l2"}, ids(active))
	})
}

func TestLedgerRepo(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		base := time.Now().Add(-time.Hour)
		for i, amt := range []int{-2500, -7500, 100} {
			tx := &models.Transaction{UserID: 1, Type: models.TxPackPurchase, Amount: amt, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
			require.NoError(t, repo.RecordTransaction(ctx, tx))
			require.NotZero(t, tx.ID)
		}
		require.NoError(t, repo.RecordTransaction(ctx, &models.Transaction{UserID: 2, Type: models.TxCardSale, Amount: 900}))

		txs, err := repo.ListTransactions(ctx, 1, 2)
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, 100, txs[0].Amount)
		assert.Equal(t, -7500, txs[1].Amount)
	})
}

func TestCatalogSeedIsIdempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		defs := []models.AchievementDefinition{
			{ID: "first_pack", Description: "Acheter un pack", Reward: 100, Pool: "standard", Counter: "packs_opened", Threshold: 1},
		}
		require.NoError(t, repo.SeedCatalog(ctx, models.DefaultPacks(), models.DefaultShopCards(), defs))

		edited := models.DefaultPacks()
		edited[0].Price = 1
		require.NoError(t, repo.SeedCatalog(ctx, edited, models.DefaultShopCards(), defs))

		packs, err := repo.ListPacks(ctx)
		require.NoError(t, err)
		require.Len(t, packs, 3)
		assert.Equal(t, "basic", packs[0].ID)
		assert.Equal(t, 2500, packs[0].Price)

		p, err := repo.GetPack(ctx, "legendary")
		require.NoError(t, err)
		assert.Equal(t, 7, p.CardCount)
		_, err = repo.GetPack(ctx, "gold")
		assert.ErrorIs(t, err, ErrNotFound)

		shop, err := repo.ListShopCards(ctx)
		require.NoError(t, err)
		assert.Len(t, shop, 3)
		c, err := repo.GetShopCard(ctx, "103")
		require.NoError(t, err)
		assert.Equal(t, "Mercedes AMG Team", c.Name)

		got, err := repo.ListAchievementDefinitions(ctx)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "first_pack", got[0].ToDefinition().ID)
	})
}
