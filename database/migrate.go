// database/migrate.go - Database migration runner
package database

import (
	"fmt"

	"f1cards/models"
	"f1cards/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunMigrations creates or updates every table and the composite indexes
// the hot queries rely on.
func RunMigrations(db *gorm.DB) error {
	utils.Logger.Info("migrations_started")

	if err := db.AutoMigrate(
		&models.User{},
		&models.GameStateRecord{},
		&models.Pack{},
		&models.ShopCard{},
		&models.AchievementDefinition{},
		&models.MarketListing{},
		&models.Transaction{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return err
	}

	utils.Logger.Info("migrations_completed")
	return nil
}

type compositeIndex struct {
	model   interface{}
	name    string
	table   string
	columns string
}

var compositeIndexes = []compositeIndex{
	// Market browsing and the settlement worker
	{&models.MarketListing{}, "idx_listings_status_price", "market_listings", "status, price"},
	{&models.MarketListing{}, "idx_listings_status_listed", "market_listings", "status, listed_at"},
	{&models.MarketListing{}, "idx_listings_status_updated", "market_listings", "status, updated_at"},
	// Ledger page
	{&models.Transaction{}, "idx_transactions_user_created", "transactions", "user_id, created_at"},
}

// createIndexes checks through the migrator first because MySQL has no
// CREATE INDEX IF NOT EXISTS.
func createIndexes(db *gorm.DB) error {
	m := db.Migrator()
	for _, idx := range compositeIndexes {
		if m.HasIndex(idx.model, idx.name) {
			continue
		}
		stmt := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
		utils.Logger.Debug("index_created", zap.String("index", idx.name))
	}
	return nil
}
