// storage/gorm.go - GORM backed Repository (PostgreSQL, MySQL, SQLite)
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"f1cards/game"
	"f1cards/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxUpdateAttempts = 3

type Gorm struct {
	db *gorm.DB
	// lockRows enables SELECT ... FOR UPDATE. SQLite serialises writers
	// and rejects the clause.
	lockRows bool
}

func NewGorm(db *gorm.DB) *Gorm {
	name := db.Dialector.Name()
	return &Gorm{db: db, lockRows: name == "postgres" || name == "mysql"}
}

func (g *Gorm) Load(ctx context.Context, userID uint) (game.State, error) {
	var rec models.GameStateRecord
	if err := g.db.WithContext(ctx).First(&rec, "user_id = ?", userID).Error; err != nil {
		return game.State{}, notFound(err)
	}
	st, err := decodeState(rec.Data)
	if err != nil {
		return game.State{}, err
	}
	st.Version = rec.Version
	return st, nil
}

func (g *Gorm) Create(ctx context.Context, userID uint, st game.State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	rec := models.GameStateRecord{UserID: userID, Data: datatypes.JSON(data), Version: 1}
	if err := g.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrExists
		}
		return err
	}
	return nil
}

// Update reads, mutates and writes the state in one transaction. The row
// is locked where the dialect allows it; the version check catches the
// remaining races and the whole cycle is retried.
func (g *Gorm) Update(ctx context.Context, userID uint, fn UpdateFunc) (game.State, error) {
	var lastErr error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		st, err := g.updateOnce(ctx, userID, fn)
		if !errors.Is(err, ErrConflict) {
			return st, err
		}
		lastErr = err
	}
	return game.State{}, lastErr
}

func (g *Gorm) updateOnce(ctx context.Context, userID uint, fn UpdateFunc) (game.State, error) {
	var out game.State
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if g.lockRows {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		var rec models.GameStateRecord
		if err := q.First(&rec, "user_id = ?", userID).Error; err != nil {
			return notFound(err)
		}
		st, err := decodeState(rec.Data)
		if err != nil {
			return err
		}
		st.Version = rec.Version
		if err := fn(&st); err != nil {
			return err
		}
		data, err := json.Marshal(st)
		if err != nil {
			return fmt.Errorf("encode state: %w", err)
		}
		res := tx.Model(&models.GameStateRecord{}).
			Where("user_id = ? AND version = ?", userID, rec.Version).
			Updates(map[string]interface{}{
				"data":       datatypes.JSON(data),
				"version":    rec.Version + 1,
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		out = st
		out.Version = rec.Version + 1
		return nil
	})
	return out, err
}

func (g *Gorm) CreateUser(ctx context.Context, u *models.User) error {
	if err := g.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrExists
		}
		return err
	}
	return nil
}

func (g *Gorm) DeleteUser(ctx context.Context, id uint) error {
	res := g.db.WithContext(ctx).Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (g *Gorm) UserByID(ctx context.Context, id uint) (models.User, error) {
	var u models.User
	err := g.db.WithContext(ctx).First(&u, id).Error
	return u, notFound(err)
}

func (g *Gorm) UserByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := g.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error
	return u, notFound(err)
}

func (g *Gorm) UserExists(ctx context.Context, username, email string) (bool, error) {
	var n int64
	err := g.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR LOWER(email) = ?", username, strings.ToLower(email)).
		Count(&n).Error
	return n > 0, err
}

func (g *Gorm) UpdateProfile(ctx context.Context, id uint, avatarURL, bannerURL, bio string) (models.User, error) {
	err := g.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"avatar_url": avatarURL,
		"banner_url": bannerURL,
		"bio":        bio,
	}).Error
	if err != nil {
		return models.User{}, err
	}
	return g.UserByID(ctx, id)
}

func (g *Gorm) TouchLogin(ctx context.Context, id uint, at time.Time) error {
	return g.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login", at).Error
}

func (g *Gorm) CreateListing(ctx context.Context, l *models.MarketListing) error {
	if err := g.db.WithContext(ctx).Create(l).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrExists
		}
		return err
	}
	return nil
}

func (g *Gorm) GetListing(ctx context.Context, id string) (models.MarketListing, error) {
	var l models.MarketListing
	err := g.db.WithContext(ctx).First(&l, "id = ?", id).Error
	return l, notFound(err)
}

func (g *Gorm) ListListings(ctx context.Context, q ListingQuery) ([]models.MarketListing, error) {
	status := q.Status
	if status == "" {
		status = models.ListingActive
	}
	query := g.db.WithContext(ctx).Where("status = ?", status)
	if q.SellerID != 0 {
		query = query.Where("seller_id = ?", q.SellerID)
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		query = query.Where("LOWER(card_name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}
	switch q.Sort {
	case SortPriceAsc:
		query = query.Order("price ASC")
	case SortPriceDesc:
		query = query.Order("price DESC")
	case SortName:
		query = query.Order("card_name ASC")
	}
	query = query.Order("listed_at DESC").Order("id ASC")

	var out []models.MarketListing
	err := query.Limit(clampLimit(q.Limit)).Find(&out).Error
	return out, err
}

func (g *Gorm) TransitionListing(ctx context.Context, id string, from, to models.ListingStatus, buyerID *uint) error {
	now := time.Now()
	var l models.MarketListing
	applyTransition(&l, to, buyerID, now)

	updates := map[string]interface{}{"status": to, "updated_at": now}
	switch to {
	case models.ListingReserved:
		updates["buyer_id"] = l.BuyerID
	case models.ListingActive:
		updates["buyer_id"] = nil
	case models.ListingSold:
		updates["sold_at"] = l.SoldAt
	case models.ListingSettled:
		updates["settled_at"] = l.SettledAt
	}

	res := g.db.WithContext(ctx).Model(&models.MarketListing{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := g.GetListing(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

func (g *Gorm) StaleListings(ctx context.Context, status models.ListingStatus, before time.Time, limit int) ([]models.MarketListing, error) {
	var out []models.MarketListing
	err := g.db.WithContext(ctx).
		Where("status = ? AND updated_at <= ?", status, before).
		Order("updated_at ASC").
		Limit(clampLimit(limit)).
		Find(&out).Error
	return out, err
}

func (g *Gorm) RecordTransaction(ctx context.Context, tx *models.Transaction) error {
	return g.db.WithContext(ctx).Create(tx).Error
}

func (g *Gorm) ListTransactions(ctx context.Context, userID uint, limit int) ([]models.Transaction, error) {
	var out []models.Transaction
	err := g.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(clampLimit(limit)).
		Find(&out).Error
	return out, err
}

func (g *Gorm) ListPacks(ctx context.Context) ([]models.Pack, error) {
	var out []models.Pack
	err := g.db.WithContext(ctx).Order("sort_order ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) GetPack(ctx context.Context, id string) (models.Pack, error) {
	var p models.Pack
	err := g.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return p, notFound(err)
}

func (g *Gorm) ListShopCards(ctx context.Context) ([]models.ShopCard, error) {
	var out []models.ShopCard
	err := g.db.WithContext(ctx).Where("is_active = ?", true).Order("sort_order ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) GetShopCard(ctx context.Context, id string) (models.ShopCard, error) {
	var c models.ShopCard
	err := g.db.WithContext(ctx).Where("is_active = ?", true).First(&c, "id = ?", id).Error
	return c, notFound(err)
}

func (g *Gorm) ListAchievementDefinitions(ctx context.Context) ([]models.AchievementDefinition, error) {
	var out []models.AchievementDefinition
	err := g.db.WithContext(ctx).Order("sort_order ASC").Find(&out).Error
	return out, err
}

func (g *Gorm) SeedCatalog(ctx context.Context, packs []models.Pack, shop []models.ShopCard, defs []models.AchievementDefinition) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ignore := tx.Clauses(clause.OnConflict{DoNothing: true})
		if len(packs) > 0 {
			if err := ignore.Create(&packs).Error; err != nil {
				return fmt.Errorf("seed packs: %w", err)
			}
		}
		if len(shop) > 0 {
			if err := ignore.Create(&shop).Error; err != nil {
				return fmt.Errorf("seed shop cards: %w", err)
			}
		}
		if len(defs) > 0 {
			if err := ignore.Create(&defs).Error; err != nil {
				return fmt.Errorf("seed achievements: %w", err)
			}
		}
		return nil
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
