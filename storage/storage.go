// storage/storage.go - Persistence interfaces
package storage

import (
	"context"
	"errors"
	"time"

	"f1cards/game"
	"f1cards/models"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrExists   = errors.New("record already exists")
	// ErrConflict means a conditional write lost a race.
	ErrConflict = errors.New("concurrent modification")
)

// UpdateFunc mutates a loaded state. Returning an error aborts the write.
type UpdateFunc func(st *game.State) error

// StateStore persists one serialized game.State per user. Update runs
// load, mutate and save as one unit so concurrent requests for the same
// user never interleave.
type StateStore interface {
	Load(ctx context.Context, userID uint) (game.State, error)
	Create(ctx context.Context, userID uint, st game.State) error
	Update(ctx context.Context, userID uint, fn UpdateFunc) (game.State, error)
}

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByID(ctx context.Context, id uint) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserExists(ctx context.Context, username, email string) (bool, error)
	UpdateProfile(ctx context.Context, id uint, avatarURL, bannerURL, bio string) (models.User, error)
	TouchLogin(ctx context.Context, id uint, at time.Time) error
	// DeleteUser removes an account that never got a game state.
	DeleteUser(ctx context.Context, id uint) error
}

// ListingQuery filters marketplace listings. Zero values mean no filter;
// Status defaults to active.
type ListingQuery struct {
	Search   string
	Sort     string
	SellerID uint
	Status   models.ListingStatus
	Limit    int
}

const (
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortDate      = "date"
	SortName      = "name"
)

type ListingRepo interface {
	CreateListing(ctx context.Context, l *models.MarketListing) error
	GetListing(ctx context.Context, id string) (models.MarketListing, error)
	ListListings(ctx context.Context, q ListingQuery) ([]models.MarketListing, error)
	// TransitionListing moves a listing from one status to another only if
	// it is currently in from; otherwise it returns ErrConflict.
	TransitionListing(ctx context.Context, id string, from, to models.ListingStatus, buyerID *uint) error
	StaleListings(ctx context.Context, status models.ListingStatus, before time.Time, limit int) ([]models.MarketListing, error)
}

type LedgerRepo interface {
	RecordTransaction(ctx context.Context, tx *models.Transaction) error
	ListTransactions(ctx context.Context, userID uint, limit int) ([]models.Transaction, error)
}

type CatalogRepo interface {
	ListPacks(ctx context.Context) ([]models.Pack, error)
	GetPack(ctx context.Context, id string) (models.Pack, error)
	ListShopCards(ctx context.Context) ([]models.ShopCard, error)
	GetShopCard(ctx context.Context, id string) (models.ShopCard, error)
	ListAchievementDefinitions(ctx context.Context) ([]models.AchievementDefinition, error)
	// SeedCatalog inserts rows whose id is not stored yet.
	SeedCatalog(ctx context.Context, packs []models.Pack, shop []models.ShopCard, defs []models.AchievementDefinition) error
}

// Repository bundles every persistence concern.
type Repository interface {
	StateStore
	UserRepo
	ListingRepo
	LedgerRepo
	CatalogRepo
}

const defaultListLimit = 50

func clampLimit(n int) int {
	if n <= 0 || n > 200 {
		return defaultListLimit
	}
	return n
}
