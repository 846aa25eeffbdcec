// services/market_service.go - Player to player marketplace
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"f1cards/achievements"
	"f1cards/cardgen"
	"f1cards/game"
	"f1cards/models"
	"f1cards/storage"
	"f1cards/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// SettleAfter is how long a sold listing may wait for its payout before
// the background worker takes over.
const SettleAfter = 30 * time.Second

// ReservedTimeout is how long a listing may stay reserved before the
// worker checks whether the buyer already received the card.
const ReservedTimeout = 10 * SettleAfter

const markSoldAttempts = 3

// MarketService moves cards between players. A listed card is held in
// escrow on the listing; every status change is a conditional write so
// two buyers can never both win the same listing.
type MarketService struct {
	store    storage.StateStore
	listings storage.ListingRepo
	ledger   storage.LedgerRepo
	engine   *game.Engine
	notifier *Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewMarketService(store storage.StateStore, listings storage.ListingRepo, ledger storage.LedgerRepo,
	engine *game.Engine, notifier *Notifier, log *zap.Logger) *MarketService {
	if log == nil {
		log = zap.NewNop()
	}
	return &MarketService{
		store:    store,
		listings: listings,
		ledger:   ledger,
		engine:   engine,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

func (s *MarketService) List(ctx context.Context, q storage.ListingQuery) ([]models.MarketListing, error) {
	return s.listings.ListListings(ctx, q)
}

// CreateListing takes the card out of the seller's collection and puts it
// on sale.
func (s *MarketService) CreateListing(ctx context.Context, sellerID uint, sellerName, cardID string, price int) (models.MarketListing, error) {
	if price <= 0 {
		return models.MarketListing{}, ErrInvalidPrice
	}

	var card cardgen.Card
	_, err := s.store.Update(ctx, sellerID, func(st *game.State) error {
		var err error
		card, _, err = s.engine.RemoveCard(st, cardID)
		return err
	})
	if err != nil {
		return models.MarketListing{}, err
	}

	l := models.MarketListing{
		ID:             uuid.NewString(),
		SellerID:       sellerID,
		SellerUsername: sellerName,
		CardID:         card.ID,
		Card:           datatypes.NewJSONType(card),
		CardName:       card.Name,
		Price:          price,
		Status:         models.ListingActive,
		ListedAt:       s.now(),
	}
	if err := s.listings.CreateListing(ctx, &l); err != nil {
		s.returnCard(ctx, sellerID, card)
		return models.MarketListing{}, fmt.Errorf("create listing: %w", err)
	}

	s.log.Info("listing_created",
		zap.String("listing_id", l.ID),
		zap.Uint("seller_id", sellerID),
		zap.String("card_id", card.ID),
		zap.Int("price", price))
	return l, nil
}

// CancelListing withdraws an active listing and gives the card back.
func (s *MarketService) CancelListing(ctx context.Context, sellerID uint, listingID string) error {
	l, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if l.SellerID != sellerID {
		return ErrNotListingOwner
	}
	if err := s.listings.TransitionListing(ctx, l.ID, models.ListingActive, models.ListingCancelled, nil); err != nil {
		return unavailable(err)
	}
	s.returnCard(ctx, sellerID, l.Card.Data())
	s.log.Info("listing_cancelled", zap.String("listing_id", l.ID), zap.Uint("seller_id", sellerID))
	return nil
}

// Buy transfers the card to buyerID. The listing is reserved first, then
// the buyer is charged, then the seller is paid.
func (s *MarketService) Buy(ctx context.Context, buyerID uint, listingID string) (PurchaseResult, error) {
	l, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return PurchaseResult{}, err
	}
	if l.SellerID == buyerID {
		return PurchaseResult{}, ErrOwnListing
	}
	if l.Status != models.ListingActive {
		return PurchaseResult{}, ErrListingUnavailable
	}
	if err := s.listings.TransitionListing(ctx, l.ID, models.ListingActive, models.ListingReserved, &buyerID); err != nil {
		return PurchaseResult{}, unavailable(err)
	}

	var card cardgen.Card
	var events []achievements.UnlockEvent
	st, err := s.store.Update(ctx, buyerID, func(st *game.State) error {
		pending, _ := s.engine.Refresh(st)
		var err error
		card, events, err = s.engine.BuyCard(st, l.Card.Data(), l.Price)
		events = append(pending, events...)
		return err
	})
	if err != nil {
		if rerr := s.listings.TransitionListing(ctx, l.ID, models.ListingReserved, models.ListingActive, nil); rerr != nil {
			s.log.Error("listing_release_failed", zap.String("listing_id", l.ID), zap.Error(rerr))
		}
		return PurchaseResult{}, err
	}

	if err := s.markSold(ctx, l.ID, buyerID); err != nil {
		s.log.Error("listing_mark_sold_failed", zap.String("listing_id", l.ID), zap.Uint("buyer_id", buyerID), zap.Error(err))
	} else {
		utils.MarketSales.Inc()
		s.settle(ctx, l)
	}

	recordTransaction(ctx, s.ledger, s.log, buyerID, models.TxCardPurchase, -l.Price,
		fmt.Sprintf("Achat marché %s", card.Name))
	s.notifier.Publish(buyerID, events)
	s.log.Info("listing_bought",
		zap.String("listing_id", l.ID),
		zap.Uint("buyer_id", buyerID),
		zap.Uint("seller_id", l.SellerID),
		zap.Int("price", l.Price))

	return PurchaseResult{Card: card, Balance: st.Coins, Unlocks: nonNilEvents(events)}, nil
}

// SettlePending pays sellers of listings left in sold, for example after
// a crash between charging the buyer and paying the seller. Listings stuck
// in reserved whose buyer already holds the card are marked sold and paid
// too.
func (s *MarketService) SettlePending(ctx context.Context) (int, error) {
	n := 0
	stuck, err := s.listings.StaleListings(ctx, models.ListingReserved, s.now().Add(-ReservedTimeout), 100)
	if err != nil {
		return 0, err
	}
	for _, l := range stuck {
		if s.recoverReserved(ctx, l) && s.settle(ctx, l) {
			n++
		}
	}

	stale, err := s.listings.StaleListings(ctx, models.ListingSold, s.now().Add(-SettleAfter), 100)
	if err != nil {
		return n, err
	}
	for _, l := range stale {
		if s.settle(ctx, l) {
			n++
		}
	}
	return n, nil
}

// markSold moves a paid listing from reserved to sold. Lost races are
// final; other errors are retried.
func (s *MarketService) markSold(ctx context.Context, listingID string, buyerID uint) error {
	var err error
	for i := 0; i < markSoldAttempts; i++ {
		err = s.listings.TransitionListing(ctx, listingID, models.ListingReserved, models.ListingSold, &buyerID)
		if err == nil || errors.Is(err, storage.ErrConflict) {
			return err
		}
	}
	return err
}

// recoverReserved marks a stuck reservation sold when the buyer's state
// shows the purchase went through. Anything else is left for an operator.
func (s *MarketService) recoverReserved(ctx context.Context, l models.MarketListing) bool {
	if l.BuyerID == nil {
		s.log.Warn("listing_stuck_reserved", zap.String("listing_id", l.ID))
		return false
	}
	st, err := s.store.Load(ctx, *l.BuyerID)
	if err != nil {
		s.log.Warn("listing_stuck_reserved", zap.String("listing_id", l.ID), zap.Error(err))
		return false
	}
	if _, ok := st.FindCard(l.CardID); !ok {
		s.log.Warn("listing_stuck_reserved",
			zap.String("listing_id", l.ID),
			zap.Uint("buyer_id", *l.BuyerID),
			zap.String("reason", "buyer does not hold the card"))
		return false
	}
	if err := s.markSold(ctx, l.ID, *l.BuyerID); err != nil {
		s.log.Error("listing_mark_sold_failed", zap.String("listing_id", l.ID), zap.Error(err))
		return false
	}
	utils.MarketSales.Inc()
	s.log.Info("listing_recovered", zap.String("listing_id", l.ID), zap.Uint("buyer_id", *l.BuyerID))
	return true
}

// settle claims the payout by moving sold to settled, then credits the
// seller. A failed credit puts the listing back to sold for a retry.
func (s *MarketService) settle(ctx context.Context, l models.MarketListing) bool {
	if err := s.listings.TransitionListing(ctx, l.ID, models.ListingSold, models.ListingSettled, nil); err != nil {
		if !errors.Is(err, storage.ErrConflict) {
			s.log.Error("listing_settle_failed", zap.String("listing_id", l.ID), zap.Error(err))
		}
		return false
	}

	var events []achievements.UnlockEvent
	_, err := s.store.Update(ctx, l.SellerID, func(st *game.State) error {
		events = s.engine.AddCoins(st, l.Price)
		return nil
	})
	if err != nil {
		s.log.Error("seller_payout_failed",
			zap.String("listing_id", l.ID),
			zap.Uint("seller_id", l.SellerID),
			zap.Error(err))
		if rerr := s.listings.TransitionListing(ctx, l.ID, models.ListingSettled, models.ListingSold, nil); rerr != nil {
			s.log.Error("listing_unsettle_failed", zap.String("listing_id", l.ID), zap.Error(rerr))
		}
		return false
	}

	recordTransaction(ctx, s.ledger, s.log, l.SellerID, models.TxCardSale, l.Price,
		fmt.Sprintf("Vente %s", l.CardName))
	s.notifier.Publish(l.SellerID, events)
	return true
}

func (s *MarketService) returnCard(ctx context.Context, userID uint, card cardgen.Card) {
	var events []achievements.UnlockEvent
	_, err := s.store.Update(ctx, userID, func(st *game.State) error {
		events = s.engine.AddCard(st, card)
		return nil
	})
	if err != nil {
		s.log.Error("card_return_failed", zap.Uint("user_id", userID), zap.String("card_id", card.ID), zap.Error(err))
		return
	}
	s.notifier.Publish(userID, events)
}

func unavailable(err error) error {
	if errors.Is(err, storage.ErrConflict) {
		return ErrListingUnavailable
	}
	return err
}
