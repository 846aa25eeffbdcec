// services/game_service.go - Packs, shop, collection and achievements
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"f1cards/achievements"
	"f1cards/cardgen"
	"f1cards/game"
	"f1cards/models"
	"f1cards/storage"
	"f1cards/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type GameService struct {
	store         storage.StateStore
	catalog       storage.CatalogRepo
	ledger        storage.LedgerRepo
	engine        *game.Engine
	notifier      *Notifier
	log           *zap.Logger
	startingCoins int
}

func NewGameService(store storage.StateStore, catalog storage.CatalogRepo, ledger storage.LedgerRepo,
	engine *game.Engine, notifier *Notifier, log *zap.Logger, startingCoins int) *GameService {
	if log == nil {
		log = zap.NewNop()
	}
	return &GameService{
		store:         store,
		catalog:       catalog,
		ledger:        ledger,
		engine:        engine,
		notifier:      notifier,
		log:           log,
		startingCoins: startingCoins,
	}
}

func (s *GameService) Engine() *game.Engine { return s.engine }

// PackResult is returned after opening a pack.
type PackResult struct {
	Pack    models.Pack                `json:"pack"`
	Cards   []cardgen.Card             `json:"cards"`
	Balance int                        `json:"balance"`
	Unlocks []achievements.UnlockEvent `json:"unlocks"`
}

// PurchaseResult is returned after buying a single card.
type PurchaseResult struct {
	Card    cardgen.Card               `json:"card"`
	Balance int                        `json:"balance"`
	Unlocks []achievements.UnlockEvent `json:"unlocks"`
}

// ClaimOutcome is a claim result plus the balance after it.
type ClaimOutcome struct {
	achievements.ClaimResult
	Balance int `json:"balance"`
}

// AchievementsView splits a player's achievements by pool.
type AchievementsView struct {
	Standard  []achievements.Achievement `json:"standard"`
	Daily     []achievements.Achievement `json:"daily"`
	NextReset time.Time                  `json:"next_reset"`
}

// CollectionFilter narrows a collection listing. Empty fields match all.
type CollectionFilter struct {
	Rarity   cardgen.Rarity
	Category cardgen.Category
}

// CreatePlayer stores the initial game state of a new user and publishes
// the achievements the starting balance already unlocks.
func (s *GameService) CreatePlayer(ctx context.Context, userID uint) (game.State, error) {
	st, events := s.engine.NewState(s.startingCoins)
	if err := s.store.Create(ctx, userID, st); err != nil {
		return game.State{}, err
	}
	s.notifier.Publish(userID, events)
	return st, nil
}

// State returns the player's state with the daily reset applied. The
// write only happens when the reset or a definition sync changed something.
func (s *GameService) State(ctx context.Context, userID uint) (game.State, error) {
	st, err := s.store.Load(ctx, userID)
	if err != nil {
		return game.State{}, err
	}
	if _, changed := s.engine.Refresh(&st); !changed {
		return st, nil
	}
	var events []achievements.UnlockEvent
	st, err = s.store.Update(ctx, userID, func(st *game.State) error {
		events, _ = s.engine.Refresh(st)
		return nil
	})
	if err != nil {
		return game.State{}, err
	}
	s.notifier.Publish(userID, events)
	return st, nil
}

func (s *GameService) ListPacks(ctx context.Context) ([]models.Pack, error) {
	return s.catalog.ListPacks(ctx)
}

// BuyPack charges the pack price and adds the generated cards in one
// state update. Nothing changes when the balance is too low.
func (s *GameService) BuyPack(ctx context.Context, userID uint, packID string) (PackResult, error) {
	row, err := s.catalog.GetPack(ctx, packID)
	if err != nil {
		return PackResult{}, err
	}
	pack := row.ToPack()

	var cards []cardgen.Card
	var events []achievements.UnlockEvent
	st, err := s.store.Update(ctx, userID, func(st *game.State) error {
		pending, _ := s.engine.Refresh(st)
		var err error
		cards, events, err = s.engine.OpenPack(st, pack)
		events = append(pending, events...)
		return err
	})
	if err != nil {
		return PackResult{}, err
	}

	utils.PacksOpened.WithLabelValues(string(pack.Tier)).Inc()
	for _, c := range cards {
		utils.CardsGenerated.WithLabelValues(string(c.Rarity)).Inc()
	}
	s.record(ctx, userID, models.TxPackPurchase, -pack.Price, fmt.Sprintf("Achat %s", pack.Name))
	s.notifier.Publish(userID, events)
	s.log.Info("pack_opened",
		zap.Uint("user_id", userID),
		zap.String("pack", pack.ID),
		zap.Int("cards", len(cards)),
		zap.Int("balance", st.Coins))

	return PackResult{Pack: row, Cards: cards, Balance: st.Coins, Unlocks: nonNilEvents(events)}, nil
}

func (s *GameService) ListShop(ctx context.Context) ([]models.ShopCard, error) {
	return s.catalog.ListShopCards(ctx)
}

// BuyShopCard adds a copy of a shop card with a fresh id.
func (s *GameService) BuyShopCard(ctx context.Context, userID uint, shopCardID string) (PurchaseResult, error) {
	row, err := s.catalog.GetShopCard(ctx, shopCardID)
	if err != nil {
		return PurchaseResult{}, err
	}
	if !row.IsActive {
		return PurchaseResult{}, ErrNotFound
	}

	var card cardgen.Card
	var events []achievements.UnlockEvent
	st, err := s.store.Update(ctx, userID, func(st *game.State) error {
		pending, _ := s.engine.Refresh(st)
		var err error
		card, events, err = s.engine.BuyCard(st, row.ToCard(uuid.NewString()), row.Price)
		events = append(pending, events...)
		return err
	})
	if err != nil {
		return PurchaseResult{}, err
	}

	s.record(ctx, userID, models.TxCardPurchase, -row.Price, fmt.Sprintf("Achat boutique %s", row.Name))
	s.notifier.Publish(userID, events)
	s.log.Info("shop_card_bought",
		zap.Uint("user_id", userID),
		zap.String("shop_card", row.ID),
		zap.Int("balance", st.Coins))

	return PurchaseResult{Card: card, Balance: st.Coins, Unlocks: nonNilEvents(events)}, nil
}

// Collection lists owned cards, newest first.
func (s *GameService) Collection(ctx context.Context, userID uint, f CollectionFilter) ([]cardgen.Card, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]cardgen.Card, 0, len(st.Cards))
	for _, c := range st.Cards {
		if f.Rarity != "" && c.Rarity != f.Rarity {
			continue
		}
		if f.Category != "" && c.Category != f.Category {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return obtained(out[i]).After(obtained(out[j]))
	})
	return out, nil
}

func (s *GameService) Card(ctx context.Context, userID uint, cardID string) (cardgen.Card, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return cardgen.Card{}, err
	}
	c, ok := st.FindCard(cardID)
	if !ok {
		return cardgen.Card{}, ErrCardNotFound
	}
	return c, nil
}

// CollectionValue returns the summed price and number of owned cards.
func (s *GameService) CollectionValue(ctx context.Context, userID uint) (int, int, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return st.CollectionValue(), len(st.Cards), nil
}

func (s *GameService) Achievements(ctx context.Context, userID uint) (AchievementsView, error) {
	st, err := s.State(ctx, userID)
	if err != nil {
		return AchievementsView{}, err
	}
	return AchievementsView{
		Standard:  st.Achievements.InPool(achievements.Standard),
		Daily:     st.Achievements.InPool(achievements.Daily),
		NextReset: s.engine.Tracker().NextReset(),
	}, nil
}

// ClaimAchievement pays an unlocked reward once. Claiming a locked or
// already paid achievement succeeds with Claimed false.
func (s *GameService) ClaimAchievement(ctx context.Context, userID uint, achievementID string) (ClaimOutcome, error) {
	var res achievements.ClaimResult
	var events []achievements.UnlockEvent
	st, err := s.store.Update(ctx, userID, func(st *game.State) error {
		pending, changed := s.engine.Refresh(st)
		var err error
		res, events, err = s.engine.Claim(st, achievementID)
		if err != nil {
			return err
		}
		events = append(pending, events...)
		if !res.Claimed && !changed {
			return errNoChange
		}
		return nil
	})
	if errors.Is(err, errNoChange) {
		cur, err := s.State(ctx, userID)
		if err != nil {
			return ClaimOutcome{}, err
		}
		return ClaimOutcome{ClaimResult: res, Balance: cur.Coins}, nil
	}
	if err != nil {
		return ClaimOutcome{}, err
	}
	if !res.Claimed {
		s.notifier.Publish(userID, events)
		return ClaimOutcome{ClaimResult: res, Balance: st.Coins}, nil
	}

	txType := models.TxAchievementReward
	if res.Pool == achievements.Daily {
		txType = models.TxDailyReward
	}
	utils.RewardsClaimed.WithLabelValues(res.AchievementID).Inc()
	s.record(ctx, userID, txType, res.Reward, fmt.Sprintf("Récompense %s", res.AchievementID))
	s.notifier.Publish(userID, events)
	s.log.Info("achievement_claimed",
		zap.Uint("user_id", userID),
		zap.String("achievement", res.AchievementID),
		zap.Int("reward", res.Reward),
		zap.Int("balance", st.Coins))

	return ClaimOutcome{ClaimResult: res, Balance: st.Coins}, nil
}

func (s *GameService) Transactions(ctx context.Context, userID uint, limit int) ([]models.Transaction, error) {
	return s.ledger.ListTransactions(ctx, userID, limit)
}

// errNoChange aborts a state update that turned out to be a no-op.
var errNoChange = errors.New("no change")

// record appends to the ledger after the state write committed. A failure
// is logged and does not undo the action.
func (s *GameService) record(ctx context.Context, userID uint, typ models.TransactionType, amount int, desc string) {
	recordTransaction(ctx, s.ledger, s.log, userID, typ, amount, desc)
}

func recordTransaction(ctx context.Context, ledger storage.LedgerRepo, log *zap.Logger,
	userID uint, typ models.TransactionType, amount int, desc string) {
	tx := &models.Transaction{UserID: userID, Type: typ, Amount: amount, Description: desc}
	if err := ledger.RecordTransaction(ctx, tx); err != nil {
		log.Error("ledger_write_failed",
			zap.Uint("user_id", userID),
			zap.String("type", string(typ)),
			zap.Int("amount", amount),
			zap.Error(err))
	}
}

func obtained(c cardgen.Card) time.Time {
	if c.ObtainedAt == nil {
		return time.Time{}
	}
	return *c.ObtainedAt
}

func nonNilEvents(ev []achievements.UnlockEvent) []achievements.UnlockEvent {
	if ev == nil {
		return []achievements.UnlockEvent{}
	}
	return ev
}
