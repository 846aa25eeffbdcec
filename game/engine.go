// game/engine.go - Player state transitions on top of cardgen and achievements
package game

import (
	"errors"
	"fmt"
	"time"

	"f1cards/achievements"
	"f1cards/cardgen"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCardNotFound      = errors.New("card not found in collection")
)

// State is everything persisted for one player.
type State struct {
	Coins          int                `json:"coins"`
	Cards          []cardgen.Card     `json:"cards"`
	PacksOpened    int                `json:"packs_opened"`
	CardsPurchased int                `json:"cards_purchased"`
	Achievements   achievements.State `json:"achievements"`
	// Version is the store's write counter for this state. Stores set it on
	// every load and write; it is not part of the serialized data.
	Version int `json:"-"`
}

func (s State) Snapshot() achievements.Snapshot {
	return achievements.Snapshot{
		CardCount:      len(s.Cards),
		CoinBalance:    s.Coins,
		PacksOpened:    s.PacksOpened,
		CardsPurchased: s.CardsPurchased,
	}
}

func (s State) FindCard(id string) (cardgen.Card, bool) {
	for _, c := range s.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return cardgen.Card{}, false
}

// CollectionValue sums the price of every owned card.
func (s State) CollectionValue() int {
	total := 0
	for _, c := range s.Cards {
		total += c.Price
	}
	return total
}

// Engine applies game actions to a State. Every method either fully
// applies or leaves the state untouched and returns an error.
type Engine struct {
	gen     *cardgen.Generator
	tracker *achievements.Tracker
	now     func() time.Time
}

func NewEngine(gen *cardgen.Generator, tracker *achievements.Tracker) *Engine {
	return &Engine{gen: gen, tracker: tracker, now: time.Now}
}

func (e *Engine) Generator() *cardgen.Generator { return e.gen }
func (e *Engine) Tracker() *achievements.Tracker { return e.tracker }

// NewState creates a fresh player with startingCoins and seeded
// achievements. Achievements the starting balance already meets unlock
// at once and are returned as events.
func (e *Engine) NewState(startingCoins int) (State, []achievements.UnlockEvent) {
	st := State{Coins: startingCoins, Cards: []cardgen.Card{}}
	st.Achievements = e.tracker.NewState(st.Snapshot())
	events := e.tracker.RecomputeAll(&st.Achievements, st.Snapshot())
	return st, events
}

// Refresh aligns stored achievements with the current definitions,
// performs the daily reset when the reference-zone day changed and
// recomputes every counter against the possibly changed thresholds. It
// reports true when the state was modified and must be saved.
func (e *Engine) Refresh(st *State) ([]achievements.UnlockEvent, bool) {
	before := append([]achievements.Achievement(nil), st.Achievements.Achievements...)
	e.tracker.Sync(&st.Achievements)
	reset := e.tracker.EnsureDailyReset(&st.Achievements, st.Snapshot())
	events := e.tracker.RecomputeAll(&st.Achievements, st.Snapshot())
	return events, reset || !sameAchievements(before, st.Achievements.Achievements)
}

func sameAchievements(a, b []achievements.Achievement) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// OpenPack charges the pack price and adds freshly generated cards.
func (e *Engine) OpenPack(st *State, p cardgen.Pack) ([]cardgen.Card, []achievements.UnlockEvent, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	if st.Coins < p.Price {
		return nil, nil, fmt.Errorf("%w: pack costs %d, balance is %d", ErrInsufficientFunds, p.Price, st.Coins)
	}
	cards, err := e.gen.OpenPack(p.Tier, p.CardCount)
	if err != nil {
		return nil, nil, err
	}

	st.Coins -= p.Price
	st.Cards = append(st.Cards, cards...)
	st.PacksOpened++

	events := e.recompute(st, achievements.CoinBalance, achievements.CardCount, achievements.PacksOpened)
	return cards, events, nil
}

// BuyCard charges price and adds a copy of card with a new obtained date.
// The caller supplies the id so shop purchases get a fresh one.
func (e *Engine) BuyCard(st *State, card cardgen.Card, price int) (cardgen.Card, []achievements.UnlockEvent, error) {
	if price < 0 {
		return cardgen.Card{}, nil, fmt.Errorf("%w: negative price %d", cardgen.ErrInvalidArgument, price)
	}
	if st.Coins < price {
		return cardgen.Card{}, nil, fmt.Errorf("%w: card costs %d, balance is %d", ErrInsufficientFunds, price, st.Coins)
	}
	now := e.now()
	card.ObtainedAt = &now

	st.Coins -= price
	st.Cards = append(st.Cards, card)
	st.CardsPurchased++

	events := e.recompute(st, achievements.CoinBalance, achievements.CardCount, achievements.CardsPurchased)
	return card, events, nil
}

// AddCoins credits amount, for example the proceeds of a sale.
func (e *Engine) AddCoins(st *State, amount int) []achievements.UnlockEvent {
	st.Coins += amount
	return e.recompute(st, achievements.CoinBalance)
}

// AddCard puts a card back into the collection without charging.
func (e *Engine) AddCard(st *State, card cardgen.Card) []achievements.UnlockEvent {
	st.Cards = append(st.Cards, card)
	return e.recompute(st, achievements.CardCount)
}

// RemoveCard takes a card out of the collection.
func (e *Engine) RemoveCard(st *State, cardID string) (cardgen.Card, []achievements.UnlockEvent, error) {
	for i, c := range st.Cards {
		if c.ID == cardID {
			st.Cards = append(st.Cards[:i:i], st.Cards[i+1:]...)
			return c, e.recompute(st, achievements.CardCount), nil
		}
	}
	return cardgen.Card{}, nil, fmt.Errorf("%w: %s", ErrCardNotFound, cardID)
}

// Claim pays an achievement reward into the balance at most once.
func (e *Engine) Claim(st *State, achievementID string) (achievements.ClaimResult, []achievements.UnlockEvent, error) {
	res, err := e.tracker.Claim(&st.Achievements, achievementID)
	if err != nil || !res.Claimed {
		return res, nil, err
	}
	st.Coins += res.Reward
	return res, e.recompute(st, achievements.CoinBalance), nil
}

func (e *Engine) recompute(st *State, counters ...achievements.Counter) []achievements.UnlockEvent {
	snap := st.Snapshot()
	var events []achievements.UnlockEvent
	for _, c := range counters {
		events = append(events, e.tracker.Recompute(&st.Achievements, c, snap.Value(c))...)
	}
	return events
}
