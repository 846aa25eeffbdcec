// achievements/types.go - Achievement state and definitions
package achievements

import (
	"errors"
	"time"
)

var (
	ErrUnknownAchievement = errors.New("unknown achievement")
	ErrInvalidDefinition  = errors.New("invalid achievement definition")
)

// Counter names a game counter that drives achievement progress.
type Counter string

const (
	CardCount      Counter = "card_count"
	CoinBalance    Counter = "coin_balance"
	PacksOpened    Counter = "packs_opened"
	CardsPurchased Counter = "cards_purchased"
)

var allCounters = []Counter{CardCount, CoinBalance, PacksOpened, CardsPurchased}

func Counters() []Counter {
	return append([]Counter(nil), allCounters...)
}

func (c Counter) Valid() bool {
	for _, x := range allCounters {
		if x == c {
			return true
		}
	}
	return false
}

// Snapshot is the current value of every counter for one player.
type Snapshot struct {
	CardCount      int `json:"card_count"`
	CoinBalance    int `json:"coin_balance"`
	PacksOpened    int `json:"packs_opened"`
	CardsPurchased int `json:"cards_purchased"`
}

func (s Snapshot) Value(c Counter) int {
	switch c {
	case CardCount:
		return s.CardCount
	case CoinBalance:
		return s.CoinBalance
	case PacksOpened:
		return s.PacksOpened
	case CardsPurchased:
		return s.CardsPurchased
	}
	return 0
}

// Pool separates achievements that persist from those reset every day.
type Pool string

const (
	Standard Pool = "standard"
	Daily    Pool = "daily"
)

func (p Pool) Valid() bool { return p == Standard || p == Daily }

// Definition is the static description of an achievement.
type Definition struct {
	ID          string  `json:"id" yaml:"id"`
	Description string  `json:"description" yaml:"description"`
	Criteria    string  `json:"criteria" yaml:"criteria"`
	Reward      int     `json:"reward" yaml:"reward"`
	Pool        Pool    `json:"pool" yaml:"pool"`
	Counter     Counter `json:"counter" yaml:"counter"`
	Threshold   int     `json:"threshold" yaml:"threshold"`
}

// Achievement is a definition plus one player's progress on it.
type Achievement struct {
	Definition
	Progress      int        `json:"progress"`
	Unlocked      bool       `json:"unlocked"`
	RewardClaimed bool       `json:"reward_claimed"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
	ClaimedAt     *time.Time `json:"claimed_at,omitempty"`
}

// Claimable reports whether a claim would pay out now.
func (a Achievement) Claimable() bool { return a.Unlocked && !a.RewardClaimed }

// State is the serialisable achievement record of one player.
type State struct {
	Achievements   []Achievement `json:"achievements"`
	LastDailyReset string        `json:"last_daily_reset"`
	// DailyBaseline holds the counters captured at the last daily reset;
	// daily achievements measure progress relative to it.
	DailyBaseline Snapshot `json:"daily_baseline"`
}

func (s *State) Find(id string) *Achievement {
	for i := range s.Achievements {
		if s.Achievements[i].ID == id {
			return &s.Achievements[i]
		}
	}
	return nil
}

// InPool returns copies of the achievements of one pool in stored order.
func (s State) InPool(p Pool) []Achievement {
	out := make([]Achievement, 0, len(s.Achievements))
	for _, a := range s.Achievements {
		if a.Pool == p {
			out = append(out, a)
		}
	}
	return out
}

// UnlockEvent is emitted once when an achievement flips to unlocked.
type UnlockEvent struct {
	AchievementID string    `json:"achievement_id"`
	Description   string    `json:"description"`
	Reward        int       `json:"reward"`
	Pool          Pool      `json:"pool"`
	UnlockedAt    time.Time `json:"unlocked_at"`
	VisibleUntil  time.Time `json:"visible_until"`
}

// Visible reports whether the event should still be displayed at now.
func (e UnlockEvent) Visible(now time.Time) bool { return now.Before(e.VisibleUntil) }

// ClaimResult describes the outcome of a claim. Claimed is false for the
// no-op case where the achievement is locked or already paid.
type ClaimResult struct {
	AchievementID string `json:"achievement_id"`
	Claimed       bool   `json:"claimed"`
	Reward        int    `json:"reward"`
	Pool          Pool   `json:"pool"`
}

// DefaultDefinitions is the built-in achievement catalog.
func DefaultDefinitions() []Definition {
	return []Definition{
		{ID: "first_pack", Description: "Acheter un pack", Criteria: "Acheter un pack dans la boutique",
			Reward: 100, Pool: Standard, Counter: PacksOpened, Threshold: 1},
		{ID: "ten_cards", Description: "Collectionner 10 cartes", Criteria: "Posséder 10 cartes dans votre collection",
			Reward: 200, Pool: Standard, Counter: CardCount, Threshold: 10},
		{ID: "collector_50", Description: "Collectionner 50 cartes", Criteria: "Posséder 50 cartes dans votre collection",
			Reward: 500, Pool: Standard, Counter: CardCount, Threshold: 50},
		{ID: "pack_addict", Description: "Ouvrir 25 packs", Criteria: "Acheter 25 packs dans la boutique",
			Reward: 1000, Pool: Standard, Counter: PacksOpened, Threshold: 25},
		{ID: "big_spender", Description: "Acheter 10 cartes", Criteria: "Acheter 10 cartes dans la boutique ou sur le marché",
			Reward: 500, Pool: Standard, Counter: CardsPurchased, Threshold: 10},
		{ID: "tycoon", Description: "Amasser 100 000 SpeedCoins", Criteria: "Posséder 100 000 SpeedCoins",
			Reward: 1000, Pool: Standard, Counter: CoinBalance, Threshold: 100000},
		{ID: "daily_pack", Description: "Acheter un pack aujourd'hui", Criteria: "Acheter un pack dans la boutique aujourd'hui",
			Reward: 50, Pool: Daily, Counter: PacksOpened, Threshold: 1},
		{ID: "daily_shop_card", Description: "Acheter une carte dans le shop aujourd'hui", Criteria: "Acheter une carte dans la boutique journalière",
			Reward: 50, Pool: Daily, Counter: CardsPurchased, Threshold: 1},
	}
}
