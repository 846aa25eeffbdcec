// cardgen/types.go - Card, rarity and pack types
package cardgen

import (
	"fmt"
	"strings"
	"time"
)

// Rarity is ordered from most common to rarest.
type Rarity string

const (
	Common    Rarity = "common"
	Rare      Rarity = "rare"
	Epic      Rarity = "epic"
	Legendary Rarity = "legendary"
	Mythic    Rarity = "mythic"
)

var allRarities = []Rarity{Common, Rare, Epic, Legendary, Mythic}

// Rarities returns every rarity in ascending order. The draw walks weights
// in this order.
func Rarities() []Rarity {
	return append([]Rarity(nil), allRarities...)
}

// Rank returns the position of r in the ascending order, or -1.
func (r Rarity) Rank() int {
	for i, x := range allRarities {
		if x == r {
			return i
		}
	}
	return -1
}

func (r Rarity) Valid() bool { return r.Rank() >= 0 }

// Category groups cards by what they depict.
type Category string

const (
	Pilot         Category = "pilot"
	Circuit       Category = "circuit"
	Team          Category = "team"
	Engineer      Category = "engineer"
	TeamPrincipal Category = "team_principal"
	Special       Category = "special"
)

var allCategories = []Category{Pilot, Circuit, Team, Engineer, TeamPrincipal, Special}

func Categories() []Category {
	return append([]Category(nil), allCategories...)
}

func (c Category) Valid() bool {
	for _, x := range allCategories {
		if x == c {
			return true
		}
	}
	return false
}

// PackTier selects which rarity distribution a pack draws from.
type PackTier string

const (
	TierBasic     PackTier = "basic"
	TierPremium   PackTier = "premium"
	TierLegendary PackTier = "legendary"
)

var allTiers = []PackTier{TierBasic, TierPremium, TierLegendary}

func Tiers() []PackTier {
	return append([]PackTier(nil), allTiers...)
}

func (t PackTier) Valid() bool {
	for _, x := range allTiers {
		if x == t {
			return true
		}
	}
	return false
}

// ParseTier converts user input into a PackTier.
func ParseTier(s string) (PackTier, error) {
	t := PackTier(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: unknown pack tier %q", ErrInvalidArgument, s)
	}
	return t, nil
}

// Card is a single collectible.
type Card struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    Category   `json:"category"`
	Rarity      Rarity     `json:"rarity"`
	Price       int        `json:"price"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url,omitempty"`
	ObtainedAt  *time.Time `json:"obtained_at,omitempty"`
}

// Pack is a purchasable bundle of randomly generated cards.
type Pack struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Tier        PackTier `json:"tier"`
	Price       int      `json:"price"`
	CardCount   int      `json:"card_count"`
	Description string   `json:"description"`
}

func (p Pack) Validate() error {
	if !p.Tier.Valid() {
		return fmt.Errorf("%w: pack %q has unknown tier %q", ErrInvalidArgument, p.ID, p.Tier)
	}
	if p.CardCount <= 0 {
		return fmt.Errorf("%w: pack %q card count must be > 0", ErrInvalidArgument, p.ID)
	}
	if p.Price < 0 {
		return fmt.Errorf("%w: pack %q price must be >= 0", ErrInvalidArgument, p.ID)
	}
	return nil
}

// DefaultPacks is the shop catalog seeded on first start.
func DefaultPacks() []Pack {
	return []Pack{
		{ID: "basic", Name: "Pack Débutant", Tier: TierBasic, Price: 2500, CardCount: 3,
			Description: "Pack parfait pour commencer votre collection"},
		{ID: "premium", Name: "Pack Premium", Tier: TierPremium, Price: 7500, CardCount: 5,
			Description: "Chances accrues d'obtenir des cartes rares"},
		{ID: "legendary", Name: "Pack Légendaire", Tier: TierLegendary, Price: 15000, CardCount: 7,
			Description: "Fortes chances d'obtenir des cartes épiques"},
	}
}
