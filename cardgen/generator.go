// cardgen/generator.go - Weighted card generation and pack opening
package cardgen

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator draws cards from validated Tables. It holds no mutable state
// besides its random source, so one instance can serve every request.
type Generator struct {
	tables Tables
	totals map[PackTier]int
	names  map[Category][]string
	suffix map[Category][]string

	rng   RandomSource
	now   func() time.Time
	newID func() string
}

type Option func(*Generator)

func WithRandomSource(src RandomSource) Option {
	return func(g *Generator) {
		if src != nil {
			g.rng = src
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

func WithIDFunc(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// NewGenerator validates the tables once and precomputes per-tier totals.
// A malformed table yields a *ConfigError wrapping ErrConfiguration.
func NewGenerator(tables Tables, opts ...Option) (*Generator, error) {
	if err := tables.Validate(); err != nil {
		return nil, err
	}
	tables = tables.Clone()
	g := &Generator{
		tables: tables,
		totals: make(map[PackTier]int, len(allTiers)),
		names:  make(map[Category][]string, len(allCategories)),
		suffix: make(map[Category][]string, len(allCategories)),
		rng:    DefaultSource(),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
	for _, tier := range allTiers {
		g.totals[tier] = tables.TotalWeight(tier)
	}
	for _, c := range allCategories {
		g.names[c] = nonEmpty(tables.Names[c])
		g.suffix[c] = nonEmpty(tables.Suffixes[c])
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Tables returns the tables the generator was built with.
func (g *Generator) Tables() Tables { return g.tables }

// Generate draws a single card for the given tier.
func (g *Generator) Generate(tier PackTier) (Card, error) {
	if !tier.Valid() {
		return Card{}, fmt.Errorf("%w: unknown pack tier %q", ErrInvalidArgument, tier)
	}
	rarity, err := g.drawRarity(tier)
	if err != nil {
		return Card{}, err
	}
	category := allCategories[g.rng.IntN(len(allCategories))]
	pr := g.tables.Prices[rarity]
	obtained := g.now()

	return Card{
		ID:          g.newID(),
		Name:        g.drawName(category),
		Category:    category,
		Rarity:      rarity,
		Price:       pr.Min + g.rng.IntN(pr.Max-pr.Min+1),
		Description: Describe(g.tables, category, rarity),
		ImageURL:    g.tables.ImageURL,
		ObtainedAt:  &obtained,
	}, nil
}

// OpenPack draws count independent cards. Duplicates are allowed and the
// result keeps generation order.
func (g *Generator) OpenPack(tier PackTier, count int) ([]Card, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: unknown pack tier %q", ErrInvalidArgument, tier)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: card count must be > 0, got %d", ErrInvalidArgument, count)
	}
	cards := make([]Card, 0, count)
	for i := 0; i < count; i++ {
		c, err := g.Generate(tier)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// drawRarity picks r in [0,total) and returns the first rarity whose
// cumulative weight exceeds r. A zero weight owns an empty interval.
func (g *Generator) drawRarity(tier PackTier) (Rarity, error) {
	total := g.totals[tier]
	if total <= 0 {
		return "", fmt.Errorf("%w: tier %s has zero total weight", ErrConfiguration, tier)
	}
	r := g.rng.IntN(total)
	cumulative := 0
	weights := g.tables.Weights[tier]
	for _, rarity := range allRarities {
		cumulative += weights[rarity]
		if r < cumulative {
			return rarity, nil
		}
	}
	return "", fmt.Errorf("%w: draw %d fell outside tier %s", ErrConfiguration, r, tier)
}

func (g *Generator) drawName(c Category) string {
	names, suffixes := g.names[c], g.suffix[c]
	return names[g.rng.IntN(len(names))] + " " + suffixes[g.rng.IntN(len(suffixes))]
}

// Describe builds the deterministic description for a category and rarity.
func Describe(t Tables, c Category, r Rarity) string {
	return t.RarityAdjectives[r] + " " + strings.ToLower(t.CategoryPhrases[c])
}
