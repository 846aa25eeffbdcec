package cardgen

import (
	"fmt"
	"math"
	"sort"
)

// RarityStat compares the declared and observed share of one rarity.
type RarityStat struct {
	Rarity   Rarity  `json:"rarity"`
	Declared float64 `json:"declared"`
	Observed float64 `json:"observed"`
	Count    int     `json:"count"`
}

// SimReport summarises a Monte-Carlo run of pack openings for one tier.
type SimReport struct {
	Tier       PackTier     `json:"tier"`
	Packs      int          `json:"packs"`
	Cards      int          `json:"cards"`
	Rarities   []RarityStat `json:"rarities"`
	MeanValue  float64      `json:"mean_value"`
	StdDev     float64      `json:"std_dev"`
	P50Value   float64      `json:"p50_value"`
	P90Value   float64      `json:"p90_value"`
	P99Value   float64      `json:"p99_value"`
	MaxDeltaPP float64      `json:"max_delta_pp"`
}

// Simulate opens packs packs of cardsPerPack cards and reports observed
// rarity frequencies and the distribution of total pack value.
func (g *Generator) Simulate(tier PackTier, cardsPerPack, packs int) (SimReport, error) {
	if packs <= 0 {
		return SimReport{}, fmt.Errorf("%w: packs must be > 0, got %d", ErrInvalidArgument, packs)
	}
	counts := make(map[Rarity]int, len(allRarities))
	values := make([]int, 0, packs)
	for i := 0; i < packs; i++ {
		cards, err := g.OpenPack(tier, cardsPerPack)
		if err != nil {
			return SimReport{}, err
		}
		v := 0
		for _, c := range cards {
			counts[c.Rarity]++
			v += c.Price
		}
		values = append(values, v)
	}

	rep := SimReport{Tier: tier, Packs: packs, Cards: packs * cardsPerPack}
	for _, r := range allRarities {
		st := RarityStat{
			Rarity:   r,
			Declared: g.tables.Probability(tier, r),
			Count:    counts[r],
			Observed: float64(counts[r]) / float64(rep.Cards),
		}
		if d := math.Abs(st.Observed-st.Declared) * 100; d > rep.MaxDeltaPP {
			rep.MaxDeltaPP = d
		}
		rep.Rarities = append(rep.Rarities, st)
	}

	var sum float64
	for _, v := range values {
		sum += float64(v)
	}
	rep.MeanValue = sum / float64(len(values))
	var acc float64
	for _, v := range values {
		d := float64(v) - rep.MeanValue
		acc += d * d
	}
	rep.StdDev = math.Sqrt(acc / float64(len(values)))

	sort.Ints(values)
	percentile := func(p float64) float64 {
		idx := int(math.Ceil(p*float64(len(values)))) - 1
		if idx < 0 {
			idx = 0
		}
		return float64(values[idx])
	}
	rep.P50Value = percentile(0.50)
	rep.P90Value = percentile(0.90)
	rep.P99Value = percentile(0.99)
	return rep, nil
}
