// cardgen/tables.go - Static generation tables
package cardgen

// PriceRange is an inclusive price bound.
type PriceRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Tables holds every static table the generator draws from. Weights are
// relative; they do not need to sum to 100.
type Tables struct {
	Weights          map[PackTier]map[Rarity]int `yaml:"weights" json:"weights"`
	Prices           map[Rarity]PriceRange       `yaml:"prices" json:"prices"`
	Names            map[Category][]string       `yaml:"names" json:"names"`
	Suffixes         map[Category][]string       `yaml:"suffixes" json:"suffixes"`
	CategoryPhrases  map[Category]string         `yaml:"category_phrases" json:"category_phrases"`
	RarityAdjectives map[Rarity]string           `yaml:"rarity_adjectives" json:"rarity_adjectives"`
	ImageURL         string                      `yaml:"image_url" json:"image_url"`
}

const defaultImageURL = "https://images.pexels.com/photos/8775636/pexels-photo-8775636.jpeg"

// DefaultTables returns a fresh copy of the built-in tables.
func DefaultTables() Tables {
	return Tables{
		Weights: map[PackTier]map[Rarity]int{
			TierBasic:     {Common: 60, Rare: 30, Epic: 8, Legendary: 2, Mythic: 0},
			TierPremium:   {Common: 40, Rare: 35, Epic: 18, Legendary: 6, Mythic: 1},
			TierLegendary: {Common: 20, Rare: 30, Epic: 30, Legendary: 17, Mythic: 3},
		},
		Prices: map[Rarity]PriceRange{
			Common:    {Min: 500, Max: 1500},
			Rare:      {Min: 2000, Max: 4500},
			Epic:      {Min: 5000, Max: 9500},
			Legendary: {Min: 10000, Max: 18000},
			Mythic:    {Min: 20000, Max: 35000},
		},
		Names: map[Category][]string{
			Pilot: {
				"Lewis Hamilton", "Max Verstappen", "Charles Leclerc", "George Russell",
				"Carlos Sainz", "Lando Norris", "Oscar Piastri", "Fernando Alonso",
				"Lance Stroll", "Esteban Ocon", "Pierre Gasly", "Valtteri Bottas",
			},
			Circuit: {
				"Monaco", "Silverstone", "Monza", "Spa-Francorchamps",
				"Circuit de Suzuka", "Interlagos", "Circuit Gilles-Villeneuve",
				"Hungaroring", "Red Bull Ring", "Circuit de Barcelona",
			},
			Team: {
				"Mercedes AMG", "Red Bull Racing", "Scuderia Ferrari", "McLaren",
				"Aston Martin", "Alpine", "AlphaTauri", "Alfa Romeo",
				"Haas F1", "Williams Racing",
			},
			Engineer: {
				"Adrian Newey", "James Allison", "Rob Marshall", "Pat Fry",
				"Pierre Waché", "Andrew Shovlin", "Simone Resta",
			},
			TeamPrincipal: {
				"Christian Horner", "Toto Wolff", "Frédéric Vasseur", "Andrea Stella",
				"Mike Krack", "Franz Tost", "James Vowles",
			},
			Special: {
				"Safety Car", "Virtual Safety Car", "Drapeau à damier", "DRS",
				"Pit Stop", "Pole Position",
			},
		},
		Suffixes: map[Category][]string{
			Pilot:         {"Racing Card", "Championship Card", "Victory Card", "Legend Card"},
			Circuit:       {"Circuit", "Track Card", "Grand Prix Card"},
			Team:          {"Team Card", "Racing Team", "F1 Team"},
			Engineer:      {"Master Engineer", "Technical Card", "Innovation Card"},
			TeamPrincipal: {"Leadership Card", "Strategy Card", "Boss Card"},
			Special:       {"Edition Spéciale", "Collector Card", "Moment Card"},
		},
		CategoryPhrases: map[Category]string{
			Pilot:         "Pilote de Formule 1 d'exception",
			Circuit:       "Circuit mythique de la Formule 1",
			Team:          "Écurie de Formule 1 de renom",
			Engineer:      "Ingénieur technique de haut niveau",
			TeamPrincipal: "Dirigeant d'équipe stratégique",
			Special:       "Moment iconique de la Formule 1",
		},
		RarityAdjectives: map[Rarity]string{
			Common:    "Prometteur",
			Rare:      "Talentueux",
			Epic:      "Exceptionnel",
			Legendary: "Légendaire",
			Mythic:    "Mythique",
		},
		ImageURL: defaultImageURL,
	}
}

// TotalWeight sums the weights of a tier.
func (t Tables) TotalWeight(tier PackTier) int {
	total := 0
	for _, w := range t.Weights[tier] {
		total += w
	}
	return total
}

// Probability returns the share of a rarity within a tier, in [0,1].
func (t Tables) Probability(tier PackTier, r Rarity) float64 {
	total := t.TotalWeight(tier)
	if total == 0 {
		return 0
	}
	return float64(t.Weights[tier][r]) / float64(total)
}

// Clone deep-copies the tables so later edits to the source maps do not
// leak into a running generator.
func (t Tables) Clone() Tables {
	out := Tables{
		Weights:          make(map[PackTier]map[Rarity]int, len(t.Weights)),
		Prices:           make(map[Rarity]PriceRange, len(t.Prices)),
		Names:            make(map[Category][]string, len(t.Names)),
		Suffixes:         make(map[Category][]string, len(t.Suffixes)),
		CategoryPhrases:  make(map[Category]string, len(t.CategoryPhrases)),
		RarityAdjectives: make(map[Rarity]string, len(t.RarityAdjectives)),
		ImageURL:         t.ImageURL,
	}
	for tier, ws := range t.Weights {
		m := make(map[Rarity]int, len(ws))
		for r, w := range ws {
			m[r] = w
		}
		out.Weights[tier] = m
	}
	for r, pr := range t.Prices {
		out.Prices[r] = pr
	}
	for c, xs := range t.Names {
		out.Names[c] = append([]string(nil), xs...)
	}
	for c, xs := range t.Suffixes {
		out.Suffixes[c] = append([]string(nil), xs...)
	}
	for c, p := range t.CategoryPhrases {
		out.CategoryPhrases[c] = p
	}
	for r, a := range t.RarityAdjectives {
		out.RarityAdjectives[r] = a
	}
	return out
}
