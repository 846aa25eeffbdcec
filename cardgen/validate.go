package cardgen

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrConfiguration marks a malformed generation table. It is raised
	// once at startup, never per draw.
	ErrConfiguration = errors.New("invalid card generation configuration")
	// ErrInvalidArgument marks bad caller input such as an unknown tier.
	ErrInvalidArgument = errors.New("invalid argument")
)

// ConfigError lists every problem found while validating Tables.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	return "config validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// Validate checks the tables and returns a *ConfigError describing all
// problems, or nil. Problems are reported in declared tier, rarity and
// category order so the output is stable.
func (t Tables) Validate() error {
	var errs []string

	for _, tier := range allTiers {
		weights, ok := t.Weights[tier]
		if !ok {
			errs = append(errs, fmt.Sprintf("weights.%s is missing", tier))
			continue
		}
		total := 0
		for _, r := range allRarities {
			w := weights[r]
			if w < 0 {
				errs = append(errs, fmt.Sprintf("weights.%s.%s must be >= 0", tier, r))
				continue
			}
			total += w
		}
		var unknown []string
		for r := range weights {
			if !r.Valid() {
				unknown = append(unknown, string(r))
			}
		}
		sort.Strings(unknown)
		for _, r := range unknown {
			errs = append(errs, fmt.Sprintf("weights.%s has unknown rarity %q", tier, r))
		}
		if total == 0 {
			errs = append(errs, fmt.Sprintf("weights.%s must have a positive total", tier))
		}
	}
	var unknownTiers []string
	for tier := range t.Weights {
		if !tier.Valid() {
			unknownTiers = append(unknownTiers, string(tier))
		}
	}
	sort.Strings(unknownTiers)
	for _, tier := range unknownTiers {
		errs = append(errs, fmt.Sprintf("weights has unknown tier %q", tier))
	}

	for _, r := range allRarities {
		pr, ok := t.Prices[r]
		if !ok {
			errs = append(errs, fmt.Sprintf("prices.%s is missing", r))
			continue
		}
		if pr.Min < 0 {
			errs = append(errs, fmt.Sprintf("prices.%s.min must be >= 0", r))
		}
		if pr.Min > pr.Max {
			errs = append(errs, fmt.Sprintf("prices.%s: min %d > max %d", r, pr.Min, pr.Max))
		}
		if t.RarityAdjectives[r] == "" {
			errs = append(errs, fmt.Sprintf("rarity_adjectives.%s is missing", r))
		}
	}

	for _, c := range allCategories {
		if len(nonEmpty(t.Names[c])) == 0 {
			errs = append(errs, fmt.Sprintf("names.%s must not be empty", c))
		}
		if len(nonEmpty(t.Suffixes[c])) == 0 {
			errs = append(errs, fmt.Sprintf("suffixes.%s must not be empty", c))
		}
		if strings.TrimSpace(t.CategoryPhrases[c]) == "" {
			errs = append(errs, fmt.Sprintf("category_phrases.%s is missing", c))
		}
	}

	if len(errs) > 0 {
		return &ConfigError{Problems: errs}
	}
	return nil
}

func nonEmpty(xs []string) []string {
	out := make([]string, 0, len(xs))
	for _, x := range xs {
		if strings.TrimSpace(x) != "" {
			out = append(out, x)
		}
	}
	return out
}
