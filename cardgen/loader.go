package cardgen

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTables reads a YAML override file and merges it over DefaultTables.
// Each top-level key replaces the matching default entry wholesale, so a
// file that only lists weights.premium keeps every other default.
// The merged result is not validated; NewGenerator does that.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("read tables %s: %w", path, err)
	}
	return ParseTables(data)
}

// ParseTables merges YAML bytes over DefaultTables.
func ParseTables(data []byte) (Tables, error) {
	var override Tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&override); err != nil && !errors.Is(err, io.EOF) {
		return Tables{}, fmt.Errorf("parse tables: %w", err)
	}
	return mergeTables(DefaultTables(), override), nil
}

func mergeTables(base, over Tables) Tables {
	for tier, ws := range over.Weights {
		base.Weights[tier] = ws
	}
	for r, pr := range over.Prices {
		base.Prices[r] = pr
	}
	for c, xs := range over.Names {
		base.Names[c] = xs
	}
	for c, xs := range over.Suffixes {
		base.Suffixes[c] = xs
	}
	for c, p := range over.CategoryPhrases {
		base.CategoryPhrases[c] = p
	}
	for r, a := range over.RarityAdjectives {
		base.RarityAdjectives[r] = a
	}
	if over.ImageURL != "" {
		base.ImageURL = over.ImageURL
	}
	return base
}
