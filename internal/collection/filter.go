package collection

import (
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

// Color buckets used by the filter UI.
const (
	ColorWhite      = "White"
	ColorBlue       = "Blue"
	ColorBlack      = "Black"
	ColorRed        = "Red"
	ColorGreen      = "Green"
	ColorColorless  = "Colorless"
	ColorMulticolor = "Multicolor"
)

var colorNames = map[string]string{
	"W": ColorWhite,
	"U": ColorBlue,
	"B": ColorBlack,
	"R": ColorRed,
	"G": ColorGreen,
}

// ColorBucket classifies a card into a single display color: one of
// the five colors, Colorless, or Multicolor.
func ColorBucket(card scryfall.Card) string {
	if len(card.Colors) == 0 {
		return ColorColorless
	}
	if len(card.Colors) > 1 {
		return ColorMulticolor
	}
	return colorNames[card.Colors[0]]
}

// Filter describes the optional criteria applied to a collection view.
// Zero-valued fields match everything.
type Filter struct {
	// Set matches the set code or full set name.
	Set string

	// Type matches a substring of the type line (e.g. "Creature").
	Type string

	// Color matches the card's color bucket.
	Color string

	// Query fuzzy-matches against card names.
	Query string
}

// Apply returns the entries matching every set criterion, preserving
// input order except that a fuzzy query ranks results by match score.
func (f Filter) Apply(entries []Entry) []Entry {
	matched := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Set != "" && !strings.EqualFold(e.Card.SetCode, f.Set) && !strings.EqualFold(e.Card.SetName, f.Set) {
			continue
		}
		if f.Type != "" && !strings.Contains(strings.ToLower(e.Card.TypeLine), strings.ToLower(f.Type)) {
			continue
		}
		if f.Color != "" && ColorBucket(e.Card) != f.Color {
			continue
		}
		matched = append(matched, e)
	}

	if f.Query == "" {
		return matched
	}

	names := make([]string, len(matched))
	for i, e := range matched {
		names[i] = e.Card.Name
	}

	ranked := fuzzy.Find(f.Query, names)
	results := make([]Entry, 0, len(ranked))
	for _, m := range ranked {
		results = append(results, matched[m.Index])
	}
	return results
}
