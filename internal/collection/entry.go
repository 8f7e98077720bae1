// Package collection holds the user collection model: quantity-bearing
// card entries with condition and trade metadata, plus the merge,
// sorting and filtering logic over them.
package collection

import "github.com/mtgbinder/mtgbinder/internal/scryfall"

// Condition is the physical grade of an owned card.
type Condition string

// Condition grades, best to worst.
const (
	ConditionMint           Condition = "M/NM"
	ConditionSlightlyPlayed Condition = "SP"
	ConditionPlayed         Condition = "PL"
	ConditionHeavilyPlayed  Condition = "HP"
	ConditionPoor           Condition = "Poor"
)

// Valid reports whether c is a known condition grade.
func (c Condition) Valid() bool {
	switch c {
	case ConditionMint, ConditionSlightlyPlayed, ConditionPlayed, ConditionHeavilyPlayed, ConditionPoor:
		return true
	}
	return false
}

// Entry is one owned card in a collection. The card snapshot is
// immutable; quantity and the ownership metadata are mutable. An entry
// whose quantity reaches zero is considered deleted and is pruned.
type Entry struct {
	Card      scryfall.Card `json:"card"`
	Quantity  int           `json:"quantity"`
	Condition Condition     `json:"condition"`
	Foil      bool          `json:"foil"`
	ForTrade  bool          `json:"for_trade"`

	// AllSets lists the printings the user has flagged as available,
	// used to populate the set picker.
	AllSets []string `json:"all_sets,omitempty"`
}

// NewEntry creates an entry for a freshly resolved card with default
// ownership metadata.
func NewEntry(card scryfall.Card) Entry {
	return Entry{
		Card:      card,
		Quantity:  1,
		Condition: ConditionMint,
		Foil:      false,
		ForTrade:  false,
		AllSets:   []string{card.SetCode},
	}
}
