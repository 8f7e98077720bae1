package collection

import "github.com/mtgbinder/mtgbinder/internal/scryfall"

// Merge folds newly resolved cards into an existing entry set.
//
// Entries are keyed by Scryfall printing id: a resolved card whose id
// already exists increments that entry's quantity by one and leaves
// condition, foil and trade flags untouched; a novel id appends a new
// entry with default metadata. The same card appearing twice in cards
// increments twice. The fold is deterministic and does not mutate its
// inputs.
func Merge(entries []Entry, cards []scryfall.Card) []Entry {
	merged := make([]Entry, len(entries))
	copy(merged, entries)

	index := make(map[string]int, len(merged))
	for i, e := range merged {
		index[e.Card.ID] = i
	}

	for _, card := range cards {
		if i, ok := index[card.ID]; ok {
			merged[i].Quantity++
			continue
		}
		index[card.ID] = len(merged)
		merged = append(merged, NewEntry(card))
	}

	return merged
}

// Prune removes entries whose quantity has reached zero.
func Prune(entries []Entry) []Entry {
	kept := entries[:0:0]
	for _, e := range entries {
		if e.Quantity > 0 {
			kept = append(kept, e)
		}
	}
	return kept
}
