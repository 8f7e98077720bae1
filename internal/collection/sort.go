package collection

import (
	"sort"
	"strings"
)

// SortField selects the entry attribute used for ordering.
type SortField string

// Supported sort fields.
const (
	SortByName   SortField = "name"
	SortByCMC    SortField = "cmc"
	SortByColor  SortField = "color"
	SortByRarity SortField = "rarity"
	SortByType   SortField = "type"
	SortBySet    SortField = "set"
)

// Sort orders entries by the given field. The sort is stable so that
// ties keep their relative order. An unknown field leaves the order
// unchanged.
func Sort(entries []Entry, field SortField, ascending bool) {
	less := lessFunc(field)
	if less == nil {
		return
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if ascending {
			return less(entries[i], entries[j])
		}
		return less(entries[j], entries[i])
	})
}

func lessFunc(field SortField) func(a, b Entry) bool {
	switch field {
	case SortByName:
		return func(a, b Entry) bool {
			return strings.ToLower(a.Card.Name) < strings.ToLower(b.Card.Name)
		}
	case SortByCMC:
		return func(a, b Entry) bool {
			return a.Card.CMC < b.Card.CMC
		}
	case SortByColor:
		return func(a, b Entry) bool {
			return strings.Join(a.Card.Colors, "") < strings.Join(b.Card.Colors, "")
		}
	case SortByRarity:
		return func(a, b Entry) bool {
			return a.Card.Rarity < b.Card.Rarity
		}
	case SortByType:
		return func(a, b Entry) bool {
			return a.Card.TypeLine < b.Card.TypeLine
		}
	case SortBySet:
		return func(a, b Entry) bool {
			return a.Card.SetCode < b.Card.SetCode
		}
	}
	return nil
}
