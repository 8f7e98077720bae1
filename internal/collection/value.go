package collection

import "strconv"

// EntryValue is the priced view of one entry.
type EntryValue struct {
	CardID   string  `json:"card_id"`
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	UnitUSD  float64 `json:"unit_usd"`
	TotalUSD float64 `json:"total_usd"`
}

// Value is the priced view of a whole collection.
type Value struct {
	Entries  []EntryValue `json:"entries"`
	TotalUSD float64      `json:"total_usd"`
}

// Valuation prices each entry at its Scryfall USD price times quantity
// and sums the total. Cards without a USD price count as zero.
func Valuation(entries []Entry) Value {
	v := Value{Entries: make([]EntryValue, 0, len(entries))}

	for _, e := range entries {
		unit := 0.0
		if e.Card.Prices.USD != nil {
			if p, err := strconv.ParseFloat(*e.Card.Prices.USD, 64); err == nil {
				unit = p
			}
		}
		total := unit * float64(e.Quantity)

		v.Entries = append(v.Entries, EntryValue{
			CardID:   e.Card.ID,
			Name:     e.Card.Name,
			Quantity: e.Quantity,
			UnitUSD:  unit,
			TotalUSD: total,
		})
		v.TotalUSD += total
	}

	return v
}
