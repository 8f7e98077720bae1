package deck

import (
	"strings"
)

// CurveBuckets is the number of mana curve buckets; the last bucket
// aggregates mana value 7 and above.
const CurveBuckets = 8

// Stats is the statistical summary of one deck.
type Stats struct {
	// ManaCurve counts cards per mana value, 0 through 7+.
	ManaCurve [CurveBuckets]int `json:"mana_curve"`

	// ColorDistribution counts colored mana symbols in casting costs,
	// keyed by WUBRG letter and weighted by quantity.
	ColorDistribution map[string]int `json:"color_distribution"`

	// AvgManaValue is the mean mana value of non-land cards.
	AvgManaValue float64 `json:"avg_mana_value"`

	// Lands and Spells count cards by land/non-land split.
	Lands  int `json:"lands"`
	Spells int `json:"spells"`

	// TotalCards counts all cards including lands.
	TotalCards int `json:"total_cards"`
}

// colorSymbols are the five colored mana symbols counted in casting
// costs.
var colorSymbols = []string{"W", "U", "B", "R", "G"}

// ComputeStats derives the mana curve, color distribution, average
// mana value (lands excluded) and land ratio for a deck's entries,
// weighting every measure by entry quantity.
func ComputeStats(entries []Entry) Stats {
	stats := Stats{ColorDistribution: make(map[string]int, len(colorSymbols))}

	var cmcSum float64
	for _, e := range entries {
		qty := e.Quantity
		if qty <= 0 {
			qty = 1
		}
		stats.TotalCards += qty

		bucket := int(e.Card.CMC)
		if bucket >= CurveBuckets {
			bucket = CurveBuckets - 1
		}
		if bucket < 0 {
			bucket = 0
		}
		stats.ManaCurve[bucket] += qty

		for _, symbol := range colorSymbols {
			if n := strings.Count(e.Card.ManaCost, "{"+symbol+"}"); n > 0 {
				stats.ColorDistribution[symbol] += n * qty
			}
		}

		if isLand(e) {
			stats.Lands += qty
		} else {
			stats.Spells += qty
			cmcSum += e.Card.CMC * float64(qty)
		}
	}

	if stats.Spells > 0 {
		stats.AvgManaValue = cmcSum / float64(stats.Spells)
	}

	return stats
}

func isLand(e Entry) bool {
	return strings.Contains(e.Card.TypeLine, "Land")
}
