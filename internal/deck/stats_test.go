package deck

import (
	"math"
	"testing"

	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

func spell(id, name, manaCost string, cmc float64, qty int) Entry {
	return Entry{
		Card:     scryfall.Card{ID: id, Name: name, ManaCost: manaCost, CMC: cmc, TypeLine: "Instant"},
		Quantity: qty,
	}
}

func land(id, name string, qty int) Entry {
	return Entry{
		Card:     scryfall.Card{ID: id, Name: name, TypeLine: "Basic Land — Mountain"},
		Quantity: qty,
	}
}

func TestComputeStats_ManaCurve(t *testing.T) {
	entries := []Entry{
		spell("bolt", "Lightning Bolt", "{R}", 1, 4),
		spell("helix", "Lightning Helix", "{R}{W}", 2, 2),
		spell("emrakul", "Emrakul", "{15}", 15, 1),
		land("mtn", "Mountain", 20),
	}

	stats := ComputeStats(entries)

	if stats.ManaCurve[0] != 20 {
		t.Errorf("curve[0] = %d, want 20 (lands)", stats.ManaCurve[0])
	}
	if stats.ManaCurve[1] != 4 {
		t.Errorf("curve[1] = %d, want 4", stats.ManaCurve[1])
	}
	if stats.ManaCurve[2] != 2 {
		t.Errorf("curve[2] = %d, want 2", stats.ManaCurve[2])
	}
	// Everything at 7+ lands in the top bucket.
	if stats.ManaCurve[7] != 1 {
		t.Errorf("curve[7] = %d, want 1", stats.ManaCurve[7])
	}
}

func TestComputeStats_ColorDistribution(t *testing.T) {
	entries := []Entry{
		spell("bolt", "Lightning Bolt", "{R}", 1, 4),
		spell("helix", "Lightning Helix", "{R}{W}", 2, 2),
		spell("cryptic", "Cryptic Command", "{1}{U}{U}{U}", 4, 1),
	}

	stats := ComputeStats(entries)

	if stats.ColorDistribution["R"] != 6 {
		t.Errorf("R = %d, want 6", stats.ColorDistribution["R"])
	}
	if stats.ColorDistribution["W"] != 2 {
		t.Errorf("W = %d, want 2", stats.ColorDistribution["W"])
	}
	if stats.ColorDistribution["U"] != 3 {
		t.Errorf("U = %d, want 3", stats.ColorDistribution["U"])
	}
	if _, ok := stats.ColorDistribution["G"]; ok {
		t.Error("absent colors should not appear in the distribution")
	}
}

func TestComputeStats_AvgManaValueExcludesLands(t *testing.T) {
	entries := []Entry{
		spell("bolt", "Lightning Bolt", "{R}", 1, 2),
		spell("cryptic", "Cryptic Command", "{1}{U}{U}{U}", 4, 2),
		land("mtn", "Mountain", 4),
	}

	stats := ComputeStats(entries)

	// (1*2 + 4*2) / 4 spells = 2.5
	if math.Abs(stats.AvgManaValue-2.5) > 1e-9 {
		t.Errorf("AvgManaValue = %v, want 2.5", stats.AvgManaValue)
	}
}

func TestComputeStats_LandSpellSplit(t *testing.T) {
	entries := []Entry{
		spell("bolt", "Lightning Bolt", "{R}", 1, 4),
		land("mtn", "Mountain", 20),
	}

	stats := ComputeStats(entries)

	if stats.Lands != 20 || stats.Spells != 4 || stats.TotalCards != 24 {
		t.Errorf("split = %d lands / %d spells / %d total", stats.Lands, stats.Spells, stats.TotalCards)
	}
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil)

	if stats.TotalCards != 0 || stats.AvgManaValue != 0 {
		t.Errorf("empty deck stats = %+v", stats)
	}
}
