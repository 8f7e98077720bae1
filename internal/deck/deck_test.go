package deck

import (
	"testing"

	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

func card(id, name string) scryfall.Card {
	return scryfall.Card{ID: id, Name: name, TypeLine: "Instant"}
}

func TestNew(t *testing.T) {
	d := New("user-1", "Burn", "modern")

	if d.ID == "" {
		t.Error("deck id not assigned")
	}
	if d.UserID != "user-1" || d.Name != "Burn" || d.Format != "modern" {
		t.Errorf("deck fields wrong: %+v", d)
	}
	if d.Commander != nil {
		t.Error("new deck should have no commander")
	}
}

func TestAddCard_NovelAndExisting(t *testing.T) {
	d := New("u", "Burn", "modern")

	d.AddCard(card("bolt", "Lightning Bolt"), 1)
	d.AddCard(card("bolt", "Lightning Bolt"), 3)

	if len(d.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(d.Entries))
	}
	if d.Entries[0].Quantity != 4 {
		t.Errorf("Quantity = %d, want 4", d.Entries[0].Quantity)
	}
}

// Deck card merging is keyed by printing id, same as the collection:
// two printings of one card name stay separate rows. This pins the
// merge-key policy for the deck pathway.
func TestAddCard_SameNameDifferentPrintings(t *testing.T) {
	d := New("u", "Burn", "modern")

	d.AddCard(scryfall.Card{ID: "bolt-lea", Name: "Lightning Bolt", SetCode: "lea"}, 1)
	d.AddCard(scryfall.Card{ID: "bolt-m25", Name: "Lightning Bolt", SetCode: "a25"}, 1)

	if len(d.Entries) != 2 {
		t.Fatalf("len(Entries) = %d, want 2 (one per printing)", len(d.Entries))
	}
}

func TestSetQuantity(t *testing.T) {
	d := New("u", "Burn", "modern")
	d.AddCard(card("bolt", "Lightning Bolt"), 4)

	if err := d.SetQuantity("bolt", 2); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	if d.Entries[0].Quantity != 2 {
		t.Errorf("Quantity = %d, want 2", d.Entries[0].Quantity)
	}

	// Zero removes the entry.
	if err := d.SetQuantity("bolt", 0); err != nil {
		t.Fatalf("SetQuantity failed: %v", err)
	}
	if len(d.Entries) != 0 {
		t.Errorf("entry not pruned at quantity zero")
	}

	if err := d.SetQuantity("missing", 1); err != ErrCardNotInDeck {
		t.Errorf("err = %v, want ErrCardNotInDeck", err)
	}
}

func TestCardCount(t *testing.T) {
	d := New("u", "Burn", "modern")
	d.AddCard(card("bolt", "Lightning Bolt"), 4)
	d.AddCard(card("shock", "Shock"), 2)

	if got := d.CardCount(); got != 6 {
		t.Errorf("CardCount() = %d, want 6", got)
	}
}

func TestCommanderFromCard(t *testing.T) {
	c := scryfall.Card{
		ID:       "atraxa",
		Name:     "Atraxa, Praetors' Voice",
		TypeLine: "Legendary Creature — Phyrexian Angel Horror",
		ImageURIs: &scryfall.ImageURIs{
			Normal: "https://img.example/atraxa.jpg",
		},
		ManaCost: "{G}{W}{U}{B}",
	}

	cmd := CommanderFromCard(c)

	if cmd.ID != "atraxa" || cmd.Name != c.Name || cmd.TypeLine != c.TypeLine {
		t.Errorf("projection wrong: %+v", cmd)
	}
	if cmd.ImageURIs == nil || cmd.ImageURIs.Normal != c.ImageURIs.Normal {
		t.Error("image uris not carried")
	}
}
