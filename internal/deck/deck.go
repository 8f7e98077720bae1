// Package deck holds the deck model and its derived statistics.
package deck

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

// ErrCardNotInDeck is returned when an operation references a card id
// the deck does not contain.
var ErrCardNotInDeck = errors.New("card not in deck")

// Entry is a quantity-bearing card within one deck.
type Entry struct {
	Card     scryfall.Card `json:"card"`
	Quantity int           `json:"quantity"`
}

// Commander is the reduced card projection stored on Commander-format
// decks.
type Commander struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	TypeLine  string              `json:"type_line"`
	ImageURIs *scryfall.ImageURIs `json:"image_uris,omitempty"`
}

// CommanderFromCard projects a full card down to the commander fields.
func CommanderFromCard(card scryfall.Card) *Commander {
	return &Commander{
		ID:        card.ID,
		Name:      card.Name,
		TypeLine:  card.TypeLine,
		ImageURIs: card.ImageURIs,
	}
}

// Deck is a named list of card entries owned by one user.
type Deck struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Name      string     `json:"name"`
	Format    string     `json:"format"`
	Commander *Commander `json:"commander,omitempty"`
	Entries   []Entry    `json:"entries"`
	CreatedAt time.Time  `json:"created_at"`
}

// New creates an empty deck.
func New(userID, name, format string) *Deck {
	return &Deck{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Format:    format,
		Entries:   []Entry{},
		CreatedAt: time.Now().UTC(),
	}
}

// AddCard merges a card into the deck, keyed by printing id: an
// existing entry has its quantity incremented, a novel id appends a
// new entry with the given quantity.
func (d *Deck) AddCard(card scryfall.Card, quantity int) {
	if quantity <= 0 {
		quantity = 1
	}
	for i := range d.Entries {
		if d.Entries[i].Card.ID == card.ID {
			d.Entries[i].Quantity += quantity
			return
		}
	}
	d.Entries = append(d.Entries, Entry{Card: card, Quantity: quantity})
}

// SetQuantity sets the quantity for a card already in the deck.
// Quantity zero removes the entry.
func (d *Deck) SetQuantity(cardID string, quantity int) error {
	for i := range d.Entries {
		if d.Entries[i].Card.ID != cardID {
			continue
		}
		if quantity <= 0 {
			d.Entries = append(d.Entries[:i], d.Entries[i+1:]...)
		} else {
			d.Entries[i].Quantity = quantity
		}
		return nil
	}
	return ErrCardNotInDeck
}

// RemoveCard removes a card entirely.
func (d *Deck) RemoveCard(cardID string) error {
	return d.SetQuantity(cardID, 0)
}

// CardCount returns the total number of cards, counting quantities.
func (d *Deck) CardCount() int {
	total := 0
	for _, e := range d.Entries {
		total += e.Quantity
	}
	return total
}
