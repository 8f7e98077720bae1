// Package storage provides SQLite-backed persistence for accounts,
// collections, decks and trades.
package storage

import (
	"context"
	"errors"

	"github.com/mtgbinder/mtgbinder/internal/collection"
	"github.com/mtgbinder/mtgbinder/internal/deck"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("storage: not found")

// CollectionStore is the persistence surface for user collections.
// Implementations must make UpsertCard durable before returning: the
// import pipeline relies on each merged card surviving an interrupted
// run.
type CollectionStore interface {
	// GetCollection returns every entry in the user's collection.
	GetCollection(ctx context.Context, userID string) ([]collection.Entry, error)

	// PutCollection replaces the user's collection wholesale.
	PutCollection(ctx context.Context, userID string, entries []collection.Entry) error

	// UpsertCard merges one resolved card into the collection: an
	// existing printing has its quantity incremented by one, a novel
	// printing becomes a new entry with default metadata.
	UpsertCard(ctx context.Context, userID string, card scryfall.Card) error

	// UpdateEntry overwrites the mutable fields of one entry. A
	// quantity of zero deletes the row.
	UpdateEntry(ctx context.Context, userID string, entry collection.Entry) error

	// RemoveCard deletes one entry by printing id.
	RemoveCard(ctx context.Context, userID, cardID string) error
}

// DeckStore is the persistence surface for decks.
type DeckStore interface {
	CreateDeck(ctx context.Context, d *deck.Deck) error
	GetDeck(ctx context.Context, id string) (*deck.Deck, error)
	ListDecks(ctx context.Context, userID string) ([]deck.Deck, error)
	UpdateDeck(ctx context.Context, d *deck.Deck) error
	DeleteDeck(ctx context.Context, id string) error
}
