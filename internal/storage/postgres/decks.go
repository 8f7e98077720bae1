package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mtgbinder/mtgbinder/internal/deck"
	"github.com/mtgbinder/mtgbinder/internal/storage"
)

// DeckRepository persists decks with JSONB card snapshots.
type DeckRepository struct {
	store *Store
}

// CreateDeck inserts a deck and its entries.
func (r *DeckRepository) CreateDeck(ctx context.Context, d *deck.Deck) error {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	tx, err := r.store.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	commander, err := encodeCommander(d.Commander)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO decks (id, user_id, name, format, commander, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, d.ID, d.UserID, d.Name, d.Format, commander, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}

	if err := insertDeckCards(ctx, tx, d); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit deck: %w", err)
	}
	return nil
}

// GetDeck retrieves a deck with its entries.
func (r *DeckRepository) GetDeck(ctx context.Context, id string) (*deck.Deck, error) {
	const query = `
		SELECT id, user_id, name, format, commander, created_at
		FROM decks
		WHERE id = $1
	`

	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	var (
		d         deck.Deck
		commander []byte
	)
	err := r.store.pool.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.UserID, &d.Name, &d.Format, &commander, &d.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deck: %w", err)
	}

	if d.Commander, err = decodeCommander(commander); err != nil {
		return nil, err
	}
	if d.Entries, err = r.deckCards(ctx, d.ID); err != nil {
		return nil, err
	}

	return &d, nil
}

// ListDecks returns the user's decks, newest first, entries included.
func (r *DeckRepository) ListDecks(ctx context.Context, userID string) ([]deck.Deck, error) {
	const query = `
		SELECT id, user_id, name, format, commander, created_at
		FROM decks
		WHERE user_id = $1
		ORDER BY created_at DESC, id
	`

	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	rows, err := r.store.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decks: %w", err)
	}
	defer rows.Close()

	var decks []deck.Deck
	for rows.Next() {
		var (
			d         deck.Deck
			commander []byte
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.Name, &d.Format, &commander, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		if d.Commander, err = decodeCommander(commander); err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate decks: %w", err)
	}

	for i := range decks {
		if decks[i].Entries, err = r.deckCards(ctx, decks[i].ID); err != nil {
			return nil, err
		}
	}

	return decks, nil
}

// UpdateDeck overwrites the deck header and replaces its entries.
func (r *DeckRepository) UpdateDeck(ctx context.Context, d *deck.Deck) error {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	tx, err := r.store.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	commander, err := encodeCommander(d.Commander)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE decks SET name = $1, format = $2, commander = $3
		WHERE id = $4
	`, d.Name, d.Format, commander, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update deck: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM deck_cards WHERE deck_id = $1`, d.ID); err != nil {
		return fmt.Errorf("failed to clear deck cards: %w", err)
	}
	if err := insertDeckCards(ctx, tx, d); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit deck: %w", err)
	}
	return nil
}

// DeleteDeck removes a deck and, via cascade, its entries.
func (r *DeckRepository) DeleteDeck(ctx context.Context, id string) error {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	tag, err := r.store.pool.Exec(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *DeckRepository) deckCards(ctx context.Context, deckID string) ([]deck.Entry, error) {
	rows, err := r.store.pool.Query(ctx, `
		SELECT card_data, quantity
		FROM deck_cards
		WHERE deck_id = $1
		ORDER BY position
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deck cards: %w", err)
	}
	defer rows.Close()

	entries := []deck.Entry{}
	for rows.Next() {
		var (
			entry    deck.Entry
			cardData []byte
		)
		if err := rows.Scan(&cardData, &entry.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan deck card: %w", err)
		}
		if err := json.Unmarshal(cardData, &entry.Card); err != nil {
			return nil, fmt.Errorf("failed to decode deck card: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deck cards: %w", err)
	}

	return entries, nil
}

func insertDeckCards(ctx context.Context, tx pgx.Tx, d *deck.Deck) error {
	const insert = `
		INSERT INTO deck_cards (deck_id, card_id, card_data, quantity)
		VALUES ($1, $2, $3, $4)
	`
	for _, entry := range d.Entries {
		cardData, err := json.Marshal(entry.Card)
		if err != nil {
			return fmt.Errorf("failed to encode deck card %s: %w", entry.Card.ID, err)
		}
		if _, err := tx.Exec(ctx, insert, d.ID, entry.Card.ID, cardData, entry.Quantity); err != nil {
			return fmt.Errorf("failed to insert deck card %s: %w", entry.Card.ID, err)
		}
	}
	return nil
}

func encodeCommander(c *deck.Commander) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode commander: %w", err)
	}
	return data, nil
}

func decodeCommander(raw []byte) (*deck.Commander, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var c deck.Commander
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to decode commander: %w", err)
	}
	return &c, nil
}
