package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mtgbinder/mtgbinder/internal/deck"
)

// DeckRepository persists decks. The deck row holds the header fields
// and an optional commander snapshot; deck_cards holds the list
// entries keyed by (deck_id, card_id).
type DeckRepository struct {
	db *DB
}

// CreateDeck inserts a deck and its entries.
func (r *DeckRepository) CreateDeck(ctx context.Context, d *deck.Deck) error {
	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	commander, err := encodeCommander(d.Commander)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO decks (id, user_id, name, format, commander, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, d.ID, d.UserID, d.Name, d.Format, commander, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create deck: %w", err)
	}

	if err := insertDeckCards(ctx, tx, d); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deck: %w", err)
	}
	return nil
}

// GetDeck retrieves a deck with its entries. Returns ErrNotFound when
// the id does not exist.
func (r *DeckRepository) GetDeck(ctx context.Context, id string) (*deck.Deck, error) {
	query := `
		SELECT id, user_id, name, format, commander, created_at
		FROM decks
		WHERE id = ?
	`

	var (
		d         deck.Deck
		commander sql.NullString
	)
	err := r.db.Conn().QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.UserID, &d.Name, &d.Format, &commander, &d.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
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
	query := `
		SELECT id, user_id, name, format, commander, created_at
		FROM decks
		WHERE user_id = ?
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.Conn().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query decks: %w", err)
	}
	defer rows.Close()

	var decks []deck.Deck
	for rows.Next() {
		var (
			d         deck.Deck
			commander sql.NullString
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
	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	commander, err := encodeCommander(d.Commander)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		UPDATE decks SET name = ?, format = ?, commander = ?
		WHERE id = ?
	`, d.Name, d.Format, commander, d.ID)
	if err != nil {
		return fmt.Errorf("failed to update deck: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM deck_cards WHERE deck_id = ?`, d.ID); err != nil {
		return fmt.Errorf("failed to clear deck cards: %w", err)
	}
	if err := insertDeckCards(ctx, tx, d); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit deck: %w", err)
	}
	return nil
}

// DeleteDeck removes a deck and, via cascade, its entries.
func (r *DeckRepository) DeleteDeck(ctx context.Context, id string) error {
	result, err := r.db.Conn().ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *DeckRepository) deckCards(ctx context.Context, deckID string) ([]deck.Entry, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT card_data, quantity
		FROM deck_cards
		WHERE deck_id = ?
		ORDER BY rowid
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to query deck cards: %w", err)
	}
	defer rows.Close()

	entries := []deck.Entry{}
	for rows.Next() {
		var (
			entry    deck.Entry
			cardData string
		)
		if err := rows.Scan(&cardData, &entry.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan deck card: %w", err)
		}
		if err := json.Unmarshal([]byte(cardData), &entry.Card); err != nil {
			return nil, fmt.Errorf("failed to decode deck card: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate deck cards: %w", err)
	}

	return entries, nil
}

func insertDeckCards(ctx context.Context, tx *sql.Tx, d *deck.Deck) error {
	insert := `
		INSERT INTO deck_cards (deck_id, card_id, card_data, quantity)
		VALUES (?, ?, ?, ?)
	`
	for _, entry := range d.Entries {
		cardData, err := json.Marshal(entry.Card)
		if err != nil {
			return fmt.Errorf("failed to encode deck card %s: %w", entry.Card.ID, err)
		}
		if _, err := tx.ExecContext(ctx, insert, d.ID, entry.Card.ID, string(cardData), entry.Quantity); err != nil {
			return fmt.Errorf("failed to insert deck card %s: %w", entry.Card.ID, err)
		}
	}
	return nil
}

func encodeCommander(c *deck.Commander) (sql.NullString, error) {
	if c == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode commander: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func decodeCommander(raw sql.NullString) (*deck.Commander, error) {
	if !raw.Valid {
		return nil, nil
	}
	var c deck.Commander
	if err := json.Unmarshal([]byte(raw.String), &c); err != nil {
		return nil, fmt.Errorf("failed to decode commander: %w", err)
	}
	return &c, nil
}
