package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mtgbinder/mtgbinder/internal/collection"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

// CollectionRepository persists user collections. Card snapshots are
// stored as JSON alongside the mutable ownership columns, keyed by
// (user_id, card_id).
type CollectionRepository struct {
	db *DB
}

// GetCollection returns every entry in the user's collection, oldest
// first.
func (r *CollectionRepository) GetCollection(ctx context.Context, userID string) ([]collection.Entry, error) {
	query := `
		SELECT card_data, quantity, condition, foil, for_trade, all_sets
		FROM collection_entries
		WHERE user_id = ?
		ORDER BY updated_at, card_id
	`

	rows, err := r.db.Conn().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer rows.Close()

	var entries []collection.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate collection: %w", err)
	}

	return entries, nil
}

// PutCollection replaces the user's collection wholesale inside one
// transaction.
func (r *CollectionRepository) PutCollection(ctx context.Context, userID string, entries []collection.Entry) error {
	tx, err := r.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM collection_entries WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}

	insert := `
		INSERT INTO collection_entries (user_id, card_id, card_data, quantity, condition, foil, for_trade, all_sets)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, entry := range entries {
		if entry.Quantity <= 0 {
			continue
		}
		cardData, allSets, err := encodeEntry(entry)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, insert,
			userID, entry.Card.ID, cardData, entry.Quantity,
			string(entry.Condition), entry.Foil, entry.ForTrade, allSets,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", entry.Card.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection: %w", err)
	}
	return nil
}

// UpsertCard merges one resolved card into the collection. An existing
// printing has its quantity incremented by one and keeps its metadata;
// a novel printing becomes a fresh default entry. The write is
// committed before returning.
func (r *CollectionRepository) UpsertCard(ctx context.Context, userID string, card scryfall.Card) error {
	entry := collection.NewEntry(card)
	cardData, allSets, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO collection_entries (user_id, card_id, card_data, quantity, condition, foil, for_trade, all_sets)
		VALUES (?, ?, ?, 1, ?, ?, ?, ?)
		ON CONFLICT(user_id, card_id) DO UPDATE SET
			quantity = quantity + 1,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err = r.db.Conn().ExecContext(ctx, query,
		userID, card.ID, cardData,
		string(entry.Condition), entry.Foil, entry.ForTrade, allSets,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert card %s: %w", card.ID, err)
	}

	return nil
}

// UpdateEntry overwrites the mutable fields of one entry. A quantity
// of zero or less deletes the row. Returns ErrNotFound when the
// printing is not in the collection.
func (r *CollectionRepository) UpdateEntry(ctx context.Context, userID string, entry collection.Entry) error {
	if entry.Quantity <= 0 {
		return r.RemoveCard(ctx, userID, entry.Card.ID)
	}

	allSets, err := json.Marshal(entry.AllSets)
	if err != nil {
		return fmt.Errorf("failed to encode set list: %w", err)
	}

	query := `
		UPDATE collection_entries
		SET quantity = ?, condition = ?, foil = ?, for_trade = ?, all_sets = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND card_id = ?
	`

	result, err := r.db.Conn().ExecContext(ctx, query,
		entry.Quantity, string(entry.Condition), entry.Foil, entry.ForTrade, string(allSets),
		userID, entry.Card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", entry.Card.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// RemoveCard deletes one entry by printing id.
func (r *CollectionRepository) RemoveCard(ctx context.Context, userID, cardID string) error {
	result, err := r.db.Conn().ExecContext(ctx,
		`DELETE FROM collection_entries WHERE user_id = ? AND card_id = ?`,
		userID, cardID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove card %s: %w", cardID, err)
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

func encodeEntry(entry collection.Entry) (cardData, allSets string, err error) {
	card, err := json.Marshal(entry.Card)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode card %s: %w", entry.Card.ID, err)
	}
	sets, err := json.Marshal(entry.AllSets)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode set list: %w", err)
	}
	return string(card), string(sets), nil
}

func scanEntry(rows *sql.Rows) (collection.Entry, error) {
	var (
		entry     collection.Entry
		cardData  string
		condition string
		allSets   string
	)
	err := rows.Scan(&cardData, &entry.Quantity, &condition, &entry.Foil, &entry.ForTrade, &allSets)
	if err != nil {
		return collection.Entry{}, fmt.Errorf("failed to scan entry: %w", err)
	}
	if err := json.Unmarshal([]byte(cardData), &entry.Card); err != nil {
		return collection.Entry{}, fmt.Errorf("failed to decode card: %w", err)
	}
	if err := json.Unmarshal([]byte(allSets), &entry.AllSets); err != nil {
		return collection.Entry{}, fmt.Errorf("failed to decode set list: %w", err)
	}
	entry.Condition = collection.Condition(condition)
	return entry, nil
}
