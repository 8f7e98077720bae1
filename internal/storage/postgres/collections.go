package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mtgbinder/mtgbinder/internal/collection"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
	"github.com/mtgbinder/mtgbinder/internal/storage"
)

// CollectionRepository persists user collections with JSONB card
// snapshots, keyed by (user_id, card_id).
type CollectionRepository struct {
	store *Store
}

// GetCollection returns every entry in the user's collection, oldest
// first.
func (r *CollectionRepository) GetCollection(ctx context.Context, userID string) ([]collection.Entry, error) {
	const query = `
		SELECT card_data, quantity, condition, foil, for_trade, all_sets
		FROM collection_entries
		WHERE user_id = $1
		ORDER BY updated_at, card_id
	`

	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	rows, err := r.store.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}
	defer rows.Close()

	var entries []collection.Entry
	for rows.Next() {
		var (
			entry     collection.Entry
			cardData  []byte
			condition string
			allSets   []byte
		)
		if err := rows.Scan(&cardData, &entry.Quantity, &condition, &entry.Foil, &entry.ForTrade, &allSets); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if err := json.Unmarshal(cardData, &entry.Card); err != nil {
			return nil, fmt.Errorf("failed to decode card: %w", err)
		}
		if err := json.Unmarshal(allSets, &entry.AllSets); err != nil {
			return nil, fmt.Errorf("failed to decode set list: %w", err)
		}
		entry.Condition = collection.Condition(condition)
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
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	tx, err := r.store.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM collection_entries WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}

	const insert = `
		INSERT INTO collection_entries (user_id, card_id, card_data, quantity, condition, foil, for_trade, all_sets)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	for _, entry := range entries {
		if entry.Quantity <= 0 {
			continue
		}
		cardData, allSets, err := encodeEntry(entry)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, insert,
			userID, entry.Card.ID, cardData, entry.Quantity,
			string(entry.Condition), entry.Foil, entry.ForTrade, allSets,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entry %s: %w", entry.Card.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit collection: %w", err)
	}
	return nil
}

// UpsertCard merges one resolved card into the collection. An existing
// printing has its quantity incremented by one and keeps its metadata.
func (r *CollectionRepository) UpsertCard(ctx context.Context, userID string, card scryfall.Card) error {
	entry := collection.NewEntry(card)
	cardData, allSets, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO collection_entries (user_id, card_id, card_data, quantity, condition, foil, for_trade, all_sets)
		VALUES ($1, $2, $3, 1, $4, $5, $6, $7)
		ON CONFLICT (user_id, card_id) DO UPDATE SET
			quantity = collection_entries.quantity + 1,
			updated_at = now()
	`

	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	_, err = r.store.pool.Exec(ctx, query,
		userID, card.ID, cardData,
		string(entry.Condition), entry.Foil, entry.ForTrade, allSets,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert card %s: %w", card.ID, err)
	}

	return nil
}

// UpdateEntry overwrites the mutable fields of one entry. A quantity
// of zero or less deletes the row.
func (r *CollectionRepository) UpdateEntry(ctx context.Context, userID string, entry collection.Entry) error {
	if entry.Quantity <= 0 {
		return r.RemoveCard(ctx, userID, entry.Card.ID)
	}

	allSets, err := json.Marshal(entry.AllSets)
	if err != nil {
		return fmt.Errorf("failed to encode set list: %w", err)
	}

	const query = `
		UPDATE collection_entries
		SET quantity = $1, condition = $2, foil = $3, for_trade = $4, all_sets = $5, updated_at = now()
		WHERE user_id = $6 AND card_id = $7
	`

	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	tag, err := r.store.pool.Exec(ctx, query,
		entry.Quantity, string(entry.Condition), entry.Foil, entry.ForTrade, allSets,
		userID, entry.Card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entry %s: %w", entry.Card.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// RemoveCard deletes one entry by printing id.
func (r *CollectionRepository) RemoveCard(ctx context.Context, userID, cardID string) error {
	ctx, cancel := r.store.withTimeout(ctx)
	defer cancel()

	tag, err := r.store.pool.Exec(ctx,
		`DELETE FROM collection_entries WHERE user_id = $1 AND card_id = $2`,
		userID, cardID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove card %s: %w", cardID, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}

	return nil
}

func encodeEntry(entry collection.Entry) (cardData, allSets []byte, err error) {
	cardData, err = json.Marshal(entry.Card)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode card %s: %w", entry.Card.ID, err)
	}
	allSets, err = json.Marshal(entry.AllSets)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode set list: %w", err)
	}
	return cardData, allSets, nil
}
