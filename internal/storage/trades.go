package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mtgbinder/mtgbinder/internal/collection"
	"github.com/mtgbinder/mtgbinder/internal/trade"
)

// TradeRepository persists trade listings and requests. It implements
// trade.Store.
type TradeRepository struct {
	db *DB
}

// CreateListing inserts a listing.
func (r *TradeRepository) CreateListing(ctx context.Context, listing *trade.Listing) error {
	cardData, err := json.Marshal(listing.Card)
	if err != nil {
		return fmt.Errorf("failed to encode listing card: %w", err)
	}

	_, err = r.db.Conn().ExecContext(ctx, `
		INSERT INTO trade_listings (id, user_id, user_email, card_data, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, listing.ID, listing.UserID, listing.UserEmail, string(cardData), string(listing.Status), listing.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}

	return nil
}

// GetListing retrieves a listing by id. Returns ErrNotFound when the
// id does not exist.
func (r *TradeRepository) GetListing(ctx context.Context, id string) (*trade.Listing, error) {
	query := `
		SELECT id, user_id, user_email, card_data, status, created_at
		FROM trade_listings
		WHERE id = ?
	`

	listing, err := scanListing(r.db.Conn().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// UpdateListingStatus sets a listing's status.
func (r *TradeRepository) UpdateListingStatus(ctx context.Context, id string, status trade.ListingStatus) error {
	result, err := r.db.Conn().ExecContext(ctx,
		`UPDATE trade_listings SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing status: %w", err)
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

// ListAvailableListings returns every available listing, newest first.
func (r *TradeRepository) ListAvailableListings(ctx context.Context) ([]trade.Listing, error) {
	query := `
		SELECT id, user_id, user_email, card_data, status, created_at
		FROM trade_listings
		WHERE status = ?
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.Conn().QueryContext(ctx, query, string(trade.ListingAvailable))
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var listings []trade.Listing
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listings: %w", err)
	}

	return listings, nil
}

// CreateRequest inserts a trade request.
func (r *TradeRepository) CreateRequest(ctx context.Context, request *trade.Request) error {
	offered, err := json.Marshal(request.OfferedCards)
	if err != nil {
		return fmt.Errorf("failed to encode offered cards: %w", err)
	}

	_, err = r.db.Conn().ExecContext(ctx, `
		INSERT INTO trade_requests (id, listing_id, requester_id, requester_email, owner_id, owner_email, offered_cards, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, request.ID, request.ListingID, request.RequesterID, request.RequesterEmail,
		request.OwnerID, request.OwnerEmail, string(offered), string(request.Status), request.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return nil
}

// GetRequest retrieves a trade request by id. Returns ErrNotFound when
// the id does not exist.
func (r *TradeRepository) GetRequest(ctx context.Context, id string) (*trade.Request, error) {
	query := `
		SELECT id, listing_id, requester_id, requester_email, owner_id, owner_email, offered_cards, status, created_at
		FROM trade_requests
		WHERE id = ?
	`

	request, err := scanRequest(r.db.Conn().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return request, nil
}

// UpdateRequestStatus sets a request's status.
func (r *TradeRepository) UpdateRequestStatus(ctx context.Context, id string, status trade.RequestStatus) error {
	result, err := r.db.Conn().ExecContext(ctx,
		`UPDATE trade_requests SET status = ? WHERE id = ?`,
		string(status), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
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

// ListRequestsForUser returns requests where the user is requester or
// listing owner, newest first.
func (r *TradeRepository) ListRequestsForUser(ctx context.Context, userID string) ([]trade.Request, error) {
	query := `
		SELECT id, listing_id, requester_id, requester_email, owner_id, owner_email, offered_cards, status, created_at
		FROM trade_requests
		WHERE requester_id = ? OR owner_id = ?
		ORDER BY created_at DESC, id
	`

	rows, err := r.db.Conn().QueryContext(ctx, query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []trade.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *request)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}

	return requests, nil
}

// CreateMessage inserts a trade chat message.
func (r *TradeRepository) CreateMessage(ctx context.Context, message *trade.Message) error {
	_, err := r.db.Conn().ExecContext(ctx, `
		INSERT INTO trade_messages (id, request_id, sender_id, sender_email, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, message.ID, message.RequestID, message.SenderID, message.SenderEmail, message.Text, message.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	return nil
}

// ListMessages returns the messages on a trade request, oldest first.
func (r *TradeRepository) ListMessages(ctx context.Context, requestID string) ([]trade.Message, error) {
	query := `
		SELECT id, request_id, sender_id, sender_email, message, created_at
		FROM trade_messages
		WHERE request_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.db.Conn().QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []trade.Message
	for rows.Next() {
		var message trade.Message
		if err := rows.Scan(&message.ID, &message.RequestID, &message.SenderID,
			&message.SenderEmail, &message.Text, &message.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	return messages, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (*trade.Listing, error) {
	var (
		listing  trade.Listing
		cardData string
		status   string
	)
	err := row.Scan(&listing.ID, &listing.UserID, &listing.UserEmail, &cardData, &status, &listing.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan listing: %w", err)
	}
	if err := json.Unmarshal([]byte(cardData), &listing.Card); err != nil {
		return nil, fmt.Errorf("failed to decode listing card: %w", err)
	}
	listing.Status = trade.ListingStatus(status)
	return &listing, nil
}

func scanRequest(row scanner) (*trade.Request, error) {
	var (
		request trade.Request
		offered string
		status  string
	)
	err := row.Scan(&request.ID, &request.ListingID, &request.RequesterID, &request.RequesterEmail,
		&request.OwnerID, &request.OwnerEmail, &offered, &status, &request.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan request: %w", err)
	}
	request.OfferedCards = []collection.Entry{}
	if err := json.Unmarshal([]byte(offered), &request.OfferedCards); err != nil {
		return nil, fmt.Errorf("failed to decode offered cards: %w", err)
	}
	request.Status = trade.RequestStatus(status)
	return &request, nil
}
