// Package trade implements card trade listings and trade requests
// between users.
package trade

import (
	"time"

	"github.com/google/uuid"

	"github.com/mtgbinder/mtgbinder/internal/collection"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

// ListingStatus is the lifecycle state of a trade listing.
type ListingStatus string

// Listing statuses.
const (
	ListingAvailable ListingStatus = "available"
	ListingRemoved   ListingStatus = "removed"
)

// RequestStatus is the lifecycle state of a trade request. Accepted
// and rejected are terminal.
type RequestStatus string

// Request statuses.
const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s RequestStatus) Terminal() bool {
	return s == RequestAccepted || s == RequestRejected
}

// Listing is one card offered for trade.
type Listing struct {
	ID        string        `json:"id"`
	Card      scryfall.Card `json:"card"`
	UserID    string        `json:"user_id"`
	UserEmail string        `json:"user_email"`
	Status    ListingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// NewListing creates an available listing for a card.
func NewListing(userID, userEmail string, card scryfall.Card) *Listing {
	return &Listing{
		ID:        uuid.NewString(),
		Card:      card,
		UserID:    userID,
		UserEmail: userEmail,
		Status:    ListingAvailable,
		CreatedAt: time.Now().UTC(),
	}
}

// Message is one chat line exchanged on a trade request between the
// requester and the listing owner.
type Message struct {
	ID          string    `json:"id"`
	RequestID   string    `json:"request_id"`
	SenderID    string    `json:"sender_id"`
	SenderEmail string    `json:"sender_email"`
	Text        string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMessage creates a message on a trade request.
func NewMessage(requestID, senderID, senderEmail, text string) *Message {
	return &Message{
		ID:          uuid.NewString(),
		RequestID:   requestID,
		SenderID:    senderID,
		SenderEmail: senderEmail,
		Text:        text,
		CreatedAt:   time.Now().UTC(),
	}
}

// Request is an offer made against a listing.
type Request struct {
	ID             string             `json:"id"`
	ListingID      string             `json:"listing_id"`
	RequesterID    string             `json:"requester_id"`
	RequesterEmail string             `json:"requester_email"`
	OwnerID        string             `json:"owner_id"`
	OwnerEmail     string             `json:"owner_email"`
	OfferedCards   []collection.Entry `json:"offered_cards"`
	Status         RequestStatus      `json:"status"`
	CreatedAt      time.Time          `json:"created_at"`
}
