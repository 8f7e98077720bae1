package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mtgbinder/mtgbinder/internal/collection"
	"github.com/mtgbinder/mtgbinder/internal/events"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

// Service errors.
var (
	ErrListingUnavailable = errors.New("listing is not available")
	ErrNotOwner           = errors.New("user does not own this resource")
	ErrTerminalStatus     = errors.New("trade request already decided")
	ErrSelfTrade          = errors.New("cannot request a trade on your own listing")
	ErrNotParticipant     = errors.New("user is not part of this trade")
	ErrEmptyMessage       = errors.New("message is empty")
)

// Store is the persistence surface the trade service needs.
type Store interface {
	CreateListing(ctx context.Context, listing *Listing) error
	GetListing(ctx context.Context, id string) (*Listing, error)
	UpdateListingStatus(ctx context.Context, id string, status ListingStatus) error
	ListAvailableListings(ctx context.Context) ([]Listing, error)

	CreateRequest(ctx context.Context, request *Request) error
	GetRequest(ctx context.Context, id string) (*Request, error)
	UpdateRequestStatus(ctx context.Context, id string, status RequestStatus) error
	ListRequestsForUser(ctx context.Context, userID string) ([]Request, error)

	CreateMessage(ctx context.Context, message *Message) error
	ListMessages(ctx context.Context, requestID string) ([]Message, error)
}

// Service coordinates listings and requests over a Store and publishes
// change events for connected clients.
type Service struct {
	store      Store
	dispatcher *events.Dispatcher
}

// NewService creates a trade service. dispatcher may be nil.
func NewService(store Store, dispatcher *events.Dispatcher) *Service {
	return &Service{store: store, dispatcher: dispatcher}
}

// ListCard puts a card up for trade.
func (s *Service) ListCard(ctx context.Context, userID, userEmail string, card scryfall.Card) (*Listing, error) {
	listing := NewListing(userID, userEmail, card)
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.dispatch(events.TypeTradeListingCreated, listing)
	return listing, nil
}

// RemoveListing takes a listing off the market. Only its owner may do so.
func (s *Service) RemoveListing(ctx context.Context, userID, listingID string) error {
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.UserID != userID {
		return ErrNotOwner
	}

	if err := s.store.UpdateListingStatus(ctx, listingID, ListingRemoved); err != nil {
		return fmt.Errorf("failed to remove listing: %w", err)
	}

	s.dispatch(events.TypeTradeListingRemoved, listing)
	return nil
}

// Listings returns all currently available listings.
func (s *Service) Listings(ctx context.Context) ([]Listing, error) {
	return s.store.ListAvailableListings(ctx)
}

// RequestTrade creates a pending request offering cards against a
// listing.
func (s *Service) RequestTrade(ctx context.Context, requesterID, requesterEmail, listingID string, offered []collection.Entry) (*Request, error) {
	listing, err := s.store.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != ListingAvailable {
		return nil, ErrListingUnavailable
	}
	if listing.UserID == requesterID {
		return nil, ErrSelfTrade
	}

	request := &Request{
		ID:             uuid.NewString(),
		ListingID:      listingID,
		RequesterID:    requesterID,
		RequesterEmail: requesterEmail,
		OwnerID:        listing.UserID,
		OwnerEmail:     listing.UserEmail,
		OfferedCards:   offered,
		Status:         RequestPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.store.CreateRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create trade request: %w", err)
	}

	s.dispatch(events.TypeTradeRequestCreated, request)
	return request, nil
}

// Respond accepts or rejects a pending request. Only the listing owner
// may respond, and a decided request cannot change again. Accepting
// also removes the listing from the market.
func (s *Service) Respond(ctx context.Context, userID, requestID string, accept bool) (*Request, error) {
	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.OwnerID != userID {
		return nil, ErrNotOwner
	}
	if request.Status.Terminal() {
		return nil, ErrTerminalStatus
	}

	status := RequestRejected
	if accept {
		status = RequestAccepted
	}

	if err := s.store.UpdateRequestStatus(ctx, requestID, status); err != nil {
		return nil, fmt.Errorf("failed to update trade request: %w", err)
	}
	request.Status = status

	if accept {
		if err := s.store.UpdateListingStatus(ctx, request.ListingID, ListingRemoved); err != nil {
			return nil, fmt.Errorf("failed to close listing: %w", err)
		}
	}

	s.dispatch(events.TypeTradeRequestUpdated, request)
	return request, nil
}

// RequestsFor returns the pending requests involving a user, either as
// requester or as listing owner.
func (s *Service) RequestsFor(ctx context.Context, userID string) ([]Request, error) {
	return s.store.ListRequestsForUser(ctx, userID)
}

// SendMessage posts a chat message on a trade request. Only the
// requester and the listing owner may write, and messages stay open
// after the request is decided (the parties may still coordinate the
// exchange).
func (s *Service) SendMessage(ctx context.Context, userID, userEmail, requestID, text string) (*Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != userID && request.OwnerID != userID {
		return nil, ErrNotParticipant
	}

	message := NewMessage(requestID, userID, userEmail, text)
	if err := s.store.CreateMessage(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	s.dispatch(events.TypeTradeMessageSent, message)
	return message, nil
}

// Messages returns the chat history of a trade request in send order.
// Only the requester and the listing owner may read it.
func (s *Service) Messages(ctx context.Context, userID, requestID string) ([]Message, error) {
	request, err := s.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.RequesterID != userID && request.OwnerID != userID {
		return nil, ErrNotParticipant
	}
	return s.store.ListMessages(ctx, requestID)
}

func (s *Service) dispatch(eventType string, data any) {
	if s.dispatcher != nil {
		s.dispatcher.Dispatch(events.Event{Type: eventType, Data: data})
	}
}
