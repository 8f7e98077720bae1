package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtgbinder/mtgbinder/internal/api/response"
	"github.com/mtgbinder/mtgbinder/internal/auth"
	"github.com/mtgbinder/mtgbinder/internal/collection"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
	"github.com/mtgbinder/mtgbinder/internal/storage"
	"github.com/mtgbinder/mtgbinder/internal/trade"
)

// TradeHandler handles trade listings and requests.
type TradeHandler struct {
	service *trade.Service
	users   auth.UserStore
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(service *trade.Service, users auth.UserStore) *TradeHandler {
	return &TradeHandler{service: service, users: users}
}

// GetListings returns every available listing.
func (h *TradeHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	listings, err := h.service.Listings(r.Context())
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if listings == nil {
		listings = []trade.Listing{}
	}

	response.Success(w, listings)
}

// CreateListingRequest carries the card to list for trade.
type CreateListingRequest struct {
	Card scryfall.Card `json:"card"`
}

// CreateListing lists a card for trade.
func (h *TradeHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Card.ID == "" {
		response.BadRequest(w, errors.New("card id is required"))
		return
	}

	email, err := h.userEmail(r, userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	listing, err := h.service.ListCard(r.Context(), userID, email, req.Card)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, listing)
}

// RemoveListing withdraws one of the user's listings.
func (h *TradeHandler) RemoveListing(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	listingID := chi.URLParam(r, "listingID")

	err := h.service.RemoveListing(r.Context(), userID, listingID)
	if err != nil {
		writeTradeError(w, err)
		return
	}

	response.NoContent(w)
}

// RequestTradeRequest carries the offered cards for a trade request.
type RequestTradeRequest struct {
	OfferedCards []collection.Entry `json:"offered_cards"`
}

// RequestTrade opens a request against an available listing.
func (h *TradeHandler) RequestTrade(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	listingID := chi.URLParam(r, "listingID")

	var req RequestTradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	email, err := h.userEmail(r, userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	request, err := h.service.RequestTrade(r.Context(), userID, email, listingID, req.OfferedCards)
	if err != nil {
		writeTradeError(w, err)
		return
	}

	response.Created(w, request)
}

// GetRequests returns the user's trade requests, both sent and
// received.
func (h *TradeHandler) GetRequests(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	requests, err := h.service.RequestsFor(r.Context(), userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if requests == nil {
		requests = []trade.Request{}
	}

	response.Success(w, requests)
}

// RespondRequest carries the owner's decision on a trade request.
type RespondRequest struct {
	Accept bool `json:"accept"`
}

// RespondToRequest accepts or rejects a pending trade request.
func (h *TradeHandler) RespondToRequest(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	requestID := chi.URLParam(r, "requestID")

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	request, err := h.service.Respond(r.Context(), userID, requestID, req.Accept)
	if err != nil {
		writeTradeError(w, err)
		return
	}

	response.Success(w, request)
}

// GetMessages returns the chat history of a trade request.
func (h *TradeHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	requestID := chi.URLParam(r, "requestID")

	messages, err := h.service.Messages(r.Context(), userID, requestID)
	if err != nil {
		writeTradeError(w, err)
		return
	}
	if messages == nil {
		messages = []trade.Message{}
	}

	response.Success(w, messages)
}

// SendMessageRequest carries one chat message.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// SendMessage posts a chat message on a trade request.
func (h *TradeHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	requestID := chi.URLParam(r, "requestID")

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	email, err := h.userEmail(r, userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	message, err := h.service.SendMessage(r.Context(), userID, email, requestID, req.Message)
	if err != nil {
		writeTradeError(w, err)
		return
	}

	response.Created(w, message)
}

func (h *TradeHandler) userEmail(r *http.Request, userID string) (string, error) {
	user, err := h.users.GetUserByID(r.Context(), userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", errors.New("account not found")
	}
	return user.Email, nil
}

// writeTradeError maps trade service failures onto HTTP statuses.
func writeTradeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.NotFound(w, err)
	case errors.Is(err, trade.ErrNotOwner),
		errors.Is(err, trade.ErrNotParticipant):
		response.Forbidden(w, err)
	case errors.Is(err, trade.ErrListingUnavailable),
		errors.Is(err, trade.ErrTerminalStatus),
		errors.Is(err, trade.ErrSelfTrade):
		response.Conflict(w, err)
	case errors.Is(err, trade.ErrEmptyMessage):
		response.BadRequest(w, err)
	default:
		response.InternalError(w, err)
	}
}
