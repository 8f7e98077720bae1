package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtgbinder/mtgbinder/internal/api/response"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

// CardClient is the card lookup surface the handler needs.
type CardClient interface {
	GetCardByName(ctx context.Context, name string, fuzzy bool) (*scryfall.Card, error)
	SearchCards(ctx context.Context, query string) (*scryfall.SearchResult, error)
	GetCard(ctx context.Context, id string) (*scryfall.Card, error)
}

// CardHandler proxies card lookups to the Scryfall client.
type CardHandler struct {
	client CardClient
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(client CardClient) *CardHandler {
	return &CardHandler{client: client}
}

// SearchCards runs a full-text card search.
func (h *CardHandler) SearchCards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		response.BadRequest(w, errors.New("query parameter q is required"))
		return
	}

	result, err := h.client.SearchCards(r.Context(), query)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	response.Success(w, result)
}

// GetCardByName looks a card up by name, exact first with a fuzzy
// fallback when requested.
func (h *CardHandler) GetCardByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		response.BadRequest(w, errors.New("query parameter name is required"))
		return
	}

	card, err := h.client.GetCardByName(r.Context(), name, false)
	if scryfall.IsNotFound(err) && r.URL.Query().Get("fuzzy") == "true" {
		card, err = h.client.GetCardByName(r.Context(), name, true)
	}
	if err != nil {
		writeLookupError(w, err)
		return
	}

	response.Success(w, card)
}

// GetCard retrieves a card by Scryfall id.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	cardID := chi.URLParam(r, "cardID")

	card, err := h.client.GetCard(r.Context(), cardID)
	if err != nil {
		writeLookupError(w, err)
		return
	}

	response.Success(w, card)
}

// writeLookupError maps Scryfall lookup failures onto HTTP statuses.
func writeLookupError(w http.ResponseWriter, err error) {
	switch {
	case scryfall.IsNotFound(err):
		response.NotFound(w, err)
	case scryfall.IsRateLimited(err):
		response.Error(w, http.StatusTooManyRequests, err)
	default:
		response.InternalError(w, err)
	}
}
