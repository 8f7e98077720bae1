package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtgbinder/mtgbinder/internal/api/response"
	"github.com/mtgbinder/mtgbinder/internal/auth"
	"github.com/mtgbinder/mtgbinder/internal/charts"
	"github.com/mtgbinder/mtgbinder/internal/deck"
	"github.com/mtgbinder/mtgbinder/internal/export"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
	"github.com/mtgbinder/mtgbinder/internal/storage"
)

// DeckHandler handles deck CRUD, statistics and chart rendering.
type DeckHandler struct {
	store storage.DeckStore
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(store storage.DeckStore) *DeckHandler {
	return &DeckHandler{store: store}
}

// GetDecks returns the user's decks.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	decks, err := h.store.ListDecks(r.Context(), userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}
	if decks == nil {
		decks = []deck.Deck{}
	}

	response.Success(w, decks)
}

// CreateDeckRequest represents a request to create a deck.
type CreateDeckRequest struct {
	Name      string         `json:"name"`
	Format    string         `json:"format"`
	Commander *scryfall.Card `json:"commander,omitempty"`
}

// CreateDeck creates a new deck.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req CreateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Name == "" {
		response.BadRequest(w, errors.New("deck name is required"))
		return
	}

	d := deck.New(userID, req.Name, req.Format)
	if req.Commander != nil {
		d.Commander = deck.CommanderFromCard(*req.Commander)
	}

	if err := h.store.CreateDeck(r.Context(), d); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Created(w, d)
}

// GetDeck returns a single deck by ID.
func (h *DeckHandler) GetDeck(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}
	response.Success(w, d)
}

// UpdateDeckRequest carries the editable deck header fields.
type UpdateDeckRequest struct {
	Name      string         `json:"name,omitempty"`
	Format    string         `json:"format,omitempty"`
	Commander *scryfall.Card `json:"commander,omitempty"`
}

// UpdateDeck edits the deck header.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}

	var req UpdateDeckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if req.Name != "" {
		d.Name = req.Name
	}
	if req.Format != "" {
		d.Format = req.Format
	}
	if req.Commander != nil {
		d.Commander = deck.CommanderFromCard(*req.Commander)
	}

	if err := h.store.UpdateDeck(r.Context(), d); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, d)
}

// DeleteDeck removes a deck.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}

	if err := h.store.DeleteDeck(r.Context(), d.ID); err != nil {
		response.InternalError(w, err)
		return
	}

	response.NoContent(w)
}

// AddCardRequest carries a card to merge into the deck.
type AddCardRequest struct {
	Card     scryfall.Card `json:"card"`
	Quantity int           `json:"quantity"`
}

// AddCard merges a card into the deck, keyed by printing id.
func (h *DeckHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}

	var req AddCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}
	if req.Card.ID == "" {
		response.BadRequest(w, errors.New("card id is required"))
		return
	}

	d.AddCard(req.Card, req.Quantity)

	if err := h.store.UpdateDeck(r.Context(), d); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, d)
}

// SetQuantityRequest carries the new quantity for a deck card.
type SetQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// SetCardQuantity sets a deck card's quantity; zero removes it.
func (h *DeckHandler) SetCardQuantity(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}
	cardID := chi.URLParam(r, "cardID")

	var req SetQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if err := d.SetQuantity(cardID, req.Quantity); err != nil {
		response.NotFound(w, err)
		return
	}

	if err := h.store.UpdateDeck(r.Context(), d); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, d)
}

// RemoveCard deletes a card from the deck.
func (h *DeckHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}
	cardID := chi.URLParam(r, "cardID")

	if err := d.RemoveCard(cardID); err != nil {
		response.NotFound(w, err)
		return
	}

	if err := h.store.UpdateDeck(r.Context(), d); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, d)
}

// GetDeckStats returns the deck's mana curve, color distribution and
// land ratio.
func (h *DeckHandler) GetDeckStats(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}
	response.Success(w, deck.ComputeStats(d.Entries))
}

// GetDeckCharts renders the deck statistics as an HTML page.
func (h *DeckHandler) GetDeckCharts(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := charts.RenderDeckCharts(w, d); err != nil {
		response.InternalError(w, err)
	}
}

// SetCommanderRequest carries the commander card, or null to clear it.
type SetCommanderRequest struct {
	Card *scryfall.Card `json:"card"`
}

// SetCommander sets or clears the deck's commander.
func (h *DeckHandler) SetCommander(w http.ResponseWriter, r *http.Request) {
	d, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}

	var req SetCommanderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	if req.Card == nil {
		d.Commander = nil
	} else {
		d.Commander = deck.CommanderFromCard(*req.Card)
	}

	if err := h.store.UpdateDeck(r.Context(), d); err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, d)
}

// ExportDeck streams the deck as CSV, JSON or a plain text deck list,
// selected by the format query parameter.
func (h *DeckHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	d, ok := h.ownedDeck(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=deck."+format.Extension())
	if err := export.ExportDeck(w, d, format); err != nil {
		response.InternalError(w, err)
	}
}

// ownedDeck loads the deck from the URL and enforces ownership. On
// failure it writes the error response and returns ok=false.
func (h *DeckHandler) ownedDeck(w http.ResponseWriter, r *http.Request) (*deck.Deck, bool) {
	deckID := chi.URLParam(r, "deckID")

	d, err := h.store.GetDeck(r.Context(), deckID)
	if errors.Is(err, storage.ErrNotFound) {
		response.NotFound(w, errors.New("deck not found"))
		return nil, false
	}
	if err != nil {
		response.InternalError(w, err)
		return nil, false
	}
	if d.UserID != auth.UserID(r.Context()) {
		response.Forbidden(w, errors.New("deck belongs to another user"))
		return nil, false
	}

	return d, true
}
