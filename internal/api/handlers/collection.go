package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mtgbinder/mtgbinder/internal/api/response"
	"github.com/mtgbinder/mtgbinder/internal/auth"
	"github.com/mtgbinder/mtgbinder/internal/collection"
	"github.com/mtgbinder/mtgbinder/internal/events"
	"github.com/mtgbinder/mtgbinder/internal/export"
	"github.com/mtgbinder/mtgbinder/internal/importer"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
	"github.com/mtgbinder/mtgbinder/internal/storage"
)

// CardImporter runs the bulk import pipeline.
type CardImporter interface {
	ImportCards(ctx context.Context, target importer.MergeTarget, names []string) (importer.Report, error)
}

// CollectionHandler handles collection reads, edits and bulk imports.
type CollectionHandler struct {
	store      storage.CollectionStore
	importer   CardImporter
	dispatcher *events.Dispatcher
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(store storage.CollectionStore, imp CardImporter, dispatcher *events.Dispatcher) *CollectionHandler {
	return &CollectionHandler{store: store, importer: imp, dispatcher: dispatcher}
}

// GetCollection returns the user's collection, optionally filtered and
// sorted via query parameters.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	entries, err := h.store.GetCollection(r.Context(), userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	q := r.URL.Query()
	filter := collection.Filter{
		Set:   q.Get("set"),
		Type:  q.Get("type"),
		Color: q.Get("color"),
		Query: q.Get("q"),
	}
	entries = filter.Apply(entries)

	if field := q.Get("sort"); field != "" {
		collection.Sort(entries, collection.SortField(field), q.Get("order") != "desc")
	}

	response.Success(w, entries)
}

// ExportCollection streams the collection as CSV, JSON or a plain
// text card list, selected by the format query parameter.
func (h *CollectionHandler) ExportCollection(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	entries, err := h.store.GetCollection(r.Context(), userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=collection."+format.Extension())
	if err := export.ExportCollection(w, entries, format); err != nil {
		response.InternalError(w, err)
	}
}

// GetValue returns the estimated USD value of the collection.
func (h *CollectionHandler) GetValue(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	entries, err := h.store.GetCollection(r.Context(), userID)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	response.Success(w, collection.Valuation(entries))
}

// ImportRequest carries the card names to import, either as a list or
// as raw pasted text with one name per line.
type ImportRequest struct {
	Names []string `json:"names,omitempty"`
	Text  string   `json:"text,omitempty"`
}

// ImportResult pairs the pipeline report with its rendered summary.
type ImportResult struct {
	importer.Report
	Summary string `json:"summary"`
}

// ImportCards resolves a list of card names and merges them into the
// user's collection. Cards merged before a failure stay merged.
func (h *CollectionHandler) ImportCards(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	names := req.Names
	if len(names) == 0 && req.Text != "" {
		names = importer.SplitList(req.Text)
	}
	if len(names) == 0 {
		response.BadRequest(w, errors.New("no card names provided"))
		return
	}

	target := importer.TargetFunc(func(ctx context.Context, card scryfall.Card) error {
		return h.store.UpsertCard(ctx, userID, card)
	})

	report, err := h.importer.ImportCards(r.Context(), target, names)
	if err != nil {
		response.InternalError(w, fmt.Errorf("import aborted: %w", err))
		return
	}

	response.Success(w, ImportResult{Report: report, Summary: report.Summary()})
}

// UpdateEntryRequest carries the mutable fields of a collection entry.
type UpdateEntryRequest struct {
	Quantity  int      `json:"quantity"`
	Condition string   `json:"condition"`
	Foil      bool     `json:"foil"`
	ForTrade  bool     `json:"for_trade"`
	AllSets   []string `json:"all_sets,omitempty"`
}

// UpdateEntry overwrites the mutable fields of one entry. Setting
// quantity to zero removes it.
func (h *CollectionHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	cardID := chi.URLParam(r, "cardID")

	var req UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	condition := collection.Condition(req.Condition)
	if req.Condition == "" {
		condition = collection.ConditionMint
	}
	if !condition.Valid() {
		response.BadRequest(w, fmt.Errorf("unknown condition %q", req.Condition))
		return
	}
	if req.Quantity < 0 {
		response.BadRequest(w, errors.New("quantity cannot be negative"))
		return
	}

	entry := collection.Entry{
		Card:      scryfall.Card{ID: cardID},
		Quantity:  req.Quantity,
		Condition: condition,
		Foil:      req.Foil,
		ForTrade:  req.ForTrade,
		AllSets:   req.AllSets,
	}

	err := h.store.UpdateEntry(r.Context(), userID, entry)
	if errors.Is(err, storage.ErrNotFound) {
		response.NotFound(w, err)
		return
	}
	if err != nil {
		response.InternalError(w, err)
		return
	}

	h.dispatchUpdated(userID)
	response.Success(w, entry)
}

// RemoveCard deletes one entry by printing id.
func (h *CollectionHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())
	cardID := chi.URLParam(r, "cardID")

	err := h.store.RemoveCard(r.Context(), userID, cardID)
	if errors.Is(err, storage.ErrNotFound) {
		response.NotFound(w, err)
		return
	}
	if err != nil {
		response.InternalError(w, err)
		return
	}

	h.dispatchUpdated(userID)
	response.NoContent(w)
}

// ClearCollection removes every entry from the user's collection.
func (h *CollectionHandler) ClearCollection(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	if err := h.store.PutCollection(r.Context(), userID, nil); err != nil {
		response.InternalError(w, err)
		return
	}

	h.dispatchUpdated(userID)
	response.NoContent(w)
}

func (h *CollectionHandler) dispatchUpdated(userID string) {
	if h.dispatcher == nil {
		return
	}
	h.dispatcher.Dispatch(events.Event{
		Type: events.TypeCollectionUpdated,
		Data: map[string]string{"user_id": userID},
	})
}
