package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtgbinder/mtgbinder/internal/collection"
	"github.com/mtgbinder/mtgbinder/internal/events"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

func collectionRouter(h *CollectionHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/collection", h.GetCollection)
	r.Get("/collection/value", h.GetValue)
	r.Get("/collection/export", h.ExportCollection)
	r.Post("/collection/import", h.ImportCards)
	r.Put("/collection/{cardID}", h.UpdateEntry)
	r.Delete("/collection/{cardID}", h.RemoveCard)
	r.Delete("/collection", h.ClearCollection)
	return r
}

func seedCollection(store *memCollectionStore, cards ...scryfall.Card) {
	for _, card := range cards {
		_ = store.UpsertCard(nil, testUserID, card)
	}
}

func TestGetCollection(t *testing.T) {
	store := newMemCollectionStore()
	seedCollection(store,
		scryfall.Card{ID: "bolt-1", Name: "Lightning Bolt", SetCode: "2x2", TypeLine: "Instant", CMC: 1},
		scryfall.Card{ID: "island-1", Name: "Island", SetCode: "fdn", TypeLine: "Basic Land"},
	)
	router := collectionRouter(NewCollectionHandler(store, &fakeImporter{}, nil))

	t.Run("all entries", func(t *testing.T) {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodGet, "/collection", nil))

		require.Equal(t, http.StatusOK, res.Code)
		var entries []collection.Entry
		decodeData(t, res, &entries)
		assert.Len(t, entries, 2)
	})

	t.Run("set filter", func(t *testing.T) {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodGet, "/collection?set=fdn", nil))

		var entries []collection.Entry
		decodeData(t, res, &entries)
		require.Len(t, entries, 1)
		assert.Equal(t, "Island", entries[0].Card.Name)
	})

	t.Run("sorted by cmc descending", func(t *testing.T) {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodGet, "/collection?sort=cmc&order=desc", nil))

		var entries []collection.Entry
		decodeData(t, res, &entries)
		require.Len(t, entries, 2)
		assert.Equal(t, "Lightning Bolt", entries[0].Card.Name)
	})
}

func TestImportCards(t *testing.T) {
	bolt := scryfall.Card{ID: "bolt-1", Name: "Lightning Bolt", SetCode: "2x2"}
	shock := scryfall.Card{ID: "shock-1", Name: "Shock", SetCode: "fdn"}

	t.Run("name list", func(t *testing.T) {
		store := newMemCollectionStore()
		imp := &fakeImporter{cards: map[string]scryfall.Card{"Lightning Bolt": bolt, "Shock": shock}}
		router := collectionRouter(NewCollectionHandler(store, imp, nil))

		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodPost, "/collection/import",
			ImportRequest{Names: []string{"Lightning Bolt", "Shock", "Not A Card"}}))

		require.Equal(t, http.StatusOK, res.Code)
		var result ImportResult
		decodeData(t, res, &result)
		assert.Equal(t, 2, result.AddedCount)
		assert.Equal(t, []string{"Not A Card"}, result.FailedNames)
		assert.NotEmpty(t, result.Summary)

		entries, err := store.GetCollection(nil, testUserID)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("pasted text", func(t *testing.T) {
		store := newMemCollectionStore()
		imp := &fakeImporter{cards: map[string]scryfall.Card{"Lightning Bolt": bolt}}
		router := collectionRouter(NewCollectionHandler(store, imp, nil))

		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodPost, "/collection/import",
			ImportRequest{Text: "  Lightning Bolt\n\n \n"}))

		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, []string{"Lightning Bolt"}, imp.names)
	})

	t.Run("empty input", func(t *testing.T) {
		router := collectionRouter(NewCollectionHandler(newMemCollectionStore(), &fakeImporter{}, nil))

		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodPost, "/collection/import", ImportRequest{}))

		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestUpdateEntry(t *testing.T) {
	store := newMemCollectionStore()
	seedCollection(store, scryfall.Card{ID: "bolt-1", Name: "Lightning Bolt", SetCode: "2x2"})

	dispatcher := events.NewDispatcher(nil)
	router := collectionRouter(NewCollectionHandler(store, &fakeImporter{}, dispatcher))

	t.Run("updates metadata", func(t *testing.T) {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodPut, "/collection/bolt-1",
			UpdateEntryRequest{Quantity: 3, Condition: "SP", Foil: true}))

		require.Equal(t, http.StatusOK, res.Code)
		entries, _ := store.GetCollection(nil, testUserID)
		require.Len(t, entries, 1)
		assert.Equal(t, 3, entries[0].Quantity)
		assert.Equal(t, collection.ConditionSlightlyPlayed, entries[0].Condition)
		assert.True(t, entries[0].Foil)
	})

	t.Run("unknown condition", func(t *testing.T) {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodPut, "/collection/bolt-1",
			UpdateEntryRequest{Quantity: 1, Condition: "Mint"}))

		assert.Equal(t, http.StatusBadRequest, res.Code)
	})

	t.Run("missing card", func(t *testing.T) {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodPut, "/collection/ghost",
			UpdateEntryRequest{Quantity: 1, Condition: "M/NM"}))

		assert.Equal(t, http.StatusNotFound, res.Code)
	})

	t.Run("zero quantity removes", func(t *testing.T) {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodPut, "/collection/bolt-1",
			UpdateEntryRequest{Quantity: 0, Condition: "M/NM"}))

		require.Equal(t, http.StatusOK, res.Code)
		entries, _ := store.GetCollection(nil, testUserID)
		assert.Empty(t, entries)
	})
}

func TestRemoveCard(t *testing.T) {
	store := newMemCollectionStore()
	seedCollection(store, scryfall.Card{ID: "bolt-1", Name: "Lightning Bolt", SetCode: "2x2"})
	router := collectionRouter(NewCollectionHandler(store, &fakeImporter{}, nil))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, authed(t, http.MethodDelete, "/collection/bolt-1", nil))
	assert.Equal(t, http.StatusNoContent, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, authed(t, http.MethodDelete, "/collection/bolt-1", nil))
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestGetValue(t *testing.T) {
	usd := "2.50"
	store := newMemCollectionStore()
	seedCollection(store, scryfall.Card{
		ID: "bolt-1", Name: "Lightning Bolt", SetCode: "2x2",
		Prices: scryfall.Prices{USD: &usd},
	})
	router := collectionRouter(NewCollectionHandler(store, &fakeImporter{}, nil))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, authed(t, http.MethodGet, "/collection/value", nil))

	require.Equal(t, http.StatusOK, res.Code)
	var value collection.Value
	decodeData(t, res, &value)
	assert.InDelta(t, 2.50, value.TotalUSD, 0.001)
}

func TestClearCollection(t *testing.T) {
	store := newMemCollectionStore()
	seedCollection(store,
		scryfall.Card{ID: "bolt-1", Name: "Lightning Bolt"},
		scryfall.Card{ID: "island-1", Name: "Island"},
	)
	router := collectionRouter(NewCollectionHandler(store, &fakeImporter{}, nil))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, authed(t, http.MethodDelete, "/collection", nil))
	require.Equal(t, http.StatusNoContent, res.Code)

	res = httptest.NewRecorder()
	router.ServeHTTP(res, authed(t, http.MethodGet, "/collection", nil))
	var entries []collection.Entry
	decodeData(t, res, &entries)
	assert.Empty(t, entries)
}

func TestExportCollection(t *testing.T) {
	store := newMemCollectionStore()
	seedCollection(store, scryfall.Card{
		ID: "bolt-1", Name: "Lightning Bolt", SetCode: "2x2", CollectorNumber: "117",
	})
	router := collectionRouter(NewCollectionHandler(store, &fakeImporter{}, nil))

	t.Run("csv by default", func(t *testing.T) {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodGet, "/collection/export", nil))

		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, "text/csv; charset=utf-8", res.Header().Get("Content-Type"))
		assert.Contains(t, res.Body.String(), "Lightning Bolt,2x2,117,1")
	})

	t.Run("text list", func(t *testing.T) {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodGet, "/collection/export?format=text", nil))

		require.Equal(t, http.StatusOK, res.Code)
		assert.Contains(t, res.Body.String(), "1 Lightning Bolt (2x2) 117")
	})

	t.Run("unknown format", func(t *testing.T) {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodGet, "/collection/export?format=xml", nil))

		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}
