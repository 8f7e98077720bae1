package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtgbinder/mtgbinder/internal/scryfall"
)

func cardRouter(h *CardHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/cards/search", h.SearchCards)
	r.Get("/cards/named", h.GetCardByName)
	r.Get("/cards/{cardID}", h.GetCard)
	return r
}

func TestSearchCards(t *testing.T) {
	client := &fakeCardClient{search: &scryfall.SearchResult{
		TotalCards: 1,
		Data:       []scryfall.Card{{ID: "bolt-1", Name: "Lightning Bolt"}},
	}}
	router := cardRouter(NewCardHandler(client))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, authed(t, http.MethodGet, "/cards/search?q=bolt", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var result scryfall.SearchResult
	decodeData(t, res, &result)
	assert.Equal(t, 1, result.TotalCards)
	assert.Equal(t, []string{"search:bolt"}, client.calls)

	t.Run("missing query", func(t *testing.T) {
		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodGet, "/cards/search", nil))
		assert.Equal(t, http.StatusBadRequest, res.Code)
	})
}

func TestGetCardByName(t *testing.T) {
	t.Run("exact hit", func(t *testing.T) {
		client := &fakeCardClient{card: &scryfall.Card{ID: "bolt-1", Name: "Lightning Bolt"}}
		router := cardRouter(NewCardHandler(client))

		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodGet, "/cards/named?name=Lightning+Bolt", nil))
		require.Equal(t, http.StatusOK, res.Code)
		assert.Equal(t, []string{"exact:Lightning Bolt"}, client.calls)
	})

	t.Run("not found without fuzzy", func(t *testing.T) {
		client := &fakeCardClient{err: &scryfall.NotFoundError{Name: "lighning"}}
		router := cardRouter(NewCardHandler(client))

		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodGet, "/cards/named?name=lighning", nil))
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, []string{"exact:lighning"}, client.calls)
	})

	t.Run("fuzzy fallback requested", func(t *testing.T) {
		client := &fakeCardClient{err: &scryfall.NotFoundError{Name: "lighning"}}
		router := cardRouter(NewCardHandler(client))

		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodGet, "/cards/named?name=lighning&fuzzy=true", nil))
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.Equal(t, []string{"exact:lighning", "fuzzy:lighning"}, client.calls)
	})

	t.Run("rate limited maps to 429", func(t *testing.T) {
		client := &fakeCardClient{err: &scryfall.RateLimitError{Name: "bolt"}}
		router := cardRouter(NewCardHandler(client))

		res := httptest.NewRecorder()
		router.ServeHTTP(res, authed(t, http.MethodGet, "/cards/named?name=bolt", nil))
		assert.Equal(t, http.StatusTooManyRequests, res.Code)
	})
}

func TestGetCard(t *testing.T) {
	client := &fakeCardClient{card: &scryfall.Card{ID: "bolt-1", Name: "Lightning Bolt"}}
	router := cardRouter(NewCardHandler(client))

	res := httptest.NewRecorder()
	router.ServeHTTP(res, authed(t, http.MethodGet, "/cards/bolt-1", nil))
	require.Equal(t, http.StatusOK, res.Code)

	var card scryfall.Card
	decodeData(t, res, &card)
	assert.Equal(t, "Lightning Bolt", card.Name)
}
