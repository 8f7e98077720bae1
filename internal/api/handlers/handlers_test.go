package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mtgbinder/mtgbinder/internal/auth"
	"github.com/mtgbinder/mtgbinder/internal/collection"
	"github.com/mtgbinder/mtgbinder/internal/deck"
	"github.com/mtgbinder/mtgbinder/internal/importer"
	"github.com/mtgbinder/mtgbinder/internal/scryfall"
	"github.com/mtgbinder/mtgbinder/internal/storage"
)

const testUserID = "user-1"

// memCollectionStore is an in-memory storage.CollectionStore.
type memCollectionStore struct {
	entries map[string][]collection.Entry
	err     error
}

func newMemCollectionStore() *memCollectionStore {
	return &memCollectionStore{entries: make(map[string][]collection.Entry)}
}

func (m *memCollectionStore) GetCollection(_ context.Context, userID string) ([]collection.Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return append([]collection.Entry(nil), m.entries[userID]...), nil
}

func (m *memCollectionStore) PutCollection(_ context.Context, userID string, entries []collection.Entry) error {
	m.entries[userID] = append([]collection.Entry(nil), entries...)
	return nil
}

func (m *memCollectionStore) UpsertCard(_ context.Context, userID string, card scryfall.Card) error {
	if m.err != nil {
		return m.err
	}
	m.entries[userID] = collection.Merge(m.entries[userID], []scryfall.Card{card})
	return nil
}

func (m *memCollectionStore) UpdateEntry(_ context.Context, userID string, entry collection.Entry) error {
	for i, e := range m.entries[userID] {
		if e.Card.ID == entry.Card.ID {
			if entry.Quantity <= 0 {
				m.entries[userID] = append(m.entries[userID][:i], m.entries[userID][i+1:]...)
				return nil
			}
			entry.Card = e.Card
			m.entries[userID][i] = entry
			return nil
		}
	}
	return storage.ErrNotFound
}

func (m *memCollectionStore) RemoveCard(_ context.Context, userID, cardID string) error {
	for i, e := range m.entries[userID] {
		if e.Card.ID == cardID {
			m.entries[userID] = append(m.entries[userID][:i], m.entries[userID][i+1:]...)
			return nil
		}
	}
	return storage.ErrNotFound
}

// memDeckStore is an in-memory storage.DeckStore.
type memDeckStore struct {
	decks map[string]*deck.Deck
}

func newMemDeckStore() *memDeckStore {
	return &memDeckStore{decks: make(map[string]*deck.Deck)}
}

func (m *memDeckStore) CreateDeck(_ context.Context, d *deck.Deck) error {
	clone := *d
	m.decks[d.ID] = &clone
	return nil
}

func (m *memDeckStore) GetDeck(_ context.Context, id string) (*deck.Deck, error) {
	d, ok := m.decks[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *d
	clone.Entries = append([]deck.Entry(nil), d.Entries...)
	return &clone, nil
}

func (m *memDeckStore) ListDecks(_ context.Context, userID string) ([]deck.Deck, error) {
	var decks []deck.Deck
	for _, d := range m.decks {
		if d.UserID == userID {
			decks = append(decks, *d)
		}
	}
	return decks, nil
}

func (m *memDeckStore) UpdateDeck(_ context.Context, d *deck.Deck) error {
	if _, ok := m.decks[d.ID]; !ok {
		return storage.ErrNotFound
	}
	clone := *d
	m.decks[d.ID] = &clone
	return nil
}

func (m *memDeckStore) DeleteDeck(_ context.Context, id string) error {
	if _, ok := m.decks[id]; !ok {
		return storage.ErrNotFound
	}
	delete(m.decks, id)
	return nil
}

// fakeCardClient is a scripted CardClient.
type fakeCardClient struct {
	card   *scryfall.Card
	search *scryfall.SearchResult
	err    error
	calls  []string
}

func (f *fakeCardClient) GetCardByName(_ context.Context, name string, fuzzy bool) (*scryfall.Card, error) {
	mode := "exact"
	if fuzzy {
		mode = "fuzzy"
	}
	f.calls = append(f.calls, mode+":"+name)
	return f.card, f.err
}

func (f *fakeCardClient) SearchCards(_ context.Context, query string) (*scryfall.SearchResult, error) {
	f.calls = append(f.calls, "search:"+query)
	return f.search, f.err
}

func (f *fakeCardClient) GetCard(_ context.Context, id string) (*scryfall.Card, error) {
	f.calls = append(f.calls, "get:"+id)
	return f.card, f.err
}

// fakeImporter resolves every name to a card via the merge target.
type fakeImporter struct {
	cards map[string]scryfall.Card
	err   error
	names []string
}

func (f *fakeImporter) ImportCards(ctx context.Context, target importer.MergeTarget, names []string) (importer.Report, error) {
	if f.err != nil {
		return importer.Report{}, f.err
	}
	f.names = names
	report := importer.Report{Attempted: len(names), FailedNames: []string{}}
	for _, name := range names {
		card, ok := f.cards[name]
		if !ok {
			report.FailedNames = append(report.FailedNames, name)
			continue
		}
		if err := target.MergeCard(ctx, card); err != nil {
			return report, err
		}
		report.AddedCount++
	}
	return report, nil
}

// authed builds a request carrying the test user identity.
func authed(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(auth.WithUserID(req.Context(), testUserID))
}

// decodeData unmarshals the data field of a success envelope into out.
func decodeData(t *testing.T, res *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}
