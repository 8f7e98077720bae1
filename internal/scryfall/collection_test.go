package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetCardsByNames_Empty(t *testing.T) {
	client := NewClient(Options{})

	cards, notFound, err := client.GetCardsByNames(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cards) != 0 || len(notFound) != 0 {
		t.Errorf("expected empty results, got %d cards, %d not found", len(cards), len(notFound))
	}
}

func TestGetCardsByNames_SingleBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/cards/collection" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}

		var req CollectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(req.Identifiers) != 3 {
			t.Errorf("len(Identifiers) = %d, want 3", len(req.Identifiers))
		}

		w.Write([]byte(`{
			"object": "list",
			"not_found": [{"name": "Fake Card"}],
			"data": [
				{"id":"1","name":"Lightning Bolt","type_line":"Instant"},
				{"id":"2","name":"Shock","type_line":"Instant"}
			]
		}`))
	}))
	defer server.Close()

	client := testClient(server.URL)
	cards, notFound, err := client.GetCardsByNames(context.Background(), []string{"Lightning Bolt", "Shock", "Fake Card"})
	if err != nil {
		t.Fatalf("GetCardsByNames failed: %v", err)
	}

	if len(cards) != 2 {
		t.Errorf("len(cards) = %d, want 2", len(cards))
	}
	if len(notFound) != 1 || notFound[0] != "Fake Card" {
		t.Errorf("notFound = %v, want [Fake Card]", notFound)
	}
}

func TestGetCardsByNames_MultipleBatches(t *testing.T) {
	batchSizes := []int{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CollectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		batchSizes = append(batchSizes, len(req.Identifiers))

		resp := CollectionResponse{Object: "list", NotFound: []CardIdentifier{}}
		for _, id := range req.Identifiers {
			resp.Data = append(resp.Data, Card{ID: id.Name, Name: id.Name})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	names := make([]string, 100)
	for i := range names {
		names[i] = fmt.Sprintf("Card %d", i)
	}

	client := testClient(server.URL)
	cards, notFound, err := client.GetCardsByNames(context.Background(), names)
	if err != nil {
		t.Fatalf("GetCardsByNames failed: %v", err)
	}

	if len(cards) != 100 {
		t.Errorf("len(cards) = %d, want 100", len(cards))
	}
	if len(notFound) != 0 {
		t.Errorf("notFound = %v, want empty", notFound)
	}
	if len(batchSizes) != 2 || batchSizes[0] != MaxBatchSize || batchSizes[1] != 25 {
		t.Errorf("batchSizes = %v, want [75 25]", batchSizes)
	}
}

func TestGetCardsByNames_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, _, err := client.GetCardsByNames(context.Background(), []string{"Shock"})
	if err == nil {
		t.Fatal("expected error from 429 response")
	}
}
