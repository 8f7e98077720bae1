package scryfall

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testClient(serverURL string) *Client {
	return NewClient(Options{
		BaseURL:      serverURL,
		RequestDelay: time.Millisecond,
	})
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Options{})

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.httpClient == nil {
		t.Error("httpClient is nil")
	}
	if client.rateLimiter == nil {
		t.Error("rateLimiter is nil")
	}
	if client.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, defaultBaseURL)
	}
	if client.userAgent == "" {
		t.Error("userAgent is empty")
	}
}

func TestClient_RateLimiting(t *testing.T) {
	requestCount := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestCount++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"test","name":"Test Card"}`))
	}))
	defer server.Close()

	client := NewClient(Options{
		BaseURL:      server.URL,
		RequestDelay: 50 * time.Millisecond,
	})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.GetCard(ctx, "test"); err != nil {
			t.Fatalf("Request %d failed: %v", i+1, err)
		}
	}
	elapsed := time.Since(start)

	if requestCount != 3 {
		t.Errorf("Expected 3 requests, got %d", requestCount)
	}

	// 2 delays of 50ms each between 3 requests
	if elapsed < 100*time.Millisecond {
		t.Errorf("Rate limiting not working: completed 3 requests in %v", elapsed)
	}
}

func TestClient_GetCardByName_Exact(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/named" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("exact"); got != "Lightning Bolt" {
			t.Errorf("exact param = %q, want %q", got, "Lightning Bolt")
		}
		if r.Header.Get("User-Agent") == "" {
			t.Error("User-Agent header not set")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "abc-123",
			"name": "Lightning Bolt",
			"mana_cost": "{R}",
			"cmc": 1.0,
			"type_line": "Instant",
			"set": "lea",
			"set_name": "Limited Edition Alpha",
			"rarity": "common",
			"prices": {"usd": "350.00"}
		}`))
	}))
	defer server.Close()

	card, err := testClient(server.URL).GetCardByName(context.Background(), "Lightning Bolt", false)
	if err != nil {
		t.Fatalf("GetCardByName failed: %v", err)
	}

	if card.ID != "abc-123" {
		t.Errorf("ID = %q, want %q", card.ID, "abc-123")
	}
	if card.Name != "Lightning Bolt" {
		t.Errorf("Name = %q, want %q", card.Name, "Lightning Bolt")
	}
	if card.Prices.USD == nil || *card.Prices.USD != "350.00" {
		t.Errorf("Prices.USD not parsed: %+v", card.Prices)
	}
}

func TestClient_GetCardByName_Fuzzy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("fuzzy"); got != "Lighning Blt" {
			t.Errorf("fuzzy param = %q, want %q", got, "Lighning Blt")
		}
		w.Write([]byte(`{"id":"abc-123","name":"Lightning Bolt","type_line":"Instant"}`))
	}))
	defer server.Close()

	card, err := testClient(server.URL).GetCardByName(context.Background(), "Lighning Blt", true)
	if err != nil {
		t.Fatalf("GetCardByName failed: %v", err)
	}
	if card.Name != "Lightning Bolt" {
		t.Errorf("Name = %q, want %q", card.Name, "Lightning Bolt")
	}
}

func TestClient_GetCardByName_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"object":"error","code":"not_found","status":404,"details":"No card found"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).GetCardByName(context.Background(), "Not A Real Card", false)
	if err == nil {
		t.Fatal("expected error for unknown card")
	}
	if !IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestClient_GetCardByName_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := testClient(server.URL).GetCardByName(context.Background(), "Shock", false)
	if err == nil {
		t.Fatal("expected error from 429 response")
	}
	if !IsRateLimited(err) {
		t.Errorf("expected RateLimitError, got %T: %v", err, err)
	}
}

func TestClient_GetCardByName_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"object":"error","code":"internal","status":500,"details":"boom"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).GetCardByName(context.Background(), "Shock", false)
	if err == nil {
		t.Fatal("expected error from 500 response")
	}
	if IsNotFound(err) || IsRateLimited(err) {
		t.Errorf("500 should not classify as not-found or rate-limited: %v", err)
	}

	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Details != "boom" {
		t.Errorf("Details = %q, want %q", apiErr.Details, "boom")
	}
}

func TestClient_SearchCards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/search" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "c:red t:instant" {
			t.Errorf("q param = %q", got)
		}
		w.Write([]byte(`{
			"object": "list",
			"total_cards": 2,
			"has_more": false,
			"data": [
				{"id":"1","name":"Lightning Bolt","type_line":"Instant"},
				{"id":"2","name":"Shock","type_line":"Instant"}
			]
		}`))
	}))
	defer server.Close()

	result, err := testClient(server.URL).SearchCards(context.Background(), "c:red t:instant")
	if err != nil {
		t.Fatalf("SearchCards failed: %v", err)
	}

	if result.TotalCards != 2 {
		t.Errorf("TotalCards = %d, want 2", result.TotalCards)
	}
	if len(result.Data) != 2 {
		t.Fatalf("len(Data) = %d, want 2", len(result.Data))
	}
	if result.Data[1].Name != "Shock" {
		t.Errorf("Data[1].Name = %q, want %q", result.Data[1].Name, "Shock")
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := testClient(server.URL).GetCardByName(ctx, "Shock", false)
	if err == nil {
		t.Fatal("expected error after context timeout")
	}
}
