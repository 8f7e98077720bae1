// Package scryfall provides a rate-limited client for the Scryfall
// card data API.
package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.scryfall.com"
	// Scryfall asks for 50-100ms between requests (10 req/sec).
	defaultRequestDelay = 100 * time.Millisecond
	defaultTimeout      = 30 * time.Second
	defaultUserAgent    = "MTGBinder/1.0"
)

// Client is a Scryfall API client with built-in request spacing.
// Each call performs exactly one attempt; retry and backoff policy
// belongs to the caller.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	userAgent   string
}

// Options configures the Scryfall client.
type Options struct {
	// BaseURL overrides the API endpoint (used in tests).
	BaseURL string

	// UserAgent identifies the application per Scryfall's fair-use policy.
	UserAgent string

	// RequestDelay is the minimum spacing between outgoing requests.
	// Default: 100ms.
	RequestDelay time.Duration

	// Timeout is the per-request HTTP timeout. Default: 30s.
	Timeout time.Duration
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		BaseURL:      defaultBaseURL,
		UserAgent:    defaultUserAgent,
		RequestDelay: defaultRequestDelay,
		Timeout:      defaultTimeout,
	}
}

// NewClient creates a new Scryfall API client.
func NewClient(opts Options) *Client {
	def := DefaultOptions()
	if opts.BaseURL == "" {
		opts.BaseURL = def.BaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = def.UserAgent
	}
	if opts.RequestDelay <= 0 {
		opts.RequestDelay = def.RequestDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}

	return &Client{
		httpClient:  &http.Client{Timeout: opts.Timeout},
		rateLimiter: rate.NewLimiter(rate.Every(opts.RequestDelay), 1),
		baseURL:     opts.BaseURL,
		userAgent:   opts.UserAgent,
	}
}

// GetCardByName resolves a card by name via /cards/named.
// With fuzzy=false an exact name match is required; with fuzzy=true
// Scryfall's fuzzy matching is used. A miss returns *NotFoundError and
// an HTTP 429 returns *RateLimitError.
func (c *Client) GetCardByName(ctx context.Context, name string, fuzzy bool) (*Card, error) {
	mode := "exact"
	if fuzzy {
		mode = "fuzzy"
	}
	reqURL := fmt.Sprintf("%s/cards/named?%s=%s", c.baseURL, mode, url.QueryEscape(name))

	var card Card
	if err := c.doRequest(ctx, reqURL, name, &card); err != nil {
		return nil, err
	}

	return &card, nil
}

// SearchCards performs a full-text search via /cards/search.
func (c *Client) SearchCards(ctx context.Context, query string) (*SearchResult, error) {
	reqURL := fmt.Sprintf("%s/cards/search?q=%s", c.baseURL, url.QueryEscape(query))

	var result SearchResult
	if err := c.doRequest(ctx, reqURL, query, &result); err != nil {
		return nil, fmt.Errorf("failed to search cards with query %q: %w", query, err)
	}

	return &result, nil
}

// GetCard retrieves a card by its Scryfall ID.
func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	reqURL := fmt.Sprintf("%s/cards/%s", c.baseURL, id)

	var card Card
	if err := c.doRequest(ctx, reqURL, id, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}

	return &card, nil
}

// doRequest performs a single rate-limited GET and classifies the response.
func (c *Client) doRequest(ctx context.Context, reqURL, subject string, result interface{}) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to parse JSON response: %w", err)
		}

		return nil

	case http.StatusNotFound:
		return &NotFoundError{Name: subject}

	case http.StatusTooManyRequests:
		return &RateLimitError{Name: subject}

	default:
		body, _ := io.ReadAll(resp.Body)

		var apiErr APIError
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
			return &apiErr
		}

		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}
