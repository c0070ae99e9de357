// Package scryfall implements a client for the external card database API.
package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.scryfall.com"
	rateLimitDelay = 100 * time.Millisecond // 100ms between requests (10 req/sec)
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
)

// Client represents a card database API client with rate limiting.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
}

// NewClient creates a new card database API client.
func NewClient(userAgent string) *Client {
	if userAgent == "" {
		userAgent = "CardBinder/1.0"
	}
	return &Client{
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		// Rate limiter: 1 request per 100ms = 10 req/sec. This also paces
		// sequential result pages so the API's inter-page delay is honored.
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:   userAgent,
	}
}

// GetCard retrieves a card by its stable id. Used to refresh a single
// card's price snapshot beyond what the bulk search returned.
func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	u := fmt.Sprintf("%s/cards/%s", c.baseURL, id)

	var card Card
	if err := c.doRequest(ctx, u, &card); err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", id, err)
	}

	return &card, nil
}

// SearchAllPrintings retrieves every printing in the given sets. The query
// is a disjunction of set: clauses with unique=prints, so multi-printing
// duplicates are retained. Pages are fetched strictly sequentially via the
// continuation link; on a mid-stream failure the cards accumulated so far
// are returned along with the error so callers can keep a partial catalog.
func (c *Client) SearchAllPrintings(ctx context.Context, setCodes []string) ([]Card, error) {
	if len(setCodes) == 0 {
		return nil, nil
	}

	clauses := make([]string, len(setCodes))
	for i, code := range setCodes {
		clauses[i] = "set:" + code
	}
	query := "(" + strings.Join(clauses, " OR ") + ")"

	next := fmt.Sprintf("%s/cards/search?q=%s&unique=prints", c.baseURL, url.QueryEscape(query))

	var all []Card
	for next != "" {
		var page SearchResult
		if err := c.doRequest(ctx, next, &page); err != nil {
			return all, fmt.Errorf("failed to search printings: %w", err)
		}

		all = append(all, page.Data...)

		if page.HasMore && page.NextPage != "" {
			next = page.NextPage
		} else {
			next = ""
		}
	}

	return all, nil
}

// doRequest performs an HTTP request with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)

			// Retry on network errors
			if attempt < maxRetries {
				time.Sleep(backoff)
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		if closeErr := resp.Body.Close(); closeErr != nil && readErr == nil {
			readErr = closeErr
		}

		switch resp.StatusCode {
		case http.StatusOK:
			if readErr != nil {
				return fmt.Errorf("failed to read response body: %w", readErr)
			}
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("failed to parse JSON response: %w", err)
			}
			return nil

		case http.StatusTooManyRequests:
			// Rate limited - exponential backoff
			lastErr = fmt.Errorf("rate limited (HTTP 429)")

			if attempt < maxRetries {
				retryAfter := resp.Header.Get("Retry-After")
				if retryAfter != "" {
					if duration, err := time.ParseDuration(retryAfter + "s"); err == nil {
						time.Sleep(duration)
					} else {
						time.Sleep(backoff)
					}
				} else {
					time.Sleep(backoff)
				}
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return lastErr

		case http.StatusNotFound:
			return &NotFoundError{URL: url}

		default:
			var apiErr APIError
			if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
				return &apiErr
			}

			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// minDuration returns the minimum of two time.Duration values.
func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
