package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/pricelens/backend/internal/domain"
	"golang.org/x/time/rate"
)

// Client talks to the search API serving both the visual-identification
// (lens) and shopping-search engines.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	region      string
	currency    string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new search API client. requestsPerHour caps the
// upstream quota consumption.
func NewClient(apiKey, baseURL, region, currency string, requestsPerHour int) *Client {
	if requestsPerHour <= 0 {
		requestsPerHour = 1000
	}
	// rate.Limit is requests per second
	limiter := rate.NewLimiter(rate.Limit(float64(requestsPerHour)/3600.0), 10)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		region:      region,
		currency:    currency,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// lensResponse is the wire shape of the visual-matches endpoint
type lensResponse struct {
	VisualMatches []visualMatch `json:"visual_matches"`
	Error         string        `json:"error,omitempty"`
}

type visualMatch struct {
	Title string `json:"title"`
}

// shoppingResponse is the wire shape of the shopping-search endpoint.
// Records are kept loose on purpose: fields vary per source.
type shoppingResponse struct {
	ShoppingResults []domain.RawSearchResult `json:"shopping_results"`
	Error           string                   `json:"error,omitempty"`
}

// Identify returns the ranked raw titles of visual matches for an image URL
func (c *Client) Identify(ctx context.Context, imageURL string) ([]string, error) {
	if c.debug {
		log.Printf("[SERP] Identify called with image: %q", imageURL)
	}

	params := url.Values{}
	params.Add("engine", "google_lens")
	params.Add("url", imageURL)
	params.Add("hl", "en")
	params.Add("country", c.region)

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var lensResp lensResponse
	if err := json.Unmarshal(body, &lensResp); err != nil {
		return nil, fmt.Errorf("failed to decode lens response: %w", err)
	}
	if lensResp.Error != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrIdentificationFailure, lensResp.Error)
	}

	titles := make([]string, 0, len(lensResp.VisualMatches))
	for _, m := range lensResp.VisualMatches {
		if m.Title != "" {
			titles = append(titles, m.Title)
		}
	}

	if c.debug {
		log.Printf("[SERP] Identify returned %d visual matches", len(titles))
	}

	return titles, nil
}

// Search returns raw shopping-result records for a text query
func (c *Client) Search(ctx context.Context, query string) ([]domain.RawSearchResult, error) {
	if c.debug {
		log.Printf("[SERP] Search called with query: %q", query)
	}

	params := url.Values{}
	params.Add("engine", "google_shopping")
	params.Add("q", query)
	params.Add("gl", c.region)
	params.Add("hl", "en")
	params.Add("currency", c.currency)

	body, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	var searchResp shoppingResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}
	if searchResp.Error != "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrSearchFailure, searchResp.Error)
	}

	if c.debug {
		log.Printf("[SERP] Search returned %d results for %q", len(searchResp.ShoppingResults), query)
	}

	return searchResp.ShoppingResults, nil
}

// maxAttempts bounds the retry loop for transient upstream failures
const maxAttempts = 3

// get executes a rate-limited GET against /search with up to maxAttempts
// tries for transient failures. The backoff sleep is skipped after the final
// attempt; exhaustion returns immediately.
func (c *Client) get(ctx context.Context, params url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, domain.ErrMissingCredentials
	}
	params.Add("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s/search?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if c.debug {
				log.Printf("[SERP] Request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			if attempt < maxAttempts {
				sleepWithContext(ctx, exponentialBackoff(attempt))
			}
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[SERP] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(body))
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrSearchFailure, resp.StatusCode)
			// Client errors other than rate limiting will not improve on retry
			if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, lastErr
			}
			if attempt < maxAttempts {
				sleepWithContext(ctx, exponentialBackoff(attempt))
			}
			continue
		}

		return body, nil
	}

	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "PriceLens/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchFailure, err)
	}

	return resp, nil
}

// exponentialBackoff returns the wait before the next retry: 500ms, 1s, 2s
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500<<(attempt-1)) * time.Millisecond
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
