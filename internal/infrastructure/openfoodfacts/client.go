package openfoodfacts

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/vanshika2720/Sustainable-Food-Tracker/internal/domain"
	"golang.org/x/time/rate"
)

const (
	// maxBodyBytes caps how much of a response body is read
	maxBodyBytes = 4 << 20
	// maxErrorBodyBytes caps how much of an error body is logged
	maxErrorBodyBytes = 512

	defaultUserAgent      = "SustainableFoodTracker/1.0 (+https://github.com/vanshika2720/Sustainable-Food-Tracker)"
	defaultMaxAttempts    = 2
	defaultSearchPageSize = 20
)

// ClientConfig holds the tunables of the product API client
type ClientConfig struct {
	BaseURL           string
	UserAgent         string
	MaxAttempts       int
	RequestsPerMinute int
	Timeout           time.Duration
}

// Client handles communication with the Open Food Facts product API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userAgent   string
	maxAttempts int
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new product API client
func NewClient(cfg ClientConfig) *Client {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 100
	}
	// rate.Limit is requests per second
	limiter := rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 10)

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:   userAgent,
		maxAttempts: attempts,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

func (c *Client) debugLog(format string, args ...interface{}) {
	if c.debug {
		log.Printf("[OFF] "+format, args...)
	}
}

// exponentialBackoff returns the wait before retry number attempt (1-based)
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// readLimitedBody reads at most limit bytes from r
func readLimitedBody(r io.Reader, limit int64) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, limit))
}

// retryable reports whether a status code is worth another attempt
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFailure, err)
	}

	return resp, nil
}

// getJSON fetches reqURL and decodes the JSON body into out, retrying 429/5xx.
func (c *Client) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %v", domain.ErrUpstreamFailure, err)
		}

		c.debugLog("GET %s (attempt %d)", reqURL, attempt)
		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return err
			}
			if attempt < c.maxAttempts {
				if waitErr := sleepContext(ctx, exponentialBackoff(attempt)); waitErr != nil {
					return err
				}
			}
			continue
		}

		body, readErr := readLimitedBody(resp.Body, maxBodyBytes)
		resp.Body.Close()
		if readErr != nil {
			return fmt.Errorf("%w: read body: %v", domain.ErrUpstreamFailure, readErr)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			snippet := body
			if len(snippet) > maxErrorBodyBytes {
				snippet = snippet[:maxErrorBodyBytes]
			}
			log.Printf("[OFF] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(snippet))
			lastErr = fmt.Errorf("%w: status %d", domain.ErrUpstreamFailure, resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = fmt.Errorf("%w: %w: status %d", domain.ErrRateLimited, domain.ErrUpstreamFailure, resp.StatusCode)
			}
			if !retryable(resp.StatusCode) {
				return lastErr
			}
			if attempt < c.maxAttempts {
				if waitErr := sleepContext(ctx, exponentialBackoff(attempt)); waitErr != nil {
					return lastErr
				}
			}
			continue
		}

		if err := decodeJSON(body, out); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", domain.ErrUpstreamFailure, err)
		}
		return nil
	}

	return lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ProductV2 looks a code up through the v2 structured endpoint.
func (c *Client) ProductV2(ctx context.Context, code string) (domain.RawProduct, error) {
	reqURL := fmt.Sprintf("%s/api/v2/product/%s", c.baseURL, url.PathEscape(code))

	var env productEnvelope
	if err := c.getJSON(ctx, reqURL, &env); err != nil {
		return nil, err
	}
	if !env.found(true) {
		return nil, domain.ErrProductNotFound
	}
	return env.Product, nil
}

// ProductV0 looks a code up through the legacy v0 endpoint.
func (c *Client) ProductV0(ctx context.Context, code string) (domain.RawProduct, error) {
	reqURL := fmt.Sprintf("%s/api/v0/product/%s.json", c.baseURL, url.PathEscape(code))

	var env productEnvelope
	if err := c.getJSON(ctx, reqURL, &env); err != nil {
		return nil, err
	}
	if !env.found(false) {
		return nil, domain.ErrProductNotFound
	}
	return env.Product, nil
}

// ProductDisplay looks a code up through the generic display endpoint.
func (c *Client) ProductDisplay(ctx context.Context, code string) (domain.RawProduct, error) {
	params := url.Values{}
	params.Set("code", code)
	params.Set("action", "display")
	params.Set("json", "1")
	reqURL := fmt.Sprintf("%s/cgi/product.pl?%s", c.baseURL, params.Encode())

	var env productEnvelope
	if err := c.getJSON(ctx, reqURL, &env); err != nil {
		return nil, err
	}
	if !env.found(false) {
		return nil, domain.ErrProductNotFound
	}
	return env.Product, nil
}

// SearchByCode runs a search filtered on an exact code.
func (c *Client) SearchByCode(ctx context.Context, code string) ([]domain.RawProduct, error) {
	params := url.Values{}
	params.Set("code", code)
	params.Set("json", "1")
	params.Set("page_size", "1")
	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	var env searchEnvelope
	if err := c.getJSON(ctx, reqURL, &env); err != nil {
		return nil, err
	}
	products := env.nonEmptyProducts()
	if len(products) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return products, nil
}

// SearchText runs a free-text search.
func (c *Client) SearchText(ctx context.Context, terms string, pageSize int) (*domain.SearchResult, error) {
	log.Printf("[OFF] SearchText called with query: %q", terms)

	if pageSize <= 0 {
		pageSize = defaultSearchPageSize
	}
	params := url.Values{}
	params.Set("search_terms", terms)
	params.Set("search_simple", "1")
	params.Set("json", "1")
	params.Set("page_size", strconv.Itoa(pageSize))
	reqURL := fmt.Sprintf("%s/cgi/search.pl?%s", c.baseURL, params.Encode())

	var env searchEnvelope
	if err := c.getJSON(ctx, reqURL, &env); err != nil {
		return nil, err
	}

	result := env.toResult(pageSize)
	log.Printf("[OFF] Found %d products for query: %q", len(result.Products), terms)
	return result, nil
}
