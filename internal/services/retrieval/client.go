package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP timeout for index queries.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 10

	// DefaultPageSize is the default number of candidate passages per query.
	DefaultPageSize = 5
)

// Client queries an external document search index over HTTP. Queries are
// POSTed as JSON to <baseURL>/indexes/<indexID>/query and return scored
// passages.
type Client struct {
	baseURL    string
	apiKey     string
	indexID    string
	pageSize   int
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithPageSize sets the number of candidate passages requested per query.
func WithPageSize(size int) ClientOption {
	return func(c *Client) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// NewClient creates a search index client.
func NewClient(baseURL, apiKey, indexID string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		indexID:  indexID,
		pageSize: DefaultPageSize,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// queryRequest is the wire format for an index query.
type queryRequest struct {
	Query    string `json:"query"`
	PageSize int    `json:"page_size"`
}

// queryResult is a single scored passage from the index.
type queryResult struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Excerpt    string  `json:"excerpt"`
	Confidence float64 `json:"confidence"`
}

// queryResponse is the wire format for an index query response.
type queryResponse struct {
	Results []queryResult `json:"results"`
}

// Query runs a search against the configured index and returns the raw
// scored results. Confidence filtering is the caller's concern.
func (c *Client) Query(ctx context.Context, question string) ([]queryResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	body, err := json.Marshal(queryRequest{
		Query:    question,
		PageSize: c.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	reqURL := fmt.Sprintf("%s/indexes/%s/query", c.baseURL, c.indexID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("index", c.indexID).
			Int("page_size", c.pageSize).
			Msg("Search index query")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &IndexError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
			Index:      c.indexID,
		}
	}

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return result.Results, nil
}

// IndexError is a non-2xx response from the search index.
type IndexError struct {
	StatusCode int
	Message    string
	Index      string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %s returned status %d: %s", e.Index, e.StatusCode, e.Message)
}
