package arxiv

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/arxiv-daily/internal/metrics"
)

// DefaultBaseURL is the production arXiv query endpoint.
const DefaultBaseURL = "https://export.arxiv.org/api/query"

// APIError represents an HTTP-level error from the arXiv API.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("arxiv api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Client provides paged access to the arXiv query API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger

	maxRetries   int
	retryBackoff time.Duration
	maxBackoff   time.Duration
	pageDelay    time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates an arXiv API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: "arxiv-daily/0.2 (+https://github.com/JakeFAU/arxiv-daily)",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:       zap.NewNop(),
		maxRetries:   3,
		retryBackoff: 500 * time.Millisecond,
		maxBackoff:   8 * time.Second,
		pageDelay:    3 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBaseURL overrides the query endpoint, primarily for tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the retry budget and backoff bounds.
func WithRetries(max int, initial, ceiling time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = initial
		c.maxBackoff = ceiling
	}
}

// WithPageDelay sets the pacing delay applied between successive pages.
func WithPageDelay(d time.Duration) ClientOption {
	return func(c *Client) {
		c.pageDelay = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// FetchCategory retrieves entries for one category, newest submissions first,
// issuing paged requests until a short page or the page cap. The returned
// slice preserves upstream page order.
func (c *Client) FetchCategory(ctx context.Context, category string, pageSize, maxPages int) ([]Entry, error) {
	var all []Entry
	for page := 0; page < maxPages; page++ {
		if page > 0 {
			if err := pause(ctx, c.pageDelay); err != nil {
				return nil, err
			}
		}

		entries, err := c.fetchPage(ctx, category, page*pageSize, pageSize)
		if err != nil {
			return nil, fmt.Errorf("category %s page %d: %w", category, page, err)
		}
		all = append(all, entries...)

		c.logger.Debug("fetched page",
			zap.String("category", category),
			zap.Int("page", page),
			zap.Int("entries", len(entries)),
		)

		// A short page means the feed is exhausted.
		if len(entries) < pageSize {
			break
		}
	}
	return all, nil
}

// Probe issues a single unpaged, unsorted request for the category and
// returns the entry count. It exists purely for diagnostics when the primary
// retrieval comes back empty; its results are never used as output.
func (c *Client) Probe(ctx context.Context, category string) (int, error) {
	query := url.Values{}
	query.Set("search_query", "cat:"+category)
	query.Set("max_results", "10")

	body, err := c.doWithRetry(ctx, category, query)
	if err != nil {
		return 0, fmt.Errorf("probe category %s: %w", category, err)
	}

	var f feed
	if err := xml.Unmarshal(body, &f); err != nil {
		return 0, fmt.Errorf("unmarshal probe feed: %w", err)
	}
	return len(f.Entries), nil
}

func (c *Client) fetchPage(ctx context.Context, category string, start, pageSize int) ([]Entry, error) {
	query := url.Values{}
	query.Set("search_query", "cat:"+category)
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")
	query.Set("start", strconv.Itoa(start))
	query.Set("max_results", strconv.Itoa(pageSize))

	body, err := c.doWithRetry(ctx, category, query)
	if err != nil {
		return nil, err
	}

	var f feed
	if err := xml.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("unmarshal feed: %w", err)
	}
	return f.Entries, nil
}

// doWithRetry performs a GET with exponential jittered backoff on transient
// failures. Rate-limit and server errors retry; 4xx responses and context
// cancellation do not.
func (c *Client) doWithRetry(ctx context.Context, category string, query url.Values) ([]byte, error) {
	var lastErr error
	backoff := c.retryBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// Jitter: backoff * (0.5 to 1.5).
			jitter := backoff/2 + time.Duration(rand.Int64N(int64(backoff)))
			c.logger.Warn("retrying request",
				zap.String("category", category),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", jitter),
				zap.Error(lastErr),
			)
			metrics.IncFetchRetry(category)

			if err := pause(ctx, jitter); err != nil {
				return nil, err
			}

			backoff *= 2
			if backoff > c.maxBackoff {
				backoff = c.maxBackoff
			}
		}

		body, err := c.doRequest(ctx, query)
		if err == nil {
			metrics.ObserveFetchRequest(category, "ok")
			return body, nil
		}
		metrics.ObserveFetchRequest(category, "error")
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) && !apiErr.IsRetryable() {
			return nil, err
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, query url.Values) ([]byte, error) {
	fullURL := c.baseURL + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/atom+xml")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}

	return body, nil
}

// pause sleeps for d unless the context finishes first.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
