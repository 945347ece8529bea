package arxiv

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// atomFeed renders a minimal Atom document with n entries whose ids start at
// first.
func atomFeed(first, n int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	for i := 0; i < n; i++ {
		id := first + i
		fmt.Fprintf(&b, `<entry>
  <id>http://arxiv.org/abs/2501.%05dv1</id>
  <title>Paper %d</title>
  <summary>Summary %d</summary>
  <published>2026-08-29T10:00:00Z</published>
  <updated>2026-08-29T11:00:00Z</updated>
  <category term="cs.AI"/>
  <author><name>Author %d</name></author>
</entry>
`, id, id, id, id)
	}
	b.WriteString(`</feed>`)
	return b.String()
}

type pagedHandler struct {
	mu       sync.Mutex
	requests int
	total    int
}

func (h *pagedHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.requests++
	h.mu.Unlock()

	start, _ := strconv.Atoi(r.URL.Query().Get("start"))
	max, _ := strconv.Atoi(r.URL.Query().Get("max_results"))
	remaining := h.total - start
	if remaining < 0 {
		remaining = 0
	}
	if remaining > max {
		remaining = max
	}
	fmt.Fprint(w, atomFeed(start, remaining))
}

func (h *pagedHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.requests
}

func newTestClient(baseURL string, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithBaseURL(baseURL),
		WithPageDelay(0),
		WithRetries(3, time.Millisecond, 4*time.Millisecond),
	}
	return NewClient(append(base, opts...)...)
}

func TestFetchCategoryStopsOnShortPage(t *testing.T) {
	t.Parallel()

	handler := &pagedHandler{total: 5}
	srv := httptest.NewServer(handler)
	defer srv.Close()

	c := newTestClient(srv.URL)
	entries, err := c.FetchCategory(context.Background(), "cs.AI", 2, 10)
	require.NoError(t, err)

	// Pages of 2, 2, 1; the short third page ends retrieval.
	require.Len(t, entries, 5)
	require.Equal(t, 3, handler.count())
	require.Equal(t, "http://arxiv.org/abs/2501.00000v1", entries[0].ID)
	require.Equal(t, "http://arxiv.org/abs/2501.00004v1", entries[4].ID)
}

func TestFetchCategoryStopsAtPageCap(t *testing.T) {
	t.Parallel()

	handler := &pagedHandler{total: 1000}
	srv := httptest.NewServer(handler)
	defer srv.Close()

	c := newTestClient(srv.URL)
	entries, err := c.FetchCategory(context.Background(), "cs.AI", 200, 4)
	require.NoError(t, err)

	// Full pages all the way; the cap, not a short page, ends retrieval.
	require.Len(t, entries, 800)
	require.Equal(t, 4, handler.count())
}

func TestFetchCategoryRetriesRateLimit(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, atomFeed(0, 1))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	entries, err := c.FetchCategory(context.Background(), "cs.AI", 10, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 3, attempts)
}

func TestFetchCategoryDoesNotRetryClientError(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchCategory(context.Background(), "cs.AI", 10, 1)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 1, attempts)
}

func TestFetchCategoryExhaustsRetries(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchCategory(context.Background(), "cs.AI", 10, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "max retries exceeded")

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 4, attempts) // initial attempt plus three retries
}

func TestFetchCategorySendsExpectedQuery(t *testing.T) {
	t.Parallel()

	var gotQuery string
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, atomFeed(0, 0))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, WithUserAgent("test-agent/1.0"))
	_, err := c.FetchCategory(context.Background(), "stat.ML", 50, 1)
	require.NoError(t, err)

	require.Contains(t, gotQuery, "search_query=cat%3Astat.ML")
	require.Contains(t, gotQuery, "sortBy=submittedDate")
	require.Contains(t, gotQuery, "sortOrder=descending")
	require.Contains(t, gotQuery, "max_results=50")
	require.Contains(t, gotQuery, "start=0")
	require.Equal(t, "test-agent/1.0", gotUA)
}

func TestProbeReturnsCount(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Empty(t, r.URL.Query().Get("sortBy"))
		fmt.Fprint(w, atomFeed(0, 7))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	n, err := c.Probe(context.Background(), "cs.AI")
	require.NoError(t, err)
	require.Equal(t, 7, n)
}

func TestFetchCategoryRejectsMalformedFeed(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "not xml at all <<<")
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.FetchCategory(context.Background(), "cs.AI", 10, 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unmarshal feed")
}
