// Package wikipedia resolves a book title to its best-matching
// encyclopedia page and extracts plot text and genre metadata from it.
package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/bookdex/bookdex/internal/ratelimit"
)

// Package-level variables for the API client.
// These can be overridden in tests for dependency injection.
var (
	httpClient    *http.Client
	clientOnce    sync.Once
	httpClientNew = func() *http.Client {
		return &http.Client{Timeout: 10 * time.Second}
	}
	apiBaseURL  = "https://en.wikipedia.org/w/api.php"
	pageBaseURL = "https://en.wikipedia.org/wiki"

	limiter     *ratelimit.Limiter
	limiterOnce sync.Once
)

// getHTTPClient returns a singleton HTTP client
func getHTTPClient() *http.Client {
	clientOnce.Do(func() {
		httpClient = httpClientNew()
	})
	return httpClient
}

// getLimiter returns a singleton rate limiter for Wikipedia (1 req/sec)
func getLimiter() *ratelimit.Limiter {
	limiterOnce.Do(func() {
		limiter = ratelimit.New("Wikipedia", 1)
	})
	return limiter
}

// SearchResult is one entry of a full-text search response.
type SearchResult struct {
	Title   string `json:"title"`
	PageID  int    `json:"pageid"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Query struct {
		Search []SearchResult `json:"search"`
	} `json:"query"`
}

// Search runs a full-text search against the MediaWiki search endpoint.
func Search(ctx context.Context, query string) ([]SearchResult, error) {
	if err := getLimiter().Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("utf8", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}

	resp, err := getHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia search failed for %q: %w", query, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia search returned status %d for %q", resp.StatusCode, query)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode search response for %q: %w", query, err)
	}

	return result.Query.Search, nil
}

// fetchPage downloads and parses the article HTML for a page title.
func fetchPage(ctx context.Context, pageTitle string) (*html.Node, error) {
	if err := getLimiter().Wait(ctx); err != nil {
		return nil, err
	}

	pageURL := fmt.Sprintf("%s/%s", pageBaseURL, url.PathEscape(strings.ReplaceAll(pageTitle, " ", "_")))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create page request: %w", err)
	}

	resp, err := getHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia page fetch failed for %q: %w", pageTitle, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia page fetch returned status %d for %q", resp.StatusCode, pageTitle)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse page HTML for %q: %w", pageTitle, err)
	}

	return doc, nil
}
