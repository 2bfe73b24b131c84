// Package googlebooks queries the Google Books volumes API for the
// best metadata match of a book title.
package googlebooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/bookdex/bookdex/internal/book"
	"github.com/bookdex/bookdex/internal/config"
	"github.com/bookdex/bookdex/internal/ratelimit"
	"github.com/bookdex/bookdex/internal/textutil"
)

// ErrNotFound is returned when the API has no volume for the title.
var ErrNotFound = errors.New("no volume found")

// Package-level variables for the API client.
// These can be overridden in tests for dependency injection.
var (
	httpClient    *http.Client
	clientOnce    sync.Once
	httpClientNew = func() *http.Client {
		return &http.Client{Timeout: 10 * time.Second}
	}
	baseURL = "https://www.googleapis.com/books/v1"

	limiter     *ratelimit.Limiter
	limiterOnce sync.Once
)

// getHTTPClient returns a singleton HTTP client for the volumes API
func getHTTPClient() *http.Client {
	clientOnce.Do(func() {
		httpClient = httpClientNew()
	})
	return httpClient
}

// getLimiter returns a singleton rate limiter for Google Books (1 req/sec)
func getLimiter() *ratelimit.Limiter {
	limiterOnce.Do(func() {
		limiter = ratelimit.New("GoogleBooks", 1)
	})
	return limiter
}

// volumesResponse mirrors the subset of the volumes API response we use.
type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description"`
	Categories    []string `json:"categories"`
	AverageRating float64  `json:"averageRating"`
	ImageLinks    struct {
		Thumbnail      string `json:"thumbnail"`
		SmallThumbnail string `json:"smallThumbnail"`
	} `json:"imageLinks"`
}

// Result is a provider match converted to the cache record shape,
// plus the thumbnail URL used for cover downloads.
type Result struct {
	Record       book.Record
	ThumbnailURL string
}

// FetchByTitle queries the volumes API with an intitle: search and
// returns the best match converted to a cache record.
// Returns ErrNotFound when the API reports zero items.
func FetchByTitle(ctx context.Context, title string) (*Result, error) {
	if err := getLimiter().Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("q", "intitle:"+title)
	query.Set("maxResults", "1")
	if config.GoogleBooksAPIKey != "" {
		query.Set("key", config.GoogleBooksAPIKey)
	}

	reqURL := fmt.Sprintf("%s/volumes?%s", baseURL, query.Encode())
	slog.Debug("Fetching book data from Google Books", "title", title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := getHTTPClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("google Books API request failed for %q: %w", title, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google Books API returned status %d for %q", resp.StatusCode, title)
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode Google Books response for %q: %w", title, err)
	}

	if result.TotalItems == 0 || len(result.Items) == 0 {
		return nil, ErrNotFound
	}

	info := result.Items[0].VolumeInfo
	rec := book.Record{
		Title:            info.Title,
		Author:           book.JoinList(info.Authors),
		Description:      info.Description,
		CleanDescription: textutil.CleanMarkup(info.Description),
		Categories:       book.JoinList(info.Categories),
		Rating:           formatRating(info.AverageRating),
	}

	thumb := info.ImageLinks.Thumbnail
	if thumb == "" {
		thumb = info.ImageLinks.SmallThumbnail
	}

	slog.Debug("Successfully fetched book from Google Books",
		"title", title,
		"matched", rec.Title,
	)

	return &Result{Record: rec, ThumbnailURL: thumb}, nil
}

// formatRating renders the average rating, or "N/A" when the API
// omits the field.
func formatRating(rating float64) string {
	if rating <= 0 {
		return "N/A"
	}
	return strconv.FormatFloat(rating, 'f', -1, 64)
}
