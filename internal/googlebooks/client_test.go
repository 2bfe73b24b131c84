package googlebooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withTestServer points the package at an httptest server for the
// duration of a test.
func withTestServer(t *testing.T, handler http.HandlerFunc) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	origBase := baseURL
	baseURL = server.URL
	t.Cleanup(func() { baseURL = origBase })
}

func TestFetchByTitle(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "intitle:Dune", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("maxResults"))

		_, _ = w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"volumeInfo": {
					"title": "Dune",
					"authors": ["Frank Herbert"],
					"description": "<p>Set on the desert planet <b>Arrakis</b>.</p>",
					"categories": ["Fiction", "Science Fiction"],
					"averageRating": 4.5,
					"imageLinks": {"thumbnail": "http://example.com/dune.jpg"}
				}
			}]
		}`))
	})

	result, err := FetchByTitle(context.Background(), "Dune")
	require.NoError(t, err)

	assert.Equal(t, "Dune", result.Record.Title)
	assert.Equal(t, "Frank Herbert", result.Record.Author)
	assert.Equal(t, "Set on the desert planet Arrakis.", result.Record.CleanDescription)
	assert.Equal(t, "Fiction, Science Fiction", result.Record.Categories)
	assert.Equal(t, "4.5", result.Record.Rating)
	assert.Equal(t, "http://example.com/dune.jpg", result.ThumbnailURL)
}

func TestFetchByTitleNotFound(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": 0}`))
	})

	_, err := FetchByTitle(context.Background(), "Unknown Title XYZ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFetchByTitleMissingRating(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"totalItems": 1,
			"items": [{"volumeInfo": {"title": "Obscure Book"}}]
		}`))
	})

	result, err := FetchByTitle(context.Background(), "Obscure Book")
	require.NoError(t, err)
	assert.Equal(t, "N/A", result.Record.Rating)
	assert.Empty(t, result.Record.Categories)
}

func TestFetchByTitleServerError(t *testing.T) {
	withTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := FetchByTitle(context.Background(), "Dune")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
