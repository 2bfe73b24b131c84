package wikipedia

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreCandidates(t *testing.T) {
	results := []SearchResult{
		{Title: "Dune (novel)"},
		{Title: "Dune (film)"},
		{Title: "Dune"},
	}

	scored := ScoreCandidates(results, "Dune")

	require.Len(t, scored, 3)
	assert.Equal(t, "Dune (novel)", scored[0].Title)
	assert.Equal(t, 150, scored[0].Score)
	assert.Equal(t, "Dune", scored[1].Title)
	assert.Equal(t, 50, scored[1].Score)
	assert.Equal(t, "Dune (film)", scored[2].Title)
	assert.Equal(t, -50, scored[2].Score)
}

func TestScoreCandidatesTiesKeepSearchOrder(t *testing.T) {
	results := []SearchResult{
		{Title: "Foundation and Empire"},
		{Title: "Foundation and Earth"},
	}

	scored := ScoreCandidates(results, "Foundation")

	assert.Equal(t, "Foundation and Empire", scored[0].Title)
	assert.Equal(t, scored[0].Score, scored[1].Score)
}

func TestScoreCandidatesNoisePenalty(t *testing.T) {
	scored := ScoreCandidates([]SearchResult{{Title: "Dune (TV series)"}}, "Dune")

	// +50 for the title match, -100 once even though both "tv" and
	// "series" match
	assert.Equal(t, -50, scored[0].Score)
}

func TestScoreCandidatesAllAdaptations(t *testing.T) {
	results := []SearchResult{
		{Title: "Dune (TV series)"},
		{Title: "Dune (film)"},
	}

	scored := ScoreCandidates(results, "Dune")

	// A multi-term noise title must not score below a single-term one,
	// so equal scores fall back to the search order.
	assert.Equal(t, scored[0].Score, scored[1].Score)
	assert.Equal(t, "Dune (TV series)", scored[0].Title)
}

func TestPlotLengthMeasuredInCharacters(t *testing.T) {
	assert.True(t, plotTooShort(strings.Repeat("é", 200)))
	assert.False(t, plotTooShort(strings.Repeat("é", 201)))
}

const plotPage = `<html><body>
<table class="infobox vevent">
<tr><th>Author</th><td>Frank Herbert</td></tr>
<tr><th>Genre</th><td><a href="#">Science fiction</a><sup>[2]</sup><br/><a href="#">Adventure</a></td></tr>
</table>
<h2><span id="Plot">Plot</span></h2>
<p>%s</p>
<p>Second paragraph of the plot.</p>
<h2><span id="Reception">Reception</span></h2>
<p>Critics praised the novel.</p>
</body></html>`

// newResolverServer serves a canned search response and a page body,
// and points the package endpoints at itself.
func newResolverServer(t *testing.T, searchJSON, pageHTML string) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "query", r.URL.Query().Get("action"))
		assert.Equal(t, "search", r.URL.Query().Get("list"))
		_, _ = w.Write([]byte(searchJSON))
	})
	mux.HandleFunc("/wiki/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(pageHTML))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	origAPI, origPage := apiBaseURL, pageBaseURL
	apiBaseURL = server.URL + "/w/api.php"
	pageBaseURL = server.URL + "/wiki"
	t.Cleanup(func() {
		apiBaseURL = origAPI
		pageBaseURL = origPage
	})
}

func TestResolvePlot(t *testing.T) {
	longParagraph := strings.Repeat("The desert planet holds many secrets. ", 8)
	newResolverServer(t,
		`{"query":{"search":[{"title":"Dune (novel)","pageid":1},{"title":"Dune (film)","pageid":2}]}}`,
		fmt.Sprintf(plotPage, longParagraph),
	)

	plot, pageTitle := ResolvePlot(context.Background(), "Dune[1]")

	assert.Equal(t, "Dune (novel)", pageTitle)
	assert.Contains(t, plot, "The desert planet holds many secrets.")
	assert.Contains(t, plot, "Second paragraph of the plot.")
	assert.NotContains(t, plot, "Critics praised the novel.")
}

func TestResolvePlotTooShortDiscarded(t *testing.T) {
	newResolverServer(t,
		`{"query":{"search":[{"title":"Dune (novel)","pageid":1}]}}`,
		fmt.Sprintf(plotPage, "Short plot."),
	)

	plot, pageTitle := ResolvePlot(context.Background(), "Dune")

	// The page title survives for genre extraction even without a plot
	assert.Empty(t, plot)
	assert.Equal(t, "Dune (novel)", pageTitle)
}

func TestResolvePlotNoResults(t *testing.T) {
	newResolverServer(t, `{"query":{"search":[]}}`, "")

	plot, pageTitle := ResolvePlot(context.Background(), "Unknown Title XYZ")

	assert.Empty(t, plot)
	assert.Empty(t, pageTitle)
}

func TestResolvePlotSearchErrorDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	origAPI := apiBaseURL
	apiBaseURL = server.URL + "/w/api.php"
	t.Cleanup(func() { apiBaseURL = origAPI })

	plot, pageTitle := ResolvePlot(context.Background(), "Dune")

	assert.Empty(t, plot)
	assert.Empty(t, pageTitle)
}

func TestExtractGenreField(t *testing.T) {
	newResolverServer(t,
		`{"query":{"search":[]}}`,
		fmt.Sprintf(plotPage, "unused"),
	)

	genre := ExtractGenreField(context.Background(), "Dune (novel)")

	assert.Equal(t, "Science fiction, Adventure", genre)
}

func TestExtractGenreFieldMissingRow(t *testing.T) {
	newResolverServer(t,
		`{"query":{"search":[]}}`,
		`<html><body><table class="infobox"><tr><th>Author</th><td>Someone</td></tr></table></body></html>`,
	)

	assert.Empty(t, ExtractGenreField(context.Background(), "Some Page"))
}

func TestExtractGenreFieldEmptyPageTitle(t *testing.T) {
	assert.Empty(t, ExtractGenreField(context.Background(), ""))
}

func TestSelectCandidateInteractiveTieBreak(t *testing.T) {
	scored := []ScoredResult{
		{SearchResult: SearchResult{Title: "A"}, Score: 50},
		{SearchResult: SearchResult{Title: "B"}, Score: 50},
	}

	orig := CandidateSelector
	CandidateSelector = func(candidates []ScoredResult) (SearchResult, bool) {
		return candidates[1].SearchResult, true
	}
	t.Cleanup(func() { CandidateSelector = orig })

	assert.Equal(t, "B", selectCandidate(scored).Title)

	// Selector declining falls back to the scored winner
	CandidateSelector = func(candidates []ScoredResult) (SearchResult, bool) {
		return SearchResult{}, false
	}
	assert.Equal(t, "A", selectCandidate(scored).Title)
}
