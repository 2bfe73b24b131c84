package wikipedia

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"

	"github.com/bookdex/bookdex/internal/textutil"
)

// minPlotLength is the shortest plot extract considered usable.
const minPlotLength = 200

// plotAnchors are the section ids checked for plot-like content,
// in priority order.
var plotAnchors = []string{"Plot", "Plot_summary", "Summary", "Overview", "Synopsis"}

// noiseTerms mark candidate titles that refer to adaptations rather
// than the literary work.
var noiseTerms = []string{"radio", "tv", "film", "series"}

// ScoredResult is a search candidate with its disambiguation score.
type ScoredResult struct {
	SearchResult
	Score int
}

// CandidateSelector, when set, is consulted for ambiguous searches
// (top two candidates scoring equal). It returns the chosen result
// and false to fall back to the scored winner.
var CandidateSelector func(candidates []ScoredResult) (SearchResult, bool)

// ScoreCandidates ranks search candidates for a canonicalized query
// title. A candidate gains 100 points for the literal "(novel)"
// marker, 50 for containing the query title, and loses 100 when it
// mentions any adaptation noise term. Ties keep the original search
// order.
func ScoreCandidates(results []SearchResult, canonicalTitle string) []ScoredResult {
	queryLower := strings.ToLower(canonicalTitle)

	scored := make([]ScoredResult, len(results))
	for i, res := range results {
		titleLower := strings.ToLower(res.Title)

		score := 0
		if strings.Contains(res.Title, "(novel)") {
			score += 100
		}
		if queryLower != "" && strings.Contains(titleLower, queryLower) {
			score += 50
		}
		for _, term := range noiseTerms {
			if strings.Contains(titleLower, term) {
				score -= 100
				break
			}
		}

		scored[i] = ScoredResult{SearchResult: res, Score: score}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}

// selectCandidate picks the page to use for a query. The scored
// winner is used unless the search is ambiguous and an interactive
// selector is installed.
func selectCandidate(scored []ScoredResult) SearchResult {
	if CandidateSelector != nil && len(scored) > 1 && scored[0].Score == scored[1].Score {
		if picked, ok := CandidateSelector(scored); ok {
			return picked
		}
	}
	return scored[0].SearchResult
}

// ResolvePlot finds the best-matching page for a title and extracts
// its plot section. It returns empty strings on any failure; the page
// title is returned even when no plot was found so genre extraction
// can reuse it.
func ResolvePlot(ctx context.Context, title string) (plot string, pageTitle string) {
	canonical := textutil.StripBracketed(title)

	results, err := Search(ctx, canonical)
	if err != nil {
		slog.Warn("Wikipedia search failed", "title", canonical, "error", err)
		return "", ""
	}
	if len(results) == 0 {
		slog.Debug("No Wikipedia results", "title", canonical)
		return "", ""
	}

	selected := selectCandidate(ScoreCandidates(results, canonical))
	pageTitle = selected.Title
	slog.Debug("Resolved Wikipedia page", "title", canonical, "page", pageTitle)

	doc, err := fetchPage(ctx, pageTitle)
	if err != nil {
		slog.Warn("Wikipedia page fetch failed", "page", pageTitle, "error", err)
		return "", pageTitle
	}

	plot = extractPlot(doc)
	if plotTooShort(plot) {
		if plot != "" {
			slog.Debug("Plot extract too short, discarding", "page", pageTitle, "length", utf8.RuneCountInString(plot))
		}
		return "", pageTitle
	}

	return plot, pageTitle
}

// PlotFromPage extracts the plot section from a known page title.
func PlotFromPage(ctx context.Context, pageTitle string) string {
	doc, err := fetchPage(ctx, pageTitle)
	if err != nil {
		slog.Warn("Wikipedia page fetch failed", "page", pageTitle, "error", err)
		return ""
	}
	plot := extractPlot(doc)
	if plotTooShort(plot) {
		return ""
	}
	return plot
}

// plotTooShort measures the extract in characters, not bytes, so
// accented text is not discarded early.
func plotTooShort(plot string) bool {
	return utf8.RuneCountInString(plot) <= minPlotLength
}

// extractPlot locates the first plot-like section anchor and joins
// the paragraph blocks that follow it, stopping at the next top-level
// section heading.
func extractPlot(doc *html.Node) string {
	nodes := flatten(doc)

	anchorIdx := -1
	for _, anchor := range plotAnchors {
		for i, n := range nodes {
			if n.Type == html.ElementNode && attrVal(n, "id") == anchor {
				anchorIdx = i
				break
			}
		}
		if anchorIdx >= 0 {
			break
		}
	}
	if anchorIdx < 0 {
		return ""
	}

	var paragraphs []string
	for i := anchorIdx + 1; i < len(nodes); i++ {
		n := nodes[i]
		if n.Type != html.ElementNode {
			continue
		}
		if n.Data == "h2" {
			break
		}
		if n.Data == "p" {
			if text := nodeText(n, nil); text != "" {
				paragraphs = append(paragraphs, text)
			}
			// Jump past this paragraph's descendants
			i += subtreeSize(n)
		}
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n"))
}

// ExtractGenreField fetches a page and returns the raw text of the
// infobox row labelled "genre", with footnote markers and superscript
// annotations stripped. Returns "" when absent or on any error.
func ExtractGenreField(ctx context.Context, pageTitle string) string {
	if pageTitle == "" {
		return ""
	}

	doc, err := fetchPage(ctx, pageTitle)
	if err != nil {
		slog.Warn("Wikipedia page fetch failed", "page", pageTitle, "error", err)
		return ""
	}

	for _, table := range findAll(doc, func(n *html.Node) bool {
		return n.Data == "table" && strings.Contains(attrVal(n, "class"), "infobox")
	}) {
		for _, row := range findAll(table, func(n *html.Node) bool { return n.Data == "tr" }) {
			header := findFirst(row, func(n *html.Node) bool { return n.Data == "th" })
			if header == nil || !strings.Contains(strings.ToLower(nodeText(header, nil)), "genre") {
				continue
			}
			cell := findFirst(row, func(n *html.Node) bool { return n.Data == "td" })
			if cell == nil {
				return ""
			}
			// Superscript footnotes are not part of the genre value
			raw := nodeText(cell, map[string]bool{"sup": true})
			return textutil.StripFootnotes(raw)
		}
	}

	return ""
}

// attrVal returns the value of the named attribute on a node, or "".
func attrVal(n *html.Node, name string) string {
	for _, attr := range n.Attr {
		if attr.Key == name {
			return attr.Val
		}
	}
	return ""
}

// flatten returns the nodes of the document in document order.
func flatten(doc *html.Node) []*html.Node {
	var nodes []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		nodes = append(nodes, n)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return nodes
}

// subtreeSize counts the descendants of a node.
func subtreeSize(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count += 1 + subtreeSize(c)
	}
	return count
}

// nodeText concatenates the visible text below a node, skipping the
// given element names, with separators for line-break elements.
func nodeText(n *html.Node, skip map[string]bool) string {
	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skip[n.Data] {
				return
			}
			if n.Data == "br" || n.Data == "li" {
				buf.WriteString(", ")
			}
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	text := strings.Join(strings.Fields(buf.String()), " ")
	text = strings.Trim(text, ", ")
	return strings.ReplaceAll(text, " ,", ",")
}

// findAll returns every element node under root matching the predicate.
func findAll(root *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	for _, n := range flatten(root) {
		if n.Type == html.ElementNode && match(n) {
			found = append(found, n)
		}
	}
	return found
}

// findFirst returns the first element node under root matching the predicate.
func findFirst(root *html.Node, match func(*html.Node) bool) *html.Node {
	for _, n := range flatten(root) {
		if n.Type == html.ElementNode && match(n) {
			return n
		}
	}
	return nil
}
