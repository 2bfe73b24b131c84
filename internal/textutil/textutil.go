// Package textutil cleans free-text metadata fields before they are
// cached or fed to the similarity engine.
package textutil

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	htmlTagRegex    = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	bracketedRegex  = regexp.MustCompile(`\[[^\]]*\]`)
	footnoteRegex   = regexp.MustCompile(`\[\d+\]`)
)

// CleanMarkup strips HTML markup from text and returns the visible
// text content, whitespace-collapsed and trimmed. Empty input yields
// an empty string and malformed markup never causes an error.
func CleanMarkup(text string) string {
	if text == "" {
		return ""
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		// Parsing failed, fall back to regex stripping
		return cleanMarkupFallback(text)
	}

	var buf strings.Builder
	extractText(doc, &buf)

	return strings.TrimSpace(collapseWhitespace(buf.String()))
}

// extractText recursively extracts text content from HTML nodes.
func extractText(n *html.Node, buf *strings.Builder) {
	if n.Type == html.TextNode {
		buf.WriteString(n.Data)
	}

	// Keep block boundaries from gluing words together
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "br", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractText(c, buf)
	}

	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "div", "li", "h1", "h2", "h3", "h4", "h5", "h6":
			buf.WriteString(" ")
		}
	}
}

func cleanMarkupFallback(s string) string {
	s = htmlTagRegex.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	return strings.TrimSpace(collapseWhitespace(s))
}

func collapseWhitespace(s string) string {
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// StripBracketed removes all [...]-delimited spans from a title,
// such as footnote markers and disambiguation remnants, and trims
// the result.
func StripBracketed(title string) string {
	return strings.TrimSpace(bracketedRegex.ReplaceAllString(title, ""))
}

// StripFootnotes removes [1]-style footnote markers without touching
// other bracketed content.
func StripFootnotes(s string) string {
	return strings.TrimSpace(footnoteRegex.ReplaceAllString(s, ""))
}
