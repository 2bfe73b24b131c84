// Package book defines the cached book record shared by the store,
// enrichment pipeline and similarity engine.
package book

import "strings"

// CSVHeader is the fixed column order of the cache file.
var CSVHeader = []string{"title", "author", "description", "clean_description", "categories", "rating"}

// Record represents one row of the book cache.
type Record struct {
	Title            string `json:"title"`
	Author           string `json:"author"`
	Description      string `json:"description"`
	CleanDescription string `json:"clean_description"`
	Categories       string `json:"categories"`
	Rating           string `json:"rating"`
}

// KeyEqual reports whether two titles refer to the same cache entry.
// Title keys are case-insensitive and ignore surrounding whitespace.
func KeyEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// SplitList splits a comma-joined field into trimmed parts.
// Empty parts are dropped; an empty input yields nil.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// JoinList joins parts into the comma-joined field format.
func JoinList(parts []string) string {
	return strings.Join(parts, ", ")
}

// ToRow converts the record to a CSV row in CSVHeader order.
func (r Record) ToRow() []string {
	return []string{r.Title, r.Author, r.Description, r.CleanDescription, r.Categories, r.Rating}
}

// FromRow builds a record from a CSV row in CSVHeader order.
// Short rows are padded with empty fields so partially written
// historical data still loads.
func FromRow(row []string) Record {
	padded := make([]string, len(CSVHeader))
	copy(padded, row)
	return Record{
		Title:            padded[0],
		Author:           padded[1],
		Description:      padded[2],
		CleanDescription: padded[3],
		Categories:       padded[4],
		Rating:           padded[5],
	}
}
