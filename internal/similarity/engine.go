// Package similarity ranks cached books by content similarity in a
// joint text and category vector space.
package similarity

import (
	"math"
	"sort"
	"strings"

	"github.com/bookdex/bookdex/internal/book"
)

// DefaultTopN is the number of matches returned by default.
const DefaultTopN = 5

// Match is one ranked similarity result.
type Match struct {
	Title            string  `json:"title"`
	Author           string  `json:"author"`
	Categories       string  `json:"categories"`
	Rating           string  `json:"rating"`
	CleanDescription string  `json:"clean_description"`
	Similarity       float64 `json:"similarity"`
}

// Space is the joint vector space over a snapshot of the cache.
// Records without a clean description are excluded.
type Space struct {
	Records []book.Record
	vectors []sparseVec
}

// BuildSpace vectorizes the records: an L2-normalized TF-IDF block
// over unigrams and bigrams of description plus lowercased categories,
// concatenated with a multi-hot category block scaled by 0.5.
func BuildSpace(records []book.Record) *Space {
	var kept []book.Record
	for _, rec := range records {
		if strings.TrimSpace(rec.CleanDescription) != "" {
			kept = append(kept, rec)
		}
	}

	docs := make([][]string, len(kept))
	for i, rec := range kept {
		combined := rec.CleanDescription + " " + strings.ToLower(rec.Categories)
		docs[i] = terms(tokenize(combined))
	}
	v := fit(docs)

	// Category vocabulary = union of observed lowercased labels
	catIndex := make(map[string]int)
	for _, rec := range kept {
		for _, cat := range splitCategories(rec.Categories) {
			if _, ok := catIndex[cat]; !ok {
				catIndex[cat] = len(catIndex)
			}
		}
	}

	offset := len(v.vocab)
	vectors := make([]sparseVec, len(kept))
	for i, rec := range kept {
		vec := v.transform(docs[i])
		for _, cat := range splitCategories(rec.Categories) {
			vec[offset+catIndex[cat]] = categoryWeight
		}
		vectors[i] = vec
	}

	return &Space{Records: kept, vectors: vectors}
}

// splitCategories lowercases and comma-splits a category field.
func splitCategories(categories string) []string {
	return book.SplitList(strings.ToLower(categories))
}

// Similar rebuilds the space from the given records and ranks all
// non-query records by cosine similarity to the query title. A title
// absent from the space yields an empty list, not an error. When
// filterGenres is non-empty, candidates sharing no case-insensitive
// category with the filter are skipped. Similarities are rounded to
// two decimal places.
func Similar(records []book.Record, title string, filterGenres []string, topN int) []Match {
	if topN <= 0 {
		topN = DefaultTopN
	}

	space := BuildSpace(records)

	queryIdx := -1
	for i := range space.Records {
		if book.KeyEqual(space.Records[i].Title, title) {
			queryIdx = i
			break
		}
	}
	if queryIdx < 0 {
		return nil
	}

	sims := make([]float64, len(space.Records))
	for i := range space.Records {
		sims[i] = cosine(space.vectors[queryIdx], space.vectors[i])
	}

	// Rank by similarity descending, stable on dataset order
	order := make([]int, len(space.Records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return sims[order[a]] > sims[order[b]]
	})

	var filter []string
	for _, g := range filterGenres {
		filter = append(filter, strings.ToLower(strings.TrimSpace(g)))
	}

	var matches []Match
	for _, i := range order {
		if i == queryIdx {
			continue
		}
		if len(filter) > 0 && !sharesCategory(splitCategories(space.Records[i].Categories), filter) {
			continue
		}

		rec := space.Records[i]
		matches = append(matches, Match{
			Title:            rec.Title,
			Author:           rec.Author,
			Categories:       rec.Categories,
			Rating:           rec.Rating,
			CleanDescription: rec.CleanDescription,
			Similarity:       math.Round(sims[i]*100) / 100,
		})
		if len(matches) >= topN {
			break
		}
	}

	return matches
}

// sharesCategory reports whether any filter genre appears in the
// candidate's category list.
func sharesCategory(categories, filter []string) bool {
	for _, f := range filter {
		for _, c := range categories {
			if c == f {
				return true
			}
		}
	}
	return false
}
