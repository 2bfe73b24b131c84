// Package genre maps free-text category labels onto the fixed
// candidate genre vocabulary.
package genre

import (
	"regexp"
	"strings"

	"github.com/bookdex/bookdex/internal/book"
)

// Vocabulary is the fixed candidate genre list. All normalized and
// classified output is constrained to these labels. List order matters:
// a raw label maps to the first entry whose lowercase form is a
// substring of the label, so specific genres come before generic ones
// ("Science Fiction" before "Fiction").
var Vocabulary = []string{
	"Science Fiction",
	"Historical Fiction",
	"Fantasy",
	"Dystopian",
	"Romance",
	"Mystery",
	"Thriller",
	"Horror",
	"Adventure",
	"Young Adult",
	"Biography",
	"Poetry",
	"Classics",
	"Nonfiction",
	"Fiction",
}

// Normalize maps a comma-joined category string onto the vocabulary.
// Each part maps to the first vocabulary entry whose lowercase form is
// a substring of the part's lowercase form; parts matching no entry are
// dropped. The mapped list is deduplicated preserving first-seen order.
func Normalize(raw string) string {
	var mapped []string
	seen := make(map[string]bool)

	for _, part := range book.SplitList(raw) {
		lower := strings.ToLower(part)
		for _, candidate := range Vocabulary {
			if strings.Contains(lower, strings.ToLower(candidate)) {
				if !seen[candidate] {
					seen[candidate] = true
					mapped = append(mapped, candidate)
				}
				break
			}
		}
	}

	return book.JoinList(mapped)
}

var alnumRegex = regexp.MustCompile(`\w`)

// CleanCategoryList drops comma-separated parts that contain no
// alphanumeric characters, such as stray parentheses left over from
// upstream metadata.
func CleanCategoryList(raw string) string {
	var cleaned []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); alnumRegex.MatchString(part) {
			cleaned = append(cleaned, part)
		}
	}
	return book.JoinList(cleaned)
}
