// Package store persists the book cache as a flat, title-keyed
// record set with case-insensitive uniqueness.
package store

import "github.com/bookdex/bookdex/internal/book"

// Store is the cache contract shared by the enrichment pipeline and
// the similarity engine. Implementations assume a single writer;
// Rewrite replaces the whole dataset (last write wins).
type Store interface {
	// Lookup scans for a record by case-insensitive trimmed title.
	Lookup(title string) (*book.Record, bool, error)

	// Insert appends a record unless a case-insensitive title match
	// already exists. Returns false when the insert was a no-op.
	Insert(rec book.Record) (bool, error)

	// All returns every record in dataset order.
	All() ([]book.Record, error)

	// Rewrite replaces the entire persisted dataset atomically.
	Rewrite(records []book.Record) error
}

func lookup(records []book.Record, title string) (*book.Record, bool) {
	for i := range records {
		if book.KeyEqual(records[i].Title, title) {
			rec := records[i]
			return &rec, true
		}
	}
	return nil, false
}
