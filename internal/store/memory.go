package store

import "github.com/bookdex/bookdex/internal/book"

// MemStore is an in-memory Store for deterministic tests.
type MemStore struct {
	records []book.Record
}

// NewMemStore creates a MemStore seeded with the given records.
func NewMemStore(records ...book.Record) *MemStore {
	return &MemStore{records: append([]book.Record(nil), records...)}
}

// Lookup scans for a case-insensitive trimmed title match.
func (s *MemStore) Lookup(title string) (*book.Record, bool, error) {
	rec, ok := lookup(s.records, title)
	return rec, ok, nil
}

// Insert appends the record unless the title already exists.
func (s *MemStore) Insert(rec book.Record) (bool, error) {
	if _, exists := lookup(s.records, rec.Title); exists {
		return false, nil
	}
	s.records = append(s.records, rec)
	return true, nil
}

// All returns a copy of the records in dataset order.
func (s *MemStore) All() ([]book.Record, error) {
	return append([]book.Record(nil), s.records...), nil
}

// Rewrite replaces the dataset.
func (s *MemStore) Rewrite(records []book.Record) error {
	s.records = append([]book.Record(nil), records...)
	return nil
}
