package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bookdex/bookdex/internal/book"
)

// CSVStore persists the cache as a UTF-8 CSV file with a fixed header.
// A missing file is treated as an empty dataset; the first insert
// creates it.
type CSVStore struct {
	path string
}

// NewCSVStore creates a store backed by the given file path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the backing file path.
func (s *CSVStore) Path() string {
	return s.path
}

// Lookup scans the file for a case-insensitive trimmed title match.
func (s *CSVStore) Lookup(title string) (*book.Record, bool, error) {
	records, err := s.All()
	if err != nil {
		return nil, false, err
	}
	rec, ok := lookup(records, title)
	return rec, ok, nil
}

// Insert appends the record unless the title already exists.
func (s *CSVStore) Insert(rec book.Record) (bool, error) {
	records, err := s.All()
	if err != nil {
		return false, err
	}

	if _, exists := lookup(records, rec.Title); exists {
		slog.Debug("Title already cached, skipping insert", "title", rec.Title)
		return false, nil
	}

	return true, s.Rewrite(append(records, rec))
}

// All reads every record in dataset order.
func (s *CSVStore) All() ([]book.Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open cache file: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	// Skip header
	if _, err := reader.Read(); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cache header: %w", err)
	}

	var records []book.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Skipping malformed cache row", "error", err)
			continue
		}
		records = append(records, book.FromRow(row))
	}

	return records, nil
}

// Rewrite replaces the entire file. The new content is written to a
// temp file in the same directory and renamed over the old file, so a
// failed rewrite leaves the previous content intact.
func (s *CSVStore) Rewrite(records []book.Record) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp cache file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	writer := csv.NewWriter(tmp)
	if err := writer.Write(book.CSVHeader); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write cache header: %w", err)
	}
	for _, rec := range records {
		if err := writer.Write(rec.ToRow()); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("failed to write cache row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to flush cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp cache file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}
