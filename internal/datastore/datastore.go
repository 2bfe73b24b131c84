// Package datastore mirrors the book cache into a local SQLite
// database so it can be browsed with Datasette.
package datastore

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/bookdex/bookdex/internal/book"
)

const booksSchema = `
CREATE TABLE IF NOT EXISTS books (
	title TEXT PRIMARY KEY,
	author TEXT,
	description TEXT,
	clean_description TEXT,
	categories TEXT,
	rating TEXT
)`

// Mirror rewrites the books table from the full cache. The table is
// replaced wholesale inside one transaction, matching the cache's
// whole-file rewrite semantics.
func Mirror(dbPath string, records []book.Record) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open datasette database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(booksSchema); err != nil {
		return fmt.Errorf("failed to create books table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM books"); err != nil {
		return fmt.Errorf("failed to clear books table: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO books
		(title, author, description, clean_description, categories, rating)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		if _, err := stmt.Exec(rec.Title, rec.Author, rec.Description,
			rec.CleanDescription, rec.Categories, rec.Rating); err != nil {
			return fmt.Errorf("failed to insert %q: %w", rec.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mirror: %w", err)
	}
	return nil
}
