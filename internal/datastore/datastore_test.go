package datastore

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdex/bookdex/internal/book"
)

func TestMirror(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bookdex.db")

	records := []book.Record{
		{Title: "Dune", Author: "Frank Herbert", CleanDescription: "desert planet", Categories: "Science Fiction", Rating: "4.5"},
		{Title: "Neuromancer", Author: "William Gibson", CleanDescription: "cyberspace", Categories: "Science Fiction", Rating: "4.0"},
	}
	require.NoError(t, Mirror(dbPath, records))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM books").Scan(&count))
	assert.Equal(t, 2, count)

	var author string
	require.NoError(t, db.QueryRow("SELECT author FROM books WHERE title = ?", "Dune").Scan(&author))
	assert.Equal(t, "Frank Herbert", author)
}

func TestMirrorReplacesPreviousContent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bookdex.db")

	require.NoError(t, Mirror(dbPath, []book.Record{{Title: "Old"}}))
	require.NoError(t, Mirror(dbPath, []book.Record{{Title: "New"}}))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	var title string
	require.NoError(t, db.QueryRow("SELECT title FROM books").Scan(&title))
	assert.Equal(t, "New", title)
}
