package markdown

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookdex/bookdex/internal/book"
)

func TestFrontmatterSortedKeys(t *testing.T) {
	fm := NewFrontmatter()
	fm.Set("title", "Dune")
	fm.Set("author", "Frank Herbert")
	fm.Set("rating", "4.2")

	assert.Equal(t, []string{"author", "rating", "title"}, fm.Keys())

	val, ok := fm.Get("author")
	require.True(t, ok)
	assert.Equal(t, "Frank Herbert", val)
}

func TestNoteBuild(t *testing.T) {
	fm := NewFrontmatter()
	fm.Set("title", "Dune")
	fm.Set("categories", []string{"Science Fiction", "Classics"})
	fm.Set("rating", "4.2")

	note := &Note{
		Frontmatter: fm,
		Body:        "A desert planet and a spice empire.",
	}

	out, err := note.Build()
	require.NoError(t, err)

	content := string(out)
	assert.True(t, strings.HasPrefix(content, "---\n"), "frontmatter must open the note")
	assert.Contains(t, content, "categories: [Science Fiction, Classics]")
	assert.Contains(t, content, "title: Dune")
	assert.True(t, strings.HasSuffix(content, "A desert planet and a spice empire."))

	// keys come out alphabetically
	catIdx := strings.Index(content, "categories:")
	ratingIdx := strings.Index(content, "rating:")
	titleIdx := strings.Index(content, "title:")
	assert.Less(t, catIdx, ratingIdx)
	assert.Less(t, ratingIdx, titleIdx)
}

func TestNoteBuildNoFrontmatter(t *testing.T) {
	note := &Note{
		Frontmatter: NewFrontmatter(),
		Body:        "Just a body.",
	}

	out, err := note.Build()
	require.NoError(t, err)
	assert.Equal(t, "Just a body.", string(out))
}

func TestWriteNote(t *testing.T) {
	dir := t.TempDir()

	rec := book.Record{
		Title:            "Mistborn: The Final Empire",
		Author:           "Brandon Sanderson",
		Description:      "<p>Raw html description</p>",
		CleanDescription: "A thief discovers she is a Mistborn.",
		Categories:       "Fantasy, Adventure",
		Rating:           "4.5",
	}

	require.NoError(t, WriteNote(dir, rec, "", false))

	content, err := os.ReadFile(filepath.Join(dir, "Mistborn - The Final Empire.md"))
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "title: Mistborn - The Final Empire")
	assert.Contains(t, text, "author: Brandon Sanderson")
	assert.Contains(t, text, "categories: [Fantasy, Adventure]")
	assert.Contains(t, text, "rating: \"4.5\"")
	assert.Contains(t, text, "A thief discovers she is a Mistborn.")
	assert.NotContains(t, text, "Raw html")
}

func TestWriteNoteWithCover(t *testing.T) {
	dir := t.TempDir()

	rec := book.Record{
		Title:            "Dune",
		Author:           "Frank Herbert",
		CleanDescription: "A desert planet and a spice empire.",
	}

	require.NoError(t, WriteNote(dir, rec, "attachments/Dune - cover.jpg", false))

	content, err := os.ReadFile(filepath.Join(dir, "Dune.md"))
	require.NoError(t, err)

	text := string(content)
	assert.Contains(t, text, "cover: attachments/Dune - cover.jpg")
	assert.Contains(t, text, "![[attachments/Dune - cover.jpg|250]]")
}

func TestWriteNoteSkipsExistingWithoutOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Dune.md")
	require.NoError(t, os.WriteFile(path, []byte("user edits"), 0644))

	rec := book.Record{Title: "Dune", CleanDescription: "generated"}

	require.NoError(t, WriteNote(dir, rec, "", false))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "user edits", string(content))

	require.NoError(t, WriteNote(dir, rec, "", true))
	content, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "generated")
}

func TestWriteNoteRatingNA(t *testing.T) {
	dir := t.TempDir()

	rec := book.Record{Title: "Obscure", Rating: "N/A", CleanDescription: "x"}
	require.NoError(t, WriteNote(dir, rec, "", false))

	content, err := os.ReadFile(filepath.Join(dir, "Obscure.md"))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "rating")
}
