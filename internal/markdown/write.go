package markdown

import (
	"fmt"
	"strings"

	"github.com/bookdex/bookdex/internal/book"
	"github.com/bookdex/bookdex/internal/fileutil"
)

const coverEmbedWidth = 250

// WriteNote writes one markdown note for a book into the given directory.
// coverPath is the note-relative path of a downloaded cover image; when
// empty no cover is embedded. Existing notes are overwritten only when
// overwrite is true.
func WriteNote(dir string, rec book.Record, coverPath string, overwrite bool) error {
	filePath := fileutil.GetMarkdownFilePath(rec.Title, dir)

	fm := NewFrontmatter()
	fm.Set("title", fileutil.SanitizeFilename(rec.Title))
	fm.Set("type", "book")

	if rec.Author != "" {
		fm.Set("author", rec.Author)
	}
	if cats := book.SplitList(rec.Categories); len(cats) > 0 {
		fm.Set("categories", cats)
	}
	if rec.Rating != "" && rec.Rating != "N/A" {
		fm.Set("rating", rec.Rating)
	}
	if coverPath != "" {
		fm.Set("cover", coverPath)
	}

	var body strings.Builder
	if coverPath != "" {
		body.WriteString(fmt.Sprintf("![[%s|%d]]\n\n", coverPath, coverEmbedWidth))
	}
	if rec.CleanDescription != "" {
		body.WriteString(rec.CleanDescription)
	} else if rec.Description != "" {
		body.WriteString(rec.Description)
	}

	note := &Note{
		Frontmatter: fm,
		Body:        strings.TrimSpace(body.String()),
	}

	content, err := note.Build()
	if err != nil {
		return fmt.Errorf("failed to build markdown for %q: %w", rec.Title, err)
	}
	content = append(content, '\n')

	if _, err := fileutil.WriteFileWithOverwrite(filePath, content, 0644, overwrite); err != nil {
		return fmt.Errorf("failed to write note for %q: %w", rec.Title, err)
	}

	return nil
}
