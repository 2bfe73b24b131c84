// Package enrich backfills clean descriptions and normalized genres
// for cached book records, cascading from the primary description to
// the encyclopedia resolver and the genre classifier.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookdex/bookdex/internal/book"
	"github.com/bookdex/bookdex/internal/classifier"
	"github.com/bookdex/bookdex/internal/genre"
	"github.com/bookdex/bookdex/internal/googlebooks"
	"github.com/bookdex/bookdex/internal/store"
	"github.com/bookdex/bookdex/internal/textutil"
	"github.com/bookdex/bookdex/internal/wikipedia"
)

// minDescriptionLength is the shortest clean description considered
// usable without falling back to the encyclopedia.
const minDescriptionLength = 30

// PlotResolver finds a plot text and page handle for a title.
type PlotResolver interface {
	ResolvePlot(ctx context.Context, title string) (plot string, pageTitle string)
	ExtractGenreField(ctx context.Context, pageTitle string) string
}

// GenreClassifier infers genres from a description.
type GenreClassifier interface {
	ClassifyGenres(ctx context.Context, description string, topN int) string
}

// Enricher applies the enrichment policy to records.
type Enricher struct {
	resolver   PlotResolver
	classifier GenreClassifier
}

// NewEnricher creates an Enricher backed by the Wikipedia resolver
// and the zero-shot classifier.
func NewEnricher() *Enricher {
	return &Enricher{
		resolver:   wikipediaResolver{},
		classifier: classifierFunc(classifier.ClassifyGenres),
	}
}

// NewEnricherWith creates an Enricher with injected collaborators.
func NewEnricherWith(resolver PlotResolver, genres GenreClassifier) *Enricher {
	return &Enricher{resolver: resolver, classifier: genres}
}

// Enrich returns the record with CleanDescription and Categories
// filled per the fallback policy. All other fields are untouched and
// no failure of the collaborators propagates.
func (e *Enricher) Enrich(ctx context.Context, rec book.Record) book.Record {
	clean := textutil.CleanMarkup(rec.Description)
	needsFallback := len(clean) < minDescriptionLength

	// The page handle is wanted for genre extraction even when the
	// primary description is fine, so the resolver always runs.
	plot, pageTitle := e.resolver.ResolvePlot(ctx, rec.Title)
	if needsFallback && plot != "" {
		slog.Info("Using encyclopedia plot as description", "title", rec.Title, "page", pageTitle)
		clean = textutil.CleanMarkup(plot)
	}
	rec.CleanDescription = clean

	if categories := e.resolveCategories(ctx, pageTitle, clean); categories != "" {
		rec.Categories = categories
	}

	return rec
}

// resolveCategories returns the normalized genre set for a record,
// preferring the encyclopedia's genre field over the classifier.
// Returns "" when neither source yields a vocabulary genre.
func (e *Enricher) resolveCategories(ctx context.Context, pageTitle, clean string) string {
	if raw := e.resolver.ExtractGenreField(ctx, pageTitle); raw != "" {
		if normalized := genre.Normalize(raw); normalized != "" {
			return normalized
		}
	}

	return genre.Normalize(e.classifier.ClassifyGenres(ctx, clean, classifier.DefaultTopN))
}

// EnrichAll re-processes every cached record and rewrites the store
// once. Used for backfill and migration.
func (e *Enricher) EnrichAll(ctx context.Context, st store.Store) error {
	records, err := st.All()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	for i := range records {
		records[i] = e.Enrich(ctx, records[i])
	}

	return st.Rewrite(records)
}

// EnrichLast re-processes only the most recently appended record.
// This is the hot path after an interactive insert.
func (e *Enricher) EnrichLast(ctx context.Context, st store.Store) error {
	records, err := st.All()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	last := len(records) - 1
	records[last] = e.Enrich(ctx, records[last])

	return st.Rewrite(records)
}

// fetchBook is a variable to allow overriding in tests.
var fetchBook = googlebooks.FetchByTitle

// AddTitle looks a title up in the cache, fetching and inserting it
// from the metadata provider on a miss, then enriches the new record.
// Returns nil without error when the provider has no match.
func (e *Enricher) AddTitle(ctx context.Context, st store.Store, title string) (*book.Record, error) {
	if rec, found, err := st.Lookup(title); err != nil {
		return nil, err
	} else if found {
		slog.Debug("Title served from cache", "title", title)
		return rec, nil
	}

	result, err := fetchBook(ctx, title)
	if err != nil {
		if errors.Is(err, googlebooks.ErrNotFound) {
			slog.Info("No provider match for title", "title", title)
			return nil, nil
		}
		return nil, fmt.Errorf("provider lookup failed for %q: %w", title, err)
	}

	inserted, err := st.Insert(result.Record)
	if err != nil {
		return nil, fmt.Errorf("failed to cache %q: %w", result.Record.Title, err)
	}

	if inserted {
		if err := e.EnrichLast(ctx, st); err != nil {
			return nil, err
		}
	}

	rec, _, err := st.Lookup(result.Record.Title)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// wikipediaResolver adapts the wikipedia package to PlotResolver.
type wikipediaResolver struct{}

func (wikipediaResolver) ResolvePlot(ctx context.Context, title string) (string, string) {
	return wikipedia.ResolvePlot(ctx, title)
}

func (wikipediaResolver) ExtractGenreField(ctx context.Context, pageTitle string) string {
	return wikipedia.ExtractGenreField(ctx, pageTitle)
}

// classifierFunc adapts a plain function to GenreClassifier.
type classifierFunc func(ctx context.Context, description string, topN int) string

func (f classifierFunc) ClassifyGenres(ctx context.Context, description string, topN int) string {
	return f(ctx, description, topN)
}
