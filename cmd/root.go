package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/bookdex/bookdex/internal/book"
	"github.com/bookdex/bookdex/internal/config"
	"github.com/bookdex/bookdex/internal/datastore"
	"github.com/bookdex/bookdex/internal/enrich"
	"github.com/bookdex/bookdex/internal/fileutil"
	"github.com/bookdex/bookdex/internal/genre"
	"github.com/bookdex/bookdex/internal/googlebooks"
	"github.com/bookdex/bookdex/internal/markdown"
	"github.com/bookdex/bookdex/internal/similarity"
	"github.com/bookdex/bookdex/internal/store"
	"github.com/bookdex/bookdex/internal/tui"
	"github.com/bookdex/bookdex/internal/wikipedia"
)

// Indirections for tests.
var (
	newEnricher = enrich.NewEnricher
	fetchVolume = googlebooks.FetchByTitle
	mirrorDB    = datastore.Mirror
)

// CLI represents the complete command structure for the bookdex application
type CLI struct {
	// Global flags
	Cache       string `help:"Path to the CSV book cache (overrides config)"`
	Interactive bool   `help:"Pick among ambiguous encyclopedia matches interactively"`
	Overwrite   bool   `help:"Overwrite existing markdown files when exporting"`
	Covers      bool   `help:"Re-download cover images even if they already exist"`

	// Datasette flags
	Datasette   bool   `help:"Mirror the cache to a SQLite database for Datasette"`
	DatasetteDB string `help:"Path to SQLite database file" default:"./bookdex.db"`

	Add             AddCmd             `cmd:"" help:"Fetch metadata for a title and add it to the cache"`
	Bulk            BulkCmd            `cmd:"" help:"Add every title listed in a text file"`
	Similar         SimilarCmd         `cmd:"" help:"Find books similar to a cached title"`
	Preprocess      PreprocessCmd      `cmd:"" help:"Backfill enrichment for every cached book"`
	Dedupe          DedupeCmd          `cmd:"" help:"Drop duplicate titles, keeping the first occurrence"`
	Missing         MissingCmd         `cmd:"" help:"List cached books without categories"`
	CleanCategories CleanCategoriesCmd `cmd:"" name:"clean-categories" help:"Strip junk entries from every category list"`
	Export          ExportCmd          `cmd:"" help:"Write one markdown note per cached book"`
}

// AddCmd fetches metadata for a single title and appends it to the cache.
type AddCmd struct {
	Title []string `arg:"" help:"Book title to look up"`
}

// BulkCmd seeds the cache from a newline-separated list of titles.
type BulkCmd struct {
	File  string        `short:"f" required:"" help:"Path to a text file with one title per line"`
	Pause time.Duration `help:"Delay between lookups" default:"1s"`
}

// SimilarCmd ranks cached books by content similarity to a title.
type SimilarCmd struct {
	Title []string `arg:"" help:"Title of a cached book"`
	Genre []string `help:"Only show matches sharing one of these genres"`
	TopN  int      `name:"top-n" help:"Number of matches to show" default:"5"`
}

// PreprocessCmd re-runs enrichment over the whole cache.
type PreprocessCmd struct{}

// DedupeCmd removes rows whose title repeats an earlier row.
type DedupeCmd struct{}

// MissingCmd reports rows that still have no categories.
type MissingCmd struct{}

// CleanCategoriesCmd normalizes every stored category list.
type CleanCategoriesCmd struct{}

// ExportCmd writes markdown notes (optionally with covers) for the cache.
type ExportCmd struct {
	Output         string `short:"o" help:"Directory to write markdown notes into" default:"./markdown"`
	DownloadCovers bool   `help:"Download cover thumbnails into an attachments directory"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("bookdex"),
		kong.Description("A tool to collect, enrich and explore book metadata."),
		kong.UsageOnError(),
	)

	updateGlobalConfig(&cli)

	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetDefault("cache.file", "cache/book_data.csv")

	// Datasette defaults
	viper.SetDefault("datasette.enabled", false)
	viper.SetDefault("datasette.dbfile", "./bookdex.db")

	// Enable environment variable support
	viper.AutomaticEnv()
	// Bind specific environment variables to config keys
	for key, env := range map[string]string{
		"GoogleBooksAPIKey":  "GOOGLE_BOOKS_API_KEY",
		"ClassifierAPIURL":   "CLASSIFIER_API_URL",
		"ClassifierAPIToken": "CLASSIFIER_API_TOKEN",
	} {
		if err := viper.BindEnv(key, env); err != nil {
			slog.Error("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("Config file not found, using defaults")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	if cli.Cache != "" {
		config.SetCacheFile(cli.Cache)
	}
	config.SetOverwriteFiles(cli.Overwrite)
	config.SetUpdateCovers(cli.Covers)

	config.SetInteractive(cli.Interactive)
	if cli.Interactive {
		wikipedia.CandidateSelector = tuiCandidateSelector
	}

	// Update datasette config
	if cli.Datasette {
		viper.Set("datasette.enabled", true)
	}
	viper.Set("datasette.dbfile", cli.DatasetteDB)
}

// tuiCandidateSelector bridges the interactive picker into the
// encyclopedia resolver.
func tuiCandidateSelector(candidates []wikipedia.ScoredResult) (wikipedia.SearchResult, bool) {
	result, err := tui.Select(candidates[0].Title, candidates)
	if err != nil || result.Action != tui.ActionSelected || result.Selection == nil {
		return wikipedia.SearchResult{}, false
	}
	return *result.Selection, true
}

func openStore() *store.CSVStore {
	return store.NewCSVStore(config.CacheFile)
}

// mirrorDatasette rewrites the SQLite mirror from the cache when
// Datasette output is enabled.
func mirrorDatasette(st store.Store) {
	if !viper.GetBool("datasette.enabled") {
		return
	}

	records, err := st.All()
	if err != nil {
		slog.Warn("Failed to read cache for SQLite mirror", "error", err)
		return
	}

	dbFile := viper.GetString("datasette.dbfile")
	if err := mirrorDB(dbFile, records); err != nil {
		slog.Warn("Failed to mirror cache to SQLite", "dbfile", dbFile, "error", err)
		return
	}
	slog.Info("Mirrored cache to SQLite", "dbfile", dbFile, "books", len(records))
}

// Run methods for each command

func (a *AddCmd) Run() error {
	title := strings.TrimSpace(strings.Join(a.Title, " "))
	if title == "" {
		return fmt.Errorf("book title is required")
	}

	st := openStore()
	rec, err := newEnricher().AddTitle(context.Background(), st, title)
	if err != nil {
		return fmt.Errorf("failed to add %q: %w", title, err)
	}
	if rec == nil {
		fmt.Printf("No metadata found for %q\n", title)
		return nil
	}

	fmt.Printf("%s by %s [%s] rating %s\n", rec.Title, rec.Author, rec.Categories, rec.Rating)
	mirrorDatasette(st)
	return nil
}

func (b *BulkCmd) Run() error {
	file, err := os.Open(b.File)
	if err != nil {
		return fmt.Errorf("failed to open title list: %w", err)
	}
	defer func() { _ = file.Close() }()

	st := openStore()
	enricher := newEnricher()
	ctx := context.Background()

	var added, missed int
	first := true
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		title := strings.TrimSpace(scanner.Text())
		if title == "" {
			continue
		}

		// Pause between lookups to stay polite to the upstream APIs
		if !first {
			time.Sleep(b.Pause)
		}
		first = false

		rec, err := enricher.AddTitle(ctx, st, title)
		if err != nil {
			slog.Warn("Failed to add title", "title", title, "error", err)
			missed++
			continue
		}
		if rec == nil {
			slog.Warn("No metadata found", "title", title)
			missed++
			continue
		}
		slog.Info("Added book", "title", rec.Title, "author", rec.Author)
		added++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read title list: %w", err)
	}

	slog.Info("Bulk add finished", "added", added, "missed", missed)
	mirrorDatasette(st)
	return nil
}

func (s *SimilarCmd) Run() error {
	title := strings.TrimSpace(strings.Join(s.Title, " "))
	if title == "" {
		return fmt.Errorf("book title is required")
	}

	st := openStore()
	records, err := st.All()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	matches := similarity.Similar(records, title, s.Genre, s.TopN)
	if len(matches) == 0 {
		fmt.Printf("No similar books found for %q\n", title)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tAUTHOR\tCATEGORIES\tRATING\tSIMILARITY")
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\n", m.Title, m.Author, m.Categories, m.Rating, m.Similarity)
	}
	return w.Flush()
}

func (p *PreprocessCmd) Run() error {
	st := openStore()
	if err := newEnricher().EnrichAll(context.Background(), st); err != nil {
		return fmt.Errorf("failed to preprocess cache: %w", err)
	}

	slog.Info("Preprocess finished")
	mirrorDatasette(st)
	return nil
}

func (d *DedupeCmd) Run() error {
	st := openStore()
	records, err := st.All()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	seen := make(map[string]bool, len(records))
	kept := make([]book.Record, 0, len(records))
	for _, rec := range records {
		key := strings.ToLower(strings.TrimSpace(rec.Title))
		if seen[key] {
			slog.Info("Dropping duplicate", "title", rec.Title)
			continue
		}
		seen[key] = true
		kept = append(kept, rec)
	}

	removed := len(records) - len(kept)
	if removed == 0 {
		slog.Info("No duplicates found", "books", len(records))
		return nil
	}

	if err := st.Rewrite(kept); err != nil {
		return fmt.Errorf("failed to rewrite cache: %w", err)
	}

	slog.Info("Removed duplicates", "removed", removed, "kept", len(kept))
	mirrorDatasette(st)
	return nil
}

func (m *MissingCmd) Run() error {
	st := openStore()
	records, err := st.All()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	var missing int
	for _, rec := range records {
		if strings.TrimSpace(rec.Categories) == "" {
			fmt.Println(rec.Title)
			missing++
		}
	}

	slog.Info("Checked cache for missing categories", "books", len(records), "missing", missing)
	return nil
}

func (c *CleanCategoriesCmd) Run() error {
	st := openStore()
	records, err := st.All()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	var changed int
	for i, rec := range records {
		cleaned := genre.CleanCategoryList(rec.Categories)
		if cleaned != rec.Categories {
			slog.Info("Cleaned categories", "title", rec.Title, "before", rec.Categories, "after", cleaned)
			records[i].Categories = cleaned
			changed++
		}
	}

	if changed == 0 {
		slog.Info("All category lists already clean", "books", len(records))
		return nil
	}

	if err := st.Rewrite(records); err != nil {
		return fmt.Errorf("failed to rewrite cache: %w", err)
	}

	slog.Info("Cleaned category lists", "changed", changed)
	mirrorDatasette(st)
	return nil
}

func (e *ExportCmd) Run() error {
	st := openStore()
	records, err := st.All()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	if err := os.MkdirAll(e.Output, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	var written int
	for _, rec := range records {
		coverPath := ""
		if e.DownloadCovers {
			coverPath = exportCover(rec.Title, e.Output)
		}

		if err := markdown.WriteNote(e.Output, rec, coverPath, config.OverwriteFiles); err != nil {
			slog.Warn("Failed to write note", "title", rec.Title, "error", err)
			continue
		}
		written++
	}

	slog.Info("Export finished", "notes", written, "directory", e.Output)
	return nil
}

// exportCover downloads the cover thumbnail for a title, returning the
// note-relative path or empty when no cover is available.
func exportCover(title, outputDir string) string {
	result, err := fetchVolume(context.Background(), title)
	if err != nil {
		if !errors.Is(err, googlebooks.ErrNotFound) {
			slog.Warn("Failed to look up cover", "title", title, "error", err)
		}
		return ""
	}
	if result.ThumbnailURL == "" {
		return ""
	}

	rel, err := fileutil.DownloadCover(fileutil.CoverDownloadOptions{
		URL:       result.ThumbnailURL,
		OutputDir: outputDir,
		Filename:  fileutil.BuildCoverFilename(title),
		Overwrite: config.UpdateCovers,
	})
	if err != nil {
		slog.Warn("Failed to download cover", "title", title, "error", err)
		return ""
	}
	return rel
}

func initLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("BOOKDEX_LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: level,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}
