package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// CacheFile is the path to the flat CSV book cache
	CacheFile string
	// GoogleBooksAPIKey is the optional API key for the Google Books API
	GoogleBooksAPIKey string
	// ClassifierAPIURL is the endpoint of the zero-shot genre classifier
	ClassifierAPIURL string
	// ClassifierAPIToken is the bearer token for the classifier endpoint
	ClassifierAPIToken string
	// Interactive controls whether ambiguous encyclopedia lookups
	// present a candidate picker instead of auto-selecting
	Interactive bool
	// OverwriteFiles controls whether exported markdown files are rewritten
	OverwriteFiles bool
	// UpdateCovers forces re-downloading cover images even if they exist
	UpdateCovers bool
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("cache.file", "cache/book_data.csv")
	viper.SetDefault("datasette.enabled", false)
	viper.SetDefault("datasette.dbfile", "./bookdex.db")

	// Get values from viper
	CacheFile = viper.GetString("cache.file")
	GoogleBooksAPIKey = viper.GetString("GoogleBooksAPIKey")
	ClassifierAPIURL = viper.GetString("ClassifierAPIURL")
	ClassifierAPIToken = viper.GetString("ClassifierAPIToken")
}

// SetCacheFile sets the cache file path
func SetCacheFile(path string) {
	CacheFile = path
}

// SetInteractive sets the interactive selection flag
func SetInteractive(interactive bool) {
	Interactive = interactive
}

// SetOverwriteFiles sets the overwrite flag for exported files
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}

// SetUpdateCovers sets the flag for re-downloading cover images
func SetUpdateCovers(update bool) {
	UpdateCovers = update
}
