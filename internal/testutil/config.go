package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/bookdex/bookdex/internal/config"
)

// ConfigState holds the state of the config package variables.
type ConfigState struct {
	CacheFile          string
	GoogleBooksAPIKey  string
	ClassifierAPIURL   string
	ClassifierAPIToken string
	Interactive        bool
	OverwriteFiles     bool
	UpdateCovers       bool
}

// SaveConfigState captures the current state of config package variables.
func SaveConfigState() ConfigState {
	return ConfigState{
		CacheFile:          config.CacheFile,
		GoogleBooksAPIKey:  config.GoogleBooksAPIKey,
		ClassifierAPIURL:   config.ClassifierAPIURL,
		ClassifierAPIToken: config.ClassifierAPIToken,
		Interactive:        config.Interactive,
		OverwriteFiles:     config.OverwriteFiles,
		UpdateCovers:       config.UpdateCovers,
	}
}

// RestoreConfigState restores the config package variables to a saved state.
func RestoreConfigState(state ConfigState) {
	config.CacheFile = state.CacheFile
	config.GoogleBooksAPIKey = state.GoogleBooksAPIKey
	config.ClassifierAPIURL = state.ClassifierAPIURL
	config.ClassifierAPIToken = state.ClassifierAPIToken
	config.Interactive = state.Interactive
	config.OverwriteFiles = state.OverwriteFiles
	config.UpdateCovers = state.UpdateCovers
}

// ResetConfig saves the current config state and schedules restoration
// when the test completes. It also resets viper.
func ResetConfig(t *testing.T) {
	t.Helper()

	state := SaveConfigState()

	viper.Reset()

	t.Cleanup(func() {
		RestoreConfigState(state)
		viper.Reset()
	})
}
