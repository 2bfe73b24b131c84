package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestInitConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	InitConfig()

	assert.Equal(t, "cache/book_data.csv", CacheFile)
	assert.Empty(t, GoogleBooksAPIKey)
}

func TestSetCacheFile(t *testing.T) {
	originalValue := CacheFile

	SetCacheFile("/tmp/books.csv")
	assert.Equal(t, "/tmp/books.csv", CacheFile)

	CacheFile = originalValue
}

func TestSetInteractive(t *testing.T) {
	originalValue := Interactive

	testCases := []struct {
		name     string
		input    bool
		expected bool
	}{
		{
			name:     "set to true",
			input:    true,
			expected: true,
		},
		{
			name:     "set to false",
			input:    false,
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			SetInteractive(tc.input)
			assert.Equal(t, tc.expected, Interactive)
		})
	}

	Interactive = originalValue
}
