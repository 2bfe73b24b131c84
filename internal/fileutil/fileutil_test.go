package fileutil

import (
	"bytes"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain title",
			input:    "Dune",
			expected: "Dune",
		},
		{
			name:     "colon replaced",
			input:    "Mistborn: The Final Empire",
			expected: "Mistborn - The Final Empire",
		},
		{
			name:     "slashes replaced",
			input:    "Fahrenheit 451/1984",
			expected: "Fahrenheit 451-1984",
		},
		{
			name:     "question mark dropped",
			input:    "Do Androids Dream of Electric Sheep?",
			expected: "Do Androids Dream of Electric Sheep",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SanitizeFilename(tc.input))
		})
	}
}

func TestGetMarkdownFilePath(t *testing.T) {
	got := GetMarkdownFilePath("Mistborn: The Final Empire", "notes")
	assert.Equal(t, filepath.Join("notes", "Mistborn - The Final Empire.md"), got)
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exists.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	assert.True(t, FileExists(path))
	assert.False(t, FileExists(filepath.Join(dir, "missing.txt")))
	assert.False(t, FileExists(dir), "directories are not files")
	// Stat fails with ENOTDIR here, which is not a not-exist error
	assert.False(t, FileExists(filepath.Join(path, "child.txt")))
}

func TestDownloadCoverResizesLargeImages(t *testing.T) {
	// Serve a 800px wide JPEG; the download should downscale it
	var buf bytes.Buffer
	wide := imaging.New(800, 600, image.White.C)
	require.NoError(t, imaging.Encode(&buf, wide, imaging.JPEG))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	rel, err := DownloadCover(CoverDownloadOptions{
		URL:       server.URL,
		OutputDir: dir,
		Filename:  "Dune - cover.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("attachments", "Dune - cover.jpg"), rel)

	saved, err := imaging.Open(filepath.Join(dir, rel))
	require.NoError(t, err)
	assert.Equal(t, maxCoverWidth, saved.Bounds().Dx())
}

func TestDownloadCoverSkipsExisting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("existing cover must not be re-downloaded")
	}))
	t.Cleanup(server.Close)

	dir := t.TempDir()
	attachments := filepath.Join(dir, "attachments")
	require.NoError(t, os.MkdirAll(attachments, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(attachments, "Dune - cover.jpg"), []byte("jpg"), 0644))

	rel, err := DownloadCover(CoverDownloadOptions{
		URL:       server.URL,
		OutputDir: dir,
		Filename:  "Dune - cover.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("attachments", "Dune - cover.jpg"), rel)
}

func TestDownloadCoverEmptyURL(t *testing.T) {
	rel, err := DownloadCover(CoverDownloadOptions{})
	require.NoError(t, err)
	assert.Empty(t, rel)
}
