package fileutil

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

// maxCoverWidth is the width covers are downscaled to when larger.
const maxCoverWidth = 400

// coverHTTPClient can be overridden in tests.
var coverHTTPClient = &http.Client{Timeout: 30 * time.Second}

// CoverDownloadOptions holds options for downloading cover images.
type CoverDownloadOptions struct {
	// URL is the source URL of the cover image
	URL string
	// OutputDir is the directory where the cover will be saved
	OutputDir string
	// Filename is the name of the cover file (e.g., "Title - cover.jpg")
	Filename string
	// Overwrite forces re-downloading even if the cover exists
	Overwrite bool
}

// DownloadCover downloads a cover image into the attachments
// directory, downscaling it to maxCoverWidth when needed. The
// download is skipped if the file already exists and Overwrite is
// false. Returns the path relative to the output directory.
func DownloadCover(opts CoverDownloadOptions) (string, error) {
	if opts.URL == "" {
		return "", nil
	}

	attachmentsDir := filepath.Join(opts.OutputDir, "attachments")
	if err := os.MkdirAll(attachmentsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create attachments directory: %w", err)
	}

	localPath := filepath.Join(attachmentsDir, opts.Filename)
	relativePath := filepath.Join("attachments", opts.Filename)

	if FileExists(localPath) && !opts.Overwrite {
		slog.Debug("Cover already exists, skipping download", "path", localPath)
		return relativePath, nil
	}

	resp, err := coverHTTPClient.Get(opts.URL)
	if err != nil {
		return "", fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, opts.URL)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode cover image: %w", err)
	}

	if img.Bounds().Dx() > maxCoverWidth {
		img = imaging.Resize(img, maxCoverWidth, 0, imaging.Lanczos)
	}

	if err := imaging.Save(img, localPath, imaging.JPEGQuality(85)); err != nil {
		return "", fmt.Errorf("failed to save cover file: %w", err)
	}

	slog.Info("Downloaded cover", "path", localPath)
	return relativePath, nil
}

// BuildCoverFilename creates a standard cover filename from a title.
func BuildCoverFilename(title string) string {
	return SanitizeFilename(title) + " - cover.jpg"
}
