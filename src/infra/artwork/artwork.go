// Package artwork downloads album covers and produces resized thumbnails for
// the overlay UI.
package artwork

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nfnt/resize"

	_ "golang.org/x/image/webp"
	_ "image/gif"
	_ "image/png"
)

const cacheTTL = 24 * time.Hour

// Service fetches artwork with an on-disk cache keyed by source URL.
type Service struct {
	tempDir string
	client  *http.Client
}

// NewService creates a new artwork service.
func NewService() *Service {
	return &Service{
		tempDir: filepath.Join(os.TempDir(), "lyricsync-artwork"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Thumbnail returns the cover at url resized to size x size, JPEG-encoded.
func (s *Service) Thumbnail(ctx context.Context, url string, size int) ([]byte, string, error) {
	raw, err := s.fetch(ctx, url)
	if err != nil {
		return nil, "", err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode artwork image: %w", err)
	}
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85}); err != nil {
		return nil, "", fmt.Errorf("failed to encode artwork image: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// fetch downloads the original image, reusing a cached copy when it is fresh.
func (s *Service) fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty artwork URL")
	}
	if err := os.MkdirAll(s.tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	hash := md5.Sum([]byte(url))
	cachePath := filepath.Join(s.tempDir, fmt.Sprintf("%x", hash))

	if info, err := os.Stat(cachePath); err == nil && time.Since(info.ModTime()) < cacheTTL {
		slog.Debug("Using cached artwork", "path", cachePath)
		if data, err := os.ReadFile(cachePath); err == nil {
			return data, nil
		}
	}

	slog.Debug("Downloading artwork", "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download artwork: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artwork download failed with status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read artwork body: %w", err)
	}
	if err := os.WriteFile(cachePath, data, 0644); err != nil {
		slog.Warn("Failed to cache artwork", "path", cachePath, "error", err)
	}
	return data, nil
}
