package service

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Thumbnail sizes
const (
	SizeCart = "cart" // Cart line image, 100px wide
	SizeCard = "card" // Product card image, 400px wide
)

const thumbQuality = 75

var thumbWidths = map[string]int{
	SizeCart: 100,
	SizeCard: 400,
}

// ErrImageNotFound is returned when the source image does not exist under the static directory
var ErrImageNotFound = errors.New("image not found")

// ThumbnailService serves resized JPEG copies of catalog images, cached on disk
type ThumbnailService struct {
	staticDir string
	cacheDir  string
}

// NewThumbnailService creates a new ThumbnailService
func NewThumbnailService(staticDir string, cacheDir string) *ThumbnailService {
	return &ThumbnailService{
		staticDir: staticDir,
		cacheDir:  cacheDir,
	}
}

// resolve maps a catalog image reference to a file under the static directory.
// References escaping the directory are rejected.
func (s *ThumbnailService) resolve(src string) (string, error) {
	cleaned := filepath.Clean("/" + strings.TrimSpace(src))
	path := filepath.Join(s.staticDir, cleaned)
	rel, err := filepath.Rel(s.staticDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s: %w", src, ErrImageNotFound)
	}
	return path, nil
}

// cachePath returns the cache file path for a given image reference and size
func (s *ThumbnailService) cachePath(src string, size string) string {
	sum := sha1.Sum([]byte(src))
	filename := fmt.Sprintf("%s_%s.jpg", hex.EncodeToString(sum[:]), size)
	return filepath.Join(s.cacheDir, filename)
}

// Thumbnail returns the resized image for src, from cache when available
func (s *ThumbnailService) Thumbnail(src string, size string) ([]byte, error) {
	if _, ok := thumbWidths[size]; !ok {
		log.Printf("⚠️  Unknown size '%s', defaulting to %s", size, SizeCart)
		size = SizeCart
	}

	cachePath := s.cachePath(src, size)
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	path, err := s.resolve(src)
	if err != nil {
		return nil, err
	}
	imageData, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", src, ErrImageNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	optimized, err := OptimizeImage(imageData, size)
	if err != nil {
		return nil, err
	}

	if err := saveToCache(cachePath, optimized); err != nil {
		// Serving still works without the cache
		log.Printf("⚠️  Thumbnail: %v", err)
	}
	return optimized, nil
}

// saveToCache saves an image to the cache
func saveToCache(cachePath string, imageData []byte) error {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(cachePath, imageData, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	log.Printf("✓ Image cached: %s", cachePath)
	return nil
}

// OptimizeImage converts an image to JPEG no wider than the size's width,
// keeping the aspect ratio. Smaller images are not enlarged.
func OptimizeImage(imageData []byte, size string) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	maxWidth, ok := thumbWidths[size]
	if !ok {
		maxWidth = thumbWidths[SizeCart]
	}

	var resized image.Image = img
	if img.Bounds().Dx() > maxWidth {
		resized = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: thumbQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode to JPEG: %w", err)
	}

	log.Printf("📸 Image optimized: format=%s, size=%s, output_size=%d bytes", format, size, buf.Len())
	return buf.Bytes(), nil
}
