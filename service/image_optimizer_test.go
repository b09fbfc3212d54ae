package service

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))
}

func decodeJPEG(t *testing.T, data []byte) image.Config {
	t.Helper()
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg
}

func TestThumbnailService(t *testing.T) {
	staticDir := t.TempDir()
	cacheDir := filepath.Join(t.TempDir(), "cache")
	writePNG(t, filepath.Join(staticDir, "img", "pack.png"), 800, 600)
	writePNG(t, filepath.Join(staticDir, "img", "icon.png"), 50, 40)

	svc := NewThumbnailService(staticDir, cacheDir)

	t.Run("cart size", func(t *testing.T) {
		data, err := svc.Thumbnail("img/pack.png", SizeCart)
		require.NoError(t, err)
		cfg := decodeJPEG(t, data)
		assert.Equal(t, 100, cfg.Width)
		assert.Equal(t, 75, cfg.Height)

		_, err = os.Stat(svc.cachePath("img/pack.png", SizeCart))
		assert.NoError(t, err)
	})

	t.Run("card size", func(t *testing.T) {
		data, err := svc.Thumbnail("img/pack.png", SizeCard)
		require.NoError(t, err)
		assert.Equal(t, 400, decodeJPEG(t, data).Width)
	})

	t.Run("small images are not enlarged", func(t *testing.T) {
		data, err := svc.Thumbnail("img/icon.png", SizeCard)
		require.NoError(t, err)
		assert.Equal(t, 50, decodeJPEG(t, data).Width)
	})

	t.Run("unknown size falls back to cart", func(t *testing.T) {
		data, err := svc.Thumbnail("img/pack.png", "huge")
		require.NoError(t, err)
		assert.Equal(t, 100, decodeJPEG(t, data).Width)
	})

	t.Run("served from cache", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(staticDir, "img", "pack.png")))
		data, err := svc.Thumbnail("img/pack.png", SizeCart)
		require.NoError(t, err)
		assert.Equal(t, 100, decodeJPEG(t, data).Width)
	})

	t.Run("missing image", func(t *testing.T) {
		_, err := svc.Thumbnail("img/missing.png", SizeCart)
		assert.ErrorIs(t, err, ErrImageNotFound)
	})

	t.Run("paths stay inside the static directory", func(t *testing.T) {
		outside := filepath.Join(filepath.Dir(staticDir), "secret.png")
		writePNG(t, outside, 10, 10)
		_, err := svc.Thumbnail("../secret.png", SizeCart)
		assert.ErrorIs(t, err, ErrImageNotFound)
	})
}

func TestOptimizeImage_InvalidData(t *testing.T) {
	_, err := OptimizeImage([]byte("not an image"), SizeCart)
	assert.Error(t, err)
}

func TestDetectChromePath_Configured(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chrome")
	require.NoError(t, os.WriteFile(path, []byte{}, 0755))
	assert.Equal(t, path, detectChromePath(path))
}
