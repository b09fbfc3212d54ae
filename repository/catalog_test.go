package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogJSON = `[
	{"id": 1, "title": "Pack de stickers", "category": "stickers", "price": "$10.00", "originalPrice": "$15.00", "image": "img/1.png", "soldOut": false},
	{"id": 2, "title": "Wallpaper", "category": "digital", "price": "Gratis", "image": "img/2.png", "downloadUrl": "files/wallpaper.zip", "soldOut": false},
	{"id": 3, "title": "Taza", "category": "merch", "price": "$8.00", "image": "img/3.png", "soldOut": true},
	{"id": 1, "title": "Duplicate", "category": "stickers", "price": "$1.00", "image": "img/x.png"}
]`

func TestDecodeCatalog(t *testing.T) {
	catalog, err := DecodeCatalog(strings.NewReader(catalogJSON))
	require.NoError(t, err)
	ctx := context.Background()

	products, err := catalog.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "Pack de stickers", products[0].Title)
	assert.Equal(t, "$15.00", products[0].OriginalPrice)
	assert.Equal(t, "files/wallpaper.zip", products[1].DownloadURL)
	assert.True(t, products[2].SoldOut)

	// List hands out a copy
	products[0].Title = "changed"
	again, err := catalog.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pack de stickers", again[0].Title)

	p, err := catalog.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Pack de stickers", p.Title)

	_, err = catalog.Get(ctx, 99)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestDecodeCatalog_Invalid(t *testing.T) {
	_, err := DecodeCatalog(strings.NewReader(`{"not": "a list"}`))
	assert.Error(t, err)
}

func TestLoadFileCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.json")
	require.NoError(t, os.WriteFile(path, []byte(catalogJSON), 0644))

	catalog, err := LoadFileCatalog(path)
	require.NoError(t, err)
	products, err := catalog.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, products, 3)

	_, err = LoadFileCatalog(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
