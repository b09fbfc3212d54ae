package repository

import (
	"fmt"
	"log"
	"os"
)

// LoadFileCatalog reads the catalog from a local products.json file
func LoadFileCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	catalog, err := DecodeCatalog(f)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Catalog: loaded %d products from %s", len(catalog.products), path)
	return catalog, nil
}
