package repository

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// LoadDriveCatalog downloads products.json from Google Drive.
// credentialsPath should be the path to the Service Account JSON file.
func LoadDriveCatalog(ctx context.Context, credentialsPath string, fileID string) (*Catalog, error) {
	// option.WithCredentialsFile handles Service Account authentication
	client, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	resp, err := client.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download catalog %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	catalog, err := DecodeCatalog(resp.Body)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Catalog: loaded %d products from Drive file %s", len(catalog.products), fileID)
	return catalog, nil
}
