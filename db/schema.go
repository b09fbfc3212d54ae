package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
)

// KVChangesChannel is the NOTIFY channel carrying key-value store changes
const KVChangesChannel = "kv_changes"

var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv_store (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// EnsureSchema creates the tables used by the cart store
func EnsureSchema(ctx context.Context, conn *sql.DB) error {
	for _, stmt := range schema {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	log.Printf("✓ Schema is up to date")
	return nil
}
