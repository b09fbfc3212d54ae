package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"tienda/db"
)

// kvNotification is the pg_notify payload published on every write
type kvNotification struct {
	Key    string `json:"key"`
	Origin string `json:"origin"`
}

// PostgresStore is a KeyValueStore backed by the kv_store table.
// Every write publishes a notification on db.KVChangesChannel so that other
// server instances sharing the database see the change.
type PostgresStore struct {
	conn       *sql.DB
	listenConn string
	hub        *watchHub
}

// NewPostgresStore creates a store on top of an open connection.
// listenConnString is used to open the LISTEN connection shared by all watchers.
func NewPostgresStore(conn *sql.DB, listenConnString string) *PostgresStore {
	s := &PostgresStore{
		conn:       conn,
		listenConn: listenConnString,
	}
	s.hub = newWatchHub("postgres", s.listen)
	return s
}

// Ensure PostgresStore implements KeyValueStore
var _ KeyValueStore = (*PostgresStore)(nil)

// Get returns the value stored under key
func (s *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.conn.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value under key and notifies listeners when the transaction commits
func (s *PostgresStore) Set(ctx context.Context, key string, value string) error {
	query := `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	return s.writeAndNotify(ctx, key, query, key, value)
}

// Remove deletes key and notifies listeners
func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	return s.writeAndNotify(ctx, key, `DELETE FROM kv_store WHERE key = $1`, key)
}

func (s *PostgresStore) writeAndNotify(ctx context.Context, key string, query string, args ...interface{}) error {
	payload, err := json.Marshal(kvNotification{Key: key, Origin: OriginFrom(ctx)})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, db.KVChangesChannel, string(payload)); err != nil {
		return fmt.Errorf("failed to notify change of key %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Watch reports changes of key until ctx is done.
// All watchers share one LISTEN connection, opened by the first of them.
func (s *PostgresStore) Watch(ctx context.Context, key string) (<-chan Change, error) {
	return s.hub.watch(ctx, key)
}

// listen opens the dedicated LISTEN connection shared by every Watch call
func (s *PostgresStore) listen(ctx context.Context) (func(context.Context, func(Change)) error, error) {
	conn, err := pgx.Connect(ctx, s.listenConn)
	if err != nil {
		return nil, fmt.Errorf("failed to open listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{db.KVChangesChannel}.Sanitize()); err != nil {
		conn.Close(context.Background())
		return nil, fmt.Errorf("failed to listen on %s: %w", db.KVChangesChannel, err)
	}
	log.Printf("👂 PostgresStore: listening on %s", db.KVChangesChannel)

	run := func(ctx context.Context, publish func(Change)) error {
		defer conn.Close(context.Background())

		for {
			notification, err := conn.WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("failed to wait for notification: %w", err)
			}

			var n kvNotification
			if err := json.Unmarshal([]byte(notification.Payload), &n); err != nil {
				slog.Warn("ignoring malformed kv notification", "payload", notification.Payload, "error", err)
				continue
			}
			publish(Change{Key: n.Key, Origin: n.Origin})
		}
	}
	return run, nil
}
