// ABOUTME: SQLite store setup using modernc.org/sqlite with automatic schema creation.
// ABOUTME: Owns the database handle, pragmas, and row counting.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store provides customer and ticket persistence backed by SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path and ensures the schema
// exists. Parent directories are created if needed.
func Open(path string) (*Store, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// WAL keeps readers and the writer from blocking each other.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("store opened", "path", path)
	return s, nil
}

func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS customers (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			phone      TEXT,
			status     TEXT NOT NULL DEFAULT 'active',
			created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,

			CHECK (status IN ('active', 'disabled'))
		);

		CREATE INDEX IF NOT EXISTS idx_customers_status ON customers(status);

		CREATE TABLE IF NOT EXISTS tickets (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			customer_id INTEGER NOT NULL REFERENCES customers(id),
			issue       TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'open',
			priority    TEXT NOT NULL DEFAULT 'medium',
			created_at  TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,

			CHECK (status IN ('open', 'in_progress', 'resolved')),
			CHECK (priority IN ('low', 'medium', 'high'))
		);

		CREATE INDEX IF NOT EXISTS idx_tickets_customer ON tickets(customer_id);
		CREATE INDEX IF NOT EXISTS idx_tickets_status ON tickets(status);
		CREATE INDEX IF NOT EXISTS idx_tickets_created ON tickets(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Counts returns how many customers and tickets the store holds.
func (s *Store) Counts(ctx context.Context) (customers, tickets int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM customers`).Scan(&customers); err != nil {
		return 0, 0, fmt.Errorf("counting customers: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&tickets); err != nil {
		return 0, 0, fmt.Errorf("counting tickets: %w", err)
	}
	return customers, tickets, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.logger.Info("closing store")
	return s.db.Close()
}
