package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema: categories and category preferences",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id TEXT NOT NULL,
					name TEXT NOT NULL,
					type TEXT NOT NULL DEFAULT 'expense',
					icon TEXT,
					color TEXT,
					is_default INTEGER NOT NULL DEFAULT 0,
					is_hidden INTEGER NOT NULL DEFAULT 0,
					default_key TEXT,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					UNIQUE(user_id, name)
				)`,
				`CREATE INDEX idx_categories_user ON categories(user_id)`,

				`CREATE TABLE IF NOT EXISTS category_preferences (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id TEXT NOT NULL,
					item_pattern TEXT NOT NULL,
					store_pattern TEXT,
					target_category TEXT NOT NULL,
					confidence REAL NOT NULL DEFAULT 1.0,
					correction_count INTEGER NOT NULL DEFAULT 1,
					original_category TEXT,
					source_ref TEXT,
					last_used DATETIME DEFAULT CURRENT_TIMESTAMP,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)`,
				`CREATE INDEX idx_preferences_user ON category_preferences(user_id)`,
				`CREATE INDEX idx_preferences_lookup ON category_preferences(user_id, item_pattern)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Unique match key for preferences",
		Up: func(tx *sql.Tx) error {
			// Store-pattern absence (NULL) is part of the match key, so the
			// index coalesces it to '' to make NULLs compare equal. With this
			// in place a create racing an identical create collapses to one
			// row (last writer wins) instead of duplicating the key.
			_, err := tx.Exec(`
				CREATE UNIQUE INDEX idx_preferences_match_key
				ON category_preferences(user_id, item_pattern, COALESCE(store_pattern, ''))
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Index for ranked preference reads",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE INDEX idx_preferences_ranked
				ON category_preferences(user_id, confidence DESC, last_used DESC)
			`)
			return err
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
