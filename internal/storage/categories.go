package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/model"
)

const categoryColumns = `id, user_id, name, type, icon, color,
	is_default, is_hidden, default_key, created_at, updated_at`

// GetCategories returns all of the user's categories, defaults first, then
// custom categories, each group alphabetical.
func (s *SQLiteStorage) GetCategories(ctx context.Context, userID string) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		WHERE user_id = ?
		ORDER BY is_default DESC, name
	`, categoryColumns)

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan category: %w", scanErr)
		}
		categories = append(categories, *cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	slog.Debug("retrieved categories", "user_id", userID, "count", len(categories))
	return categories, nil
}

// GetCategoryByName returns the user's category with the given name, or
// (nil, nil) when it does not exist.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, userID, name string) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		WHERE user_id = ? AND name = ?
	`, categoryColumns)

	cat, err := scanCategory(s.db.QueryRowContext(ctx, query, userID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Category not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query category: %w", err)
	}
	return cat, nil
}

// CreateCategory creates a custom category for the user.
func (s *SQLiteStorage) CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateCategory(category); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO categories
			(user_id, name, type, icon, color, is_default, is_hidden, default_key, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, category.UserID, category.Name, category.Type, category.Icon, category.Color,
		category.IsDefault, category.IsHidden, nullable(string(category.DefaultKey)), now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get category id: %w", err)
	}

	created := *category
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now

	slog.Debug("created category", "user_id", created.UserID, "name", created.Name)
	return &created, nil
}

// UpdateCategory persists changes to a category. Default categories only
// allow toggling the hidden flag; name, icon and color are immutable.
func (s *SQLiteStorage) UpdateCategory(ctx context.Context, category *model.Category) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCategory(category); err != nil {
		return err
	}

	existing, err := s.getCategoryByID(ctx, category.UserID, category.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("category %d: %w", category.ID, common.ErrNotFound)
	}

	if existing.IsDefault {
		if category.Name != existing.Name || category.Icon != existing.Icon || category.Color != existing.Color {
			return common.ErrDefaultCategoryImmutable
		}
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, icon = ?, color = ?, is_hidden = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, category.Name, category.Icon, category.Color, category.IsHidden, now,
		category.ID, category.UserID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

// DeleteCategory removes a custom category. Default categories cannot be
// deleted, only hidden.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, userID string, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	existing, err := s.getCategoryByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("category %d: %w", id, common.ErrNotFound)
	}
	if existing.IsDefault {
		return common.ErrDefaultCategoryUndeletable
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM categories WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireRowAffected(res, id)
}

// SeedDefaultCategories creates the user's copy of the static catalogue.
// Entries that already exist are left untouched, so seeding is idempotent.
func (s *SQLiteStorage) SeedDefaultCategories(ctx context.Context, userID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, dc := range model.DefaultCatalogue {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO categories
				(user_id, name, type, icon, color, is_default, is_hidden, default_key, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 1, 0, ?, ?, ?)
			ON CONFLICT(user_id, name) DO NOTHING
		`, userID, dc.Name, dc.Type, dc.Icon, dc.Color, string(dc.Key), now, now)
		if err != nil {
			return fmt.Errorf("failed to seed category %q: %w", dc.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed: %w", err)
	}

	slog.Debug("seeded default categories", "user_id", userID, "count", len(model.DefaultCatalogue))
	return nil
}

func (s *SQLiteStorage) getCategoryByID(ctx context.Context, userID string, id int64) (*model.Category, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM categories
		WHERE id = ? AND user_id = ?
	`, categoryColumns)

	cat, err := scanCategory(s.db.QueryRowContext(ctx, query, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category %d: %w", id, err)
	}
	return cat, nil
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var cat model.Category
	var icon, color, defaultKey sql.NullString

	err := row.Scan(
		&cat.ID,
		&cat.UserID,
		&cat.Name,
		&cat.Type,
		&icon,
		&color,
		&cat.IsDefault,
		&cat.IsHidden,
		&defaultKey,
		&cat.CreatedAt,
		&cat.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cat.Icon = icon.String
	cat.Color = color.String
	cat.DefaultKey = model.CategoryKey(defaultKey.String)
	return &cat, nil
}
