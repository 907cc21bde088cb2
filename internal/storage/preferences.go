package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tallyhq/tally/internal/model"
)

const preferenceColumns = `id, user_id, item_pattern, store_pattern, target_category,
	confidence, correction_count, original_category, source_ref,
	last_used, created_at, updated_at`

// CreatePreference inserts a new preference at baseline confidence. The match
// key (user_id, item_pattern, store_pattern) carries a unique index; if two
// identical corrections race, the insert degrades to an update of the single
// existing row rather than failing or duplicating the key.
func (s *SQLiteStorage) CreatePreference(ctx context.Context, pref *model.CategoryPreference) (*model.CategoryPreference, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validatePreference(pref); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO category_preferences
			(user_id, item_pattern, store_pattern, target_category,
			 confidence, correction_count, original_category, source_ref,
			 last_used, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, item_pattern, COALESCE(store_pattern, '')) DO UPDATE SET
			target_category = excluded.target_category,
			confidence = excluded.confidence,
			correction_count = excluded.correction_count,
			original_category = excluded.original_category,
			source_ref = excluded.source_ref,
			last_used = excluded.last_used,
			updated_at = excluded.updated_at
	`, pref.UserID, pref.ItemPattern, nullable(pref.StorePattern), pref.TargetCategory,
		model.BaselineConfidence, nullable(pref.OriginalCategory), nullable(pref.SourceRef),
		now, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create preference: %w", err)
	}

	created, err := s.FindExactPreference(ctx, pref.UserID, pref.ItemPattern, pref.StorePattern)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("preference vanished after create: user %s item %q", pref.UserID, pref.ItemPattern)
	}

	slog.Debug("created preference",
		"user_id", created.UserID,
		"item_pattern", created.ItemPattern,
		"target_category", created.TargetCategory)
	return created, nil
}

// FindExactPreference returns the preference matching the normalized keys
// exactly. An empty storePattern matches only rows with no store pattern;
// "no store" is never treated as "any store". Returns (nil, nil) when no row
// matches.
func (s *SQLiteStorage) FindExactPreference(ctx context.Context, userID, itemPattern, storePattern string) (*model.CategoryPreference, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(itemPattern, "itemPattern"); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM category_preferences
		WHERE user_id = ? AND item_pattern = ? AND COALESCE(store_pattern, '') = ?
	`, preferenceColumns)

	pref, err := scanPreference(s.db.QueryRowContext(ctx, query, userID, itemPattern, storePattern))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not an error, just not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find preference: %w", err)
	}
	return pref, nil
}

// TopPreferences returns up to limit preferences for the user, ranked by
// confidence descending with last_used as the tie-break.
func (s *SQLiteStorage) TopPreferences(ctx context.Context, userID string, limit int) ([]model.CategoryPreference, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM category_preferences
		WHERE user_id = ?
		ORDER BY confidence DESC, last_used DESC
		LIMIT ?
	`, preferenceColumns)

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var prefs []model.CategoryPreference
	for rows.Next() {
		pref, scanErr := scanPreference(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", scanErr)
		}
		prefs = append(prefs, *pref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating preferences: %w", err)
	}

	slog.Debug("retrieved top preferences", "user_id", userID, "count", len(prefs))
	return prefs, nil
}

// ReinforcePreference records a repeated identical correction: correction
// count grows by one, confidence by one step until the plateau, and last_used
// is touched.
func (s *SQLiteStorage) ReinforcePreference(ctx context.Context, pref *model.CategoryPreference) (*model.CategoryPreference, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validatePreference(pref); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE category_preferences
		SET correction_count = correction_count + 1,
			confidence = MIN(?, confidence + ?),
			last_used = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?
	`, model.MaxConfidence, model.ConfidenceStep, now, now, pref.ID, pref.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to reinforce preference: %w", err)
	}
	if err := requireRowAffected(res, pref.ID); err != nil {
		return nil, err
	}

	return s.getPreferenceByID(ctx, pref.UserID, pref.ID)
}

// RetargetPreference points an existing preference at a new category. The
// user changed their mind, so prior confidence is not trustworthy: it resets
// to baseline and the correction count restarts at 1.
func (s *SQLiteStorage) RetargetPreference(ctx context.Context, pref *model.CategoryPreference, newTarget, originalCategory string) (*model.CategoryPreference, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validatePreference(pref); err != nil {
		return nil, err
	}
	if err := validateString(newTarget, "newTarget"); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		UPDATE category_preferences
		SET target_category = ?,
			confidence = ?,
			correction_count = 1,
			original_category = ?,
			last_used = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?
	`, newTarget, model.BaselineConfidence, nullable(originalCategory), now, now, pref.ID, pref.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to retarget preference: %w", err)
	}
	if err := requireRowAffected(res, pref.ID); err != nil {
		return nil, err
	}

	slog.Debug("retargeted preference",
		"user_id", pref.UserID,
		"item_pattern", pref.ItemPattern,
		"from", pref.TargetCategory,
		"to", newTarget)
	return s.getPreferenceByID(ctx, pref.UserID, pref.ID)
}

// DeletePreference removes a preference by id, scoped to the owning user.
func (s *SQLiteStorage) DeletePreference(ctx context.Context, userID string, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM category_preferences WHERE id = ? AND user_id = ?
	`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete preference: %w", err)
	}
	return requireRowAffected(res, id)
}

func (s *SQLiteStorage) getPreferenceByID(ctx context.Context, userID string, id int64) (*model.CategoryPreference, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM category_preferences
		WHERE id = ? AND user_id = ?
	`, preferenceColumns)

	pref, err := scanPreference(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get preference %d: %w", id, err)
	}
	return pref, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreference(row rowScanner) (*model.CategoryPreference, error) {
	var pref model.CategoryPreference
	var storePattern, originalCategory, sourceRef sql.NullString

	err := row.Scan(
		&pref.ID,
		&pref.UserID,
		&pref.ItemPattern,
		&storePattern,
		&pref.TargetCategory,
		&pref.Confidence,
		&pref.CorrectionCount,
		&originalCategory,
		&sourceRef,
		&pref.LastUsed,
		&pref.CreatedAt,
		&pref.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	pref.StorePattern = storePattern.String
	pref.OriginalCategory = originalCategory.String
	pref.SourceRef = sourceRef.String
	return &pref, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func requireRowAffected(res sql.Result, id int64) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("id %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
