// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/tallyhq/tally/internal/model"
)

// PreferenceStore defines the contract for persisting learned category
// preferences. Every operation is scoped to one user; cross-user access is
// structurally impossible at this layer.
type PreferenceStore interface {
	// CreatePreference inserts a new preference at baseline confidence with
	// correction count 1 and last_used set to now.
	CreatePreference(ctx context.Context, pref *model.CategoryPreference) (*model.CategoryPreference, error)

	// FindExactPreference returns the preference whose item pattern equals
	// itemPattern and whose store pattern matches storePattern exactly; an
	// empty storePattern matches only preferences without one. Returns
	// (nil, nil) when no row matches — absence is not an error.
	FindExactPreference(ctx context.Context, userID, itemPattern, storePattern string) (*model.CategoryPreference, error)

	// TopPreferences returns up to limit preferences ordered by confidence
	// descending, then last_used descending.
	TopPreferences(ctx context.Context, userID string, limit int) ([]model.CategoryPreference, error)

	// ReinforcePreference bumps correction count by one, raises confidence by
	// one step capped at the maximum, and touches last_used.
	ReinforcePreference(ctx context.Context, pref *model.CategoryPreference) (*model.CategoryPreference, error)

	// RetargetPreference points the preference at a new category, resetting
	// confidence to baseline and correction count to 1.
	RetargetPreference(ctx context.Context, pref *model.CategoryPreference, newTarget, originalCategory string) (*model.CategoryPreference, error)

	// DeletePreference removes a preference. Deletion only happens on
	// explicit user request, never as a side effect of learning.
	DeletePreference(ctx context.Context, userID string, id int64) error
}

// CategoryStore defines the contract for user category persistence.
type CategoryStore interface {
	GetCategories(ctx context.Context, userID string) ([]model.Category, error)
	GetCategoryByName(ctx context.Context, userID, name string) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error)
	// UpdateCategory applies name/icon/color/hidden changes. For default
	// categories only the hidden flag may change.
	UpdateCategory(ctx context.Context, category *model.Category) error
	// DeleteCategory removes a custom category; defaults are not deletable.
	DeleteCategory(ctx context.Context, userID string, id int64) error
	// SeedDefaultCategories creates the user's copy of the static catalogue,
	// skipping entries that already exist.
	SeedDefaultCategories(ctx context.Context, userID string) error
}

// RetryOptions configures retry behavior for operations that may fail
// transiently. The classification pipeline itself never retries; callers
// wrap it with common.WithRetry when they want a policy.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
