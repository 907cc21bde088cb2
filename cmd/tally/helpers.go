package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	"github.com/tallyhq/tally/internal/config"
	"github.com/tallyhq/tally/internal/prompt"
	"github.com/tallyhq/tally/internal/storage"
)

// promptPreferenceLimit bounds how many learned preferences feed a prompt.
const promptPreferenceLimit = 50

// initStorage initializes the storage layer with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/tally/tally.db"
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// requireUser returns the validated user id from --user or config.
func requireUser() (string, error) {
	raw := viper.GetString("user")
	if raw == "" {
		return "", fmt.Errorf("no user id: pass --user or set user in the config")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid user id %q: %w", raw, err)
	}
	return id.String(), nil
}

// loadUserContext assembles the prompt context for a user: their custom
// categories plus their learned preferences ranked by the store.
func loadUserContext(ctx context.Context, store *storage.SQLiteStorage, userID string) (*prompt.UserContext, error) {
	categories, err := store.GetCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	userCtx := &prompt.UserContext{}
	for _, cat := range categories {
		if !cat.IsDefault && !cat.IsHidden {
			userCtx.CustomCategories = append(userCtx.CustomCategories, cat)
		}
	}

	userCtx.Preferences, err = store.TopPreferences(ctx, userID, promptPreferenceLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	return userCtx, nil
}
