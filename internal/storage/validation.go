package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tallyhq/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext        = errors.New("context cannot be nil")
	ErrEmptyString       = errors.New("string parameter cannot be empty")
	ErrNilParameter      = errors.New("parameter cannot be nil")
	ErrInvalidPreference = errors.New("invalid preference")
	ErrInvalidCategory   = errors.New("invalid category")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validatePreference validates a preference before writing it.
func validatePreference(pref *model.CategoryPreference) error {
	if pref == nil {
		return fmt.Errorf("%w: preference", ErrNilParameter)
	}
	if strings.TrimSpace(pref.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidPreference)
	}
	if strings.TrimSpace(pref.ItemPattern) == "" {
		return fmt.Errorf("%w: missing item pattern", ErrInvalidPreference)
	}
	if strings.TrimSpace(pref.TargetCategory) == "" {
		return fmt.Errorf("%w: missing target category", ErrInvalidPreference)
	}
	return nil
}

// validateCategory validates a category before writing it.
func validateCategory(category *model.Category) error {
	if category == nil {
		return fmt.Errorf("%w: category", ErrNilParameter)
	}
	if strings.TrimSpace(category.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidCategory)
	}
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidCategory)
	}
	switch category.Type {
	case model.CategoryTypeExpense, model.CategoryTypeIncome:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidCategory, category.Type)
	}
	return nil
}
