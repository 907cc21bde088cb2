package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/model"
)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder()
	require.NoError(t, err)
	return b
}

func TestBuildClassificationPrompt_NoUserContext(t *testing.T) {
	b := newTestBuilder(t)

	out, err := b.BuildClassificationPrompt(nil)
	require.NoError(t, err)

	// Static catalogue is always present
	for _, dc := range model.DefaultCatalogue {
		assert.Contains(t, out, string(dc.Key))
		assert.Contains(t, out, dc.Description)
	}

	// User-specific section markers must not appear
	assert.NotContains(t, out, CustomCategoriesMarker)
	assert.NotContains(t, out, LearnedPreferencesMarker)
}

func TestBuildClassificationPrompt_WithUserContext(t *testing.T) {
	b := newTestBuilder(t)

	userCtx := &UserContext{
		CustomCategories: []model.Category{
			{Name: "Pet Supplies"},
		},
		Preferences: []model.CategoryPreference{
			{ItemPattern: "uber ride", TargetCategory: "transport", Confidence: 3.5},
		},
	}

	out, err := b.BuildClassificationPrompt(userCtx)
	require.NoError(t, err)

	assert.Contains(t, out, CustomCategoriesMarker)
	assert.Contains(t, out, "Pet Supplies")
	assert.Contains(t, out, LearnedPreferencesMarker)
	assert.Contains(t, out, "uber ride")
	assert.Contains(t, out, "confidence: 3.5")
}

func TestBuildClassificationPrompt_ConfidenceOneDecimal(t *testing.T) {
	b := newTestBuilder(t)

	userCtx := &UserContext{
		Preferences: []model.CategoryPreference{
			{ItemPattern: "a", TargetCategory: "other", Confidence: 1.0},
			{ItemPattern: "b", TargetCategory: "other", Confidence: 2.25},
		},
	}

	out, err := b.BuildClassificationPrompt(userCtx)
	require.NoError(t, err)

	assert.Contains(t, out, "confidence: 1.0")
	assert.Contains(t, out, "confidence: 2.2") // %.1f rounding
}

func TestBuildClassificationPrompt_CustomCategoriesBeforePreferences(t *testing.T) {
	b := newTestBuilder(t)

	userCtx := &UserContext{
		CustomCategories: []model.Category{{Name: "Crafts"}},
		Preferences: []model.CategoryPreference{
			{ItemPattern: "yarn", TargetCategory: "Crafts", Confidence: 2.0},
		},
	}

	out, err := b.BuildClassificationPrompt(userCtx)
	require.NoError(t, err)

	customIdx := strings.Index(out, CustomCategoriesMarker)
	learnedIdx := strings.Index(out, LearnedPreferencesMarker)
	require.NotEqual(t, -1, customIdx)
	require.NotEqual(t, -1, learnedIdx)
	assert.Less(t, customIdx, learnedIdx, "custom categories must render before learned preferences")
}

func TestBuildClassificationPrompt_PreservesPreferenceOrder(t *testing.T) {
	b := newTestBuilder(t)

	// Deliberately not sorted by confidence: the builder must keep the
	// caller's order.
	userCtx := &UserContext{
		Preferences: []model.CategoryPreference{
			{ItemPattern: "first item", TargetCategory: "other", Confidence: 1.0},
			{ItemPattern: "second item", TargetCategory: "other", Confidence: 5.0},
		},
	}

	out, err := b.BuildClassificationPrompt(userCtx)
	require.NoError(t, err)

	assert.Less(t, strings.Index(out, "first item"), strings.Index(out, "second item"))
}

func TestBuildClassificationPrompt_StorePatternRendered(t *testing.T) {
	b := newTestBuilder(t)

	userCtx := &UserContext{
		Preferences: []model.CategoryPreference{
			{ItemPattern: "latte", StorePattern: "starbucks", TargetCategory: "dining", Confidence: 2.0},
			{ItemPattern: "bread", TargetCategory: "groceries", Confidence: 1.0},
		},
	}

	out, err := b.BuildClassificationPrompt(userCtx)
	require.NoError(t, err)

	assert.Contains(t, out, `"latte" at "starbucks"`)
	assert.Contains(t, out, `"bread" ->`)
	assert.NotContains(t, out, `"bread" at`)
}

func TestBuildReceiptRequest(t *testing.T) {
	b := newTestBuilder(t)

	out, err := b.BuildReceiptRequest(nil, "STARBUCKS $4.50 2024-01-15")
	require.NoError(t, err)

	assert.Contains(t, out, "STARBUCKS $4.50 2024-01-15")
	assert.Contains(t, out, "store_name")
	assert.Contains(t, out, "purchase_date")
	// OCR text comes after the task prompt
	assert.Less(t, strings.Index(out, "DEFAULT CATEGORIES"), strings.Index(out, "STARBUCKS"))
}
