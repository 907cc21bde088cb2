package learning

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/model"
	"github.com/tallyhq/tally/internal/storage"
)

const testUser = "11111111-1111-1111-1111-111111111111"

func newTestEngine(t *testing.T) (*Engine, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	return NewEngine(store, nil), store
}

func TestLearnFromCorrection_CreatesAtBaseline(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	pref, outcome, err := engine.LearnFromCorrection(ctx, testUser, Correction{
		ItemName:          "UBER RIDE",
		CorrectedCategory: "transport",
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeCreated, outcome)
	assert.Equal(t, "uber ride", pref.ItemPattern)
	assert.Equal(t, "", pref.StorePattern)
	assert.Equal(t, "transport", pref.TargetCategory)
	assert.Equal(t, model.BaselineConfidence, pref.Confidence)
	assert.Equal(t, 1, pref.CorrectionCount)
}

func TestLearnFromCorrection_SecondIdenticalCorrectionReinforces(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	correction := Correction{
		ItemName:          "Netflix Subscription",
		CorrectedCategory: "subscriptions",
	}

	_, outcome, err := engine.LearnFromCorrection(ctx, testUser, correction)
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome)

	pref, outcome, err := engine.LearnFromCorrection(ctx, testUser, correction)
	require.NoError(t, err)

	assert.Equal(t, OutcomeReinforced, outcome)
	assert.Equal(t, 1.5, pref.Confidence)
	assert.Equal(t, 2, pref.CorrectionCount)
}

func TestLearnFromCorrection_DifferentTargetRetargets(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	correction := Correction{
		ItemName:          "whole foods",
		CorrectedCategory: "groceries",
	}
	for i := 0; i < 5; i++ {
		_, _, err := engine.LearnFromCorrection(ctx, testUser, correction)
		require.NoError(t, err)
	}

	pref, outcome, err := engine.LearnFromCorrection(ctx, testUser, Correction{
		ItemName:          "whole foods",
		CorrectedCategory: "dining",
		OriginalCategory:  "groceries",
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeRetargeted, outcome)
	assert.Equal(t, "dining", pref.TargetCategory)
	assert.Equal(t, model.BaselineConfidence, pref.Confidence)
	assert.Equal(t, 1, pref.CorrectionCount)
	assert.Equal(t, "groceries", pref.OriginalCategory)
}

func TestLearnFromCorrection_ConfidencePlateaus(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	correction := Correction{
		ItemName:          "gym",
		CorrectedCategory: "health",
	}

	var pref *model.CategoryPreference
	for i := 0; i < 12; i++ {
		var err error
		pref, _, err = engine.LearnFromCorrection(ctx, testUser, correction)
		require.NoError(t, err)
		require.LessOrEqual(t, pref.Confidence, model.MaxConfidence)
	}

	assert.Equal(t, model.MaxConfidence, pref.Confidence)
	assert.Equal(t, 12, pref.CorrectionCount)
}

func TestLearnFromCorrection_NormalizesKeys(t *testing.T) {
	engine, _ := newTestEngine(t)
	ctx := context.Background()

	_, outcome, err := engine.LearnFromCorrection(ctx, testUser, Correction{
		ItemName:          "UBER   RIDE",
		StoreName:         " UBER ",
		CorrectedCategory: "transport",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome)

	// Same keys in a different surface form reinforce instead of creating
	pref, outcome, err := engine.LearnFromCorrection(ctx, testUser, Correction{
		ItemName:          "uber ride",
		StoreName:         "Uber",
		CorrectedCategory: "transport",
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeReinforced, outcome)
	assert.Equal(t, "uber ride", pref.ItemPattern)
	assert.Equal(t, "uber", pref.StorePattern)
}

func TestLearnFromCorrection_StoreAbsenceIsDistinctKey(t *testing.T) {
	engine, store := newTestEngine(t)
	ctx := context.Background()

	_, outcome, err := engine.LearnFromCorrection(ctx, testUser, Correction{
		ItemName:          "coffee",
		CorrectedCategory: "dining",
	})
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, outcome)

	// The same item at a concrete store is a new preference, not a
	// reinforcement of the store-independent one.
	_, outcome, err = engine.LearnFromCorrection(ctx, testUser, Correction{
		ItemName:          "coffee",
		StoreName:         "Starbucks",
		CorrectedCategory: "dining",
	})
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, outcome)

	prefs, err := store.TopPreferences(ctx, testUser, 10)
	require.NoError(t, err)
	assert.Len(t, prefs, 2)
}

func TestLearnFromCorrection_RejectsEmptyItem(t *testing.T) {
	engine, _ := newTestEngine(t)

	_, _, err := engine.LearnFromCorrection(context.Background(), testUser, Correction{
		ItemName:          "   ",
		CorrectedCategory: "other",
	})
	assert.Error(t, err)
}
