package storage

import (
	"context"
	"testing"
	"time"

	"github.com/tallyhq/tally/internal/model"
)

func createPreference(t *testing.T, store *SQLiteStorage, userID, item, storePattern, target string) *model.CategoryPreference {
	t.Helper()

	pref, err := store.CreatePreference(context.Background(), &model.CategoryPreference{
		UserID:         userID,
		ItemPattern:    item,
		StorePattern:   storePattern,
		TargetCategory: target,
	})
	if err != nil {
		t.Fatalf("Failed to create preference: %v", err)
	}
	return pref
}

func TestSQLiteStorage_CreatePreference(t *testing.T) {
	store := newTestStorage(t)

	pref := createPreference(t, store, testUser, "uber ride", "", "transport")

	if pref.Confidence != model.BaselineConfidence {
		t.Errorf("New preference confidence = %v, want %v", pref.Confidence, model.BaselineConfidence)
	}
	if pref.CorrectionCount != 1 {
		t.Errorf("New preference correction count = %d, want 1", pref.CorrectionCount)
	}
	if pref.LastUsed.IsZero() {
		t.Error("New preference has zero last_used")
	}
	if pref.ID == 0 {
		t.Error("New preference has no id")
	}
}

func TestSQLiteStorage_FindExactPreference_StorePatternIsPartOfKey(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	createPreference(t, store, testUser, "uber", "", "transport")
	createPreference(t, store, testUser, "uber", "uber eats", "dining")

	// No store pattern must not match the store-qualified rule
	found, err := store.FindExactPreference(ctx, testUser, "uber", "")
	if err != nil {
		t.Fatalf("FindExactPreference failed: %v", err)
	}
	if found == nil {
		t.Fatal("Expected store-independent preference, got none")
	}
	if found.TargetCategory != "transport" {
		t.Errorf("Store-independent lookup returned %q, want transport", found.TargetCategory)
	}

	// A store pattern must not match the store-independent rule
	found, err = store.FindExactPreference(ctx, testUser, "uber", "uber eats")
	if err != nil {
		t.Fatalf("FindExactPreference failed: %v", err)
	}
	if found == nil {
		t.Fatal("Expected store-qualified preference, got none")
	}
	if found.TargetCategory != "dining" {
		t.Errorf("Store-qualified lookup returned %q, want dining", found.TargetCategory)
	}

	// A different store matches nothing, not the store-independent rule
	found, err = store.FindExactPreference(ctx, testUser, "uber", "some other store")
	if err != nil {
		t.Fatalf("FindExactPreference failed: %v", err)
	}
	if found != nil {
		t.Errorf("Unexpected match for unknown store: %+v", found)
	}
}

func TestSQLiteStorage_FindExactPreference_NotFoundIsNil(t *testing.T) {
	store := newTestStorage(t)

	found, err := store.FindExactPreference(context.Background(), testUser, "never seen", "")
	if err != nil {
		t.Fatalf("FindExactPreference failed: %v", err)
	}
	if found != nil {
		t.Errorf("Expected nil for missing preference, got %+v", found)
	}
}

func TestSQLiteStorage_FindExactPreference_ScopedByUser(t *testing.T) {
	store := newTestStorage(t)

	createPreference(t, store, testUser, "latte", "", "dining")

	found, err := store.FindExactPreference(context.Background(), testOtherUser, "latte", "")
	if err != nil {
		t.Fatalf("FindExactPreference failed: %v", err)
	}
	if found != nil {
		t.Errorf("Preference leaked across users: %+v", found)
	}
}

func TestSQLiteStorage_ReinforcePreference(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	pref := createPreference(t, store, testUser, "netflix", "", "subscriptions")

	updated, err := store.ReinforcePreference(ctx, pref)
	if err != nil {
		t.Fatalf("ReinforcePreference failed: %v", err)
	}

	if updated.Confidence != 1.5 {
		t.Errorf("Confidence after one reinforcement = %v, want 1.5", updated.Confidence)
	}
	if updated.CorrectionCount != 2 {
		t.Errorf("Correction count after one reinforcement = %d, want 2", updated.CorrectionCount)
	}
}

func TestSQLiteStorage_ReinforcePreference_ConfidenceCapsAtMax(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	pref := createPreference(t, store, testUser, "gym membership", "", "health")

	var err error
	for i := 0; i < 10; i++ {
		pref, err = store.ReinforcePreference(ctx, pref)
		if err != nil {
			t.Fatalf("ReinforcePreference %d failed: %v", i, err)
		}
		if pref.Confidence > model.MaxConfidence {
			t.Fatalf("Confidence %v exceeded max %v", pref.Confidence, model.MaxConfidence)
		}
	}

	if pref.Confidence != model.MaxConfidence {
		t.Errorf("Confidence after 10 reinforcements = %v, want %v", pref.Confidence, model.MaxConfidence)
	}
	if pref.CorrectionCount != 11 {
		t.Errorf("Correction count = %d, want 11", pref.CorrectionCount)
	}
}

func TestSQLiteStorage_RetargetPreference_ResetsConfidence(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	pref := createPreference(t, store, testUser, "whole foods", "", "groceries")
	for i := 0; i < 5; i++ {
		var err error
		pref, err = store.ReinforcePreference(ctx, pref)
		if err != nil {
			t.Fatalf("ReinforcePreference failed: %v", err)
		}
	}

	updated, err := store.RetargetPreference(ctx, pref, "dining", "groceries")
	if err != nil {
		t.Fatalf("RetargetPreference failed: %v", err)
	}

	if updated.TargetCategory != "dining" {
		t.Errorf("Target after retarget = %q, want dining", updated.TargetCategory)
	}
	if updated.Confidence != model.BaselineConfidence {
		t.Errorf("Confidence after retarget = %v, want %v", updated.Confidence, model.BaselineConfidence)
	}
	if updated.CorrectionCount != 1 {
		t.Errorf("Correction count after retarget = %d, want 1", updated.CorrectionCount)
	}
	if updated.OriginalCategory != "groceries" {
		t.Errorf("Original category = %q, want groceries", updated.OriginalCategory)
	}
}

func TestSQLiteStorage_TopPreferences_Ordering(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	low := createPreference(t, store, testUser, "item low", "", "other")
	high := createPreference(t, store, testUser, "item high", "", "other")
	mid := createPreference(t, store, testUser, "item mid", "", "other")

	var err error
	for i := 0; i < 4; i++ {
		high, err = store.ReinforcePreference(ctx, high)
		if err != nil {
			t.Fatalf("ReinforcePreference failed: %v", err)
		}
	}
	if mid, err = store.ReinforcePreference(ctx, mid); err != nil {
		t.Fatalf("ReinforcePreference failed: %v", err)
	}

	prefs, err := store.TopPreferences(ctx, testUser, 10)
	if err != nil {
		t.Fatalf("TopPreferences failed: %v", err)
	}

	if len(prefs) != 3 {
		t.Fatalf("TopPreferences returned %d rows, want 3", len(prefs))
	}
	want := []string{high.ItemPattern, mid.ItemPattern, low.ItemPattern}
	for i, pattern := range want {
		if prefs[i].ItemPattern != pattern {
			t.Errorf("TopPreferences[%d] = %q, want %q", i, prefs[i].ItemPattern, pattern)
		}
	}
}

func TestSQLiteStorage_TopPreferences_RespectsLimit(t *testing.T) {
	store := newTestStorage(t)

	createPreference(t, store, testUser, "one", "", "other")
	createPreference(t, store, testUser, "two", "", "other")
	createPreference(t, store, testUser, "three", "", "other")

	prefs, err := store.TopPreferences(context.Background(), testUser, 2)
	if err != nil {
		t.Fatalf("TopPreferences failed: %v", err)
	}
	if len(prefs) != 2 {
		t.Errorf("TopPreferences returned %d rows, want 2", len(prefs))
	}
}

func TestSQLiteStorage_DeletePreference(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	pref := createPreference(t, store, testUser, "doomed", "", "other")

	// Another user cannot delete it
	if err := store.DeletePreference(ctx, testOtherUser, pref.ID); err == nil {
		t.Error("Expected cross-user delete to fail")
	}

	if err := store.DeletePreference(ctx, testUser, pref.ID); err != nil {
		t.Fatalf("DeletePreference failed: %v", err)
	}

	found, err := store.FindExactPreference(ctx, testUser, "doomed", "")
	if err != nil {
		t.Fatalf("FindExactPreference failed: %v", err)
	}
	if found != nil {
		t.Errorf("Preference still present after delete: %+v", found)
	}
}

func TestSQLiteStorage_CreatePreference_DuplicateKeyCollapses(t *testing.T) {
	store := newTestStorage(t)

	first := createPreference(t, store, testUser, "duplicated", "", "groceries")
	second := createPreference(t, store, testUser, "duplicated", "", "dining")

	if first.ID != second.ID {
		t.Errorf("Duplicate match key produced two rows: %d and %d", first.ID, second.ID)
	}
	if second.TargetCategory != "dining" {
		t.Errorf("Last write should win, got %q", second.TargetCategory)
	}

	prefs, err := store.TopPreferences(context.Background(), testUser, 10)
	if err != nil {
		t.Fatalf("TopPreferences failed: %v", err)
	}
	if len(prefs) != 1 {
		t.Errorf("Expected a single row for the key, got %d", len(prefs))
	}
}

func TestSQLiteStorage_ReinforcePreference_TouchesLastUsed(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	pref := createPreference(t, store, testUser, "touched", "", "other")
	before := pref.LastUsed

	time.Sleep(10 * time.Millisecond)

	updated, err := store.ReinforcePreference(ctx, pref)
	if err != nil {
		t.Fatalf("ReinforcePreference failed: %v", err)
	}
	if !updated.LastUsed.After(before) {
		t.Errorf("last_used not advanced: before %v, after %v", before, updated.LastUsed)
	}
}
