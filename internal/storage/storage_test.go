package storage

import (
	"context"
	"testing"
)

const (
	testUser      = "11111111-1111-1111-1111-111111111111"
	testOtherUser = "22222222-2222-2222-2222-222222222222"
)

// newTestStorage creates a migrated in-memory database for one test.
func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store
}
