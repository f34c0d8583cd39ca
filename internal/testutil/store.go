package testutil

import (
	"io"
	"log/slog"
	"testing"

	"mloc-go/internal/catalog"
	"mloc-go/internal/database"
	"mloc-go/internal/database/migrations"
)

// NewTestStore creates a new in-memory catalog store with schema applied.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) *catalog.Store {
	t.Helper()

	db, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	store := catalog.NewStore(db, ":memory:")

	t.Cleanup(func() {
		store.Close()
	})

	return store
}

// NewTestLogger returns a logger that discards all output.
func NewTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
