// Package dbtest opens throwaway databases for tests.
package dbtest

import (
	"context"
	"testing"

	"github.com/itsatony/rahub/internal/database"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// NewSQLite returns a migrated in-memory database. A single connection keeps
// every statement on the same in-memory instance.
func NewSQLite(t *testing.T) database.DB {
	t.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	wrapped := database.Wrap(db)
	if err := database.Migrate(context.Background(), wrapped); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return wrapped
}
