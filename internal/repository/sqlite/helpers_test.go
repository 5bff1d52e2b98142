package sqlite_test

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/cmlabs-hris/attendance-reconciler/internal/pkg/database"
)

// openTestDB returns a migrated in-memory database private to the test.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	name := "test_" + strings.ReplaceAll(t.Name(), "/", "_")
	conn, err := database.OpenSQLiteMemory(context.Background(), name)
	if err != nil {
		t.Fatalf("openTestDB: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return conn
}
