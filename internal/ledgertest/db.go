// Package ledgertest wires every ledger service over an in-memory sqlite
// store for tests.
package ledgertest

import (
	"testing"

	"github.com/smallbiznis/onclick/internal/migration"
	"github.com/smallbiznis/onclick/pkg/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenDB opens a private in-memory database migrated to the current schema.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := db.NewTest(t.Name())
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.AutoMigrate(conn))
	return conn
}
