package mytesting

import (
	"path/filepath"
	"testing"

	"github.com/habiliai/tutorwise/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// OpenTestDB opens a migrated sqlite database in a temp dir, closed on cleanup.
func OpenTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	gormDB, err := db.OpenSqlite(filepath.Join(t.TempDir(), "tutorwise.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.CloseDB(gormDB)
	})

	require.NoError(t, db.AutoMigrate(t.Context(), gormDB))
	return gormDB
}
