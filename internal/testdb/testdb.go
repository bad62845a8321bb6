// Package testdb opens migrated in-memory databases for tests.
package testdb

import (
	"testing"

	"axiapac.com/backoffice/core"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func New(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := core.OpenSQLite("file::memory:", core.LogLevelSilent)
	require.NoError(t, err)
	require.NoError(t, core.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
