package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/habiliai/tutorwise/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SqliteDSN opens a sqlite file in WAL mode. Writers take the lock at BEGIN
// so concurrent read-modify-write transactions queue instead of failing.
func SqliteDSN(path string) string {
	return fmt.Sprintf(
		"file:%s?mode=rwc&_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate",
		path,
	)
}

// OpenSqlite opens (and creates the parent directory of) a sqlite database.
func OpenSqlite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrapf(err, "failed to create sqlite directory at %s", dir)
		}
	}

	db, err := gorm.Open(sqlite.Open(SqliteDSN(path)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database at %s", path)
	}

	return db, nil
}

// OpenDB opens postgres for postgres:// URLs and sqlite for anything else.
func OpenDB(databaseUrl string) (*gorm.DB, error) {
	if strings.HasPrefix(databaseUrl, "postgres://") || strings.HasPrefix(databaseUrl, "postgresql://") {
		db, err := gorm.Open(postgres.Open(databaseUrl), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return db, nil
	}

	return OpenSqlite(databaseUrl)
}

func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrapf(err, "failed to get db")
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrapf(err, "failed to close db")
	}

	return nil
}
