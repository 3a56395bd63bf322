package db

import (
	"context"
	"fmt"

	"github.com/habiliai/tutorwise/entity"
	"github.com/habiliai/tutorwise/errors"
	"gorm.io/gorm"
)

var (
	schema = "tutorwise"
)

func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	// sqlite has no schemas
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", schema)).Error; err != nil {
			return errors.Wrapf(err, "failed to create schema")
		}
	}

	_, tx := OpenSession(ctx, db)

	return errors.WithStack(tx.AutoMigrate(
		&entity.User{},
		&entity.Space{},
		&entity.Content{},
	))
}

func DropAll(ctx context.Context, db *gorm.DB) error {
	_, tx := OpenSession(ctx, db)
	return errors.WithStack(tx.Migrator().DropTable(
		&entity.Content{},
		&entity.Space{},
		&entity.User{},
	))
}
