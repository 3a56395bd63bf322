package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

type sessionCtxKey struct{}

// OpenSession reuses the session stored in ctx, or starts a new one.
func OpenSession(ctx context.Context, db *gorm.DB) (context.Context, *gorm.DB) {
	tx, ok := ctx.Value(sessionCtxKey{}).(*gorm.DB)
	if ok {
		return ctx, tx
	}

	return WithSession(ctx, db)
}

func WithSession(ctx context.Context, db *gorm.DB) (context.Context, *gorm.DB) {
	tx := db.WithContext(ctx)

	if db.Dialector.Name() == "postgres" {
		tx.Exec(fmt.Sprintf("SET search_path TO %s", schema))
	}

	return context.WithValue(ctx, sessionCtxKey{}, tx), tx
}
