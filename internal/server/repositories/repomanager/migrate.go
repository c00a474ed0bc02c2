package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/checkpay/internal/server/migrations"
	"github.com/pressly/goose/v3"
)

// swapped out in tests
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// migrate applies every pending migration found under dir of the embedded
// migrations FS. goose keeps its dialect in package state, so callers must
// not migrate two databases concurrently.
func migrate(ctx context.Context, db *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("goose dialect %s: %w", dialect, err)
	}
	return gooseUpContext(ctx, db, dir)
}
