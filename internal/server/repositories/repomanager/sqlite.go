package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/checkpay/internal/dbx"
	"github.com/dmitrijs2005/checkpay/internal/server/migrations"
	"github.com/dmitrijs2005/checkpay/internal/server/repositories/payments"
	_ "modernc.org/sqlite"
)

// SQLiteRepositoryManager vends SQLite-backed repositories. It serves local
// runs and integration tests.
type SQLiteRepositoryManager struct{}

func (m *SQLiteRepositoryManager) Payments(db dbx.DBTX) payments.Repository {
	return payments.NewSQLiteRepository(db)
}

func (m *SQLiteRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, "sqlite3", migrations.SQLiteDir)
}
