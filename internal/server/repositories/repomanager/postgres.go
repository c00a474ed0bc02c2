package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/checkpay/internal/dbx"
	"github.com/dmitrijs2005/checkpay/internal/server/migrations"
	"github.com/dmitrijs2005/checkpay/internal/server/repositories/payments"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresRepositoryManager backs production deployments through pgx.
type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Payments(db dbx.DBTX) payments.Repository {
	return payments.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrate(ctx, db, "pgx", migrations.PostgresDir)
}
