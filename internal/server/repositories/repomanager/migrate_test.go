package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/checkpay/internal/server/repositories/payments"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gooseCall struct {
	dir   string
	opts  int
	calls int
}

// stubGoose replaces the goose runner for the duration of the test and
// records what it was asked to apply.
func stubGoose(t *testing.T, result error) *gooseCall {
	t.Helper()
	rec := &gooseCall{}
	prev := gooseUpContext
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		rec.dir, rec.opts = dir, len(opts)
		rec.calls++
		return result
	}
	t.Cleanup(func() { gooseUpContext = prev })
	return rec
}

func mockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestManagers_PaymentsRepository(t *testing.T) {
	db := mockDB(t)

	assert.IsType(t, &payments.PostgresRepository{}, (&PostgresRepositoryManager{}).Payments(db))
	assert.IsType(t, &payments.SQLiteRepository{}, (&SQLiteRepositoryManager{}).Payments(db))
}

func TestManagers_RunMigrations(t *testing.T) {
	cases := map[string]struct {
		manager RepositoryManager
		dir     string
	}{
		"postgres": {&PostgresRepositoryManager{}, "postgres"},
		"sqlite":   {&SQLiteRepositoryManager{}, "sqlite"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := stubGoose(t, nil)

			require.NoError(t, tc.manager.RunMigrations(context.Background(), mockDB(t)))
			assert.Equal(t, 1, rec.calls)
			assert.Equal(t, tc.dir, rec.dir)
			assert.Zero(t, rec.opts)
		})
	}
}

func TestManagers_RunMigrationsPropagatesGooseError(t *testing.T) {
	want := errors.New("relation already exists")
	stubGoose(t, want)

	err := (&SQLiteRepositoryManager{}).RunMigrations(context.Background(), mockDB(t))
	require.ErrorIs(t, err, want)
}

func TestMigrate_UnknownDialect(t *testing.T) {
	rec := stubGoose(t, nil)

	err := migrate(context.Background(), mockDB(t), "oracle-ish", "postgres")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "goose dialect oracle-ish")
	assert.Zero(t, rec.calls)
}
