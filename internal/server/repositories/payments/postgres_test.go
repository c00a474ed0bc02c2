package payments

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/checkpay/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	insertQuery = regexp.MustCompile(`INSERT INTO payments \(id, owner_username, business_name, quantity_sold, check_image_base64, created_at\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)`)
	selectQuery = regexp.MustCompile(`SELECT id, owner_username, business_name, quantity_sold, check_image_base64, created_at FROM payments\s+WHERE owner_username=\$1\s+ORDER BY created_at DESC, id DESC\s+LIMIT \$2`)
	columns     = []string{"id", "owner_username", "business_name", "quantity_sold", "check_image_base64", "created_at"}
)

func pgRepo(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func samplePayment() *models.Payment {
	return &models.Payment{
		ID:               "0b0e7c52-3f7c-4c55-9d0e-1f2a3b4c5d6e",
		OwnerUsername:    "Rob",
		BusinessName:     "Acme",
		QuantitySold:     3,
		CheckImageBase64: "aGVsbG8=",
		CreatedAt:        time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPostgresCreate_Success(t *testing.T) {
	repo, mock := pgRepo(t)

	p := samplePayment()
	mock.ExpectExec(insertQuery.String()).
		WithArgs(p.ID, "Rob", "Acme", int64(3), "aGVsbG8=", p.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	id, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, p.ID, id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreate_DBExecError(t *testing.T) {
	repo, mock := pgRepo(t)

	mock.ExpectExec(insertQuery.String()).WillReturnError(errors.New("db is down"))

	_, err := repo.Create(context.Background(), samplePayment())
	require.ErrorContains(t, err, "db error: db is down")
}

func TestPostgresCreate_RowsAffectedError(t *testing.T) {
	repo, mock := pgRepo(t)

	mock.ExpectExec(insertQuery.String()).WillReturnResult(sqlmock.NewErrorResult(errors.New("rows-err")))

	_, err := repo.Create(context.Background(), samplePayment())
	require.ErrorContains(t, err, "rows affected error: rows-err")
}

func TestPostgresCreate_UnexpectedRowsAffected(t *testing.T) {
	repo, mock := pgRepo(t)

	mock.ExpectExec(insertQuery.String()).WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.Create(context.Background(), samplePayment())
	require.EqualError(t, err, "unexpected rows affected: 0")
}

func TestPostgresListByOwner_Success(t *testing.T) {
	repo, mock := pgRepo(t)

	newer := time.Date(2025, 5, 2, 0, 0, 0, 0, time.FixedZone("X", 3600))
	older := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows(columns).
		AddRow("p2", "Rob", "Beta", int64(7), "img2", newer).
		AddRow("p1", "Rob", "Acme", int64(3), "img1", older)

	mock.ExpectQuery(selectQuery.String()).WithArgs("Rob", 50).WillReturnRows(rows)

	got, err := repo.ListByOwner(context.Background(), "Rob", 50)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "p2", got[0].ID)
	assert.Equal(t, int64(7), got[0].QuantitySold)
	assert.Equal(t, time.UTC, got[0].CreatedAt.Location())
	assert.True(t, newer.Equal(got[0].CreatedAt))
	assert.Equal(t, "p1", got[1].ID)
	assert.Equal(t, "img1", got[1].CheckImageBase64)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByOwner_EmptyIsNotNil(t *testing.T) {
	repo, mock := pgRepo(t)

	mock.ExpectQuery(selectQuery.String()).WithArgs("Eric", 5).WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.ListByOwner(context.Background(), "Eric", 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPostgresListByOwner_NonPositiveLimitSkipsQuery(t *testing.T) {
	repo, mock := pgRepo(t)

	got, err := repo.ListByOwner(context.Background(), "Rob", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListByOwner_QueryError(t *testing.T) {
	repo, mock := pgRepo(t)

	mock.ExpectQuery(selectQuery.String()).WithArgs("Rob", 10).WillReturnError(errors.New("db err"))

	_, err := repo.ListByOwner(context.Background(), "Rob", 10)
	require.ErrorContains(t, err, "failed to select payments: db err")
}

func TestPostgresListByOwner_ScanRowError(t *testing.T) {
	repo, mock := pgRepo(t)

	rows := sqlmock.NewRows(columns).AddRow("p1", "Rob", "Acme", "not-a-number", "img", time.Now())
	mock.ExpectQuery(selectQuery.String()).WithArgs("Rob", 1).WillReturnRows(rows)

	_, err := repo.ListByOwner(context.Background(), "Rob", 1)
	require.Error(t, err)
}

func TestPostgresListByOwner_RowsErr(t *testing.T) {
	repo, mock := pgRepo(t)

	rows := sqlmock.NewRows(columns).
		AddRow("p1", "Rob", "Acme", int64(1), "img", time.Now()).
		AddRow("p2", "Rob", "Beta", int64(2), "img", time.Now()).
		RowError(1, errors.New("row-err"))
	mock.ExpectQuery(selectQuery.String()).WithArgs("Rob", 2).WillReturnRows(rows)

	_, err := repo.ListByOwner(context.Background(), "Rob", 2)
	require.EqualError(t, err, "row-err")
}
