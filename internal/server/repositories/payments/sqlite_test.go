package payments_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/server/models"
	"github.com/dmitrijs2005/checkpay/internal/server/repositories/payments"
	"github.com/dmitrijs2005/checkpay/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) (payments.Repository, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:payments_%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, m, err := repomanager.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, m.RunMigrations(ctx, db))
	return m.Payments(db), db
}

func payment(id, owner string, at time.Time) *models.Payment {
	return &models.Payment{
		ID:               id,
		OwnerUsername:    owner,
		BusinessName:     "Biz " + id,
		QuantitySold:     1,
		CheckImageBase64: "img-" + id,
		CreatedAt:        at,
	}
}

func TestSQLite_CreateAndListRoundTrip(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	at := time.Date(2025, 6, 1, 9, 30, 0, 123456000, time.UTC)
	in := payment("p1", "Rob", at)
	in.QuantitySold = 42

	id, err := repo.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "p1", id)

	got, err := repo.ListByOwner(ctx, "Rob", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, *in, *got[0])
}

func TestSQLite_OrderingAndLimit(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		_, err := repo.Create(ctx, payment(fmt.Sprintf("p%02d", i), "Rob", base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	got, err := repo.ListByOwner(ctx, "Rob", 4)
	require.NoError(t, err)
	require.Len(t, got, 4)

	want := []string{"p09", "p08", "p07", "p06"}
	for i, p := range got {
		assert.Equal(t, want[i], p.ID)
		if i > 0 {
			assert.True(t, got[i-1].CreatedAt.After(p.CreatedAt))
		}
	}
}

func TestSQLite_SameTimestampTieBreaksByID(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	at := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"a", "c", "b"} {
		_, err := repo.Create(ctx, payment(id, "Rob", at))
		require.NoError(t, err)
	}

	got, err := repo.ListByOwner(ctx, "Rob", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "b", "a"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestSQLite_OwnersAreIsolated(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	owners := []string{"Rob", "Geena", "Eric"}

	var wg sync.WaitGroup
	for i, owner := range owners {
		wg.Add(1)
		go func(i int, owner string) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, err := repo.Create(ctx, payment(fmt.Sprintf("%s-%d", owner, j), owner, base.Add(time.Duration(i*10+j)*time.Second)))
				assert.NoError(t, err)
			}
		}(i, owner)
	}
	wg.Wait()

	for _, owner := range owners {
		got, err := repo.ListByOwner(ctx, owner, 100)
		require.NoError(t, err)
		require.Len(t, got, 5)
		for _, p := range got {
			assert.Equal(t, owner, p.OwnerUsername)
		}
	}
}

func TestSQLite_DuplicateIDFails(t *testing.T) {
	repo, _ := newSQLiteRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, payment("dup", "Rob", time.Now()))
	require.NoError(t, err)

	_, err = repo.Create(ctx, payment("dup", "Rob", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestSQLite_EmptyOwner(t *testing.T) {
	repo, _ := newSQLiteRepo(t)

	got, err := repo.ListByOwner(context.Background(), "Nobody", 50)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
