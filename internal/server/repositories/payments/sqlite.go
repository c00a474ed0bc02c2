package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/dbx"
	"github.com/dmitrijs2005/checkpay/internal/server/models"
)

// SQLiteRepository implements Repository on modernc.org/sqlite. created_at
// is stored as Unix nanoseconds so ordering is numeric and exact.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, p *models.Payment) (string, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payments(id, owner_username, business_name, quantity_sold, check_image_base64, created_at) VALUES(?,?,?,?,?,?)`,
		p.ID, p.OwnerUsername, p.BusinessName, p.QuantitySold, p.CheckImageBase64, p.CreatedAt.UTC().UnixNano())
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	return p.ID, nil
}

func (r *SQLiteRepository) ListByOwner(ctx context.Context, owner string, limit int) ([]*models.Payment, error) {
	result := make([]*models.Payment, 0)
	if limit <= 0 {
		return result, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, owner_username, business_name, quantity_sold, check_image_base64, created_at FROM payments
		WHERE owner_username = ? ORDER BY created_at DESC, id DESC LIMIT ?`, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item    models.Payment
			created int64
		)
		if err := rows.Scan(&item.ID, &item.OwnerUsername, &item.BusinessName, &item.QuantitySold,
			&item.CheckImageBase64, &created); err != nil {
			return nil, err
		}
		item.CreatedAt = time.Unix(0, created).UTC()
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
