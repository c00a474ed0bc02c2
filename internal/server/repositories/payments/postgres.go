package payments

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/checkpay/internal/dbx"
	"github.com/dmitrijs2005/checkpay/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx)
// opened with the pgx stdlib driver.
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Payment) (string, error) {
	query := `
		INSERT INTO payments (id, owner_username, business_name, quantity_sold, check_image_base64, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.OwnerUsername, p.BusinessName, p.QuantitySold, p.CheckImageBase64, p.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return "", fmt.Errorf("unexpected rows affected: %d", n)
	}
	return p.ID, nil
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, owner string, limit int) ([]*models.Payment, error) {
	result := make([]*models.Payment, 0)
	if limit <= 0 {
		return result, nil
	}

	query := `SELECT id, owner_username, business_name, quantity_sold, check_image_base64, created_at FROM payments
		WHERE owner_username=$1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, owner, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select payments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.Payment
		if err := rows.Scan(
			&item.ID, &item.OwnerUsername, &item.BusinessName, &item.QuantitySold,
			&item.CheckImageBase64, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		item.CreatedAt = item.CreatedAt.UTC()
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
