// Package payments stores check-payment records in PostgreSQL or SQLite.
package payments

import (
	"context"

	"github.com/dmitrijs2005/checkpay/internal/server/models"
)

// Repository persists payments and lists them per owner.
type Repository interface {
	// Create inserts a fully populated payment and returns its ID.
	Create(ctx context.Context, p *models.Payment) (string, error)
	// ListByOwner returns at most limit payments of owner, newest first.
	ListByOwner(ctx context.Context, owner string, limit int) ([]*models.Payment, error)
}
