// Package payments persists payment records.
package payments

import (
	"context"

	"github.com/dmitrijs2005/smarthealth/internal/server/models"
)

// Repository stores payments. Transaction ids are unique.
type Repository interface {
	Create(ctx context.Context, p *models.Payment) (*models.Payment, error)
	// List returns every payment, newest first, with user and plan summaries.
	List(ctx context.Context) ([]*models.Payment, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Payment, error)
}
