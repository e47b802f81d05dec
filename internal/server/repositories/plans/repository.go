// Package plans persists subscription plans.
package plans

import (
	"context"

	"github.com/dmitrijs2005/smarthealth/internal/server/models"
)

// Repository stores plans. Plan names are unique.
type Repository interface {
	Create(ctx context.Context, p *models.Plan) (*models.Plan, error)
	FindByID(ctx context.Context, id string) (*models.Plan, error)
	// List returns plans ordered by price; inactive plans only when includeInactive.
	List(ctx context.Context, includeInactive bool) ([]*models.Plan, error)
	Update(ctx context.Context, p *models.Plan) error
	Delete(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) (*models.Plan, error)
}
