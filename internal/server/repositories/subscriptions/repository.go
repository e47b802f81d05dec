// Package subscriptions persists plan subscriptions.
package subscriptions

import (
	"context"

	"github.com/dmitrijs2005/smarthealth/internal/server/models"
)

// Repository stores subscriptions. Lookups that match nothing return
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, s *models.Subscription) (*models.Subscription, error)
	// FindActiveByUser returns the user's newest active subscription with its plan.
	FindActiveByUser(ctx context.Context, userID string) (*models.Subscription, error)
	// CancelActiveByUser cancels every active subscription of the user and
	// returns the newest one cancelled.
	CancelActiveByUser(ctx context.Context, userID string) (*models.Subscription, error)
	// List returns all subscriptions, newest first, with user and plan summaries.
	List(ctx context.Context) ([]*models.Subscription, error)
}
