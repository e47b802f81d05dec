// Package biometrics persists biometric readings.
package biometrics

import (
	"context"

	"github.com/dmitrijs2005/smarthealth/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, r *models.BiometricReading) (*models.BiometricReading, error)
	// Latest returns the user's newest reading or common.ErrorNotFound.
	Latest(ctx context.Context, userID string) (*models.BiometricReading, error)
	// History returns one page of readings, newest first, and the total
	// number of readings matching the filter.
	History(ctx context.Context, f models.ReadingFilter) ([]*models.BiometricReading, int, error)
}
