// Package accounts persists identity records and is the only place that
// reads or writes password hashes.
package accounts

import (
	"context"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/server/models"
)

// Select controls which columns a lookup returns.
type Select int

const (
	// SelectPublic omits credential columns. It is the default for reads.
	SelectPublic Select = iota
	// SelectWithPassword also loads the password hash, for credential checks.
	SelectWithPassword
)

// Repository is the credential store. Email and phone are unique; writes that
// would break that return an error wrapping common.ErrorAlreadyExists.
// Lookups that match nothing return common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, a *models.Account) (*models.Account, error)
	FindByEmailOrPhone(ctx context.Context, identifier string, sel Select) (*models.Account, error)
	FindByID(ctx context.Context, id string, sel Select) (*models.Account, error)
	FindByEmail(ctx context.Context, email string, sel Select) (*models.Account, error)
	ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error)
	// Save persists every field except the password hash.
	Save(ctx context.Context, a *models.Account) error
	UpdatePassword(ctx context.Context, id, hash string) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context) ([]*models.Account, error)
}
