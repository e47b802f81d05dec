package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/smarthealth/internal/dbx"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/biometrics"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/payments"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/plans"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/subscriptions"
)

// RepositoryManager vends repositories bound to a DB handle or an open
// transaction, and owns schema migrations.
type RepositoryManager interface {
	RunMigrations(ctx context.Context, db *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Plans(db dbx.DBTX) plans.Repository
	Subscriptions(db dbx.DBTX) subscriptions.Repository
	Payments(db dbx.DBTX) payments.Repository
	Biometrics(db dbx.DBTX) biometrics.Repository
}
