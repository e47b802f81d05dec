// Package repotest provides in-memory repositories with the same observable
// semantics as the Postgres ones, for service and HTTP tests.
package repotest

import (
	"context"
	"database/sql"
	"sync"

	"github.com/dmitrijs2005/smarthealth/internal/dbx"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/biometrics"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/payments"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/plans"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/subscriptions"
)

// Manager hands out the same store regardless of the DB handle, so writes
// made inside dbx.WithTx are visible immediately. Rollback is not modelled.
type Manager struct {
	AccountStore      *Accounts
	PlanStore         *Plans
	SubscriptionStore *Subscriptions
	PaymentStore      *Payments
	BiometricStore    *Biometrics

	MigrationsErr error
}

func NewManager() *Manager {
	m := &Manager{
		AccountStore:   NewAccounts(),
		PlanStore:      NewPlans(),
		PaymentStore:   &Payments{},
		BiometricStore: &Biometrics{},
	}
	m.SubscriptionStore = &Subscriptions{plans: m.PlanStore, accounts: m.AccountStore}
	m.PaymentStore.accounts = m.AccountStore
	m.PaymentStore.plans = m.PlanStore
	return m
}

func (m *Manager) RunMigrations(context.Context, *sql.DB) error { return m.MigrationsErr }

func (m *Manager) Accounts(dbx.DBTX) accounts.Repository { return m.AccountStore }

func (m *Manager) Plans(dbx.DBTX) plans.Repository { return m.PlanStore }

func (m *Manager) Subscriptions(dbx.DBTX) subscriptions.Repository { return m.SubscriptionStore }

func (m *Manager) Payments(dbx.DBTX) payments.Repository { return m.PaymentStore }

func (m *Manager) Biometrics(dbx.DBTX) biometrics.Repository { return m.BiometricStore }

type store struct {
	mu sync.Mutex
}
