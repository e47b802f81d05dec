package services

import (
	"database/sql"

	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server/config"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repomanager"
)

// Set bundles every service of the API over one store.
type Set struct {
	Auth          *Authenticator
	Verifier      *Verifier
	Accounts      *AccountService
	Plans         *PlanService
	Subscriptions *SubscriptionService
	Payments      *PaymentService
	Biometrics    *BiometricService
	Notifications *NotificationService
	Avatars       *AvatarService
}

func NewSet(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *Set {
	return &Set{
		Auth:          NewAuthenticator(db, m, cfg, l),
		Verifier:      NewVerifier(db, m, cfg),
		Accounts:      NewAccountService(db, m, cfg, l),
		Plans:         NewPlanService(db, m, l),
		Subscriptions: NewSubscriptionService(db, m, l),
		Payments:      NewPaymentService(db, m, l),
		Biometrics:    NewBiometricService(db, m, l),
		Notifications: NewNotificationService(l),
		Avatars:       NewAvatarService(db, m, cfg),
	}
}
