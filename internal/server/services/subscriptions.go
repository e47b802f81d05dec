package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/dbx"
	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
)

const msgNoActiveSubscription = "No active subscription found"

type SubscribeInput struct {
	PlanID        string `json:"planId"`
	PaymentMethod string `json:"paymentMethod"`
}

func (in SubscribeInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.PlanID, validation.Required.Error("Plan id is required")),
	)
}

type SubscriptionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewSubscriptionService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *SubscriptionService {
	return &SubscriptionService{db: db, repomanager: m, logger: l.With("module", "subscriptions"), now: time.Now}
}

// Subscribe starts a subscription to an active plan. Any subscription the
// user already has is cancelled in the same transaction.
func (s *SubscriptionService) Subscribe(ctx context.Context, userID string, in SubscribeInput) (*models.Subscription, error) {
	if err := invalid("Validation failed", in.Validate()); err != nil {
		return nil, err
	}

	var out *models.Subscription
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		plan, err := s.repomanager.Plans(tx).FindByID(ctx, in.PlanID)
		if err != nil {
			return planError(err)
		}
		if !plan.IsActive {
			return common.NewNotFoundError(msgPlanNotFound)
		}

		repo := s.repomanager.Subscriptions(tx)
		if _, err := repo.CancelActiveByUser(ctx, userID); err != nil && !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("cancel current subscription: %w", err)
		}

		start := s.now().UTC()
		sub, err := repo.Create(ctx, &models.Subscription{
			UserID:        userID,
			PlanID:        plan.ID,
			StartDate:     start,
			EndDate:       models.SubscriptionEnd(start, plan.Type, plan.TrialDays),
			Status:        models.SubscriptionActive,
			AutoRenewal:   true,
			PaymentMethod: in.PaymentMethod,
		})
		if err != nil {
			return fmt.Errorf("create subscription: %w", err)
		}
		sub.Plan = plan
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "subscribed", "user_id", userID, "plan_id", in.PlanID, "ends", out.EndDate)
	return out, nil
}

// List returns every subscription, newest first. Administrators only.
func (s *SubscriptionService) List(ctx context.Context) ([]*models.Subscription, error) {
	list, err := s.repomanager.Subscriptions(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	if list == nil {
		list = []*models.Subscription{}
	}
	return list, nil
}

// Mine returns the caller's active subscription, or nil when there is none.
func (s *SubscriptionService) Mine(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.repomanager.Subscriptions(s.db).FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find subscription: %w", err)
	}
	return sub, nil
}

// Cancel cancels the caller's active subscription.
func (s *SubscriptionService) Cancel(ctx context.Context, userID string) (*models.Subscription, error) {
	sub, err := s.repomanager.Subscriptions(s.db).CancelActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError(msgNoActiveSubscription)
		}
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}
	s.logger.Info(ctx, "subscription cancelled", "user_id", userID, "subscription_id", sub.ID)
	return sub, nil
}
