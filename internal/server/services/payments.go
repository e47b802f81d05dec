package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type PaymentInput struct {
	Amount        *float64             `json:"amount"`
	Currency      string               `json:"currency"`
	PaymentMethod string               `json:"paymentMethod"`
	TransactionID string               `json:"transactionId"`
	Status        models.PaymentStatus `json:"status"`
	PlanID        *string              `json:"planId"`
	PaidAt        *time.Time           `json:"paidAt"`
}

func positive(value interface{}) error {
	if v, ok := value.(*float64); ok && v != nil && *v <= 0 {
		return errors.New("Amount must be greater than zero")
	}
	return nil
}

func (in PaymentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Amount, validation.NotNil.Error("Amount is required"), validation.By(positive)),
		validation.Field(&in.TransactionID, validation.Required.Error("Transaction id is required")),
		validation.Field(&in.Currency, validation.Length(3, 3).Error("Currency must be a 3 letter code")),
		validation.Field(&in.Status,
			validation.In(oneOf(models.PaymentSuccess, models.PaymentFailed, models.PaymentPending)...).
				Error("Status must be success, failed or pending")),
		validation.Field(&in.PlanID, is.UUID.Error("Invalid plan id")),
	)
}

type PaymentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewPaymentService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *PaymentService {
	return &PaymentService{db: db, repomanager: m, logger: l.With("module", "payments"), now: time.Now}
}

// Create records a payment made by userID.
func (s *PaymentService) Create(ctx context.Context, userID string, in PaymentInput) (*models.Payment, error) {
	in.TransactionID = strings.TrimSpace(in.TransactionID)
	if err := invalid("Validation failed", in.Validate()); err != nil {
		return nil, err
	}

	if in.PlanID != nil {
		if _, err := s.repomanager.Plans(s.db).FindByID(ctx, *in.PlanID); err != nil {
			return nil, planError(err)
		}
	}

	p := &models.Payment{
		UserID:        userID,
		PlanID:        in.PlanID,
		Amount:        *in.Amount,
		Currency:      models.DefaultCurrency,
		PaymentMethod: models.DefaultPaymentMethod,
		TransactionID: in.TransactionID,
		Status:        models.PaymentPending,
		PaidAt:        s.now().UTC(),
	}
	if in.Currency != "" {
		p.Currency = strings.ToUpper(in.Currency)
	}
	if in.PaymentMethod != "" {
		p.PaymentMethod = in.PaymentMethod
	}
	if in.Status != "" {
		p.Status = in.Status
	}
	if in.PaidAt != nil {
		p.PaidAt = in.PaidAt.UTC()
	}

	p, err := s.repomanager.Payments(s.db).Create(ctx, p)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewConflictError("Transaction id already recorded", err)
		}
		// the plan can disappear between the lookup and the insert
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError(msgPlanNotFound)
		}
		return nil, fmt.Errorf("create payment: %w", err)
	}
	s.logger.Info(ctx, "payment recorded", "user_id", userID, "payment_id", p.ID, "status", p.Status)
	return p, nil
}

// List returns every payment, newest first. Administrators only.
func (s *PaymentService) List(ctx context.Context) ([]*models.Payment, error) {
	list, err := s.repomanager.Payments(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return list, nil
}

// ListForUser returns userID's payments. Callers may only read their own
// payments unless they are administrators.
func (s *PaymentService) ListForUser(ctx context.Context, caller *Principal, userID string) ([]*models.Payment, error) {
	if caller.UserID() != userID && !caller.IsAdmin() {
		return nil, common.NewForbiddenError("Not authorized to view these payments")
	}
	list, err := s.repomanager.Payments(s.db).ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return list, nil
}
