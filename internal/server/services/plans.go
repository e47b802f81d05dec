package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/dbx"
	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

const (
	msgPlanNotFound = "Plan not found"
	msgPlanExists   = "Plan with this name already exists"
)

// PlanInput is used both for creation and for partial updates; on update
// nil fields keep their current value.
type PlanInput struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Type          *models.PlanType `json:"type"`
	Price         *float64         `json:"price"`
	Currency      *string          `json:"currency"`
	Features      []string         `json:"features"`
	TrialDays     *int             `json:"trialDays"`
	IsActive      *bool            `json:"isActive"`
	IsRecommended *bool            `json:"isRecommended"`
}

// validate checks the input; creating additionally requires the name,
// description, type and price.
func (in *PlanInput) validate(creating bool) error {
	required := func(msg string, rules ...validation.Rule) []validation.Rule {
		if creating {
			return append([]validation.Rule{validation.NotNil.Error(msg)}, rules...)
		}
		return rules
	}
	err := validation.ValidateStruct(in,
		validation.Field(&in.Name, required("Plan name is required",
			validation.Length(1, 100).Error("Plan name must be at most 100 characters"))...),
		validation.Field(&in.Description, required("Description is required")...),
		validation.Field(&in.Type, required("Plan type is required",
			validation.In(oneOf(models.PlanMonthly, models.PlanYearly)...).Error("Plan type must be monthly or yearly"))...),
		validation.Field(&in.Price, required("Price is required",
			validation.Min(0.0).Error("Price cannot be negative"))...),
		validation.Field(&in.Currency, validation.Length(3, 3).Error("Currency must be a 3 letter code")),
		validation.Field(&in.TrialDays, validation.Min(0).Error("Trial days cannot be negative")),
	)
	if err != nil {
		return err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return validation.Errors{"name": errors.New("Plan name is required")}
	}
	return nil
}

func (in PlanInput) apply(p *models.Plan) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Type != nil {
		p.Type = *in.Type
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Currency != nil {
		p.Currency = strings.ToUpper(*in.Currency)
	}
	if in.Features != nil {
		p.Features = in.Features
	}
	if in.TrialDays != nil {
		p.TrialDays = *in.TrialDays
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsRecommended != nil {
		p.IsRecommended = *in.IsRecommended
	}
}

type PlanService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewPlanService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *PlanService {
	return &PlanService{db: db, repomanager: m, logger: l.With("module", "plans")}
}

func planError(err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return common.NewNotFoundError(msgPlanNotFound)
	case errors.Is(err, common.ErrorAlreadyExists):
		return common.NewConflictError(msgPlanExists, err)
	default:
		return fmt.Errorf("plan store: %w", err)
	}
}

// List returns active plans by ascending price, or every plan when
// includeInactive is set.
func (s *PlanService) List(ctx context.Context, includeInactive bool) ([]*models.Plan, error) {
	list, err := s.repomanager.Plans(s.db).List(ctx, includeInactive)
	if err != nil {
		return nil, planError(err)
	}
	return list, nil
}

func (s *PlanService) Get(ctx context.Context, id string) (*models.Plan, error) {
	p, err := s.repomanager.Plans(s.db).FindByID(ctx, id)
	if err != nil {
		return nil, planError(err)
	}
	return p, nil
}

func (s *PlanService) Create(ctx context.Context, in PlanInput) (*models.Plan, error) {
	if err := invalid("Validation failed", in.validate(true)); err != nil {
		return nil, err
	}
	p := &models.Plan{Currency: models.DefaultCurrency, Features: []string{}, IsActive: true}
	in.apply(p)

	p, err := s.repomanager.Plans(s.db).Create(ctx, p)
	if err != nil {
		return nil, planError(err)
	}
	s.logger.Info(ctx, "plan created", "plan_id", p.ID, "name", p.Name)
	return p, nil
}

func (s *PlanService) Update(ctx context.Context, id string, in PlanInput) (*models.Plan, error) {
	if err := invalid("Validation failed", in.validate(false)); err != nil {
		return nil, err
	}
	var out *models.Plan
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Plans(tx)
		p, err := repo.FindByID(ctx, id)
		if err != nil {
			return planError(err)
		}
		in.apply(p)
		if err := repo.Update(ctx, p); err != nil {
			return planError(err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PlanService) Delete(ctx context.Context, id string) error {
	if err := s.repomanager.Plans(s.db).Delete(ctx, id); err != nil {
		return planError(err)
	}
	s.logger.Info(ctx, "plan deleted", "plan_id", id)
	return nil
}

// SetStatus activates or deactivates a plan.
func (s *PlanService) SetStatus(ctx context.Context, id string, active *bool) (*models.Plan, error) {
	if active == nil {
		return nil, common.NewValidationError("Validation failed",
			goerrors.FieldError{Field: "isActive", Message: "isActive is required"})
	}
	p, err := s.repomanager.Plans(s.db).SetActive(ctx, id, *active)
	if err != nil {
		return nil, planError(err)
	}
	return p, nil
}
