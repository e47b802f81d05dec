package subscriptions

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/dbx"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
)

const subscriptionColumns = `s.id, s.user_id, s.plan_id, s.start_date, s.end_date, s.status, s.auto_renewal,
		s.payment_method, s.stripe_subscription_id, s.created_at, s.updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func subscriptionDest(s *models.Subscription) []any {
	return []any{&s.ID, &s.UserID, &s.PlanID, &s.StartDate, &s.EndDate, &s.Status, &s.AutoRenewal,
		&s.PaymentMethod, &s.StripeSubscriptionID, &s.CreatedAt, &s.UpdatedAt}
}

func (r *PostgresRepository) Create(ctx context.Context, s *models.Subscription) (*models.Subscription, error) {
	query :=
		`INSERT INTO subscriptions (user_id, plan_id, start_date, end_date, status, auto_renewal, payment_method)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		s.UserID, s.PlanID, s.StartDate, s.EndDate, s.Status, s.AutoRenewal, s.PaymentMethod,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) FindActiveByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	query :=
		`SELECT ` + subscriptionColumns + `,
			p.id, p.name, p.description, p.type, p.price, p.currency, p.features, p.trial_days,
			p.is_active, p.is_recommended, p.created_at, p.updated_at
		 FROM subscriptions s
		 JOIN plans p ON p.id = s.plan_id
		 WHERE s.user_id = $1 AND s.status = 'active'
		 ORDER BY s.created_at DESC
		 LIMIT 1`

	s := &models.Subscription{}
	p := &models.Plan{}
	var features []byte
	dest := append(subscriptionDest(s),
		&p.ID, &p.Name, &p.Description, &p.Type, &p.Price, &p.Currency, &features, &p.TrialDays,
		&p.IsActive, &p.IsRecommended, &p.CreatedAt, &p.UpdatedAt)

	if err := r.db.QueryRowContext(ctx, query, userID).Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.Features = []string{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("decode features: %w", err)
		}
	}
	s.Plan = p
	return s, nil
}

func (r *PostgresRepository) CancelActiveByUser(ctx context.Context, userID string) (*models.Subscription, error) {
	query :=
		`UPDATE subscriptions s SET status = 'cancelled', auto_renewal = FALSE, updated_at = now()
		 WHERE s.user_id = $1 AND s.status = 'active'
		 RETURNING ` + subscriptionColumns

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var newest *models.Subscription
	for rows.Next() {
		s := &models.Subscription{}
		if err := rows.Scan(subscriptionDest(s)...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if newest == nil || s.CreatedAt.After(newest.CreatedAt) {
			newest = s
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if newest == nil {
		return nil, common.ErrorNotFound
	}
	return newest, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Subscription, error) {
	query :=
		`SELECT ` + subscriptionColumns + `,
			a.full_name, a.email, p.name, p.price
		 FROM subscriptions s
		 JOIN accounts a ON a.id = s.user_id
		 JOIN plans p ON p.id = s.plan_id
		 ORDER BY s.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Subscription{}
	for rows.Next() {
		var (
			s    = &models.Subscription{}
			user models.AccountSummary
			plan models.Plan
		)
		dest := append(subscriptionDest(s), &user.FullName, &user.Email, &plan.Name, &plan.Price)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		user.ID = s.UserID
		plan.ID = s.PlanID
		s.User = &user
		s.Plan = &plan
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
