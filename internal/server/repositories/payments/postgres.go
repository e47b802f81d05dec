package payments

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/dbx"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/google/uuid"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Payment) (*models.Payment, error) {
	query :=
		`INSERT INTO payments (user_id, plan_id, amount, currency, payment_method, transaction_id, status, paid_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at`

	var planID sql.NullString
	if p.PlanID != nil {
		planID = sql.NullString{String: *p.PlanID, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		p.UserID, planID, p.Amount, p.Currency, p.PaymentMethod, p.TransactionID, p.Status, p.PaidAt,
	).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if name, ok := dbx.UniqueViolation(err); ok {
			return nil, fmt.Errorf("%w: %s", common.ErrorAlreadyExists, name)
		}
		if name, ok := dbx.ForeignKeyViolation(err); ok {
			return nil, fmt.Errorf("%w: %s", common.ErrorNotFound, name)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

const listQuery = `SELECT pm.id, pm.user_id, pm.plan_id, pm.amount, pm.currency, pm.payment_method, pm.transaction_id,
		pm.status, pm.paid_at, pm.created_at, a.full_name, a.email, p.name, p.price
	 FROM payments pm
	 JOIN accounts a ON a.id = pm.user_id
	 LEFT JOIN plans p ON p.id = pm.plan_id`

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Payment, error) {
	return r.query(ctx, listQuery+` ORDER BY pm.paid_at DESC`)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Payment, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return []*models.Payment{}, nil
	}
	return r.query(ctx, listQuery+` WHERE pm.user_id = $1 ORDER BY pm.paid_at DESC`, userID)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Payment{}
	for rows.Next() {
		var (
			p         = &models.Payment{}
			user      models.AccountSummary
			planID    sql.NullString
			planName  sql.NullString
			planPrice sql.NullFloat64
		)
		err := rows.Scan(&p.ID, &p.UserID, &planID, &p.Amount, &p.Currency, &p.PaymentMethod, &p.TransactionID,
			&p.Status, &p.PaidAt, &p.CreatedAt, &user.FullName, &user.Email, &planName, &planPrice)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		user.ID = p.UserID
		p.User = &user
		if planID.Valid {
			id := planID.String
			p.PlanID = &id
			p.Plan = &models.PlanSummary{ID: id, Name: planName.String, Price: planPrice.Float64}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
