package plans

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/dbx"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/google/uuid"
)

const planColumns = `id, name, description, type, price, currency, features, trial_days,
		is_active, is_recommended, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*models.Plan, error) {
	p := &models.Plan{}
	var features []byte
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Type, &p.Price, &p.Currency, &features,
		&p.TrialDays, &p.IsActive, &p.IsRecommended, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Features = []string{}
	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return nil, fmt.Errorf("decode features: %w", err)
		}
	}
	return p, nil
}

func encodeFeatures(f []string) ([]byte, error) {
	if f == nil {
		f = []string{}
	}
	return json.Marshal(f)
}

func mapWriteError(err error) error {
	if name, ok := dbx.UniqueViolation(err); ok {
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, name)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, p *models.Plan) (*models.Plan, error) {
	features, err := encodeFeatures(p.Features)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO plans (name, description, type, price, currency, features, trial_days, is_active, is_recommended)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		p.Name, p.Description, p.Type, p.Price, p.Currency, features, p.TrialDays, p.IsActive, p.IsRecommended,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return p, nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `SELECT ` + planColumns + ` FROM plans WHERE id = $1`

	p, err := scanPlan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) List(ctx context.Context, includeInactive bool) ([]*models.Plan, error) {
	query := `SELECT ` + planColumns + ` FROM plans WHERE is_active OR $1 ORDER BY price ASC, name ASC`

	rows, err := r.db.QueryContext(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.Plan{}
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p *models.Plan) error {
	if _, err := uuid.Parse(p.ID); err != nil {
		return common.ErrorNotFound
	}
	features, err := encodeFeatures(p.Features)
	if err != nil {
		return err
	}

	query :=
		`UPDATE plans SET name = $2, description = $3, type = $4, price = $5, currency = $6,
			features = $7, trial_days = $8, is_active = $9, is_recommended = $10, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Description, p.Type, p.Price, p.Currency, features, p.TrialDays, p.IsActive, p.IsRecommended,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrorNotFound
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM plans WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) (*models.Plan, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}

	query := `UPDATE plans SET is_active = $2, updated_at = now() WHERE id = $1 RETURNING ` + planColumns

	p, err := scanPlan(r.db.QueryRowContext(ctx, query, id, active))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return p, nil
}
