package accounts

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/dbx"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/google/uuid"
)

const publicColumns = `id, full_name, email, phone, role, membership_type, membership_expires_at,
		is_active, is_email_verified, is_phone_verified, two_factor_enabled, profile,
		last_login_at, created_at, updated_at`

const credentialColumns = publicColumns + `, password_hash, two_factor_secret`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func columns(sel Select) string {
	if sel == SelectWithPassword {
		return credentialColumns
	}
	return publicColumns
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner, sel Select) (*models.Account, error) {
	a := &models.Account{}
	var (
		profile     []byte
		expiresAt   sql.NullTime
		lastLoginAt sql.NullTime
	)
	dest := []any{
		&a.ID, &a.FullName, &a.Email, &a.Phone, &a.Role, &a.MembershipType, &expiresAt,
		&a.IsActive, &a.IsEmailVerified, &a.IsPhoneVerified, &a.TwoFactorEnabled, &profile,
		&lastLoginAt, &a.CreatedAt, &a.UpdatedAt,
	}
	if sel == SelectWithPassword {
		dest = append(dest, &a.PasswordHash, &a.TwoFactorSecret)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	a.Profile = models.DefaultProfile()
	if len(profile) > 0 {
		if err := json.Unmarshal(profile, &a.Profile); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
	}
	if expiresAt.Valid {
		t := expiresAt.Time
		a.MembershipExpiresAt = &t
	}
	if lastLoginAt.Valid {
		t := lastLoginAt.Time
		a.LastLoginAt = &t
	}
	return a, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func mapWriteError(err error) error {
	if name, ok := dbx.UniqueViolation(err); ok {
		return fmt.Errorf("%w: %s", common.ErrorAlreadyExists, name)
	}
	return fmt.Errorf("db error: %w", err)
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) (*models.Account, error) {
	profile, err := json.Marshal(a.Profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}

	query :=
		`INSERT INTO accounts (full_name, email, phone, password_hash, role, membership_type,
			membership_expires_at, is_active, profile)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, created_at, updated_at`

	err = r.db.QueryRowContext(ctx, query,
		a.FullName, a.Email, a.Phone, a.PasswordHash, a.Role, a.MembershipType,
		nullTime(a.MembershipExpiresAt), a.IsActive, profile,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return a, nil
}

func (r *PostgresRepository) findOne(ctx context.Context, sel Select, where string, args ...any) (*models.Account, error) {
	query := `SELECT ` + columns(sel) + ` FROM accounts WHERE ` + where + ` LIMIT 1`

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, args...), sel)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) FindByEmailOrPhone(ctx context.Context, identifier string, sel Select) (*models.Account, error) {
	return r.findOne(ctx, sel, `lower(email) = lower($1) OR phone = $1`, identifier)
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string, sel Select) (*models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return r.findOne(ctx, sel, `id = $1`, id)
}

func (r *PostgresRepository) FindByEmail(ctx context.Context, email string, sel Select) (*models.Account, error) {
	return r.findOne(ctx, sel, `lower(email) = lower($1)`, email)
}

func (r *PostgresRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE lower(email) = lower($1) OR phone = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, email, phone).Scan(&exists); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) Save(ctx context.Context, a *models.Account) error {
	profile, err := json.Marshal(a.Profile)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}

	query :=
		`UPDATE accounts SET full_name = $2, email = $3, phone = $4, role = $5, membership_type = $6,
			membership_expires_at = $7, is_active = $8, is_email_verified = $9, is_phone_verified = $10,
			two_factor_enabled = $11, profile = $12, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at`

	err = r.db.QueryRowContext(ctx, query,
		a.ID, a.FullName, a.Email, a.Phone, a.Role, a.MembershipType,
		nullTime(a.MembershipExpiresAt), a.IsActive, a.IsEmailVerified, a.IsPhoneVerified,
		a.TwoFactorEnabled, profile,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorNotFound
		}
		return mapWriteError(err)
	}
	return nil
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.exec(ctx, `UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
}

func (r *PostgresRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE accounts SET last_login_at = $2 WHERE id = $1`, id, at)
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + publicColumns + ` FROM accounts ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		a, err := scanAccount(rows, SelectPublic)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
