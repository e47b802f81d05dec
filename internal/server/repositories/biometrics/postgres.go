package biometrics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/dbx"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
)

const readingColumns = `id, user_id, heart_rate, oxygen_level, hrv_rmssd, hrv_baseline, hrv_trend,
		recovery_score, circadian_state, body_clock_time, source, device_id, ts, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReading(row rowScanner) (*models.BiometricReading, error) {
	r := &models.BiometricReading{}
	var (
		heartRate, recovery     sql.NullInt64
		oxygen, rmssd, baseline sql.NullFloat64
	)
	err := row.Scan(&r.ID, &r.UserID, &heartRate, &oxygen, &rmssd, &baseline, &r.HRVTrend,
		&recovery, &r.CircadianState, &r.BodyClockTime, &r.Source, &r.DeviceID, &r.Timestamp, &r.CreatedAt)
	if err != nil {
		return nil, err
	}
	if heartRate.Valid {
		v := int(heartRate.Int64)
		r.HeartRate = &v
	}
	if recovery.Valid {
		v := int(recovery.Int64)
		r.RecoveryScore = &v
	}
	r.OxygenLevel = floatPtr(oxygen)
	r.HRVRmssd = floatPtr(rmssd)
	r.HRVBaseline = floatPtr(baseline)
	return r, nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func intArg(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func floatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func (r *PostgresRepository) Create(ctx context.Context, b *models.BiometricReading) (*models.BiometricReading, error) {
	query :=
		`INSERT INTO biometric_readings (user_id, heart_rate, oxygen_level, hrv_rmssd, hrv_baseline, hrv_trend,
			recovery_score, circadian_state, body_clock_time, source, device_id, ts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		b.UserID, intArg(b.HeartRate), floatArg(b.OxygenLevel), floatArg(b.HRVRmssd), floatArg(b.HRVBaseline),
		b.HRVTrend, intArg(b.RecoveryScore), b.CircadianState, b.BodyClockTime, b.Source, b.DeviceID, b.Timestamp,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) Latest(ctx context.Context, userID string) (*models.BiometricReading, error) {
	query := `SELECT ` + readingColumns + ` FROM biometric_readings WHERE user_id = $1 ORDER BY ts DESC LIMIT 1`

	b, err := scanReading(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return b, nil
}

func historyWhere(f models.ReadingFilter) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{f.UserID}
	if !f.From.IsZero() {
		args = append(args, f.From)
		conds = append(conds, fmt.Sprintf("ts >= $%d", len(args)))
	}
	if !f.To.IsZero() {
		args = append(args, f.To)
		conds = append(conds, fmt.Sprintf("ts <= $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func (r *PostgresRepository) History(ctx context.Context, f models.ReadingFilter) ([]*models.BiometricReading, int, error) {
	where, args := historyWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM biometric_readings WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	pageArgs := append(append([]any{}, args...), f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM biometric_readings WHERE %s ORDER BY ts DESC LIMIT $%d OFFSET $%d`,
		readingColumns, where, len(args)+1, len(args)+2)

	rows, err := r.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []*models.BiometricReading{}
	for rows.Next() {
		b, err := scanReading(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("db error: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	return out, total, nil
}
