package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

const (
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 1000
	// MaxHistoryPage keeps (page-1)*limit well inside a Postgres OFFSET.
	MaxHistoryPage = 1_000_000

	msgPageOutOfRange = "Page is out of range"
)

type ReadingInput struct {
	HeartRate      *int       `json:"heartRate"`
	OxygenLevel    *float64   `json:"oxygenLevel"`
	HRVRmssd       *float64   `json:"hrvRmssd"`
	HRVBaseline    *float64   `json:"hrvBaseline"`
	HRVTrend       string     `json:"hrvTrend"`
	RecoveryScore  *int       `json:"recoveryScore"`
	CircadianState string     `json:"circadianState"`
	BodyClockTime  string     `json:"bodyClockTime"`
	Source         string     `json:"source"`
	DeviceID       string     `json:"deviceId"`
	Timestamp      *time.Time `json:"timestamp"`
}

func (in ReadingInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.HeartRate,
			validation.Min(30).Error("Heart rate must be at least 30"),
			validation.Max(220).Error("Heart rate cannot exceed 220")),
		validation.Field(&in.OxygenLevel,
			validation.Min(70.0).Error("Oxygen level must be at least 70"),
			validation.Max(100.0).Error("Oxygen level cannot exceed 100")),
		validation.Field(&in.HRVRmssd,
			validation.Min(10.0).Error("HRV must be at least 10"),
			validation.Max(200.0).Error("HRV cannot exceed 200")),
		validation.Field(&in.RecoveryScore,
			validation.Min(0).Error("Recovery score cannot be negative"),
			validation.Max(100).Error("Recovery score cannot exceed 100")),
		validation.Field(&in.CircadianState, validation.In(oneOf(models.CircadianStates...)...).Error("Invalid circadian state")),
		validation.Field(&in.Source, validation.In(oneOf(models.ReadingSources...)...).Error("Invalid source")),
	)
}

// HistoryQuery selects one page of readings. Zero values pick the defaults:
// no time bounds, page 1, DefaultHistoryLimit items.
type HistoryQuery struct {
	From  time.Time
	To    time.Time
	Limit int
	Page  int
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

type HistoryPage struct {
	Items      []*models.BiometricReading
	Pagination Pagination
}

// Goal is a current value against a daily target.
type Goal struct {
	Current float64 `json:"current"`
	Goal    float64 `json:"goal"`
}

type Dashboard struct {
	Steps    Goal `json:"steps"`
	Calories Goal `json:"calories"`
	Sleep    Goal `json:"sleep"`
	Water    Goal `json:"water"`
	Activity Goal `json:"activity"`
}

type Realtime struct {
	HeartRate      int       `json:"heartRate"`
	OxygenLevel    float64   `json:"oxygenLevel"`
	HRVRmssd       int       `json:"hrvRmssd"`
	RecoveryScore  int       `json:"recoveryScore"`
	CircadianState string    `json:"circadianState"`
	Timestamp      time.Time `json:"timestamp"`
}

type Battery struct {
	Level      int       `json:"level"`
	IsCharging bool      `json:"isCharging"`
	Timestamp  time.Time `json:"timestamp"`
}

type BiometricService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
	intN        func(n int) int
}

func NewBiometricService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *BiometricService {
	return &BiometricService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "biometrics"),
		now:         time.Now,
		intN:        rand.IntN,
	}
}

// Add stores a validated reading for userID.
func (s *BiometricService) Add(ctx context.Context, userID string, in ReadingInput) (*models.BiometricReading, error) {
	if err := invalid("Validation failed", in.Validate()); err != nil {
		return nil, err
	}
	r := &models.BiometricReading{
		UserID:         userID,
		HeartRate:      in.HeartRate,
		OxygenLevel:    in.OxygenLevel,
		HRVRmssd:       in.HRVRmssd,
		HRVBaseline:    in.HRVBaseline,
		HRVTrend:       in.HRVTrend,
		RecoveryScore:  in.RecoveryScore,
		CircadianState: in.CircadianState,
		BodyClockTime:  in.BodyClockTime,
		Source:         in.Source,
		DeviceID:       in.DeviceID,
		Timestamp:      s.now().UTC(),
	}
	if r.Source == "" {
		r.Source = models.DefaultReadingSource
	}
	if in.Timestamp != nil {
		r.Timestamp = in.Timestamp.UTC()
	}

	r, err := s.repomanager.Biometrics(s.db).Create(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("create reading: %w", err)
	}
	return r, nil
}

func (s *BiometricService) Latest(ctx context.Context, userID string) (*models.BiometricReading, error) {
	r, err := s.repomanager.Biometrics(s.db).Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError("No biometric data found")
		}
		return nil, fmt.Errorf("latest reading: %w", err)
	}
	return r, nil
}

// History returns one page of userID's readings, newest first.
func (s *BiometricService) History(ctx context.Context, userID string, q HistoryQuery) (*HistoryPage, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultHistoryLimit
	}
	if q.Limit > MaxHistoryLimit {
		q.Limit = MaxHistoryLimit
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Page > MaxHistoryPage {
		return nil, common.NewValidationError("Validation failed",
			goerrors.FieldError{Field: "page", Message: msgPageOutOfRange})
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return nil, common.NewValidationError("endDate must not be before startDate")
	}

	items, total, err := s.repomanager.Biometrics(s.db).History(ctx, models.ReadingFilter{
		UserID: userID,
		From:   q.From,
		To:     q.To,
		Limit:  q.Limit,
		Offset: (q.Page - 1) * q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	return &HistoryPage{
		Items: items,
		Pagination: Pagination{
			Total: total,
			Page:  q.Page,
			Limit: q.Limit,
			Pages: int(math.Ceil(float64(total) / float64(q.Limit))),
		},
	}, nil
}

// Dashboard returns the daily goal summary. The figures are fixed until a
// device integration supplies real ones.
func (s *BiometricService) Dashboard(ctx context.Context, userID string) *Dashboard {
	return &Dashboard{
		Steps:    Goal{Current: 7540, Goal: 10000},
		Calories: Goal{Current: 450, Goal: 600},
		Sleep:    Goal{Current: 7.5, Goal: 8},
		Water:    Goal{Current: 1.5, Goal: 2.5},
		Activity: Goal{Current: 45, Goal: 60},
	}
}

// Realtime returns a simulated live sample within normal resting ranges.
func (s *BiometricService) Realtime(ctx context.Context, userID string) *Realtime {
	return &Realtime{
		HeartRate:      65 + s.intN(21),
		OxygenLevel:    float64(970+s.intN(26)) / 10,
		HRVRmssd:       45 + s.intN(31),
		RecoveryScore:  82,
		CircadianState: "Optimal",
		Timestamp:      s.now().UTC(),
	}
}

func (s *BiometricService) Battery(ctx context.Context, userID string) *Battery {
	return &Battery{Level: 72, IsCharging: true, Timestamp: s.now().UTC()}
}
