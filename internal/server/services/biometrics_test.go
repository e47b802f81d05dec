package services

import (
	"math"
	"testing"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBiometricAdd_ValidatesRanges(t *testing.T) {
	f := newFixture(t)
	svc := NewBiometricService(f.db, f.repos, nopLogger)

	_, err := svc.Add(t.Context(), "u1", ReadingInput{
		HeartRate:      ptr(250),
		OxygenLevel:    ptr(50.0),
		HRVRmssd:       ptr(5.0),
		RecoveryScore:  ptr(101),
		CircadianState: "sleepy",
		Source:         "guess",
	})
	appErr := requireCategory(t, err, goerrors.CategoryValidation)
	assert.Len(t, appErr.ValidationErrors, 6)
}

func TestBiometricAdd_DefaultsAndLatest(t *testing.T) {
	f := newFixture(t)
	svc := NewBiometricService(f.db, f.repos, nopLogger)
	now := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, err := svc.Latest(t.Context(), "u1")
	requireCategory(t, err, goerrors.CategoryNotFound)

	older := now.Add(-time.Hour)
	_, err = svc.Add(t.Context(), "u1", ReadingInput{HeartRate: ptr(60), Timestamp: &older})
	require.NoError(t, err)
	r, err := svc.Add(t.Context(), "u1", ReadingInput{HeartRate: ptr(72), CircadianState: "rest"})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultReadingSource, r.Source)
	assert.Equal(t, now, r.Timestamp)

	latest, err := svc.Latest(t.Context(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 72, *latest.HeartRate)
}

func TestBiometricHistory_Pagination(t *testing.T) {
	f := newFixture(t)
	svc := NewBiometricService(f.db, f.repos, nopLogger)
	base := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		_, err := svc.Add(t.Context(), "u1", ReadingInput{HeartRate: ptr(60 + i), Timestamp: &ts})
		require.NoError(t, err)
	}

	page, err := svc.History(t.Context(), "u1", HistoryQuery{Limit: 2, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, Pagination{Total: 5, Page: 2, Limit: 2, Pages: 3}, page.Pagination)
	require.Len(t, page.Items, 2)
	assert.Equal(t, 62, *page.Items[0].HeartRate)

	page, err = svc.History(t.Context(), "u1", HistoryQuery{From: base.Add(3 * time.Hour)})
	require.NoError(t, err)
	assert.Equal(t, Pagination{Total: 2, Page: 1, Limit: DefaultHistoryLimit, Pages: 1}, page.Pagination)

	_, err = svc.History(t.Context(), "u1", HistoryQuery{From: base, To: base.Add(-time.Hour)})
	requireCategory(t, err, goerrors.CategoryValidation)
}

func TestBiometricHistory_PageBounds(t *testing.T) {
	f := newFixture(t)
	svc := NewBiometricService(f.db, f.repos, nopLogger)
	ts := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.Add(t.Context(), "u1", ReadingInput{HeartRate: ptr(60), Timestamp: &ts})
	require.NoError(t, err)

	page, err := svc.History(t.Context(), "u1", HistoryQuery{Limit: MaxHistoryLimit, Page: MaxHistoryPage})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 1, page.Pagination.Total)

	for _, p := range []int{MaxHistoryPage + 1, math.MaxInt} {
		_, err = svc.History(t.Context(), "u1", HistoryQuery{Limit: MaxHistoryLimit, Page: p})
		appErr := requireCategory(t, err, goerrors.CategoryValidation)
		require.Len(t, appErr.ValidationErrors, 1)
		assert.Equal(t, "page", appErr.ValidationErrors[0].Field)
		assert.Equal(t, msgPageOutOfRange, appErr.ValidationErrors[0].Message)
	}
}

func TestBiometricMockFeeds(t *testing.T) {
	f := newFixture(t)
	svc := NewBiometricService(f.db, f.repos, nopLogger)

	for i := 0; i < 50; i++ {
		rt := svc.Realtime(t.Context(), "u1")
		assert.GreaterOrEqual(t, rt.HeartRate, 65)
		assert.LessOrEqual(t, rt.HeartRate, 85)
		assert.GreaterOrEqual(t, rt.OxygenLevel, 97.0)
		assert.LessOrEqual(t, rt.OxygenLevel, 99.5)
		assert.GreaterOrEqual(t, rt.HRVRmssd, 45)
		assert.LessOrEqual(t, rt.HRVRmssd, 75)
	}

	d := svc.Dashboard(t.Context(), "u1")
	assert.Equal(t, Goal{Current: 7540, Goal: 10000}, d.Steps)
	assert.Equal(t, 72, svc.Battery(t.Context(), "u1").Level)
}
