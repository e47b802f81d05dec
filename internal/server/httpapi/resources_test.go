package httpapi

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/dmitrijs2005/smarthealth/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (a *api) admin(t *testing.T) string {
	t.Helper()
	id, _ := a.signup(t, "admin@x.com", "9999999999")
	a.promote(t, id)
	_, token := a.login(t, "admin@x.com")
	return token
}

func (a *api) createPlan(t *testing.T, token, name string, price float64) models.Plan {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/plans", token, map[string]any{
		"name": name, "description": name + " plan", "type": "monthly", "price": price,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return data[models.Plan](t, decode(t, rec))
}

func TestPlans(t *testing.T) {
	a := newAPI(t)
	adminToken := a.admin(t)
	_, userToken := a.signup(t, "u@x.com", "1111111111")

	rec := a.do(t, http.MethodPost, "/api/v1/plans", userToken, map[string]any{"name": "Nope"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodPost, "/api/v1/plans", "", map[string]any{"name": "Nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	pro := a.createPlan(t, adminToken, "Pro", 20)
	basic := a.createPlan(t, adminToken, "Basic", 5)
	assert.Equal(t, "USD", pro.Currency)
	assert.True(t, pro.IsActive)

	rec = a.do(t, http.MethodPost, "/api/v1/plans", adminToken, map[string]any{
		"name": "Pro", "description": "dup", "type": "monthly", "price": 1,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPatch, "/api/v1/plans/"+pro.ID+"/status", adminToken, map[string]any{"isActive": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/v1/plans", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode(t, rec)
	assert.Equal(t, 1, *res.Count)
	assert.Equal(t, basic.ID, data[[]models.Plan](t, res)[0].ID)

	rec = a.do(t, http.MethodGet, "/api/v1/plans?isAdmin=true", "", nil)
	plans := data[[]models.Plan](t, decode(t, rec))
	require.Len(t, plans, 2)
	assert.Equal(t, "Basic", plans[0].Name)

	a.tx()
	rec = a.do(t, http.MethodPut, "/api/v1/plans/"+basic.ID, adminToken, map[string]any{"price": 7.5})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 7.5, data[models.Plan](t, decode(t, rec)).Price)

	rec = a.do(t, http.MethodGet, "/api/v1/plans/"+basic.ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodDelete, "/api/v1/plans/"+basic.ID, adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = a.do(t, http.MethodGet, "/api/v1/plans/"+basic.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Plan not found", decode(t, rec).Error.Message)

	rec = a.do(t, http.MethodGet, "/api/v1/plans/xyz", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	require.NoError(t, a.mock.ExpectationsWereMet())
}

func TestSubscriptions(t *testing.T) {
	a := newAPI(t)
	adminToken := a.admin(t)
	_, token := a.signup(t, "s@x.com", "1212121212")
	plan := a.createPlan(t, adminToken, "Monthly", 10)

	rec := a.do(t, http.MethodGet, "/api/v1/subscriptions/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":null}`, rec.Body.String())

	a.tx()
	rec = a.do(t, http.MethodPost, "/api/v1/subscriptions", token, map[string]string{"planId": plan.ID, "paymentMethod": "card"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sub := data[models.Subscription](t, decode(t, rec))
	assert.Equal(t, models.SubscriptionActive, sub.Status)
	assert.True(t, sub.EndDate.After(sub.StartDate))

	rec = a.do(t, http.MethodGet, "/api/v1/subscriptions/me", token, nil)
	mine := data[models.Subscription](t, decode(t, rec))
	assert.Equal(t, sub.ID, mine.ID)
	require.NotNil(t, mine.Plan)
	assert.Equal(t, "Monthly", mine.Plan.Name)

	rec = a.do(t, http.MethodGet, "/api/v1/subscriptions", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodGet, "/api/v1/subscriptions", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *decode(t, rec).Count)

	rec = a.do(t, http.MethodPatch, "/api/v1/subscriptions/cancel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SubscriptionCancelled, data[models.Subscription](t, decode(t, rec)).Status)

	rec = a.do(t, http.MethodPatch, "/api/v1/subscriptions/cancel", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No active subscription found", decode(t, rec).Error.Message)

	a.mock.ExpectBegin()
	a.mock.ExpectRollback()
	rec = a.do(t, http.MethodPost, "/api/v1/subscriptions", token, map[string]string{"planId": "6f1c2d3e-0000-4000-8000-000000000000"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	require.NoError(t, a.mock.ExpectationsWereMet())
}

func TestPayments(t *testing.T) {
	a := newAPI(t)
	adminToken := a.admin(t)
	ownerID, ownerToken := a.signup(t, "p@x.com", "1313131313")
	_, otherToken := a.signup(t, "q@x.com", "1414141414")

	rec := a.do(t, http.MethodPost, "/api/v1/payments", ownerToken, map[string]any{"amount": 9.99, "transactionId": "tx-1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := data[models.Payment](t, decode(t, rec))
	assert.Equal(t, "USD", p.Currency)
	assert.Equal(t, models.PaymentPending, p.Status)

	rec = a.do(t, http.MethodPost, "/api/v1/payments", ownerToken, map[string]any{"amount": 1, "transactionId": "tx-1"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = a.do(t, http.MethodPost, "/api/v1/payments", ownerToken, map[string]any{"amount": -1, "transactionId": "tx-2"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = a.do(t, http.MethodPost, "/api/v1/payments", ownerToken,
		map[string]any{"amount": 1, "transactionId": "tx-3", "planId": "6f1c2d3e-0000-4000-8000-000000000000"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Plan not found", decode(t, rec).Error.Message)

	rec = a.do(t, http.MethodGet, "/api/v1/payments/user/"+ownerID, ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *decode(t, rec).Count)

	rec = a.do(t, http.MethodGet, "/api/v1/payments/user/"+ownerID, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodGet, "/api/v1/payments/user/"+ownerID, adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/api/v1/payments", ownerToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = a.do(t, http.MethodGet, "/api/v1/payments", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, *decode(t, rec).Count)
}

func TestBiometrics(t *testing.T) {
	a := newAPI(t)
	_, token := a.signup(t, "b@x.com", "1515151515")

	rec := a.do(t, http.MethodGet, "/api/v1/biometrics/latest", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodPost, "/api/v1/biometrics", token, map[string]any{"heartRate": 250})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec = a.do(t, http.MethodPost, "/api/v1/biometrics", token, map[string]any{
			"heartRate": 60 + i, "timestamp": base.Add(time.Duration(i) * time.Hour),
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	rec = a.do(t, http.MethodGet, "/api/v1/biometrics/latest", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	latest := data[models.BiometricReading](t, decode(t, rec))
	require.NotNil(t, latest.HeartRate)
	assert.Equal(t, 64, *latest.HeartRate)

	rec = a.do(t, http.MethodGet, "/api/v1/biometrics/history?limit=2&page=2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode(t, rec)
	require.NotNil(t, res.Pagination)
	assert.Equal(t, services.Pagination{Total: 5, Page: 2, Limit: 2, Pages: 3}, *res.Pagination)
	items := data[[]models.BiometricReading](t, res)
	require.Len(t, items, 2)
	assert.Equal(t, 62, *items[0].HeartRate)

	rec = a.do(t, http.MethodGet, "/api/v1/biometrics/history?startDate=2025-03-01T10:00:00Z", token, nil)
	assert.Equal(t, 3, decode(t, rec).Pagination.Total)

	rec = a.do(t, http.MethodGet, "/api/v1/biometrics/history?limit=abc&endDate=never", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Len(t, decode(t, rec).Error.Details, 2)

	rec = a.do(t, http.MethodGet, "/api/v1/biometrics/history?limit=1000&page=9223372036854775807", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := decode(t, rec).Error.Details
	require.Len(t, details, 1)
	assert.Equal(t, "page", details[0].Field)

	for _, path := range []string{"dashboard", "realtime", "battery"} {
		rec = a.do(t, http.MethodGet, "/api/v1/biometrics/"+path, token, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
	rec = a.do(t, http.MethodGet, "/api/v1/biometrics/realtime", token, nil)
	rt := data[services.Realtime](t, decode(t, rec))
	assert.GreaterOrEqual(t, rt.HeartRate, 65)
	assert.LessOrEqual(t, rt.HeartRate, 85)
}

func TestNotifications(t *testing.T) {
	a := newAPI(t)
	_, token := a.signup(t, "n@x.com", "1616161616")

	rec := a.do(t, http.MethodGet, "/api/v1/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode(t, rec)
	assert.Equal(t, 3, *res.Count)

	rec = a.do(t, http.MethodPatch, "/api/v1/notifications/read/2", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Notification 2 marked as read", decode(t, rec).Message)

	rec = a.do(t, http.MethodGet, "/api/v1/notifications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestParseHistoryQuery(t *testing.T) {
	q, err := parseHistoryQuery(map[string][]string{
		"startDate": {"2025-01-01"},
		"endDate":   {"2025-01-31T23:59:59Z"},
		"limit":     {"50"},
		"page":      {"3"},
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), q.From)
	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, 3, q.Page)

	q, err = parseHistoryQuery(nil)
	require.NoError(t, err)
	assert.Equal(t, services.HistoryQuery{}, q)

	_, err = parseHistoryQuery(map[string][]string{"page": {"0"}})
	require.Error(t, err)
}

func TestAvatarURLs(t *testing.T) {
	cfg := newTestConfig()
	cfg.S3AccessKey = "minioadmin"
	cfg.S3SecretKey = "minioadmin"
	cfg.S3BaseEndpoint = "http://127.0.0.1:9000"
	a := newAPIWith(t, cfg)
	id, token := a.signup(t, "pic@x.com", "0123456789")

	rec := a.do(t, http.MethodGet, "/api/v1/auth/avatar-url", token, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "No avatar uploaded", decode(t, rec).Error.Message)

	rec = a.do(t, http.MethodPost, "/api/v1/auth/avatar-upload-url", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	upload := data[services.AvatarUpload](t, decode(t, rec))
	assert.True(t, strings.HasPrefix(upload.Key, "avatars/"+id+"/"))
	assert.True(t, strings.HasPrefix(upload.URL, "http://127.0.0.1:9000/avatars/"+upload.Key), upload.URL)
	assert.Contains(t, upload.URL, "X-Amz-Signature=")

	a.tx()
	rec = a.do(t, http.MethodPut, "/api/v1/auth/update-profile", token, map[string]string{"avatar": upload.Key})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/api/v1/auth/avatar-url", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	link := data[services.AvatarLink](t, decode(t, rec))
	assert.Contains(t, link.URL, "/avatars/"+upload.Key)
	require.NoError(t, a.mock.ExpectationsWereMet())
}
