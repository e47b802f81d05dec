package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server/config"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/dmitrijs2005/smarthealth/internal/server/obs"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repotest"
	"github.com/dmitrijs2005/smarthealth/internal/server/services"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.HTTPAddr = "127.0.0.1:0"
	cfg.AccessTokenSecret = "access-secret"
	cfg.RefreshTokenSecret = "refresh-secret"
	cfg.PasswordHashCost = bcrypt.MinCost
	cfg.AuthRateRPS = 1000
	cfg.AuthRateBurst = 1000
	cfg.ShutdownTimeout = time.Second
	return cfg
}

type api struct {
	cfg     *config.Config
	mock    sqlmock.Sqlmock
	repos   *repotest.Manager
	metrics *obs.Metrics
	server  *Server
	handler http.Handler
}

func newAPIWith(t *testing.T, cfg *config.Config) *api {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := repotest.NewManager()
	metrics := obs.NewMetrics()
	svc := services.NewSet(db, repos, cfg, logging.Nop{})
	srv := NewServer(cfg, logging.Nop{}, metrics, svc, db)
	return &api{cfg: cfg, mock: mock, repos: repos, metrics: metrics, server: srv, handler: srv.Handler()}
}

func newAPI(t *testing.T) *api {
	return newAPIWith(t, newTestConfig())
}

// tx declares one committed transaction on the mock store.
func (a *api) tx() {
	a.mock.ExpectBegin()
	a.mock.ExpectCommit()
}

func (a *api) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

type result struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message"`
	Count      *int                 `json:"count"`
	Data       json.RawMessage      `json:"data"`
	Pagination *services.Pagination `json:"pagination"`
	Error      *errorBody           `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) result {
	t.Helper()
	var res result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	return res
}

func data[T any](t *testing.T, res result) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(res.Data, &v), string(res.Data))
	return v
}

// signup registers and logs in a user, returning its id and access token.
func (a *api) signup(t *testing.T, email, phone string) (string, string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"fullName": "Test User", "email": email, "phone": phone, "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": email, "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := data[services.LoginResult](t, decode(t, rec))
	return login.User.ID, login.Token
}

func (a *api) promote(t *testing.T, id string) {
	t.Helper()
	acc := a.repos.AccountStore.Get(id)
	require.NotNil(t, acc)
	acc.Role = models.RoleAdmin
	require.NoError(t, a.repos.AccountStore.Save(t.Context(), acc))
}

func (a *api) doRaw(t *testing.T, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *api) login(t *testing.T, email string) (string, string) {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"identifier": email, "password": "secret1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := data[services.LoginResult](t, decode(t, rec))
	return login.User.ID, login.Token
}
