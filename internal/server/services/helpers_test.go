package services

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server/config"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repotest"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var nopLogger logging.Logger = logging.Nop{}

func newTestConfig() *config.Config {
	return &config.Config{
		AccessTokenSecret:            "access-secret",
		RefreshTokenSecret:           "refresh-secret",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 30 * 24 * time.Hour,
		TokenIssuer:                  "smarthealth",
		PasswordHashCost:             bcrypt.MinCost,
		S3Region:                     "us-east-1",
		S3AccessKey:                  "minioadmin",
		S3SecretKey:                  "minioadmin",
		S3Bucket:                     "avatars",
		S3BaseEndpoint:               "http://127.0.0.1:9000",
		AvatarURLTTL:                 15 * time.Minute,
	}
}

// newMockDB returns a sqlmock-backed DB; transactions opened by services
// must be declared on the returned mock.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

type fixture struct {
	db    *sql.DB
	mock  sqlmock.Sqlmock
	repos *repotest.Manager
	cfg   *config.Config
	auth  *Authenticator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock := newMockDB(t)
	repos := repotest.NewManager()
	cfg := newTestConfig()
	return &fixture{
		db:    db,
		mock:  mock,
		repos: repos,
		cfg:   cfg,
		auth:  NewAuthenticator(db, repos, cfg, nopLogger),
	}
}

// register creates an active account through the Authenticator.
func (f *fixture) register(t *testing.T, email, phone, password string) string {
	t.Helper()
	a, err := f.auth.Register(t.Context(), RegisterInput{FullName: "Ana", Email: email, Phone: phone, Password: password})
	require.NoError(t, err)
	return a.ID
}

func requireCategory(t *testing.T, err error, category goerrors.Category) *goerrors.Error {
	t.Helper()
	require.Error(t, err)
	appErr, ok := common.AsError(err)
	require.Truef(t, ok, "want a client-facing error, got %T: %v", err, err)
	require.Equalf(t, category, appErr.Category, "unexpected category for %v", err)
	return appErr
}
