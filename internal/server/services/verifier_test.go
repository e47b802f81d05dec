package services

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/server/auth"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginToken(t *testing.T, f *fixture) (string, string) {
	t.Helper()
	id := f.register(t, "ana@x.com", "1234567890", "secret1")
	res, err := f.auth.Login(t.Context(), LoginInput{Identifier: "ana@x.com", Password: "secret1"})
	require.NoError(t, err)
	return id, res.Token
}

func TestVerify_Success(t *testing.T) {
	f := newFixture(t)
	id, token := loginToken(t, f)
	v := NewVerifier(f.db, f.repos, f.cfg)

	p, err := v.Verify(t.Context(), "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, id, p.UserID())
	assert.False(t, p.IsAdmin())
	assert.Empty(t, p.Account.PasswordHash)
}

func TestVerify_MissingToken(t *testing.T) {
	f := newFixture(t)
	v := NewVerifier(f.db, f.repos, f.cfg)

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic abc", "bearer abc"} {
		_, err := v.Verify(t.Context(), header)
		appErr := requireCategory(t, err, goerrors.CategoryAuth)
		assert.Equalf(t, msgMissingToken, appErr.Message, "header %q", header)
	}
}

func TestVerify_InvalidOrExpiredCollapse(t *testing.T) {
	f := newFixture(t)
	id, _ := loginToken(t, f)
	v := NewVerifier(f.db, f.repos, f.cfg)

	expired, err := auth.GenerateToken(id, "", []byte(f.cfg.AccessTokenSecret), f.cfg.TokenIssuer,
		time.Now().Add(-2*time.Hour), time.Hour)
	require.NoError(t, err)

	refresh, err := newTokenIssuer(f.cfg).IssueRefreshToken(id)
	require.NoError(t, err)

	forged, err := auth.GenerateToken(id, "", []byte("other-secret"), f.cfg.TokenIssuer, time.Now(), time.Hour)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired": expired,
		"refresh": refresh,
		"forged":  forged,
		"garbage": "not.a.jwt",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(t.Context(), "Bearer "+token)
			appErr := requireCategory(t, err, goerrors.CategoryAuth)
			assert.Equal(t, msgInvalidToken, appErr.Message)
		})
	}
	_, err = v.Verify(t.Context(), "Bearer "+expired)
	assert.True(t, errors.Is(err, common.ErrTokenExpired))
}

func TestVerify_UnknownUser(t *testing.T) {
	f := newFixture(t)
	v := NewVerifier(f.db, f.repos, f.cfg)

	token, err := newTokenIssuer(f.cfg).IssueAccessToken("9b2f0c7e-2a41-4c55-8f4d-6e3c1d2b7a90")
	require.NoError(t, err)

	_, err = v.Verify(t.Context(), "Bearer "+token)
	appErr := requireCategory(t, err, goerrors.CategoryAuth)
	assert.Equal(t, msgUserNotFound, appErr.Message)
}

func TestVerify_DeactivationIsImmediate(t *testing.T) {
	f := newFixture(t)
	id, token := loginToken(t, f)
	v := NewVerifier(f.db, f.repos, f.cfg)

	_, err := v.Verify(t.Context(), "Bearer "+token)
	require.NoError(t, err)

	a := f.repos.AccountStore.Get(id)
	a.IsActive = false
	require.NoError(t, f.repos.AccountStore.Save(t.Context(), a))

	_, err = v.Verify(t.Context(), "Bearer "+token)
	appErr := requireCategory(t, err, goerrors.CategoryAuth)
	assert.Equal(t, msgAccountDeactivated, appErr.Message)
}

func TestVerify_StoreFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	_, token := loginToken(t, f)
	v := NewVerifier(f.db, f.repos, f.cfg)
	f.repos.AccountStore.Fail = errors.New("connection reset")

	_, err := v.Verify(t.Context(), "Bearer "+token)
	require.Error(t, err)
	assert.Equal(t, goerrors.CategoryInternal, common.CategoryOf(err))
}
