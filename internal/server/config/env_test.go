package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestParseEnv(t *testing.T) {
	c := &Config{}
	c.LoadDefaults()

	err := parseEnv(c, mapLookup(map[string]string{
		"PORT":               "8080",
		"DATABASE_URL":       "postgres://env",
		"APP_ENV":            "development",
		"JWT_SECRET":         "s1",
		"JWT_EXPIRE":         "7d",
		"JWT_REFRESH_SECRET": "s2",
		"JWT_REFRESH_EXPIRE": "30d",
		"BCRYPT_COST":        "12",
		"FRONTEND_URL":       "https://app.example.com",
		"CORS_ORIGINS":       "https://a,https://b",
		"AUTH_RATE_RPS":      "2.5",
		"AUTH_RATE_BURST":    "3",
		"MAX_BODY_BYTES":     "1024",
		"LOG_LEVEL":          "   ",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, "postgres://env", c.DatabaseDSN)
	assert.Equal(t, "development", c.Environment)
	assert.True(t, c.IsDevelopment())
	assert.Equal(t, "s1", c.AccessTokenSecret)
	assert.Equal(t, 7*24*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, "s2", c.RefreshTokenSecret)
	assert.Equal(t, 30*24*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, 12, c.PasswordHashCost)
	assert.Equal(t, "https://app.example.com", c.FrontendURL)
	assert.Equal(t, []string{"https://a", "https://b"}, c.AllowedOrigins)
	assert.Equal(t, 2.5, c.AuthRateRPS)
	assert.Equal(t, 3, c.AuthRateBurst)
	assert.Equal(t, int64(1024), c.MaxBodyBytes)
	assert.Equal(t, "info", c.LogLevel, "blank values are ignored")
}

func TestParseEnv_Errors(t *testing.T) {
	for _, key := range []string{"JWT_EXPIRE", "BCRYPT_COST", "AUTH_RATE_RPS", "MAX_BODY_BYTES"} {
		t.Run(key, func(t *testing.T) {
			c := &Config{}
			err := parseEnv(c, mapLookup(map[string]string{key: "garbage"}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
