package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := &Config{}
	c.LoadDefaults()
	c.AccessTokenSecret = "access"
	c.RefreshTokenSecret = "refresh"
	return c
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":5000", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCHealthAddr)
	assert.Equal(t, "production", c.Environment)
	assert.False(t, c.IsDevelopment(), "internal errors are hidden by default")
	assert.Equal(t, 24*time.Hour, c.AccessTokenValidityDuration)
	assert.Equal(t, 30*24*time.Hour, c.RefreshTokenValidityDuration)
	assert.Equal(t, 10, c.PasswordHashCost)
	assert.Equal(t, int64(50<<20), c.MaxBodyBytes)
	assert.Empty(t, c.AccessTokenSecret, "secrets have no default")
	assert.Empty(t, c.RefreshTokenSecret, "secrets have no default")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "missing access secret", mutate: func(c *Config) { c.AccessTokenSecret = "" }, wantErr: "JWT_SECRET"},
		{name: "missing refresh secret", mutate: func(c *Config) { c.RefreshTokenSecret = "" }, wantErr: "JWT_REFRESH_SECRET"},
		{name: "same secrets", mutate: func(c *Config) { c.RefreshTokenSecret = c.AccessTokenSecret }, wantErr: "must differ"},
		{name: "zero access ttl", mutate: func(c *Config) { c.AccessTokenValidityDuration = 0 }, wantErr: "access token lifetime"},
		{name: "negative refresh ttl", mutate: func(c *Config) { c.RefreshTokenValidityDuration = -time.Second }, wantErr: "refresh token lifetime"},
		{name: "cost too high", mutate: func(c *Config) { c.PasswordHashCost = 40 }, wantErr: "password hash cost"},
		{name: "cost too low", mutate: func(c *Config) { c.PasswordHashCost = 1 }, wantErr: "password hash cost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestOrigins_IncludesFrontendOnce(t *testing.T) {
	c := validConfig()
	c.FrontendURL = "https://app.example.com/"
	c.AllowedOrigins = append(c.AllowedOrigins, "https://app.example.com")

	assert.Equal(t, []string{
		"http://localhost:5173",
		"http://localhost:8081",
		"https://app.example.com",
	}, c.Origins())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"http_addr":  ":7000",
		"jwt_unused": "ignored",
		"log_level":  "debug",
	})
	env := map[string]string{
		"HTTP_ADDR":          ":7100",
		"JWT_SECRET":         "from-env",
		"JWT_REFRESH_SECRET": "refresh-env",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	c, err := Load([]string{"-c", path, "-a", ":7200"}, lookup)
	require.NoError(t, err)

	assert.Equal(t, ":7200", c.HTTPAddr, "flags win over env and json")
	assert.Equal(t, "debug", c.LogLevel, "json wins over defaults")
	assert.Equal(t, "from-env", c.AccessTokenSecret)
	require.NoError(t, c.Validate())
}

func TestLoad_BadEnvIsError(t *testing.T) {
	lookup := func(k string) (string, bool) {
		if k == "BCRYPT_COST" {
			return "ten", true
		}
		return "", false
	}
	_, err := Load(nil, lookup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BCRYPT_COST")
}
