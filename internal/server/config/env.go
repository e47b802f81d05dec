package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/timex"
)

// parseEnv overlays recognised environment variables.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	str := func(key string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		if v, ok := get(key); ok {
			d, err := timex.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = d
		}
		return nil
	}
	integer := func(key string, dst *int) error {
		if v, ok := get(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}

	str("HTTP_ADDR", &cfg.HTTPAddr)
	if v, ok := get("PORT"); ok {
		cfg.HTTPAddr = ":" + v
	}
	str("GRPC_HEALTH_ADDR", &cfg.GRPCHealthAddr)
	str("DATABASE_URL", &cfg.DatabaseDSN)
	str("APP_ENV", &cfg.Environment)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("JWT_SECRET", &cfg.AccessTokenSecret)
	str("JWT_REFRESH_SECRET", &cfg.RefreshTokenSecret)
	str("JWT_ISSUER", &cfg.TokenIssuer)
	str("FRONTEND_URL", &cfg.FrontendURL)
	if v, ok := get("CORS_ORIGINS"); ok {
		cfg.AllowedOrigins = strings.Split(v, ",")
	}
	str("S3_ACCESS_KEY", &cfg.S3AccessKey)
	str("S3_SECRET_KEY", &cfg.S3SecretKey)
	str("S3_BUCKET", &cfg.S3Bucket)
	str("S3_REGION", &cfg.S3Region)
	str("S3_ENDPOINT", &cfg.S3BaseEndpoint)

	for key, dst := range map[string]*time.Duration{
		"JWT_EXPIRE":         &cfg.AccessTokenValidityDuration,
		"JWT_REFRESH_EXPIRE": &cfg.RefreshTokenValidityDuration,
		"AVATAR_URL_TTL":     &cfg.AvatarURLTTL,
		"SHUTDOWN_TIMEOUT":   &cfg.ShutdownTimeout,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}

	if err := integer("BCRYPT_COST", &cfg.PasswordHashCost); err != nil {
		return err
	}
	if err := integer("AUTH_RATE_BURST", &cfg.AuthRateBurst); err != nil {
		return err
	}
	if v, ok := get("AUTH_RATE_RPS"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("AUTH_RATE_RPS: %w", err)
		}
		cfg.AuthRateRPS = f
	}
	if v, ok := get("MAX_BODY_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_BODY_BYTES: %w", err)
		}
		cfg.MaxBodyBytes = n
	}
	return nil
}
