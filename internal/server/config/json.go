package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/flagx"
	"github.com/dmitrijs2005/smarthealth/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Every field is
// optional; absent fields leave the current value untouched.
type JsonConfig struct {
	HTTPAddr                     *string         `json:"http_addr"`
	GRPCHealthAddr               *string         `json:"grpc_health_addr"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	Environment                  *string         `json:"environment"`
	LogLevel                     *string         `json:"log_level"`
	AccessTokenSecret            *string         `json:"access_token_secret"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenSecret           *string         `json:"refresh_token_secret"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	TokenIssuer                  *string         `json:"token_issuer"`
	PasswordHashCost             *int            `json:"password_hash_cost"`
	FrontendURL                  *string         `json:"frontend_url"`
	AllowedOrigins               []string        `json:"allowed_origins"`
	MaxBodyBytes                 *int64          `json:"max_body_bytes"`
	AuthRateRPS                  *float64        `json:"auth_rate_rps"`
	AuthRateBurst                *int            `json:"auth_rate_burst"`
	S3AccessKey                  *string         `json:"s3_access_key"`
	S3SecretKey                  *string         `json:"s3_secret_key"`
	S3Bucket                     *string         `json:"s3_bucket"`
	S3Region                     *string         `json:"s3_region"`
	S3BaseEndpoint               *string         `json:"s3_base_endpoint"`
	AvatarURLTTL                 *timex.Duration `json:"avatar_url_ttl"`
	ShutdownTimeout              *timex.Duration `json:"shutdown_timeout"`
}

// parseJSON overlays the file named by -c/-config in args, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var j JsonConfig
	if err := json.Unmarshal(b, &j); err != nil {
		return err
	}

	setString(&cfg.HTTPAddr, j.HTTPAddr)
	setString(&cfg.GRPCHealthAddr, j.GRPCHealthAddr)
	setString(&cfg.DatabaseDSN, j.DatabaseDSN)
	setString(&cfg.Environment, j.Environment)
	setString(&cfg.LogLevel, j.LogLevel)
	setString(&cfg.AccessTokenSecret, j.AccessTokenSecret)
	setDuration(&cfg.AccessTokenValidityDuration, j.AccessTokenValidityDuration)
	setString(&cfg.RefreshTokenSecret, j.RefreshTokenSecret)
	setDuration(&cfg.RefreshTokenValidityDuration, j.RefreshTokenValidityDuration)
	setString(&cfg.TokenIssuer, j.TokenIssuer)
	if j.PasswordHashCost != nil {
		cfg.PasswordHashCost = *j.PasswordHashCost
	}
	setString(&cfg.FrontendURL, j.FrontendURL)
	if j.AllowedOrigins != nil {
		cfg.AllowedOrigins = j.AllowedOrigins
	}
	if j.MaxBodyBytes != nil {
		cfg.MaxBodyBytes = *j.MaxBodyBytes
	}
	if j.AuthRateRPS != nil {
		cfg.AuthRateRPS = *j.AuthRateRPS
	}
	if j.AuthRateBurst != nil {
		cfg.AuthRateBurst = *j.AuthRateBurst
	}
	setString(&cfg.S3AccessKey, j.S3AccessKey)
	setString(&cfg.S3SecretKey, j.S3SecretKey)
	setString(&cfg.S3Bucket, j.S3Bucket)
	setString(&cfg.S3Region, j.S3Region)
	setString(&cfg.S3BaseEndpoint, j.S3BaseEndpoint)
	setDuration(&cfg.AvatarURLTTL, j.AvatarURLTTL)
	setDuration(&cfg.ShutdownTimeout, j.ShutdownTimeout)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
