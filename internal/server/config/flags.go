package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/flagx"
	"github.com/dmitrijs2005/smarthealth/internal/timex"
)

var serverFlags = []string{"-a", "-g", "-d", "-env", "-l", "-s", "-rs", "-t", "-r", "-cost", "-frontend", "-b", "-e", "-u", "-p"}

// parseFlags overlays command-line flags.
//
//	-a string     HTTP bind address (":5000")
//	-g string     gRPC health bind address
//	-d string     database DSN
//	-env string   environment name (development, production)
//	-l string     log level
//	-s string     access token secret
//	-rs string    refresh token secret
//	-t duration   access token lifetime ("15m", "1d")
//	-r duration   refresh token lifetime ("30d")
//	-cost int     bcrypt cost
//	-frontend     frontend origin added to the CORS allow-list
//	-b, -e        S3 bucket and endpoint
//	-u, -p        S3 access and secret key
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.HTTPAddr, "a", cfg.HTTPAddr, "http address")
	fs.StringVar(&cfg.GRPCHealthAddr, "g", cfg.GRPCHealthAddr, "grpc health address")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.Environment, "env", cfg.Environment, "environment")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.AccessTokenSecret, "s", cfg.AccessTokenSecret, "access token secret")
	fs.StringVar(&cfg.RefreshTokenSecret, "rs", cfg.RefreshTokenSecret, "refresh token secret")
	fs.Func("t", "access token lifetime", durationFlag(&cfg.AccessTokenValidityDuration))
	fs.Func("r", "refresh token lifetime", durationFlag(&cfg.RefreshTokenValidityDuration))
	fs.IntVar(&cfg.PasswordHashCost, "cost", cfg.PasswordHashCost, "bcrypt cost")
	fs.StringVar(&cfg.FrontendURL, "frontend", cfg.FrontendURL, "frontend origin")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.S3AccessKey, "u", cfg.S3AccessKey, "S3 access key")
	fs.StringVar(&cfg.S3SecretKey, "p", cfg.S3SecretKey, "S3 secret key")

	return fs.Parse(flagx.FilterArgs(args, serverFlags))
}

func durationFlag(dst *time.Duration) func(string) error {
	return func(s string) error {
		d, err := timex.ParseDuration(s)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}
