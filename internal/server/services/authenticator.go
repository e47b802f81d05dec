// Package services contains server-side business logic. This file implements
// the Authenticator, which registers accounts and exchanges credentials for
// a signed access/refresh token pair.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server/auth"
	"github.com/dmitrijs2005/smarthealth/internal/server/config"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgAccountDeactivated = "Account is deactivated"
	msgAccountExists      = "User already exists with this email or phone"
)

// LoginInput carries the login form. Identifier is an email address or a
// 10 digit phone number.
type LoginInput struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Identifier, validation.Required.Error("Email or phone is required")),
		validation.Field(&in.Password, validation.Required.Error("Password is required")),
	)
}

// LoginResult is returned on successful login.
type LoginResult struct {
	User         models.AccountSummary `json:"user"`
	Token        string                `json:"token"`
	RefreshToken string                `json:"refreshToken"`
}

// RegisterInput carries the registration form.
type RegisterInput struct {
	FullName    string     `json:"fullName"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Password    string     `json:"password"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Gender      string     `json:"gender,omitempty"`
}

func (in *RegisterInput) normalize() {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
}

func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FullName,
			validation.Required.Error("Full name is required"),
			validation.Length(2, 50).Error("Name must be between 2 and 50 characters")),
		validation.Field(&in.Email,
			validation.Required.Error("Email is required"),
			validation.Match(emailShape).Error("Please provide a valid email")),
		validation.Field(&in.Phone,
			validation.Required.Error("Mobile number is required"),
			validation.Match(phoneShape).Error("Mobile number must be exactly 10 digits")),
		validation.Field(&in.Password,
			validation.Required.Error("Password is required"),
			validation.Length(6, 0).Error("Password must be at least 6 characters")),
		validation.Field(&in.Gender, validation.In(oneOf(models.Genders...)...).Error("Invalid gender")),
	)
}

// Authenticator verifies credentials and mints tokens. It holds no mutable
// state and is safe for concurrent use.
type Authenticator struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	tokens      *auth.TokenIssuer
	logger      logging.Logger
	now         func() time.Time
}

func NewAuthenticator(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *Authenticator {
	return &Authenticator{
		db:          db,
		repomanager: m,
		hasher:      auth.NewPasswordHasher(cfg.PasswordHashCost),
		tokens:      newTokenIssuer(cfg),
		logger:      l.With("module", "authenticator"),
		now:         time.Now,
	}
}

func newTokenIssuer(cfg *config.Config) *auth.TokenIssuer {
	return auth.NewTokenIssuer(cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration, cfg.TokenIssuer)
}

// normalizeIdentifier lowercases identifiers shaped like an email address
// and leaves anything else, such as a phone number, untouched.
func normalizeIdentifier(identifier string) string {
	identifier = strings.TrimSpace(identifier)
	if emailShape.MatchString(identifier) {
		return strings.ToLower(identifier)
	}
	return identifier
}

// Login checks identifier and password and returns a fresh token pair.
// Unknown identifiers and wrong passwords fail with the same error.
func (s *Authenticator) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	in.Identifier = strings.TrimSpace(in.Identifier)
	if err := invalid("Please provide email/phone and password", in.Validate()); err != nil {
		return nil, err
	}
	identifier := normalizeIdentifier(in.Identifier)

	repo := s.repomanager.Accounts(s.db)
	account, err := repo.FindByEmailOrPhone(ctx, identifier, accounts.SelectWithPassword)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(in.Password)
			s.logger.Debug(ctx, "login rejected: unknown identifier", "identifier", identifier)
			return nil, common.NewUnauthorizedError(msgInvalidCredentials)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	ok, err := s.hasher.Verify(account.PasswordHash, in.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.logger.Debug(ctx, "login rejected: password mismatch", "identifier", identifier)
		return nil, common.NewUnauthorizedError(msgInvalidCredentials)
	}
	// checked after the password so only the owner learns the account is deactivated
	if !account.IsActive {
		return nil, common.NewUnauthorizedError(msgAccountDeactivated)
	}

	if err := repo.TouchLastLogin(ctx, account.ID, s.now().UTC()); err != nil {
		s.logger.Warn(ctx, "failed to record last login", "user_id", account.ID, "error", err)
	}

	access, err := s.tokens.IssueAccessToken(account.ID)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refresh, err := s.tokens.IssueRefreshToken(account.ID)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	s.logger.Info(ctx, "login succeeded", "user_id", account.ID)
	return &LoginResult{User: account.Summary(), Token: access, RefreshToken: refresh}, nil
}

// Register creates an account. It never returns tokens; the caller logs in
// separately.
func (s *Authenticator) Register(ctx context.Context, in RegisterInput) (*models.Account, error) {
	in.normalize()
	if err := invalid("Validation failed", in.Validate()); err != nil {
		return nil, err
	}

	repo := s.repomanager.Accounts(s.db)
	exists, err := repo.ExistsByEmailOrPhone(ctx, in.Email, in.Phone)
	if err != nil {
		return nil, fmt.Errorf("check existing account: %w", err)
	}
	if exists {
		s.logger.Debug(ctx, "registration rejected: account exists", "email", in.Email)
		return nil, common.NewConflictError(msgAccountExists, nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := models.DefaultProfile()
	profile.DateOfBirth = in.DateOfBirth
	profile.Gender = in.Gender

	account, err := repo.Create(ctx, &models.Account{
		FullName:       in.FullName,
		Email:          in.Email,
		Phone:          in.Phone,
		PasswordHash:   hash,
		Role:           models.RoleUser,
		MembershipType: models.MembershipFree,
		IsActive:       true,
		Profile:        profile,
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.NewConflictError(msgAccountExists, err)
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	s.logger.Info(ctx, "account registered", "user_id", account.ID)
	return account.Public(), nil
}
