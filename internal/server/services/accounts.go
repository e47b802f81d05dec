package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/common"
	"github.com/dmitrijs2005/smarthealth/internal/dbx"
	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server/auth"
	"github.com/dmitrijs2005/smarthealth/internal/server/config"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/smarthealth/internal/server/repositories/repomanager"
	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
)

// ProfileUpdate is a partial update; nil fields are left unchanged.
type ProfileUpdate struct {
	FullName        *string                 `json:"fullName"`
	Email           *string                 `json:"email"`
	DateOfBirth     *time.Time              `json:"dateOfBirth"`
	Age             *int                    `json:"age"`
	Gender          *string                 `json:"gender"`
	Height          *float64                `json:"height"`
	Weight          *float64                `json:"weight"`
	StepGoal        *int                    `json:"stepGoal"`
	SleepGoal       *float64                `json:"sleepGoal"`
	Chronotype      *string                 `json:"chronotype"`
	Avatar          *string                 `json:"avatar"`
	DataConsent     *bool                   `json:"dataConsent"`
	PrivacySettings *models.PrivacySettings `json:"privacySettings"`
}

// normalize trims the identity fields so a whitespace-only value counts as blank.
func (in *ProfileUpdate) normalize() {
	in.FullName = trimmed(in.FullName)
	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		in.Email = &email
	}
}

// Validate rejects blanks on present identity fields: full_name and email are NOT NULL.
func (in ProfileUpdate) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.FullName,
			validation.NilOrNotEmpty.Error("Name cannot be empty"),
			validation.Length(2, 50).Error("Name must be between 2 and 50 characters")),
		validation.Field(&in.Email,
			validation.NilOrNotEmpty.Error("Email cannot be empty"),
			validation.Match(emailShape).Error("Please provide a valid email")),
		validation.Field(&in.Age, validation.Min(0).Error("Age cannot be negative"), validation.Max(150).Error("Age is out of range")),
		validation.Field(&in.Gender, validation.In(oneOf(models.Genders...)...).Error("Invalid gender")),
		validation.Field(&in.Height, validation.Min(0.0).Error("Height cannot be negative")),
		validation.Field(&in.Weight, validation.Min(0.0).Error("Weight cannot be negative")),
		validation.Field(&in.StepGoal, validation.Min(0).Error("Step goal cannot be negative")),
		validation.Field(&in.SleepGoal, validation.Min(0.0).Error("Sleep goal cannot be negative"), validation.Max(24.0).Error("Sleep goal cannot exceed 24 hours")),
		validation.Field(&in.Chronotype, validation.In(oneOf(models.Chronotypes...)...).Error("Invalid chronotype")),
	)
}

func (in ProfileUpdate) apply(a *models.Account) {
	if in.FullName != nil {
		a.FullName = *in.FullName
	}
	if in.Email != nil {
		a.Email = *in.Email
	}
	if in.DateOfBirth != nil {
		a.DateOfBirth = in.DateOfBirth
	}
	if in.Age != nil {
		a.Age = in.Age
	}
	if in.Gender != nil {
		a.Gender = *in.Gender
	}
	if in.Height != nil {
		a.Height = in.Height
	}
	if in.Weight != nil {
		a.Weight = in.Weight
	}
	if in.StepGoal != nil {
		a.StepGoal = *in.StepGoal
	}
	if in.SleepGoal != nil {
		a.SleepGoal = *in.SleepGoal
	}
	if in.Chronotype != nil {
		a.Chronotype = *in.Chronotype
	}
	if in.Avatar != nil {
		a.Avatar = *in.Avatar
	}
	if in.DataConsent != nil {
		a.DataConsent = *in.DataConsent
	}
	if in.PrivacySettings != nil {
		a.PrivacySettings = *in.PrivacySettings
	}
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// AccountUpdate is the administrator's view of a partial account update.
type AccountUpdate struct {
	ProfileUpdate
	Phone               *string            `json:"phone"`
	Role                *models.Role       `json:"role"`
	MembershipType      *models.Membership `json:"membershipType"`
	MembershipExpiresAt *time.Time         `json:"membershipExpiresAt"`
	IsActive            *bool              `json:"isActive"`
}

func (in *AccountUpdate) normalize() {
	in.ProfileUpdate.normalize()
	in.Phone = trimmed(in.Phone)
}

func (in AccountUpdate) Validate() error {
	if err := in.ProfileUpdate.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(&in,
		validation.Field(&in.Phone,
			validation.NilOrNotEmpty.Error("Mobile number cannot be empty"),
			validation.Match(phoneShape).Error("Mobile number must be exactly 10 digits")),
		validation.Field(&in.Role,
			validation.NilOrNotEmpty.Error("Role cannot be empty"),
			validation.In(oneOf(models.RoleUser, models.RoleAdmin)...).Error("Invalid role")),
		validation.Field(&in.MembershipType,
			validation.NilOrNotEmpty.Error("Membership type cannot be empty"),
			validation.In(oneOf(models.MembershipFree, models.MembershipPremium)...).Error("Invalid membership type")),
	)
}

func (in AccountUpdate) apply(a *models.Account) {
	in.ProfileUpdate.apply(a)
	if in.Phone != nil {
		a.Phone = *in.Phone
	}
	if in.Role != nil {
		a.Role = *in.Role
	}
	if in.MembershipType != nil {
		a.MembershipType = *in.MembershipType
	}
	if in.MembershipExpiresAt != nil {
		a.MembershipExpiresAt = in.MembershipExpiresAt
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
}

// PasswordChange is the update-password form.
type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (in PasswordChange) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.CurrentPassword, validation.Required.Error("Current password is required")),
		validation.Field(&in.NewPassword,
			validation.Required.Error("New password is required"),
			validation.Length(6, 0).Error("Password must be at least 6 characters")),
	)
}

// PasswordReset sets a password by email, without the old one.
type PasswordReset struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

func (in PasswordReset) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required.Error("Email is required")),
		validation.Field(&in.NewPassword,
			validation.Required.Error("New password is required"),
			validation.Length(6, 0).Error("Password must be at least 6 characters")),
	)
}

// AdminSetup describes the administrator account ensured by EnsureAdmin.
type AdminSetup struct {
	FullName string
	Email    string
	Phone    string
	Password string
}

// AccountService manages existing accounts. The password hash is only ever
// written through UpdatePassword, so profile saves never re-hash it.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	logger      logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		hasher:      auth.NewPasswordHasher(cfg.PasswordHashCost),
		logger:      l.With("module", "accounts"),
	}
}

func (s *AccountService) find(ctx context.Context, repo accounts.Repository, id string, sel accounts.Select) (*models.Account, error) {
	a, err := repo.FindByID(ctx, id, sel)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError(msgUserNotFound)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a, nil
}

func saveError(err error) error {
	if errors.Is(err, common.ErrorAlreadyExists) {
		return common.NewConflictError("Email or phone is already registered", err)
	}
	if errors.Is(err, common.ErrorNotFound) {
		return common.NewNotFoundError(msgUserNotFound)
	}
	return fmt.Errorf("save account: %w", err)
}

// Me returns the public profile of userID.
func (s *AccountService) Me(ctx context.Context, userID string) (*models.Account, error) {
	return s.find(ctx, s.repomanager.Accounts(s.db), userID, accounts.SelectPublic)
}

func (s *AccountService) update(ctx context.Context, id string, apply func(*models.Account)) (*models.Account, error) {
	var out *models.Account
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		a, err := s.find(ctx, repo, id, accounts.SelectPublic)
		if err != nil {
			return err
		}
		apply(a)
		if err := repo.Save(ctx, a); err != nil {
			return saveError(err)
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out.Public(), nil
}

// UpdateProfile applies a partial profile update to the caller's account.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*models.Account, error) {
	in.normalize()
	if err := invalid("Validation failed", in.Validate()); err != nil {
		return nil, err
	}
	return s.update(ctx, userID, in.apply)
}

// UpdatePassword replaces the caller's password after checking the current one.
func (s *AccountService) UpdatePassword(ctx context.Context, userID string, in PasswordChange) error {
	if err := invalid("Please provide current and new password", in.Validate()); err != nil {
		return err
	}

	repo := s.repomanager.Accounts(s.db)
	a, err := s.find(ctx, repo, userID, accounts.SelectWithPassword)
	if err != nil {
		return err
	}
	ok, err := s.hasher.Verify(a.PasswordHash, in.CurrentPassword)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return common.NewValidationError("Incorrect current password")
	}
	return s.setPassword(ctx, repo, a.ID, in.NewPassword)
}

func (s *AccountService) setPassword(ctx context.Context, repo accounts.Repository, id, password string) error {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := repo.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewNotFoundError(msgUserNotFound)
		}
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.Info(ctx, "password changed", "user_id", id)
	return nil
}

// ForgotPassword accepts a reset request. It succeeds whether or not the
// email is registered.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return common.NewValidationError("Please provide an email",
			goerrors.FieldError{Field: "email", Message: "Email is required"})
	}
	if _, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, email, accounts.SelectPublic); err != nil {
		if !errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("find account: %w", err)
		}
		s.logger.Debug(ctx, "password reset requested for unknown email")
		return nil
	}
	s.logger.Info(ctx, "password reset requested", "email", email)
	return nil
}

// ResetPassword sets a new password for the account registered under email.
func (s *AccountService) ResetPassword(ctx context.Context, in PasswordReset) error {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := invalid("Please provide email and new password", in.Validate()); err != nil {
		return err
	}
	repo := s.repomanager.Accounts(s.db)
	a, err := repo.FindByEmail(ctx, in.Email, accounts.SelectPublic)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewNotFoundError(msgUserNotFound)
		}
		return fmt.Errorf("find account: %w", err)
	}
	return s.setPassword(ctx, repo, a.ID, in.NewPassword)
}

// ByEmail returns the public view of the account registered under email.
func (s *AccountService) ByEmail(ctx context.Context, email string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	a, err := s.repomanager.Accounts(s.db).FindByEmail(ctx, email, accounts.SelectPublic)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError(msgUserNotFound)
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return a.Public(), nil
}

// Deactivate soft-disables the caller. Tokens already issued stop working
// on the next request.
func (s *AccountService) Deactivate(ctx context.Context, userID string) error {
	_, err := s.update(ctx, userID, func(a *models.Account) { a.IsActive = false })
	if err == nil {
		s.logger.Info(ctx, "account deactivated", "user_id", userID)
	}
	return err
}

// List returns every account, newest first.
func (s *AccountService) List(ctx context.Context) ([]*models.Account, error) {
	list, err := s.repomanager.Accounts(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	if list == nil {
		list = []*models.Account{}
	}
	return list, nil
}

// UpdateByID applies an administrator update to any account.
func (s *AccountService) UpdateByID(ctx context.Context, id string, in AccountUpdate) (*models.Account, error) {
	in.normalize()
	if err := invalid("Validation failed", in.Validate()); err != nil {
		return nil, err
	}
	return s.update(ctx, id, in.apply)
}

// DeactivateByID soft-disables any account.
func (s *AccountService) DeactivateByID(ctx context.Context, id string) error {
	return s.Deactivate(ctx, id)
}

// EnsureAdmin creates the administrator account, or promotes and re-keys the
// existing account with the same email. It reports whether it created one.
func (s *AccountService) EnsureAdmin(ctx context.Context, in AdminSetup) (bool, error) {
	reg := RegisterInput{FullName: in.FullName, Email: in.Email, Phone: in.Phone, Password: in.Password}
	reg.normalize()
	if err := invalid("Validation failed", reg.Validate()); err != nil {
		return false, err
	}
	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	created := false
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)
		a, err := repo.FindByEmail(ctx, reg.Email, accounts.SelectPublic)
		switch {
		case errors.Is(err, common.ErrorNotFound):
			_, err = repo.Create(ctx, &models.Account{
				FullName:       reg.FullName,
				Email:          reg.Email,
				Phone:          reg.Phone,
				PasswordHash:   hash,
				Role:           models.RoleAdmin,
				MembershipType: models.MembershipPremium,
				IsActive:       true,
				Profile:        models.DefaultProfile(),
			})
			if err != nil {
				return saveError(err)
			}
			created = true
			return nil
		case err != nil:
			return fmt.Errorf("find account: %w", err)
		}

		a.FullName = reg.FullName
		a.Role = models.RoleAdmin
		a.MembershipType = models.MembershipPremium
		a.IsActive = true
		if err := repo.Save(ctx, a); err != nil {
			return saveError(err)
		}
		if err := repo.UpdatePassword(ctx, a.ID, hash); err != nil {
			return fmt.Errorf("update password: %w", err)
		}
		return nil
	})
	return created, err
}
