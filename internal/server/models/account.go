// Package models holds the server's domain records.
package models

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Membership string

const (
	MembershipFree    Membership = "free"
	MembershipPremium Membership = "premium"
)

var (
	Genders     = []string{"male", "female", "other", "prefer_not_to_say"}
	Chronotypes = []string{"bear", "lion", "wolf", "dolphin"}
)

const (
	DefaultStepGoal   = 12000
	DefaultSleepGoal  = 8
	DefaultChronotype = "bear"
)

// PrivacySettings are the user's data sharing preferences.
type PrivacySettings struct {
	ShareData        bool `json:"shareData"`
	AnalyticsEnabled bool `json:"analyticsEnabled"`
}

// Profile groups the descriptive, non-credential attributes of an account.
// It is stored as one document column.
type Profile struct {
	Avatar          string          `json:"avatar,omitempty"`
	DateOfBirth     *time.Time      `json:"dateOfBirth,omitempty"`
	Age             *int            `json:"age,omitempty"`
	Gender          string          `json:"gender,omitempty"`
	Height          *float64        `json:"height,omitempty"`
	Weight          *float64        `json:"weight,omitempty"`
	StepGoal        int             `json:"stepGoal"`
	SleepGoal       float64         `json:"sleepGoal"`
	Chronotype      string          `json:"chronotype"`
	DataConsent     bool            `json:"dataConsent"`
	PrivacySettings PrivacySettings `json:"privacySettings"`
}

// DefaultProfile returns the profile a new account starts with.
func DefaultProfile() Profile {
	return Profile{
		StepGoal:        DefaultStepGoal,
		SleepGoal:       DefaultSleepGoal,
		Chronotype:      DefaultChronotype,
		PrivacySettings: PrivacySettings{AnalyticsEnabled: true},
	}
}

// Account is an identity record. PasswordHash and TwoFactorSecret never
// serialize; they are only populated when a repository is asked for them.
type Account struct {
	ID                  string     `json:"userId"`
	FullName            string     `json:"fullName"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone"`
	PasswordHash        string     `json:"-"`
	Role                Role       `json:"role"`
	MembershipType      Membership `json:"membershipType"`
	MembershipExpiresAt *time.Time `json:"membershipExpiresAt,omitempty"`
	IsActive            bool       `json:"isActive"`
	IsEmailVerified     bool       `json:"isEmailVerified"`
	IsPhoneVerified     bool       `json:"isPhoneVerified"`
	TwoFactorEnabled    bool       `json:"twoFactorEnabled"`
	TwoFactorSecret     string     `json:"-"`
	Profile
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Public returns a copy without credential material.
func (a *Account) Public() *Account {
	c := *a
	c.PasswordHash = ""
	c.TwoFactorSecret = ""
	return &c
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// AccountSummary is the short form returned on login and embedded in
// subscription and payment listings.
type AccountSummary struct {
	ID             string     `json:"userId"`
	FullName       string     `json:"fullName"`
	Email          string     `json:"email"`
	MembershipType Membership `json:"membershipType,omitempty"`
}

func (a *Account) Summary() AccountSummary {
	return AccountSummary{ID: a.ID, FullName: a.FullName, Email: a.Email, MembershipType: a.MembershipType}
}
