package models

import "time"

type PlanType string

const (
	PlanMonthly PlanType = "monthly"
	PlanYearly  PlanType = "yearly"
)

const DefaultCurrency = "USD"

type Plan struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Type          PlanType  `json:"type"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Features      []string  `json:"features"`
	TrialDays     int       `json:"trialDays"`
	IsActive      bool      `json:"isActive"`
	IsRecommended bool      `json:"isRecommended"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PlanSummary is embedded in subscription and payment listings.
type PlanSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}
