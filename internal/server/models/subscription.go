package models

import "time"

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

type Subscription struct {
	ID                   string             `json:"id"`
	UserID               string             `json:"userId"`
	PlanID               string             `json:"planId"`
	StartDate            time.Time          `json:"startDate"`
	EndDate              time.Time          `json:"endDate"`
	Status               SubscriptionStatus `json:"status"`
	AutoRenewal          bool               `json:"autoRenewal"`
	PaymentMethod        string             `json:"paymentMethod,omitempty"`
	StripeSubscriptionID string             `json:"stripeSubscriptionId,omitempty"`
	CreatedAt            time.Time          `json:"createdAt"`
	UpdatedAt            time.Time          `json:"updatedAt"`

	User *AccountSummary `json:"user,omitempty"`
	Plan *Plan           `json:"plan,omitempty"`
}

// SubscriptionEnd computes the end of a billing period that starts at start:
// one calendar month or year later, then extended by the trial days.
func SubscriptionEnd(start time.Time, planType PlanType, trialDays int) time.Time {
	end := start
	switch planType {
	case PlanYearly:
		end = end.AddDate(1, 0, 0)
	default:
		end = end.AddDate(0, 1, 0)
	}
	if trialDays > 0 {
		end = end.AddDate(0, 0, trialDays)
	}
	return end
}
