package models

import "time"

type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
	PaymentPending PaymentStatus = "pending"
)

const DefaultPaymentMethod = "credit_card"

type Payment struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	PlanID        *string       `json:"planId,omitempty"`
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	PaymentMethod string        `json:"paymentMethod"`
	TransactionID string        `json:"transactionId"`
	Status        PaymentStatus `json:"status"`
	PaidAt        time.Time     `json:"paidAt"`
	CreatedAt     time.Time     `json:"createdAt"`

	User *AccountSummary `json:"user,omitempty"`
	Plan *PlanSummary    `json:"plan,omitempty"`
}
