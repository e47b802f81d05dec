package models

import "time"

type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}
