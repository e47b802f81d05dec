package models

import "time"

var (
	CircadianStates = []string{"peak_performance", "rest", "recovery", "active"}
	ReadingSources  = []string{"manual", "device", "estimated"}
)

const DefaultReadingSource = "manual"

// BiometricReading is one point-in-time measurement set for an account.
// Every metric is optional.
type BiometricReading struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	HeartRate      *int      `json:"heartRate,omitempty"`
	OxygenLevel    *float64  `json:"oxygenLevel,omitempty"`
	HRVRmssd       *float64  `json:"hrvRmssd,omitempty"`
	HRVBaseline    *float64  `json:"hrvBaseline,omitempty"`
	HRVTrend       string    `json:"hrvTrend,omitempty"`
	RecoveryScore  *int      `json:"recoveryScore,omitempty"`
	CircadianState string    `json:"circadianState,omitempty"`
	BodyClockTime  string    `json:"bodyClockTime,omitempty"`
	Source         string    `json:"source"`
	DeviceID       string    `json:"deviceId,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	CreatedAt      time.Time `json:"createdAt"`
}

// ReadingFilter narrows a history query. Zero times are open bounds.
type ReadingFilter struct {
	UserID string
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}
