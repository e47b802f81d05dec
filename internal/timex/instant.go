package timex

import (
	"fmt"
	"strings"
	"time"
)

// ParseInstant accepts an RFC 3339 timestamp or a bare calendar date
// ("2006-01-02"), which is read as midnight UTC.
func ParseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}
