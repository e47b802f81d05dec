package timex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstant(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2025-03-01", want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{in: "2025-03-01T10:30:00Z", want: time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)},
		{in: "2025-03-01T12:30:00+02:00", want: time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)},
		{in: " 2025-03-01 ", want: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		{in: "yesterday", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInstant(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
		})
	}
}
