package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampParser_Parse(t *testing.T) {
	parser := NewTimestampParser(DefaultTZOffsetHours)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"vendor EST", "March 5, 2025 at 3:04 PM EST", time.Date(2025, 3, 5, 20, 4, 0, 0, time.UTC)},
		{"vendor lowercase pm without space", "Mar 5, 2025 at 3:04pm PDT", time.Date(2025, 3, 5, 22, 4, 0, 0, time.UTC)},
		{"vendor midnight", "January 10, 2025 at 12:15 AM UTC", time.Date(2025, 1, 10, 0, 15, 0, 0, time.UTC)},
		{"vendor noon", "January 10, 2025 at 12:15 PM GMT", time.Date(2025, 1, 10, 12, 15, 0, 0, time.UTC)},
		{"unknown zone defaults to UTC-8", "March 5, 2025 at 12:15 AM XYZ", time.Date(2025, 3, 5, 8, 15, 0, 0, time.UTC)},
		{"missing zone defaults to UTC-8", "March 5, 2025 at 12:30 PM", time.Date(2025, 3, 5, 20, 30, 0, 0, time.UTC)},
		{"RFC3339 fallback", "2025-03-05T10:00:00Z", time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC)},
		{"plain datetime in default zone", "2025-03-05 10:00:00", time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)},
		{"date only", "2025-03-05", time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parser.Parse(tt.raw)
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "Parse(%q) = %v, want %v", tt.raw, got.UTC(), tt.want)
		})
	}
}

func TestTimestampParser_Rejects(t *testing.T) {
	parser := NewTimestampParser(DefaultTZOffsetHours)

	for _, raw := range []string{"", "   ", "not a date", "Smarch 5, 2025 at 3:04 PM EST", "February 30, 2025 at 1:00 PM EST"} {
		_, err := parser.Parse(raw)
		assert.Error(t, err, "expected error for %q", raw)
	}
}

func TestTimestampParser_CustomDefaultZone(t *testing.T) {
	parser := NewTimestampParser(-5)

	got, err := parser.Parse("March 5, 2025 at 1:00 PM")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 3, 5, 18, 0, 0, 0, time.UTC)))
}
