package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDate(t *testing.T) {
	loc := time.FixedZone("UTC-6", -6*60*60)
	ts := time.Date(2025, 3, 2, 3, 30, 0, 0, time.UTC)

	assert.Equal(t, "2025-03-01", LocalDate(ts, loc))
	assert.Equal(t, "2025-03-02", LocalDate(ts, nil))
}

func TestYesterday(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	now := time.Date(2025, 3, 1, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, "2025-03-01", Yesterday(now, loc))
	assert.Equal(t, "2025-02-28", Yesterday(now, time.UTC))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-10-12")
	require.NoError(t, err)
	assert.Equal(t, time.October, d.Month())

	_, err = ParseDate("12/10/2025")
	assert.Error(t, err)
}

func TestMonthRange(t *testing.T) {
	start, end, err := MonthRange("2024-02")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", start.Format(DateLayout))
	assert.Equal(t, "2024-02-29", end.Format(DateLayout))

	_, _, err = MonthRange("2024/02")
	assert.Error(t, err)
}

func TestParseISOTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"RFC3339", "2025-10-13T09:30:00Z", time.Date(2025, 10, 13, 9, 30, 0, 0, time.UTC)},
		{"Nanoseconds", "2025-10-13T09:30:00.123Z", time.Date(2025, 10, 13, 9, 30, 0, 123000000, time.UTC)},
		{"Space separated", "2025-10-13 09:30:00", time.Date(2025, 10, 13, 9, 30, 0, 0, time.UTC)},
		{"Date only", "2025-10-13", time.Date(2025, 10, 13, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseISOTime(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(*got))
		})
	}

	_, err := ParseISOTime("")
	assert.Error(t, err)
	_, err = ParseISOTime("yesterday")
	assert.Error(t, err)
}
