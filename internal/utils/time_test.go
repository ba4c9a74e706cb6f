package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDaysUntil(t *testing.T) {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		target time.Time
		want   int
	}{
		{"same instant", base, 0},
		{"exactly seven days", base.AddDate(0, 0, 7), 7},
		{"partial day rounds up", base.Add(36 * time.Hour), 2},
		{"one hour ahead rounds up", base.Add(time.Hour), 1},
		{"one day past", base.AddDate(0, 0, -1), -1},
		{"thirty-one days past", base.AddDate(0, 0, -31), -31},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DaysUntil(tt.target, base))
		})
	}
}

func TestStartAndEndOfDay(t *testing.T) {
	moment := time.Date(2026, 3, 1, 15, 42, 7, 123, time.UTC)

	start := StartOfDay(moment)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), start)

	end := EndOfDay(moment)
	assert.Equal(t, 23, end.Hour())
	assert.Equal(t, moment.Day(), end.Day())
}

func TestFormatDate(t *testing.T) {
	moment := time.Date(2026, 3, 1, 15, 42, 7, 0, time.UTC)
	assert.Equal(t, "2026-03-01", FormatDate(moment))
}
