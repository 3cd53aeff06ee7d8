package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextOccurrenceDate(t *testing.T) {
	tests := []struct {
		name      string
		anchor    time.Time
		interval  int
		frequency BillingFrequency
		want      time.Time
	}{
		{
			name:      "daily",
			anchor:    date(2024, time.March, 15),
			interval:  1,
			frequency: BillingFrequencyDaily,
			want:      date(2024, time.March, 16),
		},
		{
			name:      "daily with interval",
			anchor:    date(2024, time.March, 15),
			interval:  10,
			frequency: BillingFrequencyDaily,
			want:      date(2024, time.March, 25),
		},
		{
			name:      "weekly",
			anchor:    date(2024, time.March, 15),
			interval:  1,
			frequency: BillingFrequencyWeekly,
			want:      date(2024, time.March, 22),
		},
		{
			name:      "biweekly",
			anchor:    date(2024, time.March, 15),
			interval:  1,
			frequency: BillingFrequencyBiweekly,
			want:      date(2024, time.March, 29),
		},
		{
			name:      "biweekly with interval",
			anchor:    date(2024, time.March, 1),
			interval:  3,
			frequency: BillingFrequencyBiweekly,
			want:      date(2024, time.April, 12),
		},
		{
			name:      "monthly",
			anchor:    date(2024, time.March, 15),
			interval:  1,
			frequency: BillingFrequencyMonthly,
			want:      date(2024, time.April, 15),
		},
		{
			name:      "monthly clamps jan 31 to feb 29 in leap year",
			anchor:    date(2024, time.January, 31),
			interval:  1,
			frequency: BillingFrequencyMonthly,
			want:      date(2024, time.February, 29),
		},
		{
			name:      "monthly clamps jan 31 to feb 28",
			anchor:    date(2025, time.January, 31),
			interval:  1,
			frequency: BillingFrequencyMonthly,
			want:      date(2025, time.February, 28),
		},
		{
			name:      "monthly clamps may 31 to jun 30",
			anchor:    date(2024, time.May, 31),
			interval:  1,
			frequency: BillingFrequencyMonthly,
			want:      date(2024, time.June, 30),
		},
		{
			name:      "quarterly",
			anchor:    date(2024, time.January, 15),
			interval:  1,
			frequency: BillingFrequencyQuarterly,
			want:      date(2024, time.April, 15),
		},
		{
			name:      "quarterly crosses year boundary",
			anchor:    date(2024, time.November, 30),
			interval:  1,
			frequency: BillingFrequencyQuarterly,
			want:      date(2025, time.February, 28),
		},
		{
			name:      "semi annually",
			anchor:    date(2024, time.January, 15),
			interval:  1,
			frequency: BillingFrequencySemiAnnually,
			want:      date(2024, time.July, 15),
		},
		{
			name:      "annually",
			anchor:    date(2024, time.March, 15),
			interval:  1,
			frequency: BillingFrequencyAnnually,
			want:      date(2025, time.March, 15),
		},
		{
			name:      "annually from leap day",
			anchor:    date(2024, time.February, 29),
			interval:  1,
			frequency: BillingFrequencyAnnually,
			want:      date(2025, time.February, 28),
		},
		{
			name:      "monthly with interval of two",
			anchor:    date(2024, time.December, 31),
			interval:  2,
			frequency: BillingFrequencyMonthly,
			want:      date(2025, time.February, 28),
		},
		{
			name:      "unknown frequency falls back to monthly",
			anchor:    date(2024, time.January, 31),
			interval:  1,
			frequency: BillingFrequency("fortnightly"),
			want:      date(2024, time.February, 29),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrenceDate(tt.anchor, tt.interval, tt.frequency)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestNextOccurrenceDateInvalidInterval(t *testing.T) {
	_, err := NextOccurrenceDate(date(2024, time.March, 15), 0, BillingFrequencyMonthly)
	assert.Error(t, err)

	_, err = NextOccurrenceDate(date(2024, time.March, 15), -1, BillingFrequencyMonthly)
	assert.Error(t, err)
}

func TestNextOccurrenceDatePreservesTimeOfDay(t *testing.T) {
	anchor := time.Date(2024, time.January, 31, 9, 30, 15, 0, time.UTC)
	got, err := NextOccurrenceDate(anchor, 1, BillingFrequencyMonthly)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.February, 29, 9, 30, 15, 0, time.UTC), got)
}

func TestAddClampedDate(t *testing.T) {
	// Clamped month arithmetic never overflows into the next month the
	// way time.AddDate does.
	got := AddClampedDate(date(2024, time.January, 31), 0, 1, 0)
	assert.Equal(t, date(2024, time.February, 29), got)

	// Day arithmetic is plain calendar addition.
	got = AddClampedDate(date(2024, time.February, 28), 0, 0, 2)
	assert.Equal(t, date(2024, time.March, 1), got)

	// Year carry when months overflow twelve.
	got = AddClampedDate(date(2024, time.October, 15), 0, 5, 0)
	assert.Equal(t, date(2025, time.March, 15), got)
}
