package types

import (
	"time"

	ierr "github.com/ledgerflow/ledgerflow/internal/errors"
)

// NextOccurrenceDate calculates the next occurrence date based on the given
// anchor time, the billing frequency, and the interval multiplier.
// For example:
// - If frequency is monthly and interval is 2, we add two months.
// - If frequency is annually and interval is 1, we add one year.
// - If frequency is biweekly and interval is 3, we add 42 days (3 x 2 weeks).
// The anchor is always the previous occurrence date, never "now", so a
// delayed or skipped run does not drift the schedule.
//
// An unrecognized frequency falls back to one calendar month per interval
// unit. This preserves the long-standing default of the billing engine this
// service replaced; callers are expected to validate the frequency up front
// and log when the fallback is applied.
func NextOccurrenceDate(anchor time.Time, interval int, frequency BillingFrequency) (time.Time, error) {
	if interval <= 0 {
		return anchor, ierr.NewError("interval must be a positive integer").
			WithHint("Billing interval must be at least 1").
			WithReportableDetails(map[string]any{
				"interval": interval,
			}).
			Mark(ierr.ErrValidation)
	}

	switch frequency {
	case BillingFrequencyDaily:
		return AddClampedDate(anchor, 0, 0, interval), nil
	case BillingFrequencyWeekly:
		// 1 week = 7 days
		return AddClampedDate(anchor, 0, 0, 7*interval), nil
	case BillingFrequencyBiweekly:
		// 2 weeks = 14 days
		return AddClampedDate(anchor, 0, 0, 14*interval), nil
	case BillingFrequencyMonthly:
		return AddClampedDate(anchor, 0, interval, 0), nil
	case BillingFrequencyQuarterly:
		return AddClampedDate(anchor, 0, 3*interval, 0), nil
	case BillingFrequencySemiAnnually:
		return AddClampedDate(anchor, 0, 6*interval, 0), nil
	case BillingFrequencyAnnually:
		return AddClampedDate(anchor, interval, 0, 0), nil
	default:
		// Legacy fallback: treat unknown frequencies as monthly.
		return AddClampedDate(anchor, 0, interval, 0), nil
	}
}

// AddClampedDate adds the given years, months and days to t, clamping the
// day-of-month to the last valid day of the target month instead of letting
// it overflow the way time.AddDate does (Jan 31 + 1 month is Feb 28/29 here,
// not Mar 2/3).
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)

	// Normalize the month into [1, 12], carrying into the year.
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the new month
	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.Add(-24 * time.Hour).Day()

	newD := d
	if newD > lastDay {
		newD = lastDay
	}

	result := time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location())
	if days != 0 {
		result = result.AddDate(0, 0, days)
	}
	return result
}
