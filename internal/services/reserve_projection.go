package services

import (
	"time"

	"github.com/shopspring/decimal"
)

// dateOnly truncates t to its UTC calendar day.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// endOfMonth returns the last calendar day of the month containing day.
func endOfMonth(day time.Time) time.Time {
	day = dateOnly(day)
	return time.Date(day.Year(), day.Month()+1, 0, 0, 0, 0, 0, time.UTC)
}

// projectCompletion estimates when a reserve reaches its goal at its weekly
// pace. A met goal completes today; without a weekly pace there is no estimate.
func projectCompletion(shortfall, weekly decimal.Decimal, today time.Time) *time.Time {
	if !weekly.IsPositive() {
		return nil
	}
	if !shortfall.IsPositive() {
		d := today
		return &d
	}
	weeks := shortfall.Div(weekly).Ceil().IntPart()
	d := today.AddDate(0, 0, int(weeks)*7)
	return &d
}

// suggestWeekly spreads the shortfall over the whole weeks left before the
// target date, rounded half-up to cents.
func suggestWeekly(shortfall decimal.Decimal, target *time.Time, today time.Time) *decimal.Decimal {
	if target == nil || !shortfall.IsPositive() {
		return nil
	}
	deadline := dateOnly(*target)
	if !deadline.After(today) {
		return nil
	}
	weeks := int64(deadline.Sub(today).Hours()/24) / 7
	if weeks <= 0 {
		return nil
	}
	v := shortfall.DivRound(decimal.NewFromInt(weeks), 2)
	return &v
}
