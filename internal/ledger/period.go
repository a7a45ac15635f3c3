package ledger

import "time"

// Period is a calendar month in UTC.
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the month containing t.
func PeriodOf(t time.Time) Period {
	t = t.UTC()
	return Period{Year: t.Year(), Month: t.Month()}
}

// ResolvePeriod builds a period from optional year and month values. Zero
// values fall back to the month containing now. It reports false when month
// is outside 1..12 or year is negative.
func ResolvePeriod(year, month int, now time.Time) (Period, bool) {
	p := PeriodOf(now)
	if year < 0 || month < 0 || month > 12 {
		return Period{}, false
	}
	if year > 0 {
		p.Year = year
	}
	if month > 0 {
		p.Month = time.Month(month)
	}
	return p, true
}

// Bounds returns the half-open [start, end) range covering the period.
func (p Period) Bounds() (time.Time, time.Time) {
	start := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
