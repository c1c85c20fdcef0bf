// utils/date.go - KST calendar-day helpers
package utils

import "time"

// KST is the fixed UTC+9 offset the club uses for calendar-day bucketing.
// Game dates are stored as timestamps; every "which day was that" question
// goes through this zone so a late-night game never splits across days.
var KST = time.FixedZone("KST", 9*60*60)

// KSTDay returns the YYYY-MM-DD calendar day of t in KST.
func KSTDay(t time.Time) string {
	return t.In(KST).Format("2006-01-02")
}

// KSTMonth returns the 0-based calendar month of t in KST.
func KSTMonth(t time.Time) int {
	return int(t.In(KST).Month()) - 1
}

// KSTYear returns the calendar year of t in KST.
func KSTYear(t time.Time) int {
	return t.In(KST).Year()
}

// KSTToday returns today's YYYY-MM-DD in KST.
func KSTToday() string {
	return KSTDay(time.Now())
}

// ParseKSTDay parses a YYYY-MM-DD string as midnight KST.
func ParseKSTDay(day string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", day, KST)
}

// KSTDayBounds returns the half-open [start, end) range of the KST calendar
// day containing t, for range queries against stored timestamps.
func KSTDayBounds(t time.Time) (time.Time, time.Time) {
	local := t.In(KST)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, KST)
	return start, start.Add(24 * time.Hour)
}

// KSTYearBounds returns the half-open [start, end) range of the KST year.
func KSTYearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, KST)
	return start, start.AddDate(1, 0, 0)
}
