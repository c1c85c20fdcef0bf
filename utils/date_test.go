package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKSTDayCrossesMidnight(t *testing.T) {
	// 15:30 UTC is 00:30 the next day in KST
	late := time.Date(2025, 3, 1, 15, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-02", KSTDay(late))

	// 14:59 UTC is still 23:59 the same day
	early := time.Date(2025, 3, 1, 14, 59, 0, 0, time.UTC)
	assert.Equal(t, "2025-03-01", KSTDay(early))
}

func TestKSTMonthAndYear(t *testing.T) {
	// New Year's Eve in UTC is already January in KST
	t0 := time.Date(2024, 12, 31, 16, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, KSTMonth(t0))
	assert.Equal(t, 2025, KSTYear(t0))
}

func TestParseKSTDayRoundTrip(t *testing.T) {
	parsed, err := ParseKSTDay("2025-07-15")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-15", KSTDay(parsed))

	_, err = ParseKSTDay("15-07-2025")
	assert.Error(t, err)
}

func TestKSTDayBounds(t *testing.T) {
	ts := time.Date(2025, 3, 1, 20, 0, 0, 0, KST)
	start, end := KSTDayBounds(ts)

	assert.Equal(t, "2025-03-01", KSTDay(start))
	assert.Equal(t, 24*time.Hour, end.Sub(start))
	assert.True(t, !ts.Before(start) && ts.Before(end))

	// A timestamp just before KST midnight falls in the same day's range
	edge := time.Date(2025, 3, 1, 14, 59, 59, 0, time.UTC)
	assert.True(t, !edge.Before(start) && edge.Before(end))
}

func TestKSTYearBounds(t *testing.T) {
	start, end := KSTYearBounds(2025)
	assert.Equal(t, "2025-01-01", KSTDay(start))
	assert.Equal(t, "2026-01-01", KSTDay(end))

	inside := time.Date(2025, 12, 31, 14, 0, 0, 0, time.UTC) // 23:00 KST Dec 31
	assert.True(t, !inside.Before(start) && inside.Before(end))

	outside := time.Date(2025, 12, 31, 16, 0, 0, 0, time.UTC) // Jan 1 KST
	assert.False(t, outside.Before(end))
}
