package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("01.03.2026")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	// 23:30 по Москве 28 февраля, в UTC это ещё 28-е число
	now := time.Date(2026, 2, 28, 23, 30, 0, 0, moscow)

	assert.Equal(t, 0, DaysBetween(now, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1, DaysBetween(now, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 31, DaysBetween(now, time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, -1, DaysBetween(now, time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "guest@example.com", NormalizeEmail("  Guest@Example.com\t"))
}
