package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

func ts(s string) types.TimeString {
	return types.MustTimeString(s)
}

func TestGenerate_HourlyExample(t *testing.T) {
	result, err := Generate(ts("11:00"), ts("13:00"), 60)
	require.NoError(t, err)

	assert.Equal(t, []string{"11:00", "12:00"}, Strings(result))
	assert.False(t, Contains(result, ts("12:30")))
	assert.True(t, Contains(result, ts("12:00")))
}

func TestGenerate_LastSlotStrictlyBeforeClose(t *testing.T) {
	result, err := Generate(ts("11:00"), ts("12:10"), 30)
	require.NoError(t, err)

	assert.Equal(t, []string{"11:00", "11:30", "12:00"}, Strings(result))
}

func TestGenerate_NearMidnight(t *testing.T) {
	result, err := Generate(ts("23:00"), ts("23:59"), 45)
	require.NoError(t, err)

	assert.Equal(t, []string{"23:00", "23:45"}, Strings(result))
}

func TestGenerate_Properties(t *testing.T) {
	cases := []struct {
		open, close string
		interval    int
	}{
		{"11:00", "22:00", 30},
		{"00:00", "23:59", 7},
		{"09:15", "09:16", 480},
		{"08:00", "20:00", 45},
		{"10:10", "18:05", 25},
	}

	for _, tc := range cases {
		t.Run(tc.open+"-"+tc.close, func(t *testing.T) {
			open, closing := ts(tc.open), ts(tc.close)

			result, err := Generate(open, closing, tc.interval)
			require.NoError(t, err)
			require.NotEmpty(t, result)

			assert.True(t, result[0].Equal(open), "first slot must equal opening time")
			for i, s := range result {
				assert.True(t, s.IsBefore(closing), "slot %s must be before %s", s, closing)
				if i > 0 {
					assert.Equal(t, tc.interval, s.Minutes()-result[i-1].Minutes())
				}
			}
		})
	}
}

func TestGenerate_InvalidHours(t *testing.T) {
	cases := []struct {
		name        string
		open, close types.TimeString
		interval    int
	}{
		{"open equals close", ts("12:00"), ts("12:00"), 30},
		{"open after close", ts("13:00"), ts("12:00"), 30},
		{"zero interval", ts("11:00"), ts("12:00"), 0},
		{"negative interval", ts("11:00"), ts("12:00"), -15},
		{"unset time", types.TimeString{}, ts("12:00"), 30},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := Generate(tc.open, tc.close, tc.interval)
			assert.Nil(t, result)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.ErrorIs(t, err, ErrInvalidHours)
		})
	}
}

func TestForPolicy_Defaults(t *testing.T) {
	result, err := ForPolicy(domain.DefaultPolicy())
	require.NoError(t, err)

	// 11:00..21:30 каждые 30 минут
	assert.Len(t, result, 22)
	assert.Equal(t, "11:00", result[0].String())
	assert.Equal(t, "21:30", result[len(result)-1].String())
}
