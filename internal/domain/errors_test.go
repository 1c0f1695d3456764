package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmissionError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("create: %w", NewCapacityExceededError(8, 10))

	assert.ErrorIs(t, err, ErrCapacityExceeded)
	assert.False(t, errors.Is(err, ErrDuplicateBooking))

	ae, ok := AsAdmissionError(err)
	require.True(t, ok)
	assert.Equal(t, 8, ae.CurrentLoad)
	assert.Equal(t, 10, ae.Limit)
	assert.Equal(t, 2, ae.RemainingSeats())
	assert.Equal(t, map[string]int{"current": 8, "limit": 10, "remaining": 2}, ae.Details())
	assert.Contains(t, ae.Error(), "only 2 seats left")
}

func TestAdmissionError_Details(t *testing.T) {
	assert.Equal(t, map[string]int{"rolling_days": 30}, NewOutOfWindowError(30).Details())
	assert.Equal(t, map[string]int{"max": 10}, NewPartySizeError(BoundMax, 10).Details())
	assert.Nil(t, NewDuplicateBookingError().Details())
}

func TestAdmissionError_RemainingNeverNegative(t *testing.T) {
	assert.Equal(t, 0, NewCapacityExceededError(12, 10).RemainingSeats())
}

func TestAsAdmissionError_PlainError(t *testing.T) {
	_, ok := AsAdmissionError(ErrStorage)
	assert.False(t, ok)
}
