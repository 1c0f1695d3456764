package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatus_Transitions(t *testing.T) {
	all := []ReservationStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

	allowed := map[ReservationStatus][]ReservationStatus{
		StatusPending:   {StatusConfirmed, StatusCancelled},
		StatusConfirmed: {StatusCompleted, StatusCancelled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestReservation_TransitionTo(t *testing.T) {
	r := &Reservation{Status: StatusCancelled}

	err := r.TransitionTo(StatusConfirmed)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StatusCancelled, r.Status)

	r.Status = StatusPending
	assert.NoError(t, r.TransitionTo(StatusConfirmed))
	assert.Equal(t, StatusConfirmed, r.Status)
}

func TestParseReservationStatus(t *testing.T) {
	s, err := ParseReservationStatus("confirmed")
	assert.NoError(t, err)
	assert.Equal(t, StatusConfirmed, s)

	_, err = ParseReservationStatus("no_show")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEmailStatus_Transitions(t *testing.T) {
	assert.True(t, EmailPending.CanTransitionTo(EmailSent))
	assert.True(t, EmailPending.CanTransitionTo(EmailFailed))
	assert.True(t, EmailFailed.CanTransitionTo(EmailPending))
	assert.False(t, EmailSent.CanTransitionTo(EmailPending))
	assert.False(t, EmailFailed.CanTransitionTo(EmailSent))
}

func TestReservation_BelongsTo(t *testing.T) {
	r := &Reservation{Email: "anna@example.com"}

	assert.True(t, r.BelongsTo("  Anna@Example.COM "))
	assert.False(t, r.BelongsTo("other@example.com"))
}

func TestReservation_Flags(t *testing.T) {
	r := &Reservation{Status: StatusCompleted}
	assert.True(t, r.IsActive())
	assert.False(t, r.CanBeModified())
	assert.False(t, r.CanBeCancelled())

	r.Status = StatusCancelled
	assert.False(t, r.IsActive())
}
