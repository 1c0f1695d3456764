package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ReservationStatus is the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCompleted ReservationStatus = "completed"
	StatusCancelled ReservationStatus = "cancelled"
)

// ParseReservationStatus converts s into a known status
func ParseReservationStatus(s string) (ReservationStatus, error) {
	switch status := ReservationStatus(s); status {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown reservation status %q", ErrValidation, s)
	}
}

// CanTransitionTo reports whether moving from s to next is allowed.
//
//	pending   -> confirmed | cancelled
//	confirmed -> completed | cancelled
//	completed, cancelled -> (terminal)
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCompleted || next == StatusCancelled
	case StatusCompleted, StatusCancelled:
		return false
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions exist
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// EmailStatus is the delivery state of the confirmation message
type EmailStatus string

const (
	EmailPending EmailStatus = "pending"
	EmailSent    EmailStatus = "sent"
	EmailFailed  EmailStatus = "failed"
)

// CanTransitionTo reports whether moving from s to next is allowed.
//
//	pending -> sent | failed
//	failed  -> pending (manual retry)
//	sent    -> (terminal)
func (s EmailStatus) CanTransitionTo(next EmailStatus) bool {
	switch s {
	case EmailPending:
		return next == EmailSent || next == EmailFailed
	case EmailFailed:
		return next == EmailPending
	case EmailSent:
		return false
	default:
		return false
	}
}

// Reservation is a booking of seats for a party on a date and time slot
type Reservation struct {
	ID        int64
	Name      string
	Email     string // normalized: trimmed, lower-case
	Phone     *string
	Date      time.Time // calendar day, UTC midnight
	Time      types.TimeString
	PartySize int
	Status    ReservationStatus

	EmailStatus EmailStatus
	EmailError  *string
	EmailSentAt *time.Time

	CancelledAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsActive returns true if the reservation counts against capacity
func (r *Reservation) IsActive() bool {
	return r.Status != StatusCancelled
}

// CanBeModified returns true if date, time or party size may still change
func (r *Reservation) CanBeModified() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// CanBeCancelled returns true if the reservation may move to cancelled
func (r *Reservation) CanBeCancelled() bool {
	return r.Status.CanTransitionTo(StatusCancelled)
}

// BelongsTo reports whether the reservation was made with the given (normalized) email
func (r *Reservation) BelongsTo(email string) bool {
	return r.Email == NormalizeEmail(email)
}

// TransitionTo moves the reservation to next or returns ErrIllegalTransition
func (r *Reservation) TransitionTo(next ReservationStatus) error {
	if !r.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, r.Status, next)
	}
	r.Status = next
	return nil
}

// ReservationFilter narrows reservation listings
type ReservationFilter struct {
	Email           *string
	Date            *time.Time
	Status          *ReservationStatus
	IncludeInactive bool // include cancelled reservations
}
