package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned for malformed policy values and illegal inputs outside admission
	ErrValidation = errors.New("validation error")

	// ErrStorage wraps transaction and connection failures
	ErrStorage = errors.New("storage error")

	// ErrDelivery is returned when the confirmation transport fails
	ErrDelivery = errors.New("delivery error")

	// ErrIllegalTransition is returned when a status change is not allowed
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrDeliveryInProgress is returned when another attempt already owns the delivery
	ErrDeliveryInProgress = errors.New("delivery in progress")
)

// ErrorKind is the machine-readable class of an admission rejection
type ErrorKind string

const (
	KindMalformedRequest       ErrorKind = "malformed_request"
	KindOutOfWindow            ErrorKind = "out_of_window"
	KindInvalidSlot            ErrorKind = "invalid_slot"
	KindPartySize              ErrorKind = "party_size"
	KindCapacityExceeded       ErrorKind = "capacity_exceeded"
	KindDuplicateBooking       ErrorKind = "duplicate_booking"
	KindNotFoundOrUnauthorized ErrorKind = "not_found_or_unauthorized"
)

// Party size bound names carried by PartySizeError
const (
	BoundMin = "min"
	BoundMax = "max"
)

// AdmissionError is a recoverable rejection with enough context for the caller to correct the request.
// Two admission errors match under errors.Is when their kinds are equal.
type AdmissionError struct {
	Kind    ErrorKind
	Message string

	// out_of_window
	RollingDays int

	// party_size
	Bound      string
	BoundValue int

	// capacity_exceeded
	CurrentLoad int
	Limit       int
}

func (e *AdmissionError) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches by kind so sentinels work with errors.Is
func (e *AdmissionError) Is(target error) bool {
	t, ok := target.(*AdmissionError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// RemainingSeats returns how many guests still fit on the date
func (e *AdmissionError) RemainingSeats() int {
	if e.Limit <= e.CurrentLoad {
		return 0
	}
	return e.Limit - e.CurrentLoad
}

// Details returns kind-specific context for API responses
func (e *AdmissionError) Details() map[string]int {
	switch e.Kind {
	case KindOutOfWindow:
		return map[string]int{"rolling_days": e.RollingDays}
	case KindPartySize:
		return map[string]int{e.Bound: e.BoundValue}
	case KindCapacityExceeded:
		return map[string]int{
			"current":   e.CurrentLoad,
			"limit":     e.Limit,
			"remaining": e.RemainingSeats(),
		}
	default:
		return nil
	}
}

// Sentinels for errors.Is
var (
	ErrMalformedRequest       = &AdmissionError{Kind: KindMalformedRequest}
	ErrOutOfWindow            = &AdmissionError{Kind: KindOutOfWindow}
	ErrInvalidSlot            = &AdmissionError{Kind: KindInvalidSlot}
	ErrPartySize              = &AdmissionError{Kind: KindPartySize}
	ErrCapacityExceeded       = &AdmissionError{Kind: KindCapacityExceeded}
	ErrDuplicateBooking       = &AdmissionError{Kind: KindDuplicateBooking}
	ErrNotFoundOrUnauthorized = &AdmissionError{Kind: KindNotFoundOrUnauthorized}
)

func NewMalformedRequestError(format string, args ...interface{}) *AdmissionError {
	return &AdmissionError{Kind: KindMalformedRequest, Message: fmt.Sprintf(format, args...)}
}

func NewOutOfWindowError(rollingDays int) *AdmissionError {
	return &AdmissionError{
		Kind:        KindOutOfWindow,
		Message:     fmt.Sprintf("reservations are accepted from today up to %d days ahead", rollingDays),
		RollingDays: rollingDays,
	}
}

func NewInvalidSlotError(t string) *AdmissionError {
	return &AdmissionError{
		Kind:    KindInvalidSlot,
		Message: fmt.Sprintf("%s is not an available time slot", t),
	}
}

// NewPartySizeError reports the bound (BoundMin or BoundMax) that was violated
func NewPartySizeError(bound string, boundValue int) *AdmissionError {
	var msg string
	if bound == BoundMin {
		msg = fmt.Sprintf("party size must be at least %d", boundValue)
	} else {
		msg = fmt.Sprintf("party size must be at most %d", boundValue)
	}
	return &AdmissionError{Kind: KindPartySize, Message: msg, Bound: bound, BoundValue: boundValue}
}

func NewCapacityExceededError(current, limit int) *AdmissionError {
	e := &AdmissionError{Kind: KindCapacityExceeded, CurrentLoad: current, Limit: limit}
	e.Message = fmt.Sprintf("only %d seats left for this date", e.RemainingSeats())
	return e
}

func NewDuplicateBookingError() *AdmissionError {
	return &AdmissionError{
		Kind:    KindDuplicateBooking,
		Message: "an active reservation already exists for this email, date and time",
	}
}

func NewNotFoundOrUnauthorizedError(id int64) *AdmissionError {
	return &AdmissionError{
		Kind:    KindNotFoundOrUnauthorized,
		Message: fmt.Sprintf("reservation %d not found", id),
	}
}

// AsAdmissionError extracts an admission error from the chain
func AsAdmissionError(err error) (*AdmissionError, bool) {
	var ae *AdmissionError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
