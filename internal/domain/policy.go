package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Policy keys as stored in the key-value table
const (
	KeyOpeningTime         = "opening_time"
	KeyClosingTime         = "closing_time"
	KeySlotIntervalMinutes = "slot_interval_minutes"
	KeyRollingDays         = "rolling_days"
	KeyMinPartySize        = "min_party_size"
	KeyMaxPartySize        = "max_party_size"
	KeyDailyMaxGuests      = "daily_max_guests"
)

// PolicyKeys lists every recognised key in a stable order
var PolicyKeys = []string{
	KeyOpeningTime,
	KeyClosingTime,
	KeySlotIntervalMinutes,
	KeyRollingDays,
	KeyMinPartySize,
	KeyMaxPartySize,
	KeyDailyMaxGuests,
}

// IsPolicyKey reports whether key is recognised
func IsPolicyKey(key string) bool {
	for _, k := range PolicyKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Policy is an immutable snapshot of the booking rules.
// It is passed by value so a decision never observes a concurrent update.
type Policy struct {
	OpeningTime         types.TimeString
	ClosingTime         types.TimeString
	SlotIntervalMinutes int
	RollingDays         int
	MinPartySize        int
	MaxPartySize        int
	DailyMaxGuests      int
}

// DefaultPolicy returns the policy used when the store is empty
func DefaultPolicy() Policy {
	return Policy{
		OpeningTime:         types.MustTimeString(DefaultOpeningTime),
		ClosingTime:         types.MustTimeString(DefaultClosingTime),
		SlotIntervalMinutes: DefaultSlotIntervalMinutes,
		RollingDays:         DefaultRollingDays,
		MinPartySize:        DefaultMinPartySize,
		MaxPartySize:        DefaultMaxPartySize,
		DailyMaxGuests:      DefaultDailyMaxGuests,
	}
}

// PolicyFromValues builds a policy from stored values, applying defaults for missing keys.
// Unknown keys are ignored so that rows written by a newer version do not break reads.
func PolicyFromValues(values map[string]string) (Policy, error) {
	p := DefaultPolicy()
	for _, key := range PolicyKeys {
		raw, ok := values[key]
		if !ok {
			continue
		}
		if err := p.set(key, raw); err != nil {
			return Policy{}, err
		}
	}
	return p, nil
}

// Apply returns a copy of p with the given keys overwritten.
// Unknown keys and unparsable values are rejected with ErrValidation.
// The merged policy is validated as a whole.
func (p Policy) Apply(values map[string]string) (Policy, error) {
	unknown := make([]string, 0)
	for key := range values {
		if !IsPolicyKey(key) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return Policy{}, fmt.Errorf("%w: unknown policy keys: %s", ErrValidation, strings.Join(unknown, ", "))
	}

	next := p
	for _, key := range PolicyKeys {
		raw, ok := values[key]
		if !ok {
			continue
		}
		if err := next.set(key, raw); err != nil {
			return Policy{}, err
		}
	}

	if err := next.Validate(); err != nil {
		return Policy{}, err
	}
	return next, nil
}

// Validate checks the policy is internally consistent
func (p Policy) Validate() error {
	if p.OpeningTime.IsZero() || p.ClosingTime.IsZero() {
		return fmt.Errorf("%w: opening_time and closing_time are required", ErrValidation)
	}
	if !p.OpeningTime.IsBefore(p.ClosingTime) {
		return fmt.Errorf("%w: opening_time %s must be before closing_time %s",
			ErrValidation, p.OpeningTime, p.ClosingTime)
	}
	if p.SlotIntervalMinutes < MinSlotIntervalMinutes || p.SlotIntervalMinutes > MaxSlotIntervalMinutes {
		return fmt.Errorf("%w: slot_interval_minutes must be between %d and %d",
			ErrValidation, MinSlotIntervalMinutes, MaxSlotIntervalMinutes)
	}
	if p.RollingDays < 0 || p.RollingDays > MaxRollingDays {
		return fmt.Errorf("%w: rolling_days must be between 0 and %d", ErrValidation, MaxRollingDays)
	}
	if p.MinPartySize < 1 || p.MaxPartySize > MaxPartySizeLimit {
		return fmt.Errorf("%w: party size bounds must be between 1 and %d", ErrValidation, MaxPartySizeLimit)
	}
	if p.MinPartySize > p.MaxPartySize {
		return fmt.Errorf("%w: min_party_size %d is greater than max_party_size %d",
			ErrValidation, p.MinPartySize, p.MaxPartySize)
	}
	if p.DailyMaxGuests < 1 || p.DailyMaxGuests > MaxDailyGuestsLimit {
		return fmt.Errorf("%w: daily_max_guests must be between 1 and %d", ErrValidation, MaxDailyGuestsLimit)
	}
	return nil
}

// Values renders the policy back into its key-value form
func (p Policy) Values() map[string]string {
	return map[string]string{
		KeyOpeningTime:         p.OpeningTime.String(),
		KeyClosingTime:         p.ClosingTime.String(),
		KeySlotIntervalMinutes: strconv.Itoa(p.SlotIntervalMinutes),
		KeyRollingDays:         strconv.Itoa(p.RollingDays),
		KeyMinPartySize:        strconv.Itoa(p.MinPartySize),
		KeyMaxPartySize:        strconv.Itoa(p.MaxPartySize),
		KeyDailyMaxGuests:      strconv.Itoa(p.DailyMaxGuests),
	}
}

func (p *Policy) set(key, raw string) error {
	raw = strings.TrimSpace(raw)

	switch key {
	case KeyOpeningTime, KeyClosingTime:
		t, err := types.NewTimeStringFromString(raw)
		if err != nil {
			return fmt.Errorf("%w: %s must be HH:MM, got %q", ErrValidation, key, raw)
		}
		if key == KeyOpeningTime {
			p.OpeningTime = t
		} else {
			p.ClosingTime = t
		}
		return nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%w: %s must be an integer, got %q", ErrValidation, key, raw)
	}

	switch key {
	case KeySlotIntervalMinutes:
		p.SlotIntervalMinutes = n
	case KeyRollingDays:
		p.RollingDays = n
	case KeyMinPartySize:
		p.MinPartySize = n
	case KeyMaxPartySize:
		p.MaxPartySize = n
	case KeyDailyMaxGuests:
		p.DailyMaxGuests = n
	default:
		return fmt.Errorf("%w: unknown policy key %q", ErrValidation, key)
	}
	return nil
}
