// Package admission holds the ordered rule set shared by reservation creation and modification.
package admission

import (
	"net/mail"
	"strings"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/slots"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// RawFields поля запроса в том виде, как их прислал клиент
type RawFields struct {
	Name      string
	Email     string
	Phone     *string
	Date      string // YYYY-MM-DD
	Time      string // HH:MM
	PartySize int
}

// Fields разобранные и нормализованные поля запроса
type Fields struct {
	Name      string
	Email     string
	Phone     *string
	Date      time.Time
	Time      types.TimeString
	PartySize int
}

// Parse проверяет правило 1: запрос корректно сформирован
func Parse(raw RawFields) (Fields, error) {
	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return Fields{}, domain.NewMalformedRequestError("name is required")
	}
	if len([]rune(name)) > domain.MaxNameLength {
		return Fields{}, domain.NewMalformedRequestError("name must be at most %d characters", domain.MaxNameLength)
	}

	email := domain.NormalizeEmail(raw.Email)
	if email == "" {
		return Fields{}, domain.NewMalformedRequestError("email is required")
	}
	if len(email) > domain.MaxEmailLength {
		return Fields{}, domain.NewMalformedRequestError("email must be at most %d characters", domain.MaxEmailLength)
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return Fields{}, domain.NewMalformedRequestError("email %q is not a valid address", raw.Email)
	}

	var phone *string
	if raw.Phone != nil {
		if p := strings.TrimSpace(*raw.Phone); p != "" {
			if len(p) > domain.MaxPhoneLength {
				return Fields{}, domain.NewMalformedRequestError("phone must be at most %d characters", domain.MaxPhoneLength)
			}
			phone = &p
		}
	}

	date, err := domain.ParseDate(raw.Date)
	if err != nil {
		return Fields{}, domain.NewMalformedRequestError("date must be YYYY-MM-DD, got %q", raw.Date)
	}

	t, err := types.NewTimeStringFromString(raw.Time)
	if err != nil {
		return Fields{}, domain.NewMalformedRequestError("time must be HH:MM, got %q", raw.Time)
	}

	if raw.PartySize <= 0 {
		return Fields{}, domain.NewMalformedRequestError("party size must be a positive integer")
	}

	return Fields{
		Name:      name,
		Email:     email,
		Phone:     phone,
		Date:      date,
		Time:      t,
		PartySize: raw.PartySize,
	}, nil
}

// CheckWindow проверяет правило 2: 0 <= date - today <= rolling_days
func CheckWindow(date, today time.Time, p domain.Policy) error {
	days := domain.DaysBetween(today, date)
	if days < 0 || days > p.RollingDays {
		return domain.NewOutOfWindowError(p.RollingDays)
	}
	return nil
}

// InWindow сообщает, попадает ли дата в окно бронирования
func InWindow(date, today time.Time, p domain.Policy) bool {
	return CheckWindow(date, today, p) == nil
}

// CheckSlot проверяет правило 3: время совпадает с одним из слотов политики
func CheckSlot(t types.TimeString, p domain.Policy) error {
	available, err := slots.ForPolicy(p)
	if err != nil {
		return err
	}
	if !slots.Contains(available, t) {
		return domain.NewInvalidSlotError(t.String())
	}
	return nil
}

// CheckPartySize проверяет правило 4: min_party_size <= size <= max_party_size
func CheckPartySize(size int, p domain.Policy) error {
	if size < p.MinPartySize {
		return domain.NewPartySizeError(domain.BoundMin, p.MinPartySize)
	}
	if size > p.MaxPartySize {
		return domain.NewPartySizeError(domain.BoundMax, p.MaxPartySize)
	}
	return nil
}

// CheckCapacity проверяет правило 5: load + size <= daily_max_guests
func CheckCapacity(load, size int, p domain.Policy) error {
	if load+size > p.DailyMaxGuests {
		return domain.NewCapacityExceededError(load, p.DailyMaxGuests)
	}
	return nil
}

// CheckStatic проверяет правила 2-4, которые не требуют обращения к хранилищу
func CheckStatic(f Fields, today time.Time, p domain.Policy) error {
	if err := CheckWindow(f.Date, today, p); err != nil {
		return err
	}
	if err := CheckSlot(f.Time, p); err != nil {
		return err
	}
	return CheckPartySize(f.PartySize, p)
}

// Outcome метка результата для метрик: accepted или вид отказа
func Outcome(err error) string {
	if err == nil {
		return "accepted"
	}
	if ae, ok := domain.AsAdmissionError(err); ok {
		return string(ae.Kind)
	}
	return "error"
}
