// Package slots turns operating hours into bookable time labels.
package slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ErrInvalidHours возвращается, когда часы работы или интервал некорректны
var ErrInvalidHours = errors.New("slots: invalid operating hours")

// Generate возвращает слоты начиная с open с шагом intervalMinutes, каждый строго раньше close.
// open >= close или intervalMinutes <= 0 считаются ошибкой политики, а не пустым результатом.
func Generate(open, close types.TimeString, intervalMinutes int) ([]types.TimeString, error) {
	if open.IsZero() || close.IsZero() {
		return nil, fmt.Errorf("%w: %w: opening and closing time are required", domain.ErrValidation, ErrInvalidHours)
	}
	if !open.IsBefore(close) {
		return nil, fmt.Errorf("%w: %w: opening time %s is not before closing time %s",
			domain.ErrValidation, ErrInvalidHours, open, close)
	}
	if intervalMinutes <= 0 {
		return nil, fmt.Errorf("%w: %w: interval must be positive, got %d",
			domain.ErrValidation, ErrInvalidHours, intervalMinutes)
	}

	count := (close.Minutes()-open.Minutes()-1)/intervalMinutes + 1
	result := make([]types.TimeString, 0, count)

	current := open
	for current.IsBefore(close) {
		result = append(result, current)

		next, err := current.AddMinutes(intervalMinutes)
		if err != nil {
			// следующий слот был бы после полуночи
			break
		}
		current = next
	}

	return result, nil
}

// ForPolicy генерирует слоты по снимку политики
func ForPolicy(p domain.Policy) ([]types.TimeString, error) {
	return Generate(p.OpeningTime, p.ClosingTime, p.SlotIntervalMinutes)
}

// Contains проверяет точное совпадение t с одним из слотов
func Contains(slots []types.TimeString, t types.TimeString) bool {
	for _, s := range slots {
		if s.Equal(t) {
			return true
		}
	}
	return false
}

// Strings возвращает слоты в виде HH:MM
func Strings(slots []types.TimeString) []string {
	result := make([]string, len(slots))
	for i, s := range slots {
		result[i] = s.String()
	}
	return result
}
