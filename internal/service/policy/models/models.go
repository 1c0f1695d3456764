package models

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// PolicyResponse текущая политика бронирования
// Имена полей совпадают с ключами политики, чтобы ответ GET можно было отправить обратно в PUT.
type PolicyResponse struct {
	OpeningTime         string `json:"opening_time"`
	ClosingTime         string `json:"closing_time"`
	SlotIntervalMinutes int    `json:"slot_interval_minutes"`
	RollingDays         int    `json:"rolling_days"`
	MinPartySize        int    `json:"min_party_size"`
	MaxPartySize        int    `json:"max_party_size"`
	DailyMaxGuests      int    `json:"daily_max_guests"`
}

// FromDomainPolicy конвертирует domain модель в DTO
func FromDomainPolicy(p domain.Policy) *PolicyResponse {
	return &PolicyResponse{
		OpeningTime:         p.OpeningTime.String(),
		ClosingTime:         p.ClosingTime.String(),
		SlotIntervalMinutes: p.SlotIntervalMinutes,
		RollingDays:         p.RollingDays,
		MinPartySize:        p.MinPartySize,
		MaxPartySize:        p.MaxPartySize,
		DailyMaxGuests:      p.DailyMaxGuests,
	}
}
