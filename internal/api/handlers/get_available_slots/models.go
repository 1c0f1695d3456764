package get_available_slots

import (
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	getAvailableSlots "github.com/m04kA/SMC-ReservationService/internal/usecase/get_available_slots"
)

// AvailableSlotsResponse HTTP response model
type AvailableSlotsResponse struct {
	Slots               []string     `json:"slots"`
	SlotIntervalMinutes int          `json:"slotIntervalMinutes"`
	Day                 *DayResponse `json:"day,omitempty"`
}

// DayResponse загрузка запрошенной даты
type DayResponse struct {
	Date           string `json:"date"`
	InWindow       bool   `json:"inWindow"`
	Load           int    `json:"load"`
	DailyMaxGuests int    `json:"dailyMaxGuests"`
	RemainingSeats int    `json:"remainingSeats"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getAvailableSlots.Response) *AvailableSlotsResponse {
	slots := make([]string, len(resp.Slots))
	for i, s := range resp.Slots {
		slots[i] = s.String()
	}

	out := &AvailableSlotsResponse{
		Slots:               slots,
		SlotIntervalMinutes: resp.SlotIntervalMinutes,
	}

	if resp.Day != nil {
		out.Day = &DayResponse{
			Date:           resp.Day.Date.Format(domain.DateFormat),
			InWindow:       resp.Day.InWindow,
			Load:           resp.Day.Load,
			DailyMaxGuests: resp.Day.DailyMaxGuests,
			RemainingSeats: resp.Day.RemainingSeats,
		}
	}

	return out
}
