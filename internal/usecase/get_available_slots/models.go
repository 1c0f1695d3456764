package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на получение слотов
type Request struct {
	Date *string // Опциональная дата "2025-10-15"; без нее возвращается только сетка слотов
}

// Response модель ответа со списком слотов
type Response struct {
	Slots               []types.TimeString
	SlotIntervalMinutes int
	Day                 *Day // nil, если дата не запрашивалась
}

// Day загрузка конкретной даты
type Day struct {
	Date           time.Time
	InWindow       bool // дата в окне бронирования
	Load           int  // гостей по активным броням
	DailyMaxGuests int
	RemainingSeats int
}
