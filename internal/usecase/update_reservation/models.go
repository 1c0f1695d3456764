package update_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на изменение брони
// Все поля кроме ID и CallerEmail опциональны: nil означает "не менять".
type Request struct {
	ID          int64   // ID брони
	CallerEmail string  // Email, с которым бронь была создана
	Name        *string // Новое имя
	Phone       *string // Новый телефон, пустая строка удаляет телефон
	Date        *string // Новая дата "2025-10-15"
	Time        *string // Новое время "19:30"
	PartySize   *int    // Новое количество гостей
}

// Response модель ответа с измененной бронью
type Response struct {
	ID        int64
	Name      string
	Email     string
	Phone     *string
	Date      time.Time
	Time      types.TimeString
	PartySize int
	Status    string
	UpdatedAt time.Time
}
