package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// Request модель запроса на создание брони
// Дата и время приходят строками: их разбор входит в проверку корректности запроса.
type Request struct {
	Name      string  // Имя гостя
	Email     string  // Email гостя
	Phone     *string // Телефон (опционально)
	Date      string  // Дата брони "2025-10-15"
	Time      string  // Время слота "19:30"
	PartySize int     // Количество гостей
}

// Response модель ответа с созданной бронью
type Response struct {
	ID          int64            // ID созданной брони
	Name        string           // Имя гостя
	Email       string           // Нормализованный email
	Phone       *string          // Телефон
	Date        time.Time        // Дата брони
	Time        types.TimeString // Время слота
	PartySize   int              // Количество гостей
	Status      string           // Статус брони
	EmailStatus string           // Статус письма-подтверждения
	CreatedAt   time.Time        // Время создания
}
