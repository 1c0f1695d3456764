package create_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Date      string  `json:"date"` // "2025-10-15"
	Time      string  `json:"time"` // "19:30"
	PartySize int     `json:"partySize"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone,omitempty"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	PartySize   int     `json:"partySize"`
	Status      string  `json:"status"`
	EmailStatus string  `json:"emailStatus"`
	CreatedAt   string  `json:"createdAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Разбор даты и времени выполняет use case: это первое правило приема.
func (r *CreateReservationRequest) ToUseCaseRequest() *createReservation.Request {
	return &createReservation.Request{
		Name:      r.Name,
		Email:     r.Email,
		Phone:     r.Phone,
		Date:      r.Date,
		Time:      r.Time,
		PartySize: r.PartySize,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createReservation.Response) *ReservationResponse {
	return &ReservationResponse{
		ID:          resp.ID,
		Name:        resp.Name,
		Email:       resp.Email,
		Phone:       resp.Phone,
		Date:        resp.Date.Format(domain.DateFormat),
		Time:        resp.Time.String(),
		PartySize:   resp.PartySize,
		Status:      resp.Status,
		EmailStatus: resp.EmailStatus,
		CreatedAt:   resp.CreatedAt.Format(time.RFC3339),
	}
}
