package update_reservation

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	updateReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/update_reservation"
)

// UpdateReservationRequest HTTP request model
// Email подтверждает владение бронью и не меняется.
type UpdateReservationRequest struct {
	Email     string  `json:"email"`
	Name      *string `json:"name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Date      *string `json:"date,omitempty"`
	Time      *string `json:"time,omitempty"`
	PartySize *int    `json:"partySize,omitempty"`
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	PartySize int     `json:"partySize"`
	Status    string  `json:"status"`
	UpdatedAt string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *UpdateReservationRequest) ToUseCaseRequest(id int64) *updateReservation.Request {
	return &updateReservation.Request{
		ID:          id,
		CallerEmail: r.Email,
		Name:        r.Name,
		Phone:       r.Phone,
		Date:        r.Date,
		Time:        r.Time,
		PartySize:   r.PartySize,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *updateReservation.Response) *ReservationResponse {
	return &ReservationResponse{
		ID:        resp.ID,
		Name:      resp.Name,
		Email:     resp.Email,
		Phone:     resp.Phone,
		Date:      resp.Date.Format(domain.DateFormat),
		Time:      resp.Time.String(),
		PartySize: resp.PartySize,
		Status:    resp.Status,
		UpdatedAt: resp.UpdatedAt.Format(time.RFC3339),
	}
}
