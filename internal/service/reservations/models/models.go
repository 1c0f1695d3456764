package models

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ReservationResponse ответ с данными брони
type ReservationResponse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     *string `json:"phone,omitempty"`
	Date      string  `json:"date"` // "2025-10-15"
	Time      string  `json:"time"` // "19:30"
	PartySize int     `json:"partySize"`
	Status    string  `json:"status"`

	EmailStatus string  `json:"emailStatus"`
	EmailError  *string `json:"emailError,omitempty"`
	EmailSentAt *string `json:"emailSentAt,omitempty"` // ISO 8601

	CancelledAt *string `json:"cancelledAt,omitempty"` // ISO 8601

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком броней
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// DayReservationsResponse брони на дату с текущей загрузкой
type DayReservationsResponse struct {
	Date         string                `json:"date"`
	Load         int                   `json:"load"`
	Reservations []ReservationResponse `json:"reservations"`
}

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		Date:        domain.FormatDate(r.Date),
		Time:        r.Time.String(),
		PartySize:   r.PartySize,
		Status:      string(r.Status),
		EmailStatus: string(r.EmailStatus),
		EmailError:  r.EmailError,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}

	if r.EmailSentAt != nil {
		sentStr := r.EmailSentAt.Format(time.RFC3339)
		resp.EmailSentAt = &sentStr
	}
	if r.CancelledAt != nil {
		cancelledStr := r.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, 0, len(reservations)),
	}

	for _, r := range reservations {
		resp.Reservations = append(resp.Reservations, *FromDomainReservation(r))
	}

	return resp
}
