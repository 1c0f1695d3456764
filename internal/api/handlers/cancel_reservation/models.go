package cancel_reservation

// CancelReservationRequest HTTP request model
type CancelReservationRequest struct {
	Email string `json:"email"`
}
