package retry_notification

import "github.com/m04kA/SMC-ReservationService/internal/notification"

// DeliveryResponse HTTP response model
type DeliveryResponse struct {
	ReservationID int64  `json:"reservationId"`
	AttemptID     string `json:"attemptId"`
	EmailStatus   string `json:"emailStatus"`
	Sent          bool   `json:"sent"`
	AlreadySent   bool   `json:"alreadySent"`
	Reason        string `json:"reason,omitempty"`
}

// FromDeliveryResult конвертирует результат доставки в HTTP response
func FromDeliveryResult(r notification.DeliveryResult) *DeliveryResponse {
	return &DeliveryResponse{
		ReservationID: r.ReservationID,
		AttemptID:     r.AttemptID,
		EmailStatus:   string(r.Status),
		Sent:          r.Sent,
		AlreadySent:   r.AlreadySent,
		Reason:        r.Reason,
	}
}
