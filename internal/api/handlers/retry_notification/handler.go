package retry_notification

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
)

const (
	msgInvalidReservationID = "некорректный ID брони"
)

type Handler struct {
	dispatcher Dispatcher
	logger     Logger
}

func NewHandler(dispatcher Dispatcher, logger Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle POST /api/v1/admin/reservations/{reservationId}/notification/retry
// Ошибка доставки не является ошибкой запроса: ответ 200 с sent=false и причиной.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reservationID, err := strconv.ParseInt(mux.Vars(r)["reservationId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /admin/reservations/{id}/notification/retry - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	result, err := h.dispatcher.Retry(r.Context(), reservationID)
	if err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("POST /admin/reservations/{id}/notification/retry - Failed: reservation_id=%d, error=%v",
				reservationID, err)
		} else {
			h.logger.Warn("POST /admin/reservations/{id}/notification/retry - Rejected: reservation_id=%d, reason=%v",
				reservationID, err)
		}
		return
	}

	h.logger.Info("POST /admin/reservations/{id}/notification/retry - reservation_id=%d, attempt=%s, sent=%t",
		reservationID, result.AttemptID, result.Sent)
	handlers.RespondJSON(w, http.StatusOK, FromDeliveryResult(result))
}
