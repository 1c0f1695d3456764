package update_reservation

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
)

const (
	msgInvalidReservationID = "некорректный ID брони"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingEmail         = "email обязателен"
)

type Handler struct {
	useCase UpdateReservationUseCase
	logger  Logger
}

func NewHandler(useCase UpdateReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PUT /api/v1/reservations/{reservationId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем reservationId из URL
	reservationID, err := strconv.ParseInt(mux.Vars(r)["reservationId"], 10, 64)
	if err != nil {
		h.logger.Warn("PUT /reservations/{id} - Invalid reservation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	// Декодируем body
	var req UpdateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /reservations/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.Email == "" {
		h.logger.Warn("PUT /reservations/{id} - Missing email: reservation_id=%d", reservationID)
		handlers.RespondBadRequest(w, msgMissingEmail)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(reservationID))
	if err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("PUT /reservations/{id} - Failed to update reservation: reservation_id=%d, error=%v",
				reservationID, err)
		} else {
			h.logger.Warn("PUT /reservations/{id} - Rejected: reservation_id=%d, reason=%v", reservationID, err)
		}
		return
	}

	h.logger.Info("PUT /reservations/{id} - Reservation updated successfully: reservation_id=%d", reservationID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
