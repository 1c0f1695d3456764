package list_reservations

import (
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
)

const (
	msgMissingEmail = "email обязателен"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/reservations?email=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.logger.Warn("GET /reservations - Missing email")
		handlers.RespondBadRequest(w, msgMissingEmail)
		return
	}

	result, err := h.service.ListByEmail(r.Context(), email)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /reservations - Failed to list reservations: error=%v", err)
		}
		return
	}

	h.logger.Info("GET /reservations - Reservations retrieved successfully: count=%d", len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result)
}
