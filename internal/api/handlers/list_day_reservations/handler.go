package list_day_reservations

import (
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const (
	msgMissingDate = "дата обязательна"
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
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

// Handle GET /api/v1/admin/reservations?date=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /admin/reservations - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := domain.ParseDate(dateStr)
	if err != nil {
		h.logger.Warn("GET /admin/reservations - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.ListByDate(r.Context(), date)
	if err != nil {
		if status := handlers.RespondDomainError(w, err); status >= http.StatusInternalServerError {
			h.logger.Error("GET /admin/reservations - Failed to list reservations: date=%s, error=%v", dateStr, err)
		}
		return
	}

	h.logger.Info("GET /admin/reservations - Reservations retrieved successfully: date=%s, count=%d, load=%d",
		dateStr, len(result.Reservations), result.Load)
	handlers.RespondJSON(w, http.StatusOK, result)
}
