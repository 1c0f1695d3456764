package get_available_slots

import (
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/SMC-ReservationService/internal/usecase/get_available_slots"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/slots
// Query params: date (optional, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := &getAvailableSlots.Request{}
	if date := r.URL.Query().Get("date"); date != "" {
		req.Date = &date
	}

	result, err := h.useCase.Execute(r.Context(), req)
	if err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("GET /slots - Failed to get slots: error=%v", err)
		} else {
			h.logger.Warn("GET /slots - Rejected: %v", err)
		}
		return
	}

	h.logger.Info("GET /slots - Slots retrieved successfully: slots_count=%d", len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
