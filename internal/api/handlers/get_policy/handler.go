package get_policy

import (
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/service/policy/models"
)

type Handler struct {
	service PolicyService
	logger  Logger
}

func NewHandler(service PolicyService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/policy
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	policy, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.Error("GET /policy - Failed to get policy: error=%v", err)
		handlers.RespondDomainError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, models.FromDomainPolicy(policy))
}
