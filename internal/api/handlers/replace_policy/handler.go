package replace_policy

import (
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/service/policy/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
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

// Handle PUT /api/v1/policy
// Перезаписываются только переданные ключи.
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ReplacePolicyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /policy - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	values, err := req.ToServiceValues()
	if err != nil {
		h.logger.Warn("PUT /policy - Invalid value: %v", err)
		handlers.RespondError(w, http.StatusBadRequest, handlers.KindValidation, err.Error())
		return
	}

	policy, err := h.service.Replace(r.Context(), values)
	if err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("PUT /policy - Failed to replace policy: error=%v", err)
		} else {
			h.logger.Warn("PUT /policy - Rejected: %v", err)
		}
		return
	}

	h.logger.Info("PUT /policy - Policy updated successfully: keys=%d", len(values))
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainPolicy(policy))
}
