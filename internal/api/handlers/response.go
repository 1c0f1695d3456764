package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const (
	maxBodyBytes = 1 << 20

	msgInternalError = "внутренняя ошибка сервера"
)

// Виды ошибок, не относящихся к отказам в приеме брони
const (
	KindBadRequest         = "bad_request"
	KindValidation         = "validation"
	KindIllegalTransition  = "illegal_transition"
	KindDeliveryInProgress = "delivery_in_progress"
	KindInternal           = "internal"
)

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    int            `json:"code"`
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]int `json:"details,omitempty"`
}

// DecodeJSON разбирает тело запроса; неизвестные поля и лишние данные после объекта считаются ошибкой
func DecodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	if dec.More() {
		return errors.New("body must contain a single JSON object")
	}
	return nil
}

// RespondJSON пишет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError пишет ошибку с явным видом
func RespondError(w http.ResponseWriter, status int, kind, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Kind: kind, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, KindBadRequest, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, KindInternal, msgInternalError)
}

// StatusFor возвращает HTTP статус для ошибки доменного слоя
func StatusFor(err error) int {
	if ae, ok := domain.AsAdmissionError(err); ok {
		switch ae.Kind {
		case domain.KindNotFoundOrUnauthorized:
			return http.StatusNotFound
		case domain.KindCapacityExceeded, domain.KindDuplicateBooking:
			return http.StatusConflict
		default:
			return http.StatusBadRequest
		}
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrIllegalTransition), errors.Is(err, domain.ErrDeliveryInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// RespondDomainError пишет ошибку доменного слоя и возвращает выбранный статус
// Текст внутренних ошибок клиенту не отдается.
func RespondDomainError(w http.ResponseWriter, err error) int {
	status := StatusFor(err)

	if ae, ok := domain.AsAdmissionError(err); ok {
		RespondJSON(w, status, ErrorResponse{
			Code:    status,
			Kind:    string(ae.Kind),
			Message: ae.Message,
			Details: ae.Details(),
		})
		return status
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		RespondError(w, status, KindValidation, err.Error())
	case errors.Is(err, domain.ErrIllegalTransition):
		RespondError(w, status, KindIllegalTransition, err.Error())
	case errors.Is(err, domain.ErrDeliveryInProgress):
		RespondError(w, status, KindDeliveryInProgress, err.Error())
	default:
		RespondInternalError(w)
	}
	return status
}
