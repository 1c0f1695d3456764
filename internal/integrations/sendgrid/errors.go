package sendgrid

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

var (
	// ErrNotConfigured возвращается, когда не задан API ключ или адрес отправителя
	ErrNotConfigured = errors.New("sendgrid client: not configured")

	// ErrInternal возвращается при ошибках транспорта
	ErrInternal = fmt.Errorf("sendgrid client: %w", domain.ErrDelivery)

	// ErrRejected возвращается, когда SendGrid ответил неуспешным статусом
	ErrRejected = fmt.Errorf("sendgrid client: message rejected: %w", domain.ErrDelivery)
)
