package reservations

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ErrInternal возвращается при внутренних ошибках сервиса
var ErrInternal = fmt.Errorf("reservations.service: %w", domain.ErrStorage)
