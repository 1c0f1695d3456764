package create_reservation

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ErrInternal возвращается при внутренних ошибках usecase
var ErrInternal = fmt.Errorf("create_reservation: %w", domain.ErrStorage)
