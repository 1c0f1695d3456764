package update_reservation

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ErrInternal возвращается при внутренних ошибках usecase
var ErrInternal = fmt.Errorf("update_reservation: %w", domain.ErrStorage)
