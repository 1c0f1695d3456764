package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ErrInternal возвращается при внутренних ошибках usecase
var ErrInternal = fmt.Errorf("get_available_slots: %w", domain.ErrStorage)
