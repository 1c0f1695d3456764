package policy

import (
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ErrInternal возвращается при внутренних ошибках сервиса
var ErrInternal = fmt.Errorf("policy.service: %w", domain.ErrStorage)
