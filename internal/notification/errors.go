package notification

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

var (
	// ErrQueueFull возвращается, когда в очереди нет места
	ErrQueueFull = errors.New("notification queue is full")

	// ErrQueueEmpty возвращается из Pop, когда очередь пуста
	ErrQueueEmpty = errors.New("notification queue is empty")

	// ErrInternal возвращается при ошибках хранилища
	ErrInternal = fmt.Errorf("notification: %w", domain.ErrStorage)
)
