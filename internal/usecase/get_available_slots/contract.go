package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	// SumPartySizeForDate возвращает загрузку даты по активным броням
	SumPartySizeForDate(ctx context.Context, date time.Time, excludeID *int64) (int, error)
}

// PolicyProvider источник снимка политики
type PolicyProvider interface {
	Get(ctx context.Context) (domain.Policy, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
