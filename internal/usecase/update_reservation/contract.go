package update_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	LockDate(ctx context.Context, date time.Time) error
	SumPartySizeForDate(ctx context.Context, date time.Time, excludeID *int64) (int, error)
	ExistsActive(ctx context.Context, email string, date time.Time, t types.TimeString, excludeID *int64) (bool, error)
	UpdateDetails(ctx context.Context, res *domain.Reservation) error
}

// PolicyProvider источник снимка политики
type PolicyProvider interface {
	Get(ctx context.Context) (domain.Policy, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
