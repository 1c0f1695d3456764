package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	LockDate(ctx context.Context, date time.Time) error
	SumPartySizeForDate(ctx context.Context, date time.Time, excludeID *int64) (int, error)
	ExistsActive(ctx context.Context, email string, date time.Time, t types.TimeString, excludeID *int64) (bool, error)
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
}

// PolicyProvider источник снимка политики
type PolicyProvider interface {
	Get(ctx context.Context) (domain.Policy, error)
}

// Notifier ставит подтверждение в очередь доставки
type Notifier interface {
	Enqueue(ctx context.Context, reservationID int64)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчик решений о приеме брони
type Metrics interface {
	IncAdmission(outcome string)
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

// RealTimeProvider реальный провайдер времени в часовом поясе ресторана
type RealTimeProvider struct {
	Location *time.Location
}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	if p.Location == nil {
		return time.Now()
	}
	return time.Now().In(p.Location)
}
