package notification

import (
	"context"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/sendgrid"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	// TransitionEmailStatus меняет статус письма, только если текущий равен from
	TransitionEmailStatus(ctx context.Context, id int64, from, to domain.EmailStatus, reason *string) (bool, error)
	// ReclaimEmailPending забирает письмо, которое pending с момента раньше staleBefore
	ReclaimEmailPending(ctx context.Context, id int64, staleBefore time.Time) (bool, error)
}

// Mailer транспорт писем
type Mailer interface {
	Send(ctx context.Context, msg sendgrid.Message) error
}

// Queue очередь ID броней, ожидающих письма
type Queue interface {
	// Push не блокирует вызывающего
	Push(ctx context.Context, id int64) error
	// Pop ждет следующий ID; ErrQueueEmpty, если за отведенное время ничего не пришло
	Pop(ctx context.Context) (int64, error)
}

// Drainer очередь, содержимое которой теряется при остановке процесса
type Drainer interface {
	Drain() []int64
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Metrics интерфейс метрик доставки
type Metrics interface {
	IncNotification(status string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
