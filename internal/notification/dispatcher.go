// Package notification delivers reservation confirmations out of band.
//
// Admission commits first and only then enqueues the reservation id; every
// delivery outcome is recorded through compare-and-set on email_status so a
// failed send never touches the reservation itself.
package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
)

// Dispatcher очередь и воркеры отправки подтверждений
type Dispatcher struct {
	repo    ReservationRepository
	mailer  Mailer
	queue   Queue
	limiter *rate.Limiter
	metrics Metrics
	logger  Logger
	clock   TimeProvider
	cfg     Config

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewDispatcher создает диспетчер
func NewDispatcher(
	repo ReservationRepository,
	mailer Mailer,
	queue Queue,
	metrics Metrics,
	logger Logger,
	cfg Config,
) *Dispatcher {
	def := DefaultConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = def.SendTimeout
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = def.RetryBackoff
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = def.StaleAfter
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Dispatcher{
		repo:    repo,
		mailer:  mailer,
		queue:   queue,
		limiter: rate.NewLimiter(limit, cfg.Burst),
		metrics: metrics,
		logger:  logger,
		clock:   realClock{},
		cfg:     cfg,
	}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// WithTimeProvider подменяет часы, по которым определяется зависшая доставка
func (d *Dispatcher) WithTimeProvider(tp TimeProvider) *Dispatcher {
	if tp != nil {
		d.clock = tp
	}
	return d
}

// Enqueue ставит бронь в очередь на отправку. Не блокирует и не возвращает ошибку:
// если очередь недоступна, письмо помечается failed и может быть отправлено через Retry.
func (d *Dispatcher) Enqueue(ctx context.Context, id int64) {
	err := d.queue.Push(ctx, id)
	if err == nil {
		return
	}

	d.logger.Warn("Notification: enqueue reservation id=%d failed: %v", id, err)

	d.markFailed(context.WithoutCancel(ctx), id, fmt.Sprintf("enqueue failed: %v", err))
}

// markFailed переводит pending -> failed, чтобы письмо можно было отправить через Retry
func (d *Dispatcher) markFailed(ctx context.Context, id int64, reason string) {
	ok, err := d.repo.TransitionEmailStatus(ctx, id, domain.EmailPending, domain.EmailFailed, &reason)
	if err != nil {
		d.logger.Error("Notification: failed to mark id=%d as failed: %v", id, err)
		return
	}
	if ok {
		d.metrics.IncNotification(string(domain.EmailFailed))
	}
}

// Start запускает воркеров
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running {
		return
	}
	d.running = true

	ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.cfg.Workers; i++ {
		d.wg.Add(1)
		go d.work(ctx, i)
	}

	d.logger.Info("Notification: dispatcher started with %d workers", d.cfg.Workers)
}

// Stop останавливает воркеров и ждет завершения текущих отправок.
// ID, оставшиеся в очереди процесса, помечаются failed: после остановки их некому отправить.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.running {
		d.running = false
		d.cancel()
	}
	d.mu.Unlock()

	d.wg.Wait()

	if drainer, ok := d.queue.(Drainer); ok {
		ids := drainer.Drain()
		for _, id := range ids {
			d.markFailed(context.Background(), id, "dispatcher stopped before delivery")
		}
		if len(ids) > 0 {
			d.logger.Warn("Notification: %d queued confirmations marked failed on stop", len(ids))
		}
	}

	d.logger.Info("Notification: dispatcher stopped")
}

func (d *Dispatcher) work(ctx context.Context, n int) {
	defer d.wg.Done()

	for {
		id, err := d.queue.Pop(ctx)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			if errors.Is(err, ErrQueueEmpty) {
				continue
			}
			d.logger.Error("Notification: worker %d: %v", n, err)
			select {
			case <-time.After(d.cfg.RetryBackoff):
				continue
			case <-ctx.Done():
				return
			}
		}

		res, err := d.repo.GetByID(ctx, id)
		if err != nil {
			d.logger.Error("Notification: worker %d: load reservation id=%d: %v", n, id, err)
			if !errors.Is(err, reservationRepo.ErrReservationNotFound) {
				d.markFailed(context.WithoutCancel(ctx), id, fmt.Sprintf("load reservation: %v", err))
			}
			continue
		}

		result := d.NotifyConfirmed(ctx, res)
		if !result.Sent {
			d.logger.Warn("Notification: reservation id=%d not delivered: %s", id, result.Reason)
		}
	}
}

// NotifyConfirmed отправляет подтверждение по брони
func (d *Dispatcher) NotifyConfirmed(ctx context.Context, res *domain.Reservation) DeliveryResult {
	result := DeliveryResult{
		ReservationID: res.ID,
		AttemptID:     uuid.NewString(),
		Status:        res.EmailStatus,
	}

	// 1. Уже отправлено
	if res.EmailStatus == domain.EmailSent {
		result.Sent = true
		result.AlreadySent = true
		return result
	}

	// 2. Доставкой владеет другая попытка или она уже завершилась неудачей
	if res.EmailStatus != domain.EmailPending {
		result.Reason = fmt.Sprintf("email status is %s", res.EmailStatus)
		return result
	}

	// Запись статуса не должна отменяться вместе с воркером
	store := context.WithoutCancel(ctx)

	// 3. Отмененные брони не подтверждаем
	if res.Status == domain.StatusCancelled {
		return d.fail(store, result, "reservation is cancelled")
	}

	// 4. Лимит отправки
	if err := d.limiter.Wait(ctx); err != nil {
		return d.fail(store, result, fmt.Sprintf("rate limiter: %v", err))
	}

	// 5. Отправка
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	err := d.mailer.Send(sendCtx, confirmationMessage(res))
	cancel()
	if err != nil {
		return d.fail(store, result, err.Error())
	}

	// 6. Фиксация
	ok, err := d.repo.TransitionEmailStatus(store, res.ID, domain.EmailPending, domain.EmailSent, nil)
	if err != nil {
		d.logger.Error("Notification: id=%d sent but status not recorded: %v", res.ID, err)
		result.Sent = true
		result.Reason = fmt.Sprintf("status not recorded: %v", err)
		return result
	}
	if !ok {
		d.logger.Warn("Notification: id=%d sent but email status changed concurrently", res.ID)
	}

	d.metrics.IncNotification(string(domain.EmailSent))
	d.logger.Info("Notification: id=%d confirmation sent, attempt=%s", res.ID, result.AttemptID)

	result.Sent = true
	result.Status = domain.EmailSent
	return result
}

func (d *Dispatcher) fail(ctx context.Context, result DeliveryResult, reason string) DeliveryResult {
	result.Reason = reason

	ok, err := d.repo.TransitionEmailStatus(ctx, result.ReservationID, domain.EmailPending, domain.EmailFailed, &reason)
	if err != nil {
		d.logger.Error("Notification: failed to record failure for id=%d: %v", result.ReservationID, err)
		return result
	}
	if ok {
		result.Status = domain.EmailFailed
		d.metrics.IncNotification(string(domain.EmailFailed))
	}

	d.logger.Warn("Notification: id=%d delivery failed, attempt=%s: %s", result.ReservationID, result.AttemptID, reason)
	return result
}

// Retry повторяет отправку письма, помеченного failed или зависшего в pending
func (d *Dispatcher) Retry(ctx context.Context, id int64) (DeliveryResult, error) {
	// 1. Загружаем бронь
	res, err := d.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return DeliveryResult{}, domain.NewNotFoundOrUnauthorizedError(id)
		}
		return DeliveryResult{}, fmt.Errorf("%w: Retry - load reservation: %w", ErrInternal, err)
	}

	// 2. Проверяем состояние
	if res.Status == domain.StatusCancelled {
		return DeliveryResult{}, fmt.Errorf("%w: reservation %d is cancelled", domain.ErrValidation, id)
	}

	switch res.EmailStatus {
	case domain.EmailSent:
		return DeliveryResult{
			ReservationID: id,
			AttemptID:     uuid.NewString(),
			Status:        domain.EmailSent,
			Sent:          true,
			AlreadySent:   true,
		}, nil
	case domain.EmailPending:
		return d.reclaim(ctx, res)
	}

	// 3. Забираем доставку себе: failed -> pending
	ok, err := d.repo.TransitionEmailStatus(ctx, id, domain.EmailFailed, domain.EmailPending, nil)
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("%w: Retry - reset status: %w", ErrInternal, err)
	}
	if !ok {
		return DeliveryResult{}, fmt.Errorf("%w: reservation %d", domain.ErrDeliveryInProgress, id)
	}

	d.logger.Info("Notification: retrying delivery for id=%d", id)

	res.EmailStatus = domain.EmailPending
	return d.NotifyConfirmed(ctx, res), nil
}

// reclaim отправляет письмо, зависшее в pending дольше StaleAfter (процесс упал или
// ID потерялся из очереди). Свежий pending принадлежит воркеру и не трогается.
func (d *Dispatcher) reclaim(ctx context.Context, res *domain.Reservation) (DeliveryResult, error) {
	staleBefore := d.clock.Now().Add(-d.cfg.StaleAfter)
	if !res.UpdatedAt.Before(staleBefore) {
		return DeliveryResult{}, fmt.Errorf("%w: reservation %d", domain.ErrDeliveryInProgress, res.ID)
	}

	ok, err := d.repo.ReclaimEmailPending(ctx, res.ID, staleBefore)
	if err != nil {
		return DeliveryResult{}, fmt.Errorf("%w: Retry - reclaim pending: %w", ErrInternal, err)
	}
	if !ok {
		return DeliveryResult{}, fmt.Errorf("%w: reservation %d", domain.ErrDeliveryInProgress, res.ID)
	}

	d.logger.Warn("Notification: reclaimed stale pending delivery for id=%d (pending since %s)",
		res.ID, res.UpdatedAt.Format(time.RFC3339))

	return d.NotifyConfirmed(ctx, res), nil
}
