package create_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/usecase/admission"
)

// UseCase use case для приема брони
type UseCase struct {
	reservationRepo ReservationRepository
	policy          PolicyProvider
	notifier        Notifier
	txManager       TransactionManager
	metrics         Metrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	policy PolicyProvider,
	notifier Notifier,
	txManager TransactionManager,
	metrics Metrics,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		policy:          policy,
		notifier:        notifier,
		txManager:       txManager,
		metrics:         metrics,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Execute выполняет use case приема брони
// Правила проверяются по порядку, первое нарушенное определяет ответ:
// корректность, окно дат, слот, размер компании, вместимость дня, дубликат.
// Вместимость, дубликат и вставка выполняются в одной сериализуемой транзакции
// под блокировкой даты.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateReservation: date=%s, time=%s, party=%d", req.Date, req.Time, req.PartySize)

	result, err := uc.execute(ctx, req)
	if uc.metrics != nil {
		uc.metrics.IncAdmission(admission.Outcome(err))
	}
	if err != nil {
		return nil, err
	}

	// Письмо-подтверждение уходит после коммита и не влияет на ответ
	uc.notifier.Enqueue(ctx, result.ID)

	uc.logger.Info("CreateReservation: accepted reservation id=%d, date=%s, time=%s, party=%d",
		result.ID, domain.FormatDate(result.Date), result.Time, result.PartySize)

	return &Response{
		ID:          result.ID,
		Name:        result.Name,
		Email:       result.Email,
		Phone:       result.Phone,
		Date:        result.Date,
		Time:        result.Time,
		PartySize:   result.PartySize,
		Status:      string(result.Status),
		EmailStatus: string(result.EmailStatus),
		CreatedAt:   result.CreatedAt,
	}, nil
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*domain.Reservation, error) {
	// 1. Корректность запроса
	fields, err := admission.Parse(admission.RawFields{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Date:      req.Date,
		Time:      req.Time,
		PartySize: req.PartySize,
	})
	if err != nil {
		uc.logger.Warn("CreateReservation: malformed request: %v", err)
		return nil, err
	}

	// 2. Один снимок политики на все решение
	policy, err := uc.policy.Get(ctx)
	if err != nil {
		uc.logger.Error("CreateReservation: failed to get policy: %v", err)
		return nil, fmt.Errorf("%w: failed to get policy: %w", ErrInternal, err)
	}

	// 3. Окно дат, слот, размер компании
	today := domain.DateOf(uc.timeProvider.Now())
	if err := admission.CheckStatic(fields, today, policy); err != nil {
		uc.logger.Warn("CreateReservation: rejected: %v", err)
		return nil, err
	}

	var result *domain.Reservation

	// 4. Вместимость, дубликат и вставка атомарно.
	// READ COMMITTED: после блокировки даты каждый запрос видит все закоммиченные приемы на эту дату
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 4.1. Блокируем дату первым запросом транзакции: параллельные приемы на тот же день ждут здесь
		if err := uc.reservationRepo.LockDate(txCtx, fields.Date); err != nil {
			return fmt.Errorf("%w: lock date: %w", ErrInternal, err)
		}

		// 4.2. Текущая загрузка даты
		load, err := uc.reservationRepo.SumPartySizeForDate(txCtx, fields.Date, nil)
		if err != nil {
			return fmt.Errorf("%w: sum party size: %w", ErrInternal, err)
		}

		if err := admission.CheckCapacity(load, fields.PartySize, policy); err != nil {
			return err
		}

		// 4.3. Дубликат (email, дата, время)
		exists, err := uc.reservationRepo.ExistsActive(txCtx, fields.Email, fields.Date, fields.Time, nil)
		if err != nil {
			return fmt.Errorf("%w: check duplicate: %w", ErrInternal, err)
		}
		if exists {
			return domain.NewDuplicateBookingError()
		}

		// 4.4. Вставка
		created, err := uc.reservationRepo.Create(txCtx, &domain.Reservation{
			Name:        fields.Name,
			Email:       fields.Email,
			Phone:       fields.Phone,
			Date:        fields.Date,
			Time:        fields.Time,
			PartySize:   fields.PartySize,
			Status:      domain.StatusPending,
			EmailStatus: domain.EmailPending,
		})
		if err != nil {
			if errors.Is(err, reservationRepo.ErrDuplicateActive) {
				return domain.NewDuplicateBookingError()
			}
			return fmt.Errorf("%w: create reservation: %w", ErrInternal, err)
		}

		uc.logger.Info("CreateReservation: date=%s load %d -> %d of %d",
			domain.FormatDate(fields.Date), load, load+fields.PartySize, policy.DailyMaxGuests)

		result = created
		return nil
	})

	if err != nil {
		if _, ok := domain.AsAdmissionError(err); ok {
			uc.logger.Warn("CreateReservation: rejected: %v", err)
		} else {
			uc.logger.Error("CreateReservation: transaction failed: %v", err)
			if !errors.Is(err, domain.ErrStorage) {
				err = fmt.Errorf("%w: %w", ErrInternal, err)
			}
		}
		return nil, err
	}

	return result, nil
}
