package update_reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/usecase/admission"
	"github.com/m04kA/SMC-ReservationService/pkg/ptr"
)

// UseCase use case для изменения брони гостем
type UseCase struct {
	reservationRepo ReservationRepository
	policy          PolicyProvider
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	policy PolicyProvider,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		policy:          policy,
		txManager:       txManager,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Execute выполняет use case изменения брони
// Новые значения проходят те же правила, что и при создании; собственный вклад брони
// в загрузку даты не учитывается.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateReservation: id=%d", req.ID)

	// 1. Снимок политики
	policy, err := uc.policy.Get(ctx)
	if err != nil {
		uc.logger.Error("UpdateReservation: failed to get policy: %v", err)
		return nil, fmt.Errorf("%w: failed to get policy: %w", ErrInternal, err)
	}

	today := domain.DateOf(uc.timeProvider.Now())

	var result *domain.Reservation

	// 2. Загрузка, проверка и запись в одной транзакции; загрузка даты читается только после LockDate
	err = uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 2.1. Загружаем бронь с блокировкой строки
		current, err := uc.reservationRepo.GetByID(txCtx, req.ID)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return domain.NewNotFoundOrUnauthorizedError(req.ID)
			}
			return fmt.Errorf("%w: load reservation: %w", ErrInternal, err)
		}

		// 2.2. Владелец
		if !current.BelongsTo(req.CallerEmail) {
			return domain.NewNotFoundOrUnauthorizedError(req.ID)
		}

		// 2.3. Статус допускает изменение
		if !current.CanBeModified() {
			return fmt.Errorf("%w: reservation in status %s cannot be modified", domain.ErrIllegalTransition, current.Status)
		}

		// 2.4. Правила 1-4 для итоговых значений
		fields, err := admission.Parse(merge(current, req))
		if err != nil {
			return err
		}
		if err := admission.CheckStatic(fields, today, policy); err != nil {
			return err
		}

		// 2.5. Вместимость новой даты без учета самой брони
		if err := uc.reservationRepo.LockDate(txCtx, fields.Date); err != nil {
			return fmt.Errorf("%w: lock date: %w", ErrInternal, err)
		}

		load, err := uc.reservationRepo.SumPartySizeForDate(txCtx, fields.Date, ptr.Ptr(current.ID))
		if err != nil {
			return fmt.Errorf("%w: sum party size: %w", ErrInternal, err)
		}
		if err := admission.CheckCapacity(load, fields.PartySize, policy); err != nil {
			return err
		}

		// 2.6. Дубликат, кроме самой брони
		exists, err := uc.reservationRepo.ExistsActive(txCtx, current.Email, fields.Date, fields.Time, ptr.Ptr(current.ID))
		if err != nil {
			return fmt.Errorf("%w: check duplicate: %w", ErrInternal, err)
		}
		if exists {
			return domain.NewDuplicateBookingError()
		}

		// 2.7. Запись
		current.Name = fields.Name
		current.Phone = fields.Phone
		current.Date = fields.Date
		current.Time = fields.Time
		current.PartySize = fields.PartySize

		if err := uc.reservationRepo.UpdateDetails(txCtx, current); err != nil {
			if errors.Is(err, reservationRepo.ErrDuplicateActive) {
				return domain.NewDuplicateBookingError()
			}
			return fmt.Errorf("%w: update reservation: %w", ErrInternal, err)
		}

		result, err = uc.reservationRepo.GetByID(txCtx, current.ID)
		if err != nil {
			return fmt.Errorf("%w: reload reservation: %w", ErrInternal, err)
		}
		return nil
	})

	if err != nil {
		if _, ok := domain.AsAdmissionError(err); ok || errors.Is(err, domain.ErrIllegalTransition) {
			uc.logger.Warn("UpdateReservation: id=%d rejected: %v", req.ID, err)
		} else {
			uc.logger.Error("UpdateReservation: id=%d failed: %v", req.ID, err)
			if !errors.Is(err, domain.ErrStorage) {
				err = fmt.Errorf("%w: %w", ErrInternal, err)
			}
		}
		return nil, err
	}

	uc.logger.Info("UpdateReservation: id=%d updated: date=%s, time=%s, party=%d",
		result.ID, domain.FormatDate(result.Date), result.Time, result.PartySize)

	return &Response{
		ID:        result.ID,
		Name:      result.Name,
		Email:     result.Email,
		Phone:     result.Phone,
		Date:      result.Date,
		Time:      result.Time,
		PartySize: result.PartySize,
		Status:    string(result.Status),
		UpdatedAt: result.UpdatedAt,
	}, nil
}

// merge накладывает переданные поля на текущие значения брони
func merge(current *domain.Reservation, req *Request) admission.RawFields {
	raw := admission.RawFields{
		Name:      current.Name,
		Email:     current.Email,
		Phone:     current.Phone,
		Date:      domain.FormatDate(current.Date),
		Time:      current.Time.String(),
		PartySize: current.PartySize,
	}

	if req.Name != nil {
		raw.Name = *req.Name
	}
	if req.Phone != nil {
		raw.Phone = req.Phone
	}
	if req.Date != nil {
		raw.Date = *req.Date
	}
	if req.Time != nil {
		raw.Time = *req.Time
	}
	if req.PartySize != nil {
		raw.PartySize = *req.PartySize
	}

	return raw
}
