package reservations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/internal/service/reservations/models"
)

// Service сервис для чтения, отмены и административной смены статуса броней
type Service struct {
	repo         ReservationRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса броней
func NewService(
	repo ReservationRepository,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		repo:         repo,
		txManager:    txManager,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// GetByID получает бронь по ID
// Бронь видна только по email, с которым она создана; чужая и несуществующая неразличимы.
func (s *Service) GetByID(ctx context.Context, id int64, callerEmail string) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d", id)

	res, err := s.loadOwned(ctx, "GetByID", id, callerEmail)
	if err != nil {
		return nil, err
	}

	return models.FromDomainReservation(res), nil
}

// ListByEmail получает историю броней гостя, включая отмененные
func (s *Service) ListByEmail(ctx context.Context, email string) (*models.ReservationListResponse, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	reservations, err := s.repo.ListByEmail(ctx, email)
	if err != nil {
		s.logger.Error("ListByEmail: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListByEmail - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("ListByEmail: fetched %d reservations", len(reservations))
	return models.FromDomainReservationList(reservations), nil
}

// ListByDate получает все брони на дату с текущей загрузкой (для администратора)
func (s *Service) ListByDate(ctx context.Context, date time.Time) (*models.DayReservationsResponse, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}

	reservations, err := s.repo.ListByDate(ctx, date)
	if err != nil {
		s.logger.Error("ListByDate: repository error for date=%s: %v", domain.FormatDate(date), err)
		return nil, fmt.Errorf("%w: ListByDate - repository error: %w", ErrInternal, err)
	}

	load := 0
	for _, r := range reservations {
		if r.IsActive() {
			load += r.PartySize
		}
	}

	s.logger.Info("ListByDate: date=%s, reservations=%d, load=%d", domain.FormatDate(date), len(reservations), load)

	return &models.DayReservationsResponse{
		Date:         domain.FormatDate(date),
		Load:         load,
		Reservations: models.FromDomainReservationList(reservations).Reservations,
	}, nil
}

// Cancel отменяет бронь гостя
// Запись остается в таблице со статусом cancelled и перестает учитываться в загрузке даты.
func (s *Service) Cancel(ctx context.Context, id int64, callerEmail string) (*models.ReservationResponse, error) {
	s.logger.Info("Cancel: cancelling reservation id=%d", id)

	var result *domain.Reservation

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Загружаем бронь с блокировкой строки
		res, err := s.loadOwned(txCtx, "Cancel", id, callerEmail)
		if err != nil {
			return err
		}

		// 2. Проверяем переход статуса
		if err := res.TransitionTo(domain.StatusCancelled); err != nil {
			s.logger.Warn("Cancel: reservation id=%d cannot be cancelled: %v", id, err)
			return err
		}

		// 3. Сохраняем
		if err := s.repo.UpdateStatus(txCtx, id, domain.StatusCancelled); err != nil {
			s.logger.Error("Cancel: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: Cancel - update status: %w", ErrInternal, err)
		}

		result, err = s.repo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("%w: Cancel - reload: %w", ErrInternal, err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("Cancel: reservation id=%d cancelled, date=%s freed %d seats",
		id, domain.FormatDate(result.Date), result.PartySize)
	return models.FromDomainReservation(result), nil
}

// UpdateStatus меняет статус брони (для администратора)
// Допустимые переходы: pending -> confirmed|cancelled, confirmed -> completed|cancelled.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) (*models.ReservationResponse, error) {
	s.logger.Info("UpdateStatus: reservation id=%d -> %s", id, status)

	next, err := domain.ParseReservationStatus(strings.TrimSpace(status))
	if err != nil {
		return nil, err
	}

	var result *domain.Reservation

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		res, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				s.logger.Warn("UpdateStatus: reservation id=%d not found", id)
				return domain.NewNotFoundOrUnauthorizedError(id)
			}
			s.logger.Error("UpdateStatus: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: UpdateStatus - load: %w", ErrInternal, err)
		}

		if err := res.TransitionTo(next); err != nil {
			s.logger.Warn("UpdateStatus: reservation id=%d: %v", id, err)
			return err
		}

		if err := s.repo.UpdateStatus(txCtx, id, next); err != nil {
			s.logger.Error("UpdateStatus: repository error for reservation id=%d: %v", id, err)
			return fmt.Errorf("%w: UpdateStatus - update: %w", ErrInternal, err)
		}

		result, err = s.repo.GetByID(txCtx, id)
		if err != nil {
			return fmt.Errorf("%w: UpdateStatus - reload: %w", ErrInternal, err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	s.logger.Info("UpdateStatus: reservation id=%d is now %s", id, result.Status)
	return models.FromDomainReservation(result), nil
}

// CompletePast переводит подтвержденные брони прошедших дат в completed
func (s *Service) CompletePast(ctx context.Context) (int64, error) {
	today := domain.DateOf(s.timeProvider.Now())

	n, err := s.repo.CompleteBefore(ctx, today)
	if err != nil {
		s.logger.Error("CompletePast: repository error: %v", err)
		return 0, fmt.Errorf("%w: CompletePast - repository error: %w", ErrInternal, err)
	}

	s.logger.Info("CompletePast: %d reservations before %s completed", n, domain.FormatDate(today))
	return n, nil
}

// loadOwned загружает бронь и проверяет, что она принадлежит callerEmail
func (s *Service) loadOwned(ctx context.Context, op string, id int64, callerEmail string) (*domain.Reservation, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("%s: reservation id=%d not found", op, id)
			return nil, domain.NewNotFoundOrUnauthorizedError(id)
		}
		s.logger.Error("%s: repository error for reservation id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %w", ErrInternal, op, err)
	}

	if !res.BelongsTo(callerEmail) {
		s.logger.Warn("%s: reservation id=%d does not belong to caller", op, id)
		return nil, domain.NewNotFoundOrUnauthorizedError(id)
	}

	return res, nil
}
