package get_available_slots

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/slots"
	"github.com/m04kA/SMC-ReservationService/internal/usecase/admission"
)

// UseCase use case для получения сетки слотов и загрузки даты
type UseCase struct {
	reservationRepo ReservationRepository
	policy          PolicyProvider
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	policy PolicyProvider,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		policy:          policy,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// Execute выполняет use case получения слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Снимок политики
	policy, err := uc.policy.Get(ctx)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get policy: %v", err)
		return nil, fmt.Errorf("%w: failed to get policy: %w", ErrInternal, err)
	}

	// 2. Сетка слотов
	available, err := slots.ForPolicy(policy)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %w", ErrInternal, err)
	}

	resp := &Response{
		Slots:               available,
		SlotIntervalMinutes: policy.SlotIntervalMinutes,
	}

	if req.Date == nil {
		uc.logger.Info("GetAvailableSlots: %d slots", len(available))
		return resp, nil
	}

	// 3. Загрузка даты
	date, err := domain.ParseDate(*req.Date)
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: invalid date %q", *req.Date)
		return nil, domain.NewMalformedRequestError("date must be YYYY-MM-DD, got %q", *req.Date)
	}

	load, err := uc.reservationRepo.SumPartySizeForDate(ctx, date, nil)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to sum load for %s: %v", domain.FormatDate(date), err)
		return nil, fmt.Errorf("%w: failed to sum load: %w", ErrInternal, err)
	}

	remaining := policy.DailyMaxGuests - load
	if remaining < 0 {
		remaining = 0
	}

	today := domain.DateOf(uc.timeProvider.Now())
	resp.Day = &Day{
		Date:           date,
		InWindow:       admission.InWindow(date, today, policy),
		Load:           load,
		DailyMaxGuests: policy.DailyMaxGuests,
		RemainingSeats: remaining,
	}

	uc.logger.Info("GetAvailableSlots: %d slots, date=%s, load=%d/%d",
		len(available), domain.FormatDate(date), load, policy.DailyMaxGuests)

	return resp, nil
}
