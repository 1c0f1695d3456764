package policy

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Service сервис политики бронирования
// Каждый вызов Get возвращает неизменяемый снимок; кэша между запросами нет.
type Service struct {
	repo      PolicyRepository
	txManager TransactionManager
	logger    Logger
}

// NewService создает новый экземпляр сервиса политики
func NewService(repo PolicyRepository, txManager TransactionManager, logger Logger) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		logger:    logger,
	}
}

// Get возвращает текущую политику с подставленными значениями по умолчанию
func (s *Service) Get(ctx context.Context) (domain.Policy, error) {
	values, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.Error("GetPolicy: repository error: %v", err)
		return domain.Policy{}, fmt.Errorf("%w: Get - repository error: %w", ErrInternal, err)
	}

	p, err := domain.PolicyFromValues(values)
	if err != nil {
		s.logger.Error("GetPolicy: stored policy is corrupted: %v", err)
		return domain.Policy{}, fmt.Errorf("%w: Get - stored policy: %v", ErrInternal, err)
	}

	return p, nil
}

// Replace перезаписывает только переданные ключи
// Неизвестный ключ, нечитаемое значение или противоречивая итоговая политика -> domain.ErrValidation.
// Чтение, проверка и запись идут в одной сериализуемой транзакции, чтобы два параллельных
// обновления не дали в сумме противоречивую политику (например min > max).
func (s *Service) Replace(ctx context.Context, values map[string]string) (domain.Policy, error) {
	s.logger.Info("ReplacePolicy: keys=%d", len(values))

	if len(values) == 0 {
		return domain.Policy{}, fmt.Errorf("%w: no policy keys provided", domain.ErrValidation)
	}

	var result domain.Policy

	err := s.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 1. Текущее состояние
		stored, err := s.repo.GetAll(txCtx)
		if err != nil {
			return fmt.Errorf("%w: Replace - load policy: %w", ErrInternal, err)
		}

		current, err := domain.PolicyFromValues(stored)
		if err != nil {
			return fmt.Errorf("%w: Replace - stored policy: %v", ErrInternal, err)
		}

		// 2. Слияние и проверка
		next, err := current.Apply(values)
		if err != nil {
			return err
		}

		// 3. Пишем только переданные ключи в каноническом виде
		canonical := next.Values()
		toWrite := make(map[string]string, len(values))
		for key := range values {
			toWrite[key] = canonical[key]
		}

		if err := s.repo.Upsert(txCtx, toWrite); err != nil {
			return fmt.Errorf("%w: Replace - upsert: %w", ErrInternal, err)
		}

		result = next
		return nil
	})

	if err != nil {
		s.logger.Warn("ReplacePolicy: rejected: %v", err)
		return domain.Policy{}, err
	}

	s.logger.Info("ReplacePolicy: policy updated: open=%s close=%s interval=%d rolling=%d party=%d..%d guests=%d",
		result.OpeningTime, result.ClosingTime, result.SlotIntervalMinutes, result.RollingDays,
		result.MinPartySize, result.MaxPartySize, result.DailyMaxGuests)

	return result, nil
}
