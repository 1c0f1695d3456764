package notification

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

const reasonDisabled = "notifications disabled"

// DisabledNotifier используется, когда отправка выключена в конфигурации.
// Письмо сразу помечается failed, и после включения его можно отправить через Retry.
type DisabledNotifier struct {
	repo    ReservationRepository
	metrics Metrics
	logger  Logger
}

// NewDisabledNotifier создает notifier для выключенной отправки
func NewDisabledNotifier(repo ReservationRepository, metrics Metrics, logger Logger) *DisabledNotifier {
	return &DisabledNotifier{repo: repo, metrics: metrics, logger: logger}
}

func (n *DisabledNotifier) Enqueue(ctx context.Context, id int64) {
	reason := reasonDisabled
	ok, err := n.repo.TransitionEmailStatus(context.WithoutCancel(ctx), id, domain.EmailPending, domain.EmailFailed, &reason)
	if err != nil {
		n.logger.Error("Notification: failed to mark id=%d as failed: %v", id, err)
		return
	}
	if ok {
		n.metrics.IncNotification(string(domain.EmailFailed))
	}
}
