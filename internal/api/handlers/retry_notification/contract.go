package retry_notification

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/notification"
)

type Dispatcher interface {
	Retry(ctx context.Context, id int64) (notification.DeliveryResult, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
