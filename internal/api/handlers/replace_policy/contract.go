package replace_policy

import (
	"context"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

type PolicyService interface {
	Replace(ctx context.Context, values map[string]string) (domain.Policy, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
