package notification

import (
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
)

// Config настройки диспетчера
type Config struct {
	Workers       int           // число воркеров
	SendTimeout   time.Duration // таймаут одной отправки
	RatePerSecond float64       // лимит писем в секунду, 0 без ограничения
	Burst         int
	RetryBackoff  time.Duration // пауза воркера после ошибки очереди
	StaleAfter    time.Duration // через сколько pending без изменений Retry может забрать письмо
}

// DefaultConfig настройки по умолчанию
func DefaultConfig() Config {
	return Config{
		Workers:       2,
		SendTimeout:   10 * time.Second,
		RatePerSecond: 10,
		Burst:         20,
		RetryBackoff:  time.Second,
		StaleAfter:    5 * time.Minute,
	}
}

// DeliveryResult итог одной попытки доставки
type DeliveryResult struct {
	ReservationID int64
	AttemptID     string
	Status        domain.EmailStatus // статус письма после попытки
	Sent          bool
	AlreadySent   bool // письмо было отправлено раньше, транспорт не вызывался
	Reason        string
}
