package reservation

import "errors"

var (
	// ErrReservationNotFound возвращается, когда бронь не найдена
	ErrReservationNotFound = errors.New("reservation.repository: reservation not found")

	// ErrDuplicateActive возвращается при нарушении уникальности активной брони (email, дата, время)
	ErrDuplicateActive = errors.New("reservation.repository: active reservation already exists")

	// ErrNoTransaction возвращается, когда операция требует транзакцию в контексте
	ErrNoTransaction = errors.New("reservation.repository: transaction required")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("reservation.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("reservation.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("reservation.repository: failed to scan row")
)
