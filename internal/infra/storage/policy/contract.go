package policy

import "github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"

// DBExecutor интерфейс исполнителя запросов (БД или транзакция)
type DBExecutor = dbmetrics.DBExecutor
