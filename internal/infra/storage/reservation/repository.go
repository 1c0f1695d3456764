package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

const (
	tableReservations = "reservations"
	tableDays         = "reservation_days"

	activeSlotIndex = "reservations_active_slot_uidx"

	codeUniqueViolation pq.ErrorCode = "23505"
)

var columns = []string{
	"id",
	"name",
	"email",
	"phone",
	"reservation_date",
	"reservation_time",
	"party_size",
	"status",
	"email_status",
	"email_error",
	"email_sent_at",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория броней
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую бронь
// Если в контексте есть транзакция, вставка выполняется в ней.
// Нарушение уникального индекса активных броней возвращается как ErrDuplicateActive.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableReservations).
		Columns(
			"name",
			"email",
			"phone",
			"reservation_date",
			"reservation_time",
			"party_size",
			"status",
			"email_status",
		).
		Values(
			res.Name,
			res.Email,
			res.Phone,
			domain.FormatDate(res.Date),
			res.Time,
			res.PartySize,
			res.Status,
			res.EmailStatus,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID,
		&createdAt,
		&updatedAt,
	)

	if isActiveSlotViolation(err) {
		return nil, ErrDuplicateActive
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return res, nil
}

// GetByID получает бронь по ID
// Внутри транзакции строка блокируется (FOR UPDATE) до конца транзакции.
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).
		From(tableReservations).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	res, err := scanReservation(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan reservation: %w", ErrScanRow, err)
	}

	return res, nil
}

// List получает брони по фильтру
// Для конкретной даты сортирует по времени, иначе по дате и времени.
func (r *Repository) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(columns...).From(tableReservations)

	if filter.Email != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"email": domain.NormalizeEmail(*filter.Email)})
	}
	if filter.Date != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"reservation_date": domain.FormatDate(*filter.Date)})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"status": domain.StatusCancelled})
	}

	if filter.Date != nil {
		selectBuilder = selectBuilder.OrderBy("reservation_time ASC", "id ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("reservation_date DESC", "reservation_time DESC", "id DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanReservations(rows)
}

// ListByDate получает все брони на дату, включая отмененные
func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]*domain.Reservation, error) {
	return r.List(ctx, domain.ReservationFilter{Date: &date, IncludeInactive: true})
}

// ListByEmail получает все брони гостя, включая отмененные
func (r *Repository) ListByEmail(ctx context.Context, email string) ([]*domain.Reservation, error) {
	return r.List(ctx, domain.ReservationFilter{Email: &email, IncludeInactive: true})
}

// SumPartySizeForDate возвращает текущую загрузку даты: сумму гостей по неотмененным броням
// excludeID исключает бронь из суммы (при изменении брони её прежний вклад не учитывается)
func (r *Repository) SumPartySizeForDate(ctx context.Context, date time.Time, excludeID *int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("COALESCE(SUM(party_size), 0)").
		From(tableReservations).
		Where(squirrel.Eq{"reservation_date": domain.FormatDate(date)}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled})

	if excludeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *excludeID})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: SumPartySizeForDate - build select query: %v", ErrBuildQuery, err)
	}

	var load int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&load); err != nil {
		return 0, fmt.Errorf("%w: SumPartySizeForDate - scan load: %w", ErrScanRow, err)
	}

	return load, nil
}

// ExistsActive проверяет, есть ли неотмененная бронь на (email, дата, время)
func (r *Repository) ExistsActive(
	ctx context.Context,
	email string,
	date time.Time,
	t types.TimeString,
	excludeID *int64,
) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	inner := psqlbuilder.Select("1").
		From(tableReservations).
		Where(squirrel.Eq{
			"email":            domain.NormalizeEmail(email),
			"reservation_date": domain.FormatDate(date),
			"reservation_time": t,
		}).
		Where(squirrel.NotEq{"status": domain.StatusCancelled})

	if excludeID != nil {
		inner = inner.Where(squirrel.NotEq{"id": *excludeID})
	}

	query, args, err := psqlbuilder.Select().
		Column(squirrel.Expr("EXISTS(?)", inner)).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ExistsActive - build select query: %v", ErrBuildQuery, err)
	}

	var exists bool
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: ExistsActive - scan result: %w", ErrScanRow, err)
	}

	return exists, nil
}

// LockDate берет блокировку строки reservation_days для даты до конца текущей транзакции.
// Все приемы броней на одну дату выстраиваются в очередь на этой строке.
func (r *Repository) LockDate(ctx context.Context, date time.Time) error {
	tx, ok := dbmetrics.TxFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}

	day := domain.FormatDate(date)

	insertQuery, insertArgs, err := psqlbuilder.Insert(tableDays).
		Columns("reservation_date").
		Values(day).
		Suffix("ON CONFLICT (reservation_date) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockDate - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%w: LockDate - ensure day row: %w", ErrExecQuery, err)
	}

	lockQuery, lockArgs, err := psqlbuilder.Select("reservation_date").
		From(tableDays).
		Where(squirrel.Eq{"reservation_date": day}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockDate - build lock query: %v", ErrBuildQuery, err)
	}

	var locked time.Time
	if err := tx.QueryRowContext(ctx, lockQuery, lockArgs...).Scan(&locked); err != nil {
		return fmt.Errorf("%w: LockDate - lock day row: %w", ErrExecQuery, err)
	}

	return nil
}

// UpdateDetails обновляет изменяемые поля брони: контакты, дату, время и размер компании
func (r *Repository) UpdateDetails(ctx context.Context, res *domain.Reservation) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableReservations).
		Set("name", res.Name).
		Set("phone", res.Phone).
		Set("reservation_date", domain.FormatDate(res.Date)).
		Set("reservation_time", res.Time).
		Set("party_size", res.PartySize).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": res.ID}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateDetails - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if isActiveSlotViolation(err) {
		return ErrDuplicateActive
	}
	if err != nil {
		return fmt.Errorf("%w: UpdateDetails - execute update: %w", ErrExecQuery, err)
	}

	return requireAffected(result, "UpdateDetails")
}

// UpdateStatus обновляет статус брони
// При переходе в cancelled проставляется cancelled_at.
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableReservations).
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if status == domain.StatusCancelled {
		updateBuilder = updateBuilder.Set("cancelled_at", squirrel.Expr("NOW()"))
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %w", ErrExecQuery, err)
	}

	return requireAffected(result, "UpdateStatus")
}

// TransitionEmailStatus атомарно переводит статус письма from -> to.
// Возвращает false, если статус уже изменил кто-то другой (compare-and-set).
// reason сохраняется как email_error; переход в sent проставляет email_sent_at и очищает ошибку.
func (r *Repository) TransitionEmailStatus(
	ctx context.Context,
	id int64,
	from, to domain.EmailStatus,
	reason *string,
) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update(tableReservations).
		Set("email_status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "email_status": from})

	switch to {
	case domain.EmailSent:
		updateBuilder = updateBuilder.
			Set("email_error", nil).
			Set("email_sent_at", squirrel.Expr("NOW()"))
	case domain.EmailFailed:
		updateBuilder = updateBuilder.Set("email_error", reason)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: TransitionEmailStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: TransitionEmailStatus - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: TransitionEmailStatus - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected == 1, nil
}

// ReclaimEmailPending забирает зависшую доставку: обновляет updated_at, только если письмо
// все еще pending и строка не менялась с staleBefore. Возвращает false, если ее забрал кто-то другой.
func (r *Repository) ReclaimEmailPending(ctx context.Context, id int64, staleBefore time.Time) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableReservations).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "email_status": domain.EmailPending}).
		Where(squirrel.Lt{"updated_at": staleBefore}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ReclaimEmailPending - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: ReclaimEmailPending - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: ReclaimEmailPending - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected == 1, nil
}

// CompleteBefore переводит подтвержденные брони с датой раньше before в completed
func (r *Repository) CompleteBefore(ctx context.Context, before time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableReservations).
		Set("status", domain.StatusCompleted).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.Lt{"reservation_date": domain.FormatDate(before)}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: CompleteBefore - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CompleteBefore - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: CompleteBefore - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&res.ID,
		&res.Name,
		&res.Email,
		&res.Phone,
		&res.Date,
		&res.Time,
		&res.PartySize,
		&res.Status,
		&res.EmailStatus,
		&res.EmailError,
		&res.EmailSentAt,
		&res.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.Date = domain.DateOf(res.Date)
	res.CreatedAt = createdAt.Time
	res.UpdatedAt = updatedAt.Time

	return &res, nil
}

// scanReservations сканирует результаты запроса в слайс броней
func scanReservations(rows *sql.Rows) ([]*domain.Reservation, error) {
	reservations := make([]*domain.Reservation, 0)

	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanReservations - scan row: %w", ErrScanRow, err)
		}
		reservations = append(reservations, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanReservations - rows error: %w", ErrScanRow, err)
	}

	return reservations, nil
}

func requireAffected(result sql.Result, op string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func isActiveSlotViolation(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == codeUniqueViolation && pqErr.Constraint == activeSlotIndex
}
