package policy

import (
	"context"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
	"github.com/m04kA/SMC-ReservationService/pkg/psqlbuilder"
)

const tablePolicy = "booking_policy"

// Repository репозиторий для хранения политики бронирования в виде ключ-значение
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория политики
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetAll возвращает все сохраненные пары ключ-значение
// Отсутствующие ключи не подставляются: значения по умолчанию применяет сервис.
func (r *Repository) GetAll(ctx context.Context) (map[string]string, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("key", "value").
		From(tablePolicy).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetAll - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetAll - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: GetAll - scan row: %w", ErrScanRow, err)
		}
		values[key] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetAll - rows error: %w", ErrScanRow, err)
	}

	return values, nil
}

// Upsert записывает переданные ключи одним запросом, остальные ключи не трогает
func (r *Repository) Upsert(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	insertBuilder := psqlbuilder.Insert(tablePolicy).Columns("key", "value")
	for _, key := range keys {
		insertBuilder = insertBuilder.Values(key, values[key])
	}

	query, args, err := insertBuilder.
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Upsert - execute insert: %w", ErrExecQuery, err)
	}

	return nil
}
