// Package txmanager runs functions inside database transactions propagated through context.
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/m04kA/SMC-ReservationService/pkg/dbmetrics"
)

const (
	defaultMaxAttempts = 5
	retryBaseDelay     = 10 * time.Millisecond
)

// SQLSTATE codes that make a transaction safe to replay from the start.
const (
	codeSerializationFailure pq.ErrorCode = "40001"
	codeDeadlockDetected     pq.ErrorCode = "40P01"
)

var (
	// ErrBeginTx is returned when a transaction cannot be opened
	ErrBeginTx = errors.New("txmanager: begin transaction")

	// ErrCommitTx is returned when commit fails with a non-retryable error
	ErrCommitTx = errors.New("txmanager: commit transaction")

	// ErrRetriesExhausted is returned when every attempt hit a serialization failure or deadlock
	ErrRetriesExhausted = errors.New("txmanager: transaction retries exhausted")
)

// TxBeginner opens transactions. *dbmetrics.DB implements it.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager runs functions inside transactions.
// Nested calls reuse the transaction already present in the context.
type TransactionManager struct {
	db          TxBeginner
	maxAttempts int
}

// NewTransactionManager creates a manager with the default retry budget.
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db, maxAttempts: defaultMaxAttempts}
}

// WithMaxAttempts overrides how many times a transaction is attempted.
func (m *TransactionManager) WithMaxAttempts(n int) *TransactionManager {
	if n > 0 {
		m.maxAttempts = n
	}
	return m
}

// Do runs fn in a READ COMMITTED transaction and replays it on deadlocks.
// Every statement sees rows committed before it started, so a row lock taken
// first (SELECT ... FOR UPDATE) orders the reads that follow it.
// fn must be safe to call more than once.
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.retry(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// DoReadOnly runs fn in a read-only transaction.
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted, ReadOnly: true}, fn)
}

// DoSerializable runs fn in a SERIALIZABLE transaction and replays it on
// serialization failures and deadlocks. fn must be safe to call more than once.
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.retry(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

func (m *TransactionManager) retry(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	var err error
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		err = m.run(ctx, opts, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}

		delay := time.Duration(attempt) * retryBaseDelay
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
}

func (m *TransactionManager) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		if IsRetryable(err) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}

	return nil
}

// IsRetryable reports whether err carries a serialization failure or deadlock.
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == codeSerializationFailure || pqErr.Code == codeDeadlockDetected
}
