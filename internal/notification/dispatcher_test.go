package notification

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/integrations/sendgrid"
	"github.com/m04kA/SMC-ReservationService/internal/testutil"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []sendgrid.Message
}

func (m *fakeMailer) Send(ctx context.Context, msg sendgrid.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *fakeMailer) Sent() []sendgrid.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sendgrid.Message(nil), m.sent...)
}

type blockingMailer struct {
	entered chan struct{}
	release chan struct{}
}

func (m *blockingMailer) Send(ctx context.Context, msg sendgrid.Message) error {
	close(m.entered)
	<-m.release
	return nil
}

type nopMetrics struct{}

func (nopMetrics) IncNotification(string) {}

func newDispatcher(store *testutil.Store, mailer Mailer, queue Queue) *Dispatcher {
	return NewDispatcher(store, mailer, queue, nopMetrics{}, logger.NewWithWriter(io.Discard), Config{
		Workers:     1,
		SendTimeout: time.Second,
	})
}

func seed(store *testutil.Store, emailStatus domain.EmailStatus) *domain.Reservation {
	return store.Seed(domain.Reservation{
		Name:        "Anna",
		Email:       "anna@example.com",
		Date:        time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC),
		Time:        types.MustTimeString("19:30"),
		PartySize:   4,
		Status:      domain.StatusPending,
		EmailStatus: emailStatus,
		UpdatedAt:   time.Now(),
	})
}

// brokenLoadStore отдает ошибку при загрузке брони
type brokenLoadStore struct {
	*testutil.Store
	err error
}

func (s *brokenLoadStore) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	return nil, s.err
}

func TestNotifyConfirmed_Sent(t *testing.T) {
	store := testutil.NewStore()
	mailer := &fakeMailer{}
	d := newDispatcher(store, mailer, NewMemoryQueue(1, time.Millisecond))
	res := seed(store, domain.EmailPending)

	result := d.NotifyConfirmed(context.Background(), res)

	assert.True(t, result.Sent)
	assert.False(t, result.AlreadySent)
	assert.NotEmpty(t, result.AttemptID)
	assert.Equal(t, domain.EmailSent, result.Status)

	stored, _ := store.Get(res.ID)
	assert.Equal(t, domain.EmailSent, stored.EmailStatus)
	assert.NotNil(t, stored.EmailSentAt)

	require.Len(t, mailer.Sent(), 1)
	assert.Equal(t, "anna@example.com", mailer.Sent()[0].ToEmail)
	assert.Contains(t, mailer.Sent()[0].Subject, "2026-06-03 at 19:30")
}

func TestNotifyConfirmed_FailureKeepsReservation(t *testing.T) {
	store := testutil.NewStore()
	mailer := &fakeMailer{err: errors.New("smtp timeout")}
	d := newDispatcher(store, mailer, NewMemoryQueue(1, time.Millisecond))
	res := seed(store, domain.EmailPending)

	result := d.NotifyConfirmed(context.Background(), res)

	assert.False(t, result.Sent)
	assert.Equal(t, domain.EmailFailed, result.Status)
	assert.Equal(t, "smtp timeout", result.Reason)

	stored, _ := store.Get(res.ID)
	assert.Equal(t, domain.EmailFailed, stored.EmailStatus)
	require.NotNil(t, stored.EmailError)
	assert.Equal(t, "smtp timeout", *stored.EmailError)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestNotifyConfirmed_AlreadySent(t *testing.T) {
	store := testutil.NewStore()
	mailer := &fakeMailer{}
	d := newDispatcher(store, mailer, NewMemoryQueue(1, time.Millisecond))
	res := seed(store, domain.EmailSent)

	result := d.NotifyConfirmed(context.Background(), res)

	assert.True(t, result.Sent)
	assert.True(t, result.AlreadySent)
	assert.Empty(t, mailer.Sent())
}

func TestRetry(t *testing.T) {
	t.Run("sent is a no-op", func(t *testing.T) {
		store := testutil.NewStore()
		mailer := &fakeMailer{}
		d := newDispatcher(store, mailer, NewMemoryQueue(1, time.Millisecond))
		res := seed(store, domain.EmailSent)

		result, err := d.Retry(context.Background(), res.ID)
		require.NoError(t, err)
		assert.True(t, result.AlreadySent)
		assert.Empty(t, mailer.Sent())
	})

	t.Run("pending is in progress", func(t *testing.T) {
		store := testutil.NewStore()
		d := newDispatcher(store, &fakeMailer{}, NewMemoryQueue(1, time.Millisecond))
		res := seed(store, domain.EmailPending)

		_, err := d.Retry(context.Background(), res.ID)
		require.ErrorIs(t, err, domain.ErrDeliveryInProgress)
	})

	t.Run("failed is delivered again", func(t *testing.T) {
		store := testutil.NewStore()
		mailer := &fakeMailer{}
		d := newDispatcher(store, mailer, NewMemoryQueue(1, time.Millisecond))
		res := seed(store, domain.EmailFailed)

		result, err := d.Retry(context.Background(), res.ID)
		require.NoError(t, err)
		assert.True(t, result.Sent)
		assert.Len(t, mailer.Sent(), 1)

		stored, _ := store.Get(res.ID)
		assert.Equal(t, domain.EmailSent, stored.EmailStatus)
	})

	t.Run("stale pending is reclaimed", func(t *testing.T) {
		store := testutil.NewStore()
		mailer := &fakeMailer{}
		d := newDispatcher(store, mailer, NewMemoryQueue(1, time.Millisecond))
		res := store.Seed(domain.Reservation{
			Name: "Anna", Email: "anna@example.com", PartySize: 2,
			Status: domain.StatusConfirmed, EmailStatus: domain.EmailPending,
			UpdatedAt: time.Now().Add(-time.Hour),
		})

		result, err := d.Retry(context.Background(), res.ID)
		require.NoError(t, err)
		assert.True(t, result.Sent)
		assert.Len(t, mailer.Sent(), 1)

		stored, _ := store.Get(res.ID)
		assert.Equal(t, domain.EmailSent, stored.EmailStatus)
	})

	t.Run("unknown reservation", func(t *testing.T) {
		d := newDispatcher(testutil.NewStore(), &fakeMailer{}, NewMemoryQueue(1, time.Millisecond))

		_, err := d.Retry(context.Background(), 42)
		require.ErrorIs(t, err, domain.ErrNotFoundOrUnauthorized)
	})

	t.Run("cancelled reservation", func(t *testing.T) {
		store := testutil.NewStore()
		d := newDispatcher(store, &fakeMailer{}, NewMemoryQueue(1, time.Millisecond))
		res := store.Seed(domain.Reservation{
			Name: "Anna", Email: "anna@example.com", PartySize: 2,
			Status: domain.StatusCancelled, EmailStatus: domain.EmailFailed,
		})

		_, err := d.Retry(context.Background(), res.ID)
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestRetry_ConcurrentLoserInProgress(t *testing.T) {
	store := testutil.NewStore()
	mailer := &blockingMailer{entered: make(chan struct{}), release: make(chan struct{})}
	d := newDispatcher(store, mailer, NewMemoryQueue(1, time.Millisecond))
	res := seed(store, domain.EmailFailed)

	done := make(chan DeliveryResult)
	go func() {
		result, _ := d.Retry(context.Background(), res.ID)
		done <- result
	}()

	<-mailer.entered
	_, err := d.Retry(context.Background(), res.ID)
	require.ErrorIs(t, err, domain.ErrDeliveryInProgress)

	close(mailer.release)
	assert.True(t, (<-done).Sent)
}

func TestEnqueue_FullQueueMarksFailed(t *testing.T) {
	store := testutil.NewStore()
	d := newDispatcher(store, &fakeMailer{}, NewMemoryQueue(1, time.Millisecond))
	first := seed(store, domain.EmailPending)
	second := store.Seed(domain.Reservation{
		Name: "Boris", Email: "boris@example.com", PartySize: 2,
		Status: domain.StatusPending, EmailStatus: domain.EmailPending,
	})

	d.Enqueue(context.Background(), first.ID)
	d.Enqueue(context.Background(), second.ID)

	stored, _ := store.Get(first.ID)
	assert.Equal(t, domain.EmailPending, stored.EmailStatus)

	stored, _ = store.Get(second.ID)
	assert.Equal(t, domain.EmailFailed, stored.EmailStatus)
	require.NotNil(t, stored.EmailError)
	assert.Contains(t, *stored.EmailError, ErrQueueFull.Error())
}

func TestDispatcher_WorkersDeliverQueued(t *testing.T) {
	store := testutil.NewStore()
	mailer := &fakeMailer{}
	d := newDispatcher(store, mailer, NewMemoryQueue(10, 10*time.Millisecond))
	res := seed(store, domain.EmailPending)

	d.Start(context.Background())
	defer d.Stop()

	d.Enqueue(context.Background(), res.ID)

	require.Eventually(t, func() bool {
		stored, _ := store.Get(res.ID)
		return stored.EmailStatus == domain.EmailSent
	}, 2*time.Second, 10*time.Millisecond)
	assert.Len(t, mailer.Sent(), 1)
}

func TestDispatcher_StopMarksQueuedFailed(t *testing.T) {
	store := testutil.NewStore()
	mailer := &fakeMailer{}
	res := seed(store, domain.EmailPending)

	// Очередь в памяти не переживает остановку процесса
	stopped := newDispatcher(store, mailer, NewMemoryQueue(10, time.Millisecond))
	stopped.Enqueue(context.Background(), res.ID)
	stopped.Stop()

	stored, _ := store.Get(res.ID)
	assert.Equal(t, domain.EmailFailed, stored.EmailStatus)
	require.NotNil(t, stored.EmailError)
	assert.Contains(t, *stored.EmailError, "stopped")
	assert.Empty(t, mailer.Sent())

	restarted := newDispatcher(store, mailer, NewMemoryQueue(10, time.Millisecond))
	result, err := restarted.Retry(context.Background(), res.ID)
	require.NoError(t, err)
	assert.True(t, result.Sent)
	assert.Len(t, mailer.Sent(), 1)
}

func TestDispatcher_WorkerLoadErrorMarksFailed(t *testing.T) {
	store := testutil.NewStore()
	res := seed(store, domain.EmailPending)
	broken := &brokenLoadStore{Store: store, err: errors.New("connection refused")}

	d := NewDispatcher(broken, &fakeMailer{}, NewMemoryQueue(10, 10*time.Millisecond), nopMetrics{},
		logger.NewWithWriter(io.Discard), Config{Workers: 1, SendTimeout: time.Second})
	d.Start(context.Background())
	defer d.Stop()

	d.Enqueue(context.Background(), res.ID)

	require.Eventually(t, func() bool {
		stored, _ := store.Get(res.ID)
		return stored.EmailStatus == domain.EmailFailed
	}, 2*time.Second, 10*time.Millisecond)

	stored, _ := store.Get(res.ID)
	require.NotNil(t, stored.EmailError)
	assert.Contains(t, *stored.EmailError, "connection refused")
}

func TestDisabledNotifier_MarksFailedForRetry(t *testing.T) {
	store := testutil.NewStore()
	res := seed(store, domain.EmailPending)

	NewDisabledNotifier(store, nopMetrics{}, logger.NewWithWriter(io.Discard)).Enqueue(context.Background(), res.ID)

	stored, _ := store.Get(res.ID)
	assert.Equal(t, domain.EmailFailed, stored.EmailStatus)
	require.NotNil(t, stored.EmailError)
	assert.Equal(t, reasonDisabled, *stored.EmailError)

	mailer := &fakeMailer{}
	result, err := newDispatcher(store, mailer, NewMemoryQueue(1, time.Millisecond)).Retry(context.Background(), res.ID)
	require.NoError(t, err)
	assert.True(t, result.Sent)
	assert.Len(t, mailer.Sent(), 1)
}
