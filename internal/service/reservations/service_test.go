package reservations

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/internal/testutil"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

var (
	now   = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	today = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
)

func setup(t *testing.T) (*Service, *testutil.Store) {
	t.Helper()

	store := testutil.NewStore()
	store.Now = func() time.Time { return now }

	svc := NewService(store, testutil.NewTxManager(store), testutil.FixedClock{T: now}, logger.NewWithWriter(io.Discard))
	return svc, store
}

func seed(store *testutil.Store, email string, date time.Time, size int, status domain.ReservationStatus) *domain.Reservation {
	return store.Seed(domain.Reservation{
		Name:      "Guest",
		Email:     email,
		Date:      date,
		Time:      types.MustTimeString("19:00"),
		PartySize: size,
		Status:    status,
	})
}

func TestService_GetByID_Ownership(t *testing.T) {
	svc, store := setup(t)
	res := seed(store, "owner@example.com", today, 2, domain.StatusPending)

	got, err := svc.GetByID(context.Background(), res.ID, "Owner@Example.com")
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, "2026-06-01", got.Date)
	assert.Equal(t, "19:00", got.Time)

	_, err = svc.GetByID(context.Background(), res.ID, "stranger@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFoundOrUnauthorized)

	_, err = svc.GetByID(context.Background(), res.ID+100, "owner@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFoundOrUnauthorized)
}

func TestService_Cancel_FreesCapacity(t *testing.T) {
	svc, store := setup(t)
	res := seed(store, "owner@example.com", today, 4, domain.StatusConfirmed)
	seed(store, "other@example.com", today, 3, domain.StatusPending)

	require.Equal(t, 7, store.Load(today))

	got, err := svc.Cancel(context.Background(), res.ID, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCancelled), got.Status)
	assert.NotNil(t, got.CancelledAt)

	assert.Equal(t, 3, store.Load(today))

	// запись не удаляется
	stored, ok := store.Get(res.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
}

func TestService_Cancel_Rejections(t *testing.T) {
	svc, store := setup(t)
	cancelled := seed(store, "owner@example.com", today, 2, domain.StatusCancelled)
	completed := seed(store, "owner@example.com", today.AddDate(0, 0, -1), 2, domain.StatusCompleted)
	active := seed(store, "owner@example.com", today.AddDate(0, 0, 1), 2, domain.StatusPending)

	_, err := svc.Cancel(context.Background(), cancelled.ID, "owner@example.com")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	_, err = svc.Cancel(context.Background(), completed.ID, "owner@example.com")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	_, err = svc.Cancel(context.Background(), active.ID, "thief@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFoundOrUnauthorized)

	stored, _ := store.Get(active.ID)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestService_UpdateStatus(t *testing.T) {
	svc, store := setup(t)
	res := seed(store, "owner@example.com", today, 2, domain.StatusPending)

	got, err := svc.UpdateStatus(context.Background(), res.ID, "confirmed")
	require.NoError(t, err)
	assert.Equal(t, "confirmed", got.Status)

	_, err = svc.UpdateStatus(context.Background(), res.ID, "pending")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	_, err = svc.UpdateStatus(context.Background(), res.ID, "no_show")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.UpdateStatus(context.Background(), 999, "confirmed")
	assert.ErrorIs(t, err, domain.ErrNotFoundOrUnauthorized)

	_, err = svc.UpdateStatus(context.Background(), res.ID, "cancelled")
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), res.ID, "confirmed")
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)
}

func TestService_ListByDate(t *testing.T) {
	svc, store := setup(t)
	seed(store, "a@example.com", today, 2, domain.StatusPending)
	seed(store, "b@example.com", today, 5, domain.StatusCancelled)
	seed(store, "c@example.com", today.AddDate(0, 0, 1), 4, domain.StatusPending)

	got, err := svc.ListByDate(context.Background(), today)
	require.NoError(t, err)
	assert.Equal(t, "2026-06-01", got.Date)
	assert.Equal(t, 2, got.Load)
	assert.Len(t, got.Reservations, 2)
}

func TestService_ListByEmail(t *testing.T) {
	svc, store := setup(t)
	seed(store, "a@example.com", today, 2, domain.StatusPending)
	seed(store, "a@example.com", today.AddDate(0, 0, 2), 2, domain.StatusCancelled)
	seed(store, "b@example.com", today, 2, domain.StatusPending)

	got, err := svc.ListByEmail(context.Background(), " A@example.com")
	require.NoError(t, err)
	assert.Len(t, got.Reservations, 2)

	_, err = svc.ListByEmail(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestService_CompletePast(t *testing.T) {
	svc, store := setup(t)
	past := seed(store, "a@example.com", today.AddDate(0, 0, -2), 2, domain.StatusConfirmed)
	pendingPast := seed(store, "b@example.com", today.AddDate(0, 0, -2), 2, domain.StatusPending)
	current := seed(store, "c@example.com", today, 2, domain.StatusConfirmed)

	n, err := svc.CompletePast(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	r, _ := store.Get(past.ID)
	assert.Equal(t, domain.StatusCompleted, r.Status)
	r, _ = store.Get(pendingPast.ID)
	assert.Equal(t, domain.StatusPending, r.Status)
	r, _ = store.Get(current.ID)
	assert.Equal(t, domain.StatusConfirmed, r.Status)
}
