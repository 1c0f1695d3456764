// Package testutil provides an in-memory reservation and policy store for use-case tests.
//
// Transactions are serialized: TxManager holds a global lock for the duration of the
// callback and restores a snapshot when the callback fails, which gives the same
// all-or-nothing and one-writer-per-date guarantees the Postgres store provides.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	reservationRepo "github.com/m04kA/SMC-ReservationService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

type txKey struct{}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(txKey{}).(bool)
	return v
}

// Store is an in-memory reservations table plus policy key-value set.
type Store struct {
	mu           sync.Mutex
	reservations map[int64]domain.Reservation
	policy       map[string]string
	nextID       int64

	// Now stamps created_at, updated_at, cancelled_at and email_sent_at.
	Now func() time.Time

	// FailCreate, when set, is returned by Create instead of inserting.
	FailCreate error

	// SkipExistsCheck makes ExistsActive always report false, leaving duplicate
	// detection to the unique index emulated in Create.
	SkipExistsCheck bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		reservations: make(map[int64]domain.Reservation),
		policy:       make(map[string]string),
		Now:          time.Now,
	}
}

// TxManager serializes transactions over a Store.
type TxManager struct {
	store *Store
	txMu  sync.Mutex
}

// NewTxManager creates a transaction manager over s.
func NewTxManager(s *Store) *TxManager {
	return &TxManager{store: s}
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}

	m.txMu.Lock()
	defer m.txMu.Unlock()

	snapshot := m.store.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		m.store.restore(snapshot)
		return err
	}
	return nil
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

type snapshot struct {
	reservations map[int64]domain.Reservation
	policy       map[string]string
	nextID       int64
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		reservations: make(map[int64]domain.Reservation, len(s.reservations)),
		policy:       make(map[string]string, len(s.policy)),
		nextID:       s.nextID,
	}
	for id, r := range s.reservations {
		snap.reservations[id] = r
	}
	for k, v := range s.policy {
		snap.policy[k] = v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reservations = snap.reservations
	s.policy = snap.policy
	s.nextID = snap.nextID
}

// Seed inserts a reservation as-is, assigning an id. Intended for test setup.
func (s *Store) Seed(r domain.Reservation) *domain.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	r.ID = s.nextID
	r.Email = domain.NormalizeEmail(r.Email)
	if r.EmailStatus == "" {
		r.EmailStatus = domain.EmailPending
	}
	if r.Status == "" {
		r.Status = domain.StatusPending
	}
	s.reservations[r.ID] = r
	return &r
}

// SetPolicy overwrites policy keys. Intended for test setup.
func (s *Store) SetPolicy(values map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range values {
		s.policy[k] = v
	}
}

// Count returns the number of stored reservations.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reservations)
}

// Get returns a copy of a stored reservation.
func (s *Store) Get(id int64) (domain.Reservation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	return r, ok
}

// Load returns the active guest total for a date.
func (s *Store) Load(date time.Time) int {
	load, _ := s.SumPartySizeForDate(context.Background(), date, nil)
	return load
}

// --- reservation repository ---

func (s *Store) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailCreate != nil {
		return nil, s.FailCreate
	}
	if s.activeSlotTaken(res.Email, res.Date, res.Time, 0) {
		return nil, reservationRepo.ErrDuplicateActive
	}

	now := s.Now()
	s.nextID++
	res.ID = s.nextID
	res.CreatedAt = now
	res.UpdatedAt = now
	s.reservations[res.ID] = *res

	return res, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	return &r, nil
}

func (s *Store) List(ctx context.Context, filter domain.ReservationFilter) ([]*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Reservation, 0)
	for _, r := range s.reservations {
		if filter.Email != nil && r.Email != domain.NormalizeEmail(*filter.Email) {
			continue
		}
		if filter.Date != nil && !r.Date.Equal(domain.DateOf(*filter.Date)) {
			continue
		}
		if filter.Status != nil && r.Status != *filter.Status {
			continue
		}
		if filter.Status == nil && !filter.IncludeInactive && !r.IsActive() {
			continue
		}
		r := r
		result = append(result, &r)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		if !result[i].Time.Equal(result[j].Time) {
			return result[i].Time.IsBefore(result[j].Time)
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

func (s *Store) ListByDate(ctx context.Context, date time.Time) ([]*domain.Reservation, error) {
	return s.List(ctx, domain.ReservationFilter{Date: &date, IncludeInactive: true})
}

func (s *Store) ListByEmail(ctx context.Context, email string) ([]*domain.Reservation, error) {
	return s.List(ctx, domain.ReservationFilter{Email: &email, IncludeInactive: true})
}

func (s *Store) SumPartySizeForDate(ctx context.Context, date time.Time, excludeID *int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := domain.DateOf(date)
	load := 0
	for _, r := range s.reservations {
		if !r.IsActive() || !r.Date.Equal(day) {
			continue
		}
		if excludeID != nil && r.ID == *excludeID {
			continue
		}
		load += r.PartySize
	}
	return load, nil
}

func (s *Store) ExistsActive(
	ctx context.Context,
	email string,
	date time.Time,
	t types.TimeString,
	excludeID *int64,
) (bool, error) {
	if s.SkipExistsCheck {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var exclude int64
	if excludeID != nil {
		exclude = *excludeID
	}
	return s.activeSlotTaken(domain.NormalizeEmail(email), date, t, exclude), nil
}

func (s *Store) LockDate(ctx context.Context, date time.Time) error {
	if !inTx(ctx) {
		return reservationRepo.ErrNoTransaction
	}
	return nil
}

func (s *Store) UpdateDetails(ctx context.Context, res *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.reservations[res.ID]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	if stored.IsActive() && s.activeSlotTaken(stored.Email, res.Date, res.Time, res.ID) {
		return reservationRepo.ErrDuplicateActive
	}

	stored.Name = res.Name
	stored.Phone = res.Phone
	stored.Date = res.Date
	stored.Time = res.Time
	stored.PartySize = res.PartySize
	stored.UpdatedAt = s.Now()
	s.reservations[res.ID] = stored

	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id int64, status domain.ReservationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}

	now := s.Now()
	r.Status = status
	r.UpdatedAt = now
	if status == domain.StatusCancelled {
		r.CancelledAt = &now
	}
	s.reservations[id] = r

	return nil
}

func (s *Store) TransitionEmailStatus(
	ctx context.Context,
	id int64,
	from, to domain.EmailStatus,
	reason *string,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok || r.EmailStatus != from {
		return false, nil
	}

	now := s.Now()
	r.EmailStatus = to
	r.UpdatedAt = now
	switch to {
	case domain.EmailSent:
		r.EmailError = nil
		r.EmailSentAt = &now
	case domain.EmailFailed:
		r.EmailError = reason
	}
	s.reservations[id] = r

	return true, nil
}

func (s *Store) ReclaimEmailPending(ctx context.Context, id int64, staleBefore time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reservations[id]
	if !ok || r.EmailStatus != domain.EmailPending || !r.UpdatedAt.Before(staleBefore) {
		return false, nil
	}

	r.UpdatedAt = s.Now()
	s.reservations[id] = r
	return true, nil
}

func (s *Store) CompleteBefore(ctx context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day := domain.DateOf(before)
	var n int64
	for id, r := range s.reservations {
		if r.Status == domain.StatusConfirmed && r.Date.Before(day) {
			r.Status = domain.StatusCompleted
			r.UpdatedAt = s.Now()
			s.reservations[id] = r
			n++
		}
	}
	return n, nil
}

// activeSlotTaken emulates the partial unique index. Caller holds s.mu.
func (s *Store) activeSlotTaken(email string, date time.Time, t types.TimeString, excludeID int64) bool {
	day := domain.DateOf(date)
	for _, r := range s.reservations {
		if r.ID == excludeID || !r.IsActive() {
			continue
		}
		if r.Email == email && r.Date.Equal(day) && r.Time.Equal(t) {
			return true
		}
	}
	return false
}

// --- policy repository ---

func (s *Store) GetAll(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values := make(map[string]string, len(s.policy))
	for k, v := range s.policy {
		values[k] = v
	}
	return values, nil
}

func (s *Store) Upsert(ctx context.Context, values map[string]string) error {
	s.SetPolicy(values)
	return nil
}

// FixedClock returns a fixed instant.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time {
	return c.T
}
