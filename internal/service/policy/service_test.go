package policy

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/domain"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) GetAll(ctx context.Context) (map[string]string, error) {
	args := m.Called(ctx)
	values, _ := args.Get(0).(map[string]string)
	return values, args.Error(1)
}

func (m *mockRepo) Upsert(ctx context.Context, values map[string]string) error {
	args := m.Called(ctx, values)
	return args.Error(0)
}

// inlineTx выполняет функцию без реальной транзакции
type inlineTx struct{}

func (inlineTx) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(repo *mockRepo) *Service {
	return NewService(repo, inlineTx{}, logger.NewWithWriter(io.Discard))
}

func TestService_Get_Defaults(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetAll", mock.Anything).Return(map[string]string{}, nil)

	p, err := newTestService(repo).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultPolicy(), p)
}

func TestService_Get_RepositoryError(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetAll", mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := newTestService(repo).Get(context.Background())
	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

func TestService_Replace_WritesOnlyProvidedKeys(t *testing.T) {
	repo := new(mockRepo)
	repo.On("GetAll", mock.Anything).Return(map[string]string{
		domain.KeyDailyMaxGuests: "50",
	}, nil)
	repo.On("Upsert", mock.Anything, map[string]string{
		domain.KeyClosingTime:  "23:00",
		domain.KeyMaxPartySize: "12",
	}).Return(nil)

	p, err := newTestService(repo).Replace(context.Background(), map[string]string{
		domain.KeyClosingTime:  "23:00:00",
		domain.KeyMaxPartySize: "12",
	})
	require.NoError(t, err)

	assert.Equal(t, "23:00", p.ClosingTime.String())
	assert.Equal(t, 12, p.MaxPartySize)
	assert.Equal(t, 50, p.DailyMaxGuests)
	repo.AssertExpectations(t)
}

func TestService_Replace_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]string
	}{
		{"empty", map[string]string{}},
		{"unknown key", map[string]string{"theme": "dark"}},
		{"unparsable", map[string]string{domain.KeyRollingDays: "many"}},
		{"inconsistent", map[string]string{domain.KeyOpeningTime: "22:30"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := new(mockRepo)
			repo.On("GetAll", mock.Anything).Return(map[string]string{}, nil)

			_, err := newTestService(repo).Replace(context.Background(), tc.values)
			assert.ErrorIs(t, err, domain.ErrValidation)
			repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		})
	}
}
