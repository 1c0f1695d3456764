package create_reservation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-ReservationService/internal/api/handlers"
	"github.com/m04kA/SMC-ReservationService/internal/domain"
	createReservation "github.com/m04kA/SMC-ReservationService/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-ReservationService/pkg/logger"
	"github.com/m04kA/SMC-ReservationService/pkg/types"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *createReservation.Request) (*createReservation.Response, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*createReservation.Response)
	return resp, args.Error(1)
}

func serve(uc CreateReservationUseCase, body string) *httptest.ResponseRecorder {
	h := NewHandler(uc, logger.NewWithWriter(io.Discard))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	uc := &mockUseCase{}
	uc.On("Execute", mock.Anything, &createReservation.Request{
		Name:      "Anna",
		Email:     "anna@example.com",
		Date:      "2026-06-05",
		Time:      "19:30",
		PartySize: 4,
	}).Return(&createReservation.Response{
		ID:          7,
		Name:        "Anna",
		Email:       "anna@example.com",
		Date:        time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC),
		Time:        types.MustTimeString("19:30"),
		PartySize:   4,
		Status:      "pending",
		EmailStatus: "pending",
		CreatedAt:   time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}, nil)

	rec := serve(uc, `{"name":"Anna","email":"anna@example.com","date":"2026-06-05","time":"19:30","partySize":4}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body ReservationResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, int64(7), body.ID)
	assert.Equal(t, "2026-06-05", body.Date)
	assert.Equal(t, "19:30", body.Time)
	assert.Equal(t, "pending", body.EmailStatus)
	uc.AssertExpectations(t)
}

func TestHandle_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantKind string
	}{
		{"malformed", domain.NewMalformedRequestError("name is required"), http.StatusBadRequest, "malformed_request"},
		{"window", domain.NewOutOfWindowError(30), http.StatusBadRequest, "out_of_window"},
		{"slot", domain.NewInvalidSlotError("12:34"), http.StatusBadRequest, "invalid_slot"},
		{"party", domain.NewPartySizeError(domain.BoundMax, 10), http.StatusBadRequest, "party_size"},
		{"capacity", domain.NewCapacityExceededError(8, 10), http.StatusConflict, "capacity_exceeded"},
		{"duplicate", domain.NewDuplicateBookingError(), http.StatusConflict, "duplicate_booking"},
		{"storage", fmt.Errorf("%w: connection reset", domain.ErrStorage), http.StatusInternalServerError, handlers.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockUseCase{}
			uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec := serve(uc, `{"name":"Anna","email":"anna@example.com","date":"2026-06-05","time":"19:30","partySize":4}`)

			require.Equal(t, tt.wantCode, rec.Code)
			var body handlers.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestHandle_InvalidBody(t *testing.T) {
	uc := &mockUseCase{}

	rec := serve(uc, `{"name":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	uc.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
