package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rajeev-ju/flight-booking-system/internal/dedupe"
	"github.com/rajeev-ju/flight-booking-system/internal/kafka"
	"github.com/rajeev-ju/flight-booking-system/internal/repository"
)

type MockScheduleRepository struct {
	mock.Mock
}

func (m *MockScheduleRepository) ReserveSeats(ctx context.Context, scheduleID uuid.UUID, seats int) error {
	args := m.Called(ctx, scheduleID, seats)
	return args.Error(0)
}

func (m *MockScheduleRepository) ReleaseSeats(ctx context.Context, scheduleID uuid.UUID, seats int) error {
	args := m.Called(ctx, scheduleID, seats)
	return args.Error(0)
}

func (m *MockScheduleRepository) AvailableSeats(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	args := m.Called(ctx, scheduleID)
	return args.Int(0), args.Error(1)
}

var _ repository.ScheduleRepository = (*MockScheduleRepository)(nil)

func newTestHandler(t *testing.T) (*Handler, *MockScheduleRepository) {
	t.Helper()
	schedules := new(MockScheduleRepository)
	processed, err := dedupe.Open(filepath.Join(t.TempDir(), "dedupe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { processed.Close() })
	return NewHandler(schedules, processed, zap.NewNop()), schedules
}

func seatUpdateMessage(t *testing.T, event kafka.SeatUpdateEvent) kafkago.Message {
	t.Helper()
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	return kafkago.Message{
		Key:   []byte(event.FlightScheduleID.String()),
		Value: payload,
	}
}

func TestHandleSeatUpdate_ConfirmReservesSeats(t *testing.T) {
	h, schedules := newTestHandler(t)
	scheduleID := uuid.New()

	schedules.On("ReserveSeats", mock.Anything, scheduleID, 3).Return(nil).Once()

	msg := seatUpdateMessage(t, kafka.SeatUpdateEvent{
		EventID:          uuid.New(),
		FlightScheduleID: scheduleID,
		Operation:        kafka.SeatOperationConfirm,
		NumberOfSeats:    3,
		BookingID:        uuid.New(),
		Timestamp:        time.Now(),
	})
	assert.NoError(t, h.HandleSeatUpdate(context.Background(), msg))
	schedules.AssertExpectations(t)
}

func TestHandleSeatUpdate_ReserveReservesSeats(t *testing.T) {
	h, schedules := newTestHandler(t)
	scheduleID := uuid.New()

	schedules.On("ReserveSeats", mock.Anything, scheduleID, 1).Return(nil).Once()

	msg := seatUpdateMessage(t, kafka.SeatUpdateEvent{
		EventID:          uuid.New(),
		FlightScheduleID: scheduleID,
		Operation:        kafka.SeatOperationReserve,
		NumberOfSeats:    1,
	})
	assert.NoError(t, h.HandleSeatUpdate(context.Background(), msg))
	schedules.AssertExpectations(t)
}

func TestHandleSeatUpdate_ReleaseReleasesSeats(t *testing.T) {
	h, schedules := newTestHandler(t)
	scheduleID := uuid.New()

	schedules.On("ReleaseSeats", mock.Anything, scheduleID, 2).Return(nil).Once()

	msg := seatUpdateMessage(t, kafka.SeatUpdateEvent{
		EventID:          uuid.New(),
		FlightScheduleID: scheduleID,
		Operation:        kafka.SeatOperationRelease,
		NumberOfSeats:    2,
	})
	assert.NoError(t, h.HandleSeatUpdate(context.Background(), msg))
	schedules.AssertExpectations(t)
}

func TestHandleSeatUpdate_DropsMalformedPayload(t *testing.T) {
	h, schedules := newTestHandler(t)

	err := h.HandleSeatUpdate(context.Background(), kafkago.Message{Value: []byte("not json")})

	// Malformed payloads are acked, never retried.
	assert.NoError(t, err)
	schedules.AssertNotCalled(t, "ReserveSeats", mock.Anything, mock.Anything, mock.Anything)
	schedules.AssertNotCalled(t, "ReleaseSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleSeatUpdate_SkipsDuplicateEvent(t *testing.T) {
	h, schedules := newTestHandler(t)
	scheduleID := uuid.New()

	schedules.On("ReserveSeats", mock.Anything, scheduleID, 4).Return(nil).Once()

	msg := seatUpdateMessage(t, kafka.SeatUpdateEvent{
		EventID:          uuid.New(),
		FlightScheduleID: scheduleID,
		Operation:        kafka.SeatOperationConfirm,
		NumberOfSeats:    4,
	})

	// Redelivery of the same event id must not double-apply the arithmetic.
	assert.NoError(t, h.HandleSeatUpdate(context.Background(), msg))
	assert.NoError(t, h.HandleSeatUpdate(context.Background(), msg))

	schedules.AssertNumberOfCalls(t, "ReserveSeats", 1)
}

func TestHandleSeatUpdate_IgnoresUnknownOperation(t *testing.T) {
	h, schedules := newTestHandler(t)

	msg := seatUpdateMessage(t, kafka.SeatUpdateEvent{
		EventID:          uuid.New(),
		FlightScheduleID: uuid.New(),
		Operation:        "UPGRADE",
		NumberOfSeats:    1,
	})
	assert.NoError(t, h.HandleSeatUpdate(context.Background(), msg))
	schedules.AssertNotCalled(t, "ReserveSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleSeatUpdate_AcksOnRepositoryError(t *testing.T) {
	h, schedules := newTestHandler(t)
	scheduleID := uuid.New()

	schedules.On("ReserveSeats", mock.Anything, scheduleID, 2).
		Return(errors.New("connection refused")).Once()

	msg := seatUpdateMessage(t, kafka.SeatUpdateEvent{
		EventID:          uuid.New(),
		FlightScheduleID: scheduleID,
		Operation:        kafka.SeatOperationConfirm,
		NumberOfSeats:    2,
	})

	// The offset is committed regardless; the error is logged, not returned.
	assert.NoError(t, h.HandleSeatUpdate(context.Background(), msg))
	schedules.AssertExpectations(t)
}
