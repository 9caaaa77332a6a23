package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rajeev-ju/flight-booking-system/internal/domain"
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

func newScheduleRouter(schedules repository.ScheduleRepository) *gin.Engine {
	router := gin.New()
	NewScheduleHandler(schedules).Register(router.Group("/api/schedules"))
	return router
}

func TestAvailableSeatsEndpoint(t *testing.T) {
	schedules := new(MockScheduleRepository)
	router := newScheduleRouter(schedules)
	scheduleID := uuid.New()

	schedules.On("AvailableSeats", mock.Anything, scheduleID).Return(42, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/schedules/"+scheduleID.String()+"/seats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			AvailableSeats int `json:"availableSeats"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 42, resp.Data.AvailableSeats)
	schedules.AssertExpectations(t)
}

func TestAvailableSeatsEndpoint_InvalidID(t *testing.T) {
	schedules := new(MockScheduleRepository)
	router := newScheduleRouter(schedules)

	req := httptest.NewRequest(http.MethodGet, "/api/schedules/not-a-uuid/seats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	schedules.AssertNotCalled(t, "AvailableSeats", mock.Anything, mock.Anything)
}

func TestReserveSeatsEndpoint(t *testing.T) {
	schedules := new(MockScheduleRepository)
	router := newScheduleRouter(schedules)
	scheduleID := uuid.New()

	schedules.On("ReserveSeats", mock.Anything, scheduleID, 3).Return(nil).Once()

	w := doJSON(t, router, http.MethodPost, "/api/schedules/"+scheduleID.String()+"/reserve",
		map[string]int{"seats": 3})

	assert.Equal(t, http.StatusOK, w.Code)
	schedules.AssertExpectations(t)
}

func TestReserveSeatsEndpoint_InsufficientSeats(t *testing.T) {
	schedules := new(MockScheduleRepository)
	router := newScheduleRouter(schedules)
	scheduleID := uuid.New()

	schedules.On("ReserveSeats", mock.Anything, scheduleID, 5).
		Return(domain.Conflict("not enough seats on schedule %s", scheduleID)).Once()

	w := doJSON(t, router, http.MethodPost, "/api/schedules/"+scheduleID.String()+"/reserve",
		map[string]int{"seats": 5})

	assert.Equal(t, http.StatusConflict, w.Code)
	schedules.AssertExpectations(t)
}

func TestReserveSeatsEndpoint_RejectsNonPositive(t *testing.T) {
	schedules := new(MockScheduleRepository)
	router := newScheduleRouter(schedules)
	scheduleID := uuid.New()

	w := doJSON(t, router, http.MethodPost, "/api/schedules/"+scheduleID.String()+"/reserve",
		map[string]int{"seats": 0})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	schedules.AssertNotCalled(t, "ReserveSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestReleaseSeatsEndpoint(t *testing.T) {
	schedules := new(MockScheduleRepository)
	router := newScheduleRouter(schedules)
	scheduleID := uuid.New()

	schedules.On("ReleaseSeats", mock.Anything, scheduleID, 2).Return(nil).Once()

	w := doJSON(t, router, http.MethodPost, "/api/schedules/"+scheduleID.String()+"/release",
		map[string]int{"seats": 2})

	assert.Equal(t, http.StatusOK, w.Code)
	schedules.AssertExpectations(t)
}

func TestReleaseSeatsEndpoint_UnknownSchedule(t *testing.T) {
	schedules := new(MockScheduleRepository)
	router := newScheduleRouter(schedules)
	scheduleID := uuid.New()

	schedules.On("ReleaseSeats", mock.Anything, scheduleID, 2).
		Return(domain.NotFound("schedule %s not found", scheduleID)).Once()

	w := doJSON(t, router, http.MethodPost, "/api/schedules/"+scheduleID.String()+"/release",
		map[string]int{"seats": 2})

	assert.Equal(t, http.StatusNotFound, w.Code)
	schedules.AssertExpectations(t)
}
