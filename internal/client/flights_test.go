package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rajeev-ju/flight-booking-system/config"
	"github.com/rajeev-ju/flight-booking-system/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.FlightsConfig{BaseURL: srv.URL, TimeoutSeconds: 2}, zap.NewNop())
}

func TestGetScheduleDetails(t *testing.T) {
	scheduleID := uuid.New()
	departure := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/schedules/"+scheduleID.String(), r.URL.Path)
		json.NewEncoder(w).Encode(domain.FlightScheduleDetails{
			ID:             scheduleID,
			FlightNumber:   "AI101",
			Origin:         "DEL",
			Destination:    "BOM",
			DepartureTime:  departure,
			TotalSeats:     180,
			AvailableSeats: 44,
			PriceCents:     550000,
		})
	})

	details, err := c.GetScheduleDetails(context.Background(), scheduleID)

	require.NoError(t, err)
	assert.Equal(t, "AI101", details.FlightNumber)
	assert.Equal(t, 180, details.TotalSeats)
	assert.Equal(t, 44, details.AvailableSeats)
	assert.True(t, details.DepartureTime.Equal(departure))
}

func TestGetScheduleDetails_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.GetScheduleDetails(context.Background(), uuid.New())

	require.Error(t, err)
	assert.Equal(t, domain.CodeNotFound, domain.CodeOf(err))
}

func TestGetScheduleDetails_UpstreamError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.GetScheduleDetails(context.Background(), uuid.New())

	require.Error(t, err)
	assert.Equal(t, domain.CodeUpstream, domain.CodeOf(err))
}

func TestGetScheduleDetails_Unreachable(t *testing.T) {
	c := New(config.FlightsConfig{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1}, zap.NewNop())

	_, err := c.GetScheduleDetails(context.Background(), uuid.New())

	require.Error(t, err)
	assert.Equal(t, domain.CodeUpstream, domain.CodeOf(err))
}

func TestCheckSeatAvailability(t *testing.T) {
	scheduleID := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/schedules/"+scheduleID.String()+"/seats", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data":    map[string]int{"availableSeats": 5},
		})
	})

	availability, err := c.CheckSeatAvailability(context.Background(), scheduleID, 3)
	require.NoError(t, err)
	assert.True(t, availability.Available)
	assert.Equal(t, 5, availability.AvailableSeats)
	assert.Equal(t, 3, availability.RequestedSeats)

	availability, err = c.CheckSeatAvailability(context.Background(), scheduleID, 6)
	require.NoError(t, err)
	assert.False(t, availability.Available, "requesting more than remain must report unavailable")
}

func TestReserveSeats(t *testing.T) {
	scheduleID := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/schedules/"+scheduleID.String()+"/reserve", r.URL.Path)

		var req seatOperationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 2, req.Seats)

		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "seats reserved"})
	})

	assert.NoError(t, c.ReserveSeats(context.Background(), scheduleID, 2))
}

func TestReserveSeats_Conflict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	err := c.ReserveSeats(context.Background(), uuid.New(), 2)

	require.Error(t, err)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
}

func TestReserveSeats_EnvelopeRejection(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "not enough seats"})
	})

	err := c.ReserveSeats(context.Background(), uuid.New(), 2)

	require.Error(t, err)
	assert.Equal(t, domain.CodeConflict, domain.CodeOf(err))
}

func TestReleaseSeats(t *testing.T) {
	scheduleID := uuid.New()
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/schedules/"+scheduleID.String()+"/release", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
	})

	assert.NoError(t, c.ReleaseSeats(context.Background(), scheduleID, 2))
}
