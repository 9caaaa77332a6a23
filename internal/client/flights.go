// Package client talks to the flight-management service that owns schedule
// master data and the authoritative seat counters' public surface.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajeev-ju/flight-booking-system/config"
	"github.com/rajeev-ju/flight-booking-system/internal/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// apiEnvelope is the flight-management service's response wrapper.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type seatOperationRequest struct {
	Seats int `json:"seats"`
}

func New(cfg config.FlightsConfig, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// GetScheduleDetails fetches the schedule. A 404 maps to NotFound so the
// saga can fail before persisting anything; everything else upstream-ish.
func (c *Client) GetScheduleDetails(ctx context.Context, scheduleID uuid.UUID) (*domain.FlightScheduleDetails, error) {
	url := fmt.Sprintf("%s/api/schedules/%s", c.baseURL, scheduleID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.Upstream(err, "flight service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.NotFound("flight schedule not found: %s", scheduleID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, domain.Upstream(nil, "flight service returned %d for schedule %s", resp.StatusCode, scheduleID)
	}

	var details domain.FlightScheduleDetails
	if err := json.NewDecoder(resp.Body).Decode(&details); err != nil {
		return nil, domain.Upstream(err, "decode schedule details for %s", scheduleID)
	}
	return &details, nil
}

// CheckSeatAvailability asks the source of record how many seats remain.
func (c *Client) CheckSeatAvailability(ctx context.Context, scheduleID uuid.UUID, seats int) (*domain.SeatAvailability, error) {
	url := fmt.Sprintf("%s/api/schedules/%s/seats", c.baseURL, scheduleID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, domain.Upstream(err, "flight service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, domain.Upstream(nil, "seat availability check returned %d for schedule %s", resp.StatusCode, scheduleID)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, domain.Upstream(err, "decode seat availability for %s", scheduleID)
	}

	var data struct {
		AvailableSeats int `json:"availableSeats"`
	}
	if err := json.Unmarshal(envelope.Data, &data); err != nil {
		return nil, domain.Upstream(err, "decode seat availability data for %s", scheduleID)
	}

	return &domain.SeatAvailability{
		Available:      data.AvailableSeats >= seats,
		AvailableSeats: data.AvailableSeats,
		RequestedSeats: seats,
	}, nil
}

func (c *Client) ReserveSeats(ctx context.Context, scheduleID uuid.UUID, seats int) error {
	return c.seatOperation(ctx, scheduleID, "reserve", seats)
}

func (c *Client) ReleaseSeats(ctx context.Context, scheduleID uuid.UUID, seats int) error {
	return c.seatOperation(ctx, scheduleID, "release", seats)
}

func (c *Client) seatOperation(ctx context.Context, scheduleID uuid.UUID, op string, seats int) error {
	url := fmt.Sprintf("%s/api/schedules/%s/%s", c.baseURL, scheduleID, op)

	body, err := json.Marshal(seatOperationRequest{Seats: seats})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Upstream(err, "flight service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return domain.Conflict("seat %s rejected for schedule %s", op, scheduleID)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.Upstream(nil, "seat %s returned %d for schedule %s", op, resp.StatusCode, scheduleID)
	}

	var envelope apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return domain.Upstream(err, "decode seat %s response for %s", op, scheduleID)
	}
	if !envelope.Success {
		return domain.Conflict("seat %s rejected for schedule %s: %s", op, scheduleID, envelope.Message)
	}

	c.logger.Debug("seat operation applied",
		zap.String("schedule_id", scheduleID.String()),
		zap.String("operation", op),
		zap.Int("seats", seats))
	return nil
}
