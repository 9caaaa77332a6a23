// Package inventory applies seat-update events to the seat source of record.
package inventory

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/rajeev-ju/flight-booking-system/internal/dedupe"
	"github.com/rajeev-ju/flight-booking-system/internal/kafka"
	"github.com/rajeev-ju/flight-booking-system/internal/repository"
)

// Handler consumes the seat-updates topic. Every message is acknowledged
// after one processing attempt: malformed payloads are dropped and database
// failures are logged rather than redelivered. Duplicate deliveries are
// filtered on event id, because the seat arithmetic is not idempotent.
type Handler struct {
	schedules repository.ScheduleRepository
	processed *dedupe.Store
	logger    *zap.Logger
}

func NewHandler(schedules repository.ScheduleRepository, processed *dedupe.Store, logger *zap.Logger) *Handler {
	return &Handler{schedules: schedules, processed: processed, logger: logger}
}

// HandleSeatUpdate always returns nil so the consumer commits the offset.
func (h *Handler) HandleSeatUpdate(ctx context.Context, msg kafkago.Message) error {
	var event kafka.SeatUpdateEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		h.logger.Error("dropping undecodable seat update",
			zap.ByteString("payload", msg.Value),
			zap.Error(err))
		return nil
	}

	if h.processed != nil {
		first, err := h.processed.MarkProcessed(event.EventID.String())
		if err != nil {
			h.logger.Error("dedupe store failure", zap.String("event_id", event.EventID.String()), zap.Error(err))
			return nil
		}
		if !first {
			h.logger.Info("skipping duplicate seat update", zap.String("event_id", event.EventID.String()))
			return nil
		}
	}

	var err error
	switch event.Operation {
	case kafka.SeatOperationConfirm, kafka.SeatOperationReserve:
		err = h.schedules.ReserveSeats(ctx, event.FlightScheduleID, event.NumberOfSeats)
	case kafka.SeatOperationRelease:
		err = h.schedules.ReleaseSeats(ctx, event.FlightScheduleID, event.NumberOfSeats)
	default:
		h.logger.Warn("unknown seat operation", zap.String("operation", string(event.Operation)))
		return nil
	}

	if err != nil {
		h.logger.Error("failed to apply seat update",
			zap.String("schedule_id", event.FlightScheduleID.String()),
			zap.String("operation", string(event.Operation)),
			zap.Int("seats", event.NumberOfSeats),
			zap.Error(err))
		return nil
	}

	h.logger.Info("applied seat update",
		zap.String("schedule_id", event.FlightScheduleID.String()),
		zap.String("operation", string(event.Operation)),
		zap.Int("seats", event.NumberOfSeats))
	return nil
}
