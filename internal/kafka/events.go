package kafka

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventBookingCreated       = "booking_created"
	EventBookingCancelled     = "booking_cancelled"
	EventBookingStatusChanged = "booking_status_changed"
)

type SeatOperation string

const (
	SeatOperationReserve SeatOperation = "RESERVE"
	SeatOperationConfirm SeatOperation = "CONFIRM"
	SeatOperationRelease SeatOperation = "RELEASE"
)

// BookingEvent is published to the booking-events topic, keyed by booking id.
type BookingEvent struct {
	EventID          uuid.UUID `json:"event_id"`
	Type             string    `json:"type"`
	BookingID        uuid.UUID `json:"booking_id"`
	PNR              string    `json:"pnr"`
	FlightScheduleID uuid.UUID `json:"flight_schedule_id"`
	FlightNumber     string    `json:"flight_number"`
	NumberOfSeats    int       `json:"number_of_seats"`
	AmountCents      int64     `json:"amount_cents"`
	Email            string    `json:"email"`
	Status           string    `json:"status"`
	Reason           string    `json:"reason,omitempty"`
	DepartureDate    time.Time `json:"departure_date"`
	Origin           string    `json:"origin"`
	Destination      string    `json:"destination"`
	Timestamp        time.Time `json:"timestamp"`
}

// SeatUpdateEvent is published to the seat-updates topic, keyed by flight
// schedule id, and applied to the seat source of record by the worker.
type SeatUpdateEvent struct {
	EventID          uuid.UUID     `json:"event_id"`
	FlightScheduleID uuid.UUID     `json:"flight_schedule_id"`
	Operation        SeatOperation `json:"operation"`
	NumberOfSeats    int           `json:"number_of_seats"`
	BookingID        uuid.UUID     `json:"booking_id"`
	Timestamp        time.Time     `json:"timestamp"`
}
