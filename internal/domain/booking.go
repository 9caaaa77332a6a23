package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusInitiated        BookingStatus = "INITIATED"
	BookingStatusPaymentPending   BookingStatus = "PAYMENT_PENDING"
	BookingStatusPaymentConfirmed BookingStatus = "PAYMENT_CONFIRMED"
	BookingStatusConfirmed        BookingStatus = "CONFIRMED"
	BookingStatusPaymentFailed    BookingStatus = "PAYMENT_FAILED"
	BookingStatusFailed           BookingStatus = "FAILED"
	BookingStatusCancelled        BookingStatus = "CANCELLED"
)

// validTransitions enumerates the forward-only booking lifecycle.
// The single backward-looking edge is CONFIRMED -> CANCELLED.
var validTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusInitiated:        {BookingStatusPaymentPending, BookingStatusFailed},
	BookingStatusPaymentPending:   {BookingStatusPaymentConfirmed, BookingStatusPaymentFailed, BookingStatusFailed},
	BookingStatusPaymentConfirmed: {BookingStatusConfirmed, BookingStatusFailed},
	BookingStatusConfirmed:        {BookingStatusCancelled},
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s BookingStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

type Booking struct {
	ID               uuid.UUID
	PNR              string
	FlightScheduleID uuid.UUID
	FlightNumber     string
	UserEmail        string
	UserPhone        string
	TotalPassengers  int
	AmountCents      int64
	Status           BookingStatus
	StatusReason     string
	Origin           string
	Destination      string
	DepartureDate    time.Time
	BookingDate      time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Passenger struct {
	ID         uuid.UUID
	BookingID  uuid.UUID
	FirstName  string
	LastName   string
	Age        int
	Gender     string
	IDType     string
	IDNumber   string
	SeatNumber string
	CreatedAt  time.Time
}
