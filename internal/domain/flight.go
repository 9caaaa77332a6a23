package domain

import (
	"time"

	"github.com/google/uuid"
)

// FlightScheduleDetails is the schedule view served by the
// flight-management service.
type FlightScheduleDetails struct {
	ID             uuid.UUID `json:"id"`
	FlightNumber   string    `json:"flightNumber"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departureDateTime"`
	ArrivalTime    time.Time `json:"arrivalDateTime"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats int       `json:"availableSeats"`
	PriceCents     int64     `json:"priceCents"`
}

type SeatAvailability struct {
	Available      bool `json:"available"`
	AvailableSeats int  `json:"availableSeats"`
	RequestedSeats int  `json:"requestedSeats"`
}
