package email

import (
	"context"

	"go.uber.org/zap"

	"github.com/rajeev-ju/flight-booking-system/internal/kafka"
)

// Sender logs booking notifications in place of a real mail integration.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	s.logger.Info("sending booking notification",
		zap.String("email", event.Email),
		zap.String("type", event.Type),
		zap.String("pnr", event.PNR),
		zap.String("flight_number", event.FlightNumber))
	return nil
}
