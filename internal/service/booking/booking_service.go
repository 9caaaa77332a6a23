package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajeev-ju/flight-booking-system/internal/cache"
	"github.com/rajeev-ju/flight-booking-system/internal/domain"
	"github.com/rajeev-ju/flight-booking-system/internal/kafka"
	"github.com/rajeev-ju/flight-booking-system/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*BookingResult, error)
	GetBookingByPNR(ctx context.Context, pnr string) (*BookingDetails, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	CancelBooking(ctx context.Context, pnr, reason string) (*BookingResult, error)
	FailStaleBookings(ctx context.Context) ([]domain.Booking, error)
}

type SeatCache interface {
	AvailableSeats(ctx context.Context, scheduleID uuid.UUID) (int, bool, error)
	BlockSeats(ctx context.Context, scheduleID, bookingID uuid.UUID, seats int) (cache.BlockOutcome, error)
	ReleaseSeats(ctx context.Context, bookingID uuid.UUID) error
	ReleaseSeatsFor(ctx context.Context, scheduleID, bookingID uuid.UUID, seats int) error
	ConfirmSeats(ctx context.Context, bookingID uuid.UUID) error
	Initialize(ctx context.Context, scheduleID uuid.UUID, totalSeats, bookedSeats int) error
}

type FlightClient interface {
	GetScheduleDetails(ctx context.Context, scheduleID uuid.UUID) (*domain.FlightScheduleDetails, error)
	CheckSeatAvailability(ctx context.Context, scheduleID uuid.UUID, seats int) (*domain.SeatAvailability, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

type CreateBookingInput struct {
	FlightScheduleID uuid.UUID
	Passengers       []PassengerInput
	ContactEmail     string
	ContactPhone     string
	AmountCents      int64
}

type PassengerInput struct {
	FirstName string
	LastName  string
	Age       int
	Gender    string
	IDType    string
	IDNumber  string
}

type BookingResult struct {
	BookingID uuid.UUID
	PNR       string
	Status    domain.BookingStatus
	Message   string
}

type BookingDetails struct {
	Booking    domain.Booking
	Passengers []domain.Passenger
}

// Service drives the booking saga: schedule lookup, seat check and block,
// payment, confirmation, and compensating release on failure. There is no
// umbrella transaction; each step either advances the booking or the whole
// attempt is compensated and marked FAILED.
type Service struct {
	bookings       repository.BookingRepository
	seats          SeatCache
	flights        FlightClient
	producer       Producer
	payments       PaymentProcessor
	bookingTopic   string
	seatTopic      string
	blockTTL       time.Duration
	cancelCutoff   time.Duration
	publishRetries int
	logger         *zap.Logger
}

func NewService(
	bookings repository.BookingRepository,
	seats SeatCache,
	flights FlightClient,
	producer Producer,
	payments PaymentProcessor,
	bookingTopic, seatTopic string,
	blockTTL, cancelCutoff time.Duration,
	publishRetries int,
	logger *zap.Logger,
) *Service {
	return &Service{
		bookings:       bookings,
		seats:          seats,
		flights:        flights,
		producer:       producer,
		payments:       payments,
		bookingTopic:   bookingTopic,
		seatTopic:      seatTopic,
		blockTTL:       blockTTL,
		cancelCutoff:   cancelCutoff,
		publishRetries: publishRetries,
		logger:         logger,
	}
}

func (s *Service) CreateBooking(ctx context.Context, input CreateBookingInput) (*BookingResult, error) {
	if len(input.Passengers) < 1 || len(input.Passengers) > 9 {
		return nil, domain.Validation("booking must have 1 to 9 passengers")
	}
	if input.ContactEmail == "" {
		return nil, domain.Validation("contact email is required")
	}

	// Step 1: schedule details, before anything is persisted.
	details, err := s.flights.GetScheduleDetails(ctx, input.FlightScheduleID)
	if err != nil {
		return nil, err
	}

	// Step 2: PNR.
	pnr := GeneratePNR()

	// Step 3: persist the attempt as INITIATED so failed bookings stay
	// auditable.
	booking := &domain.Booking{
		PNR:              pnr,
		FlightScheduleID: input.FlightScheduleID,
		FlightNumber:     details.FlightNumber,
		UserEmail:        input.ContactEmail,
		UserPhone:        input.ContactPhone,
		TotalPassengers:  len(input.Passengers),
		AmountCents:      input.AmountCents,
		Status:           domain.BookingStatusInitiated,
		StatusReason:     "booking initiated",
		Origin:           details.Origin,
		Destination:      details.Destination,
		DepartureDate:    details.DepartureTime,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	s.logger.Info("created booking",
		zap.String("booking_id", booking.ID.String()),
		zap.String("pnr", pnr))

	// Step 4: block seats concurrently with building the passenger
	// manifest. Seat numbers are assigned by list position and do not
	// depend on the block outcome.
	blockCh := make(chan error, 1)
	go func() {
		blockCh <- s.checkAndBlockSeats(ctx, booking, details)
	}()

	passengers := buildPassengers(booking.ID, input.Passengers)

	// Step 5: await the block.
	if err := <-blockCh; err != nil {
		s.compensate(ctx, booking, domain.MessageOf(err))
		return &BookingResult{
			BookingID: booking.ID,
			PNR:       pnr,
			Status:    domain.BookingStatusFailed,
			Message:   "Booking failed: " + domain.MessageOf(err),
		}, nil
	}

	// Step 6: payment.
	if _, err := s.transition(ctx, booking, domain.BookingStatusPaymentPending, "awaiting payment"); err != nil {
		s.compensate(ctx, booking, domain.MessageOf(err))
		return &BookingResult{BookingID: booking.ID, PNR: pnr, Status: domain.BookingStatusFailed, Message: "Booking failed"}, nil
	}

	payment, err := s.payments.Process(ctx, booking.ID, booking.AmountCents, booking.UserEmail)
	if err != nil {
		s.compensate(ctx, booking, domain.MessageOf(err))
		return &BookingResult{BookingID: booking.ID, PNR: pnr, Status: domain.BookingStatusFailed, Message: "Booking failed"}, nil
	}
	if !payment.Success {
		// Payment declined: release the hold, no seat event. Passengers
		// are never persisted on this branch.
		if err := s.seats.ReleaseSeats(ctx, booking.ID); err != nil {
			s.logger.Error("release after payment failure", zap.String("booking_id", booking.ID.String()), zap.Error(err))
		}
		if _, err := s.transition(ctx, booking, domain.BookingStatusPaymentFailed, payment.Message); err != nil {
			s.logger.Error("mark payment failed", zap.String("booking_id", booking.ID.String()), zap.Error(err))
		}
		return &BookingResult{
			BookingID: booking.ID,
			PNR:       pnr,
			Status:    domain.BookingStatusPaymentFailed,
			Message:   "Payment failed. Please try again.",
		}, nil
	}

	if _, err := s.transition(ctx, booking, domain.BookingStatusPaymentConfirmed, payment.Message); err != nil {
		s.compensate(ctx, booking, domain.MessageOf(err))
		return &BookingResult{BookingID: booking.ID, PNR: pnr, Status: domain.BookingStatusFailed, Message: "Booking failed"}, nil
	}

	// Step 7: passengers, then seat confirmation. A failure from here on is
	// only partially compensated: the payment is not reversed.
	if err := s.bookings.SavePassengers(ctx, passengers); err != nil {
		s.compensate(ctx, booking, "failed to save passengers")
		return &BookingResult{BookingID: booking.ID, PNR: pnr, Status: domain.BookingStatusFailed, Message: "Booking failed"}, nil
	}

	if err := s.seats.ConfirmSeats(ctx, booking.ID); err != nil {
		// The booking is paid; cache divergence heals via TTL and the
		// source of record still gets its CONFIRM event below.
		s.logger.Error("confirm seats in cache", zap.String("booking_id", booking.ID.String()), zap.Error(err))
	}

	confirmed, err := s.transition(ctx, booking, domain.BookingStatusConfirmed, "Booking confirmed successfully")
	if err != nil {
		s.compensate(ctx, booking, domain.MessageOf(err))
		return &BookingResult{BookingID: booking.ID, PNR: pnr, Status: domain.BookingStatusFailed, Message: "Booking failed"}, nil
	}

	// Step 8: events. Failures are logged, never unwound.
	s.publishBookingEvent(ctx, confirmed, kafka.EventBookingCreated)
	s.publishSeatUpdate(ctx, confirmed, kafka.SeatOperationConfirm)

	s.logger.Info("booking confirmed", zap.String("pnr", pnr))
	return &BookingResult{
		BookingID: confirmed.ID,
		PNR:       pnr,
		Status:    domain.BookingStatusConfirmed,
		Message:   fmt.Sprintf("Booking confirmed successfully! Your PNR is %s", pnr),
	}, nil
}

func (s *Service) GetBookingByPNR(ctx context.Context, pnr string) (*BookingDetails, error) {
	if !ValidPNR(pnr) {
		return nil, domain.Validation("invalid PNR format: %s", pnr)
	}

	booking, err := s.bookings.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}
	passengers, err := s.bookings.PassengersByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	return &BookingDetails{Booking: *booking, Passengers: passengers}, nil
}

func (s *Service) ListBookingsByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	return s.bookings.ListByEmail(ctx, email)
}

// CancelBooking moves a CONFIRMED booking to CANCELLED, provided departure
// is further out than the cutoff. Cancellation releases inventory on both
// tiers: the (usually long-gone) cache block and a seat RELEASE event for
// the source of record.
func (s *Service) CancelBooking(ctx context.Context, pnr, reason string) (*BookingResult, error) {
	booking, err := s.bookings.GetByPNR(ctx, pnr)
	if err != nil {
		return nil, err
	}

	if booking.Status == domain.BookingStatusCancelled || booking.Status == domain.BookingStatusFailed {
		return nil, domain.Conflict("cannot cancel booking in %s state", booking.Status)
	}
	if time.Until(booking.DepartureDate) < s.cancelCutoff {
		return nil, domain.Conflict("cannot cancel within %s of departure", s.cancelCutoff)
	}

	if reason == "" {
		reason = "User requested cancellation"
	}
	cancelled, err := s.transition(ctx, booking, domain.BookingStatusCancelled, reason)
	if err != nil {
		return nil, err
	}

	if err := s.seats.ReleaseSeats(ctx, cancelled.ID); err != nil {
		s.logger.Error("release cache block on cancel", zap.String("booking_id", cancelled.ID.String()), zap.Error(err))
	}
	s.publishBookingEvent(ctx, cancelled, kafka.EventBookingCancelled)
	s.publishSeatUpdate(ctx, cancelled, kafka.SeatOperationRelease)

	return &BookingResult{
		BookingID: cancelled.ID,
		PNR:       cancelled.PNR,
		Status:    domain.BookingStatusCancelled,
		Message:   "Booking cancelled successfully",
	}, nil
}

// FailStaleBookings sweeps bookings stuck in INITIATED or PAYMENT_PENDING
// past the seat-block TTL. Their block records have expired without
// restoring the available counter, so the release must come from the booking
// row itself: each swept booking returns its seat count to the pool directly.
func (s *Service) FailStaleBookings(ctx context.Context) ([]domain.Booking, error) {
	cutoff := time.Now().Add(-s.blockTTL)
	stale, err := s.bookings.FailStaleBefore(ctx, cutoff, "seat hold expired")
	if err != nil {
		return nil, err
	}

	for _, b := range stale {
		if err := s.seats.ReleaseSeatsFor(ctx, b.FlightScheduleID, b.ID, b.TotalPassengers); err != nil {
			s.logger.Error("release stale block", zap.String("booking_id", b.ID.String()), zap.Error(err))
		}
		s.publishBookingEvent(ctx, &b, kafka.EventBookingStatusChanged)
	}
	return stale, nil
}

// checkAndBlockSeats verifies availability with the source of record, seeds
// the cache counters on first sight of the schedule, and takes the block.
func (s *Service) checkAndBlockSeats(ctx context.Context, booking *domain.Booking, details *domain.FlightScheduleDetails) error {
	availability, err := s.flights.CheckSeatAvailability(ctx, booking.FlightScheduleID, booking.TotalPassengers)
	if err != nil {
		return err
	}
	if !availability.Available {
		return domain.Conflict("seats not available for schedule %s: requested %d, available %d",
			booking.FlightScheduleID, booking.TotalPassengers, availability.AvailableSeats)
	}

	_, seeded, err := s.seats.AvailableSeats(ctx, booking.FlightScheduleID)
	if err != nil {
		return err
	}
	if !seeded {
		booked := details.TotalSeats - availability.AvailableSeats
		if err := s.seats.Initialize(ctx, booking.FlightScheduleID, details.TotalSeats, booked); err != nil {
			return err
		}
	}

	outcome, err := s.seats.BlockSeats(ctx, booking.FlightScheduleID, booking.ID, booking.TotalPassengers)
	if err != nil {
		return err
	}
	if outcome != cache.BlockOK {
		return domain.Conflict("could not block %d seats for schedule %s",
			booking.TotalPassengers, booking.FlightScheduleID)
	}
	return nil
}

// compensate is the saga's single compensating action: release the seat
// block, mark the booking FAILED, publish a seat RELEASE. It does not
// reverse a completed payment or delete persisted passengers.
func (s *Service) compensate(ctx context.Context, booking *domain.Booking, reason string) {
	if err := s.seats.ReleaseSeats(ctx, booking.ID); err != nil {
		s.logger.Error("compensation release", zap.String("booking_id", booking.ID.String()), zap.Error(err))
	}
	failed, err := s.bookings.UpdateStatus(ctx, booking.ID, domain.BookingStatusFailed, reason)
	if err != nil {
		s.logger.Error("mark booking failed", zap.String("booking_id", booking.ID.String()), zap.Error(err))
		failed = booking
	}
	s.publishSeatUpdate(ctx, failed, kafka.SeatOperationRelease)
	s.logger.Warn("booking compensated",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reason", reason))
}

// transition is the one authoritative status change: it refuses moves the
// state machine does not allow.
func (s *Service) transition(ctx context.Context, booking *domain.Booking, next domain.BookingStatus, reason string) (*domain.Booking, error) {
	if !booking.Status.CanTransitionTo(next) {
		return nil, domain.Conflict("cannot move booking %s from %s to %s", booking.PNR, booking.Status, next)
	}
	updated, err := s.bookings.UpdateStatus(ctx, booking.ID, next, reason)
	if err != nil {
		return nil, err
	}
	booking.Status = updated.Status
	booking.StatusReason = updated.StatusReason
	return updated, nil
}

func (s *Service) publishBookingEvent(ctx context.Context, booking *domain.Booking, eventType string) {
	event := kafka.BookingEvent{
		EventID:          uuid.New(),
		Type:             eventType,
		BookingID:        booking.ID,
		PNR:              booking.PNR,
		FlightScheduleID: booking.FlightScheduleID,
		FlightNumber:     booking.FlightNumber,
		NumberOfSeats:    booking.TotalPassengers,
		AmountCents:      booking.AmountCents,
		Email:            booking.UserEmail,
		Status:           string(booking.Status),
		Reason:           booking.StatusReason,
		DepartureDate:    booking.DepartureDate,
		Origin:           booking.Origin,
		Destination:      booking.Destination,
		Timestamp:        time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID.String(), event); err != nil {
		s.logger.Warn("failed to publish booking event",
			zap.String("type", eventType),
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err))
	}
}

func (s *Service) publishSeatUpdate(ctx context.Context, booking *domain.Booking, op kafka.SeatOperation) {
	event := kafka.SeatUpdateEvent{
		EventID:          uuid.New(),
		FlightScheduleID: booking.FlightScheduleID,
		Operation:        op,
		NumberOfSeats:    booking.TotalPassengers,
		BookingID:        booking.ID,
		Timestamp:        time.Now().UTC(),
	}
	if err := s.producer.PublishWithRetry(ctx, s.seatTopic, booking.FlightScheduleID.String(), event, s.publishRetries); err != nil {
		s.logger.Error("failed to publish seat update",
			zap.String("operation", string(op)),
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err))
	}
}

func buildPassengers(bookingID uuid.UUID, inputs []PassengerInput) []domain.Passenger {
	passengers := make([]domain.Passenger, 0, len(inputs))
	for i, in := range inputs {
		passengers = append(passengers, domain.Passenger{
			BookingID:  bookingID,
			FirstName:  in.FirstName,
			LastName:   in.LastName,
			Age:        in.Age,
			Gender:     in.Gender,
			IDType:     in.IDType,
			IDNumber:   in.IDNumber,
			SeatNumber: seatNumber(i),
		})
	}
	return passengers
}

// seatNumber assigns seats round-robin by list position: 1A..1F, 2A..
func seatNumber(index int) string {
	row := index/6 + 1
	letter := rune('A' + index%6)
	return fmt.Sprintf("%d%c", row, letter)
}

var _ BookingUseCase = (*Service)(nil)
