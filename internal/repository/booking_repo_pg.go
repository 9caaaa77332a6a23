package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajeev-ju/flight-booking-system/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error)
	GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error)
	ListByEmail(ctx context.Context, email string) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, reason string) (*domain.Booking, error)
	SavePassengers(ctx context.Context, passengers []domain.Passenger) error
	PassengersByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Passenger, error)
	FailStaleBefore(ctx context.Context, cutoff time.Time, reason string) ([]domain.Booking, error)
}

const bookingColumns = `id, pnr, flight_schedule_id, flight_number, user_email, user_phone,
	total_passengers, amount_cents, status, status_reason, origin, destination,
	departure_date, booking_date, created_at, updated_at`

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return r.db.QueryRow(ctx, `INSERT INTO bookings
		(pnr, flight_schedule_id, flight_number, user_email, user_phone, total_passengers,
		 amount_cents, status, status_reason, origin, destination, departure_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, booking_date, created_at, updated_at`,
		booking.PNR, booking.FlightScheduleID, booking.FlightNumber, booking.UserEmail,
		booking.UserPhone, booking.TotalPassengers, booking.AmountCents, booking.Status,
		booking.StatusReason, booking.Origin, booking.Destination, booking.DepartureDate).
		Scan(&booking.ID, &booking.BookingDate, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	return scanBooking(row, id.String())
}

func (r *PGBookingRepository) GetByPNR(ctx context.Context, pnr string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE pnr=$1`, pnr)
	return scanBooking(row, pnr)
}

func (r *PGBookingRepository) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE user_email=$1 ORDER BY booking_date DESC`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.BookingStatus, reason string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1, status_reason=$2, updated_at=now()
		WHERE id=$3 RETURNING `+bookingColumns, status, reason, id)
	return scanBooking(row, id.String())
}

// SavePassengers inserts the whole passenger manifest in a single batch.
func (r *PGBookingRepository) SavePassengers(ctx context.Context, passengers []domain.Passenger) error {
	if len(passengers) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for i := range passengers {
		p := &passengers[i]
		batch.Queue(`INSERT INTO passengers
			(booking_id, first_name, last_name, age, gender, id_type, id_number, seat_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			p.BookingID, p.FirstName, p.LastName, p.Age, p.Gender, p.IDType, p.IDNumber, p.SeatNumber)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()
	for range passengers {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (r *PGBookingRepository) PassengersByBooking(ctx context.Context, bookingID uuid.UUID) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, booking_id, first_name, last_name, age, gender,
		id_type, id_number, seat_number, created_at
		FROM passengers WHERE booking_id=$1 ORDER BY seat_number`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var passengers []domain.Passenger
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.BookingID, &p.FirstName, &p.LastName, &p.Age, &p.Gender,
			&p.IDType, &p.IDNumber, &p.SeatNumber, &p.CreatedAt); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

// FailStaleBefore flips bookings stuck mid-saga to FAILED. Seat blocks of
// the returned bookings still need releasing by the caller.
func (r *PGBookingRepository) FailStaleBefore(ctx context.Context, cutoff time.Time, reason string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings SET status=$1, status_reason=$2, updated_at=now()
		WHERE status = ANY($3) AND created_at <= $4 RETURNING `+bookingColumns,
		domain.BookingStatusFailed, reason,
		[]string{string(domain.BookingStatusInitiated), string(domain.BookingStatusPaymentPending)},
		cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBookings(rows)
}

func scanBooking(row pgx.Row, ref string) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(&b.ID, &b.PNR, &b.FlightScheduleID, &b.FlightNumber, &b.UserEmail, &b.UserPhone,
		&b.TotalPassengers, &b.AmountCents, &b.Status, &b.StatusReason, &b.Origin, &b.Destination,
		&b.DepartureDate, &b.BookingDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound("booking not found: %s", ref)
		}
		return nil, err
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.PNR, &b.FlightScheduleID, &b.FlightNumber, &b.UserEmail, &b.UserPhone,
			&b.TotalPassengers, &b.AmountCents, &b.Status, &b.StatusReason, &b.Origin, &b.Destination,
			&b.DepartureDate, &b.BookingDate, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
