package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rajeev-ju/flight-booking-system/internal/domain"
)

// ScheduleRepository is the seat source of record. The guarded decrement in
// ReserveSeats is the only truly atomic seat mutation in the system; the
// cache counters are a fast-path approximation reconciled through events.
type ScheduleRepository interface {
	ReserveSeats(ctx context.Context, scheduleID uuid.UUID, seats int) error
	ReleaseSeats(ctx context.Context, scheduleID uuid.UUID, seats int) error
	AvailableSeats(ctx context.Context, scheduleID uuid.UUID) (int, error)
}

type PGScheduleRepository struct {
	db *pgxpool.Pool
}

func NewScheduleRepository(db *pgxpool.Pool) ScheduleRepository {
	return &PGScheduleRepository{db: db}
}

// ReserveSeats subtracts seats from the schedule's counter. The row guard
// makes the check-and-decrement a single atomic statement; zero affected
// rows means insufficient seats or an unknown schedule.
func (r *PGScheduleRepository) ReserveSeats(ctx context.Context, scheduleID uuid.UUID, seats int) error {
	res, err := r.db.Exec(ctx, `UPDATE flight_schedules
		SET available_seats = available_seats - $1, updated_at = now()
		WHERE id = $2 AND available_seats >= $1`, seats, scheduleID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.Conflict("insufficient seats on schedule %s for %d requested", scheduleID, seats)
	}
	return nil
}

func (r *PGScheduleRepository) ReleaseSeats(ctx context.Context, scheduleID uuid.UUID, seats int) error {
	res, err := r.db.Exec(ctx, `UPDATE flight_schedules
		SET available_seats = available_seats + $1, updated_at = now()
		WHERE id = $2`, seats, scheduleID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.NotFound("schedule not found: %s", scheduleID)
	}
	return nil
}

func (r *PGScheduleRepository) AvailableSeats(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	var available int
	err := r.db.QueryRow(ctx, `SELECT available_seats FROM flight_schedules WHERE id=$1`, scheduleID).
		Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.NotFound("schedule not found: %s", scheduleID)
		}
		return 0, err
	}
	return available, nil
}

var _ ScheduleRepository = (*PGScheduleRepository)(nil)
