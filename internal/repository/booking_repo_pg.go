package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nkiryanov/officebook/internal/domain"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByResource(ctx context.Context, resourceID string) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ApplyTransition(ctx context.Context, booking *domain.Booking) error
	CompleteEndedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `id, user_id, resource_id, resource_type, start_time, end_time, purpose, participants,
	status, steps, current_node_index, history, extras, version, created_at, updated_at`

func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Backstop against admissions racing past the service-level lock: the
	// insert re-checks overlap against active bookings inside the transaction.
	var conflictID, conflictUser string
	var conflictStart, conflictEnd time.Time
	err = tx.QueryRow(ctx, `SELECT id, user_id, start_time, end_time FROM bookings
		WHERE resource_id=$1 AND status IN ('PENDING','APPROVED')
		AND start_time < $3 AND $2 < end_time
		ORDER BY created_at LIMIT 1
		FOR UPDATE`,
		booking.ResourceID, booking.StartTime, booking.EndTime).
		Scan(&conflictID, &conflictUser, &conflictStart, &conflictEnd)
	if err == nil {
		return &domain.ConflictError{
			BookingID: conflictID,
			UserID:    conflictUser,
			Range:     domain.TimeRange{Start: conflictStart, End: conflictEnd},
		}
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	steps, err := json.Marshal(booking.Steps)
	if err != nil {
		return fmt.Errorf("marshal workflow snapshot: %w", err)
	}
	history, err := json.Marshal(booking.History)
	if err != nil {
		return fmt.Errorf("marshal approval history: %w", err)
	}
	extras, err := json.Marshal(booking.Extras)
	if err != nil {
		return fmt.Errorf("marshal extras: %w", err)
	}

	if err := tx.QueryRow(ctx, `INSERT INTO bookings
		(id, user_id, resource_id, resource_type, start_time, end_time, purpose, participants, status, steps, current_node_index, history, extras)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING version, created_at, updated_at`,
		booking.ID, booking.UserID, booking.ResourceID, booking.ResourceType,
		booking.StartTime, booking.EndTime, booking.Purpose, booking.Participants,
		booking.Status, steps, booking.CurrentNodeIndex, history, extras).
		Scan(&booking.Version, &booking.CreatedAt, &booking.UpdatedAt); err != nil {
		// Exclusion-constraint violation: an overlapping active booking
		// committed between our scan and this insert.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" { // exclusion_violation
			return &domain.ConflictError{
				Range: domain.TimeRange{Start: booking.StartTime, End: booking.EndTime},
			}
		}
		return err
	}

	return tx.Commit(ctx)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *PGBookingRepository) ListByResource(ctx context.Context, resourceID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE resource_id=$1 ORDER BY created_at`, resourceID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// ApplyTransition persists an approve/reject/cancel result with an optimistic
// version check. A stale version means another transition won the race; that
// surfaces as ErrInvalidState.
func (r *PGBookingRepository) ApplyTransition(ctx context.Context, booking *domain.Booking) error {
	history, err := json.Marshal(booking.History)
	if err != nil {
		return fmt.Errorf("marshal approval history: %w", err)
	}

	row := r.db.QueryRow(ctx, `UPDATE bookings
		SET status=$1, current_node_index=$2, history=$3, version=version+1, updated_at=now()
		WHERE id=$4 AND version=$5
		RETURNING version, updated_at`,
		booking.Status, booking.CurrentNodeIndex, history, booking.ID, booking.Version)
	if err := row.Scan(&booking.Version, &booking.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrInvalidState
		}
		return err
	}
	return nil
}

func (r *PGBookingRepository) CompleteEndedBefore(ctx context.Context, deadline time.Time) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `UPDATE bookings
		SET status=$1, version=version+1, updated_at=now()
		WHERE status=$2 AND end_time <= $3
		RETURNING `+bookingColumns,
		domain.BookingStatusCompleted, domain.BookingStatusApproved, deadline)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	var steps, history, extras []byte
	if err := row.Scan(&b.ID, &b.UserID, &b.ResourceID, &b.ResourceType, &b.StartTime, &b.EndTime,
		&b.Purpose, &b.Participants, &b.Status, &steps, &b.CurrentNodeIndex, &history, &extras,
		&b.Version, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(steps, &b.Steps); err != nil {
		return nil, fmt.Errorf("unmarshal workflow snapshot: %w", err)
	}
	if err := json.Unmarshal(history, &b.History); err != nil {
		return nil, fmt.Errorf("unmarshal approval history: %w", err)
	}
	if err := json.Unmarshal(extras, &b.Extras); err != nil {
		return nil, fmt.Errorf("unmarshal extras: %w", err)
	}
	return &b, nil
}

func collectBookings(rows pgx.Rows) ([]domain.Booking, error) {
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
