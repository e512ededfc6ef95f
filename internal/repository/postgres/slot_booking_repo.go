package postgres

import (
	"context"
	"errors"
	"time"

	"go-interview-scheduler/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type slotBookingRepo struct {
	db *pgxpool.Pool
}

// NewSlotBookingRepository creates the booking ledger backed by the
// slot_bookings_active_key partial unique index.
func NewSlotBookingRepository(db *pgxpool.Pool) domain.SlotBookingRepository {
	return &slotBookingRepo{db: db}
}

// Reserve is a single conditional insert; the unique index decides the winner.
func (r *slotBookingRepo) Reserve(ctx context.Context, key domain.SlotKey, interviewID string) error {
	query := `
		INSERT INTO slot_bookings (employer_id, date, start_time, end_time, interview_id, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (employer_id, date, start_time, end_time) WHERE released_at IS NULL DO NOTHING
		RETURNING id`

	var id int64
	err := conn(ctx, r.db).QueryRow(ctx, query,
		key.EmployerID, key.Date.Time, key.StartTime, key.EndTime, interviewID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrSlotTaken
	}
	return mapConstraintError(err)
}

// LockDate takes a transaction-scoped advisory lock on (employer, date).
// Book, CreateException and SetSchedule all take it before reading the ledger.
func (r *slotBookingRepo) LockDate(ctx context.Context, employerID string, date domain.Date) error {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil
	}
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, employerID+"|"+date.String())
	return err
}

func (r *slotBookingRepo) Release(ctx context.Context, key domain.SlotKey, interviewID string) error {
	query := `
		UPDATE slot_bookings
		SET released_at = NOW()
		WHERE employer_id = $1 AND date = $2 AND start_time = $3 AND end_time = $4
		  AND interview_id = $5 AND released_at IS NULL`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		key.EmployerID, key.Date.Time, key.StartTime, key.EndTime, interviewID,
	)
	return err
}

func (r *slotBookingRepo) IsReserved(ctx context.Context, key domain.SlotKey) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM slot_bookings
			WHERE employer_id = $1 AND date = $2 AND start_time = $3 AND end_time = $4 AND released_at IS NULL
		)`
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx, query, key.EmployerID, key.Date.Time, key.StartTime, key.EndTime).Scan(&exists)
	return exists, err
}

func (r *slotBookingRepo) ListActive(ctx context.Context, employerID string, from, to domain.Date) ([]domain.SlotBooking, error) {
	query := `
		SELECT id, employer_id, date, start_time, end_time, interview_id, created_at
		FROM slot_bookings
		WHERE employer_id = $1 AND date BETWEEN $2 AND $3 AND released_at IS NULL
		ORDER BY date, start_time`

	rows, err := conn(ctx, r.db).Query(ctx, query, employerID, from.Time, to.Time)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.SlotBooking
	for rows.Next() {
		var (
			b    domain.SlotBooking
			date time.Time
		)
		if err := rows.Scan(&b.ID, &b.Key.EmployerID, &date, &b.Key.StartTime, &b.Key.EndTime, &b.InterviewID, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Key.Date = domain.DateOf(date)
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
