package postgres

import (
	"context"
	"time"

	"go-interview-scheduler/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type specificAvailabilityRepo struct {
	db *pgxpool.Pool
}

// NewSpecificAvailabilityRepository creates the date-pinned availability store
func NewSpecificAvailabilityRepository(db *pgxpool.Pool) domain.SpecificAvailabilityRepository {
	return &specificAvailabilityRepo{db: db}
}

const specificColumns = `id, employer_id, date, status, kind, source_rule_id, created_at, updated_at`

// Create inserts the record and its slots. Callers run it inside a transaction.
func (r *specificAvailabilityRepo) Create(ctx context.Context, rec *domain.SpecificAvailability) error {
	now := time.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if rec.Status == "" {
		rec.Status = domain.AvailabilityStatusActive
	}
	if rec.Kind == "" {
		rec.Kind = domain.SpecificKindOverride
	}

	query := `
		INSERT INTO specific_availabilities (employer_id, date, status, kind, source_rule_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	db := conn(ctx, r.db)
	err := db.QueryRow(ctx, query,
		rec.EmployerID, rec.Date.Time, rec.Status, rec.Kind, rec.SourceRuleID, rec.CreatedAt, rec.UpdatedAt,
	).Scan(&rec.ID)
	if err != nil {
		return mapConstraintError(err)
	}
	return insertSlots(ctx, db, rec.ID, rec.Slots)
}

func (r *specificAvailabilityRepo) GetByID(ctx context.Context, id int64) (*domain.SpecificAvailability, error) {
	query := `SELECT ` + specificColumns + ` FROM specific_availabilities WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *specificAvailabilityRepo) GetGoverning(ctx context.Context, employerID string, date domain.Date) (*domain.SpecificAvailability, error) {
	query := `SELECT ` + specificColumns + `
		FROM specific_availabilities
		WHERE employer_id = $1 AND date = $2 AND status <> 'cancelled'`
	return r.getOne(ctx, query, employerID, date.Time)
}

// ReplaceSlots rewrites the slot set of rec. Booked slots keep their booking.
func (r *specificAvailabilityRepo) ReplaceSlots(ctx context.Context, rec *domain.SpecificAvailability) error {
	db := conn(ctx, r.db)
	rec.UpdatedAt = time.Now()

	tag, err := db.Exec(ctx, `UPDATE specific_availabilities SET updated_at = $2 WHERE id = $1`, rec.ID, rec.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := db.Exec(ctx, `DELETE FROM specific_availability_slots WHERE specific_id = $1 AND is_booked = false`, rec.ID); err != nil {
		return err
	}

	var unbooked []domain.TimeSlot
	for _, s := range rec.Slots {
		if !s.IsBooked {
			unbooked = append(unbooked, s)
		}
	}
	return insertSlots(ctx, db, rec.ID, unbooked)
}

func (r *specificAvailabilityRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `UPDATE specific_availabilities SET status = $2, updated_at = NOW() WHERE id = $1`
	tag, err := conn(ctx, r.db).Exec(ctx, query, id, status)
	if err != nil {
		return mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *specificAvailabilityRepo) ListByEmployer(ctx context.Context, employerID string) ([]domain.SpecificAvailability, error) {
	query := `SELECT ` + specificColumns + `
		FROM specific_availabilities
		WHERE employer_id = $1 AND status <> 'cancelled'
		ORDER BY date`
	return r.list(ctx, query, employerID)
}

func (r *specificAvailabilityRepo) ListGoverningInRange(ctx context.Context, employerID string, from, to domain.Date) ([]domain.SpecificAvailability, error) {
	query := `SELECT ` + specificColumns + `
		FROM specific_availabilities
		WHERE employer_id = $1 AND date BETWEEN $2 AND $3 AND status <> 'cancelled'
		ORDER BY date`
	return r.list(ctx, query, employerID, from.Time, to.Time)
}

// MarkSlotBooked is a compare-and-set on is_booked.
func (r *specificAvailabilityRepo) MarkSlotBooked(ctx context.Context, specificID int64, start, end, interviewID string) (bool, error) {
	query := `
		UPDATE specific_availability_slots
		SET is_booked = true, interview_id = $4
		WHERE specific_id = $1 AND start_time = $2 AND end_time = $3 AND is_booked = false`
	tag, err := conn(ctx, r.db).Exec(ctx, query, specificID, start, end, interviewID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *specificAvailabilityRepo) MarkSlotReleased(ctx context.Context, specificID int64, start, end, interviewID string) error {
	query := `
		UPDATE specific_availability_slots
		SET is_booked = false, interview_id = NULL
		WHERE specific_id = $1 AND start_time = $2 AND end_time = $3 AND interview_id = $4`
	_, err := conn(ctx, r.db).Exec(ctx, query, specificID, start, end, interviewID)
	return err
}

func (r *specificAvailabilityRepo) getOne(ctx context.Context, query string, args ...any) (*domain.SpecificAvailability, error) {
	db := conn(ctx, r.db)
	rec, err := scanSpecific(db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	slots, err := loadSlots(ctx, db, []int64{rec.ID})
	if err != nil {
		return nil, err
	}
	rec.Slots = slots[rec.ID]
	return rec, nil
}

func (r *specificAvailabilityRepo) list(ctx context.Context, query string, args ...any) ([]domain.SpecificAvailability, error) {
	db := conn(ctx, r.db)
	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var (
		records []domain.SpecificAvailability
		ids     []int64
	)
	for rows.Next() {
		rec, err := scanSpecific(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, *rec)
		ids = append(ids, rec.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return records, nil
	}

	slots, err := loadSlots(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Slots = slots[records[i].ID]
	}
	return records, nil
}

func loadSlots(ctx context.Context, db dbtx, ids []int64) (map[int64][]domain.TimeSlot, error) {
	query := `
		SELECT specific_id, start_time, end_time, is_booked
		FROM specific_availability_slots
		WHERE specific_id = ANY($1)
		ORDER BY specific_id, start_time, end_time`
	rows, err := db.Query(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]domain.TimeSlot, len(ids))
	for rows.Next() {
		var (
			id   int64
			slot domain.TimeSlot
		)
		if err := rows.Scan(&id, &slot.StartTime, &slot.EndTime, &slot.IsBooked); err != nil {
			return nil, err
		}
		out[id] = append(out[id], slot)
	}
	return out, rows.Err()
}

func insertSlots(ctx context.Context, db dbtx, specificID int64, slots []domain.TimeSlot) error {
	query := `
		INSERT INTO specific_availability_slots (specific_id, start_time, end_time, is_booked)
		VALUES ($1, $2, $3, false)`
	for _, s := range slots {
		if _, err := db.Exec(ctx, query, specificID, s.StartTime, s.EndTime); err != nil {
			return err
		}
	}
	return nil
}

func scanSpecific(row pgx.Row) (*domain.SpecificAvailability, error) {
	var (
		rec  domain.SpecificAvailability
		date time.Time
	)
	if err := row.Scan(
		&rec.ID, &rec.EmployerID, &date, &rec.Status, &rec.Kind, &rec.SourceRuleID, &rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rec.Date = domain.DateOf(date)
	return &rec, nil
}
