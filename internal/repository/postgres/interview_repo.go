package postgres

import (
	"context"
	"encoding/json"
	"time"

	"go-interview-scheduler/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type interviewRepo struct {
	db *pgxpool.Pool
}

func NewInterviewRepository(db *pgxpool.Pool) domain.InterviewRepository {
	return &interviewRepo{db: db}
}

const interviewSelect = `
		SELECT
			i.id, i.application_id, i.job_seeker_id, i.employer_id, i.job_id,
			i.date, i.start_time, i.end_time, i.status, i.result, i.feedback,
			i.cancellation, i.rescheduled_from, i.requires_reschedule,
			i.meeting_link, i.notes, i.created_at, i.updated_at,
			j.title as job_title
		FROM interviews i
		LEFT JOIN jobs j ON i.job_id = j.id`

func (r *interviewRepo) Create(ctx context.Context, iv *domain.Interview) error {
	now := time.Now()
	iv.CreatedAt = now
	iv.UpdatedAt = now

	query := `
		INSERT INTO interviews (id, application_id, job_seeker_id, employer_id, job_id, status, result, requires_reschedule, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := conn(ctx, r.db).Exec(ctx, query,
		iv.ID, iv.ApplicationID, iv.JobSeekerID, iv.EmployerID, iv.JobID,
		iv.Status, iv.Result, iv.RequiresReschedule, iv.CreatedAt, iv.UpdatedAt,
	)
	return mapConstraintError(err)
}

func (r *interviewRepo) GetByID(ctx context.Context, id string) (*domain.Interview, error) {
	iv, err := scanInterview(conn(ctx, r.db).QueryRow(ctx, interviewSelect+` WHERE i.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return iv, nil
}

func (r *interviewRepo) GetActiveByApplication(ctx context.Context, applicationID int64) (*domain.Interview, error) {
	query := interviewSelect + `
		WHERE i.application_id = $1 AND i.status IN ('pending', 'scheduled', 'rescheduled')
		LIMIT 1`
	iv, err := scanInterview(conn(ctx, r.db).QueryRow(ctx, query, applicationID))
	if err != nil {
		return nil, notFound(err)
	}
	return iv, nil
}

// Update is conditional on the status the caller read.
func (r *interviewRepo) Update(ctx context.Context, iv *domain.Interview, prior domain.InterviewStatus) error {
	cancellation, err := nullableJSON(iv.Cancellation)
	if err != nil {
		return err
	}
	rescheduledFrom, err := nullableJSON(iv.RescheduledFrom)
	if err != nil {
		return err
	}
	iv.UpdatedAt = time.Now()

	query := `
		UPDATE interviews
		SET date = $3, start_time = $4, end_time = $5, status = $6, result = $7, feedback = $8,
		    cancellation = $9, rescheduled_from = $10, requires_reschedule = $11,
		    meeting_link = $12, notes = $13, updated_at = $14
		WHERE id = $1 AND status = $2`

	tag, err := conn(ctx, r.db).Exec(ctx, query,
		iv.ID, prior,
		dateArg(iv.Date), nullableString(iv.StartTime), nullableString(iv.EndTime),
		iv.Status, iv.Result, iv.Feedback,
		cancellation, rescheduledFrom, iv.RequiresReschedule,
		iv.MeetingLink, iv.Notes, iv.UpdatedAt,
	)
	if err != nil {
		return mapConstraintError(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStaleState
	}
	return nil
}

func (r *interviewRepo) ListByEmployer(ctx context.Context, employerID string, statuses []domain.InterviewStatus) ([]domain.Interview, error) {
	query := interviewSelect + `
		WHERE i.employer_id = $1 AND (cardinality($2::text[]) = 0 OR i.status = ANY($2::text[]))
		ORDER BY i.date NULLS LAST, i.start_time, i.created_at DESC`
	return r.list(ctx, query, employerID, pq.Array(statusStrings(statuses)))
}

func (r *interviewRepo) ListByJobSeeker(ctx context.Context, jobSeekerID string, statuses []domain.InterviewStatus) ([]domain.Interview, error) {
	query := interviewSelect + `
		WHERE i.job_seeker_id = $1 AND (cardinality($2::text[]) = 0 OR i.status = ANY($2::text[]))
		ORDER BY i.date NULLS LAST, i.start_time, i.created_at DESC`
	return r.list(ctx, query, jobSeekerID, pq.Array(statusStrings(statuses)))
}

func (r *interviewRepo) ListByEmployerInRange(ctx context.Context, employerID string, from, to domain.Date) ([]domain.Interview, error) {
	query := interviewSelect + `
		WHERE i.employer_id = $1 AND i.date BETWEEN $2 AND $3
		ORDER BY i.date, i.start_time`
	return r.list(ctx, query, employerID, from.Time, to.Time)
}

func (r *interviewRepo) list(ctx context.Context, query string, args ...any) ([]domain.Interview, error) {
	rows, err := conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var interviews []domain.Interview
	for rows.Next() {
		iv, err := scanInterview(rows)
		if err != nil {
			return nil, err
		}
		interviews = append(interviews, *iv)
	}
	return interviews, rows.Err()
}

func scanInterview(row pgx.Row) (*domain.Interview, error) {
	var (
		iv              domain.Interview
		date            *time.Time
		start, end      *string
		cancellation    []byte
		rescheduledFrom []byte
	)
	if err := row.Scan(
		&iv.ID, &iv.ApplicationID, &iv.JobSeekerID, &iv.EmployerID, &iv.JobID,
		&date, &start, &end, &iv.Status, &iv.Result, &iv.Feedback,
		&cancellation, &rescheduledFrom, &iv.RequiresReschedule,
		&iv.MeetingLink, &iv.Notes, &iv.CreatedAt, &iv.UpdatedAt,
		&iv.JobTitle,
	); err != nil {
		return nil, err
	}
	if date != nil {
		d := domain.DateOf(*date)
		iv.Date = &d
	}
	if start != nil {
		iv.StartTime = *start
	}
	if end != nil {
		iv.EndTime = *end
	}
	if len(cancellation) > 0 {
		iv.Cancellation = &domain.Cancellation{}
		if err := json.Unmarshal(cancellation, iv.Cancellation); err != nil {
			return nil, err
		}
	}
	if len(rescheduledFrom) > 0 {
		iv.RescheduledFrom = &domain.RescheduleSnapshot{}
		if err := json.Unmarshal(rescheduledFrom, iv.RescheduledFrom); err != nil {
			return nil, err
		}
	}
	return &iv, nil
}

func statusStrings(statuses []domain.InterviewStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func dateArg(d *domain.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullableJSON encodes v as jsonb text, or NULL when v is nil.
func nullableJSON[T any](v *T) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}
