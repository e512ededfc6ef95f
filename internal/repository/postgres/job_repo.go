package postgres

import (
	"context"

	"go-interview-scheduler/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type jobRepo struct {
	db *pgxpool.Pool
}

func NewJobRepository(db *pgxpool.Pool) domain.JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	query := `
		SELECT
			j.id, j.company_id, COALESCE(j.employer_user_id, ''), j.title, j.location, j.company_status,
			j.vacancies, j.remaining_vacancies,
			COALESCE(ARRAY(SELECT h.application_id FROM job_hires h WHERE h.job_id = j.id ORDER BY h.hired_at), '{}'),
			j.created_at, j.updated_at
		FROM jobs j
		WHERE j.id = $1`

	var (
		job   domain.Job
		hired pq.Int64Array
	)
	err := conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&job.ID, &job.CompanyID, &job.EmployerUserID, &job.Title, &job.Location, &job.CompanyStatus,
		&job.Vacancies, &job.RemainingVacancies,
		&hired,
		&job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	job.HiredApplicantIDs = []int64(hired)
	return &job, nil
}

// AppendHire is idempotent per (job, application).
func (r *jobRepo) AppendHire(ctx context.Context, hire *domain.JobHire) error {
	query := `
		INSERT INTO job_hires (job_id, application_id, job_seeker_id, interview_id, hired_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (job_id, application_id) DO NOTHING`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		hire.JobID, hire.ApplicationID, hire.JobSeekerID, hire.InterviewID, hire.HiredAt,
	)
	return err
}

// RecomputeVacancies derives remaining vacancies from the hire count, floored at zero.
func (r *jobRepo) RecomputeVacancies(ctx context.Context, jobID int64) (int, error) {
	query := `
		UPDATE jobs j
		SET remaining_vacancies = GREATEST(j.vacancies - (SELECT COUNT(*) FROM job_hires h WHERE h.job_id = j.id), 0),
		    updated_at = NOW()
		WHERE j.id = $1
		RETURNING j.remaining_vacancies`

	var remaining int
	if err := conn(ctx, r.db).QueryRow(ctx, query, jobID).Scan(&remaining); err != nil {
		return 0, notFound(err)
	}
	return remaining, nil
}
