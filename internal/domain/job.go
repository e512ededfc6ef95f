package domain

import (
	"context"
	"errors"
	"time"
)

// Common domain errors
var ErrNotFound = errors.New("resource not found")

type Job struct {
	ID                 int64     `json:"id"`
	CompanyID          int64     `json:"company_id"`
	EmployerUserID     string    `json:"employer_user_id"`
	Title              string    `json:"title"`
	Location           string    `json:"location"`
	CompanyStatus      string    `json:"company_status"`
	Vacancies          int       `json:"vacancies"`
	RemainingVacancies int       `json:"remaining_vacancies"`
	HiredApplicantIDs  []int64   `json:"hired_applicant_ids"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// JobHire is one entry of a job's hired-applicant list.
type JobHire struct {
	JobID         int64     `json:"job_id"`
	ApplicationID int64     `json:"application_id"`
	JobSeekerID   string    `json:"job_seeker_id"`
	InterviewID   string    `json:"interview_id"`
	HiredAt       time.Time `json:"hired_at"`
}

// JobRepository is the Job store collaborator.
type JobRepository interface {
	GetByID(ctx context.Context, id int64) (*Job, error)
	AppendHire(ctx context.Context, hire *JobHire) error
	// RecomputeVacancies sets remaining vacancies from the hire count and returns the new value.
	RecomputeVacancies(ctx context.Context, jobID int64) (int, error)
}
