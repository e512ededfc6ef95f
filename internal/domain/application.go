package domain

import (
	"context"
	"time"
)

// Application status constants
const (
	ApplicationStatusApplied           = "applied"
	ApplicationStatusReviewed          = "reviewed"
	ApplicationStatusAccepted          = "accepted"
	ApplicationStatusInterviewPending  = "interview_pending"
	ApplicationStatusScheduled         = "scheduled"
	ApplicationStatusPendingReschedule = "interview_cancelled_pending_reschedule"
	ApplicationStatusHired             = "hired"
	ApplicationStatusRejected          = "rejected"
)

// Application is the slice of a job application the scheduling core reads and writes.
type Application struct {
	ID              int64     `json:"id"`
	JobID           int64     `json:"job_id"`
	CandidateUserID string    `json:"candidate_user_id"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Joined data
	JobTitle *string `json:"job_title,omitempty"`
}

// IsClosed reports whether the application already reached a final decision.
func (a *Application) IsClosed() bool {
	return a.Status == ApplicationStatusHired || a.Status == ApplicationStatusRejected
}

// ApplicationRepository is the Application store collaborator.
type ApplicationRepository interface {
	GetByID(ctx context.Context, id int64) (*Application, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}
