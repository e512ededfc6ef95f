package domain

import (
	"context"
	"errors"
	"time"
)

// InterviewStatus is the lifecycle state of an interview.
type InterviewStatus string

const (
	InterviewStatusPending     InterviewStatus = "pending"
	InterviewStatusScheduled   InterviewStatus = "scheduled"
	InterviewStatusCancelled   InterviewStatus = "cancelled"
	InterviewStatusRescheduled InterviewStatus = "rescheduled" // transitional, en route back to scheduled
	InterviewStatusCompleted   InterviewStatus = "completed"
)

// InterviewResult is the employer's decision once an interview completes.
type InterviewResult string

const (
	InterviewResultPending  InterviewResult = "pending"
	InterviewResultHired    InterviewResult = "hired"
	InterviewResultRejected InterviewResult = "rejected"
)

var (
	ErrActiveInterviewExists = errors.New("application already has an active interview")
	ErrStaleState            = errors.New("interview changed concurrently")
)

var interviewTransitions = map[InterviewStatus][]InterviewStatus{
	InterviewStatusPending:     {InterviewStatusScheduled, InterviewStatusCancelled},
	InterviewStatusScheduled:   {InterviewStatusCancelled, InterviewStatusRescheduled, InterviewStatusCompleted},
	InterviewStatusCancelled:   {InterviewStatusRescheduled},
	InterviewStatusRescheduled: {InterviewStatusScheduled},
	InterviewStatusCompleted:   nil,
}

// CanTransitionTo reports whether next is a legal successor of s.
func (s InterviewStatus) CanTransitionTo(next InterviewStatus) bool {
	for _, allowed := range interviewTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive reports whether the status counts toward the one-active-interview-per-application rule.
func (s InterviewStatus) IsActive() bool {
	return s == InterviewStatusPending || s == InterviewStatusScheduled || s == InterviewStatusRescheduled
}

// Cancellation records who cancelled an interview and why.
type Cancellation struct {
	Reason         string    `json:"reason"`
	AdditionalInfo string    `json:"additional_info,omitempty"`
	CancelledBy    string    `json:"cancelled_by"`
	CancelledAt    time.Time `json:"cancelled_at"`
}

// RescheduleSnapshot is the timing an interview held before it was rescheduled.
type RescheduleSnapshot struct {
	Date          Date      `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	RescheduledAt time.Time `json:"rescheduled_at"`
}

// Interview ties a job application to a booked slot and its outcome.
// Date+StartTime+EndTime are canonical; ScheduledAt is derived from them.
type Interview struct {
	ID                 string              `json:"id"`
	ApplicationID      int64               `json:"application_id"`
	JobSeekerID        string              `json:"job_seeker_id"`
	EmployerID         string              `json:"employer_id"`
	JobID              int64               `json:"job_id"`
	Date               *Date               `json:"date,omitempty"`
	StartTime          string              `json:"start_time,omitempty"`
	EndTime            string              `json:"end_time,omitempty"`
	Status             InterviewStatus     `json:"status"`
	Result             InterviewResult     `json:"result"`
	Feedback           *string             `json:"feedback,omitempty"`
	Cancellation       *Cancellation       `json:"cancellation,omitempty"`
	RescheduledFrom    *RescheduleSnapshot `json:"rescheduled_from,omitempty"`
	RequiresReschedule bool                `json:"requires_reschedule"`
	MeetingLink        *string             `json:"meeting_link,omitempty"`
	Notes              *string             `json:"notes,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`

	// Joined data for list responses
	JobTitle *string `json:"job_title,omitempty"`
}

// SlotKey returns the booked slot of the interview, if it has timing.
func (i *Interview) SlotKey() (SlotKey, bool) {
	if i.Date == nil || i.StartTime == "" || i.EndTime == "" {
		return SlotKey{}, false
	}
	return SlotKey{EmployerID: i.EmployerID, Date: *i.Date, StartTime: i.StartTime, EndTime: i.EndTime}, true
}

// ScheduledAt derives the start instant from the canonical date and start time.
func (i *Interview) ScheduledAt() *time.Time {
	if i.Date == nil || i.StartTime == "" {
		return nil
	}
	minutes, err := ParseClock(i.StartTime)
	if err != nil {
		return nil
	}
	at := i.Date.Time.Add(time.Duration(minutes) * time.Minute)
	return &at
}

// IsParticipant reports whether userID is the employer or the job seeker.
func (i *Interview) IsParticipant(userID string) bool {
	return userID != "" && (userID == i.EmployerID || userID == i.JobSeekerID)
}

// Counterpart returns the other participant of userID.
func (i *Interview) Counterpart(userID string) string {
	if userID == i.EmployerID {
		return i.JobSeekerID
	}
	return i.EmployerID
}

// ============================================================================
// Requests
// ============================================================================

type CreateInterviewRequest struct {
	ApplicationID int64  `json:"application_id" validate:"required,gt=0"`
	JobSeekerID   string `json:"job_seeker_id" validate:"required"`
	EmployerID    string `json:"employer_id" validate:"required"`
	JobID         int64  `json:"job_id" validate:"required,gt=0"`
}

// SlotRequest carries the date and time for ScheduleInterview / RescheduleInterview.
type SlotRequest struct {
	Date        string  `json:"date" validate:"required,calendar_date"`
	StartTime   string  `json:"start_time" validate:"required,clock"`
	EndTime     string  `json:"end_time" validate:"required,clock"`
	MeetingLink *string `json:"meeting_link" validate:"omitempty,url"`
	Notes       *string `json:"notes" validate:"omitempty,max=2000"`
}

type CancelInterviewRequest struct {
	Reason         string `json:"reason" validate:"required,max=500"`
	AdditionalInfo string `json:"additional_info" validate:"max=2000"`
}

type CompleteInterviewRequest struct {
	Result   InterviewResult `json:"result" validate:"required,oneof=hired rejected"`
	Feedback string          `json:"feedback" validate:"max=5000"`
}

// InterviewEvent is one row of an interview's transition history.
type InterviewEvent struct {
	ID          int64     `json:"id"`
	InterviewID string    `json:"interview_id"`
	Event       string    `json:"event"`
	FromStatus  string    `json:"from_status,omitempty"`
	ToStatus    string    `json:"to_status,omitempty"`
	ActorID     string    `json:"actor_id,omitempty"`
	Details     []byte    `json:"details,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ============================================================================
// Repository & Usecase Interfaces
// ============================================================================

type InterviewRepository interface {
	// Create returns ErrActiveInterviewExists when the application already has an active interview.
	Create(ctx context.Context, interview *Interview) error
	GetByID(ctx context.Context, id string) (*Interview, error)
	GetActiveByApplication(ctx context.Context, applicationID int64) (*Interview, error)
	// Update persists interview only if its stored status still equals prior (ErrStaleState otherwise).
	Update(ctx context.Context, interview *Interview, prior InterviewStatus) error
	ListByEmployer(ctx context.Context, employerID string, statuses []InterviewStatus) ([]Interview, error)
	ListByJobSeeker(ctx context.Context, jobSeekerID string, statuses []InterviewStatus) ([]Interview, error)
	ListByEmployerInRange(ctx context.Context, employerID string, from, to Date) ([]Interview, error)
}

type InterviewEventRepository interface {
	Create(ctx context.Context, event *InterviewEvent) error
	ListByInterview(ctx context.Context, interviewID string) ([]InterviewEvent, error)
}

type InterviewUsecase interface {
	Create(ctx context.Context, actor Actor, req CreateInterviewRequest) (*Interview, error)
	Schedule(ctx context.Context, actor Actor, interviewID string, req SlotRequest) (*Interview, error)
	Cancel(ctx context.Context, actor Actor, interviewID string, req CancelInterviewRequest) (*Interview, error)
	Reschedule(ctx context.Context, actor Actor, interviewID string, req SlotRequest) (*Interview, error)
	Complete(ctx context.Context, actor Actor, interviewID string, req CompleteInterviewRequest) (*Interview, error)
	Get(ctx context.Context, actor Actor, interviewID string) (*Interview, error)
	History(ctx context.Context, actor Actor, interviewID string) ([]InterviewEvent, error)
	ListMine(ctx context.Context, actor Actor, statuses []InterviewStatus) ([]Interview, error)
	// Export renders the employer's interviews between from and to as xlsx or csv.
	Export(ctx context.Context, actor Actor, from, to Date, format string) ([]byte, string, error)
}
