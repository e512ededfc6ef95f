package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/apperror"
	"go-interview-scheduler/pkg/audit"
	"go-interview-scheduler/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// InterviewDeps groups the collaborators of the interview lifecycle.
type InterviewDeps struct {
	Tx              domain.Transactor
	InterviewRepo   domain.InterviewRepository
	EventRepo       domain.InterviewEventRepository
	ApplicationRepo domain.ApplicationRepository
	JobRepo         domain.JobRepository
	Booking         domain.BookingUsecase
	Notifier        domain.NotificationDispatcher
	Validate        *validator.Validate
	Audit           *audit.Logger
	Now             func() time.Time
}

type interviewUsecase struct {
	tx              domain.Transactor
	interviewRepo   domain.InterviewRepository
	eventRepo       domain.InterviewEventRepository
	applicationRepo domain.ApplicationRepository
	jobRepo         domain.JobRepository
	booking         domain.BookingUsecase
	notifier        domain.NotificationDispatcher
	validate        *validator.Validate
	audit           *audit.Logger
	now             func() time.Time
}

// NewInterviewUsecase creates the interview lifecycle manager
func NewInterviewUsecase(deps InterviewDeps) domain.InterviewUsecase {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &interviewUsecase{
		tx:              deps.Tx,
		interviewRepo:   deps.InterviewRepo,
		eventRepo:       deps.EventRepo,
		applicationRepo: deps.ApplicationRepo,
		jobRepo:         deps.JobRepo,
		booking:         deps.Booking,
		notifier:        deps.Notifier,
		validate:        deps.Validate,
		audit:           deps.Audit,
		now:             deps.Now,
	}
}

// Create opens a pending interview for an application the employer accepted.
func (uc *interviewUsecase) Create(ctx context.Context, actor domain.Actor, req domain.CreateInterviewRequest) (*domain.Interview, error) {
	if err := uc.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	// 1. Only the hiring employer may invite
	if !actor.IsEmployer() || actor.UserID != req.EmployerID {
		return nil, apperror.Forbidden("Only the hiring employer can create an interview")
	}

	// 2. Application must belong to this job and job seeker
	app, err := uc.applicationRepo.GetByID(ctx, req.ApplicationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Application not found")
		}
		return nil, apperror.Internal(err)
	}
	if app.JobID != req.JobID || app.CandidateUserID != req.JobSeekerID {
		return nil, apperror.Validation("Application does not match the job and job seeker", nil)
	}
	if app.IsClosed() {
		return nil, apperror.InvalidState("Application already has a final decision")
	}

	// 3. Job must be owned by the employer
	job, err := uc.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Job not found")
		}
		return nil, apperror.Internal(err)
	}
	if job.EmployerUserID != req.EmployerID {
		return nil, apperror.Forbidden("You do not own this job")
	}

	// 4. One active interview per application
	if _, err := uc.interviewRepo.GetActiveByApplication(ctx, req.ApplicationID); err == nil {
		return nil, apperror.Conflict("Application already has an active interview")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, apperror.Internal(err)
	}

	iv := &domain.Interview{
		ID:            uuid.NewString(),
		ApplicationID: req.ApplicationID,
		JobSeekerID:   req.JobSeekerID,
		EmployerID:    req.EmployerID,
		JobID:         req.JobID,
		Status:        domain.InterviewStatusPending,
		Result:        domain.InterviewResultPending,
		JobTitle:      &job.Title,
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.interviewRepo.Create(ctx, iv); err != nil {
			return err
		}
		return uc.applicationRepo.UpdateStatus(ctx, app.ID, domain.ApplicationStatusInterviewPending)
	})
	if errors.Is(err, domain.ErrActiveInterviewExists) {
		return nil, apperror.Conflict("Application already has an active interview")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	uc.audit.Transition(ctx, audit.EventInterviewCreated, iv.ID, iv.EmployerID, actor.UserID, "", string(iv.Status), nil)
	uc.notify(ctx, domain.Notification{
		UserID:  iv.JobSeekerID,
		Title:   "Interview invitation",
		Message: fmt.Sprintf("You have been invited to interview for %s. Pick a time slot to schedule it.", job.Title),
		Type:    domain.NotificationInterviewInvitation,
		Metadata: map[string]interface{}{
			"interview_id":   iv.ID,
			"application_id": iv.ApplicationID,
			"employer_id":    iv.EmployerID,
		},
	})
	return iv, nil
}

// Schedule books a slot for a pending interview.
func (uc *interviewUsecase) Schedule(ctx context.Context, actor domain.Actor, interviewID string, req domain.SlotRequest) (*domain.Interview, error) {
	date, err := uc.parseSlotRequest(req)
	if err != nil {
		return nil, err
	}
	iv, err := uc.loadForParticipant(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}
	if iv.Status != domain.InterviewStatusPending {
		return nil, apperror.InvalidState(fmt.Sprintf("Cannot schedule an interview that is %s", iv.Status))
	}

	key := domain.SlotKey{EmployerID: iv.EmployerID, Date: date, StartTime: req.StartTime, EndTime: req.EndTime}
	prior := iv.Status
	next := *iv
	next.Date = &date
	next.StartTime = req.StartTime
	next.EndTime = req.EndTime
	next.Status = domain.InterviewStatusScheduled
	next.RequiresReschedule = false
	applyMeetingDetails(&next, req)

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.booking.Book(ctx, key, iv.ID); err != nil {
			return err
		}
		if err := uc.interviewRepo.Update(ctx, &next, prior); err != nil {
			return err
		}
		return uc.applicationRepo.UpdateStatus(ctx, iv.ApplicationID, domain.ApplicationStatusScheduled)
	})
	if err != nil {
		return nil, uc.transitionError(err)
	}

	uc.audit.Transition(ctx, audit.EventInterviewScheduled, next.ID, next.EmployerID, actor.UserID, string(prior), string(next.Status),
		slotDetails(key))
	uc.notify(ctx, domain.Notification{
		UserID:   next.Counterpart(actor.UserID),
		Title:    "Interview scheduled",
		Message:  fmt.Sprintf("Interview scheduled on %s from %s to %s.", date, next.StartTime, next.EndTime),
		Type:     domain.NotificationInterviewScheduled,
		Metadata: interviewMetadata(&next),
	})
	return &next, nil
}

// Cancel moves a pending or scheduled interview to cancelled and frees its slot.
func (uc *interviewUsecase) Cancel(ctx context.Context, actor domain.Actor, interviewID string, req domain.CancelInterviewRequest) (*domain.Interview, error) {
	if err := uc.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	iv, err := uc.loadForParticipant(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}
	if !iv.Status.CanTransitionTo(domain.InterviewStatusCancelled) {
		return nil, apperror.InvalidState(fmt.Sprintf("Cannot cancel an interview that is %s", iv.Status))
	}

	prior := iv.Status
	next := *iv
	next.Status = domain.InterviewStatusCancelled
	next.RequiresReschedule = true
	next.Cancellation = &domain.Cancellation{
		Reason:         req.Reason,
		AdditionalInfo: req.AdditionalInfo,
		CancelledBy:    actor.UserID,
		CancelledAt:    uc.now(),
	}

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.interviewRepo.Update(ctx, &next, prior); err != nil {
			return err
		}
		if key, ok := iv.SlotKey(); ok && prior == domain.InterviewStatusScheduled {
			if err := uc.booking.Release(ctx, key, iv.ID); err != nil {
				return err
			}
		}
		return uc.applicationRepo.UpdateStatus(ctx, iv.ApplicationID, domain.ApplicationStatusPendingReschedule)
	})
	if err != nil {
		return nil, uc.transitionError(err)
	}

	uc.audit.Transition(ctx, audit.EventInterviewCancelled, next.ID, next.EmployerID, actor.UserID, string(prior), string(next.Status),
		map[string]interface{}{"reason": req.Reason})
	metadata := interviewMetadata(&next)
	metadata["requires_reschedule"] = true
	uc.notify(ctx, domain.Notification{
		UserID:   next.Counterpart(actor.UserID),
		Title:    "Interview cancelled",
		Message:  fmt.Sprintf("The interview was cancelled: %s. Please pick a new time.", req.Reason),
		Type:     domain.NotificationInterviewCancelled,
		Metadata: metadata,
	})
	return &next, nil
}

// Reschedule books the new slot before releasing the old one, so a failed
// booking leaves the interview exactly as it was.
func (uc *interviewUsecase) Reschedule(ctx context.Context, actor domain.Actor, interviewID string, req domain.SlotRequest) (*domain.Interview, error) {
	date, err := uc.parseSlotRequest(req)
	if err != nil {
		return nil, err
	}
	iv, err := uc.loadForParticipant(ctx, actor, interviewID)
	if err != nil {
		return nil, err
	}
	if !iv.Status.CanTransitionTo(domain.InterviewStatusRescheduled) {
		return nil, apperror.InvalidState(fmt.Sprintf("Cannot reschedule an interview that is %s", iv.Status))
	}

	newKey := domain.SlotKey{EmployerID: iv.EmployerID, Date: date, StartTime: req.StartTime, EndTime: req.EndTime}
	oldKey, hadSlot := iv.SlotKey()
	prior := iv.Status
	if prior == domain.InterviewStatusScheduled && hadSlot && oldKey.String() == newKey.String() {
		return nil, apperror.Validation("The new slot is the same as the current one", nil)
	}

	now := uc.now()
	next := *iv
	if hadSlot {
		next.RescheduledFrom = &domain.RescheduleSnapshot{
			Date:          oldKey.Date,
			StartTime:     oldKey.StartTime,
			EndTime:       oldKey.EndTime,
			RescheduledAt: now,
		}
	}
	next.Date = &date
	next.StartTime = req.StartTime
	next.EndTime = req.EndTime
	next.Status = domain.InterviewStatusScheduled
	next.RequiresReschedule = false
	applyMeetingDetails(&next, req)

	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		// 1. Confirm the new slot
		if err := uc.booking.Book(ctx, newKey, iv.ID); err != nil {
			return err
		}
		// 2. Move to the new timing (rescheduled is passed through, not stored)
		if err := uc.interviewRepo.Update(ctx, &next, prior); err != nil {
			return err
		}
		// 3. Only now discard the old booking
		if hadSlot && prior == domain.InterviewStatusScheduled {
			if err := uc.booking.Release(ctx, oldKey, iv.ID); err != nil {
				return err
			}
		}
		return uc.applicationRepo.UpdateStatus(ctx, iv.ApplicationID, domain.ApplicationStatusScheduled)
	})
	if err != nil {
		return nil, uc.transitionError(err)
	}

	details := slotDetails(newKey)
	if next.RescheduledFrom != nil {
		details["previous_date"] = next.RescheduledFrom.Date.String()
		details["previous_start_time"] = next.RescheduledFrom.StartTime
		details["previous_end_time"] = next.RescheduledFrom.EndTime
	}
	uc.audit.Transition(ctx, audit.EventInterviewRescheduled, next.ID, next.EmployerID, actor.UserID,
		string(prior), string(domain.InterviewStatusRescheduled), details)
	uc.audit.Transition(ctx, audit.EventInterviewScheduled, next.ID, next.EmployerID, actor.UserID,
		string(domain.InterviewStatusRescheduled), string(next.Status), slotDetails(newKey))

	uc.notify(ctx, domain.Notification{
		UserID:   next.Counterpart(actor.UserID),
		Title:    "Interview rescheduled",
		Message:  fmt.Sprintf("Interview moved to %s from %s to %s.", date, next.StartTime, next.EndTime),
		Type:     domain.NotificationInterviewRescheduled,
		Metadata: interviewMetadata(&next),
	})
	return &next, nil
}

// Complete records the employer's decision. Hiring also updates the job.
func (uc *interviewUsecase) Complete(ctx context.Context, actor domain.Actor, interviewID string, req domain.CompleteInterviewRequest) (*domain.Interview, error) {
	if err := uc.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	iv, err := uc.load(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !actor.IsEmployer() || actor.UserID != iv.EmployerID {
		return nil, apperror.Forbidden("Only the hiring employer can complete an interview")
	}
	if !iv.Status.CanTransitionTo(domain.InterviewStatusCompleted) {
		return nil, apperror.InvalidState(fmt.Sprintf("Cannot complete an interview that is %s", iv.Status))
	}

	prior := iv.Status
	next := *iv
	next.Status = domain.InterviewStatusCompleted
	next.Result = req.Result
	if req.Feedback != "" {
		feedback := req.Feedback
		next.Feedback = &feedback
	}

	applicationStatus := domain.ApplicationStatusRejected
	if req.Result == domain.InterviewResultHired {
		applicationStatus = domain.ApplicationStatusHired
	}

	remaining := -1
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.interviewRepo.Update(ctx, &next, prior); err != nil {
			return err
		}
		if err := uc.applicationRepo.UpdateStatus(ctx, iv.ApplicationID, applicationStatus); err != nil {
			return err
		}
		if req.Result != domain.InterviewResultHired {
			return nil
		}

		hire := &domain.JobHire{
			JobID:         iv.JobID,
			ApplicationID: iv.ApplicationID,
			JobSeekerID:   iv.JobSeekerID,
			InterviewID:   iv.ID,
			HiredAt:       uc.now(),
		}
		if err := uc.jobRepo.AppendHire(ctx, hire); err != nil {
			return err
		}
		var err error
		remaining, err = uc.jobRepo.RecomputeVacancies(ctx, iv.JobID)
		return err
	})
	if err != nil {
		return nil, uc.transitionError(err)
	}

	details := map[string]interface{}{"result": string(req.Result)}
	if remaining >= 0 {
		details["remaining_vacancies"] = remaining
	}
	uc.audit.Transition(ctx, audit.EventInterviewCompleted, next.ID, next.EmployerID, actor.UserID, string(prior), string(next.Status), details)

	message := "Thank you for interviewing. Unfortunately you were not selected."
	if req.Result == domain.InterviewResultHired {
		message = "Congratulations! You have been hired."
	}
	metadata := interviewMetadata(&next)
	metadata["result"] = string(req.Result)
	uc.notify(ctx, domain.Notification{
		UserID:   next.JobSeekerID,
		Title:    "Interview completed",
		Message:  message,
		Type:     domain.NotificationInterviewCompleted,
		Metadata: metadata,
	})
	return &next, nil
}

// Get returns an interview to one of its participants.
func (uc *interviewUsecase) Get(ctx context.Context, actor domain.Actor, interviewID string) (*domain.Interview, error) {
	iv, err := uc.load(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !iv.IsParticipant(actor.UserID) && !actor.IsAdmin() {
		return nil, apperror.Forbidden("You are not a participant of this interview")
	}
	return iv, nil
}

// History lists the recorded transitions of an interview.
func (uc *interviewUsecase) History(ctx context.Context, actor domain.Actor, interviewID string) ([]domain.InterviewEvent, error) {
	if _, err := uc.Get(ctx, actor, interviewID); err != nil {
		return nil, err
	}
	events, err := uc.eventRepo.ListByInterview(ctx, interviewID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if events == nil {
		events = []domain.InterviewEvent{}
	}
	return events, nil
}

// ListMine lists the caller's interviews, optionally filtered by status.
func (uc *interviewUsecase) ListMine(ctx context.Context, actor domain.Actor, statuses []domain.InterviewStatus) ([]domain.Interview, error) {
	for _, s := range statuses {
		switch s {
		case domain.InterviewStatusPending, domain.InterviewStatusScheduled, domain.InterviewStatusCancelled,
			domain.InterviewStatusRescheduled, domain.InterviewStatusCompleted:
		default:
			return nil, apperror.Validation(fmt.Sprintf("Unknown interview status %q", s), nil)
		}
	}

	var (
		interviews []domain.Interview
		err        error
	)
	switch actor.Role {
	case domain.RoleEmployer:
		interviews, err = uc.interviewRepo.ListByEmployer(ctx, actor.UserID, statuses)
	case domain.RoleCandidate:
		interviews, err = uc.interviewRepo.ListByJobSeeker(ctx, actor.UserID, statuses)
	default:
		return nil, apperror.Forbidden("Only employers and job seekers have interviews")
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if interviews == nil {
		interviews = []domain.Interview{}
	}
	return interviews, nil
}

// ============================================================================
// Helpers
// ============================================================================

func (uc *interviewUsecase) load(ctx context.Context, interviewID string) (*domain.Interview, error) {
	iv, err := uc.interviewRepo.GetByID(ctx, interviewID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Interview not found")
		}
		return nil, apperror.Internal(err)
	}
	return iv, nil
}

func (uc *interviewUsecase) loadForParticipant(ctx context.Context, actor domain.Actor, interviewID string) (*domain.Interview, error) {
	iv, err := uc.load(ctx, interviewID)
	if err != nil {
		return nil, err
	}
	if !iv.IsParticipant(actor.UserID) {
		return nil, apperror.Forbidden("You are not a participant of this interview")
	}
	return iv, nil
}

func (uc *interviewUsecase) parseSlotRequest(req domain.SlotRequest) (domain.Date, error) {
	if err := uc.validate.Struct(req); err != nil {
		return domain.Date{}, validationError(err)
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return domain.Date{}, apperror.Validation(err.Error(), err)
	}
	slot := domain.TimeSlot{StartTime: req.StartTime, EndTime: req.EndTime}
	if err := slot.Validate(); err != nil {
		return domain.Date{}, apperror.Validation(err.Error(), err)
	}
	return date, nil
}

// transitionError maps store errors raised inside a lifecycle transaction.
func (uc *interviewUsecase) transitionError(err error) error {
	switch {
	case errors.Is(err, domain.ErrStaleState):
		return apperror.InvalidState("Interview was modified concurrently; reload and try again")
	case errors.Is(err, domain.ErrSlotTaken):
		if apperror.IsKind(err, apperror.KindConflict) {
			return appError(err)
		}
		return apperror.Conflict("Slot is already booked; refresh availability and pick another slot")
	case errors.Is(err, domain.ErrActiveInterviewExists):
		return apperror.Conflict("Application already has an active interview")
	}
	return appError(err)
}

// notify is fire-and-forget: the transition is already committed.
func (uc *interviewUsecase) notify(ctx context.Context, n domain.Notification) {
	if uc.notifier == nil || n.UserID == "" {
		return
	}
	if err := uc.notifier.Notify(context.WithoutCancel(ctx), n); err != nil {
		logger.Log.Warn("notification dispatch failed",
			"user_id", n.UserID,
			"type", string(n.Type),
			"error", err,
		)
	}
}

func applyMeetingDetails(iv *domain.Interview, req domain.SlotRequest) {
	if req.MeetingLink != nil {
		iv.MeetingLink = req.MeetingLink
	}
	if req.Notes != nil {
		iv.Notes = req.Notes
	}
}

func slotDetails(key domain.SlotKey) map[string]interface{} {
	return map[string]interface{}{
		"date":       key.Date.String(),
		"start_time": key.StartTime,
		"end_time":   key.EndTime,
	}
}

func interviewMetadata(iv *domain.Interview) map[string]interface{} {
	m := map[string]interface{}{
		"interview_id":   iv.ID,
		"application_id": iv.ApplicationID,
		"job_id":         iv.JobID,
		"status":         string(iv.Status),
	}
	if iv.Date != nil {
		m["date"] = iv.Date.String()
		m["start_time"] = iv.StartTime
		m["end_time"] = iv.EndTime
	}
	return m
}
