package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/internal/usecase"
	"go-interview-scheduler/pkg/apperror"
	"go-interview-scheduler/pkg/audit"
	"go-interview-scheduler/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type interviewFixture struct {
	*schedulingFixture
	interviews   *MockInterviewRepo
	events       *MockEventRepo
	applications *MockApplicationRepo
	jobs         *MockJobRepo
	notifier     *MockNotifier
	uc           domain.InterviewUsecase
}

func newInterviewFixture() *interviewFixture {
	f := &interviewFixture{
		schedulingFixture: newSchedulingFixture().withWeeklyRule(),
		interviews:        new(MockInterviewRepo),
		events:            new(MockEventRepo),
		applications:      new(MockApplicationRepo),
		jobs:              new(MockJobRepo),
		notifier:          new(MockNotifier),
	}
	f.notifier.On("Notify", mock.Anything, mock.AnythingOfType("domain.Notification")).Return(nil).Maybe()
	f.applications.On("UpdateStatus", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	f.uc = usecase.NewInterviewUsecase(usecase.InterviewDeps{
		Tx:              fakeTx{},
		InterviewRepo:   f.interviews,
		EventRepo:       f.events,
		ApplicationRepo: f.applications,
		JobRepo:         f.jobs,
		Booking:         f.booking,
		Notifier:        f.notifier,
		Validate:        validation.New(),
		Audit:           audit.NewNop(),
		Now:             clock,
	})
	return f
}

// withFailingNotifier makes every notification dispatch fail.
func (f *interviewFixture) withFailingNotifier() *interviewFixture {
	f.notifier.ExpectedCalls = nil
	f.notifier.On("Notify", mock.Anything, mock.AnythingOfType("domain.Notification")).Return(errors.New("mail relay unreachable"))
	return f
}

// stored registers iv as the current row for its id.
func (f *interviewFixture) stored(iv *domain.Interview) {
	f.interviews.On("GetByID", mock.Anything, iv.ID).Return(iv, nil)
}

func pendingInterview(id string) *domain.Interview {
	return &domain.Interview{
		ID:            id,
		ApplicationID: 7,
		JobSeekerID:   seekerID,
		EmployerID:    employerID,
		JobID:         3,
		Status:        domain.InterviewStatusPending,
		Result:        domain.InterviewResultPending,
	}
}

func scheduledInterview(id, start, end string) *domain.Interview {
	iv := pendingInterview(id)
	d := monday
	iv.Date = &d
	iv.StartTime = start
	iv.EndTime = end
	iv.Status = domain.InterviewStatusScheduled
	return iv
}

var (
	employerActor = domain.Actor{UserID: employerID, Role: domain.RoleEmployer}
	seekerActor   = domain.Actor{UserID: seekerID, Role: domain.RoleCandidate}
)

func slotRequest(start, end string) domain.SlotRequest {
	return domain.SlotRequest{Date: "2030-01-14", StartTime: start, EndTime: end}
}

func TestCreateInterview(t *testing.T) {
	req := domain.CreateInterviewRequest{ApplicationID: 7, JobSeekerID: seekerID, EmployerID: employerID, JobID: 3}

	setup := func() *interviewFixture {
		f := newInterviewFixture()
		f.applications.On("GetByID", mock.Anything, int64(7)).
			Return(&domain.Application{ID: 7, JobID: 3, CandidateUserID: seekerID, Status: domain.ApplicationStatusAccepted}, nil)
		f.jobs.On("GetByID", mock.Anything, int64(3)).
			Return(&domain.Job{ID: 3, EmployerUserID: employerID, Title: "Backend Engineer"}, nil)
		return f
	}

	t.Run("creates a pending interview", func(t *testing.T) {
		f := setup()
		f.interviews.On("GetActiveByApplication", mock.Anything, int64(7)).Return(nil, domain.ErrNotFound)
		f.interviews.On("Create", mock.Anything, mock.AnythingOfType("*domain.Interview")).Return(nil)

		iv, err := f.uc.Create(context.Background(), employerActor, req)
		require.NoError(t, err)
		assert.NotEmpty(t, iv.ID)
		assert.Equal(t, domain.InterviewStatusPending, iv.Status)
		assert.Nil(t, iv.Date)
		f.applications.AssertCalled(t, "UpdateStatus", mock.Anything, int64(7), domain.ApplicationStatusInterviewPending)
		f.notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(n domain.Notification) bool {
			return n.UserID == seekerID && n.Type == domain.NotificationInterviewInvitation
		}))
	})

	t.Run("second active interview is a conflict", func(t *testing.T) {
		f := setup()
		f.interviews.On("GetActiveByApplication", mock.Anything, int64(7)).Return(pendingInterview("iv-0"), nil)

		_, err := f.uc.Create(context.Background(), employerActor, req)
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
		f.interviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lost race on the store index is a conflict", func(t *testing.T) {
		f := setup()
		f.interviews.On("GetActiveByApplication", mock.Anything, int64(7)).Return(nil, domain.ErrNotFound)
		f.interviews.On("Create", mock.Anything, mock.Anything).Return(domain.ErrActiveInterviewExists)

		_, err := f.uc.Create(context.Background(), employerActor, req)
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	})

	t.Run("only the hiring employer", func(t *testing.T) {
		f := setup()
		_, err := f.uc.Create(context.Background(), seekerActor, req)
		assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
	})
}

func TestScheduleInterview(t *testing.T) {
	t.Run("books the slot and removes it from availability", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(pendingInterview("iv-1"))
		f.interviews.On("Update", mock.Anything, mock.AnythingOfType("*domain.Interview"), domain.InterviewStatusPending).Return(nil)

		iv, err := f.uc.Schedule(context.Background(), seekerActor, "iv-1", slotRequest("09:00", "10:00"))
		require.NoError(t, err)
		assert.Equal(t, domain.InterviewStatusScheduled, iv.Status)
		assert.Equal(t, "2030-01-14", iv.Date.String())
		assert.Equal(t, "iv-1", f.bookings.holder(slotKey(monday, "09:00", "10:00")))
		f.applications.AssertCalled(t, "UpdateStatus", mock.Anything, int64(7), domain.ApplicationStatusScheduled)

		projection, err := f.availability.GetAvailableSlots(context.Background(), employerID, datePtr(monday), datePtr(monday))
		require.NoError(t, err)
		assert.Equal(t, []domain.TimeSlot{{StartTime: "10:00", EndTime: "11:00"}}, projection.AvailableDates["2030-01-14"])

		// Employer is told, not the job seeker who booked
		f.notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(n domain.Notification) bool {
			return n.UserID == employerID && n.Type == domain.NotificationInterviewScheduled
		}))
	})

	t.Run("taken slot is a conflict and the interview stays pending", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(pendingInterview("iv-2"))
		require.NoError(t, f.bookings.Reserve(context.Background(), slotKey(monday, "09:00", "10:00"), "iv-1"))

		_, err := f.uc.Schedule(context.Background(), seekerActor, "iv-2", slotRequest("09:00", "10:00"))
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
		f.interviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("slot the employer does not offer", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(pendingInterview("iv-3"))

		_, err := f.uc.Schedule(context.Background(), seekerActor, "iv-3", slotRequest("18:00", "19:00"))
		assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
	})

	t.Run("already scheduled", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(scheduledInterview("iv-4", "09:00", "10:00"))

		_, err := f.uc.Schedule(context.Background(), seekerActor, "iv-4", slotRequest("10:00", "11:00"))
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})

	t.Run("outsiders cannot schedule", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(pendingInterview("iv-5"))

		_, err := f.uc.Schedule(context.Background(), domain.Actor{UserID: "stranger", Role: domain.RoleCandidate}, "iv-5", slotRequest("09:00", "10:00"))
		assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
	})

	t.Run("malformed time", func(t *testing.T) {
		f := newInterviewFixture()
		_, err := f.uc.Schedule(context.Background(), seekerActor, "iv-6", slotRequest("9am", "10:00"))
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("concurrent status change", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(pendingInterview("iv-7"))
		f.interviews.On("Update", mock.Anything, mock.Anything, domain.InterviewStatusPending).Return(domain.ErrStaleState)

		_, err := f.uc.Schedule(context.Background(), seekerActor, "iv-7", slotRequest("09:00", "10:00"))
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})
}

func TestScheduleInterview_ConcurrentRequestsForOneSlot(t *testing.T) {
	f := newInterviewFixture()
	f.interviews.On("Update", mock.Anything, mock.Anything, domain.InterviewStatusPending).Return(nil)

	const n = 20
	for i := 0; i < n; i++ {
		f.stored(pendingInterview(fmt.Sprintf("iv-%d", i)))
	}

	var (
		wg        sync.WaitGroup
		succeeded int32
		conflicts int32
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := f.uc.Schedule(context.Background(), seekerActor, id, slotRequest("10:00", "11:00"))
			if err == nil {
				atomic.AddInt32(&succeeded, 1)
			} else if apperror.IsKind(err, apperror.KindConflict) {
				atomic.AddInt32(&conflicts, 1)
			}
		}(fmt.Sprintf("iv-%d", i))
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded)
	assert.Equal(t, int32(n-1), conflicts)
	f.interviews.AssertNumberOfCalls(t, "Update", 1)
}

func TestTransitions_SurviveNotificationFailure(t *testing.T) {
	key := slotKey(monday, "09:00", "10:00")

	t.Run("schedule", func(t *testing.T) {
		f := newInterviewFixture().withFailingNotifier()
		f.stored(pendingInterview("iv-1"))
		f.interviews.On("Update", mock.Anything, mock.Anything, domain.InterviewStatusPending).Return(nil)

		iv, err := f.uc.Schedule(context.Background(), seekerActor, "iv-1", slotRequest("09:00", "10:00"))
		require.NoError(t, err)
		assert.Equal(t, domain.InterviewStatusScheduled, iv.Status)
		assert.Equal(t, "iv-1", f.bookings.holder(key))
		f.notifier.AssertCalled(t, "Notify", mock.Anything, mock.Anything)
	})

	t.Run("cancel", func(t *testing.T) {
		f := newInterviewFixture().withFailingNotifier()
		f.stored(scheduledInterview("iv-2", "09:00", "10:00"))
		require.NoError(t, f.bookings.Reserve(context.Background(), key, "iv-2"))
		f.interviews.On("Update", mock.Anything, mock.Anything, domain.InterviewStatusScheduled).Return(nil)

		iv, err := f.uc.Cancel(context.Background(), seekerActor, "iv-2", domain.CancelInterviewRequest{Reason: "Accepted another offer"})
		require.NoError(t, err)
		assert.Equal(t, domain.InterviewStatusCancelled, iv.Status)
		reserved, _ := f.bookings.IsReserved(context.Background(), key)
		assert.False(t, reserved)
		f.notifier.AssertCalled(t, "Notify", mock.Anything, mock.Anything)
	})
}

func TestCancelInterview(t *testing.T) {
	t.Run("releases the booked slot", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(scheduledInterview("iv-1", "09:00", "10:00"))
		key := slotKey(monday, "09:00", "10:00")
		require.NoError(t, f.bookings.Reserve(context.Background(), key, "iv-1"))
		f.interviews.On("Update", mock.Anything, mock.Anything, domain.InterviewStatusScheduled).Return(nil)

		iv, err := f.uc.Cancel(context.Background(), employerActor, "iv-1", domain.CancelInterviewRequest{Reason: "Panel unavailable"})
		require.NoError(t, err)
		assert.Equal(t, domain.InterviewStatusCancelled, iv.Status)
		assert.True(t, iv.RequiresReschedule)
		require.NotNil(t, iv.Cancellation)
		assert.Equal(t, employerID, iv.Cancellation.CancelledBy)
		assert.Equal(t, fixedNow, iv.Cancellation.CancelledAt)

		reserved, _ := f.bookings.IsReserved(context.Background(), key)
		assert.False(t, reserved)

		projection, err := f.availability.GetAvailableSlots(context.Background(), employerID, datePtr(monday), datePtr(monday))
		require.NoError(t, err)
		assert.Contains(t, projection.AvailableDates["2030-01-14"], domain.TimeSlot{StartTime: "09:00", EndTime: "10:00"})
		f.applications.AssertCalled(t, "UpdateStatus", mock.Anything, int64(7), domain.ApplicationStatusPendingReschedule)
	})

	t.Run("reason is required", func(t *testing.T) {
		f := newInterviewFixture()
		_, err := f.uc.Cancel(context.Background(), employerActor, "iv-1", domain.CancelInterviewRequest{})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("completed is terminal", func(t *testing.T) {
		f := newInterviewFixture()
		iv := scheduledInterview("iv-2", "09:00", "10:00")
		iv.Status = domain.InterviewStatusCompleted
		f.stored(iv)

		_, err := f.uc.Cancel(context.Background(), employerActor, "iv-2", domain.CancelInterviewRequest{Reason: "Oops"})
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))

		_, err = f.uc.Reschedule(context.Background(), employerActor, "iv-2", slotRequest("10:00", "11:00"))
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})
}

func TestRescheduleInterview(t *testing.T) {
	t.Run("books the new slot before releasing the old one", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(scheduledInterview("iv-1", "09:00", "10:00"))
		oldKey := slotKey(monday, "09:00", "10:00")
		newKey := slotKey(monday, "10:00", "11:00")
		require.NoError(t, f.bookings.Reserve(context.Background(), oldKey, "iv-1"))
		f.interviews.On("Update", mock.Anything, mock.Anything, domain.InterviewStatusScheduled).Return(nil)

		iv, err := f.uc.Reschedule(context.Background(), seekerActor, "iv-1", slotRequest("10:00", "11:00"))
		require.NoError(t, err)
		assert.Equal(t, domain.InterviewStatusScheduled, iv.Status)
		assert.Equal(t, "10:00", iv.StartTime)
		require.NotNil(t, iv.RescheduledFrom)
		assert.Equal(t, "09:00", iv.RescheduledFrom.StartTime)
		assert.Equal(t, "2030-01-14", iv.RescheduledFrom.Date.String())

		assert.Equal(t, "iv-1", f.bookings.holder(newKey))
		assert.Empty(t, f.bookings.holder(oldKey))
	})

	t.Run("taken target keeps the original booking", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(scheduledInterview("iv-1", "09:00", "10:00"))
		oldKey := slotKey(monday, "09:00", "10:00")
		require.NoError(t, f.bookings.Reserve(context.Background(), oldKey, "iv-1"))
		require.NoError(t, f.bookings.Reserve(context.Background(), slotKey(monday, "10:00", "11:00"), "iv-2"))

		_, err := f.uc.Reschedule(context.Background(), seekerActor, "iv-1", slotRequest("10:00", "11:00"))
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
		assert.Equal(t, "iv-1", f.bookings.holder(oldKey))
		f.interviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("same slot is rejected", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(scheduledInterview("iv-1", "09:00", "10:00"))

		_, err := f.uc.Reschedule(context.Background(), seekerActor, "iv-1", slotRequest("09:00", "10:00"))
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("cancelled interview picks a new slot", func(t *testing.T) {
		f := newInterviewFixture()
		iv := scheduledInterview("iv-1", "09:00", "10:00")
		iv.Status = domain.InterviewStatusCancelled
		iv.RequiresReschedule = true
		f.stored(iv)
		f.interviews.On("Update", mock.Anything, mock.Anything, domain.InterviewStatusCancelled).Return(nil)

		// The old slot was released on cancellation and may be picked again
		next, err := f.uc.Reschedule(context.Background(), seekerActor, "iv-1", slotRequest("09:00", "10:00"))
		require.NoError(t, err)
		assert.Equal(t, domain.InterviewStatusScheduled, next.Status)
		assert.False(t, next.RequiresReschedule)
		assert.Equal(t, "iv-1", f.bookings.holder(slotKey(monday, "09:00", "10:00")))
	})

	t.Run("pending interviews are scheduled, not rescheduled", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(pendingInterview("iv-1"))

		_, err := f.uc.Reschedule(context.Background(), seekerActor, "iv-1", slotRequest("09:00", "10:00"))
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})
}

func TestCompleteInterview(t *testing.T) {
	t.Run("hire updates the job", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(scheduledInterview("iv-1", "09:00", "10:00"))
		f.interviews.On("Update", mock.Anything, mock.Anything, domain.InterviewStatusScheduled).Return(nil)
		f.jobs.On("AppendHire", mock.Anything, mock.MatchedBy(func(h *domain.JobHire) bool {
			return h.JobID == 3 && h.ApplicationID == 7 && h.JobSeekerID == seekerID
		})).Return(nil)
		f.jobs.On("RecomputeVacancies", mock.Anything, int64(3)).Return(1, nil)

		iv, err := f.uc.Complete(context.Background(), employerActor, "iv-1",
			domain.CompleteInterviewRequest{Result: domain.InterviewResultHired, Feedback: "Strong systems design"})
		require.NoError(t, err)
		assert.Equal(t, domain.InterviewStatusCompleted, iv.Status)
		assert.Equal(t, domain.InterviewResultHired, iv.Result)
		require.NotNil(t, iv.Feedback)
		f.applications.AssertCalled(t, "UpdateStatus", mock.Anything, int64(7), domain.ApplicationStatusHired)
		f.jobs.AssertExpectations(t)
	})

	t.Run("rejection leaves the job alone", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(scheduledInterview("iv-1", "09:00", "10:00"))
		f.interviews.On("Update", mock.Anything, mock.Anything, domain.InterviewStatusScheduled).Return(nil)

		_, err := f.uc.Complete(context.Background(), employerActor, "iv-1", domain.CompleteInterviewRequest{Result: domain.InterviewResultRejected})
		require.NoError(t, err)
		f.applications.AssertCalled(t, "UpdateStatus", mock.Anything, int64(7), domain.ApplicationStatusRejected)
		f.jobs.AssertNotCalled(t, "AppendHire", mock.Anything, mock.Anything)
	})

	t.Run("only from scheduled", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(pendingInterview("iv-1"))

		_, err := f.uc.Complete(context.Background(), employerActor, "iv-1", domain.CompleteInterviewRequest{Result: domain.InterviewResultHired})
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))
	})

	t.Run("job seekers cannot complete", func(t *testing.T) {
		f := newInterviewFixture()
		f.stored(scheduledInterview("iv-1", "09:00", "10:00"))

		_, err := f.uc.Complete(context.Background(), seekerActor, "iv-1", domain.CompleteInterviewRequest{Result: domain.InterviewResultHired})
		assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
	})

	t.Run("result must be a decision", func(t *testing.T) {
		f := newInterviewFixture()
		_, err := f.uc.Complete(context.Background(), employerActor, "iv-1", domain.CompleteInterviewRequest{Result: domain.InterviewResultPending})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}

func TestInterviewReads(t *testing.T) {
	f := newInterviewFixture()
	f.stored(pendingInterview("iv-1"))
	f.interviews.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)
	f.events.On("ListByInterview", mock.Anything, "iv-1").Return(nil, nil)
	f.interviews.On("ListByJobSeeker", mock.Anything, seekerID, []domain.InterviewStatus{domain.InterviewStatusPending}).
		Return([]domain.Interview{*pendingInterview("iv-1")}, nil)

	_, err := f.uc.Get(context.Background(), seekerActor, "iv-1")
	assert.NoError(t, err)

	_, err = f.uc.Get(context.Background(), domain.Actor{UserID: "stranger", Role: domain.RoleEmployer}, "iv-1")
	assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))

	_, err = f.uc.Get(context.Background(), seekerActor, "missing")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	events, err := f.uc.History(context.Background(), employerActor, "iv-1")
	require.NoError(t, err)
	assert.NotNil(t, events)

	list, err := f.uc.ListMine(context.Background(), seekerActor, []domain.InterviewStatus{domain.InterviewStatusPending})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.uc.ListMine(context.Background(), seekerActor, []domain.InterviewStatus{"archived"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}
