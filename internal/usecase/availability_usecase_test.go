package usecase_test

import (
	"context"
	"testing"
	"time"

	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/internal/usecase"
	"go-interview-scheduler/pkg/apperror"
	"go-interview-scheduler/pkg/audit"
	"go-interview-scheduler/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type schedulingFixture struct {
	users        *MockUserRepo
	recurring    *MockRecurringRepo
	specific     *MockSpecificRepo
	bookings     *memBookingRepo
	availability domain.AvailabilityUsecase
	booking      domain.BookingUsecase
}

func newSchedulingFixture() *schedulingFixture {
	f := &schedulingFixture{
		users:     new(MockUserRepo),
		recurring: new(MockRecurringRepo),
		specific:  new(MockSpecificRepo),
		bookings:  newMemBookingRepo(),
	}
	f.users.On("GetByID", mock.Anything, employerID).Return(&domain.User{ID: employerID, Role: domain.RoleEmployer}, nil).Maybe()

	f.availability = usecase.NewAvailabilityUsecase(fakeTx{}, f.recurring, f.specific, f.bookings, f.users,
		validation.New(), audit.NewNop(), usecase.AvailabilityConfig{WindowDays: 30, MaxWindowDays: 60, Now: clock})
	f.booking = usecase.NewBookingUsecase(fakeTx{}, f.availability, f.bookings, f.specific, audit.NewNop(),
		usecase.BookingConfig{MaxWindowDays: 60, Now: clock})
	return f
}

// withWeeklyRule makes the Monday rule the only schedule.
func (f *schedulingFixture) withWeeklyRule() *schedulingFixture {
	f.specific.On("GetGoverning", mock.Anything, employerID, mock.Anything).Return(nil, domain.ErrNotFound).Maybe()
	f.specific.On("ListGoverningInRange", mock.Anything, employerID, mock.Anything, mock.Anything).
		Return([]domain.SpecificAvailability{}, nil).Maybe()
	f.recurring.On("ListActive", mock.Anything, employerID, mock.Anything, mock.Anything).
		Return([]domain.RecurringAvailabilityRule{weeklyRule()}, nil).Maybe()
	return f
}

func slotKey(date domain.Date, start, end string) domain.SlotKey {
	return domain.SlotKey{EmployerID: employerID, Date: date, StartTime: start, EndTime: end}
}

func datePtr(d domain.Date) *domain.Date { return &d }

func TestGetAvailableSlots_RecurringProjection(t *testing.T) {
	f := newSchedulingFixture().withWeeklyRule()

	projection, err := f.availability.GetAvailableSlots(context.Background(), employerID, datePtr(monday), datePtr(monday.AddDays(6)))
	require.NoError(t, err)

	require.Len(t, projection.AvailableDates, 1)
	slots := projection.AvailableDates["2030-01-14"]
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].StartTime)
	assert.Equal(t, "10:00", slots[1].StartTime)

	require.Len(t, projection.Slots, 2)
	assert.Equal(t, domain.OriginRecurring, projection.Slots[0].Origin.Kind)
	assert.Equal(t, int64(1), projection.Slots[0].Origin.RuleID)
	assert.Equal(t, domain.Monday, projection.Slots[0].Origin.DayOfWeek)
}

func TestGetAvailableSlots_SpecificRecordOverridesRule(t *testing.T) {
	f := newSchedulingFixture()
	override := domain.NewOverride(employerID, monday, []domain.TimeSlot{
		{StartTime: "14:00", EndTime: "15:00"},
		{StartTime: "15:00", EndTime: "16:00", IsBooked: true},
	})
	override.ID = 9
	f.specific.On("ListGoverningInRange", mock.Anything, employerID, mock.Anything, mock.Anything).
		Return([]domain.SpecificAvailability{*override}, nil)
	f.recurring.On("ListActive", mock.Anything, employerID, mock.Anything, mock.Anything).
		Return([]domain.RecurringAvailabilityRule{weeklyRule()}, nil)

	projection, err := f.availability.GetAvailableSlots(context.Background(), employerID, datePtr(monday), datePtr(monday.AddDays(7)))
	require.NoError(t, err)

	// The override replaces the rule on its date; the rule still governs the following Monday
	assert.Equal(t, []domain.TimeSlot{{StartTime: "14:00", EndTime: "15:00"}}, projection.AvailableDates["2030-01-14"])
	assert.Len(t, projection.AvailableDates["2030-01-21"], 2)
	assert.Equal(t, domain.OriginOverride, projection.Slots[0].Origin.Kind)
	assert.Equal(t, int64(9), projection.Slots[0].Origin.SpecificID)
}

func TestGetAvailableSlots_BookedSlotsAreNeverOffered(t *testing.T) {
	f := newSchedulingFixture().withWeeklyRule()
	require.NoError(t, f.bookings.Reserve(context.Background(), slotKey(monday, "09:00", "10:00"), "iv-1"))

	projection, err := f.availability.GetAvailableSlots(context.Background(), employerID, datePtr(monday), datePtr(monday))
	require.NoError(t, err)

	assert.Equal(t, []domain.TimeSlot{{StartTime: "10:00", EndTime: "11:00"}}, projection.AvailableDates["2030-01-14"])
	for _, s := range projection.Slots {
		assert.NotEqual(t, "09:00", s.StartTime)
	}
}

func TestGetAvailableSlots_Window(t *testing.T) {
	t.Run("from after to is rejected", func(t *testing.T) {
		f := newSchedulingFixture().withWeeklyRule()
		_, err := f.availability.GetAvailableSlots(context.Background(), employerID, datePtr(monday), datePtr(monday.AddDays(-1)))
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("past dates and far future are clamped", func(t *testing.T) {
		f := newSchedulingFixture().withWeeklyRule()
		projection, err := f.availability.GetAvailableSlots(context.Background(), employerID,
			datePtr(domain.NewDate(2029, time.December, 1)), datePtr(domain.NewDate(2031, time.January, 1)))
		require.NoError(t, err)
		assert.Equal(t, "2030-01-07", projection.From.String())
		assert.Equal(t, "2030-03-08", projection.To.String())
	})

	t.Run("defaults to the configured window", func(t *testing.T) {
		f := newSchedulingFixture().withWeeklyRule()
		projection, err := f.availability.GetAvailableSlots(context.Background(), employerID, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "2030-02-06", projection.To.String())
		// today is a Monday too
		assert.Contains(t, projection.AvailableDates, "2030-01-07")
	})
}

func TestGetAvailableSlots_UnknownEmployer(t *testing.T) {
	f := newSchedulingFixture()
	f.users.On("GetByID", mock.Anything, "seeker-1").Return(&domain.User{ID: "seeker-1", Role: domain.RoleCandidate}, nil)
	f.users.On("GetByID", mock.Anything, "ghost").Return(nil, domain.ErrNotFound)

	_, err := f.availability.GetAvailableSlots(context.Background(), "seeker-1", nil, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	_, err = f.availability.GetAvailableSlots(context.Background(), "ghost", nil, nil)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestSetSchedule(t *testing.T) {
	employer := domain.Actor{UserID: employerID, Role: domain.RoleEmployer}

	t.Run("specific schedule", func(t *testing.T) {
		f := newSchedulingFixture()
		f.specific.On("Create", mock.Anything, mock.AnythingOfType("*domain.SpecificAvailability")).
			Run(func(args mock.Arguments) {
				rec := args.Get(1).(*domain.SpecificAvailability)
				assert.Equal(t, domain.SpecificKindOverride, rec.Kind)
				assert.Equal(t, "2030-01-15", rec.Date.String())
				rec.ID = 3
			}).Return(nil)

		ref, err := f.availability.SetSchedule(context.Background(), employer, domain.SchedulePayload{
			Type:  domain.ScheduleTypeSpecific,
			Date:  "2030-01-15",
			Slots: []domain.TimeSlot{{StartTime: "09:00", EndTime: "10:00"}},
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ScheduleRef{ID: 3, Type: domain.ScheduleTypeSpecific}, *ref)
	})

	t.Run("date already governed", func(t *testing.T) {
		f := newSchedulingFixture()
		f.specific.On("Create", mock.Anything, mock.Anything).Return(domain.ErrScheduleDateTaken)

		_, err := f.availability.SetSchedule(context.Background(), employer, domain.SchedulePayload{
			Type:  domain.ScheduleTypeSpecific,
			Date:  "2030-01-15",
			Slots: []domain.TimeSlot{{StartTime: "09:00", EndTime: "10:00"}},
		})
		assert.True(t, apperror.IsKind(err, apperror.KindConflict))
	})

	t.Run("overlapping recurring slots", func(t *testing.T) {
		f := newSchedulingFixture()
		_, err := f.availability.SetSchedule(context.Background(), employer, domain.SchedulePayload{
			Type: domain.ScheduleTypeRecurring,
			Days: []domain.RecurringDay{{DayOfWeek: domain.Monday, Slots: []domain.TimeSlot{
				{StartTime: "09:00", EndTime: "10:00"},
				{StartTime: "09:30", EndTime: "10:30"},
			}}},
		})
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		f.recurring.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("job seekers cannot publish availability", func(t *testing.T) {
		f := newSchedulingFixture()
		_, err := f.availability.SetSchedule(context.Background(), domain.Actor{UserID: seekerID, Role: domain.RoleCandidate},
			domain.SchedulePayload{Type: domain.ScheduleTypeSpecific})
		assert.True(t, apperror.IsKind(err, apperror.KindUnauthorized))
	})
}

func TestUpdateSchedule_KeepsBookedSlots(t *testing.T) {
	f := newSchedulingFixture()
	employer := domain.Actor{UserID: employerID, Role: domain.RoleEmployer}
	rec := domain.NewOverride(employerID, monday, []domain.TimeSlot{
		{StartTime: "09:00", EndTime: "10:00", IsBooked: true},
		{StartTime: "10:00", EndTime: "11:00"},
	})
	rec.ID = 4
	f.specific.On("GetByID", mock.Anything, int64(4)).Return(rec, nil)
	ref := domain.ScheduleRef{ID: 4, Type: domain.ScheduleTypeSpecific}

	err := f.availability.UpdateSchedule(context.Background(), employer, ref, domain.SchedulePayload{
		Slots: []domain.TimeSlot{{StartTime: "10:00", EndTime: "11:00"}},
	})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidState))

	f.specific.On("ReplaceSlots", mock.Anything, rec).Return(nil)
	err = f.availability.UpdateSchedule(context.Background(), employer, ref, domain.SchedulePayload{
		Slots: []domain.TimeSlot{{StartTime: "09:00", EndTime: "10:00"}, {StartTime: "13:00", EndTime: "14:00"}},
	})
	require.NoError(t, err)
	assert.True(t, rec.Slots[0].IsBooked)
	assert.Equal(t, "13:00", rec.Slots[1].StartTime)
}

func TestDeleteRecurringSchedule_CancelsDerivedExceptions(t *testing.T) {
	f := newSchedulingFixture()
	employer := domain.Actor{UserID: employerID, Role: domain.RoleEmployer}
	rule := weeklyRule()
	f.recurring.On("GetByID", mock.Anything, int64(1)).Return(&rule, nil)
	f.recurring.On("UpdateStatus", mock.Anything, int64(1), domain.AvailabilityStatusInactive).Return(nil)

	upcoming := domain.NewException(employerID, monday, 1, []domain.TimeSlot{{StartTime: "10:00", EndTime: "11:00"}})
	upcoming.ID = 20
	booked := domain.NewException(employerID, monday.AddDays(7), 1, []domain.TimeSlot{{StartTime: "10:00", EndTime: "11:00", IsBooked: true}})
	booked.ID = 21
	other := domain.NewOverride(employerID, monday.AddDays(14), nil)
	other.ID = 22
	f.specific.On("ListByEmployer", mock.Anything, employerID).
		Return([]domain.SpecificAvailability{*upcoming, *booked, *other}, nil)
	f.specific.On("UpdateStatus", mock.Anything, int64(20), domain.AvailabilityStatusCancelled).Return(nil)

	err := f.availability.DeleteSchedule(context.Background(), employer, domain.ScheduleRef{ID: 1, Type: domain.ScheduleTypeRecurring})
	require.NoError(t, err)
	f.specific.AssertNumberOfCalls(t, "UpdateStatus", 1)
}

func TestListSchedules(t *testing.T) {
	f := newSchedulingFixture()
	f.recurring.On("ListByEmployer", mock.Anything, employerID).Return([]domain.RecurringAvailabilityRule{weeklyRule()}, nil)
	f.specific.On("ListByEmployer", mock.Anything, employerID).Return(nil, nil)

	schedules, err := f.availability.ListSchedules(context.Background(), domain.Actor{UserID: employerID, Role: domain.RoleEmployer})
	require.NoError(t, err)
	assert.Len(t, schedules.Recurring, 1)
	assert.NotNil(t, schedules.Specific)
	assert.Empty(t, schedules.Specific)
}
