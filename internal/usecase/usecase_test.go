package usecase_test

import (
	"context"
	"sync"
	"time"

	"go-interview-scheduler/internal/domain"

	"github.com/stretchr/testify/mock"
)

const (
	employerID = "emp-1"
	seekerID   = "seeker-1"
)

var fixedNow = time.Date(2030, time.January, 7, 8, 0, 0, 0, time.UTC) // a Monday

func clock() time.Time { return fixedNow }

// monday is one week after fixedNow.
var monday = domain.NewDate(2030, time.January, 14)

func weeklyRule() domain.RecurringAvailabilityRule {
	return domain.RecurringAvailabilityRule{
		ID:            1,
		EmployerID:    employerID,
		Status:        domain.AvailabilityStatusActive,
		EffectiveFrom: domain.NewDate(2030, time.January, 1),
		Days: []domain.RecurringDay{{
			DayOfWeek: domain.Monday,
			Status:    domain.AvailabilityStatusActive,
			Slots: []domain.TimeSlot{
				{StartTime: "09:00", EndTime: "10:00"},
				{StartTime: "10:00", EndTime: "11:00"},
			},
		}},
	}
}

// fakeTx runs fn inline; the stores below are already consistent without rollback.
type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memBookingRepo mirrors the active-booking unique index: Reserve is an
// atomic check-and-insert under one mutex. ops records the call sequence.
type memBookingRepo struct {
	mu     sync.Mutex
	nextID int64
	active map[string]domain.SlotBooking
	ops    []string
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{active: make(map[string]domain.SlotBooking)}
}

func (r *memBookingRepo) Reserve(_ context.Context, key domain.SlotKey, interviewID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, "reserve")
	if _, taken := r.active[key.String()]; taken {
		return domain.ErrSlotTaken
	}
	r.nextID++
	r.active[key.String()] = domain.SlotBooking{ID: r.nextID, Key: key, InterviewID: interviewID, CreatedAt: time.Now()}
	return nil
}

func (r *memBookingRepo) Release(_ context.Context, key domain.SlotKey, interviewID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.active[key.String()]; ok && b.InterviewID == interviewID {
		delete(r.active, key.String())
	}
	return nil
}

func (r *memBookingRepo) IsReserved(_ context.Context, key domain.SlotKey) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[key.String()]
	return ok, nil
}

func (r *memBookingRepo) ListActive(_ context.Context, employer string, from, to domain.Date) ([]domain.SlotBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, "list")
	var out []domain.SlotBooking
	for _, b := range r.active {
		if b.Key.EmployerID == employer && !b.Key.Date.Before(from) && !b.Key.Date.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) LockDate(_ context.Context, employer string, date domain.Date) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, "lock "+employer+"|"+date.String())
	return nil
}

func (r *memBookingRepo) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func (r *memBookingRepo) holder(key domain.SlotKey) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active[key.String()].InterviewID
}

// Mock Repositories
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockRecurringRepo struct {
	mock.Mock
}

func (m *MockRecurringRepo) Create(ctx context.Context, rule *domain.RecurringAvailabilityRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRecurringRepo) GetByID(ctx context.Context, id int64) (*domain.RecurringAvailabilityRule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringAvailabilityRule), args.Error(1)
}

func (m *MockRecurringRepo) Update(ctx context.Context, rule *domain.RecurringAvailabilityRule) error {
	return m.Called(ctx, rule).Error(0)
}

func (m *MockRecurringRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockRecurringRepo) ListByEmployer(ctx context.Context, employerID string) ([]domain.RecurringAvailabilityRule, error) {
	args := m.Called(ctx, employerID)
	rules, _ := args.Get(0).([]domain.RecurringAvailabilityRule)
	return rules, args.Error(1)
}

func (m *MockRecurringRepo) ListActive(ctx context.Context, employerID string, from, to domain.Date) ([]domain.RecurringAvailabilityRule, error) {
	args := m.Called(ctx, employerID, from, to)
	rules, _ := args.Get(0).([]domain.RecurringAvailabilityRule)
	return rules, args.Error(1)
}

type MockSpecificRepo struct {
	mock.Mock
}

func (m *MockSpecificRepo) Create(ctx context.Context, rec *domain.SpecificAvailability) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockSpecificRepo) GetByID(ctx context.Context, id int64) (*domain.SpecificAvailability, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpecificAvailability), args.Error(1)
}

func (m *MockSpecificRepo) GetGoverning(ctx context.Context, employerID string, date domain.Date) (*domain.SpecificAvailability, error) {
	args := m.Called(ctx, employerID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SpecificAvailability), args.Error(1)
}

func (m *MockSpecificRepo) ReplaceSlots(ctx context.Context, rec *domain.SpecificAvailability) error {
	return m.Called(ctx, rec).Error(0)
}

func (m *MockSpecificRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockSpecificRepo) ListByEmployer(ctx context.Context, employerID string) ([]domain.SpecificAvailability, error) {
	args := m.Called(ctx, employerID)
	records, _ := args.Get(0).([]domain.SpecificAvailability)
	return records, args.Error(1)
}

func (m *MockSpecificRepo) ListGoverningInRange(ctx context.Context, employerID string, from, to domain.Date) ([]domain.SpecificAvailability, error) {
	args := m.Called(ctx, employerID, from, to)
	records, _ := args.Get(0).([]domain.SpecificAvailability)
	return records, args.Error(1)
}

func (m *MockSpecificRepo) MarkSlotBooked(ctx context.Context, specificID int64, start, end, interviewID string) (bool, error) {
	args := m.Called(ctx, specificID, start, end, interviewID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSpecificRepo) MarkSlotReleased(ctx context.Context, specificID int64, start, end, interviewID string) error {
	return m.Called(ctx, specificID, start, end, interviewID).Error(0)
}

type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

func (m *MockApplicationRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

type MockJobRepo struct {
	mock.Mock
}

func (m *MockJobRepo) GetByID(ctx context.Context, id int64) (*domain.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Job), args.Error(1)
}

func (m *MockJobRepo) AppendHire(ctx context.Context, hire *domain.JobHire) error {
	return m.Called(ctx, hire).Error(0)
}

func (m *MockJobRepo) RecomputeVacancies(ctx context.Context, jobID int64) (int, error) {
	args := m.Called(ctx, jobID)
	return args.Int(0), args.Error(1)
}

type MockInterviewRepo struct {
	mock.Mock
}

func (m *MockInterviewRepo) Create(ctx context.Context, iv *domain.Interview) error {
	return m.Called(ctx, iv).Error(0)
}

func (m *MockInterviewRepo) GetByID(ctx context.Context, id string) (*domain.Interview, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Interview), args.Error(1)
}

func (m *MockInterviewRepo) GetActiveByApplication(ctx context.Context, applicationID int64) (*domain.Interview, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Interview), args.Error(1)
}

func (m *MockInterviewRepo) Update(ctx context.Context, iv *domain.Interview, prior domain.InterviewStatus) error {
	return m.Called(ctx, iv, prior).Error(0)
}

func (m *MockInterviewRepo) ListByEmployer(ctx context.Context, employerID string, statuses []domain.InterviewStatus) ([]domain.Interview, error) {
	args := m.Called(ctx, employerID, statuses)
	interviews, _ := args.Get(0).([]domain.Interview)
	return interviews, args.Error(1)
}

func (m *MockInterviewRepo) ListByJobSeeker(ctx context.Context, jobSeekerID string, statuses []domain.InterviewStatus) ([]domain.Interview, error) {
	args := m.Called(ctx, jobSeekerID, statuses)
	interviews, _ := args.Get(0).([]domain.Interview)
	return interviews, args.Error(1)
}

func (m *MockInterviewRepo) ListByEmployerInRange(ctx context.Context, employerID string, from, to domain.Date) ([]domain.Interview, error) {
	args := m.Called(ctx, employerID, from, to)
	interviews, _ := args.Get(0).([]domain.Interview)
	return interviews, args.Error(1)
}

type MockEventRepo struct {
	mock.Mock
}

func (m *MockEventRepo) Create(ctx context.Context, ev *domain.InterviewEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *MockEventRepo) ListByInterview(ctx context.Context, interviewID string) ([]domain.InterviewEvent, error) {
	args := m.Called(ctx, interviewID)
	events, _ := args.Get(0).([]domain.InterviewEvent)
	return events, args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, n domain.Notification) error {
	return m.Called(ctx, n).Error(0)
}
