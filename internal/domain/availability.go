package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Availability status constants
const (
	AvailabilityStatusActive    = "active"
	AvailabilityStatusPaused    = "paused"
	AvailabilityStatusInactive  = "inactive"  // soft-deleted recurring rule
	AvailabilityStatusCancelled = "cancelled" // soft-deleted specific record
	AvailabilityStatusCompleted = "completed"
)

// Store-level availability errors
var (
	ErrScheduleDateTaken   = errors.New("a specific schedule already governs this date")
	ErrRecurringRuleExists = errors.New("an active recurring schedule already exists")
	ErrSlotTaken           = errors.New("slot already booked")
)

// ============================================================================
// Recurring availability
// ============================================================================

// RecurringDay is one weekday entry of a weekly rule.
type RecurringDay struct {
	DayOfWeek Weekday    `json:"day_of_week" validate:"required,weekday"`
	Slots     []TimeSlot `json:"slots" validate:"required,min=1,dive"`
	Status    string     `json:"status" validate:"omitempty,oneof=active paused"`
}

// RecurringAvailabilityRule is an employer's weekly repeating pattern of open slots.
type RecurringAvailabilityRule struct {
	ID             int64          `json:"id"`
	EmployerID     string         `json:"employer_id"`
	Days           []RecurringDay `json:"days"`
	Status         string         `json:"status"` // active | inactive
	EffectiveFrom  Date           `json:"effective_from"`
	EffectiveUntil *Date          `json:"effective_until,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Validate checks weekday uniqueness and per-day slot invariants.
func (r *RecurringAvailabilityRule) Validate() error {
	if len(r.Days) == 0 {
		return errors.New("at least one day is required")
	}
	seen := make(map[Weekday]bool, len(r.Days))
	for _, day := range r.Days {
		if !day.DayOfWeek.Valid() {
			return fmt.Errorf("invalid day of week %q", day.DayOfWeek)
		}
		if seen[day.DayOfWeek] {
			return fmt.Errorf("%s is listed more than once", day.DayOfWeek)
		}
		seen[day.DayOfWeek] = true

		if day.Status != "" && day.Status != AvailabilityStatusActive && day.Status != AvailabilityStatusPaused {
			return fmt.Errorf("%s: invalid status %q", day.DayOfWeek, day.Status)
		}
		if len(day.Slots) == 0 {
			return fmt.Errorf("%s: at least one slot is required", day.DayOfWeek)
		}
		if err := ValidateSlots(day.Slots); err != nil {
			return fmt.Errorf("%s: %w", day.DayOfWeek, err)
		}
	}
	if r.EffectiveUntil != nil && r.EffectiveUntil.Before(r.EffectiveFrom) {
		return errors.New("effective_until must not be before effective_from")
	}
	return nil
}

// CoversDate reports whether d falls inside the rule's effective range.
func (r *RecurringAvailabilityRule) CoversDate(d Date) bool {
	if r.Status != AvailabilityStatusActive {
		return false
	}
	if !r.EffectiveFrom.IsZero() && d.Before(r.EffectiveFrom) {
		return false
	}
	if r.EffectiveUntil != nil && d.After(*r.EffectiveUntil) {
		return false
	}
	return true
}

// Day returns the entry for a weekday regardless of its status.
func (r *RecurringAvailabilityRule) Day(w Weekday) (RecurringDay, bool) {
	for _, day := range r.Days {
		if day.DayOfWeek == w {
			return day, true
		}
	}
	return RecurringDay{}, false
}

// ActiveDayFor returns the active day entry projected onto d, if any.
func (r *RecurringAvailabilityRule) ActiveDayFor(d Date) (RecurringDay, bool) {
	if !r.CoversDate(d) {
		return RecurringDay{}, false
	}
	day, ok := r.Day(d.Weekday())
	if !ok || day.Status == AvailabilityStatusPaused {
		return RecurringDay{}, false
	}
	return day, true
}

// ============================================================================
// Specific (date-pinned) availability
// ============================================================================

// SpecificKind discriminates a date-pinned record.
type SpecificKind string

const (
	// SpecificKindOverride is a standalone set of slots replacing the weekly pattern for one date.
	SpecificKindOverride SpecificKind = "override"
	// SpecificKindException is derived from a recurring rule with one occurrence removed.
	SpecificKindException SpecificKind = "exception"
)

// SpecificAvailability pins a set of slots to one calendar date.
// At most one non-cancelled record governs an (employer, date) pair.
type SpecificAvailability struct {
	ID           int64        `json:"id"`
	EmployerID   string       `json:"employer_id"`
	Date         Date         `json:"date"`
	Slots        []TimeSlot   `json:"slots"`
	Status       string       `json:"status"` // active | cancelled | completed
	Kind         SpecificKind `json:"kind"`
	SourceRuleID *int64       `json:"source_rule_id,omitempty"` // set only for exceptions
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// NewOverride builds a standalone date-pinned record.
func NewOverride(employerID string, date Date, slots []TimeSlot) *SpecificAvailability {
	return &SpecificAvailability{
		EmployerID: employerID,
		Date:       date,
		Slots:      slots,
		Status:     AvailabilityStatusActive,
		Kind:       SpecificKindOverride,
	}
}

// NewException builds a record derived from ruleID for a single date.
func NewException(employerID string, date Date, ruleID int64, slots []TimeSlot) *SpecificAvailability {
	return &SpecificAvailability{
		EmployerID:   employerID,
		Date:         date,
		Slots:        slots,
		Status:       AvailabilityStatusActive,
		Kind:         SpecificKindException,
		SourceRuleID: &ruleID,
	}
}

// Governs reports whether the record takes precedence over the recurring projection.
func (s *SpecificAvailability) Governs() bool {
	return s.Status != AvailabilityStatusCancelled
}

// FindSlot returns the index of the slot covering exactly start-end, or -1.
func (s *SpecificAvailability) FindSlot(start, end string) int {
	for i, slot := range s.Slots {
		if slot.Matches(start, end) {
			return i
		}
	}
	return -1
}

// ============================================================================
// Projection output
// ============================================================================

// OriginKind tags where an open slot came from.
type OriginKind string

const (
	OriginRecurring OriginKind = "recurring"
	OriginOverride  OriginKind = "override"
	OriginException OriginKind = "exception"
)

// SlotOrigin is a tagged variant: RuleID+DayOfWeek for recurring slots,
// SpecificID for overrides, SpecificID+RuleID for exceptions.
type SlotOrigin struct {
	Kind       OriginKind `json:"kind"`
	RuleID     int64      `json:"rule_id,omitempty"`
	DayOfWeek  Weekday    `json:"day_of_week,omitempty"`
	SpecificID int64      `json:"specific_id,omitempty"`
}

func RecurringOrigin(ruleID int64, day Weekday) SlotOrigin {
	return SlotOrigin{Kind: OriginRecurring, RuleID: ruleID, DayOfWeek: day}
}

func SpecificOrigin(rec *SpecificAvailability) SlotOrigin {
	if rec.Kind == SpecificKindException && rec.SourceRuleID != nil {
		return SlotOrigin{Kind: OriginException, SpecificID: rec.ID, RuleID: *rec.SourceRuleID}
	}
	return SlotOrigin{Kind: OriginOverride, SpecificID: rec.ID}
}

// OpenSlot is one bookable occurrence in the projection.
type OpenSlot struct {
	Date      Date       `json:"date"`
	StartTime string     `json:"start_time"`
	EndTime   string     `json:"end_time"`
	Origin    SlotOrigin `json:"origin"`
}

// AvailabilityProjection is the result of GetAvailableSlots.
type AvailabilityProjection struct {
	EmployerID     string                `json:"employer_id"`
	From           Date                  `json:"from"`
	To             Date                  `json:"to"`
	AvailableDates map[string][]TimeSlot `json:"available_dates"`
	Slots          []OpenSlot            `json:"slots"`
}

// SlotBooking is an active (or released) reservation of a SlotKey.
type SlotBooking struct {
	ID          int64      `json:"id"`
	Key         SlotKey    `json:"key"`
	InterviewID string     `json:"interview_id"`
	CreatedAt   time.Time  `json:"created_at"`
	ReleasedAt  *time.Time `json:"released_at,omitempty"`
}

// ============================================================================
// Requests
// ============================================================================

// ScheduleType selects which availability store a schedule belongs to.
type ScheduleType string

const (
	ScheduleTypeSpecific  ScheduleType = "specific"
	ScheduleTypeRecurring ScheduleType = "recurring"
)

// SchedulePayload is the body of SetSchedule / UpdateSchedule.
type SchedulePayload struct {
	Type           ScheduleType   `json:"type" validate:"required,oneof=specific recurring"`
	Date           string         `json:"date" validate:"omitempty,calendar_date"`
	Slots          []TimeSlot     `json:"slots" validate:"omitempty,dive"`
	Days           []RecurringDay `json:"days" validate:"omitempty,dive"`
	EffectiveFrom  string         `json:"effective_from" validate:"omitempty,calendar_date"`
	EffectiveUntil string         `json:"effective_until" validate:"omitempty,calendar_date"`
}

// ScheduleRef identifies a schedule created by SetSchedule.
type ScheduleRef struct {
	ID   int64        `json:"schedule_id"`
	Type ScheduleType `json:"type"`
}

// EmployerSchedules lists an employer's schedules in both stores.
type EmployerSchedules struct {
	Recurring []RecurringAvailabilityRule `json:"recurring"`
	Specific  []SpecificAvailability      `json:"specific"`
}

// ExceptionRequest removes one occurrence of a recurring slot.
type ExceptionRequest struct {
	Date   string   `json:"date" validate:"required,calendar_date"`
	RuleID int64    `json:"rule_id" validate:"required,gt=0"`
	Slot   TimeSlot `json:"slot" validate:"required"`
}

// ============================================================================
// Repository & Usecase Interfaces
// ============================================================================

// RecurringAvailabilityRepository stores weekly rules.
type RecurringAvailabilityRepository interface {
	Create(ctx context.Context, rule *RecurringAvailabilityRule) error
	GetByID(ctx context.Context, id int64) (*RecurringAvailabilityRule, error)
	Update(ctx context.Context, rule *RecurringAvailabilityRule) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	ListByEmployer(ctx context.Context, employerID string) ([]RecurringAvailabilityRule, error)
	// ListActive returns active rules whose effective range intersects [from, to].
	ListActive(ctx context.Context, employerID string, from, to Date) ([]RecurringAvailabilityRule, error)
}

// SpecificAvailabilityRepository stores date-pinned records and their slots.
type SpecificAvailabilityRepository interface {
	Create(ctx context.Context, rec *SpecificAvailability) error
	GetByID(ctx context.Context, id int64) (*SpecificAvailability, error)
	// GetGoverning returns the non-cancelled record for (employer, date) or ErrNotFound.
	GetGoverning(ctx context.Context, employerID string, date Date) (*SpecificAvailability, error)
	ReplaceSlots(ctx context.Context, rec *SpecificAvailability) error
	UpdateStatus(ctx context.Context, id int64, status string) error
	ListByEmployer(ctx context.Context, employerID string) ([]SpecificAvailability, error)
	// ListGoverningInRange returns non-cancelled records dated within [from, to].
	ListGoverningInRange(ctx context.Context, employerID string, from, to Date) ([]SpecificAvailability, error)
	// MarkSlotBooked flips is_booked false->true; false means the slot was already booked or absent.
	MarkSlotBooked(ctx context.Context, specificID int64, start, end, interviewID string) (bool, error)
	MarkSlotReleased(ctx context.Context, specificID int64, start, end, interviewID string) error
}

// SlotBookingRepository enforces at most one active booking per SlotKey.
type SlotBookingRepository interface {
	// Reserve inserts an active booking, returning ErrSlotTaken when one already exists.
	Reserve(ctx context.Context, key SlotKey, interviewID string) error
	// Release ends the interview's active booking of key. Releasing nothing is not an error.
	Release(ctx context.Context, key SlotKey, interviewID string) error
	IsReserved(ctx context.Context, key SlotKey) (bool, error)
	ListActive(ctx context.Context, employerID string, from, to Date) ([]SlotBooking, error)
	// LockDate serializes writers touching the employer's slots on date until the
	// surrounding transaction ends. Outside a transaction it is a no-op.
	LockDate(ctx context.Context, employerID string, date Date) error
}

// AvailabilityUsecase covers projection and schedule management.
type AvailabilityUsecase interface {
	GetAvailableSlots(ctx context.Context, employerID string, from, to *Date) (*AvailabilityProjection, error)
	SetSchedule(ctx context.Context, actor Actor, payload SchedulePayload) (*ScheduleRef, error)
	UpdateSchedule(ctx context.Context, actor Actor, ref ScheduleRef, payload SchedulePayload) error
	DeleteSchedule(ctx context.Context, actor Actor, ref ScheduleRef) error
	ListSchedules(ctx context.Context, actor Actor) (*EmployerSchedules, error)
	// OfferedSlots returns the schedule slots governing a single date, booked or not.
	OfferedSlots(ctx context.Context, employerID string, date Date) ([]TimeSlot, *SpecificAvailability, error)
}

// ExceptionUsecase carves single-date deviations out of recurring rules.
type ExceptionUsecase interface {
	CreateException(ctx context.Context, actor Actor, req ExceptionRequest) (*SpecificAvailability, error)
}

// BookingUsecase is the single place that reserves and releases slots.
type BookingUsecase interface {
	CheckAvailability(ctx context.Context, key SlotKey) (bool, error)
	Book(ctx context.Context, key SlotKey, interviewID string) error
	Release(ctx context.Context, key SlotKey, interviewID string) error
}
