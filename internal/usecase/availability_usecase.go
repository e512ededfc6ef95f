package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/apperror"
	"go-interview-scheduler/pkg/audit"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// AvailabilityConfig bounds the projection window.
type AvailabilityConfig struct {
	WindowDays    int
	MaxWindowDays int
	Now           func() time.Time
}

func (c AvailabilityConfig) withDefaults() AvailabilityConfig {
	if c.WindowDays <= 0 {
		c.WindowDays = 90
	}
	if c.MaxWindowDays < c.WindowDays {
		c.MaxWindowDays = c.WindowDays
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	return c
}

type availabilityUsecase struct {
	tx            domain.Transactor
	recurringRepo domain.RecurringAvailabilityRepository
	specificRepo  domain.SpecificAvailabilityRepository
	bookingRepo   domain.SlotBookingRepository
	userRepo      domain.UserRepository
	validate      *validator.Validate
	audit         *audit.Logger
	cfg           AvailabilityConfig
}

// NewAvailabilityUsecase creates the availability projector and schedule manager
func NewAvailabilityUsecase(
	tx domain.Transactor,
	recurringRepo domain.RecurringAvailabilityRepository,
	specificRepo domain.SpecificAvailabilityRepository,
	bookingRepo domain.SlotBookingRepository,
	userRepo domain.UserRepository,
	validate *validator.Validate,
	auditLogger *audit.Logger,
	cfg AvailabilityConfig,
) domain.AvailabilityUsecase {
	return &availabilityUsecase{
		tx:            tx,
		recurringRepo: recurringRepo,
		specificRepo:  specificRepo,
		bookingRepo:   bookingRepo,
		userRepo:      userRepo,
		validate:      validate,
		audit:         auditLogger,
		cfg:           cfg.withDefaults(),
	}
}

func (uc *availabilityUsecase) today() domain.Date {
	return domain.DateOf(uc.cfg.Now())
}

// ============================================================================
// Projection
// ============================================================================

// GetAvailableSlots projects recurring rules and date-pinned records into open slots.
func (uc *availabilityUsecase) GetAvailableSlots(ctx context.Context, employerID string, from, to *domain.Date) (*domain.AvailabilityProjection, error) {
	// 1. Resolve and clamp the window
	start, end, err := uc.window(from, to)
	if err != nil {
		return nil, err
	}

	// 2. Employer must exist
	if err := uc.ensureEmployer(ctx, employerID); err != nil {
		return nil, err
	}

	// 3. Load both stores and the booking ledger concurrently
	var (
		rules     []domain.RecurringAvailabilityRule
		specifics []domain.SpecificAvailability
		bookings  []domain.SlotBooking
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rules, err = uc.recurringRepo.ListActive(gctx, employerID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		specifics, err = uc.specificRepo.ListGoverningInRange(gctx, employerID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		bookings, err = uc.bookingRepo.ListActive(gctx, employerID, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal(err)
	}

	return buildProjection(employerID, start, end, rules, specifics, bookings), nil
}

// window defaults to [today, today+WindowDays] and never extends past today+MaxWindowDays.
func (uc *availabilityUsecase) window(from, to *domain.Date) (domain.Date, domain.Date, error) {
	today := uc.today()
	if from != nil && to != nil && from.After(*to) {
		return domain.Date{}, domain.Date{}, apperror.Validation("'from' must not be after 'to'", nil)
	}

	start := today
	if from != nil && from.After(today) {
		start = *from
	}
	end := today.AddDays(uc.cfg.WindowDays)
	if to != nil {
		end = *to
	}
	if limit := today.AddDays(uc.cfg.MaxWindowDays); end.After(limit) {
		end = limit
	}
	if start.After(end) {
		return domain.Date{}, domain.Date{}, apperror.Validation(
			fmt.Sprintf("requested window is outside the bookable range [%s, %s]", today, today.AddDays(uc.cfg.MaxWindowDays)), nil)
	}
	return start, end, nil
}

// buildProjection is pure. A governing specific record replaces the recurring
// projection for its date; booked slots are dropped.
func buildProjection(
	employerID string,
	from, to domain.Date,
	rules []domain.RecurringAvailabilityRule,
	specifics []domain.SpecificAvailability,
	bookings []domain.SlotBooking,
) *domain.AvailabilityProjection {
	governing := make(map[string]*domain.SpecificAvailability, len(specifics))
	for i := range specifics {
		if specifics[i].Governs() {
			governing[specifics[i].Date.String()] = &specifics[i]
		}
	}
	booked := make(map[domain.SlotKey]bool, len(bookings))
	for _, b := range bookings {
		booked[bookingKey(b.Key.Date, b.Key.StartTime, b.Key.EndTime)] = true
	}

	projection := &domain.AvailabilityProjection{
		EmployerID:     employerID,
		From:           from,
		To:             to,
		AvailableDates: make(map[string][]domain.TimeSlot),
		Slots:          []domain.OpenSlot{},
	}

	for d := from; !d.After(to); d = d.AddDays(1) {
		var candidates []domain.OpenSlot
		if rec, ok := governing[d.String()]; ok {
			origin := domain.SpecificOrigin(rec)
			for _, s := range rec.Slots {
				if s.IsBooked {
					continue
				}
				candidates = append(candidates, domain.OpenSlot{Date: d, StartTime: s.StartTime, EndTime: s.EndTime, Origin: origin})
			}
		} else {
			seen := make(map[string]bool)
			for i := range rules {
				day, ok := rules[i].ActiveDayFor(d)
				if !ok {
					continue
				}
				origin := domain.RecurringOrigin(rules[i].ID, day.DayOfWeek)
				for _, s := range day.Slots {
					id := s.StartTime + "-" + s.EndTime
					if s.IsBooked || seen[id] {
						continue
					}
					seen[id] = true
					candidates = append(candidates, domain.OpenSlot{Date: d, StartTime: s.StartTime, EndTime: s.EndTime, Origin: origin})
				}
			}
		}

		var open []domain.TimeSlot
		byTime := make(map[string]domain.OpenSlot, len(candidates))
		for _, c := range candidates {
			if booked[bookingKey(d, c.StartTime, c.EndTime)] {
				continue
			}
			open = append(open, domain.TimeSlot{StartTime: c.StartTime, EndTime: c.EndTime})
			byTime[c.StartTime+"-"+c.EndTime] = c
		}
		if len(open) == 0 {
			continue
		}

		open = domain.SortSlots(open)
		projection.AvailableDates[d.String()] = open
		for _, s := range open {
			projection.Slots = append(projection.Slots, byTime[s.StartTime+"-"+s.EndTime])
		}
	}
	return projection
}

// bookingKey drops the employer since a projection covers one employer.
func bookingKey(d domain.Date, start, end string) domain.SlotKey {
	return domain.SlotKey{Date: d, StartTime: start, EndTime: end}
}

// OfferedSlots reads sequentially so it can run inside a caller's transaction.
func (uc *availabilityUsecase) OfferedSlots(ctx context.Context, employerID string, date domain.Date) ([]domain.TimeSlot, *domain.SpecificAvailability, error) {
	rec, err := uc.specificRepo.GetGoverning(ctx, employerID, date)
	if err == nil {
		return rec.Slots, rec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, nil, err
	}

	rules, err := uc.recurringRepo.ListActive(ctx, employerID, date, date)
	if err != nil {
		return nil, nil, err
	}
	var slots []domain.TimeSlot
	for i := range rules {
		if day, ok := rules[i].ActiveDayFor(date); ok {
			slots = append(slots, day.Slots...)
		}
	}
	return domain.SortSlots(slots), nil, nil
}

func (uc *availabilityUsecase) ensureEmployer(ctx context.Context, employerID string) error {
	user, err := uc.userRepo.GetByID(ctx, employerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Employer not found")
		}
		return apperror.Internal(err)
	}
	if user.Role != domain.RoleEmployer {
		return apperror.NotFound("Employer not found")
	}
	return nil
}

// ============================================================================
// Schedule management
// ============================================================================

// SetSchedule creates a recurring rule or a date-pinned override for the calling employer.
func (uc *availabilityUsecase) SetSchedule(ctx context.Context, actor domain.Actor, payload domain.SchedulePayload) (*domain.ScheduleRef, error) {
	if !actor.IsEmployer() {
		return nil, apperror.Forbidden("Only employers can manage availability")
	}
	if err := uc.validate.Struct(payload); err != nil {
		return nil, validationError(err)
	}

	var ref *domain.ScheduleRef
	switch payload.Type {
	case domain.ScheduleTypeSpecific:
		rec, err := uc.specificFromPayload(actor.UserID, payload)
		if err != nil {
			return nil, err
		}
		err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
			return uc.createSpecific(ctx, rec)
		})
		if errors.Is(err, domain.ErrScheduleDateTaken) {
			return nil, apperror.Conflict("A schedule already exists for this date; update it instead")
		}
		if err != nil {
			return nil, appError(err)
		}
		ref = &domain.ScheduleRef{ID: rec.ID, Type: domain.ScheduleTypeSpecific}

	case domain.ScheduleTypeRecurring:
		rule, err := uc.recurringFromPayload(actor.UserID, payload)
		if err != nil {
			return nil, err
		}
		err = uc.recurringRepo.Create(ctx, rule)
		if errors.Is(err, domain.ErrRecurringRuleExists) {
			return nil, apperror.Conflict("An active recurring schedule already exists; update it instead")
		}
		if err != nil {
			return nil, apperror.Internal(err)
		}
		ref = &domain.ScheduleRef{ID: rule.ID, Type: domain.ScheduleTypeRecurring}

	default:
		return nil, apperror.Validation("Unknown schedule type", nil)
	}

	uc.audit.Log(ctx, audit.Event{
		Event:      audit.EventScheduleChanged,
		EmployerID: actor.UserID,
		ActorID:    actor.UserID,
		Details:    map[string]interface{}{"action": "create", "type": ref.Type, "schedule_id": ref.ID},
	})
	return ref, nil
}

// UpdateSchedule replaces the slots of a schedule owned by the caller.
func (uc *availabilityUsecase) UpdateSchedule(ctx context.Context, actor domain.Actor, ref domain.ScheduleRef, payload domain.SchedulePayload) error {
	if !actor.IsEmployer() {
		return apperror.Forbidden("Only employers can manage availability")
	}
	if payload.Type == "" {
		payload.Type = ref.Type
	}
	if payload.Type != ref.Type {
		return apperror.Validation("Schedule type cannot be changed", nil)
	}
	if err := uc.validate.Struct(payload); err != nil {
		return validationError(err)
	}

	var err error
	switch ref.Type {
	case domain.ScheduleTypeSpecific:
		err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
			return uc.updateSpecific(ctx, actor, ref.ID, payload)
		})
	case domain.ScheduleTypeRecurring:
		err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
			return uc.updateRecurring(ctx, actor, ref.ID, payload)
		})
	default:
		return apperror.Validation("Unknown schedule type", nil)
	}
	if err != nil {
		return appError(err)
	}

	uc.audit.Log(ctx, audit.Event{
		Event:      audit.EventScheduleChanged,
		EmployerID: actor.UserID,
		ActorID:    actor.UserID,
		Details:    map[string]interface{}{"action": "update", "type": ref.Type, "schedule_id": ref.ID},
	})
	return nil
}

// createSpecific pins rec to its date. Interviews already booked on that date
// through the recurring rule must keep their slot in the new record.
func (uc *availabilityUsecase) createSpecific(ctx context.Context, rec *domain.SpecificAvailability) error {
	if err := uc.bookingRepo.LockDate(ctx, rec.EmployerID, rec.Date); err != nil {
		return err
	}
	bookings, err := uc.bookingRepo.ListActive(ctx, rec.EmployerID, rec.Date, rec.Date)
	if err != nil {
		return err
	}
	for _, b := range bookings {
		if rec.FindSlot(b.Key.StartTime, b.Key.EndTime) < 0 {
			return apperror.InvalidState(fmt.Sprintf("Slot %s-%s is booked on %s and must stay in the schedule", b.Key.StartTime, b.Key.EndTime, rec.Date))
		}
	}

	if err := uc.specificRepo.Create(ctx, rec); err != nil {
		return err
	}
	for _, b := range bookings {
		i := rec.FindSlot(b.Key.StartTime, b.Key.EndTime)
		if _, err := uc.specificRepo.MarkSlotBooked(ctx, rec.ID, b.Key.StartTime, b.Key.EndTime, b.InterviewID); err != nil {
			return err
		}
		rec.Slots[i].IsBooked = true
	}
	return nil
}

func (uc *availabilityUsecase) updateSpecific(ctx context.Context, actor domain.Actor, id int64, payload domain.SchedulePayload) error {
	rec, err := uc.specificRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Schedule not found")
		}
		return err
	}
	if rec.EmployerID != actor.UserID {
		return apperror.Forbidden("You do not own this schedule")
	}
	if !rec.Governs() {
		return apperror.InvalidState("Schedule has been deleted")
	}
	if payload.Date != "" && payload.Date != rec.Date.String() {
		return apperror.Validation("The date of a specific schedule cannot be changed", nil)
	}

	// Booked slots must survive the update untouched
	next := make([]domain.TimeSlot, 0, len(payload.Slots))
	for _, s := range payload.Slots {
		next = append(next, domain.TimeSlot{StartTime: s.StartTime, EndTime: s.EndTime})
	}
	for _, s := range rec.Slots {
		if !s.IsBooked {
			continue
		}
		found := false
		for i := range next {
			if next[i].Matches(s.StartTime, s.EndTime) {
				next[i].IsBooked = true
				found = true
			}
		}
		if !found {
			return apperror.InvalidState(fmt.Sprintf("Slot %s-%s is booked and cannot be removed", s.StartTime, s.EndTime))
		}
	}
	if err := domain.ValidateSlots(next); err != nil {
		return apperror.Validation(err.Error(), err)
	}

	rec.Slots = next
	return uc.specificRepo.ReplaceSlots(ctx, rec)
}

func (uc *availabilityUsecase) updateRecurring(ctx context.Context, actor domain.Actor, id int64, payload domain.SchedulePayload) error {
	rule, err := uc.recurringRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Schedule not found")
		}
		return err
	}
	if rule.EmployerID != actor.UserID {
		return apperror.Forbidden("You do not own this schedule")
	}
	if rule.Status != domain.AvailabilityStatusActive {
		return apperror.InvalidState("Schedule has been deleted")
	}
	previous := *rule

	if len(payload.Days) > 0 {
		rule.Days = normalizeDays(payload.Days)
	}
	if payload.EffectiveFrom != "" {
		from, err := domain.ParseDate(payload.EffectiveFrom)
		if err != nil {
			return apperror.Validation(err.Error(), err)
		}
		rule.EffectiveFrom = from
	}
	if payload.EffectiveUntil != "" {
		until, err := domain.ParseDate(payload.EffectiveUntil)
		if err != nil {
			return apperror.Validation(err.Error(), err)
		}
		rule.EffectiveUntil = &until
	}
	if err := rule.Validate(); err != nil {
		return apperror.Validation(err.Error(), err)
	}
	if err := uc.ensureBookingsKept(ctx, &previous, rule); err != nil {
		return err
	}

	if err := uc.recurringRepo.Update(ctx, rule); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return apperror.NotFound("Schedule not found")
		}
		return err
	}
	return nil
}

// DeleteSchedule soft-deletes a schedule owned by the caller.
func (uc *availabilityUsecase) DeleteSchedule(ctx context.Context, actor domain.Actor, ref domain.ScheduleRef) error {
	if !actor.IsEmployer() {
		return apperror.Forbidden("Only employers can manage availability")
	}

	var err error
	switch ref.Type {
	case domain.ScheduleTypeSpecific:
		err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
			rec, err := uc.specificRepo.GetByID(ctx, ref.ID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return apperror.NotFound("Schedule not found")
				}
				return err
			}
			if rec.EmployerID != actor.UserID {
				return apperror.Forbidden("You do not own this schedule")
			}
			if !rec.Governs() {
				return nil
			}
			for _, s := range rec.Slots {
				if s.IsBooked {
					return apperror.InvalidState("Schedule has booked slots; cancel those interviews first")
				}
			}
			return uc.specificRepo.UpdateStatus(ctx, rec.ID, domain.AvailabilityStatusCancelled)
		})

	case domain.ScheduleTypeRecurring:
		err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
			rule, err := uc.recurringRepo.GetByID(ctx, ref.ID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return apperror.NotFound("Schedule not found")
				}
				return err
			}
			if rule.EmployerID != actor.UserID {
				return apperror.Forbidden("You do not own this schedule")
			}
			if rule.Status != domain.AvailabilityStatusActive {
				return nil
			}
			if err := uc.ensureBookingsKept(ctx, rule, nil); err != nil {
				return err
			}
			if err := uc.recurringRepo.UpdateStatus(ctx, rule.ID, domain.AvailabilityStatusInactive); err != nil {
				return err
			}
			return uc.cancelDerivedExceptions(ctx, rule)
		})

	default:
		return apperror.Validation("Unknown schedule type", nil)
	}
	if err != nil {
		return appError(err)
	}

	uc.audit.Log(ctx, audit.Event{
		Event:      audit.EventScheduleChanged,
		EmployerID: actor.UserID,
		ActorID:    actor.UserID,
		Details:    map[string]interface{}{"action": "delete", "type": ref.Type, "schedule_id": ref.ID},
	})
	return nil
}

// ensureBookingsKept rejects a change from prev to next (nil when the rule is
// deleted) that would stop offering a slot an interview holds through the rule.
// Dates governed by a specific record are unaffected by the rule and skipped.
func (uc *availabilityUsecase) ensureBookingsKept(ctx context.Context, prev, next *domain.RecurringAvailabilityRule) error {
	today := uc.today()
	horizon := today.AddDays(uc.cfg.MaxWindowDays)

	bookings, err := uc.bookingRepo.ListActive(ctx, prev.EmployerID, today, horizon)
	if err != nil || len(bookings) == 0 {
		return err
	}
	pinned, err := uc.specificRepo.ListGoverningInRange(ctx, prev.EmployerID, today, horizon)
	if err != nil {
		return err
	}
	governed := make(map[string]bool, len(pinned))
	for i := range pinned {
		governed[pinned[i].Date.String()] = true
	}

	for _, b := range bookings {
		if governed[b.Key.Date.String()] || !ruleOffers(prev, b.Key) {
			continue
		}
		if next == nil || !ruleOffers(next, b.Key) {
			return apperror.InvalidState(fmt.Sprintf("Slot %s-%s on %s is booked; cancel that interview first",
				b.Key.StartTime, b.Key.EndTime, b.Key.Date))
		}
	}
	return nil
}

func ruleOffers(rule *domain.RecurringAvailabilityRule, key domain.SlotKey) bool {
	day, ok := rule.ActiveDayFor(key.Date)
	if !ok {
		return false
	}
	for _, s := range day.Slots {
		if s.Matches(key.StartTime, key.EndTime) {
			return true
		}
	}
	return false
}

// cancelDerivedExceptions retires upcoming, unbooked exceptions of a deleted rule
// so they stop offering its remaining slots.
func (uc *availabilityUsecase) cancelDerivedExceptions(ctx context.Context, rule *domain.RecurringAvailabilityRule) error {
	records, err := uc.specificRepo.ListByEmployer(ctx, rule.EmployerID)
	if err != nil {
		return err
	}
	today := uc.today()
	for _, rec := range records {
		if rec.Kind != domain.SpecificKindException || rec.SourceRuleID == nil || *rec.SourceRuleID != rule.ID {
			continue
		}
		if rec.Date.Before(today) || hasBookedSlot(rec.Slots) {
			continue
		}
		if err := uc.specificRepo.UpdateStatus(ctx, rec.ID, domain.AvailabilityStatusCancelled); err != nil {
			return err
		}
	}
	return nil
}

// ListSchedules returns the caller's recurring and specific schedules.
func (uc *availabilityUsecase) ListSchedules(ctx context.Context, actor domain.Actor) (*domain.EmployerSchedules, error) {
	if !actor.IsEmployer() {
		return nil, apperror.Forbidden("Only employers can manage availability")
	}

	out := &domain.EmployerSchedules{
		Recurring: []domain.RecurringAvailabilityRule{},
		Specific:  []domain.SpecificAvailability{},
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rules, err := uc.recurringRepo.ListByEmployer(gctx, actor.UserID)
		if err == nil && rules != nil {
			out.Recurring = rules
		}
		return err
	})
	g.Go(func() error {
		records, err := uc.specificRepo.ListByEmployer(gctx, actor.UserID)
		if err == nil && records != nil {
			out.Specific = records
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

// ============================================================================
// Payload helpers
// ============================================================================

func (uc *availabilityUsecase) specificFromPayload(employerID string, payload domain.SchedulePayload) (*domain.SpecificAvailability, error) {
	if payload.Date == "" {
		return nil, apperror.Validation("Date is required for a specific schedule", nil)
	}
	if len(payload.Slots) == 0 {
		return nil, apperror.Validation("At least one slot is required", nil)
	}
	date, err := domain.ParseDate(payload.Date)
	if err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}
	if date.Before(uc.today()) {
		return nil, apperror.Validation("Cannot set availability for a past date", nil)
	}

	slots := make([]domain.TimeSlot, 0, len(payload.Slots))
	for _, s := range payload.Slots {
		slots = append(slots, domain.TimeSlot{StartTime: s.StartTime, EndTime: s.EndTime})
	}
	if err := domain.ValidateSlots(slots); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}
	return domain.NewOverride(employerID, date, slots), nil
}

func (uc *availabilityUsecase) recurringFromPayload(employerID string, payload domain.SchedulePayload) (*domain.RecurringAvailabilityRule, error) {
	if len(payload.Days) == 0 {
		return nil, apperror.Validation("At least one day is required for a recurring schedule", nil)
	}

	rule := &domain.RecurringAvailabilityRule{
		EmployerID:    employerID,
		Days:          normalizeDays(payload.Days),
		Status:        domain.AvailabilityStatusActive,
		EffectiveFrom: uc.today(),
	}
	if payload.EffectiveFrom != "" {
		from, err := domain.ParseDate(payload.EffectiveFrom)
		if err != nil {
			return nil, apperror.Validation(err.Error(), err)
		}
		rule.EffectiveFrom = from
	}
	if payload.EffectiveUntil != "" {
		until, err := domain.ParseDate(payload.EffectiveUntil)
		if err != nil {
			return nil, apperror.Validation(err.Error(), err)
		}
		rule.EffectiveUntil = &until
	}
	if err := rule.Validate(); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}
	return rule, nil
}

// normalizeDays defaults day status to active and strips client-supplied booking flags.
func normalizeDays(days []domain.RecurringDay) []domain.RecurringDay {
	out := make([]domain.RecurringDay, 0, len(days))
	for _, day := range days {
		slots := make([]domain.TimeSlot, 0, len(day.Slots))
		for _, s := range day.Slots {
			slots = append(slots, domain.TimeSlot{StartTime: s.StartTime, EndTime: s.EndTime})
		}
		status := day.Status
		if status == "" {
			status = domain.AvailabilityStatusActive
		}
		out = append(out, domain.RecurringDay{DayOfWeek: day.DayOfWeek, Slots: domain.SortSlots(slots), Status: status})
	}
	return out
}

func hasBookedSlot(slots []domain.TimeSlot) bool {
	for _, s := range slots {
		if s.IsBooked {
			return true
		}
	}
	return false
}
