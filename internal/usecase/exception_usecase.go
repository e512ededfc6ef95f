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
)

type exceptionUsecase struct {
	tx            domain.Transactor
	recurringRepo domain.RecurringAvailabilityRepository
	specificRepo  domain.SpecificAvailabilityRepository
	bookingRepo   domain.SlotBookingRepository
	validate      *validator.Validate
	audit         *audit.Logger
	now           func() time.Time
}

// NewExceptionUsecase creates the manager for single-date deviations from recurring rules
func NewExceptionUsecase(
	tx domain.Transactor,
	recurringRepo domain.RecurringAvailabilityRepository,
	specificRepo domain.SpecificAvailabilityRepository,
	bookingRepo domain.SlotBookingRepository,
	validate *validator.Validate,
	auditLogger *audit.Logger,
	now func() time.Time,
) domain.ExceptionUsecase {
	if now == nil {
		now = time.Now
	}
	return &exceptionUsecase{
		tx:            tx,
		recurringRepo: recurringRepo,
		specificRepo:  specificRepo,
		bookingRepo:   bookingRepo,
		validate:      validate,
		audit:         auditLogger,
		now:           now,
	}
}

// CreateException removes one occurrence of a recurring slot on a single date.
// The rule itself is never modified; the remainder is pinned to the date.
func (uc *exceptionUsecase) CreateException(ctx context.Context, actor domain.Actor, req domain.ExceptionRequest) (*domain.SpecificAvailability, error) {
	// 1. Validate the request
	if !actor.IsEmployer() {
		return nil, apperror.Forbidden("Only employers can manage availability")
	}
	if err := uc.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	date, err := domain.ParseDate(req.Date)
	if err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}
	if err := req.Slot.Validate(); err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}
	if date.Before(domain.DateOf(uc.now())) {
		return nil, apperror.Validation("Cannot create an exception for a past date", nil)
	}

	// 2. Resolve and persist atomically
	var result *domain.SpecificAvailability
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		rule, err := uc.recurringRepo.GetByID(ctx, req.RuleID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return apperror.NotFound("Recurring schedule not found")
			}
			return err
		}
		if rule.EmployerID != actor.UserID {
			return apperror.Forbidden("You do not own this schedule")
		}
		if rule.Status != domain.AvailabilityStatusActive {
			return apperror.InvalidState("Recurring schedule is not active")
		}

		day, ok := rule.ActiveDayFor(date)
		if !ok {
			return apperror.InvalidState(fmt.Sprintf("Recurring schedule has no active %s on %s", date.Weekday(), date))
		}
		remaining, ok := withoutSlot(day.Slots, req.Slot)
		if !ok {
			return apperror.NotFound("Slot not found in the recurring schedule for this day")
		}

		// Concurrent Book calls for this date wait until the exception commits
		if err := uc.bookingRepo.LockDate(ctx, rule.EmployerID, date); err != nil {
			return err
		}
		bookings, err := uc.bookingRepo.ListActive(ctx, rule.EmployerID, date, date)
		if err != nil {
			return err
		}
		for _, b := range bookings {
			if b.Key.Slot().Matches(req.Slot.StartTime, req.Slot.EndTime) {
				return apperror.InvalidState("Slot is booked on this date; cancel the interview first")
			}
		}

		existing, err := uc.specificRepo.GetGoverning(ctx, rule.EmployerID, date)
		switch {
		case err == nil:
			// A second exception of the same rule narrows the existing record.
			if existing.Kind != domain.SpecificKindException || existing.SourceRuleID == nil || *existing.SourceRuleID != rule.ID {
				return apperror.Conflict("A specific schedule already governs this date")
			}
			narrowed, ok := withoutSlot(existing.Slots, req.Slot)
			if !ok {
				return apperror.NotFound("Slot is not offered on this date")
			}
			existing.Slots = narrowed
			if err := uc.specificRepo.ReplaceSlots(ctx, existing); err != nil {
				return err
			}
			result = existing
			return nil

		case errors.Is(err, domain.ErrNotFound):
			rec := domain.NewException(rule.EmployerID, date, rule.ID, remaining)
			if err := uc.specificRepo.Create(ctx, rec); err != nil {
				if errors.Is(err, domain.ErrScheduleDateTaken) {
					return apperror.Conflict("A specific schedule already governs this date")
				}
				return err
			}
			// Occurrences already booked through the rule stay booked in the pinned record
			for _, b := range bookings {
				i := rec.FindSlot(b.Key.StartTime, b.Key.EndTime)
				if i < 0 {
					continue
				}
				if _, err := uc.specificRepo.MarkSlotBooked(ctx, rec.ID, b.Key.StartTime, b.Key.EndTime, b.InterviewID); err != nil {
					return err
				}
				rec.Slots[i].IsBooked = true
			}
			result = rec
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, appError(err)
	}

	uc.audit.Log(ctx, audit.Event{
		Event:      audit.EventExceptionCreated,
		EmployerID: actor.UserID,
		ActorID:    actor.UserID,
		Details: map[string]interface{}{
			"rule_id":     req.RuleID,
			"specific_id": result.ID,
			"date":        date.String(),
			"start_time":  req.Slot.StartTime,
			"end_time":    req.Slot.EndTime,
		},
	})
	return result, nil
}

// withoutSlot returns slots minus the one matching target, and whether it was present.
func withoutSlot(slots []domain.TimeSlot, target domain.TimeSlot) ([]domain.TimeSlot, bool) {
	out := make([]domain.TimeSlot, 0, len(slots))
	found := false
	for _, s := range slots {
		if !found && s.Matches(target.StartTime, target.EndTime) {
			found = true
			continue
		}
		out = append(out, s)
	}
	return out, found
}
