package usecase

import (
	"context"
	"errors"
	"time"

	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/apperror"
	"go-interview-scheduler/pkg/audit"
)

// BookingConfig bounds how far ahead a slot may be booked.
type BookingConfig struct {
	MaxWindowDays int
	Now           func() time.Time
}

type bookingUsecase struct {
	tx           domain.Transactor
	availability domain.AvailabilityUsecase
	bookingRepo  domain.SlotBookingRepository
	specificRepo domain.SpecificAvailabilityRepository
	audit        *audit.Logger
	cfg          BookingConfig
}

// NewBookingUsecase creates the coordinator that owns slot reservation
func NewBookingUsecase(
	tx domain.Transactor,
	availability domain.AvailabilityUsecase,
	bookingRepo domain.SlotBookingRepository,
	specificRepo domain.SpecificAvailabilityRepository,
	auditLogger *audit.Logger,
	cfg BookingConfig,
) domain.BookingUsecase {
	if cfg.MaxWindowDays <= 0 {
		cfg.MaxWindowDays = 180
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &bookingUsecase{
		tx:           tx,
		availability: availability,
		bookingRepo:  bookingRepo,
		specificRepo: specificRepo,
		audit:        auditLogger,
		cfg:          cfg,
	}
}

// CheckAvailability is read-only; the answer may be stale by the time Book runs.
func (uc *bookingUsecase) CheckAvailability(ctx context.Context, key domain.SlotKey) (bool, error) {
	if err := uc.validateKey(key); err != nil {
		return false, err
	}

	offered, _, err := uc.availability.OfferedSlots(ctx, key.EmployerID, key.Date)
	if err != nil {
		return false, apperror.Internal(err)
	}
	slot, ok := findSlot(offered, key)
	if !ok || slot.IsBooked {
		return false, nil
	}

	reserved, err := uc.bookingRepo.IsReserved(ctx, key)
	if err != nil {
		return false, apperror.Internal(err)
	}
	return !reserved, nil
}

// Book reserves key for interviewID. The reservation is a single conditional
// insert against the active-booking index; losing a race yields Conflict.
// Callers that need the booking to commit with other writes pass a transactional ctx.
func (uc *bookingUsecase) Book(ctx context.Context, key domain.SlotKey, interviewID string) error {
	if err := uc.validateKey(key); err != nil {
		return err
	}

	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		// 0. Wait out exception or override writes on the same date
		if err := uc.bookingRepo.LockDate(ctx, key.EmployerID, key.Date); err != nil {
			return err
		}

		// 1. The slot must be offered on that date
		offered, rec, err := uc.availability.OfferedSlots(ctx, key.EmployerID, key.Date)
		if err != nil {
			return err
		}
		if _, ok := findSlot(offered, key); !ok {
			return apperror.NotFound("Slot is not offered by the employer on this date")
		}

		// 2. Atomic reservation
		if err := uc.bookingRepo.Reserve(ctx, key, interviewID); err != nil {
			return err
		}

		// 3. Mirror the flag on the date-pinned record
		if rec != nil {
			flipped, err := uc.specificRepo.MarkSlotBooked(ctx, rec.ID, key.StartTime, key.EndTime, interviewID)
			if err != nil {
				return err
			}
			if !flipped {
				return domain.ErrSlotTaken
			}
		}
		return nil
	})

	if errors.Is(err, domain.ErrSlotTaken) {
		uc.audit.Log(ctx, audit.Event{
			Event:       audit.EventBookingConflict,
			InterviewID: interviewID,
			EmployerID:  key.EmployerID,
			Details: map[string]interface{}{
				"date":       key.Date.String(),
				"start_time": key.StartTime,
				"end_time":   key.EndTime,
			},
		})
		conflict := apperror.Conflict("Slot is already booked; refresh availability and pick another slot")
		conflict.Err = err
		return conflict
	}
	return appError(err)
}

// Release frees interviewID's booking of key so the slot is offered again.
func (uc *bookingUsecase) Release(ctx context.Context, key domain.SlotKey, interviewID string) error {
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.bookingRepo.Release(ctx, key, interviewID); err != nil {
			return err
		}

		rec, err := uc.specificRepo.GetGoverning(ctx, key.EmployerID, key.Date)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return uc.specificRepo.MarkSlotReleased(ctx, rec.ID, key.StartTime, key.EndTime, interviewID)
	})
	return appError(err)
}

func (uc *bookingUsecase) validateKey(key domain.SlotKey) error {
	if key.EmployerID == "" {
		return apperror.Validation("Employer is required", nil)
	}
	if key.Date.IsZero() {
		return apperror.Validation("Date is required", nil)
	}
	if err := key.Slot().Validate(); err != nil {
		return apperror.Validation(err.Error(), err)
	}

	today := domain.DateOf(uc.cfg.Now())
	if key.Date.Before(today) {
		return apperror.Validation("Cannot book a slot in the past", nil)
	}
	if key.Date.After(today.AddDays(uc.cfg.MaxWindowDays)) {
		return apperror.Validation("Date is beyond the booking window", nil)
	}
	return nil
}

func findSlot(slots []domain.TimeSlot, key domain.SlotKey) (domain.TimeSlot, bool) {
	for _, s := range slots {
		if s.Matches(key.StartTime, key.EndTime) {
			return s, true
		}
	}
	return domain.TimeSlot{}, false
}
