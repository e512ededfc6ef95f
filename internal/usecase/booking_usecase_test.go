package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestBook_ConcurrentCallersGetExactlyOneSlot(t *testing.T) {
	f := newSchedulingFixture().withWeeklyRule()
	key := slotKey(monday, "09:00", "10:00")

	const callers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes []string
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := f.booking.Book(context.Background(), key, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes = append(successes, id)
			case apperror.IsKind(err, apperror.KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(fmt.Sprintf("iv-%d", i))
	}
	wg.Wait()

	require.Len(t, successes, 1)
	assert.Equal(t, callers-1, conflicts)
	assert.Equal(t, successes[0], f.bookings.holder(key))
}

func TestBook_SlotMustBeOffered(t *testing.T) {
	f := newSchedulingFixture().withWeeklyRule()

	err := f.booking.Book(context.Background(), slotKey(monday, "12:00", "13:00"), "iv-1")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	// Tuesday has no recurring entry
	err = f.booking.Book(context.Background(), slotKey(monday.AddDays(1), "09:00", "10:00"), "iv-1")
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}

func TestBook_RejectsDatesOutsideWindow(t *testing.T) {
	f := newSchedulingFixture().withWeeklyRule()

	err := f.booking.Book(context.Background(), slotKey(monday.AddDays(-14), "09:00", "10:00"), "iv-1")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	err = f.booking.Book(context.Background(), slotKey(monday.AddDays(70), "09:00", "10:00"), "iv-1")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	err = f.booking.Book(context.Background(), slotKey(monday, "10:00", "09:00"), "iv-1")
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestBook_ReleaseMakesSlotAvailableAgain(t *testing.T) {
	f := newSchedulingFixture().withWeeklyRule()
	ctx := context.Background()
	key := slotKey(monday, "10:00", "11:00")

	available, err := f.booking.CheckAvailability(ctx, key)
	require.NoError(t, err)
	assert.True(t, available)

	require.NoError(t, f.booking.Book(ctx, key, "iv-1"))
	available, err = f.booking.CheckAvailability(ctx, key)
	require.NoError(t, err)
	assert.False(t, available)

	// Releasing someone else's booking is a no-op
	require.NoError(t, f.booking.Release(ctx, key, "iv-2"))
	assert.Equal(t, "iv-1", f.bookings.holder(key))

	require.NoError(t, f.booking.Release(ctx, key, "iv-1"))
	require.NoError(t, f.booking.Book(ctx, key, "iv-2"))
	assert.Equal(t, "iv-2", f.bookings.holder(key))
}

func TestBook_MirrorsFlagOnSpecificRecord(t *testing.T) {
	f := newSchedulingFixture()
	ctx := context.Background()
	rec := domain.NewOverride(employerID, monday, []domain.TimeSlot{{StartTime: "14:00", EndTime: "15:00"}})
	rec.ID = 7
	f.specific.On("GetGoverning", mock.Anything, employerID, mock.Anything).Return(rec, nil)
	f.specific.On("MarkSlotBooked", mock.Anything, int64(7), "14:00", "15:00", "iv-1").Return(true, nil)
	f.specific.On("MarkSlotReleased", mock.Anything, int64(7), "14:00", "15:00", "iv-1").Return(nil)

	key := slotKey(monday, "14:00", "15:00")
	require.NoError(t, f.booking.Book(ctx, key, "iv-1"))
	require.NoError(t, f.booking.Release(ctx, key, "iv-1"))

	f.specific.AssertExpectations(t)
	f.recurring.AssertNotCalled(t, "ListActive", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
