package availability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/stadium-booking-backend/internal/booking"
	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
	"github.com/nekogravitycat/stadium-booking-backend/internal/stadium"
)

// memStore is an in-memory record store for both stadiums and bookings.
type memStore struct {
	stadiums   map[string]*stadium.Stadium
	bookings   []*booking.Booking
	stadiumErr error
	bookingErr error
	reads      int
}

func newMemStore() *memStore {
	return &memStore{stadiums: map[string]*stadium.Stadium{}}
}

func (m *memStore) GetByID(_ context.Context, id string) (*stadium.Stadium, error) {
	m.reads++
	if m.stadiumErr != nil {
		return nil, m.stadiumErr
	}
	s, ok := m.stadiums[id]
	if !ok {
		return nil, stadium.ErrNotFound
	}
	return s, nil
}

func (m *memStore) ListByStadiumDate(_ context.Context, stadiumID string, date time.Time, statuses []booking.Status) ([]*booking.Booking, error) {
	m.reads++
	if m.bookingErr != nil {
		return nil, m.bookingErr
	}
	var out []*booking.Booking
	for _, b := range m.bookings {
		if b.StadiumID != stadiumID || !b.Date.Equal(date) {
			continue
		}
		for _, st := range statuses {
			if b.Status == st {
				out = append(out, b)
				break
			}
		}
	}
	return out, nil
}

func (m *memStore) book(stadiumID string, date time.Time, start, end schedule.TimeLabel, status booking.Status) *booking.Booking {
	b := &booking.Booking{
		ID:        fmt.Sprintf("b-%d", len(m.bookings)+1),
		StadiumID: stadiumID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    status,
	}
	m.bookings = append(m.bookings, b)
	return b
}

// 2030-01-07 is a Monday.
var monday = time.Date(2030, 1, 7, 0, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC) }

// stadiumX has weekly Monday = {09:00, 10:00, 11:00}, no overrides, no bookings.
func stadiumX(store *memStore) *stadium.Stadium {
	x := &stadium.Stadium{
		ID:       "x",
		OwnerID:  "owner",
		Name:     "Stadium X",
		IsActive: true,
		WeeklySchedule: schedule.NewWeekly(map[time.Weekday][]schedule.TimeLabel{
			time.Monday: {"09:00", "10:00", "11:00"},
		}),
		DateOverrides: schedule.Overrides{},
	}
	store.stadiums[x.ID] = x
	return x
}

func newTestService(store *memStore) *Service {
	return NewService(store, store, WithClock(fixedNow))
}

func resolve(t *testing.T, svc *Service, date time.Time, at schedule.TimeLabel) Decision {
	t.Helper()
	d, err := svc.Resolve(context.Background(), "x", date, at)
	require.NoError(t, err)
	return d
}

func TestWeeklyScheduleOpenAndClosed(t *testing.T) {
	store := newMemStore()
	stadiumX(store)
	svc := newTestService(store)

	assert.Equal(t, Decision{Available: true, Reason: ReasonOpen}, resolve(t, svc, monday, "09:00"))
	assert.Equal(t, Decision{Available: false, Reason: ReasonOutsideOperatingHours}, resolve(t, svc, monday, "08:00"))
}

func TestOwnerBlockedSlot(t *testing.T) {
	store := newMemStore()
	x := stadiumX(store)
	x.DateOverrides.Put(monday, schedule.DayOverride{"09:00": schedule.StateUnavailable})
	svc := newTestService(store)

	assert.Equal(t, Decision{Available: false, Reason: ReasonOwnerBlocked}, resolve(t, svc, monday, "09:00"))
	assert.True(t, resolve(t, svc, monday, "10:00").Available, "other times fall back to the weekly schedule")
}

func TestBookedSlotFreedByCancel(t *testing.T) {
	store := newMemStore()
	stadiumX(store)
	svc := newTestService(store)

	b := store.book("x", monday, "10:00", "11:00", booking.StatusPending)
	assert.Equal(t, Decision{Available: false, Reason: ReasonAlreadyBooked}, resolve(t, svc, monday, "10:00"))

	b.Status = booking.StatusCancelled
	assert.Equal(t, Decision{Available: true, Reason: ReasonOpen}, resolve(t, svc, monday, "10:00"))
}

func TestValidateAfterOwnerBlock(t *testing.T) {
	store := newMemStore()
	x := stadiumX(store)
	svc := newTestService(store)
	ctx := context.Background()

	v, err := svc.Validate(ctx, "x", monday, "09:00", "11:00")
	require.NoError(t, err)
	assert.True(t, v.Valid)

	x.DateOverrides.Put(monday, schedule.DayOverride{"09:00": schedule.StateUnavailable})
	v, err = svc.Validate(ctx, "x", monday, "09:00", "11:00")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, ReasonOwnerBlocked, v.Reason)
	assert.Equal(t, schedule.TimeLabel("09:00"), v.Slot)
	assert.Equal(t, "Time slot 09:00 unavailable: Time slot marked as unavailable by stadium owner", v.Message)
}

func TestPrecedenceOwnerBlockedWins(t *testing.T) {
	// An unavailable override decides regardless of schedule or bookings.
	cases := []struct {
		name  string
		setup func(store *memStore, x *stadium.Stadium)
	}{
		{name: "inside weekly schedule", setup: func(*memStore, *stadium.Stadium) {}},
		{name: "outside weekly schedule", setup: func(_ *memStore, x *stadium.Stadium) {
			x.WeeklySchedule = schedule.Weekly{}
		}},
		{name: "already booked", setup: func(store *memStore, _ *stadium.Stadium) {
			store.book("x", monday, "09:00", "10:00", booking.StatusConfirmed)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			x := stadiumX(store)
			tc.setup(store, x)
			x.DateOverrides.Put(monday, schedule.DayOverride{"09:00": schedule.StateUnavailable})

			d := resolve(t, newTestService(store), monday, "09:00")
			assert.Equal(t, Decision{Available: false, Reason: ReasonOwnerBlocked}, d)
		})
	}
}

func TestFallbackToWeeklySchedule(t *testing.T) {
	// Without an override, available == in schedule && not booked.
	store := newMemStore()
	stadiumX(store)
	store.book("x", monday, "11:00", "12:00", booking.StatusConfirmed)
	svc := newTestService(store)

	for _, l := range schedule.CanonicalLabels {
		inSchedule := l == "09:00" || l == "10:00" || l == "11:00"
		booked := l == "11:00"
		assert.Equal(t, inSchedule && !booked, resolve(t, svc, monday, l).Available, l)
	}

	tuesday := monday.AddDate(0, 0, 1)
	assert.Equal(t, ReasonOutsideOperatingHours, resolve(t, svc, tuesday, "09:00").Reason, "absent day is closed")
}

func TestOverrideAvailableStillChecksConflicts(t *testing.T) {
	store := newMemStore()
	x := stadiumX(store)
	x.DateOverrides.Put(monday, schedule.DayOverride{
		"07:00": schedule.StateAvailable,
		"08:00": schedule.StateAvailable,
	})
	store.book("x", monday, "08:00", "09:00", booking.StatusPending)
	svc := newTestService(store)

	assert.Equal(t, Decision{Available: true, Reason: ReasonOpen}, resolve(t, svc, monday, "07:00"))
	assert.Equal(t, Decision{Available: false, Reason: ReasonAlreadyBooked}, resolve(t, svc, monday, "08:00"))
}

func TestOffGridLabelsNeverOpen(t *testing.T) {
	store := newMemStore()
	x := stadiumX(store)
	x.WeeklySchedule[time.Monday][schedule.TimeLabel("09:30")] = struct{}{}
	x.DateOverrides.Put(monday, schedule.DayOverride{"10:30": schedule.StateAvailable})
	svc := newTestService(store)

	for _, at := range []schedule.TimeLabel{"09:30", "10:30", "24:00"} {
		assert.Equal(t, Decision{Available: false, Reason: ReasonOutsideOperatingHours}, resolve(t, svc, monday, at), at)
	}
	assert.True(t, resolve(t, svc, monday, "09:00").Available)
}

func TestHasConflictHalfOpen(t *testing.T) {
	store := newMemStore()
	stadiumX(store)
	store.book("x", monday, "09:00", "11:00", booking.StatusConfirmed)
	svc := newTestService(store)
	ctx := context.Background()

	for at, want := range map[schedule.TimeLabel]bool{"08:00": false, "09:00": true, "10:00": true, "11:00": false} {
		got, err := svc.HasConflict(ctx, "x", monday, at)
		require.NoError(t, err)
		assert.Equal(t, want, got, at)
	}
}

func TestCancelledBookingsNeverBlock(t *testing.T) {
	store := newMemStore()
	stadiumX(store)
	b := store.book("x", monday, "09:00", "11:00", booking.StatusConfirmed)
	svc := newTestService(store)

	assert.False(t, resolve(t, svc, monday, "10:00").Available)
	b.Status = booking.StatusCancelled
	assert.True(t, resolve(t, svc, monday, "10:00").Available)
}

func TestInactiveStadium(t *testing.T) {
	store := newMemStore()
	x := stadiumX(store)
	x.IsActive = false
	x.DateOverrides.Put(monday, schedule.FullDay(schedule.StateAvailable))
	svc := newTestService(store)

	for _, date := range []time.Time{monday, monday.AddDate(0, 0, 3), monday.AddDate(1, 0, 0)} {
		slots, err := svc.GetAvailableSlots(context.Background(), "x", date)
		require.NoError(t, err)
		for _, s := range slots {
			assert.False(t, s.Available)
			assert.Equal(t, ReasonStadiumInactive, s.Reason)
		}
		assert.Equal(t, ReasonStadiumInactive, resolve(t, svc, date, "09:00").Reason)
	}
}

func TestValidateRange(t *testing.T) {
	ctx := context.Background()

	t.Run("valid iff every hour resolves available", func(t *testing.T) {
		store := newMemStore()
		stadiumX(store)
		svc := newTestService(store)

		v, err := svc.Validate(ctx, "x", monday, "09:00", "12:00")
		require.NoError(t, err)
		assert.True(t, v.Valid)
		assert.Equal(t, ReasonOpen, v.Reason)
	})

	t.Run("blocked middle slot reports its reason", func(t *testing.T) {
		store := newMemStore()
		stadiumX(store)
		store.book("x", monday, "10:00", "11:00", booking.StatusPending)
		svc := newTestService(store)

		v, err := svc.Validate(ctx, "x", monday, "09:00", "12:00")
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, schedule.TimeLabel("10:00"), v.Slot)
		assert.Equal(t, resolve(t, svc, monday, "10:00").Reason, v.Reason)
	})

	t.Run("end of range is exclusive", func(t *testing.T) {
		store := newMemStore()
		stadiumX(store)
		svc := newTestService(store)

		v, err := svc.Validate(ctx, "x", monday, "11:00", "12:00")
		require.NoError(t, err)
		assert.True(t, v.Valid)

		v, err = svc.Validate(ctx, "x", monday, "11:00", "13:00")
		require.NoError(t, err)
		assert.Equal(t, ReasonOutsideOperatingHours, v.Reason)
		assert.Equal(t, schedule.TimeLabel("12:00"), v.Slot)
	})

	t.Run("invalid ranges", func(t *testing.T) {
		store := newMemStore()
		stadiumX(store)
		svc := newTestService(store)

		for _, r := range [][2]schedule.TimeLabel{{"10:00", "10:00"}, {"11:00", "09:00"}, {"09:00", "09:30"}, {"bad", "10:00"},
			{"09:30", "10:30"}, {"24:00", "25:00"}, {"23:00", "25:00"}} {
			v, err := svc.Validate(ctx, "x", monday, r[0], r[1])
			require.NoError(t, err)
			assert.Equal(t, ReasonInvalidRange, v.Reason, r)
			assert.False(t, v.Valid)
		}
		assert.Zero(t, store.reads, "range checks do not touch the store")
	})

	t.Run("past date", func(t *testing.T) {
		store := newMemStore()
		stadiumX(store)
		svc := NewService(store, store, WithClock(func() time.Time { return monday.Add(36 * time.Hour) }))

		v, err := svc.Validate(ctx, "x", monday, "09:00", "10:00")
		require.NoError(t, err)
		assert.Equal(t, ReasonPastDate, v.Reason)

		v, err = svc.Validate(ctx, "x", monday.AddDate(0, 0, 1), "09:00", "10:00")
		require.NoError(t, err)
		assert.NotEqual(t, ReasonPastDate, v.Reason, "today is not in the past")
	})

	t.Run("today follows the stadium timezone", func(t *testing.T) {
		store := newMemStore()
		stadiumX(store)
		// 23:30 UTC on Sunday is already Monday in Tokyo.
		now := func() time.Time { return monday.Add(-30 * time.Minute) }
		tokyo := time.FixedZone("JST", 9*3600)

		utcSvc := NewService(store, store, WithClock(now))
		tokyoSvc := NewService(store, store, WithClock(now), WithLocation(tokyo))

		sunday := monday.AddDate(0, 0, -1)
		v, err := utcSvc.Validate(ctx, "x", sunday, "09:00", "10:00")
		require.NoError(t, err)
		assert.NotEqual(t, ReasonPastDate, v.Reason)

		v, err = tokyoSvc.Validate(ctx, "x", sunday, "09:00", "10:00")
		require.NoError(t, err)
		assert.Equal(t, ReasonPastDate, v.Reason)
	})
}

func TestValidateIdempotent(t *testing.T) {
	store := newMemStore()
	x := stadiumX(store)
	x.DateOverrides.Put(monday, schedule.DayOverride{"10:00": schedule.StateUnavailable})
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.Validate(ctx, "x", monday, "09:00", "11:00")
	require.NoError(t, err)
	second, err := svc.Validate(ctx, "x", monday, "09:00", "11:00")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStoreFailuresFailClosed(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	t.Run("stadium read", func(t *testing.T) {
		store := newMemStore()
		stadiumX(store)
		store.stadiumErr = boom
		svc := newTestService(store)

		d, err := svc.Resolve(ctx, "x", monday, "09:00")
		assert.ErrorIs(t, err, ErrStore)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, Decision{Available: false, Reason: ReasonStoreError}, d)
	})

	t.Run("booking read", func(t *testing.T) {
		store := newMemStore()
		stadiumX(store)
		store.bookingErr = boom
		svc := newTestService(store)

		d, err := svc.Resolve(ctx, "x", monday, "09:00")
		assert.ErrorIs(t, err, ErrStore)
		assert.False(t, d.Available)

		booked, err := svc.HasConflict(ctx, "x", monday, "09:00")
		assert.Error(t, err)
		assert.False(t, booked)

		v, err := svc.Validate(ctx, "x", monday, "09:00", "10:00")
		assert.ErrorIs(t, err, ErrStore)
		assert.False(t, v.Valid)
		assert.Equal(t, ReasonStoreError, v.Reason)

		slots, err := svc.GetAvailableSlots(ctx, "x", monday)
		assert.ErrorIs(t, err, ErrStore)
		require.Len(t, slots, 18)
		for _, s := range slots {
			assert.False(t, s.Available)
		}
	})

	t.Run("schedule-only decisions need no booking read", func(t *testing.T) {
		store := newMemStore()
		stadiumX(store)
		store.bookingErr = boom
		svc := newTestService(store)

		d, err := svc.Resolve(ctx, "x", monday, "08:00")
		require.NoError(t, err)
		assert.Equal(t, ReasonOutsideOperatingHours, d.Reason)
	})
}

func TestNotFound(t *testing.T) {
	svc := newTestService(newMemStore())
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "nope", monday, "09:00")
	assert.ErrorIs(t, err, stadium.ErrNotFound)
	_, err = svc.GetAvailableSlots(ctx, "nope", monday)
	assert.ErrorIs(t, err, stadium.ErrNotFound)
	_, err = svc.Validate(ctx, "nope", monday, "09:00", "10:00")
	assert.ErrorIs(t, err, stadium.ErrNotFound)
	_, err = svc.Info(ctx, "nope")
	assert.ErrorIs(t, err, stadium.ErrNotFound)
}

func TestGetAvailableSlots(t *testing.T) {
	store := newMemStore()
	x := stadiumX(store)
	x.DateOverrides.Put(monday, schedule.DayOverride{"06:00": schedule.StateAvailable, "11:00": schedule.StateUnavailable})
	store.book("x", monday, "06:00", "08:00", booking.StatusConfirmed)
	store.book("x", monday, "09:00", "10:00", booking.StatusCancelled)
	svc := newTestService(store)

	slots, err := svc.GetAvailableSlots(context.Background(), "x", monday)
	require.NoError(t, err)
	require.Len(t, slots, 18)
	assert.Equal(t, 2, store.reads, "one stadium read and one booking read")

	byTime := map[schedule.TimeLabel]SlotStatus{}
	for _, s := range slots {
		byTime[s.Time] = s
	}
	assert.Equal(t, schedule.TimeLabel("06:00"), slots[0].Time)
	assert.Equal(t, schedule.TimeLabel("23:00"), slots[17].Time)
	assert.Equal(t, ReasonAlreadyBooked, byTime["06:00"].Reason)
	assert.Equal(t, ReasonOutsideOperatingHours, byTime["07:00"].Reason, "multi-hour booking, but 07:00 has no override")
	assert.True(t, byTime["09:00"].Available)
	assert.True(t, byTime["10:00"].Available)
	assert.Equal(t, ReasonOwnerBlocked, byTime["11:00"].Reason)

	// Each listed slot agrees with Resolve.
	for _, s := range slots {
		d := resolve(t, svc, monday, s.Time)
		assert.Equal(t, Decision{Available: s.Available, Reason: s.Reason}, d, s.Time)
	}
}

func TestInfo(t *testing.T) {
	store := newMemStore()
	x := stadiumX(store)
	x.WeeklySchedule.Set(time.Saturday, []schedule.TimeLabel{"22:00", "18:00"})
	svc := newTestService(store)

	info, err := svc.Info(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "Stadium X", info.Name)
	assert.True(t, info.IsActive)
	assert.Equal(t, "09:00 - 11:00", info.OperatingHours[time.Monday])
	assert.Equal(t, "18:00 - 22:00", info.OperatingHours[time.Saturday])
	assert.Equal(t, "Closed", info.OperatingHours[time.Sunday])
	assert.Len(t, info.OperatingHours, 7)
	assert.False(t, info.HasDateSpecificRules)

	x.DateOverrides.Put(monday, schedule.DayOverride{"09:00": schedule.StateUnavailable})
	info, err = svc.Info(context.Background(), "x")
	require.NoError(t, err)
	assert.True(t, info.HasDateSpecificRules)
}

func TestGuard(t *testing.T) {
	store := newMemStore()
	x := stadiumX(store)
	guard := NewGuard(newTestService(store))
	ctx := context.Background()

	require.NoError(t, guard.ValidateRange(ctx, "x", monday, "09:00", "11:00"))

	status := func(err error) int {
		var appErr *apperror.AppError
		require.ErrorAs(t, err, &appErr)
		return appErr.Code
	}

	err := guard.ValidateRange(ctx, "x", monday, "10:00", "09:00")
	assert.Equal(t, http.StatusBadRequest, status(err))

	// A one-hour default end after a 24:00 start is rejected before any insert.
	err = guard.ValidateRange(ctx, "x", monday, "24:00", schedule.TimeLabel("24:00").Add(time.Hour))
	assert.Equal(t, http.StatusBadRequest, status(err))

	x.DateOverrides.Put(monday, schedule.DayOverride{"10:00": schedule.StateUnavailable})
	err = guard.ValidateRange(ctx, "x", monday, "09:00", "11:00")
	assert.Equal(t, http.StatusConflict, status(err))
	assert.Contains(t, err.Error(), "10:00")

	err = guard.ValidateRange(ctx, "nope", monday, "09:00", "10:00")
	assert.ErrorIs(t, err, stadium.ErrNotFound)
}
