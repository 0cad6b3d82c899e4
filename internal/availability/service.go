package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nekogravitycat/stadium-booking-backend/internal/booking"
	"github.com/nekogravitycat/stadium-booking-backend/internal/metrics"
	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
	"github.com/nekogravitycat/stadium-booking-backend/internal/stadium"
)

// Service resolves slot availability from a stadium's weekly schedule, its
// date overrides and the bookings on that date. It holds no state of its own;
// every call reads the stores afresh and never reserves anything.
type Service struct {
	stadiums StadiumStore
	bookings BookingStore
	loc      *time.Location
	now      func() time.Time
}

type Option func(*Service)

// WithLocation sets the stadium-local timezone that decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(stadiums StadiumStore, bookings BookingStore, opts ...Option) *Service {
	s := &Service{
		stadiums: stadiums,
		bookings: bookings,
		loc:      time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func storeError(op string, err error) error {
	return apperror.Wrap(fmt.Errorf("%s: %w", op, err), ErrStore.Code, ErrStore.Message)
}

// loadStadium returns stadium.ErrNotFound as is and wraps everything else in ErrStore.
func (s *Service) loadStadium(ctx context.Context, id string) (*stadium.Stadium, error) {
	st, err := s.stadiums.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, stadium.ErrNotFound) {
			return nil, stadium.ErrNotFound
		}
		return nil, storeError("load stadium", err)
	}
	return st, nil
}

func (s *Service) activeBookings(ctx context.Context, stadiumID string, date time.Time) ([]*booking.Booking, error) {
	bookings, err := s.bookings.ListByStadiumDate(ctx, stadiumID, date, booking.ActiveStatuses)
	if err != nil {
		return nil, storeError("list bookings", err)
	}
	return bookings, nil
}

// HasConflict reports whether an active booking's [start, end) interval contains t.
// A store failure is returned as an error, never as "no conflict".
func (s *Service) HasConflict(ctx context.Context, stadiumID string, date time.Time, t schedule.TimeLabel) (bool, error) {
	bookings, err := s.activeBookings(ctx, stadiumID, schedule.Day(date))
	if err != nil {
		return false, err
	}
	return conflicts(bookings, t), nil
}

func conflicts(bookings []*booking.Booking, t schedule.TimeLabel) bool {
	for _, b := range bookings {
		if b.Occupies() && b.Covers(t) {
			return true
		}
	}
	return false
}

// precheck applies the schedule part of the precedence. It returns the
// deciding reason, or needsConflictCheck when only bookings can still block t.
func precheck(st *stadium.Stadium, date time.Time, t schedule.TimeLabel) (reason Reason, needsConflictCheck bool) {
	if !st.IsActive {
		return ReasonStadiumInactive, false
	}
	if !t.IsSlotStart() {
		return ReasonOutsideOperatingHours, false
	}
	if day, ok := st.DateOverrides.For(date); ok {
		switch day.State(t) {
		case schedule.StateUnavailable:
			return ReasonOwnerBlocked, false
		case schedule.StateAvailable:
			return "", true
		}
	}
	if !st.WeeklySchedule.Contains(date.Weekday(), t) {
		return ReasonOutsideOperatingHours, false
	}
	return "", true
}

// snapshot is a stadium and its active bookings on one date, read once.
type snapshot struct {
	stadium  *stadium.Stadium
	date     time.Time
	bookings []*booking.Booking
}

func (s *Service) snapshot(ctx context.Context, stadiumID string, date time.Time) (*snapshot, error) {
	st, err := s.loadStadium(ctx, stadiumID)
	if err != nil {
		return nil, err
	}
	snap := &snapshot{stadium: st, date: date}
	// An inactive stadium is closed whatever is booked.
	if !st.IsActive {
		return snap, nil
	}
	if snap.bookings, err = s.activeBookings(ctx, stadiumID, date); err != nil {
		return nil, err
	}
	return snap, nil
}

func (snap *snapshot) resolve(t schedule.TimeLabel) Decision {
	reason, check := precheck(snap.stadium, snap.date, t)
	if !check {
		return Decision{Available: false, Reason: reason}
	}
	if conflicts(snap.bookings, t) {
		return Decision{Available: false, Reason: ReasonAlreadyBooked}
	}
	return Decision{Available: true, Reason: ReasonOpen}
}

// Resolve decides whether the slot starting at t on date is bookable.
// Precedence: inactive stadium, override unavailable, override available,
// weekly schedule, then booking conflicts.
func (s *Service) Resolve(ctx context.Context, stadiumID string, date time.Time, t schedule.TimeLabel) (Decision, error) {
	date = schedule.Day(date)

	st, err := s.loadStadium(ctx, stadiumID)
	if err != nil {
		return s.failed(err)
	}

	reason, check := precheck(st, date, t)
	if !check {
		metrics.ObserveDecision(string(reason))
		return Decision{Available: false, Reason: reason}, nil
	}

	booked, err := s.HasConflict(ctx, stadiumID, date, t)
	if err != nil {
		return s.failed(err)
	}
	d := Decision{Available: true, Reason: ReasonOpen}
	if booked {
		d = Decision{Available: false, Reason: ReasonAlreadyBooked}
	}
	metrics.ObserveDecision(string(d.Reason))
	return d, nil
}

func (s *Service) failed(err error) (Decision, error) {
	if errors.Is(err, ErrStore) {
		metrics.ObserveDecision(string(ReasonStoreError))
		return Decision{Available: false, Reason: ReasonStoreError}, err
	}
	return Decision{Available: false}, err
}

// GetAvailableSlots resolves every canonical label (06:00 to 23:00) of a date
// against a single read of the stadium and its bookings.
func (s *Service) GetAvailableSlots(ctx context.Context, stadiumID string, date time.Time) ([]SlotStatus, error) {
	snap, err := s.snapshot(ctx, stadiumID, schedule.Day(date))
	if err != nil {
		if errors.Is(err, ErrStore) {
			out := make([]SlotStatus, len(schedule.CanonicalLabels))
			for i, l := range schedule.CanonicalLabels {
				out[i] = SlotStatus{Time: l, Available: false, Reason: ReasonStoreError}
			}
			return out, err
		}
		return nil, err
	}

	out := make([]SlotStatus, len(schedule.CanonicalLabels))
	for i, l := range schedule.CanonicalLabels {
		d := snap.resolve(l)
		out[i] = SlotStatus{Time: l, Available: d.Available, Reason: d.Reason}
	}
	return out, nil
}

// Info reports the operating-hours summary of a stadium.
func (s *Service) Info(ctx context.Context, stadiumID string) (Info, error) {
	st, err := s.loadStadium(ctx, stadiumID)
	if err != nil {
		return Info{}, err
	}

	info := Info{
		Name:                 st.Name,
		IsActive:             st.IsActive,
		OperatingHours:       make(map[time.Weekday]string, 7),
		HasDateSpecificRules: len(st.DateOverrides) > 0,
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		first, last, ok := st.WeeklySchedule.Hours(d)
		if !ok {
			info.OperatingHours[d] = "Closed"
			continue
		}
		info.OperatingHours[d] = fmt.Sprintf("%s - %s", first, last)
	}
	return info, nil
}
