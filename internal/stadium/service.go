package stadium

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
)

// CreateRequest carries data to create a stadium.
type CreateRequest struct {
	OwnerID        string
	Name           string
	City           string
	Address        string
	PricePerHour   float64
	IsActive       bool
	Photos         []string
	WeeklySchedule schedule.Weekly
}

// UpdateRequest carries data for partial updates.
type UpdateRequest struct {
	Name         *string
	City         *string
	Address      *string
	PricePerHour *float64
	IsActive     *bool
	Photos       *[]string
}

// ScheduleRequest replaces the weekly schedule and/or all date overrides.
type ScheduleRequest struct {
	WeeklySchedule schedule.Weekly
	DateOverrides  schedule.Overrides
}

// RangeResult lists the dates a bulk operation managed to write.
type RangeResult struct {
	Dates []string
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Stadium, error)
	GetByID(ctx context.Context, id string) (*Stadium, error)
	List(ctx context.Context, filter Filter) ([]*Stadium, int, error)
	Update(ctx context.Context, id string, req UpdateRequest, actorID string, isAdmin bool) (*Stadium, error)
	// Delete hides the stadium and cancels its active bookings from today on.
	// Past bookings keep their stadium for history.
	Delete(ctx context.Context, id string, actorID string, isAdmin bool) error

	UpdateSchedule(ctx context.Context, id string, req ScheduleRequest, actorID string, isAdmin bool) (*Stadium, error)
	SetDayOverride(ctx context.Context, id string, date time.Time, d schedule.DayOverride, actorID string, isAdmin bool) (*Stadium, error)
	ClearDayOverride(ctx context.Context, id string, date time.Time, actorID string, isAdmin bool) (*Stadium, error)
	SetSlotOverride(ctx context.Context, id string, date time.Time, at schedule.TimeLabel, state schedule.SlotState, actorID string, isAdmin bool) (*Stadium, error)
	CycleSlotOverride(ctx context.Context, id string, date time.Time, at schedule.TimeLabel, actorID string, isAdmin bool) (schedule.SlotState, error)
	// ToggleWeeklySlot opens or closes one slot of the weekly schedule and reports whether it is now open.
	ToggleWeeklySlot(ctx context.Context, id string, day time.Weekday, at schedule.TimeLabel, actorID string, isAdmin bool) (bool, error)
	// ApplyRange writes one override per date from..to inclusive. It is not
	// transactional: on failure the result still lists the dates already written.
	ApplyRange(ctx context.Context, id string, from, to time.Time, mode RangeMode, actorID string, isAdmin bool) (RangeResult, error)
}

type service struct {
	repo   Repository
	logger zerolog.Logger
	loc    *time.Location
	now    func() time.Time
}

type Option func(*service)

// WithLocation sets the timezone deciding which bookings are still upcoming.
func WithLocation(loc *time.Location) Option {
	return func(s *service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(repo Repository, logger zerolog.Logger, opts ...Option) Service {
	s := &service{repo: repo, logger: logger, loc: time.UTC, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// maxWriteAttempts bounds the retries of a version-guarded write.
const maxWriteAttempts = 3

func validatePhotos(photos []string) error {
	for _, p := range photos {
		if _, err := uuid.Parse(p); err != nil {
			return ErrInvalidPhoto
		}
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Stadium, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}
	if req.PricePerHour < 0 {
		return nil, ErrInvalidPrice
	}
	if err := validatePhotos(req.Photos); err != nil {
		return nil, err
	}

	st := &Stadium{
		OwnerID:        req.OwnerID,
		Name:           strings.TrimSpace(req.Name),
		City:           req.City,
		Address:        req.Address,
		PricePerHour:   req.PricePerHour,
		IsActive:       req.IsActive,
		Photos:         req.Photos,
		WeeklySchedule: req.WeeklySchedule,
		DateOverrides:  schedule.Overrides{},
	}
	if st.Photos == nil {
		st.Photos = []string{}
	}
	if st.WeeklySchedule == nil {
		st.WeeklySchedule = schedule.Weekly{}
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Stadium, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Stadium, int, error) {
	return s.repo.List(ctx, filter)
}

// loadOwned fetches a stadium and checks that the actor may manage it.
func (s *service) loadOwned(ctx context.Context, id, actorID string, isAdmin bool) (*Stadium, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && st.OwnerID != actorID {
		return nil, ErrPermissionDenied
	}
	return st, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, actorID string, isAdmin bool) (*Stadium, error) {
	st, err := s.loadOwned(ctx, id, actorID, isAdmin)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		st.Name = name
	}
	if req.City != nil {
		st.City = *req.City
	}
	if req.Address != nil {
		st.Address = *req.Address
	}
	if req.PricePerHour != nil {
		if *req.PricePerHour < 0 {
			return nil, ErrInvalidPrice
		}
		st.PricePerHour = *req.PricePerHour
	}
	if req.IsActive != nil {
		st.IsActive = *req.IsActive
	}
	if req.Photos != nil {
		if err := validatePhotos(*req.Photos); err != nil {
			return nil, err
		}
		st.Photos = *req.Photos
	}

	if err := s.repo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *service) Delete(ctx context.Context, id string, actorID string, isAdmin bool) error {
	if _, err := s.loadOwned(ctx, id, actorID, isAdmin); err != nil {
		return err
	}
	today := schedule.Day(s.now().In(s.loc))
	cancelled, err := s.repo.Delete(ctx, id, today, actorID)
	if err != nil {
		return err
	}
	s.logger.Info().
		Str("stadium_id", id).
		Str("actor_id", actorID).
		Int64("cancelled_bookings", cancelled).
		Msg("stadium deleted")
	return nil
}

func (s *service) UpdateSchedule(ctx context.Context, id string, req ScheduleRequest, actorID string, isAdmin bool) (*Stadium, error) {
	if _, err := s.loadOwned(ctx, id, actorID, isAdmin); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateSchedule(ctx, id, req.WeeklySchedule, req.DateOverrides); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) SetDayOverride(ctx context.Context, id string, date time.Time, d schedule.DayOverride, actorID string, isAdmin bool) (*Stadium, error) {
	if _, err := s.loadOwned(ctx, id, actorID, isAdmin); err != nil {
		return nil, err
	}
	if err := s.repo.SetDateOverride(ctx, id, date, d); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) ClearDayOverride(ctx context.Context, id string, date time.Time, actorID string, isAdmin bool) (*Stadium, error) {
	if _, err := s.loadOwned(ctx, id, actorID, isAdmin); err != nil {
		return nil, err
	}
	if err := s.repo.ClearDateOverride(ctx, id, date); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// modify runs a read-modify-write against a freshly loaded stadium and
// retries when the version check in write reports a concurrent change.
func (s *service) modify(ctx context.Context, id, actorID string, isAdmin bool, write func(st *Stadium) error) (*Stadium, error) {
	for attempt := 1; ; attempt++ {
		st, err := s.loadOwned(ctx, id, actorID, isAdmin)
		if err != nil {
			return nil, err
		}
		err = write(st)
		if err == nil {
			return st, nil
		}
		if !errors.Is(err, ErrConcurrentUpdate) || attempt == maxWriteAttempts {
			return nil, err
		}
		s.logger.Debug().Str("stadium_id", id).Int("attempt", attempt).Msg("stadium changed concurrently, retrying")
	}
}

func (s *service) SetSlotOverride(ctx context.Context, id string, date time.Time, at schedule.TimeLabel, state schedule.SlotState, actorID string, isAdmin bool) (*Stadium, error) {
	if !at.IsSlotStart() {
		return nil, ErrInvalidSlot
	}
	_, err := s.modify(ctx, id, actorID, isAdmin, func(st *Stadium) error {
		day := copyDay(st.DateOverrides, date)
		day.Set(at, state)
		return s.repo.SetDateOverrideIf(ctx, id, date, day, st.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) CycleSlotOverride(ctx context.Context, id string, date time.Time, at schedule.TimeLabel, actorID string, isAdmin bool) (schedule.SlotState, error) {
	if !at.IsSlotStart() {
		return schedule.StateDefault, ErrInvalidSlot
	}
	next := schedule.StateDefault
	_, err := s.modify(ctx, id, actorID, isAdmin, func(st *Stadium) error {
		day := copyDay(st.DateOverrides, date)
		next = day.Cycle(at)
		return s.repo.SetDateOverrideIf(ctx, id, date, day, st.UpdatedAt)
	})
	if err != nil {
		return schedule.StateDefault, err
	}
	return next, nil
}

func (s *service) ToggleWeeklySlot(ctx context.Context, id string, day time.Weekday, at schedule.TimeLabel, actorID string, isAdmin bool) (bool, error) {
	if !at.IsSlotStart() {
		return false, ErrInvalidSlot
	}
	open := false
	_, err := s.modify(ctx, id, actorID, isAdmin, func(st *Stadium) error {
		weekly := copyWeekly(st.WeeklySchedule)
		open = weekly.Toggle(day, at)
		return s.repo.SetWeeklyIf(ctx, id, weekly, st.UpdatedAt)
	})
	if err != nil {
		return false, err
	}
	return open, nil
}

func (s *service) ApplyRange(ctx context.Context, id string, from, to time.Time, mode RangeMode, actorID string, isAdmin bool) (RangeResult, error) {
	res := RangeResult{Dates: []string{}}

	dates := schedule.DatesBetween(from, to)
	if len(dates) == 0 {
		return res, ErrInvalidRange
	}
	if len(dates) > MaxRangeDays {
		return res, ErrRangeTooLong
	}

	var day schedule.DayOverride
	switch mode {
	case RangeAvailable:
		day = schedule.FullDay(schedule.StateAvailable)
	case RangeUnavailable:
		day = schedule.FullDay(schedule.StateUnavailable)
	case RangeClear:
	default:
		return res, ErrInvalidMode
	}

	if _, err := s.loadOwned(ctx, id, actorID, isAdmin); err != nil {
		return res, err
	}

	for _, date := range dates {
		var err error
		if mode == RangeClear {
			err = s.repo.ClearDateOverride(ctx, id, date)
		} else {
			err = s.repo.SetDateOverride(ctx, id, date, day)
		}
		if err != nil {
			s.logger.Warn().Err(err).
				Str("stadium_id", id).
				Str("date", schedule.FormatDate(date)).
				Int("written", len(res.Dates)).
				Msg("bulk override stopped")
			return res, err
		}
		res.Dates = append(res.Dates, schedule.FormatDate(date))
	}

	s.logger.Info().Str("stadium_id", id).Str("mode", string(mode)).Int("dates", len(res.Dates)).Msg("bulk override applied")
	return res, nil
}

func copyDay(o schedule.Overrides, date time.Time) schedule.DayOverride {
	day := schedule.DayOverride{}
	if cur, ok := o.For(date); ok {
		for l, st := range cur {
			day[l] = st
		}
	}
	return day
}

func copyWeekly(w schedule.Weekly) schedule.Weekly {
	out := make(schedule.Weekly, len(w))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if labels := w.SlotsFor(d); len(labels) > 0 {
			out.Set(d, labels)
		}
	}
	return out
}
