package availability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nekogravitycat/stadium-booking-backend/internal/metrics"
	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
	"github.com/nekogravitycat/stadium-booking-backend/internal/stadium"
)

// Today is the current calendar date in the stadium-local timezone.
func (s *Service) Today() time.Time {
	return schedule.Day(s.now().In(s.loc))
}

// Validate checks a booking request for [start, end) on date. Every hour slot
// must resolve available; the first one that does not decides the reason.
// Nothing is reserved, so a later insert can still lose a race.
func (s *Service) Validate(ctx context.Context, stadiumID string, date time.Time, start, end schedule.TimeLabel) (Validation, error) {
	v, err := s.validate(ctx, stadiumID, schedule.Day(date), start, end)
	if err == nil || errors.Is(err, ErrStore) {
		metrics.ObserveValidation(string(v.Reason))
	}
	return v, err
}

func (s *Service) validate(ctx context.Context, stadiumID string, date time.Time, start, end schedule.TimeLabel) (Validation, error) {
	from, to := start.Minutes(), end.Minutes()
	if from < 0 || from%60 != 0 || to <= from || to > 24*60 || (to-from)%60 != 0 {
		return invalid(ReasonInvalidRange, ""), nil
	}
	if date.Before(s.Today()) {
		return invalid(ReasonPastDate, ""), nil
	}

	snap, err := s.snapshot(ctx, stadiumID, date)
	if err != nil {
		if errors.Is(err, ErrStore) {
			return invalid(ReasonStoreError, ""), err
		}
		return Validation{Valid: false}, err
	}

	for t := start; t.Before(end); t = t.Add(time.Hour) {
		if d := snap.resolve(t); !d.Available {
			return invalid(d.Reason, t), nil
		}
	}
	return Validation{Valid: true, Reason: ReasonOpen, Message: "Booking request is valid"}, nil
}

func invalid(reason Reason, slot schedule.TimeLabel) Validation {
	msg := reason.Message()
	if slot != "" {
		msg = fmt.Sprintf("Time slot %s unavailable: %s", slot, reason.Message())
	}
	return Validation{Valid: false, Reason: reason, Slot: slot, Message: msg}
}

// Guard turns a failed Validation into an *apperror.AppError so callers that
// only deal in errors (the booking service) can consume it.
type Guard struct {
	svc *Service
}

func NewGuard(svc *Service) *Guard {
	return &Guard{svc: svc}
}

// ValidateRange returns nil when the range is bookable.
func (g *Guard) ValidateRange(ctx context.Context, stadiumID string, date time.Time, start, end schedule.TimeLabel) error {
	v, err := g.svc.Validate(ctx, stadiumID, date, start, end)
	if err != nil {
		if errors.Is(err, stadium.ErrNotFound) {
			return stadium.ErrNotFound
		}
		return err
	}
	if v.Valid {
		return nil
	}
	return apperror.New(statusFor(v.Reason), v.Message)
}

func statusFor(r Reason) int {
	switch r {
	case ReasonInvalidRange, ReasonPastDate:
		return http.StatusBadRequest
	case ReasonStoreError:
		return http.StatusInternalServerError
	default:
		return http.StatusConflict
	}
}
