package booking

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/nekogravitycat/stadium-booking-backend/internal/auth"
	"github.com/nekogravitycat/stadium-booking-backend/internal/metrics"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
	"github.com/nekogravitycat/stadium-booking-backend/internal/stadium"
)

type CreateRequest struct {
	UserID    string
	StadiumID string
	Date      time.Time
	StartTime schedule.TimeLabel
	EndTime   schedule.TimeLabel
	Notes     string
}

// StadiumGetter loads the stadium a booking is made for.
type StadiumGetter interface {
	GetByID(ctx context.Context, id string) (*stadium.Stadium, error)
}

// RangeValidator checks that every hour of [start, end) on date is bookable.
// It returns nil when the range is valid and an *apperror.AppError otherwise.
type RangeValidator interface {
	ValidateRange(ctx context.Context, stadiumID string, date time.Time, start, end schedule.TimeLabel) error
}

// RateLimiter throttles booking creation per user.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	GetByID(ctx context.Context, id string, actorID string, isAdmin bool) (*Booking, error)
	// List scopes the filter to what the actor may see: players their own
	// bookings, stadium owners their stadiums' bookings, admins everything.
	List(ctx context.Context, filter Filter, actorID string, role string) ([]*Booking, int, error)
	Confirm(ctx context.Context, id string, actorID string, isAdmin bool) (*Booking, error)
	Cancel(ctx context.Context, id string, reason string, actorID string, isAdmin bool) (*Booking, error)
	UpdateNotes(ctx context.Context, id string, notes string, actorID string, isAdmin bool) (*Booking, error)
	OwnerStats(ctx context.Context, ownerID string) (OwnerStats, error)
}

type service struct {
	repo      Repository
	stadiums  StadiumGetter
	validator RangeValidator
	publisher Publisher
	limiter   RateLimiter
}

// NewService wires the booking service. publisher and limiter may be nil.
func NewService(repo Repository, stadiums StadiumGetter, validator RangeValidator, publisher Publisher, limiter RateLimiter) Service {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &service{
		repo:      repo,
		stadiums:  stadiums,
		validator: validator,
		publisher: publisher,
		limiter:   limiter,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	if req.UserID == "" || req.StadiumID == "" {
		return nil, ErrInvalidInput
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, req.UserID)
		if err != nil {
			// Fail open: limiter errors are only logged.
			zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", req.UserID).Msg("booking rate limit check failed")
		} else if !allowed {
			return nil, ErrRateLimited
		}
	}

	if err := s.validator.ValidateRange(ctx, req.StadiumID, req.Date, req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	st, err := s.stadiums.GetByID(ctx, req.StadiumID)
	if err != nil {
		if errors.Is(err, stadium.ErrNotFound) {
			return nil, ErrStadiumNotFound
		}
		return nil, err
	}

	b := &Booking{
		StadiumID:     st.ID,
		StadiumName:   st.Name,
		OwnerID:       st.OwnerID,
		UserID:        req.UserID,
		Date:          schedule.Day(req.Date),
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Notes:         req.Notes,
	}
	b.TotalPrice = st.PricePerHour * float64(b.Hours())

	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, ErrSlotTakenConcurrently) {
			metrics.ObserveSlotRace()
		}
		return nil, err
	}

	metrics.ObserveTransition(string(StatusPending))
	s.publisher.Publish(ctx, Event{Type: EventCreated, Booking: *b, ActorID: req.UserID})
	return b, nil
}

func (s *service) GetByID(ctx context.Context, id string, actorID string, isAdmin bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.UserID != actorID && b.OwnerID != actorID {
		return nil, ErrPermissionDenied
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter, actorID string, role string) ([]*Booking, int, error) {
	switch role {
	case auth.RoleAdmin:
	case auth.RoleStadiumOwner:
		filter.OwnerID = actorID
	default:
		filter.UserID = actorID
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Confirm(ctx context.Context, id string, actorID string, isAdmin bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.OwnerID != actorID {
		return nil, ErrPermissionDenied
	}

	next, err := Next(b.Status, ActionConfirm)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, b.ID, b.Status, next, nil, nil); err != nil {
		return nil, err
	}
	b.Status = next

	metrics.ObserveTransition(string(next))
	s.publisher.Publish(ctx, Event{Type: EventConfirmed, Booking: *b, ActorID: actorID})
	return b, nil
}

func (s *service) Cancel(ctx context.Context, id string, reason string, actorID string, isAdmin bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	isOwner := b.OwnerID == actorID
	isPlayer := b.UserID == actorID
	if !isAdmin && !isOwner && !isPlayer {
		return nil, ErrPermissionDenied
	}

	next, err := Next(b.Status, ActionCancel)
	if err != nil {
		return nil, err
	}

	var cancelReason *string
	if reason != "" {
		cancelReason = &reason
	}
	if err := s.repo.UpdateStatus(ctx, b.ID, b.Status, next, &actorID, cancelReason); err != nil {
		return nil, err
	}
	b.Status = next
	b.CancelledBy = &actorID
	b.CancelReason = cancelReason

	metrics.ObserveTransition(string(next))
	s.publisher.Publish(ctx, Event{
		Type:       EventCancelled,
		Booking:    *b,
		ActorID:    actorID,
		ByCustomer: isPlayer && !isOwner && !isAdmin,
		Reason:     reason,
	})
	return b, nil
}

func (s *service) UpdateNotes(ctx context.Context, id string, notes string, actorID string, isAdmin bool) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isAdmin && b.OwnerID != actorID {
		return nil, ErrPermissionDenied
	}
	if err := s.repo.UpdateNotes(ctx, id, notes); err != nil {
		return nil, err
	}
	b.Notes = notes
	return b, nil
}

func (s *service) OwnerStats(ctx context.Context, ownerID string) (OwnerStats, error) {
	return s.repo.OwnerStats(ctx, ownerID)
}
