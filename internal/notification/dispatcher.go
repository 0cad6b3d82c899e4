package notification

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nekogravitycat/stadium-booking-backend/internal/booking"
	"github.com/nekogravitycat/stadium-booking-backend/internal/metrics"
)

// Sink delivers a composed event somewhere: the inbox table, a broker, ...
type Sink interface {
	Name() string
	Deliver(ctx context.Context, e booking.Event, msgs []Notification) error
}

// Dispatcher fans booking events out to its sinks in the background.
// Failures are logged and counted, never reported back to the caller.
type Dispatcher struct {
	sinks   []Sink
	timeout time.Duration
	logger  zerolog.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(logger zerolog.Logger, timeout time.Duration, sinks ...Sink) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{
		sinks:   sinks,
		timeout: timeout,
		logger:  logger.With().Str("component", "notification").Logger(),
	}
}

// Publish implements booking.Publisher. It returns immediately.
func (d *Dispatcher) Publish(ctx context.Context, e booking.Event) {
	msgs := Compose(e)
	if len(msgs) == 0 || len(d.sinks) == 0 {
		return
	}

	// Detach from the request so delivery outlives it.
	base := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()
		d.deliver(ctx, e, msgs)
	}()
}

func (d *Dispatcher) deliver(ctx context.Context, e booking.Event, msgs []Notification) {
	for _, s := range d.sinks {
		if err := s.Deliver(ctx, e, msgs); err != nil {
			metrics.ObserveNotificationFailure(s.Name())
			d.logger.Error().Err(err).
				Str("sink", s.Name()).
				Str("event", string(e.Type)).
				Str("booking_id", e.Booking.ID).
				Msg("notification delivery failed")
		}
	}
}

// Wait blocks until in-flight deliveries finish or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// StoreSink writes notifications to the in-app inbox.
type StoreSink struct {
	repo Repository
}

func NewStoreSink(repo Repository) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Name() string { return "inbox" }

func (s *StoreSink) Deliver(ctx context.Context, _ booking.Event, msgs []Notification) error {
	for i := range msgs {
		if err := s.repo.Create(ctx, &msgs[i]); err != nil {
			return err
		}
	}
	return nil
}
