package availability

import (
	"context"
	"net/http"
	"time"

	"github.com/nekogravitycat/stadium-booking-backend/internal/booking"
	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
	"github.com/nekogravitycat/stadium-booking-backend/internal/stadium"
)

// ErrStore marks a failed read of the record store. Results produced
// alongside it are always unavailable or invalid.
var ErrStore = apperror.New(http.StatusInternalServerError, "availability could not be determined")

// Reason explains an availability decision.
type Reason string

const (
	ReasonOpen                  Reason = "open"
	ReasonStadiumInactive       Reason = "stadium_inactive"
	ReasonOwnerBlocked          Reason = "owner_blocked"
	ReasonOutsideOperatingHours Reason = "outside_operating_hours"
	ReasonAlreadyBooked         Reason = "already_booked"
	ReasonInvalidRange          Reason = "invalid_range"
	ReasonPastDate              Reason = "past_date"
	ReasonStoreError            Reason = "store_error"
)

var reasonMessages = map[Reason]string{
	ReasonOpen:                  "Available for booking",
	ReasonStadiumInactive:       "Stadium is not active",
	ReasonOwnerBlocked:          "Time slot marked as unavailable by stadium owner",
	ReasonOutsideOperatingHours: "Time slot not in stadium operating hours",
	ReasonAlreadyBooked:         "Time slot already booked",
	ReasonInvalidRange:          "Booking must start on the hour and end a whole number of hours later, by 24:00",
	ReasonPastDate:              "Cannot book a date in the past",
	ReasonStoreError:            "Error checking availability",
}

// Message is the human-readable form of a reason.
func (r Reason) Message() string {
	if m, ok := reasonMessages[r]; ok {
		return m
	}
	return string(r)
}

// Decision is the outcome of resolving one slot.
type Decision struct {
	Available bool
	Reason    Reason
}

// SlotStatus is one row of a day's availability listing.
type SlotStatus struct {
	Time      schedule.TimeLabel
	Available bool
	Reason    Reason
}

// Validation is the verdict on a booking range. Slot names the first
// unavailable hour when the failure is slot-specific.
type Validation struct {
	Valid   bool
	Reason  Reason
	Slot    schedule.TimeLabel
	Message string
}

// Info summarises a stadium's operating hours for display.
type Info struct {
	Name     string
	IsActive bool
	// OperatingHours maps weekday to "HH:MM - HH:MM" (first and last slot start) or "Closed".
	OperatingHours       map[time.Weekday]string
	HasDateSpecificRules bool
}

// StadiumStore reads stadiums with their weekly schedule and date overrides.
type StadiumStore interface {
	GetByID(ctx context.Context, id string) (*stadium.Stadium, error)
}

// BookingStore lists a stadium's bookings on one date filtered by status.
type BookingStore interface {
	ListByStadiumDate(ctx context.Context, stadiumID string, date time.Time, statuses []booking.Status) ([]*booking.Booking, error)
}
