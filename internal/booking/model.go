package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
)

var (
	ErrNotFound              = apperror.New(http.StatusNotFound, "booking not found")
	ErrSlotTakenConcurrently = apperror.New(http.StatusConflict, "slot no longer available, please check availability again")
	ErrInvalidTransition     = apperror.New(http.StatusConflict, "booking status does not allow this action")
	ErrInvalidStatus         = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrPermissionDenied      = apperror.New(http.StatusForbidden, "permission denied")
	ErrStadiumNotFound       = apperror.New(http.StatusNotFound, "stadium not found")
	ErrRateLimited           = apperror.New(http.StatusTooManyRequests, "too many booking requests, try again later")
	ErrInvalidInput          = apperror.New(http.StatusBadRequest, "invalid input parameters")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// ActiveStatuses are the statuses that occupy a slot.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

// PaymentStatus is stored alongside a booking but never computed here.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type Booking struct {
	ID            string
	StadiumID     string
	StadiumName   string
	OwnerID       string
	UserID        string
	Date          time.Time
	StartTime     schedule.TimeLabel
	EndTime       schedule.TimeLabel
	Status        Status
	PaymentStatus PaymentStatus
	TotalPrice    float64
	Notes         string
	CancelledBy   *string
	CancelReason  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Hours is the booked duration in whole hours.
func (b *Booking) Hours() int {
	return (b.EndTime.Minutes() - b.StartTime.Minutes()) / 60
}

// Covers reports whether the booking's [start, end) interval contains the slot starting at t.
func (b *Booking) Covers(t schedule.TimeLabel) bool {
	m := t.Minutes()
	return b.StartTime.Minutes() <= m && m < b.EndTime.Minutes()
}

// Occupies reports whether the booking blocks its slots.
func (b *Booking) Occupies() bool {
	return b.Status == StatusPending || b.Status == StatusConfirmed
}

type Filter struct {
	UserID    string
	OwnerID   string
	StadiumID string
	Status    string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// OwnerStats summarises the bookings of all stadiums of one owner.
type OwnerStats struct {
	Total          int
	Pending        int
	Confirmed      int
	Cancelled      int
	TotalRevenue   float64
	PendingRevenue float64
}
