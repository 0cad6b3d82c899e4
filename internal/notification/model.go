package notification

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/apperror"
)

var ErrNotFound = apperror.New(http.StatusNotFound, "notification not found")

type Type string

const (
	TypeBookingCreated             Type = "booking_created"
	TypeBookingRequestSent         Type = "booking_request_sent"
	TypeBookingConfirmed           Type = "booking_confirmed"
	TypeBookingCancelledByOwner    Type = "booking_cancelled_by_owner"
	TypeBookingCancelledByCustomer Type = "booking_cancelled_by_customer"
)

// Notification is one in-app inbox entry.
type Notification struct {
	ID        string
	UserID    string
	Type      Type
	Title     string
	Body      string
	Data      map[string]string
	Read      bool
	CreatedAt time.Time
}
