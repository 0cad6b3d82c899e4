package stadium

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "stadium not found")
	ErrNameRequired     = apperror.New(http.StatusBadRequest, "stadium name is required")
	ErrInvalidPrice     = apperror.New(http.StatusBadRequest, "price per hour must not be negative")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidRange     = apperror.New(http.StatusBadRequest, "invalid date range")
	ErrRangeTooLong     = apperror.New(http.StatusBadRequest, "date range exceeds 366 days")
	ErrInvalidMode      = apperror.New(http.StatusBadRequest, "mode must be available, unavailable or clear")
	ErrInvalidPhoto     = apperror.New(http.StatusBadRequest, "photo ids must be UUIDs")
	ErrInvalidSlot      = apperror.New(http.StatusBadRequest, "slot time must be a whole hour from 00:00 to 23:00")
	// ErrConcurrentUpdate is returned when the stadium kept changing under a read-modify-write.
	ErrConcurrentUpdate = apperror.New(http.StatusConflict, "stadium was modified concurrently, try again")
)

// StadiumRemovedReason is recorded on bookings cancelled by a stadium delete.
const StadiumRemovedReason = "stadium removed"

// Stadium is a bookable venue with its weekly template and per-date exceptions.
type Stadium struct {
	ID             string
	OwnerID        string
	Name           string
	City           string
	Address        string
	PricePerHour   float64
	IsActive       bool
	Photos         []string
	WeeklySchedule schedule.Weekly
	DateOverrides  schedule.Overrides
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Filter defines parameters for listing stadiums.
type Filter struct {
	OwnerID   string
	City      string
	Name      string
	IsActive  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// RangeMode selects what ApplyRange writes for each date.
type RangeMode string

const (
	RangeAvailable   RangeMode = "available"
	RangeUnavailable RangeMode = "unavailable"
	RangeClear       RangeMode = "clear"
)

// MaxRangeDays bounds a single bulk override request.
const MaxRangeDays = 366
