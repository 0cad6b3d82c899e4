package http

import (
	"time"

	"github.com/nekogravitycat/stadium-booking-backend/internal/booking"
	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
)

// ListBookingsRequest defines query parameters for listing bookings.
type ListBookingsRequest struct {
	request.ListParams
	StadiumID string `form:"stadium_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=pending confirmed cancelled"`
	UserID    string `form:"user_id" binding:"omitempty,uuid"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
	SortBy    string `form:"sort_by" binding:"omitempty,oneof=booking_date created_at status total_price"`
}

// Dates parses the optional date bounds.
func (r *ListBookingsRequest) Dates() (from, to *time.Time, err error) {
	if r.DateFrom != "" {
		d, err := schedule.ParseDate(r.DateFrom)
		if err != nil {
			return nil, nil, err
		}
		from = &d
	}
	if r.DateTo != "" {
		d, err := schedule.ParseDate(r.DateTo)
		if err != nil {
			return nil, nil, err
		}
		to = &d
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, booking.ErrInvalidInput
	}
	return from, to, nil
}

type StadiumTag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookingResponse struct {
	ID            string     `json:"id"`
	Stadium       StadiumTag `json:"stadium"`
	UserID        string     `json:"user_id"`
	Date          string     `json:"date"`
	StartTime     string     `json:"start_time"`
	EndTime       string     `json:"end_time"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"payment_status"`
	TotalPrice    float64    `json:"total_price"`
	Notes         string     `json:"notes"`
	CancelledBy   *string    `json:"cancelled_by,omitempty"`
	CancelReason  *string    `json:"cancel_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		Stadium:       StadiumTag{ID: b.StadiumID, Name: b.StadiumName},
		UserID:        b.UserID,
		Date:          schedule.FormatDate(b.Date),
		StartTime:     b.StartTime.String(),
		EndTime:       b.EndTime.String(),
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		TotalPrice:    b.TotalPrice,
		Notes:         b.Notes,
		CancelledBy:   b.CancelledBy,
		CancelReason:  b.CancelReason,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

type CreateBookingRequest struct {
	StadiumID string `json:"stadium_id" binding:"required,uuid"`
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	// EndTime defaults to one hour after StartTime.
	EndTime string `json:"end_time"`
	Notes   string `json:"notes" binding:"max=1000"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"max=1000"`
}

type OwnerStatsResponse struct {
	Total          int     `json:"total"`
	Pending        int     `json:"pending"`
	Confirmed      int     `json:"confirmed"`
	Cancelled      int     `json:"cancelled"`
	TotalRevenue   float64 `json:"total_revenue"`
	PendingRevenue float64 `json:"pending_revenue"`
}

func NewOwnerStatsResponse(s booking.OwnerStats) OwnerStatsResponse {
	return OwnerStatsResponse{
		Total:          s.Total,
		Pending:        s.Pending,
		Confirmed:      s.Confirmed,
		Cancelled:      s.Cancelled,
		TotalRevenue:   s.TotalRevenue,
		PendingRevenue: s.PendingRevenue,
	}
}
