package notification

import (
	"fmt"

	"github.com/nekogravitycat/stadium-booking-backend/internal/booking"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
)

// Compose builds the inbox entries a booking event produces: creation tells
// both sides, confirmation tells the player, cancellation tells whoever did
// not cancel.
func Compose(e booking.Event) []Notification {
	b := e.Booking
	when := fmt.Sprintf("%s on %s at %s", stadiumName(b), schedule.FormatDate(b.Date), b.StartTime)
	data := map[string]string{
		"booking_id": b.ID,
		"stadium_id": b.StadiumID,
	}

	switch e.Type {
	case booking.EventCreated:
		return []Notification{
			{
				UserID: b.OwnerID,
				Type:   TypeBookingCreated,
				Title:  "New Booking Request",
				Body:   fmt.Sprintf("A customer wants to book %s", when),
				Data:   with(data, "customer_id", b.UserID),
			},
			{
				UserID: b.UserID,
				Type:   TypeBookingRequestSent,
				Title:  "Booking Request Sent",
				Body:   fmt.Sprintf("Your booking request for %s has been sent to the stadium owner", when),
				Data:   data,
			},
		}

	case booking.EventConfirmed:
		return []Notification{{
			UserID: b.UserID,
			Type:   TypeBookingConfirmed,
			Title:  "Booking Confirmed",
			Body:   fmt.Sprintf("Your booking for %s has been confirmed", when),
			Data:   data,
		}}

	case booking.EventCancelled:
		if e.Reason != "" {
			data = with(data, "reason", e.Reason)
		}
		if e.ByCustomer {
			return []Notification{{
				UserID: b.OwnerID,
				Type:   TypeBookingCancelledByCustomer,
				Title:  "Booking Cancelled",
				Body:   fmt.Sprintf("A customer cancelled their booking for %s", when),
				Data:   data,
			}}
		}
		body := fmt.Sprintf("Your booking for %s was cancelled by the stadium", when)
		if e.Reason != "" {
			body += ": " + e.Reason
		}
		return []Notification{{
			UserID: b.UserID,
			Type:   TypeBookingCancelledByOwner,
			Title:  "Booking Cancelled",
			Body:   body,
			Data:   data,
		}}
	}
	return nil
}

func stadiumName(b booking.Booking) string {
	if b.StadiumName == "" {
		return "your stadium"
	}
	return b.StadiumName
}

func with(m map[string]string, k, v string) map[string]string {
	out := make(map[string]string, len(m)+1)
	for key, val := range m {
		out[key] = val
	}
	out[k] = v
	return out
}
