package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nekogravitycat/stadium-booking-backend/internal/availability"
	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
)

// Resolver is the availability API the handlers need.
type Resolver interface {
	Resolve(ctx context.Context, stadiumID string, date time.Time, t schedule.TimeLabel) (availability.Decision, error)
	GetAvailableSlots(ctx context.Context, stadiumID string, date time.Time) ([]availability.SlotStatus, error)
	Validate(ctx context.Context, stadiumID string, date time.Time, start, end schedule.TimeLabel) (availability.Validation, error)
	Info(ctx context.Context, stadiumID string) (availability.Info, error)
}

type Handler struct {
	resolver Resolver
}

func NewHandler(resolver Resolver) *Handler {
	return &Handler{resolver: resolver}
}

func stadiumID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return "", false
	}
	return id, true
}

// Slots lists every canonical slot of ?date= with its decision.
func (h *Handler) Slots(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}
	date, err := schedule.ParseDate(c.Query("date"))
	if err != nil {
		response.BadRequest(c, "invalid date", err)
		return
	}

	slots, err := h.resolver.GetAvailableSlots(c.Request.Context(), id, date)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]SlotResponse, len(slots))
	for i, s := range slots {
		items[i] = SlotResponse{Time: s.Time.String(), Available: s.Available, Reason: string(s.Reason)}
	}
	c.JSON(http.StatusOK, SlotsResponse{StadiumID: id, Date: schedule.FormatDate(date), Slots: items})
}

// Check resolves a single ?date=&time= slot.
func (h *Handler) Check(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}
	date, err := schedule.ParseDate(c.Query("date"))
	if err != nil {
		response.BadRequest(c, "invalid date", err)
		return
	}
	at, err := schedule.ParseSlotStart(c.Query("time"))
	if err != nil {
		response.BadRequest(c, "invalid time", err)
		return
	}

	d, err := h.resolver.Resolve(c.Request.Context(), id, date, at)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, DecisionResponse{
		Date:      schedule.FormatDate(date),
		Time:      at.String(),
		Available: d.Available,
		Reason:    string(d.Reason),
		Message:   d.Reason.Message(),
	})
}

func (h *Handler) Info(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}

	info, err := h.resolver.Info(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewInfoResponse(info))
}

// Validate checks a booking range without creating anything. An invalid
// range is a normal 200 answer with valid=false.
func (h *Handler) Validate(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}

	var body ValidateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	date, err := schedule.ParseDate(body.Date)
	if err != nil {
		response.BadRequest(c, "invalid date", err)
		return
	}
	start, err := schedule.ParseTimeLabel(body.StartTime)
	if err != nil {
		response.BadRequest(c, "invalid start_time", err)
		return
	}
	end, err := schedule.ParseTimeLabel(body.EndTime)
	if err != nil {
		response.BadRequest(c, "invalid end_time", err)
		return
	}

	v, err := h.resolver.Validate(c.Request.Context(), id, date, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewValidationResponse(v))
}
