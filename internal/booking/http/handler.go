package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nekogravitycat/stadium-booking-backend/internal/auth"
	"github.com/nekogravitycat/stadium-booking-backend/internal/booking"
	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func bookingID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return "", false
	}
	return id, true
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	from, to, err := req.Dates()
	if err != nil {
		response.BadRequest(c, "invalid date range", err)
		return
	}

	filter := booking.Filter{
		UserID:    req.UserID,
		StadiumID: req.StadiumID,
		Status:    req.Status,
		DateFrom:  from,
		DateTo:    to,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}

	bookings, total, err := h.service.List(c.Request.Context(), filter, auth.GetUserID(c), auth.GetUserRole(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
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
	end := start.Add(time.Hour)
	if body.EndTime != "" {
		if end, err = schedule.ParseTimeLabel(body.EndTime); err != nil {
			response.BadRequest(c, "invalid end_time", err)
			return
		}
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		UserID:    auth.GetUserID(c),
		StadiumID: body.StadiumID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Notes:     body.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), id, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Confirm(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Confirm(c.Request.Context(), id, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var body CancelBookingRequest
	// The body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid request body", err)
			return
		}
	}

	b, err := h.service.Cancel(c.Request.Context(), id, body.Reason, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) UpdateNotes(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var body UpdateNotesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	b, err := h.service.UpdateNotes(c.Request.Context(), id, body.Notes, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Stats summarises the bookings of the calling owner's stadiums.
// Admins may pass ?owner_id= to inspect another owner.
func (h *Handler) Stats(c *gin.Context) {
	ownerID := auth.GetUserID(c)
	if q := c.Query("owner_id"); q != "" && auth.IsAdmin(c) {
		ownerID = q
	}

	stats, err := h.service.OwnerStats(c.Request.Context(), ownerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOwnerStatsResponse(stats))
}
