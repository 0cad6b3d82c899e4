package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nekogravitycat/stadium-booking-backend/internal/auth"
	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
	"github.com/nekogravitycat/stadium-booking-backend/internal/stadium"
)

type StadiumHandler struct {
	service stadium.Service
}

func NewHandler(service stadium.Service) *StadiumHandler {
	return &StadiumHandler{service: service}
}

// stadiumID validates the :id path parameter.
func stadiumID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid UUID"})
		return "", false
	}
	return id, true
}

func pathDate(c *gin.Context) (time.Time, bool) {
	d, err := schedule.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, false
	}
	return d, true
}

// List retrieves a paginated list of stadiums.
func (h *StadiumHandler) List(c *gin.Context) {
	var req ListStadiumsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	req.Normalize()

	filter := stadium.Filter{
		OwnerID:   req.OwnerID,
		City:      req.City,
		Name:      req.Name,
		IsActive:  req.IsActive,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}

	stadiums, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]StadiumResponse, len(stadiums))
	for i, s := range stadiums {
		items[i] = NewStadiumResponse(s)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// Create adds a stadium owned by the caller (or by owner_id when an admin calls).
func (h *StadiumHandler) Create(c *gin.Context) {
	var body CreateStadiumRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	ownerID := auth.GetUserID(c)
	if auth.IsAdmin(c) && body.OwnerID != "" {
		ownerID = body.OwnerID
	}

	isActive := true
	if body.IsActive != nil {
		isActive = *body.IsActive
	}

	s, err := h.service.Create(c.Request.Context(), stadium.CreateRequest{
		OwnerID:        ownerID,
		Name:           body.Name,
		City:           body.City,
		Address:        body.Address,
		PricePerHour:   body.PricePerHour,
		IsActive:       isActive,
		Photos:         body.Photos,
		WeeklySchedule: body.WeeklySchedule,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewStadiumResponse(s))
}

// Get retrieves stadium details including its schedule.
func (h *StadiumHandler) Get(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}

	s, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStadiumResponse(s))
}

func (h *StadiumHandler) Update(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}

	var body UpdateStadiumRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}

	s, err := h.service.Update(c.Request.Context(), id, stadium.UpdateRequest{
		Name:         body.Name,
		City:         body.City,
		Address:      body.Address,
		PricePerHour: body.PricePerHour,
		IsActive:     body.IsActive,
		Photos:       body.Photos,
	}, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStadiumResponse(s))
}

func (h *StadiumHandler) Delete(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, auth.GetUserID(c), auth.IsAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateSchedule replaces the weekly schedule and/or the date overrides.
func (h *StadiumHandler) UpdateSchedule(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}

	var body UpdateScheduleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid schedule", err)
		return
	}
	if body.WeeklySchedule == nil && body.DateOverrides == nil {
		response.BadRequest(c, "weekly_schedule or date_overrides is required", nil)
		return
	}

	s, err := h.service.UpdateSchedule(c.Request.Context(), id, stadium.ScheduleRequest{
		WeeklySchedule: body.WeeklySchedule,
		DateOverrides:  body.DateOverrides,
	}, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStadiumResponse(s))
}

// SetDayOverride replaces the override of one date. Body: {"available": [...], "unavailable": [...]}.
func (h *StadiumHandler) SetDayOverride(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}
	date, ok := pathDate(c)
	if !ok {
		return
	}

	var body schedule.DayOverride
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid override", err)
		return
	}

	s, err := h.service.SetDayOverride(c.Request.Context(), id, date, body, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStadiumResponse(s))
}

func (h *StadiumHandler) ClearDayOverride(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}
	date, ok := pathDate(c)
	if !ok {
		return
	}

	s, err := h.service.ClearDayOverride(c.Request.Context(), id, date, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStadiumResponse(s))
}

func (h *StadiumHandler) SetSlotOverride(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}
	date, ok := pathDate(c)
	if !ok {
		return
	}
	at, err := schedule.ParseSlotStart(c.Param("time"))
	if err != nil {
		response.BadRequest(c, "invalid time", err)
		return
	}

	var body SlotOverrideRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	state, err := schedule.ParseSlotState(body.State)
	if err != nil {
		response.BadRequest(c, "invalid state", err)
		return
	}

	if _, err := h.service.SetSlotOverride(c.Request.Context(), id, date, at, state, auth.GetUserID(c), auth.IsAdmin(c)); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, SlotOverrideResponse{Date: schedule.FormatDate(date), Time: at.String(), State: state.String()})
}

// CycleSlotOverride advances one slot default -> available -> unavailable -> default.
func (h *StadiumHandler) CycleSlotOverride(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}
	date, ok := pathDate(c)
	if !ok {
		return
	}
	at, err := schedule.ParseSlotStart(c.Param("time"))
	if err != nil {
		response.BadRequest(c, "invalid time", err)
		return
	}

	state, err := h.service.CycleSlotOverride(c.Request.Context(), id, date, at, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, SlotOverrideResponse{Date: schedule.FormatDate(date), Time: at.String(), State: state.String()})
}

// ToggleWeeklySlot opens or closes one slot of the weekly schedule.
func (h *StadiumHandler) ToggleWeeklySlot(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}
	day, err := schedule.ParseDayKey(c.Param("day"))
	if err != nil {
		response.BadRequest(c, "invalid day", err)
		return
	}
	at, err := schedule.ParseSlotStart(c.Param("time"))
	if err != nil {
		response.BadRequest(c, "invalid time", err)
		return
	}

	open, err := h.service.ToggleWeeklySlot(c.Request.Context(), id, day, at, auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, WeeklySlotResponse{Day: schedule.DayKey(day), Time: at.String(), Open: open})
}

// ApplyRange marks or clears every date in [from, to]. A partial failure
// answers with the error status and still lists the dates that were written.
func (h *StadiumHandler) ApplyRange(c *gin.Context) {
	id, ok := stadiumID(c)
	if !ok {
		return
	}

	var body RangeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid request body", err)
		return
	}
	from, err := schedule.ParseDate(body.From)
	if err != nil {
		response.BadRequest(c, "invalid from date", err)
		return
	}
	to, err := schedule.ParseDate(body.To)
	if err != nil {
		response.BadRequest(c, "invalid to date", err)
		return
	}

	res, err := h.service.ApplyRange(c.Request.Context(), id, from, to, stadium.RangeMode(body.Mode), auth.GetUserID(c), auth.IsAdmin(c))
	if err != nil {
		if len(res.Dates) == 0 {
			response.Error(c, err)
			return
		}
		status := http.StatusInternalServerError
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			status = appErr.Code
		}
		c.JSON(status, RangeResponse{Dates: res.Dates, Error: "bulk update incomplete"})
		return
	}
	c.JSON(http.StatusOK, RangeResponse{Dates: res.Dates})
}
