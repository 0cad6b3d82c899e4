package http

import (
	"time"

	"github.com/nekogravitycat/stadium-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
	"github.com/nekogravitycat/stadium-booking-backend/internal/stadium"
)

// ListStadiumsRequest defines query parameters for listing stadiums.
type ListStadiumsRequest struct {
	request.ListParams
	OwnerID  string `form:"owner_id" binding:"omitempty,uuid"`
	City     string `form:"city"`
	Name     string `form:"name"`
	IsActive *bool  `form:"is_active"`
	SortBy   string `form:"sort_by" binding:"omitempty,oneof=name city price_per_hour created_at"`
}

type StadiumResponse struct {
	ID             string             `json:"id"`
	OwnerID        string             `json:"owner_id"`
	Name           string             `json:"name"`
	City           string             `json:"city"`
	Address        string             `json:"address"`
	PricePerHour   float64            `json:"price_per_hour"`
	IsActive       bool               `json:"is_active"`
	Photos         []string           `json:"photos"`
	WeeklySchedule schedule.Weekly    `json:"weekly_schedule"`
	DateOverrides  schedule.Overrides `json:"date_overrides"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

func NewStadiumResponse(s *stadium.Stadium) StadiumResponse {
	overrides := s.DateOverrides
	if overrides == nil {
		overrides = schedule.Overrides{}
	}
	return StadiumResponse{
		ID:             s.ID,
		OwnerID:        s.OwnerID,
		Name:           s.Name,
		City:           s.City,
		Address:        s.Address,
		PricePerHour:   s.PricePerHour,
		IsActive:       s.IsActive,
		Photos:         s.Photos,
		WeeklySchedule: s.WeeklySchedule,
		DateOverrides:  overrides,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type CreateStadiumRequest struct {
	// OwnerID is honoured for admins only; owners always create for themselves.
	OwnerID        string          `json:"owner_id" binding:"omitempty,uuid"`
	Name           string          `json:"name" binding:"required"`
	City           string          `json:"city"`
	Address        string          `json:"address"`
	PricePerHour   float64         `json:"price_per_hour" binding:"min=0"`
	IsActive       *bool           `json:"is_active"`
	Photos         []string        `json:"photos" binding:"omitempty,dive,uuid"`
	WeeklySchedule schedule.Weekly `json:"weekly_schedule"`
}

type UpdateStadiumRequest struct {
	Name         *string   `json:"name"`
	City         *string   `json:"city"`
	Address      *string   `json:"address"`
	PricePerHour *float64  `json:"price_per_hour" binding:"omitempty,min=0"`
	IsActive     *bool     `json:"is_active"`
	Photos       *[]string `json:"photos"`
}

// UpdateScheduleRequest replaces whichever of the two parts is present.
type UpdateScheduleRequest struct {
	WeeklySchedule schedule.Weekly    `json:"weekly_schedule"`
	DateOverrides  schedule.Overrides `json:"date_overrides"`
}

type SlotOverrideRequest struct {
	State string `json:"state" binding:"required,oneof=default available unavailable"`
}

type SlotOverrideResponse struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	State string `json:"state"`
}

type WeeklySlotResponse struct {
	Day  string `json:"day"`
	Time string `json:"time"`
	Open bool   `json:"open"`
}

type RangeRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
	Mode string `json:"mode" binding:"required,oneof=available unavailable clear"`
}

type RangeResponse struct {
	Dates []string `json:"dates"`
	Error string   `json:"error,omitempty"`
}
