package http

import (
	"time"

	"github.com/nekogravitycat/stadium-booking-backend/internal/availability"
)

type SlotResponse struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
}

type SlotsResponse struct {
	StadiumID string         `json:"stadium_id"`
	Date      string         `json:"date"`
	Slots     []SlotResponse `json:"slots"`
}

type DecisionResponse struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Reason    string `json:"reason"`
	Message   string `json:"message"`
}

type InfoResponse struct {
	Name                 string            `json:"name"`
	IsActive             bool              `json:"is_active"`
	OperatingHours       map[string]string `json:"operating_hours"`
	HasDateSpecificRules bool              `json:"has_date_specific_rules"`
}

func NewInfoResponse(info availability.Info) InfoResponse {
	hours := make(map[string]string, len(info.OperatingHours))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if h, ok := info.OperatingHours[d]; ok {
			hours[d.String()] = h
		}
	}
	return InfoResponse{
		Name:                 info.Name,
		IsActive:             info.IsActive,
		OperatingHours:       hours,
		HasDateSpecificRules: info.HasDateSpecificRules,
	}
}

type ValidateRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type ValidationResponse struct {
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason"`
	Slot    string `json:"slot,omitempty"`
	Message string `json:"message"`
}

func NewValidationResponse(v availability.Validation) ValidationResponse {
	return ValidationResponse{
		Valid:   v.Valid,
		Reason:  string(v.Reason),
		Slot:    v.Slot.String(),
		Message: v.Message,
	}
}
