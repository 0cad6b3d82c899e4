package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stadium-booking-backend/internal/auth"
)

func RegisterRoutes(g *gin.RouterGroup, h *StadiumHandler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/stadiums")

	// === Public Routes ===
	group.GET("", h.List)
	group.GET("/:id", h.Get)

	// === Owner Routes ===
	owner := group.Group("")
	owner.Use(authMiddleware, auth.RequireRole(auth.RoleStadiumOwner, auth.RoleAdmin))
	{
		owner.POST("", h.Create)
		owner.PATCH("/:id", h.Update)
		owner.DELETE("/:id", h.Delete)

		owner.PUT("/:id/schedule", h.UpdateSchedule)
		owner.POST("/:id/schedule/:day/slots/:time/toggle", h.ToggleWeeklySlot)
		owner.POST("/:id/overrides/range", h.ApplyRange)
		owner.PUT("/:id/overrides/:date", h.SetDayOverride)
		owner.DELETE("/:id/overrides/:date", h.ClearDayOverride)
		owner.PUT("/:id/overrides/:date/slots/:time", h.SetSlotOverride)
		owner.POST("/:id/overrides/:date/slots/:time/cycle", h.CycleSlotOverride)
	}
}
