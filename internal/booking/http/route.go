package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stadium-booking-backend/internal/auth"
)

// RegisterRoutes mounts /bookings behind the given authentication chain.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware ...gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Authenticated Routes ===
	group.Use(authMiddleware...)
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/stats", auth.RequireRole(auth.RoleStadiumOwner, auth.RoleAdmin), h.Stats)
		group.GET("/:id", h.Get)
		group.POST("/:id/confirm", h.Confirm)
		group.POST("/:id/cancel", h.Cancel)
		group.PATCH("/:id/notes", h.UpdateNotes)
	}
}
