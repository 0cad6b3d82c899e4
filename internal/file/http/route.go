package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/stadium-booking-backend/internal/auth"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := r.Group("/files")

	// === Public Routes ===
	group.GET("/:id", h.ServeFile)
	group.GET("/:id/thumbnail", h.ServeThumbnail)

	// === Stadium Owner Routes ===
	owners := group.Group("")
	owners.Use(authMiddleware, auth.RequireRole(auth.RoleStadiumOwner, auth.RoleAdmin))
	{
		owners.POST("", h.Upload)
		owners.DELETE("/:id", h.Delete)
	}
}
