package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/stadiums/:id/availability")

	// === Public Routes ===
	group.GET("", h.Slots)
	group.GET("/check", h.Check)
	group.GET("/info", h.Info)

	// === Authenticated Routes ===
	group.POST("/validate", authMiddleware, h.Validate)
}
