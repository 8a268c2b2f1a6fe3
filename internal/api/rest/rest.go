package rest

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all REST API routes. auth guards the write endpoints.
func SetupRoutes(router *gin.Engine, handler Handler, auth gin.HandlerFunc) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/coins", handler.ListCoins)
		v1.GET("/coins/:id", handler.GetCoin)
		v1.GET("/feed", handler.GetFeed)
		v1.GET("/cache", handler.GetCache)
		v1.GET("/notifications", handler.ListNotifications)

		v1.POST("/coins/refresh", auth, handler.RefreshCoins)
		v1.POST("/coins/:id/refresh", auth, handler.RefreshCoin)
	}
}
