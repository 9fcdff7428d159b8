package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-token-ledger/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Balance endpoints (public read access)
		v1.GET("/balances/:account/:id", handler.GetBalance)
		v1.POST("/balances/batch", handler.GetBalanceBatch)

		// Approval endpoints
		v1.GET("/approvals/:account/:operator", handler.GetApproval)
		v1.PUT("/approvals", middleware.Auth(authCfg), handler.SetApproval)

		// Transfer endpoints (requires authentication)
		v1.POST("/transfers", middleware.Auth(authCfg), handler.Transfer)
		v1.POST("/transfers/batch", middleware.Auth(authCfg), handler.TransferBatch)

		// Supply endpoints (requires authentication)
		v1.POST("/mint", middleware.Auth(authCfg), handler.Mint)
		v1.POST("/mint/batch", middleware.Auth(authCfg), handler.MintBatch)
		v1.POST("/burn", middleware.Auth(authCfg), handler.Burn)
		v1.POST("/burn/batch", middleware.Auth(authCfg), handler.BurnBatch)
	}
}
