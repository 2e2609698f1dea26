package routes

import (
	"net/http"
	"time"

	"kymaclub/handlers"
	"kymaclub/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCreditRoutes registers the customer credit endpoints.
func RegisterCreditRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/credits")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.GET("/balance", hb.GetBalanceHandler)
		api.GET("/history", hb.LedgerHistoryHandler)
		api.POST("/subscription/quote", hb.SubscriptionQuoteHandler)
		api.POST("/purchase", hb.CreatePurchaseIntentHandler)
		api.POST("/purchase/confirm", hb.ConfirmPurchaseHandler)
	}
}

// RegisterBusinessRoutes registers business reporting endpoints.
func RegisterBusinessRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/businesses")
	{
		api.Use(middleware.JWTAuthUserMiddleware(hb.UserRepo))
		api.GET("/:id/earnings", hb.MonthlyEarningsHandler)
		api.GET("/:id/metrics", hb.DashboardMetricsHandler)
	}
}

// RegisterAdminRoutes sets up endpoints for admin operations.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	adminGroup := r.Group("/api/admin")
	{
		adminGroup.Use(middleware.AdminAuthMiddleware())
		adminGroup.POST("/credits/grant", hb.GrantCreditsHandler)
		adminGroup.POST("/credits/transfer", hb.TransferHandler)
		adminGroup.POST("/credits/reconcile", hb.ReconcileHandler)
		adminGroup.PATCH("/businesses/:id/fee-rate", hb.UpdateFeeRateHandler)
		adminGroup.GET("/audit", hb.ListAuditLogHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Kymaclub"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterCreditRoutes(r, hb)
	RegisterBusinessRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
	RegisterHealthRoute(r)
}
