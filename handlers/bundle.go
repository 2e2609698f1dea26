package handlers

import (
	userRepoPkg "kymaclub/database/repository/user"

	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates every route handler plus the repositories the
// middleware needs.
type HandlerBundle struct {
	UserRepo userRepoPkg.UserRepository

	// Credit endpoints.
	GetBalanceHandler           gin.HandlerFunc
	CreatePurchaseIntentHandler gin.HandlerFunc
	ConfirmPurchaseHandler      gin.HandlerFunc
	LedgerHistoryHandler        gin.HandlerFunc
	SubscriptionQuoteHandler    gin.HandlerFunc

	// Business endpoints.
	MonthlyEarningsHandler  gin.HandlerFunc
	DashboardMetricsHandler gin.HandlerFunc

	// Admin endpoints.
	GrantCreditsHandler  gin.HandlerFunc
	TransferHandler      gin.HandlerFunc
	ReconcileHandler     gin.HandlerFunc
	UpdateFeeRateHandler gin.HandlerFunc
	ListAuditLogHandler  gin.HandlerFunc
}
