// File: kymaclub/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kymaclub/config"
	"kymaclub/cron"
	"kymaclub/database"
	auditRepoPkg "kymaclub/database/repository/audit"
	bookingRepoPkg "kymaclub/database/repository/booking"
	businessRepoPkg "kymaclub/database/repository/business"
	ledgerRepoPkg "kymaclub/database/repository/ledger"
	userRepoPkg "kymaclub/database/repository/user"
	"kymaclub/handlers"
	"kymaclub/middleware"
	"kymaclub/routes"
	"kymaclub/services/credits"
	"kymaclub/services/ledger"
	"kymaclub/services/notification"
	"kymaclub/services/payment"
	"kymaclub/services/policy"
	"kymaclub/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.FirebaseInit()

	// Override the compiled-in credit limits from configuration.
	if config.AppConfig.MaxCreditBalance > 0 {
		credits.MaxCreditBalance = config.AppConfig.MaxCreditBalance
	}
	if config.AppConfig.MaxCreditsPerOperation > 0 {
		credits.MaxOperationCredits = config.AppConfig.MaxCreditsPerOperation
	}

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	ledgerRepo := ledgerRepoPkg.NewMongoLedgerRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()
	businessRepo := businessRepoPkg.NewMongoBusinessRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	auditRepo := auditRepoPkg.NewMongoAuditRepo()

	// Asynq client for queued grant notifications.
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer asynqClient.Close()

	// services.
	ledgerService := &ledger.DefaultLedgerService{
		Repo:       ledgerRepo,
		Users:      userRepo,
		Businesses: businessRepo,
		Notifier:   ledger.NewAsynqGrantNotifier(asynqClient, logger),
		Logger:     logger,
	}

	policyService := &policy.DefaultPolicyService{
		Businesses:    businessRepo,
		Bookings:      bookingRepo,
		Audit:         auditRepo,
		Cache:         utils.GetCacheClient(),
		Logger:        logger,
		LegacyFeeRate: config.AppConfig.LegacyFeeRate,
	}

	paymentService := &payment.StripePaymentService{
		Ledger: ledgerService,
		Logger: logger,
	}

	notificationService, err := notification.NewDefaultNotificationService(userRepo)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	creditHandler := handlers.NewCreditHandler(ledgerService, ledgerRepo, auditRepo, paymentService, logger)
	policyHandler := handlers.NewPolicyHandler(policyService, logger)
	auditHandler := handlers.NewAuditHandler(auditRepo)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		UserRepo: userRepo,

		// Credit endpoints.
		GetBalanceHandler:           creditHandler.GetBalanceHandler,
		CreatePurchaseIntentHandler: creditHandler.CreatePurchaseIntentHandler,
		ConfirmPurchaseHandler:      creditHandler.ConfirmPurchaseHandler,
		LedgerHistoryHandler:        creditHandler.LedgerHistoryHandler,
		SubscriptionQuoteHandler:    creditHandler.SubscriptionQuoteHandler,

		// Business endpoints.
		MonthlyEarningsHandler:  policyHandler.MonthlyEarningsHandler,
		DashboardMetricsHandler: policyHandler.DashboardMetricsHandler,

		// Admin endpoints.
		GrantCreditsHandler:  creditHandler.GrantCreditsHandler,
		TransferHandler:      creditHandler.TransferHandler,
		ReconcileHandler:     creditHandler.ReconcileHandler,
		UpdateFeeRateHandler: policyHandler.UpdateFeeRateHandler,
		ListAuditLogHandler:  auditHandler.ListAuditLogHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the background notification worker.
	cron.InitNotificationWorker(notificationService)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
