package handlers

import (
	"net/http"
	"time"

	auditRepo "kymaclub/database/repository/audit"
	ledgerRepo "kymaclub/database/repository/ledger"
	"kymaclub/models"
	"kymaclub/services/credits"
	"kymaclub/services/ledger"
	"kymaclub/services/payment"
	"kymaclub/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreditHandler serves the customer-facing and admin credit endpoints.
type CreditHandler struct {
	Ledger   ledger.Service
	Entries  ledgerRepo.Repository
	Audit    auditRepo.AuditRepository
	Payments payment.Service
	Logger   *zap.Logger
}

func NewCreditHandler(ledgerSvc ledger.Service, entries ledgerRepo.Repository, audit auditRepo.AuditRepository, payments payment.Service, logger *zap.Logger) *CreditHandler {
	return &CreditHandler{Ledger: ledgerSvc, Entries: entries, Audit: audit, Payments: payments, Logger: logger}
}

// GetBalanceHandler returns the authenticated user's spendable credit balance.
func (h *CreditHandler) GetBalanceHandler(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "missing user identity")
		return
	}

	balance, err := h.Ledger.AvailableCredits(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"credits":   balance,
		"formatted": credits.FormatCredits(balance),
	})
}

// LedgerHistoryHandler returns the authenticated user's ledger entries,
// oldest first.
func (h *CreditHandler) LedgerHistoryHandler(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "missing user identity")
		return
	}

	entries, err := h.Entries.EntriesForAccount(c.Request.Context(), models.CustomerAccount(userID))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if entries == nil {
		entries = []models.LedgerEntry{}
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// SubscriptionQuoteHandler prices a monthly credit subscription with the
// tiered volume discount applied.
func (h *CreditHandler) SubscriptionQuoteHandler(c *gin.Context) {
	var req struct {
		Credits float64 `json:"credits" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	quote, err := credits.QuoteSubscription(req.Credits)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// CreatePurchaseIntentHandler opens a payment intent for a credit purchase.
func (h *CreditHandler) CreatePurchaseIntentHandler(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "Unauthorized", "missing user identity")
		return
	}

	var req struct {
		Credits float64 `json:"credits" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	intent, err := h.Payments.CreatePurchaseIntent(c.Request.Context(), userID, req.Credits)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, intent)
}

// ConfirmPurchaseHandler grants the purchased credits after payment succeeded.
// Safe to retry: a replayed confirmation returns the original transaction.
func (h *CreditHandler) ConfirmPurchaseHandler(c *gin.Context) {
	var req struct {
		IntentID string `json:"intent_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	result, err := h.Payments.ConfirmPurchase(c.Request.Context(), req.IntentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// grantRequest is the admin credit-grant payload. The reason lands in the
// audit log alongside the grant.
type grantRequest struct {
	UserID            string     `json:"user_id" binding:"required"`
	Amount            float64    `json:"amount" binding:"required"`
	Kind              string     `json:"kind" binding:"required"`
	Description       string     `json:"description"`
	Reason            string     `json:"reason" binding:"required"`
	ActorID           string     `json:"actor_id" binding:"required"`
	ActorEmail        string     `json:"actor_email"`
	ExpiresAt         *time.Time `json:"expires_at"`
	ExternalReference string     `json:"external_reference"`
}

// GrantCreditsHandler posts an admin credit grant and records it in the
// audit log. A replayed grant writes no second audit entry.
func (h *CreditHandler) GrantCreditsHandler(c *gin.Context) {
	var req grantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	result, err := h.Ledger.Grant(c.Request.Context(), ledger.GrantCreditArgs{
		UserID:            req.UserID,
		Amount:            req.Amount,
		Kind:              models.EntryType(req.Kind),
		Description:       req.Description,
		ActorID:           req.ActorID,
		ExpiresAt:         req.ExpiresAt,
		ExternalReference: req.ExternalReference,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	if !result.WasReplay {
		audit := &models.AuditLogEntry{
			ID:         uuid.New().String(),
			ActorID:    req.ActorID,
			ActorEmail: req.ActorEmail,
			EntityType: "user",
			EntityID:   req.UserID,
			Action:     models.AuditManualGrant,
			Change:     models.CreditGrantChange{Amount: req.Amount, Kind: req.Kind},
			Reason:     req.Reason,
			CreatedAt:  time.Now(),
		}
		if aerr := h.Audit.Insert(c.Request.Context(), audit); aerr != nil {
			// The grant is already committed; surface the gap without undoing it.
			h.Logger.Error("failed to record manual grant audit entry",
				zap.String("userId", req.UserID), zap.Error(aerr))
		}
	}

	status := http.StatusCreated
	if result.WasReplay {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// transferRequest is the booking revenue-split payload.
type transferRequest struct {
	UserID        string  `json:"user_id" binding:"required"`
	BusinessID    string  `json:"business_id" binding:"required"`
	BookingID     string  `json:"booking_id" binding:"required"`
	CreditsAmount float64 `json:"credits_amount" binding:"required"`
	FeeRate       float64 `json:"fee_rate"`
	Description   string  `json:"description"`
	ActorID       string  `json:"actor_id" binding:"required"`
}

// TransferHandler posts the customer/business/system split for a completed
// booking.
func (h *CreditHandler) TransferHandler(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	result, err := h.Ledger.Transfer(c.Request.Context(), ledger.TransferCreditArgs{
		UserID:        req.UserID,
		BusinessID:    req.BusinessID,
		BookingID:     req.BookingID,
		CreditsAmount: req.CreditsAmount,
		FeeRate:       req.FeeRate,
		Description:   req.Description,
		ActorID:       req.ActorID,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if result.WasReplay {
		status = http.StatusOK
	}
	c.JSON(status, result)
}

// reconcileRequest names the account whose cached balance should be checked
// against its ledger entries.
type reconcileRequest struct {
	Kind       string `json:"kind" binding:"required"`
	UserID     string `json:"user_id"`
	BusinessID string `json:"business_id"`
	ActorID    string `json:"actor_id" binding:"required"`
	Reason     string `json:"reason"`
}

// ReconcileHandler recomputes an account balance from the ledger and corrects
// the cached copy if it drifted.
func (h *CreditHandler) ReconcileHandler(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	var acct models.Account
	switch models.AccountKind(req.Kind) {
	case models.AccountCustomer:
		acct = models.CustomerAccount(req.UserID)
	case models.AccountBusiness:
		acct = models.BusinessAccount(req.BusinessID)
	default:
		utils.JSONFieldError(c, http.StatusBadRequest, "invalidAccountKind", "kind",
			"kind must be customer or business")
		return
	}
	if err := acct.Validate(); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid account", err.Error())
		return
	}

	result, err := h.Ledger.Reconcile(c.Request.Context(), acct)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Only corrections are audit-worthy; a clean pass changes nothing.
	if result.Updated {
		audit := &models.AuditLogEntry{
			ID:         uuid.New().String(),
			ActorID:    req.ActorID,
			EntityType: string(acct.Kind),
			EntityID:   acct.OwnerRef(),
			Action:     models.AuditBalanceReconcile,
			Change: models.BalanceReconcileChange{
				PreviousBalance: result.PreviousBalance,
				ComputedBalance: result.ComputedBalance,
			},
			Reason:    req.Reason,
			CreatedAt: time.Now(),
		}
		if aerr := h.Audit.Insert(c.Request.Context(), audit); aerr != nil {
			h.Logger.Error("failed to record reconcile audit entry",
				zap.String("entityId", acct.OwnerRef()), zap.Error(aerr))
		}
	}

	c.JSON(http.StatusOK, result)
}
