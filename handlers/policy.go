package handlers

import (
	"net/http"
	"time"

	"kymaclub/services/policy"
	"kymaclub/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// PolicyHandler serves the fee-policy and business-reporting endpoints.
type PolicyHandler struct {
	Policy policy.Service
	Logger *zap.Logger
}

func NewPolicyHandler(policySvc policy.Service, logger *zap.Logger) *PolicyHandler {
	return &PolicyHandler{Policy: policySvc, Logger: logger}
}

// feeRateRequest is the admin fee-rate change payload. The reason is
// mandatory and lands in the audit log verbatim.
type feeRateRequest struct {
	FeeRate    *float64 `json:"fee_rate" binding:"required"`
	Reason     string   `json:"reason" binding:"required"`
	ActorID    string   `json:"actor_id" binding:"required"`
	ActorEmail string   `json:"actor_email"`
}

// UpdateFeeRateHandler applies an audited platform-fee change to a business.
func (h *PolicyHandler) UpdateFeeRateHandler(c *gin.Context) {
	businessID := c.Param("id")

	var req feeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	actor := policy.Actor{ID: req.ActorID, Email: req.ActorEmail}
	result, err := h.Policy.UpdateFeeRate(c.Request.Context(), actor, businessID, *req.FeeRate, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// MonthlyEarningsHandler reports a business's reconciled earnings for one
// calendar month. A malformed month yields a zeroed report, not an error.
func (h *PolicyHandler) MonthlyEarningsHandler(c *gin.Context) {
	businessID := c.Param("id")
	month := c.Query("month")

	report, err := h.Policy.MonthlyEarnings(c.Request.Context(), businessID, month)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// DashboardMetricsHandler returns the business dashboard aggregation.
func (h *PolicyHandler) DashboardMetricsHandler(c *gin.Context) {
	businessID := c.Param("id")

	metrics, err := h.Policy.DashboardMetrics(c.Request.Context(), businessID, time.Now().UTC())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}
