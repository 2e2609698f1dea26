package policy

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	auditRepo "kymaclub/database/repository/audit"
	bookingRepo "kymaclub/database/repository/booking"
	businessRepo "kymaclub/database/repository/business"
	"kymaclub/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllowedFeeRates is the enumerated set of platform-fee rates a business may
// carry.
var AllowedFeeRates = []float64{0, 0.05, 0.10, 0.15, 0.20, 0.25, 0.30}

// MaxReasonLength bounds the mandatory reason on audited changes.
const MaxReasonLength = 500

// Actor identifies who performs an audited change.
type Actor struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// FeeRateUpdateResult reports the outcome of a fee-rate change.
type FeeRateUpdateResult struct {
	Success      bool    `json:"success"`
	PreviousRate float64 `json:"previous_rate"`
	NewRate      float64 `json:"new_rate"`
	Message      string  `json:"message"`
}

// Service exposes the fee-policy and reporting operations.
type Service interface {
	UpdateFeeRate(ctx context.Context, actor Actor, businessID string, newRate float64, reason string) (*FeeRateUpdateResult, error)
	MonthlyEarnings(ctx context.Context, businessID, month string) (*MonthlyEarningsReport, error)
	DashboardMetrics(ctx context.Context, businessID string, now time.Time) (*DashboardMetrics, error)
}

// DefaultPolicyService is the production implementation.
type DefaultPolicyService struct {
	Businesses businessRepo.BusinessRepository
	Bookings   bookingRepo.BookingRepository
	Audit      auditRepo.AuditRepository
	Cache      *redis.Client // optional; nil disables metrics caching
	Logger     *zap.Logger

	// LegacyFeeRate applies to bookings created before rates were snapshotted.
	LegacyFeeRate float64
}

func isAllowedFeeRate(rate float64) bool {
	for _, allowed := range AllowedFeeRates {
		if rate == allowed {
			return true
		}
	}
	return false
}

// UpdateFeeRate validates and applies an audited fee-rate change. An
// unchanged rate is a successful no-op and writes no audit entry.
func (s *DefaultPolicyService) UpdateFeeRate(ctx context.Context, actor Actor, businessID string, newRate float64, reason string) (*FeeRateUpdateResult, error) {
	if !isAllowedFeeRate(newRate) {
		return nil, &FieldError{
			Code:    "invalidFeeRate",
			Field:   "feeRate",
			Message: fmt.Sprintf("fee rate %v is not in the allowed set", newRate),
			err:     ErrInvalidFeeRate,
		}
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, &FieldError{
			Code:    "invalidReason",
			Field:   "reason",
			Message: "a reason is required for fee rate changes",
			err:     ErrInvalidReason,
		}
	}
	if len(reason) > MaxReasonLength {
		return nil, &FieldError{
			Code:    "invalidReason",
			Field:   "reason",
			Message: fmt.Sprintf("reason exceeds %d characters", MaxReasonLength),
			err:     ErrInvalidReason,
		}
	}

	biz, err := s.Businesses.GetByID(ctx, businessID)
	if err != nil {
		return nil, err
	}

	previous := biz.Fees.BaseFeeRate
	if previous == newRate {
		return &FeeRateUpdateResult{
			Success:      true,
			PreviousRate: previous,
			NewRate:      newRate,
			Message:      "Fee rate unchanged",
		}, nil
	}

	// Audit first, then patch: a crash in between leaves a recorded intent
	// and an unchanged rate, never an unexplained change.
	audit := &models.AuditLogEntry{
		ID:         uuid.New().String(),
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		EntityType: "business",
		EntityID:   biz.ID,
		EntityName: biz.Name,
		Action:     models.AuditFeeRateUpdate,
		Change:     models.FeeRateChange{Before: previous, After: newRate},
		Reason:     reason,
		CreatedAt:  time.Now(),
	}
	if err := s.Audit.Insert(ctx, audit); err != nil {
		return nil, fmt.Errorf("failed to record fee rate audit entry: %w", err)
	}

	fees := models.FeeStructure{
		BaseFeeRate: newRate,
		UpdatedBy:   actor.ID,
		UpdatedAt:   time.Now(),
	}
	if err := s.Businesses.UpdateFeeStructure(ctx, biz.ID, fees); err != nil {
		return nil, err
	}

	s.Logger.Info("business fee rate updated",
		zap.String("businessId", biz.ID),
		zap.Float64("previousRate", previous),
		zap.Float64("newRate", newRate),
		zap.String("actorId", actor.ID))

	return &FeeRateUpdateResult{
		Success:      true,
		PreviousRate: previous,
		NewRate:      newRate,
		Message: fmt.Sprintf("Fee rate updated from %d%% to %d%%",
			int(math.Round(previous*100)), int(math.Round(newRate*100))),
	}, nil
}
