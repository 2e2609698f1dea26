package policy

import (
	"context"
	"testing"
	"time"

	"kymaclub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feeRate(r float64) *float64 { return &r }

func TestMonthlyEarnings(t *testing.T) {
	svc, _, _, bookings := newTestPolicyService(0.20)
	ctx := context.Background()
	created := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	bookings.bookings = []models.Booking{
		{
			ID: "bk-1", BusinessID: "biz-1", Status: models.BookingCompleted,
			FinalPrice: 2000, PlatformFeeRate: feeRate(0.20), CreatedAt: created,
		},
	}

	report, err := svc.MonthlyEarnings(ctx, "biz-1", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, int64(2000), report.TotalGrossEarnings)
	assert.Equal(t, int64(1600), report.TotalNetEarnings)
	assert.Equal(t, int64(400), report.TotalSystemCut)
	assert.Equal(t, 1, report.TotalBookings)
}

func TestMonthlyEarningsStatusFilter(t *testing.T) {
	svc, _, _, bookings := newTestPolicyService(0.20)
	created := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)

	bookings.bookings = []models.Booking{
		// Counted: terminal states.
		{ID: "bk-1", BusinessID: "biz-1", Status: models.BookingCompleted, FinalPrice: 1000, PlatformFeeRate: feeRate(0.20), CreatedAt: created},
		{ID: "bk-2", BusinessID: "biz-1", Status: models.BookingNoShow, FinalPrice: 1000, PlatformFeeRate: feeRate(0.20), CreatedAt: created},
		// Counted: cancelled but retained net revenue.
		{ID: "bk-3", BusinessID: "biz-1", Status: models.BookingCancelled, FinalPrice: 1000, RefundAmount: 500, PlatformFeeRate: feeRate(0.20), CreatedAt: created},
		// Not counted: fully refunded cancellation, pending, deleted, other month.
		{ID: "bk-4", BusinessID: "biz-1", Status: models.BookingCancelled, FinalPrice: 1000, RefundAmount: 1000, PlatformFeeRate: feeRate(0.20), CreatedAt: created},
		{ID: "bk-5", BusinessID: "biz-1", Status: models.BookingPending, FinalPrice: 1000, PlatformFeeRate: feeRate(0.20), CreatedAt: created},
		{ID: "bk-6", BusinessID: "biz-1", Status: models.BookingCompleted, FinalPrice: 1000, PlatformFeeRate: feeRate(0.20), CreatedAt: created, Deleted: true},
		{ID: "bk-7", BusinessID: "biz-1", Status: models.BookingCompleted, FinalPrice: 1000, PlatformFeeRate: feeRate(0.20), CreatedAt: created.AddDate(0, 1, 0)},
	}

	report, err := svc.MonthlyEarnings(context.Background(), "biz-1", "2026-03")
	require.NoError(t, err)
	assert.Equal(t, 3, report.TotalBookings)
	assert.Equal(t, int64(2500), report.TotalGrossEarnings)
	assert.Equal(t, int64(2000), report.TotalNetEarnings)
	assert.Equal(t, int64(500), report.TotalSystemCut)
}

func TestMonthlyEarningsLegacyFeeRate(t *testing.T) {
	svc, _, _, bookings := newTestPolicyService(0.20)
	created := time.Date(2026, time.January, 2, 0, 0, 0, 0, time.UTC)

	// Booking predates fee-rate snapshots; the legacy 20% applies.
	bookings.bookings = []models.Booking{
		{ID: "bk-old", BusinessID: "biz-1", Status: models.BookingCompleted, FinalPrice: 1000, CreatedAt: created},
	}

	report, err := svc.MonthlyEarnings(context.Background(), "biz-1", "2026-01")
	require.NoError(t, err)
	assert.Equal(t, int64(800), report.TotalNetEarnings)
	assert.Equal(t, int64(200), report.TotalSystemCut)
}

func TestMonthlyEarningsMalformedPeriod(t *testing.T) {
	svc, _, _, bookings := newTestPolicyService(0.20)
	bookings.bookings = []models.Booking{
		{ID: "bk-1", BusinessID: "biz-1", Status: models.BookingCompleted, FinalPrice: 2000,
			PlatformFeeRate: feeRate(0.20), CreatedAt: time.Now()},
	}

	// Malformed tokens degrade to zeroed reports, never errors.
	for _, month := range []string{"garbage", "2026-13", "2026-00", "2026/03", "26-03", "2026-3", ""} {
		report, err := svc.MonthlyEarnings(context.Background(), "biz-1", month)
		require.NoError(t, err, "month %q", month)
		assert.Zero(t, report.TotalGrossEarnings, "month %q", month)
		assert.Zero(t, report.TotalBookings, "month %q", month)
	}
}
