package policy

import (
	"context"
	"testing"
	"time"

	"kymaclub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentChange(t *testing.T) {
	tests := []struct {
		name     string
		previous float64
		current  float64
		want     float64
	}{
		{name: "zero to zero", previous: 0, current: 0, want: 0},
		{name: "zero to positive is full increase", previous: 0, current: 5, want: 100},
		{name: "doubling", previous: 10, current: 20, want: 100},
		{name: "halving", previous: 20, current: 10, want: -50},
		{name: "one decimal rounding", previous: 3, current: 4, want: 33.3},
		{name: "no change", previous: 7, current: 7, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentChange(tt.previous, tt.current))
		})
	}
}

func TestDashboardMetrics(t *testing.T) {
	svc, _, _, bookings := newTestPolicyService(0.20)
	now := time.Date(2026, time.March, 15, 14, 0, 0, 0, time.UTC)
	today := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	lastMonth := time.Date(2026, time.February, 10, 10, 0, 0, 0, time.UTC)

	bookings.bookings = []models.Booking{
		// Two check-ins today, one yesterday.
		{ID: "bk-1", BusinessID: "biz-1", Status: models.BookingCompleted, FinalPrice: 1000,
			PlatformFeeRate: feeRate(0.20), CreatedAt: today, CheckedInAt: &today},
		{ID: "bk-2", BusinessID: "biz-1", Status: models.BookingCompleted, FinalPrice: 1000,
			PlatformFeeRate: feeRate(0.20), CreatedAt: today, CheckedInAt: &today},
		{ID: "bk-3", BusinessID: "biz-1", Status: models.BookingNoShow, FinalPrice: 1000,
			PlatformFeeRate: feeRate(0.20), CreatedAt: yesterday, CheckedInAt: &yesterday},
		// Last month: one completed visit.
		{ID: "bk-4", BusinessID: "biz-1", Status: models.BookingCompleted, FinalPrice: 2000,
			PlatformFeeRate: feeRate(0.20), CreatedAt: lastMonth},
	}

	metrics, err := svc.DashboardMetrics(context.Background(), "biz-1", now)
	require.NoError(t, err)

	assert.Equal(t, int64(2), metrics.CheckInsToday)
	assert.Equal(t, 2, metrics.MonthlyVisits)
	assert.Equal(t, int64(3000), metrics.MonthlyRevenueCents)
	// Two completed of three terminal bookings this month.
	assert.InDelta(t, 66.7, metrics.AttendanceRate, 0.01)

	assert.Equal(t, 100.0, metrics.CheckInsChange)
	assert.Equal(t, 100.0, metrics.VisitsChange)
	assert.Equal(t, 50.0, metrics.RevenueChange)
	// Last month had one completed, zero no-shows: 100% attendance.
	assert.InDelta(t, -33.3, metrics.AttendanceChange, 0.01)
}
