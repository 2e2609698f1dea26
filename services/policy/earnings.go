package policy

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"
)

// MonthlyEarningsReport aggregates a business's reconciled revenue for one
// calendar month. Amounts are in cents.
type MonthlyEarningsReport struct {
	Month              string `json:"month"`
	TotalGrossEarnings int64  `json:"total_gross_earnings"`
	TotalNetEarnings   int64  `json:"total_net_earnings"`
	TotalSystemCut     int64  `json:"total_system_cut"`
	TotalBookings      int    `json:"total_bookings"`
}

// parseMonth parses a "YYYY-MM" token into the half-open interval covering
// that month. ok is false on malformed tokens or out-of-range months.
func parseMonth(month string) (from, to time.Time, ok bool) {
	parts := strings.Split(month, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return time.Time{}, time.Time{}, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return time.Time{}, time.Time{}, false
	}
	from = time.Date(year, time.Month(m), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), true
}

// MonthlyEarnings aggregates reconciled bookings created within the given
// month. A malformed month token degrades to an all-zero report rather than
// failing the caller's dashboard.
func (s *DefaultPolicyService) MonthlyEarnings(ctx context.Context, businessID, month string) (*MonthlyEarningsReport, error) {
	report := &MonthlyEarningsReport{Month: month}

	from, to, ok := parseMonth(month)
	if !ok {
		return report, nil
	}

	bookings, err := s.Bookings.ListForBusinessCreatedBetween(ctx, businessID, from, to)
	if err != nil {
		return nil, err
	}

	for _, b := range bookings {
		if !b.IsReconciled() {
			continue
		}
		net := b.NetRevenue()

		// The booking's snapshotted rate keeps historical months stable under
		// later fee changes; bookings predating snapshots use the legacy rate.
		feeRate := s.LegacyFeeRate
		if b.PlatformFeeRate != nil {
			feeRate = *b.PlatformFeeRate
		}

		report.TotalGrossEarnings += net
		report.TotalNetEarnings += int64(math.Round(float64(net) * (1 - feeRate)))
		report.TotalSystemCut += int64(math.Round(float64(net) * feeRate))
		report.TotalBookings++
	}

	return report, nil
}
