package policy

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"kymaclub/models"
	"kymaclub/utils"

	"go.uber.org/zap"
)

// DashboardMetrics summarizes a business's activity with period-over-period
// changes, for the business-facing dashboard.
type DashboardMetrics struct {
	CheckInsToday       int64   `json:"check_ins_today"`
	MonthlyVisits       int     `json:"monthly_visits"`
	MonthlyRevenueCents int64   `json:"monthly_revenue_cents"`
	AttendanceRate      float64 `json:"attendance_rate"`

	CheckInsChange   float64 `json:"check_ins_change"`
	VisitsChange     float64 `json:"visits_change"`
	RevenueChange    float64 `json:"revenue_change"`
	AttendanceChange float64 `json:"attendance_change"`
}

// PercentChange computes a relative change in percent, rounded to one
// decimal. Zero baselines are handled explicitly: no movement is 0%, any
// growth from zero reports as a 100% increase.
func PercentChange(previous, current float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return math.Round((current-previous)/previous*1000) / 10
}

// DashboardMetrics derives the dashboard numbers for a business, reusing the
// monthly earnings aggregation. Results are cached briefly in Redis; the
// dashboard tolerates a slightly stale snapshot.
func (s *DefaultPolicyService) DashboardMetrics(ctx context.Context, businessID string, now time.Time) (*DashboardMetrics, error) {
	cacheKey := fmt.Sprintf("%s%s:%s", utils.MetricsCachePrefix, businessID, now.Format("2006-01-02"))
	if s.Cache != nil {
		if data, err := s.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var cached DashboardMetrics
			if err := json.Unmarshal([]byte(data), &cached); err == nil {
				return &cached, nil
			}
		}
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	checkInsToday, err := s.Bookings.CountCheckInsBetween(ctx, businessID, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	checkInsYesterday, err := s.Bookings.CountCheckInsBetween(ctx, businessID, yesterday, today)
	if err != nil {
		return nil, err
	}

	currentMonth := now.Format("2006-01")
	previousMonth := now.AddDate(0, -1, 0).Format("2006-01")

	currentVisits, currentAttendance, err := s.monthActivity(ctx, businessID, currentMonth)
	if err != nil {
		return nil, err
	}
	previousVisits, previousAttendance, err := s.monthActivity(ctx, businessID, previousMonth)
	if err != nil {
		return nil, err
	}

	currentEarnings, err := s.MonthlyEarnings(ctx, businessID, currentMonth)
	if err != nil {
		return nil, err
	}
	previousEarnings, err := s.MonthlyEarnings(ctx, businessID, previousMonth)
	if err != nil {
		return nil, err
	}

	metrics := &DashboardMetrics{
		CheckInsToday:       checkInsToday,
		MonthlyVisits:       currentVisits,
		MonthlyRevenueCents: currentEarnings.TotalGrossEarnings,
		AttendanceRate:      currentAttendance,
		CheckInsChange:      PercentChange(float64(checkInsYesterday), float64(checkInsToday)),
		VisitsChange:        PercentChange(float64(previousVisits), float64(currentVisits)),
		RevenueChange:       PercentChange(float64(previousEarnings.TotalGrossEarnings), float64(currentEarnings.TotalGrossEarnings)),
		AttendanceChange:    PercentChange(previousAttendance, currentAttendance),
	}

	if s.Cache != nil {
		if data, err := json.Marshal(metrics); err == nil {
			if err := s.Cache.Set(ctx, cacheKey, data, utils.MetricsCacheTTL).Err(); err != nil {
				s.Logger.Warn("failed to cache dashboard metrics", zap.Error(err))
			}
		}
	}

	return metrics, nil
}

// monthActivity returns completed-visit count and attendance rate (percent of
// attended among terminal bookings) for one month.
func (s *DefaultPolicyService) monthActivity(ctx context.Context, businessID, month string) (int, float64, error) {
	from, to, ok := parseMonth(month)
	if !ok {
		return 0, 0, nil
	}

	bookings, err := s.Bookings.ListForBusinessCreatedBetween(ctx, businessID, from, to)
	if err != nil {
		return 0, 0, err
	}

	var completed, noShow int
	for _, b := range bookings {
		switch b.Status {
		case models.BookingCompleted:
			completed++
		case models.BookingNoShow:
			noShow++
		}
	}

	terminal := completed + noShow
	if terminal == 0 {
		return completed, 0, nil
	}
	rate := math.Round(float64(completed)/float64(terminal)*1000) / 10
	return completed, rate, nil
}
