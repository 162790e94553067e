// backend/src/services/ledger_service.go
package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/drivefinance/backend/src/database"
	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/model"
	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/tax"
	"github.com/username/drivefinance/backend/src/utils"
)

const (
	ckAggregateTotals = "agg_totals_user_%d_%s_%s"
	ckUserPeriods     = "agg_periods_user_%d"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

type ledgerServiceImpl struct {
	reportCache *cache.Cache
}

func NewLedgerService(reportCache *cache.Cache) LedgerService {
	return &ledgerServiceImpl{reportCache: reportCache}
}

// Aggregate fetches every earning and expense inside the period and reduces
// them into grouped totals. The reduction either fully succeeds or fully
// fails; there are no partial results.
func (s *ledgerServiceImpl) Aggregate(userID int64, period tax.Period) (*models.AggregateTotals, error) {
	cacheKey := fmt.Sprintf(ckAggregateTotals, userID, period.StartDate(), period.EndDate())
	if s.reportCache != nil {
		if cached, found := s.reportCache.Get(cacheKey); found {
			if totals, ok := cached.(*models.AggregateTotals); ok {
				logger.L.Debug("Aggregate cache hit", "userID", userID, "key", cacheKey)
				return totals, nil
			}
		}
	}

	filter := model.EarningFilter{StartDate: period.StartDate(), EndDate: period.EndDate()}
	earnings, err := model.ListEarnings(database.DB, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching earnings for aggregation: %w", err)
	}
	expenses, err := model.ListExpenses(database.DB, userID, model.ExpenseFilter{
		StartDate: period.StartDate(), EndDate: period.EndDate(),
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching expenses for aggregation: %w", err)
	}

	totals := &models.AggregateTotals{
		ByPlatform: make(map[models.Platform]models.Money),
		ByCategory: make(map[models.ExpenseCategory]models.Money),
	}

	for _, e := range earnings {
		totals.GrossIncome += e.Amount
		totals.ByPlatform[e.App] += e.Amount
		if e.TripsCount != nil {
			totals.Trips += *e.TripsCount
		}
		if e.HoursWorked != nil {
			totals.Hours += *e.HoursWorked
		}
		if e.KmTraveled != nil {
			totals.DistanceKm += *e.KmTraveled
		}
	}

	for _, e := range expenses {
		totals.TotalExpenses += e.Amount
		totals.ByCategory[e.Category] += e.Amount
		if models.DeductibleCategories[e.Category] {
			totals.DeductibleExpenses += e.Amount
		}
	}

	totals.NetIncome = totals.GrossIncome - totals.DeductibleExpenses

	if s.reportCache != nil {
		s.reportCache.Set(cacheKey, totals, cache.DefaultExpiration)
		s.rememberKey(userID, cacheKey)
	}
	return totals, nil
}

// Summary shapes the period aggregates into the financial summary payload.
func (s *ledgerServiceImpl) Summary(userID int64, period tax.Period) (*models.SummaryReport, error) {
	totals, err := s.Aggregate(userID, period)
	if err != nil {
		return nil, err
	}

	profit := totals.GrossIncome - totals.TotalExpenses
	var margin float64
	if totals.GrossIncome > 0 {
		margin = utils.RoundFloat(profit.Float64()/totals.GrossIncome.Float64()*100, 2)
	}

	averages := models.SummaryAverages{}
	if totals.Trips > 0 {
		averages.PerTrip = totals.GrossIncome.DivBy(float64(totals.Trips))
	}
	if totals.Hours > 0 {
		averages.PerHour = totals.GrossIncome.DivBy(totals.Hours)
	}
	if totals.DistanceKm > 0 {
		averages.PerKm = totals.GrossIncome.DivBy(totals.DistanceKm)
	}

	return &models.SummaryReport{
		Period: models.PeriodRange{StartDate: period.StartDate(), EndDate: period.EndDate()},
		Totals: models.SummaryTotals{
			Earnings:     totals.GrossIncome,
			Expenses:     totals.TotalExpenses,
			Profit:       profit,
			ProfitMargin: margin,
			Trips:        totals.Trips,
			Hours:        utils.RoundFloat(totals.Hours, 1),
			Km:           utils.RoundFloat(totals.DistanceKm, 1),
		},
		EarningsByApp:      totals.ByPlatform,
		ExpensesByCategory: totals.ByCategory,
		Averages:           averages,
	}, nil
}

// rememberKey tracks which aggregate keys exist for a user so invalidation
// can drop them without scanning the whole cache.
func (s *ledgerServiceImpl) rememberKey(userID int64, key string) {
	indexKey := fmt.Sprintf(ckUserPeriods, userID)
	var keys []string
	if cached, found := s.reportCache.Get(indexKey); found {
		if existing, ok := cached.([]string); ok {
			keys = existing
		}
	}
	for _, k := range keys {
		if k == key {
			return
		}
	}
	keys = append(keys, key)
	s.reportCache.Set(indexKey, keys, cache.NoExpiration)
}

// InvalidateUserCache clears all cached aggregates for a user, forcing a full
// recalculation on the next request. Called after every ledger write.
func (s *ledgerServiceImpl) InvalidateUserCache(userID int64) {
	if s.reportCache == nil {
		return
	}
	indexKey := fmt.Sprintf(ckUserPeriods, userID)
	if cached, found := s.reportCache.Get(indexKey); found {
		if keys, ok := cached.([]string); ok {
			for _, k := range keys {
				s.reportCache.Delete(k)
			}
		}
	}
	s.reportCache.Delete(indexKey)
	logger.L.Debug("Invalidated ledger cache", "userID", userID)
}
