package services

import (
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/drivefinance/backend/src/database"
	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/model"
	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/tax"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

// setupTestDB swaps the global database handle for an in-memory one and
// restores it when the test finishes.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// an in-memory sqlite database lives per connection
	db.SetMaxOpenConns(1)
	require.NoError(t, database.CreateTables(db))

	prev := database.DB
	database.DB = db
	t.Cleanup(func() {
		database.DB = prev
		db.Close()
	})
	return db
}

func seedEarning(t *testing.T, db *sql.DB, userID int64, app models.Platform, amount models.Money, date string, trips int64, hours, km float64) {
	t.Helper()
	e := &model.Earning{UserID: userID, App: app, Amount: amount, Date: date}
	if trips > 0 {
		e.TripsCount = &trips
	}
	if hours > 0 {
		e.HoursWorked = &hours
	}
	if km > 0 {
		e.KmTraveled = &km
	}
	require.NoError(t, model.CreateEarning(db, e))
}

func seedExpense(t *testing.T, db *sql.DB, userID int64, category models.ExpenseCategory, amount models.Money, date string) {
	t.Helper()
	require.NoError(t, model.CreateExpense(db, &model.Expense{
		UserID: userID, Category: category, Amount: amount, Date: date,
	}))
}

func januaryPeriod(t *testing.T) tax.Period {
	t.Helper()
	p, err := tax.ResolvePeriod("", "2024-01-01", "2024-01-31", time.Now())
	require.NoError(t, err)
	return p
}

func TestAggregate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLedgerService(nil)
	period := januaryPeriod(t)

	t.Run("empty ledger yields zero totals", func(t *testing.T) {
		totals, err := svc.Aggregate(1, period)
		require.NoError(t, err)
		assert.Equal(t, models.Money(0), totals.GrossIncome)
		assert.Equal(t, models.Money(0), totals.NetIncome)
		assert.Empty(t, totals.ByPlatform)
		assert.Empty(t, totals.ByCategory)
	})

	seedEarning(t, db, 1, models.PlatformUber, 50000, "2024-01-10", 20, 10, 150)
	seedEarning(t, db, 1, models.PlatformUber, 25000, "2024-01-12", 10, 5, 80)
	seedEarning(t, db, 1, models.PlatformIfood, 30000, "2024-01-15", 15, 6, 70)
	seedExpense(t, db, 1, models.CategoryFuel, 20000, "2024-01-11")
	seedExpense(t, db, 1, models.CategoryMaintenance, 10000, "2024-01-13")
	seedExpense(t, db, 1, models.CategoryFood, 5000, "2024-01-14")

	t.Run("groups by platform and category", func(t *testing.T) {
		totals, err := svc.Aggregate(1, period)
		require.NoError(t, err)

		assert.Equal(t, models.Money(105000), totals.GrossIncome)
		assert.Equal(t, models.Money(75000), totals.ByPlatform[models.PlatformUber])
		assert.Equal(t, models.Money(30000), totals.ByPlatform[models.PlatformIfood])

		assert.Equal(t, models.Money(35000), totals.TotalExpenses)
		assert.Equal(t, models.Money(20000), totals.ByCategory[models.CategoryFuel])
		assert.Equal(t, models.Money(10000), totals.ByCategory[models.CategoryMaintenance])
		assert.Equal(t, models.Money(5000), totals.ByCategory[models.CategoryFood])

		// food is not deductible, so net income only subtracts fuel + maintenance
		assert.Equal(t, models.Money(30000), totals.DeductibleExpenses)
		assert.Equal(t, models.Money(75000), totals.NetIncome)

		assert.Equal(t, int64(45), totals.Trips)
		assert.InDelta(t, 21.0, totals.Hours, 0.001)
		assert.InDelta(t, 300.0, totals.DistanceKm, 0.001)
	})

	t.Run("excludes rows outside the period", func(t *testing.T) {
		seedEarning(t, db, 1, models.PlatformUber, 99900, "2024-02-01", 0, 0, 0)
		seedExpense(t, db, 1, models.CategoryFuel, 99900, "2023-12-31")

		totals, err := svc.Aggregate(1, period)
		require.NoError(t, err)
		assert.Equal(t, models.Money(105000), totals.GrossIncome)
		assert.Equal(t, models.Money(35000), totals.TotalExpenses)
	})

	t.Run("isolates users", func(t *testing.T) {
		seedEarning(t, db, 2, models.PlatformRappi, 77700, "2024-01-20", 0, 0, 0)

		totals, err := svc.Aggregate(1, period)
		require.NoError(t, err)
		assert.NotContains(t, totals.ByPlatform, models.PlatformRappi)

		other, err := svc.Aggregate(2, period)
		require.NoError(t, err)
		assert.Equal(t, models.Money(77700), other.GrossIncome)
	})

	t.Run("identical bounds produce identical totals", func(t *testing.T) {
		first, err := svc.Aggregate(1, period)
		require.NoError(t, err)
		second, err := svc.Aggregate(1, period)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestAggregateCache(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLedgerService(cache.New(DefaultCacheExpiration, CacheCleanupInterval))
	period := januaryPeriod(t)

	seedEarning(t, db, 1, models.PlatformUber, 10000, "2024-01-05", 0, 0, 0)

	first, err := svc.Aggregate(1, period)
	require.NoError(t, err)
	assert.Equal(t, models.Money(10000), first.GrossIncome)

	// a write the service does not know about is invisible until invalidation
	seedEarning(t, db, 1, models.PlatformUber, 5000, "2024-01-06", 0, 0, 0)

	cached, err := svc.Aggregate(1, period)
	require.NoError(t, err)
	assert.Same(t, first, cached)
	assert.Equal(t, models.Money(10000), cached.GrossIncome)

	svc.InvalidateUserCache(1)

	fresh, err := svc.Aggregate(1, period)
	require.NoError(t, err)
	assert.Equal(t, models.Money(15000), fresh.GrossIncome)
}

func TestInvalidateUserCacheScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLedgerService(cache.New(DefaultCacheExpiration, CacheCleanupInterval))
	period := januaryPeriod(t)

	seedEarning(t, db, 1, models.PlatformUber, 10000, "2024-01-05", 0, 0, 0)
	seedEarning(t, db, 2, models.PlatformIfood, 20000, "2024-01-05", 0, 0, 0)

	userOne, err := svc.Aggregate(1, period)
	require.NoError(t, err)
	userTwo, err := svc.Aggregate(2, period)
	require.NoError(t, err)

	svc.InvalidateUserCache(1)

	refetchedOne, err := svc.Aggregate(1, period)
	require.NoError(t, err)
	assert.NotSame(t, userOne, refetchedOne)

	refetchedTwo, err := svc.Aggregate(2, period)
	require.NoError(t, err)
	assert.Same(t, userTwo, refetchedTwo)
}

func TestSummary(t *testing.T) {
	db := setupTestDB(t)
	svc := NewLedgerService(nil)
	period := januaryPeriod(t)

	t.Run("shapes totals, groupings and averages", func(t *testing.T) {
		seedEarning(t, db, 1, models.PlatformUber, 50000, "2024-01-10", 20, 10, 100)
		seedEarning(t, db, 1, models.PlatformIfood, 30000, "2024-01-15", 10, 6, 60)
		seedExpense(t, db, 1, models.CategoryFuel, 20000, "2024-01-11")

		report, err := svc.Summary(1, period)
		require.NoError(t, err)

		assert.Equal(t, "2024-01-01", report.Period.StartDate)
		assert.Equal(t, "2024-01-31", report.Period.EndDate)

		assert.Equal(t, models.Money(80000), report.Totals.Earnings)
		assert.Equal(t, models.Money(20000), report.Totals.Expenses)
		assert.Equal(t, models.Money(60000), report.Totals.Profit)
		assert.InDelta(t, 75.0, report.Totals.ProfitMargin, 0.001)
		assert.Equal(t, int64(30), report.Totals.Trips)
		assert.InDelta(t, 16.0, report.Totals.Hours, 0.001)
		assert.InDelta(t, 160.0, report.Totals.Km, 0.001)

		assert.Equal(t, models.Money(50000), report.EarningsByApp[models.PlatformUber])
		assert.Equal(t, models.Money(30000), report.EarningsByApp[models.PlatformIfood])
		assert.Equal(t, models.Money(20000), report.ExpensesByCategory[models.CategoryFuel])

		// 800.00 over 30 trips, 16 hours, 160 km
		assert.Equal(t, models.Money(2667), report.Averages.PerTrip)
		assert.Equal(t, models.Money(5000), report.Averages.PerHour)
		assert.Equal(t, models.Money(500), report.Averages.PerKm)
	})

	t.Run("zero activity yields zero margin and averages", func(t *testing.T) {
		report, err := svc.Summary(7, period)
		require.NoError(t, err)
		assert.Equal(t, models.Money(0), report.Totals.Earnings)
		assert.Zero(t, report.Totals.ProfitMargin)
		assert.Equal(t, models.Money(0), report.Averages.PerTrip)
		assert.Equal(t, models.Money(0), report.Averages.PerHour)
		assert.Equal(t, models.Money(0), report.Averages.PerKm)
	})
}
