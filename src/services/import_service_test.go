package services

import (
	"strings"
	"testing"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/tax"
)

const sampleStatement = `date,app,amount,trips_count,hours_worked
2024-03-01,uber,150.00,12,8
2024-03-02,uber,120.50,9,6.5
2024-03-03,ifood,80.00,7,4
`

func TestImportEarnings(t *testing.T) {
	db := setupTestDB(t)
	ledger := NewLedgerService(nil)
	svc := NewImportService(ledger)

	t.Run("imports every row of a clean statement", func(t *testing.T) {
		result, err := svc.ImportEarnings(strings.NewReader(sampleStatement), 1, "generic")
		require.NoError(t, err)
		assert.Equal(t, 3, result.Imported)
		assert.Equal(t, 0, result.Skipped)

		var count int64
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM earnings WHERE user_id = 1`).Scan(&count))
		assert.Equal(t, int64(3), count)
	})

	t.Run("re-importing the same statement skips all rows", func(t *testing.T) {
		result, err := svc.ImportEarnings(strings.NewReader(sampleStatement), 1, "generic")
		require.NoError(t, err)
		assert.Equal(t, 0, result.Imported)
		assert.Equal(t, 3, result.Skipped)

		var count int64
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM earnings WHERE user_id = 1`).Scan(&count))
		assert.Equal(t, int64(3), count)
	})

	t.Run("the same statement imports fully for another user", func(t *testing.T) {
		result, err := svc.ImportEarnings(strings.NewReader(sampleStatement), 2, "generic")
		require.NoError(t, err)
		assert.Equal(t, 3, result.Imported)
		assert.Equal(t, 0, result.Skipped)
	})

	t.Run("unknown source is a validation error", func(t *testing.T) {
		_, err := svc.ImportEarnings(strings.NewReader(sampleStatement), 1, "cabify")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("statement without usable rows is a parsing error", func(t *testing.T) {
		empty := "date,app,amount\n"
		_, err := svc.ImportEarnings(strings.NewReader(empty), 1, "generic")
		assert.ErrorIs(t, err, ErrParsingFailed)
	})

	t.Run("file without a header is a parsing error", func(t *testing.T) {
		_, err := svc.ImportEarnings(strings.NewReader(""), 1, "generic")
		assert.ErrorIs(t, err, ErrParsingFailed)
	})
}

func TestImportEarningsInvalidatesCache(t *testing.T) {
	setupTestDB(t)
	ledger := NewLedgerService(cache.New(DefaultCacheExpiration, CacheCleanupInterval))
	svc := NewImportService(ledger)

	period, err := tax.ResolvePeriod("", "2024-03-01", "2024-03-31", time.Now())
	require.NoError(t, err)

	before, err := ledger.Aggregate(1, period)
	require.NoError(t, err)
	assert.Equal(t, models.Money(0), before.GrossIncome)

	_, err = svc.ImportEarnings(strings.NewReader(sampleStatement), 1, "generic")
	require.NoError(t, err)

	after, err := ledger.Aggregate(1, period)
	require.NoError(t, err)
	assert.Equal(t, models.Money(35050), after.GrossIncome)
}
