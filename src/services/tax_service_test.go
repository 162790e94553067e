package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/tax"
)

func TestCalculateReport(t *testing.T) {
	db := setupTestDB(t)
	svc := NewTaxService(tax.DefaultRuleSet(), NewLedgerService(nil))

	seedEarning(t, db, 1, models.PlatformUber, 50000, "2024-01-10", 0, 0, 0)
	seedExpense(t, db, 1, models.CategoryFuel, 10000, "2024-01-11")
	seedExpense(t, db, 1, models.CategoryFood, 5000, "2024-01-12")

	t.Run("mei report over an explicit period", func(t *testing.T) {
		report, err := svc.CalculateReport(1, "mei", "2024-01-01", "2024-01-31")
		require.NoError(t, err)

		assert.Equal(t, "mei", report.Regime)
		assert.Equal(t, models.Money(50000), report.GrossIncome)
		assert.Equal(t, models.Money(10000), report.DeductibleExpenses)
		assert.Equal(t, models.Money(40000), report.NetIncome)

		// MEI pays the flat monthly DAS regardless of income
		assert.Equal(t, models.Money(7590), report.Taxes.DAS)
		assert.Equal(t, models.Money(0), report.Taxes.INSS)
		assert.Equal(t, models.Money(0), report.Taxes.IRPF)
		assert.Equal(t, models.Money(7590), report.Taxes.Total)

		// 30 elapsed days project to one month as-is
		assert.Equal(t, models.Money(50000), report.MonthlyProjection)
		assert.Equal(t, models.Money(600000), report.AnnualProjection)

		assert.NotEmpty(t, report.Recommendations)
		assert.Empty(t, report.Alerts)
	})

	t.Run("autonomo taxes come from net income", func(t *testing.T) {
		report, err := svc.CalculateReport(1, "autonomo", "2024-01-01", "2024-01-31")
		require.NoError(t, err)
		assert.Equal(t, "autonomo", report.Regime)
		assert.Equal(t, models.Money(0), report.Taxes.DAS)
		assert.Greater(t, report.Taxes.INSS, models.Money(0))
		assert.Equal(t, report.Taxes.INSS+report.Taxes.IRPF, report.Taxes.Total)
	})

	t.Run("unknown regime is a validation error", func(t *testing.T) {
		_, err := svc.CalculateReport(1, "lucro_real", "2024-01-01", "2024-01-31")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("inverted period is a validation error", func(t *testing.T) {
		_, err := svc.CalculateReport(1, "mei", "2024-02-01", "2024-01-01")
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("empty ledger still produces a report", func(t *testing.T) {
		report, err := svc.CalculateReport(99, "mei", "2024-01-01", "2024-01-31")
		require.NoError(t, err)
		assert.Equal(t, models.Money(0), report.GrossIncome)
		assert.Equal(t, models.Money(7590), report.Taxes.Total)
	})
}
