package services

import (
	"fmt"
	"time"

	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/tax"
)

type taxServiceImpl struct {
	rules  *tax.RuleSet
	ledger LedgerService
	now    func() time.Time
}

func NewTaxService(rules *tax.RuleSet, ledger LedgerService) TaxService {
	return &taxServiceImpl{
		rules:  rules,
		ledger: ledger,
		now:    time.Now,
	}
}

// CalculateReport runs the full pipeline: resolve the period, aggregate the
// ledger, compute the regime taxes, project the income and evaluate the
// advisory rules. Reports are always computed fresh from the current ledger
// snapshot.
func (s *taxServiceImpl) CalculateReport(userID int64, regimeStr, startDate, endDate string) (*models.TaxReport, error) {
	regime, err := tax.ParseRegime(regimeStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	// Missing bounds default to year-to-date.
	period, err := tax.ResolvePeriod("year", startDate, endDate, s.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	totals, err := s.ledger.Aggregate(userID, period)
	if err != nil {
		return nil, err
	}

	estimate, err := tax.Calculate(s.rules, regime, totals.GrossIncome, totals.NetIncome)
	if err != nil {
		// Regime was validated above, so this is unreachable in practice.
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	projection := tax.Project(totals.GrossIncome, period)

	advice := tax.AdviceInput{
		Regime:           regime,
		AnnualProjection: projection.Annual,
		Deductible:       totals.DeductibleExpenses,
		TotalExpenses:    totals.TotalExpenses,
		NetIncome:        totals.NetIncome,
	}

	report := &models.TaxReport{
		Regime:             string(regime),
		GrossIncome:        totals.GrossIncome,
		DeductibleExpenses: totals.DeductibleExpenses,
		NetIncome:          totals.NetIncome,
		Taxes:              estimate,
		MonthlyProjection:  projection.Monthly,
		AnnualProjection:   projection.Annual,
		Recommendations:    tax.Recommendations(s.rules, advice),
		Alerts:             tax.Alerts(s.rules, advice),
	}

	logger.L.Info("Tax report calculated",
		"userID", userID,
		"regime", regime,
		"period", period.StartDate()+".."+period.EndDate(),
		"grossIncome", totals.GrossIncome,
		"taxTotal", estimate.Total)

	return report, nil
}
