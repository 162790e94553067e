package tax

import (
	"fmt"

	"github.com/username/drivefinance/backend/src/models"
)

// AdviceInput carries the figures the advisory rules are evaluated against.
type AdviceInput struct {
	Regime           Regime
	AnnualProjection models.Money
	Deductible       models.Money
	TotalExpenses    models.Money
	NetIncome        models.Money
}

// Recommendations evaluates the recommendation rules in fixed priority order.
func Recommendations(rules *RuleSet, in AdviceInput) []string {
	recs := []string{}

	if in.Regime == RegimeMEI && in.AnnualProjection > rules.MEIAnnualLimit {
		recs = append(recs, fmt.Sprintf(
			"Your projected annual revenue exceeds the MEI limit (R$ %s). Consider migrating to Simples Nacional.",
			rules.MEIAnnualLimit))
	}

	if in.Deductible < in.TotalExpenses.MulRate(0.5) {
		recs = append(recs,
			"Less than 50% of your expenses are deductible. Consider logging more work-related expenses.")
	}

	recs = append(recs,
		"Keep fuel and maintenance receipts for tax deduction.",
		"Use a separate bank account to simplify your bookkeeping.")

	if in.AnnualProjection > rules.AccountantIncomeThreshold {
		recs = append(recs,
			"At your income level it is worth consulting an accountant to optimize taxes.")
	}

	return recs
}

// Alerts evaluates the alert rules in fixed priority order. The severe MEI
// alert fires at the derived 120%-of-ceiling disqualification threshold.
func Alerts(rules *RuleSet, in AdviceInput) []string {
	alerts := []string{}

	if in.Regime == RegimeMEI {
		if in.AnnualProjection > rules.MEISevereLimit() {
			alerts = append(alerts,
				"URGENT: you are more than 20% over the MEI limit. Automatic disqualification will apply!")
		} else if in.AnnualProjection > rules.MEIAnnualLimit {
			alerts = append(alerts,
				"Projection above the MEI limit. Regularize your situation before the end of the year.")
		}

		if in.NetIncome.DivBy(12) > rules.MEIMonthlyLimit() {
			alerts = append(alerts,
				"Your monthly average is above the amount allowed for MEI.")
		}
	}

	// The income tax return obligation applies regardless of regime.
	if in.AnnualProjection > rules.IRPFFilingThreshold {
		alerts = append(alerts,
			"With your annual income you are required to file an income tax return.")
	}

	return alerts
}
