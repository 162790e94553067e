package tax

import (
	"errors"
	"fmt"

	"github.com/username/drivefinance/backend/src/models"
)

// Regime selects the tax calculation rules applied to a driver's income.
type Regime string

const (
	// RegimeMEI is the microenterprise flat-fee regime (fixed monthly DAS).
	RegimeMEI Regime = "mei"
	// RegimeSimples is the Simples Nacional revenue-banded flat-rate regime.
	RegimeSimples Regime = "simples"
	// RegimeAutonomo is the self-employed regime (INSS contribution plus
	// progressive IRPF).
	RegimeAutonomo Regime = "autonomo"
)

// ErrUnknownRegime marks a regime value outside the supported set. Unknown
// regimes are rejected up front rather than silently treated as autônomo.
var ErrUnknownRegime = errors.New("unknown tax regime")

// ParseRegime validates a regime string from a request.
func ParseRegime(s string) (Regime, error) {
	switch Regime(s) {
	case RegimeMEI, RegimeSimples, RegimeAutonomo:
		return Regime(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRegime, s)
	}
}

// Calculate computes the regime-specific annual tax liability from gross and
// net (gross minus deductible expenses) income. Net income is treated as the
// annualized revenue figure for band selection.
func Calculate(rules *RuleSet, regime Regime, gross, net models.Money) (models.TaxEstimate, error) {
	switch regime {
	case RegimeMEI:
		// MEI pays the fixed monthly DAS only, regardless of income.
		return models.TaxEstimate{
			DAS:   rules.MEIMonthlyDAS,
			Total: rules.MEIMonthlyDAS,
		}, nil

	case RegimeSimples:
		// INSS and IRPF are bundled into the single Simples rate.
		rate := simplesRate(rules, net)
		total := net.MulRate(rate)
		return models.TaxEstimate{Total: total}, nil

	case RegimeAutonomo:
		monthlyNet := net.DivBy(12)

		contributionBase := monthlyNet
		if contributionBase > rules.INSSCeiling {
			contributionBase = rules.INSSCeiling
		}
		if contributionBase < rules.MinimumWage {
			contributionBase = rules.MinimumWage
		}
		monthlyINSS := contributionBase.MulRate(rules.INSSRate)
		annualINSS := monthlyINSS * 12

		irpfBase := monthlyNet - monthlyINSS
		monthlyIRPF := irpfForBase(rules, irpfBase)
		annualIRPF := monthlyIRPF * 12

		return models.TaxEstimate{
			INSS:  annualINSS,
			IRPF:  annualIRPF,
			Total: annualINSS + annualIRPF,
		}, nil

	default:
		return models.TaxEstimate{}, fmt.Errorf("%w: %q", ErrUnknownRegime, regime)
	}
}

// simplesRate selects the flat rate for the annual revenue. Bands are
// evaluated ascending, first band whose ceiling covers the revenue wins; the
// final band is open-ended.
func simplesRate(rules *RuleSet, annualRevenue models.Money) float64 {
	for _, band := range rules.SimplesBands {
		if band.Ceiling == 0 || annualRevenue <= band.Ceiling {
			return band.Rate
		}
	}
	// Unreachable for a validated rule set.
	return rules.SimplesBands[len(rules.SimplesBands)-1].Rate
}

// irpfForBase applies the monthly progressive schedule to the given base,
// clamping at zero so the bracket deduction never produces a negative tax.
func irpfForBase(rules *RuleSet, base models.Money) models.Money {
	for _, bracket := range rules.IRPFBrackets {
		if bracket.Limit == 0 || base <= bracket.Limit {
			irpf := base.MulRate(bracket.Rate) - bracket.Deduction
			if irpf < 0 {
				return 0
			}
			return irpf
		}
	}
	return 0
}
