// Package tax implements the tax and financial summary engine: period
// resolution, regime tax calculation, income projection and advisory rules.
// Everything in this package is a pure function over its inputs plus a
// RuleSet snapshot; nothing here touches the database.
package tax

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/username/drivefinance/backend/src/models"
)

// SimplesBand is one revenue band of the Simples Nacional services table.
// A zero Ceiling marks the open-ended top band.
type SimplesBand struct {
	Ceiling models.Money `json:"ceiling"`
	Rate    float64      `json:"rate"`
}

// IRPFBracket is one bracket of the monthly IRPF progressive schedule,
// using the flat-rate-minus-deduction formula. A zero Limit marks the
// open-ended top bracket.
type IRPFBracket struct {
	Limit     models.Money `json:"limit"`
	Rate      float64      `json:"rate"`
	Deduction models.Money `json:"deduction"`
}

// RuleSet is a versioned snapshot of the fiscal constants for one year.
// Tax law changes annually, so the engine always receives a RuleSet rather
// than reading package-level literals.
type RuleSet struct {
	Year int `json:"year"`

	MEIAnnualLimit models.Money `json:"mei_annual_limit"`
	MEIMonthlyDAS  models.Money `json:"mei_monthly_das"`

	MinimumWage models.Money `json:"minimum_wage"`
	INSSCeiling models.Money `json:"inss_ceiling"`
	INSSRate    float64      `json:"inss_rate"`

	SimplesBands []SimplesBand `json:"simples_bands"`
	IRPFBrackets []IRPFBracket `json:"irpf_brackets"`

	IRPFFilingThreshold models.Money `json:"irpf_filing_threshold"`

	// AccountantIncomeThreshold is the projected annual income above which
	// the advisor suggests consulting an accountant.
	AccountantIncomeThreshold models.Money `json:"accountant_income_threshold"`
}

// MEISevereLimit is the auto-disqualification threshold: 20% above the MEI
// annual ceiling. Derived here so it can never drift from the ceiling itself.
func (r *RuleSet) MEISevereLimit() models.Money {
	return r.MEIAnnualLimit.MulRate(1.2)
}

// MEIMonthlyLimit is the per-month share of the MEI annual ceiling.
func (r *RuleSet) MEIMonthlyLimit() models.Money {
	return r.MEIAnnualLimit.DivBy(12)
}

// Validate checks structural invariants of a loaded rule set.
func (r *RuleSet) Validate() error {
	if r.Year == 0 {
		return fmt.Errorf("rule set has no year")
	}
	if r.MEIAnnualLimit <= 0 || r.MEIMonthlyDAS <= 0 {
		return fmt.Errorf("rule set %d: MEI constants must be positive", r.Year)
	}
	if r.MinimumWage <= 0 || r.INSSCeiling < r.MinimumWage {
		return fmt.Errorf("rule set %d: INSS bounds invalid (floor %s, ceiling %s)", r.Year, r.MinimumWage, r.INSSCeiling)
	}
	if r.INSSRate <= 0 || r.INSSRate >= 1 {
		return fmt.Errorf("rule set %d: INSS rate %.4f out of range", r.Year, r.INSSRate)
	}
	if len(r.SimplesBands) == 0 || r.SimplesBands[len(r.SimplesBands)-1].Ceiling != 0 {
		return fmt.Errorf("rule set %d: simples bands must end with an open-ended band", r.Year)
	}
	var prev models.Money
	for i, band := range r.SimplesBands[:len(r.SimplesBands)-1] {
		if band.Ceiling <= prev {
			return fmt.Errorf("rule set %d: simples band %d ceiling not ascending", r.Year, i)
		}
		prev = band.Ceiling
	}
	if len(r.IRPFBrackets) == 0 || r.IRPFBrackets[len(r.IRPFBrackets)-1].Limit != 0 {
		return fmt.Errorf("rule set %d: irpf brackets must end with an open-ended bracket", r.Year)
	}
	prev = 0
	for i, b := range r.IRPFBrackets[:len(r.IRPFBrackets)-1] {
		if b.Limit <= prev {
			return fmt.Errorf("rule set %d: irpf bracket %d limit not ascending", r.Year, i)
		}
		prev = b.Limit
	}
	return nil
}

// DefaultRuleSet returns the embedded 2024 fiscal snapshot, used when no
// rules file is configured or loading fails.
func DefaultRuleSet() *RuleSet {
	return &RuleSet{
		Year: 2024,

		MEIAnnualLimit: 8100000, // R$ 81,000.00
		MEIMonthlyDAS:  7590,    // R$ 75.90, services DAS

		MinimumWage: 141200, // R$ 1,412.00
		INSSCeiling: 778602, // R$ 7,786.02
		INSSRate:    0.11,   // individual contributor

		SimplesBands: []SimplesBand{
			{Ceiling: 18000000, Rate: 0.06},
			{Ceiling: 36000000, Rate: 0.112},
			{Ceiling: 72000000, Rate: 0.135},
			{Ceiling: 180000000, Rate: 0.16},
			{Ceiling: 0, Rate: 0.19},
		},

		IRPFBrackets: []IRPFBracket{
			{Limit: 225920, Rate: 0, Deduction: 0},
			{Limit: 282665, Rate: 0.075, Deduction: 16944},
			{Limit: 375105, Rate: 0.15, Deduction: 38144},
			{Limit: 466468, Rate: 0.225, Deduction: 66277},
			{Limit: 0, Rate: 0.275, Deduction: 89600},
		},

		IRPFFilingThreshold:       2855970,
		AccountantIncomeThreshold: 3000000,
	}
}

// LoadRuleSet reads a rule set from a JSON file, falling back to the embedded
// default when the path is empty. Monetary values in the file are plain
// decimal numbers (e.g. 75.90).
func LoadRuleSet(path string) (*RuleSet, error) {
	if path == "" {
		return DefaultRuleSet(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tax rules file %s: %w", path, err)
	}
	var rules RuleSet
	if err := json.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse tax rules file %s: %w", path, err)
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &rules, nil
}
