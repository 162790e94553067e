package models

// Platform is the ride-hailing/delivery app an earning came from.
type Platform string

const (
	PlatformUber     Platform = "uber"
	Platform99       Platform = "99"
	PlatformIfood    Platform = "ifood"
	PlatformRappi    Platform = "rappi"
	PlatformLoggi    Platform = "loggi"
	PlatformLalamove Platform = "lalamove"
	PlatformUberEats Platform = "uber_eats"
	PlatformOther    Platform = "other"
)

// Platforms lists every supported earning platform, in documentation order.
var Platforms = []Platform{
	PlatformUber, Platform99, PlatformIfood, PlatformRappi,
	PlatformLoggi, PlatformLalamove, PlatformUberEats, PlatformOther,
}

// ValidPlatform reports whether p is one of the supported platforms.
func ValidPlatform(p Platform) bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// ExpenseCategory classifies a driver expense.
type ExpenseCategory string

const (
	CategoryFuel        ExpenseCategory = "fuel"
	CategoryMaintenance ExpenseCategory = "maintenance"
	CategoryFood        ExpenseCategory = "food"
	CategoryPhone       ExpenseCategory = "phone"
	CategoryInsurance   ExpenseCategory = "insurance"
	CategoryTaxes       ExpenseCategory = "taxes"
	CategoryOther       ExpenseCategory = "other"
)

// ExpenseCategories lists every supported expense category.
var ExpenseCategories = []ExpenseCategory{
	CategoryFuel, CategoryMaintenance, CategoryFood, CategoryPhone,
	CategoryInsurance, CategoryTaxes, CategoryOther,
}

// ValidExpenseCategory reports whether c is one of the supported categories.
func ValidExpenseCategory(c ExpenseCategory) bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// DeductibleCategories is the fixed deductibility policy: only work-related
// expense categories reduce the tax base. This set is a deliberate design
// choice, not user-configurable.
var DeductibleCategories = map[ExpenseCategory]bool{
	CategoryFuel:        true,
	CategoryMaintenance: true,
	CategoryPhone:       true,
	CategoryInsurance:   true,
}

// AggregateTotals is the reduction of a user's ledger over a period.
// Produced fresh per request by the ledger aggregator; never persisted.
type AggregateTotals struct {
	GrossIncome        Money              `json:"gross_income"`
	TotalExpenses      Money              `json:"total_expenses"`
	DeductibleExpenses Money              `json:"deductible_expenses"`
	NetIncome          Money              `json:"net_income"`
	Trips              int64              `json:"trips"`
	Hours              float64            `json:"hours"`
	DistanceKm         float64            `json:"distance_km"`
	ByPlatform         map[Platform]Money `json:"earnings_by_app"`
	ByCategory         map[ExpenseCategory]Money `json:"expenses_by_category"`
}

// TaxEstimate breaks a regime's liability into its components. Components
// that a regime does not levy separately are zero (e.g. DAS is only charged
// under MEI, INSS/IRPF only under autônomo).
type TaxEstimate struct {
	DAS   Money `json:"das"`
	INSS  Money `json:"inss"`
	IRPF  Money `json:"irpf"`
	Total Money `json:"total"`
}

// TaxReport is the full response of the tax calculation endpoint.
type TaxReport struct {
	Regime             string      `json:"regime"`
	GrossIncome        Money       `json:"gross_income"`
	DeductibleExpenses Money       `json:"deductible_expenses"`
	NetIncome          Money       `json:"net_income"`
	Taxes              TaxEstimate `json:"taxes"`
	MonthlyProjection  Money       `json:"monthly_projection"`
	AnnualProjection   Money       `json:"annual_projection"`
	Recommendations    []string    `json:"recommendations"`
	Alerts             []string    `json:"alerts"`
}

// PeriodRange is the resolved calendar window of a summary or tax report.
type PeriodRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SummaryTotals are the scalar aggregates of the financial summary endpoint.
type SummaryTotals struct {
	Earnings     Money   `json:"earnings"`
	Expenses     Money   `json:"expenses"`
	Profit       Money   `json:"profit"`
	ProfitMargin float64 `json:"profit_margin"`
	Trips        int64   `json:"trips"`
	Hours        float64 `json:"hours"`
	Km           float64 `json:"km"`
}

// SummaryAverages are per-unit earning rates over the summary period.
type SummaryAverages struct {
	PerTrip Money `json:"per_trip"`
	PerHour Money `json:"per_hour"`
	PerKm   Money `json:"per_km"`
}

// SummaryReport is the response of the financial summary endpoint.
type SummaryReport struct {
	Period             PeriodRange               `json:"period"`
	Totals             SummaryTotals             `json:"totals"`
	EarningsByApp      map[Platform]Money        `json:"earnings_by_app"`
	ExpensesByCategory map[ExpenseCategory]Money `json:"expenses_by_category"`
	Averages           SummaryAverages           `json:"averages"`
}
