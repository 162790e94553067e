package tax

import "github.com/username/drivefinance/backend/src/models"

// Projection extrapolates a period's gross income to monthly and annual
// figures using the elapsed-time ratio.
type Projection struct {
	Days    int
	Monthly models.Money
	Annual  models.Money
}

// Project computes the monthly average and annual projection for the gross
// income earned over the period. Period.Days already floors at one day, so
// the months-worked divisor can never be zero.
func Project(gross models.Money, period Period) Projection {
	days := period.Days()
	monthsWorked := float64(days) / 30

	monthly := gross.DivBy(monthsWorked)
	return Projection{
		Days:    days,
		Monthly: monthly,
		Annual:  monthly * 12,
	}
}
