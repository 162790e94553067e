package models

// ImportedEarning is one earning row parsed from an uploaded CSV statement,
// before it is validated and persisted.
type ImportedEarning struct {
	App         Platform `json:"app"`
	Amount      Money    `json:"amount"`
	Date        string   `json:"date"` // ISO calendar date
	TripsCount  *int64   `json:"trips_count,omitempty"`
	HoursWorked *float64 `json:"hours_worked,omitempty"`
	KmTraveled  *float64 `json:"km_traveled,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// ImportResult summarizes a completed CSV import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
