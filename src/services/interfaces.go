package services

import (
	"errors"
	"io"

	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/tax"
)

// ErrParsingFailed wraps CSV parsing problems so handlers can map them to a
// 400 response.
var ErrParsingFailed = errors.New("parsing failed")

// ErrValidation wraps bad request input (unknown regime, malformed period).
var ErrValidation = errors.New("validation error")

// LedgerService reduces a user's stored earnings and expenses into period
// aggregates and summary reports.
type LedgerService interface {
	Aggregate(userID int64, period tax.Period) (*models.AggregateTotals, error)
	Summary(userID int64, period tax.Period) (*models.SummaryReport, error)
	// InvalidateUserCache drops cached aggregates after a ledger write.
	InvalidateUserCache(userID int64)
}

// TaxService produces the full tax report for a user, period and regime.
type TaxService interface {
	CalculateReport(userID int64, regime, startDate, endDate string) (*models.TaxReport, error)
}

// EntitlementService answers the premium gate for every premium feature.
type EntitlementService interface {
	IsPremium(userID int64) (bool, error)
}

// ImportService ingests uploaded CSV statements into the earnings ledger.
type ImportService interface {
	ImportEarnings(fileReader io.Reader, userID int64, source string) (*models.ImportResult, error)
}

// EmailService sends account lifecycle email.
type EmailService interface {
	SendVerificationEmail(toEmail, username, token string) error
	SendPasswordResetEmail(toEmail, username, token string) error
}
