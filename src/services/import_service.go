package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/username/drivefinance/backend/src/database"
	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/model"
	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/parsers"
	"github.com/username/drivefinance/backend/src/security/validation"
)

type importServiceImpl struct {
	ledger LedgerService
}

func NewImportService(ledger LedgerService) ImportService {
	return &importServiceImpl{ledger: ledger}
}

// ImportEarnings parses the uploaded statement and inserts each row as an
// earning. Rows already imported for this user (same content hash) are
// skipped instead of duplicated.
func (s *importServiceImpl) ImportEarnings(fileReader io.Reader, userID int64, source string) (*models.ImportResult, error) {
	parser, err := parsers.GetParser(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	rows, err := parser.Parse(fileReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParsingFailed, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no earnings found in file", ErrParsingFailed)
	}

	tx, err := database.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result := &models.ImportResult{}
	for _, row := range rows {
		// CSV cells are untrusted input and may end up back in a spreadsheet.
		notes := validation.SanitizeForFormulaInjection(validation.StripUnprintable(row.Notes))
		earning := model.Earning{
			UserID:      userID,
			App:         row.App,
			Amount:      row.Amount,
			Date:        row.Date,
			TripsCount:  row.TripsCount,
			HoursWorked: row.HoursWorked,
			KmTraveled:  row.KmTraveled,
			Notes:       notes,
			HashID:      earningHash(row),
		}
		if err := earning.Validate(); err != nil {
			logger.L.Warn("Skipping invalid imported earning", "userID", userID, "error", err)
			result.Skipped++
			continue
		}

		_, err := tx.Exec(`INSERT INTO earnings (user_id, app, amount_cents, date, trips_count, hours_worked, km_traveled, notes, hash_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
			earning.UserID, earning.App, earning.Amount, earning.Date,
			earning.TripsCount, earning.HoursWorked, earning.KmTraveled, earning.Notes, earning.HashID)
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique constraint failed") {
				result.Skipped++
				continue
			}
			return nil, fmt.Errorf("failed to insert imported earning: %w", err)
		}
		result.Imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit import: %w", err)
	}

	if result.Imported > 0 {
		s.ledger.InvalidateUserCache(userID)
	}

	logger.L.Info("Earnings import processed",
		"userID", userID, "source", source,
		"imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// earningHash fingerprints an imported row so re-uploading the same statement
// is idempotent. Manual entries carry no hash and are never deduplicated.
func earningHash(row models.ImportedEarning) string {
	trips := int64(0)
	if row.TripsCount != nil {
		trips = *row.TripsCount
	}
	hours := 0.0
	if row.HoursWorked != nil {
		hours = *row.HoursWorked
	}
	payload := fmt.Sprintf("%s|%d|%s|%d|%.2f", row.App, int64(row.Amount), row.Date, trips, hours)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
