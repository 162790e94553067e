package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/username/drivefinance/backend/src/logger"
	"github.com/username/drivefinance/backend/src/models"
	"github.com/username/drivefinance/backend/src/utils"
)

// UberParser reads the weekly statement export of the Uber driver app:
// fixed columns "Week Starting", "Total Earnings", "Trips", "Online Hours".
type UberParser struct{}

func NewUberParser() *UberParser {
	return &UberParser{}
}

func (p *UberParser) Parse(file io.Reader) ([]models.ImportedEarning, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read all CSV records: %w", err)
	}

	var earnings []models.ImportedEarning
	for i, record := range records {
		if len(record) < 2 {
			continue
		}

		date, err := parseUberDate(record[0])
		if err != nil {
			logger.L.Warn("Skipping Uber statement row with invalid date", "row", i+2, "date", record[0])
			continue
		}

		amount, err := models.ParseMoney(strings.TrimPrefix(strings.TrimSpace(record[1]), "R$"))
		if err != nil || amount <= 0 {
			logger.L.Warn("Skipping Uber statement row with invalid amount", "row", i+2, "amount", record[1])
			continue
		}

		earning := models.ImportedEarning{
			App:    models.PlatformUber,
			Amount: amount,
			Date:   date,
			Notes:  "Imported from Uber weekly statement",
		}
		if len(record) > 2 {
			if trips, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64); err == nil && trips >= 0 {
				earning.TripsCount = &trips
			}
		}
		if len(record) > 3 {
			if hours, err := strconv.ParseFloat(strings.TrimSpace(record[3]), 64); err == nil && hours > 0 {
				earning.HoursWorked = &hours
			}
		}

		earnings = append(earnings, earning)
	}

	return earnings, nil
}

func parseUberDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{utils.ISODateFormat, "01/02/2006", "Jan 2, 2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return utils.FormatISODate(t), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", raw)
}
