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

// GenericParser reads a header-mapped CSV with the documented columns:
// app, amount, date and optionally trips_count, hours_worked, km_traveled,
// notes. Column order is free; unknown columns are ignored.
type GenericParser struct{}

func NewGenericParser() *GenericParser {
	return &GenericParser{}
}

func (p *GenericParser) Parse(file io.Reader) ([]models.ImportedEarning, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"app", "amount", "date"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV header is missing required column %q", required)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read all CSV records: %w", err)
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var earnings []models.ImportedEarning
	for i, record := range records {
		app := normalizePlatform(field(record, "app"))

		amount, err := models.ParseMoney(field(record, "amount"))
		if err != nil || amount <= 0 {
			logger.L.Warn("Skipping CSV row with invalid amount", "row", i+2, "amount", field(record, "amount"))
			continue
		}

		date, err := parseFlexibleDate(field(record, "date"))
		if err != nil {
			logger.L.Warn("Skipping CSV row with invalid date", "row", i+2, "date", field(record, "date"))
			continue
		}

		earning := models.ImportedEarning{
			App:    app,
			Amount: amount,
			Date:   date,
			Notes:  field(record, "notes"),
		}
		if v := field(record, "trips_count"); v != "" {
			if trips, err := strconv.ParseInt(v, 10, 64); err == nil && trips >= 0 {
				earning.TripsCount = &trips
			}
		}
		if v := field(record, "hours_worked"); v != "" {
			if hours, err := strconv.ParseFloat(v, 64); err == nil && hours > 0 {
				earning.HoursWorked = &hours
			}
		}
		if v := field(record, "km_traveled"); v != "" {
			if km, err := strconv.ParseFloat(v, 64); err == nil && km > 0 {
				earning.KmTraveled = &km
			}
		}

		earnings = append(earnings, earning)
	}

	return earnings, nil
}

// normalizePlatform maps free-form platform names onto the supported
// enumeration, falling back to "other".
func normalizePlatform(raw string) models.Platform {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.ReplaceAll(name, " ", "_")
	if name == "ubereats" || name == "uber-eats" {
		name = string(models.PlatformUberEats)
	}
	if p := models.Platform(name); models.ValidPlatform(p) {
		return p
	}
	return models.PlatformOther
}

// parseFlexibleDate accepts ISO dates as well as the Brazilian day-first
// format common in exported statements, returning a normalized ISO date.
func parseFlexibleDate(raw string) (string, error) {
	for _, layout := range []string{utils.ISODateFormat, "02/01/2006"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return utils.FormatISODate(t), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", raw)
}
