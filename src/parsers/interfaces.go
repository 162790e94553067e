package parsers

import (
	"io"

	"github.com/username/drivefinance/backend/src/models"
)

// Parser turns an uploaded CSV statement into earning rows.
type Parser interface {
	Parse(file io.Reader) ([]models.ImportedEarning, error)
}
