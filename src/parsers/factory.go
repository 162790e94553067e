// backend/src/parsers/factory.go
package parsers

import "fmt"

// GetParser returns the parser for an import source. "generic" accepts any
// CSV carrying the documented column headers; "uber" accepts the weekly
// statement export of the Uber driver app.
func GetParser(source string) (Parser, error) {
	switch source {
	case "generic", "":
		return NewGenericParser(), nil
	case "uber":
		return NewUberParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
