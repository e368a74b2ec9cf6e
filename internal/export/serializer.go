package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"coingecko-exporter/internal/columns"
	"coingecko-exporter/internal/types"
)

// ErrUnsupportedFormat is returned for any format other than csv or json.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Envelope is the top-level object of a JSON export.
type Envelope struct {
	ExportType   types.PageType `json:"exportType"`
	ExportDate   string         `json:"exportDate"`
	TotalRecords int            `json:"totalRecords"`
	Data         []types.Record `json:"data"`
}

// ParseFormat validates a format name; empty means csv.
func ParseFormat(s string) (types.Format, error) {
	switch types.Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", types.FormatCSV:
		return types.FormatCSV, nil
	case types.FormatJSON:
		return types.FormatJSON, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Serialize renders records in the given format. Only the selected columns
// of spec are written, in spec order; an empty selection writes them all.
func Serialize(records []types.Record, format types.Format, recordType types.PageType, spec columns.Spec, selected []string, now time.Time) ([]byte, error) {
	switch format {
	case types.FormatCSV:
		return []byte(CSV(records, spec.Resolve(selected))), nil
	case types.FormatJSON:
		return JSON(Project(records, selected, spec.Keys()), recordType, now)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
}

// CSV renders a header of column labels followed by one line per record.
//
// Every value is wrapped in double quotes verbatim. Quotes inside a value
// are not escaped, so such a value breaks its row. Empty and missing values
// are written as N/A.
func CSV(records []types.Record, cols columns.Spec) string {
	var b strings.Builder

	labels := make([]string, len(cols))
	for i, c := range cols {
		labels[i] = c.Label
	}
	b.WriteString(strings.Join(labels, ","))
	b.WriteByte('\n')

	cells := make([]string, len(cols))
	for _, rec := range records {
		for i, c := range cols {
			v, _ := rec.Get(c.Key)
			if v == "" {
				v = types.NA
			}
			cells[i] = `"` + v + `"`
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteByte('\n')
	}
	return b.String()
}

// JSON renders the export envelope indented by two spaces.
func JSON(records []types.Record, recordType types.PageType, now time.Time) ([]byte, error) {
	if records == nil {
		records = []types.Record{}
	}
	env := Envelope{
		ExportType:   recordType,
		ExportDate:   now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		TotalRecords: len(records),
		Data:         records,
	}
	b, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return b, nil
}
