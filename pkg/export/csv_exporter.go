package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVExporter renders timetable sheets into CSV bytes.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// Render writes one record per time row. Block cells hold their lines joined by " / ",
// covered cells repeat a "^" marker so spreadsheets keep the grid shape.
func (e *CSVExporter) Render(sheet Sheet) ([]byte, error) {
	if len(sheet.Days) == 0 {
		return nil, fmt.Errorf("csv requires at least one day column")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(append([]string{"TIME"}, sheet.Days...)); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range sheet.Rows {
		record := make([]string, len(sheet.Days)+1)
		record[0] = row.Time
		for i := range sheet.Days {
			if i >= len(row.Cells) {
				break
			}
			cell := row.Cells[i]
			switch {
			case cell.Skip:
				record[i+1] = "^"
			default:
				record[i+1] = strings.Join(cell.Lines, " / ")
			}
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
