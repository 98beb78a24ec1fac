package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth   = 277.0
	timeColumn  = 25.0
	rowHeight   = 6.0
	headerBlock = 8.0
)

// PDFExporter renders timetable sheets as a landscape A4 grid.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render draws the sheet. Blocks are filled with their course colour and span
// their rowspan vertically.
func (e *PDFExporter) Render(sheet Sheet) ([]byte, error) {
	if len(sheet.Days) == 0 {
		return nil, fmt.Errorf("pdf requires at least one day column")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 5)
	pdf.AddPage()

	if sheet.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 8, strings.ToUpper(sheet.Title), "", 1, "C", false, 0, "")
	}
	if sheet.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, sheet.Subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(2)

	dayWidth := (pageWidth - timeColumn) / float64(len(sheet.Days))
	left, top := pdf.GetXY()

	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(timeColumn, headerBlock, "TIME", "1", 0, "C", false, 0, "")
	for _, day := range sheet.Days {
		pdf.CellFormat(dayWidth, headerBlock, day, "1", 0, "C", false, 0, "")
	}
	top += headerBlock

	pdf.SetFont("Arial", "", 7)
	for i, row := range sheet.Rows {
		y := top + float64(i)*rowHeight
		pdf.SetXY(left, y)
		pdf.CellFormat(timeColumn, rowHeight, row.Time, "1", 0, "C", false, 0, "")
		for d := range sheet.Days {
			x := left + timeColumn + float64(d)*dayWidth
			var cell SheetCell
			if d < len(row.Cells) {
				cell = row.Cells[d]
			}
			switch {
			case cell.Skip:
				continue
			case cell.Empty():
				pdf.Rect(x, y, dayWidth, rowHeight, "D")
			default:
				span := cell.Rowspan
				if span < 1 {
					span = 1
				}
				height := float64(span) * rowHeight
				r, g, b := hexColor(cell.Color)
				pdf.SetFillColor(r, g, b)
				pdf.Rect(x, y, dayWidth, height, "FD")
				pdf.SetXY(x, y+1)
				pdf.MultiCell(dayWidth, 3.2, strings.Join(cell.Lines, "\n"), "", "C", false)
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// hexColor parses "#RRGGBB"; anything else is light grey.
func hexColor(raw string) (int, int, int) {
	value := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(value) != 6 {
		return 230, 230, 230
	}
	parsed, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return 230, 230, 230
	}
	return int(parsed >> 16 & 0xFF), int(parsed >> 8 & 0xFF), int(parsed & 0xFF)
}
