package report

import (
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"

	"github.com/caselens/caselens/internal/schema"
)

// pdfColumns is the condensed column set for the printable table; the full
// field set does not fit a landscape page.
var pdfColumns = []struct {
	field string
	label string
	width float64
}{
	{schema.FieldID, "ID", 12},
	{schema.FieldTitle, "Title", 70},
	{schema.FieldCategory, "Category", 35},
	{schema.FieldDifficulty, "Diff", 12},
	{schema.FieldROI, "ROI", 70},
	{schema.FieldInfoType, "Info", 22},
	{schema.FieldDate, "Date", 24},
}

// WritePDF renders a condensed landscape table of the record set. Layout is
// deliberately simple: fixed column widths, truncated cell text.
func WritePDF(path, title string, records []schema.Record) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	header := func() {
		pdf.SetFont("Helvetica", "B", 8)
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, col.label, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}
	header()

	for _, rec := range records {
		if pdf.GetY() > 185 {
			pdf.AddPage()
			header()
		}
		for _, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, clipCell(rec[col.field], col.width), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	log.Info().Str("path", path).Int("records", len(records)).Msg("wrote pdf report")
	return nil
}

// clipCell truncates text to roughly fit a column width at 8pt Helvetica.
func clipCell(s string, width float64) string {
	max := int(width / 1.6)
	if max < 4 {
		max = 4
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
