package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/caselens/caselens/internal/schema"
)

// WriteCSV writes the record set as a CSV file with a header row.
func WriteCSV(path string, fields []string, records []schema.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := writeCSVRows(w, fields, records); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	log.Info().Str("path", path).Int("records", len(records)).Msg("wrote csv report")
	return nil
}

func writeCSVRows(w *csv.Writer, fields []string, records []schema.Record) error {
	if err := w.Write(fields); err != nil {
		return err
	}
	row := make([]string, len(fields))
	for _, rec := range records {
		for i, field := range fields {
			row[i] = rec[field]
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func csvString(fields []string, records []schema.Record) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)
	_ = writeCSVRows(w, fields, records)
	w.Flush()
	return sb.String()
}
