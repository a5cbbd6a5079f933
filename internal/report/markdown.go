package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/caselens/caselens/internal/schema"
)

// WriteMarkdown writes the full record table as sectioned Markdown, each
// section holding at most 50 rows followed by the same rows as a fenced CSV
// block for easy copy-out.
func WriteMarkdown(path, title string, fields []string, records []schema.Record) error {
	var sb strings.Builder
	sb.WriteString("# " + title + "\n\n")

	for i, chunk := range chunkRecords(records, rowsPerSection) {
		fmt.Fprintf(&sb, "## Part %d (%d records)\n\n", i+1, len(chunk))
		writeTable(&sb, fields, chunk)
		sb.WriteString("\n```csv\n")
		sb.WriteString(csvString(fields, chunk))
		sb.WriteString("```\n\n")
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	log.Info().Str("path", path).Int("records", len(records)).Msg("wrote markdown report")
	return nil
}

func writeTable(sb *strings.Builder, fields []string, records []schema.Record) {
	sb.WriteString("| " + strings.Join(fields, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat(" --- |", len(fields)) + "\n")
	for _, rec := range records {
		cells := make([]string, len(fields))
		for i, f := range fields {
			cells[i] = escapeMarkdown(rec[f])
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}
