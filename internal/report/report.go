// Package report renders the final record set into human-readable
// artifacts. It consumes a deduplicated, normalized, identifier-stamped
// record list and never mutates it.
package report

import (
	"strings"

	"github.com/caselens/caselens/internal/schema"
)

// rowsPerSection splits the markdown report into digestible parts.
const rowsPerSection = 50

func escapeMarkdown(text string) string {
	if text == "" {
		return ""
	}
	text = strings.ReplaceAll(text, "|", `\|`)
	text = strings.ReplaceAll(text, "\r", "")
	return strings.ReplaceAll(text, "\n", " ")
}

func chunkRecords(records []schema.Record, size int) [][]schema.Record {
	var chunks [][]schema.Record
	for i := 0; i < len(records); i += size {
		end := i + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[i:end])
	}
	return chunks
}

// FilterCategories returns the records whose category is in focus, keeping
// order. Used for the phase-2 focus report.
func FilterCategories(records []schema.Record, focus []string) []schema.Record {
	if len(focus) == 0 {
		return nil
	}
	want := make(map[string]struct{}, len(focus))
	for _, f := range focus {
		want[f] = struct{}{}
	}
	out := make([]schema.Record, 0, len(records))
	for _, rec := range records {
		if _, ok := want[rec[schema.FieldCategory]]; ok {
			out = append(out, rec)
		}
	}
	return out
}
