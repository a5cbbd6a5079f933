package report

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/caselens/caselens/internal/schema"
)

// WritePivots writes grouped counts: records per category, trigger-type
// composition (first "/"-separated entry only), and the info-type ratio.
func WritePivots(path string, records []schema.Record) error {
	var sb strings.Builder
	sb.WriteString("# Pivot summary\n\n")

	sb.WriteString("## Records per category\n\n")
	writeCounts(&sb, countBy(records, func(r schema.Record) string {
		return r[schema.FieldCategory]
	}), 0)
	sb.WriteString("\n## Trigger composition\n\n")
	writeCounts(&sb, countBy(records, firstTrigger), 0)
	sb.WriteString("\n## Info type ratio\n\n")
	writeCounts(&sb, countBy(records, func(r schema.Record) string {
		return r[schema.FieldInfoType]
	}), len(records))

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write pivots: %w", err)
	}
	log.Info().Str("path", path).Msg("wrote pivot report")
	return nil
}

func firstTrigger(r schema.Record) string {
	first, _, _ := strings.Cut(r[schema.FieldTrigger], "/")
	return strings.TrimSpace(first)
}

func countBy(records []schema.Record, key func(schema.Record) string) map[string]int {
	counts := map[string]int{}
	for _, rec := range records {
		if k := key(rec); k != "" {
			counts[k]++
		}
	}
	return counts
}

// writeCounts lists counts in descending order, ties alphabetical. A
// positive total adds a percentage column.
func writeCounts(sb *strings.Builder, counts map[string]int, total int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	for _, k := range keys {
		if total > 0 {
			fmt.Fprintf(sb, "- %s: %d (%.1f%%)\n", k, counts[k], float64(counts[k])/float64(total)*100)
		} else {
			fmt.Fprintf(sb, "- %s: %d\n", k, counts[k])
		}
	}
}
