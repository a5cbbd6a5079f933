package normalize

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/caselens/caselens/internal/schema"
)

// Deduplicate keeps the first record seen for each dedup key, in arrival
// order, and returns the dropped duplicates separately so the caller can
// audit them. Running it again over its own output is a no-op.
func Deduplicate(records []schema.Record) (unique, dropped []schema.Record) {
	seen := make(map[string]struct{}, len(records))
	unique = make([]schema.Record, 0, len(records))
	for _, rec := range records {
		key := rec[schema.FieldDedupKey]
		if _, ok := seen[key]; ok {
			log.Debug().Str("key", key).Str("title", rec[schema.FieldTitle]).Msg("dropping duplicate")
			dropped = append(dropped, rec)
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, rec)
	}
	log.Info().Int("in", len(records)).Int("out", len(unique)).Msg("deduplicated records")
	return unique, dropped
}

// AssignIDs stamps dense 1-based identifiers in survivor order, zero-padded
// to three digits. Identifiers are positional: a different arrival order
// yields different identifiers for the same logical set, which is accepted
// behavior for a single-run pipeline.
func AssignIDs(records []schema.Record) {
	for i, rec := range records {
		rec[schema.FieldID] = fmt.Sprintf("%03d", i+1)
	}
}
