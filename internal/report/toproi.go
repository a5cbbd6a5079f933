package report

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/caselens/caselens/internal/schema"
)

// topROILimit caps the ranking table length.
const topROILimit = 20

var numberRunRe = regexp.MustCompile(`\d+`)

// ROIScore rates how concrete a record's outcome claim is. Digit runs in
// the ROI field score 0.15 each (capped at 1.0); an explicit "ROI" mention
// adds 0.3; reduction/saving/percentage wording adds 0.2; primary
// information adds 0.4.
func ROIScore(rec schema.Record) float64 {
	roi := rec[schema.FieldROI]
	score := float64(len(numberRunRe.FindAllString(roi, -1))) * 0.15
	if score > 1.0 {
		score = 1.0
	}
	if strings.Contains(roi, "ROI") {
		score += 0.3
	}
	lower := strings.ToLower(roi)
	if strings.Contains(lower, "%") || strings.Contains(lower, "reduc") || strings.Contains(lower, "sav") ||
		strings.Contains(roi, "削減") || strings.Contains(roi, "短縮") {
		score += 0.2
	}
	if rec[schema.FieldInfoType] == schema.InfoPrimary {
		score += 0.4
	}
	return score
}

// WriteTopROI writes the 20 highest-scoring records as a ranked table.
func WriteTopROI(path string, records []schema.Record) error {
	type scored struct {
		rec   schema.Record
		score float64
	}
	ranked := make([]scored, 0, len(records))
	for _, rec := range records {
		ranked = append(ranked, scored{rec, ROIScore(rec)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > topROILimit {
		ranked = ranked[:topROILimit]
	}

	var sb strings.Builder
	sb.WriteString("# Top ROI cases\n\n")
	sb.WriteString("| # | title | objective | key steps | risks | source |\n")
	sb.WriteString("|---|-------|-----------|-----------|-------|--------|\n")
	for i, s := range ranked {
		fmt.Fprintf(&sb, "| %d | %s | %s | %s | %s | %s |\n",
			i+1,
			escapeMarkdown(s.rec[schema.FieldTitle]),
			escapeMarkdown(s.rec[schema.FieldObjective]),
			escapeMarkdown(s.rec[schema.FieldKeyNodes]),
			escapeMarkdown(s.rec[schema.FieldRisks]),
			s.rec[schema.FieldSourceURL],
		)
	}
	sb.WriteString("\n")

	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write top roi: %w", err)
	}
	log.Info().Str("path", path).Msg("wrote top-ROI report")
	return nil
}
