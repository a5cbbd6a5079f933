package schema

// Field names for the case-study record schema. A record is a flat
// string-to-string mapping; templates may declare their own field list, and
// these constants name the fields the default template and the normalization
// engine operate on.
const (
	FieldID             = "id"
	FieldTitle          = "title"
	FieldCategory       = "category"
	FieldSubDomain      = "sub_domain"
	FieldObjective      = "objective_kpi"
	FieldTrigger        = "trigger_type"
	FieldInputSource    = "input_source"
	FieldOutputTarget   = "output_target"
	FieldKeyNodes       = "key_nodes"
	FieldTools          = "external_tools"
	FieldSummary        = "workflow_summary"
	FieldDifficulty     = "difficulty"
	FieldScale          = "scale"
	FieldROI            = "roi"
	FieldRisks          = "risks"
	FieldRegionLanguage = "region_language"
	FieldSourceURL      = "source_url"
	FieldInfoType       = "info_type"
	FieldDate           = "published_date"
	FieldDedupKey       = "dedup_key"
)

// Fields lists every record field in canonical rendering order.
var Fields = []string{
	FieldID,
	FieldTitle,
	FieldCategory,
	FieldSubDomain,
	FieldObjective,
	FieldTrigger,
	FieldInputSource,
	FieldOutputTarget,
	FieldKeyNodes,
	FieldTools,
	FieldSummary,
	FieldDifficulty,
	FieldScale,
	FieldROI,
	FieldRisks,
	FieldRegionLanguage,
	FieldSourceURL,
	FieldInfoType,
	FieldDate,
	FieldDedupKey,
}

// Info type values. A page from an authoritative domain starts as primary,
// everything else as secondary; the extraction step may downgrade either to
// estimated when the model had to fill gaps.
const (
	InfoPrimary   = "primary"
	InfoSecondary = "secondary"
	InfoEstimated = "estimated"
)

// EstimatedMarker prefixes any field value the model filled in by inference
// rather than from the page text. One marked field downgrades the whole
// record's info type.
const EstimatedMarker = "estimated:"

// EstimatedMarkers lists every accepted marker spelling. Japanese sources
// commonly carry the 推定: form.
var EstimatedMarkers = []string{EstimatedMarker, "推定:"}

// Record is one extracted case study keyed by field name.
type Record map[string]string

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
