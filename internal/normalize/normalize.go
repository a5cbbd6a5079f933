package normalize

import (
	"sort"
	"strconv"
	"strings"

	"github.com/caselens/caselens/internal/schema"
)

// Vocabulary is the closed category enumeration plus its synonym table.
// Loaded once from the research template and immutable for the run.
type Vocabulary struct {
	// Categories are the canonical values, matched exactly.
	Categories []string
	// Synonyms maps a lower-cased needle to a canonical value; a needle
	// matches by case-insensitive substring.
	Synonyms map[string]string
	// Fallback is the reserved value for anything unrecognized.
	Fallback string
}

// Apply rewrites a record's volatile fields in place: the category is
// canonicalized, the difficulty clamped to the 1..5 scale, and the dedup key
// rederived from the record's own content. defaultProduct is the product
// token used when the tools field is empty.
func Apply(rec schema.Record, v Vocabulary, defaultProduct string) {
	rec[schema.FieldCategory] = Category(rec[schema.FieldCategory], v)
	rec[schema.FieldDifficulty] = Difficulty(rec[schema.FieldDifficulty])
	rec[schema.FieldDedupKey] = DedupKey(rec, defaultProduct)
}

// Category resolves a raw category value against the vocabulary: exact match
// wins, then the first case-insensitive substring hit in the synonym table,
// then the fallback.
func Category(raw string, v Vocabulary) string {
	for _, c := range v.Categories {
		if raw == c {
			return c
		}
	}
	needle := strings.ToLower(strings.TrimSpace(raw))
	for _, syn := range synonymKeys(v.Synonyms) {
		if strings.Contains(needle, strings.ToLower(syn)) {
			return v.Synonyms[syn]
		}
	}
	return v.Fallback
}

// Difficulty normalizes to "1".."5". Numeric input is clamped; non-numeric
// input is inferred from keyword buckets, defaulting to the middle.
func Difficulty(raw string) string {
	if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
		if n < 1 {
			return "1"
		}
		if n > 5 {
			return "5"
		}
		return strconv.Itoa(n)
	}
	lower := strings.ToLower(raw)
	switch {
	case containsAny(lower, "simple", "easy", "template", "trivial", "簡単", "単純"):
		return "1"
	case containsAny(lower, "moderate", "medium", "average", "中程度", "普通"):
		return "3"
	case containsAny(lower, "complex", "advanced", "hard", "複雑", "高度"):
		return "5"
	}
	return "3"
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// synonymKeys returns the synonym needles in deterministic order so that
// Category is a pure function of its inputs.
func synonymKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
