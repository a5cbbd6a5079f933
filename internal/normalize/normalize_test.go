package normalize

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caselens/caselens/internal/schema"
)

func vocab() Vocabulary {
	return Vocabulary{
		Categories: []string{"finance", "healthcare", "it_software", "other"},
		Synonyms: map[string]string{
			"banking": "finance",
			"fintech": "finance",
			"medical": "healthcare",
			"saas":    "it_software",
		},
		Fallback: "other",
	}
}

func TestCategoryExactMatch(t *testing.T) {
	assert.Equal(t, "finance", Category("finance", vocab()))
}

func TestCategorySynonymSubstring(t *testing.T) {
	assert.Equal(t, "finance", Category("Retail Banking Division", vocab()))
	assert.Equal(t, "healthcare", Category("medical devices", vocab()))
	assert.Equal(t, "it_software", Category("B2B SaaS", vocab()))
}

func TestCategoryFallback(t *testing.T) {
	assert.Equal(t, "other", Category("space tourism", vocab()))
	assert.Equal(t, "other", Category("", vocab()))
}

func TestCategoryDeterministicAcrossRuns(t *testing.T) {
	// Multiple synonym needles can match; the result must not depend on map
	// iteration order.
	v := Vocabulary{
		Categories: []string{"finance", "it_software"},
		Synonyms:   map[string]string{"bank": "finance", "banking saas": "it_software"},
		Fallback:   "other",
	}
	first := Category("banking saas platform", v)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Category("banking saas platform", v))
	}
}

func TestDifficultyNumericClamp(t *testing.T) {
	cases := map[string]string{
		"1": "1", "3": "3", "5": "5",
		"0": "1", "-2": "1",
		"6": "5", "9": "5", "7": "5",
		" 4 ": "4",
	}
	for in, want := range cases {
		assert.Equal(t, want, Difficulty(in), "input %q", in)
	}
}

func TestDifficultyKeywordBuckets(t *testing.T) {
	assert.Equal(t, "1", Difficulty("a simple template"))
	assert.Equal(t, "3", Difficulty("moderate effort"))
	assert.Equal(t, "5", Difficulty("Advanced, complex setup"))
	assert.Equal(t, "1", Difficulty("簡単"))
	assert.Equal(t, "5", Difficulty("複雑な連携"))
	assert.Equal(t, "3", Difficulty("unclear"))
	assert.Equal(t, "3", Difficulty(""))
}

var keyShapeRe = regexp.MustCompile(`^[a-z0-9_]{1,200}$`)

func TestDedupKeyShape(t *testing.T) {
	rec := schema.Record{
		schema.FieldTitle:     "AcmeCorp cuts invoice time by 80%!",
		schema.FieldTools:     "n8n, QuickBooks, Slack",
		schema.FieldSubDomain: "invoice processing",
		schema.FieldSourceURL: "https://blog.example.co.jp/case/123",
	}
	key := DedupKey(rec, "")
	assert.Regexp(t, keyShapeRe, key)
	assert.Equal(t, "acmecorp_n8n_invoice_processing_blog_example_co_jp", key)
}

func TestDedupKeyFallbackTokens(t *testing.T) {
	key := DedupKey(schema.Record{}, "")
	assert.Regexp(t, keyShapeRe, key)
	assert.Equal(t, "unknown_workflow_automation_unknown_domain", key)
}

func TestDedupKeyDefaultProduct(t *testing.T) {
	key := DedupKey(schema.Record{schema.FieldTitle: "Acme story"}, "zapier")
	assert.Contains(t, key, "_zapier_")
}

func TestDedupKeyCapped(t *testing.T) {
	rec := schema.Record{
		schema.FieldTitle:     strings.Repeat("LongNameCorp", 30),
		schema.FieldSubDomain: strings.Repeat("very long use case ", 20),
	}
	key := DedupKey(rec, "")
	assert.LessOrEqual(t, len(key), MaxKeyLen)
	assert.Regexp(t, keyShapeRe, key)
}

func TestDedupKeyDeterministic(t *testing.T) {
	rec := schema.Record{
		schema.FieldTitle:     "Beta Inc automates onboarding",
		schema.FieldTools:     "Make",
		schema.FieldSubDomain: "HR onboarding",
		schema.FieldSourceURL: "https://example.com/post",
	}
	assert.Equal(t, DedupKey(rec, ""), DedupKey(rec, ""))
}

func TestApplyRewritesVolatileFields(t *testing.T) {
	rec := schema.Record{
		schema.FieldTitle:      "Acme automation",
		schema.FieldCategory:   "banking",
		schema.FieldDifficulty: "9",
		schema.FieldSourceURL:  "https://example.com/a",
	}
	Apply(rec, vocab(), "n8n")
	assert.Equal(t, "finance", rec[schema.FieldCategory])
	assert.Equal(t, "5", rec[schema.FieldDifficulty])
	assert.Regexp(t, keyShapeRe, rec[schema.FieldDedupKey])
}

func TestDeduplicateFirstSeenWins(t *testing.T) {
	a := schema.Record{schema.FieldID: "a", schema.FieldDedupKey: "k1"}
	b := schema.Record{schema.FieldID: "b", schema.FieldDedupKey: "k2"}
	c := schema.Record{schema.FieldID: "c", schema.FieldDedupKey: "k1"}

	unique, dropped := Deduplicate([]schema.Record{a, b, c})
	require.Len(t, unique, 2)
	require.Len(t, dropped, 1)
	assert.Equal(t, "a", unique[0][schema.FieldID])
	assert.Equal(t, "b", unique[1][schema.FieldID])
	assert.Equal(t, "c", dropped[0][schema.FieldID])
}

func TestDeduplicateIdempotent(t *testing.T) {
	recs := []schema.Record{
		{schema.FieldDedupKey: "k1"},
		{schema.FieldDedupKey: "k2"},
	}
	once, dropped := Deduplicate(recs)
	require.Empty(t, dropped)
	twice, dropped := Deduplicate(once)
	assert.Empty(t, dropped)
	assert.Equal(t, once, twice)
}

func TestAssignIDsDense(t *testing.T) {
	recs := []schema.Record{{}, {}, {}}
	AssignIDs(recs)
	assert.Equal(t, "001", recs[0][schema.FieldID])
	assert.Equal(t, "002", recs[1][schema.FieldID])
	assert.Equal(t, "003", recs[2][schema.FieldID])
}
