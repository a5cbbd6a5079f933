package fetch

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestExtractTitlePriority(t *testing.T) {
	cases := []struct {
		name, html, want string
	}{
		{
			"og title wins",
			`<html><head><meta property="og:title" content="OG"><title>T</title></head><body><h1>H</h1></body></html>`,
			"OG",
		},
		{
			"meta title over heading",
			`<html><head><meta name="title" content="Meta"><title>T</title></head><body><h1>H</h1></body></html>`,
			"Meta",
		},
		{
			"heading over document title",
			`<html><head><title>T</title></head><body><h1> H </h1></body></html>`,
			"H",
		},
		{
			"document title last",
			`<html><head><title>T</title></head><body></body></html>`,
			"T",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, extractTitle(doc(t, tc.html)))
		})
	}
}

func TestExtractPublishedDateFallsBackToTimeTag(t *testing.T) {
	d := doc(t, `<html><body><time datetime="2023-11-02T08:30:00+09:00">Nov 2</time></body></html>`)
	assert.Equal(t, "2023-11-02", extractPublishedDate(d))
}

func TestNormalizeDateFormats(t *testing.T) {
	cases := map[string]string{
		"2024-03-15T09:00:00Z": "2024-03-15",
		"March 15, 2024":       "2024-03-15",
		"2024/03/15":           "2024-03-15",
		"not a date":           "",
		"":                     "",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeDate(in), "input %q", in)
	}
}

func TestDetectLangRegion(t *testing.T) {
	cases := []struct {
		name, html, host     string
		wantLang, wantRegion string
	}{
		{"html lang ja", `<html lang="ja"></html>`, "example.com", "Japanese", "JP"},
		{"jp tld", `<html></html>`, "example.co.jp", "Japanese", "JP"},
		{"in tld", `<html></html>`, "example.in", "English", "India"},
		{"sg tld", `<html></html>`, "example.sg", "English", "Singapore"},
		{"de tld", `<html></html>`, "example.de", "European", "EU"},
		{"og locale ja", `<html><head><meta property="og:locale" content="ja_JP"></head></html>`, "example.com", "Japanese", "JP"},
		{"default", `<html lang="en"></html>`, "example.com", "English", "Global"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lang, region := detectLangRegion(doc(t, tc.html), tc.host)
			assert.Equal(t, tc.wantLang, lang)
			assert.Equal(t, tc.wantRegion, region)
		})
	}
}
