package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"golang.org/x/text/language"
)

// extractTitle picks a page title by priority: open-graph title, meta title,
// first heading, then the document title.
func extractTitle(doc *goquery.Document) string {
	if t, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	if t, ok := doc.Find(`meta[name="title"]`).First().Attr("content"); ok && strings.TrimSpace(t) != "" {
		return strings.TrimSpace(t)
	}
	if t := strings.TrimSpace(doc.Find("h1").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

var publishedMetaSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[property="og:published_time"]`,
	`meta[name="date"]`,
	`meta[name="pubdate"]`,
}

var updatedMetaSelectors = []string{
	`meta[property="article:modified_time"]`,
	`meta[property="og:updated_time"]`,
	`meta[name="last-modified"]`,
}

func extractPublishedDate(doc *goquery.Document) string {
	for _, sel := range publishedMetaSelectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if d := normalizeDate(v); d != "" {
				return d
			}
		}
	}
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		return normalizeDate(v)
	}
	return ""
}

func extractUpdatedDate(doc *goquery.Document) string {
	for _, sel := range updatedMetaSelectors {
		if v, ok := doc.Find(sel).First().Attr("content"); ok {
			if d := normalizeDate(v); d != "" {
				return d
			}
		}
	}
	return ""
}

// normalizeDate renders any parseable date as YYYY-MM-DD, or empty.
func normalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return ""
	}
	return t.Format("2006-01-02")
}

// detectLangRegion derives language and region from the html lang attribute,
// the og:locale meta tag, and the top-level domain, in that precedence,
// defaulting to English/Global.
func detectLangRegion(doc *goquery.Document, host string) (string, string) {
	htmlLang, _ := doc.Find("html").First().Attr("lang")
	ogLocale, _ := doc.Find(`meta[property="og:locale"]`).First().Attr("content")
	tld := ""
	if i := strings.LastIndex(host, "."); i >= 0 {
		tld = host[i+1:]
	}

	switch {
	case baseLang(htmlLang) == "ja" || tld == "jp":
		return "Japanese", "JP"
	case tld == "in":
		return "English", "India"
	case tld == "sg":
		return "English", "Singapore"
	case tld == "de" || tld == "fr" || tld == "it" || tld == "es":
		return "European", "EU"
	case baseLang(ogLocale) == "ja":
		return "Japanese", "JP"
	}
	return "English", "Global"
}

// baseLang reduces a BCP 47 tag like "ja-JP" or "ja_JP" to its base
// language subtag, or empty when unparseable.
func baseLang(tag string) string {
	tag = strings.ReplaceAll(strings.TrimSpace(tag), "_", "-")
	if tag == "" {
		return ""
	}
	t, err := language.Parse(tag)
	if err != nil {
		return ""
	}
	b, _ := t.Base()
	return b.String()
}
