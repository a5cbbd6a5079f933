package fetch

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelectors are tried in order; the first whose cleaned text clears
// the minimum-length gate wins. "body" is both the last candidate and the
// fallback.
var contentSelectors = []string{"article", "main", ".content", ".post", ".entry", "body"}

// extractMainContent strips boilerplate elements and returns the cleaned
// text of the first content container that is long enough, falling back to
// the whole body.
func extractMainContent(doc *goquery.Document, minRunes int) string {
	doc.Find("script, style, nav, header, footer, aside, iframe, noscript").Remove()

	for _, sel := range contentSelectors {
		s := doc.Find(sel).First()
		if s.Length() == 0 {
			continue
		}
		text := cleanText(s.Text())
		if len([]rune(text)) > minRunes {
			return text
		}
	}
	return cleanText(doc.Find("body").Text())
}

// cleanText collapses every whitespace run, including blank lines, to a
// single space.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
