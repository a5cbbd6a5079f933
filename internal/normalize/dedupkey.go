package normalize

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/caselens/caselens/internal/schema"
)

// MaxKeyLen bounds the derived dedup key.
const MaxKeyLen = 200

var (
	orgSuffixRe   = regexp.MustCompile(`(?i)([A-Za-z0-9]+(?:株式会社|社|Corp|Inc|Ltd|Corporation|LLC|GmbH))`)
	leadingAlnum  = regexp.MustCompile(`^[A-Za-z0-9]+`)
	nonKeyCharsRe = regexp.MustCompile(`[^a-z0-9_]`)
	underscoreRe  = regexp.MustCompile(`_+`)
)

// DedupKey derives the deterministic fingerprint that collapses near-
// duplicate extractions of the same case: organization, product, use-case,
// and source-domain tokens joined by underscores, lower-cased, restricted
// to [a-z0-9_], and capped at MaxKeyLen. Token extraction is best-effort
// text heuristics; unrecognizable inputs fall back to fixed sentinels
// rather than failing.
func DedupKey(rec schema.Record, defaultProduct string) string {
	parts := []string{
		orgToken(rec[schema.FieldTitle]),
		productToken(rec[schema.FieldTools], defaultProduct),
		useCaseToken(rec[schema.FieldSubDomain]),
		domainToken(rec[schema.FieldSourceURL]),
	}
	key := strings.ToLower(strings.Join(parts, "_"))
	key = nonKeyCharsRe.ReplaceAllString(key, "_")
	key = underscoreRe.ReplaceAllString(key, "_")
	if len(key) > MaxKeyLen {
		key = key[:MaxKeyLen]
	}
	return key
}

// orgToken finds an organization name in the title: a company-suffix match
// first, else the leading alphanumeric run, else "unknown".
func orgToken(title string) string {
	if m := orgSuffixRe.FindString(title); m != "" {
		return m
	}
	if m := leadingAlnum.FindString(title); m != "" {
		return m
	}
	return "unknown"
}

// productToken is the first comma-separated entry of the tools field.
func productToken(tools, defaultProduct string) string {
	first, _, _ := strings.Cut(tools, ",")
	if t := strings.TrimSpace(first); t != "" {
		return t
	}
	if defaultProduct != "" {
		return defaultProduct
	}
	return "workflow"
}

var nonAlnumRe = regexp.MustCompile(`[^A-Za-z0-9]`)

func useCaseToken(subDomain string) string {
	t := nonAlnumRe.ReplaceAllString(subDomain, "_")
	if strings.Trim(t, "_") == "" {
		return "automation"
	}
	return t
}

func domainToken(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown_domain"
	}
	return strings.ReplaceAll(u.Hostname(), ".", "_")
}
