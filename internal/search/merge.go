package search

import (
	"net/url"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Merge flattens per-query result groups, drops blocked domains,
// de-duplicates by canonical URL (first occurrence wins), and orders the
// survivors by priority-domain rank. The canonical form is used only as the
// dedup key; the result keeps its original URL so it stays fetchable.
// Results whose host matches no priority entry rank last; ties keep their
// relative order.
func Merge(groups [][]Result, policy DomainPolicy) []Result {
	seen := map[string]struct{}{}
	out := make([]Result, 0, 64)
	for _, g := range groups {
		for _, r := range g {
			if r.URL == "" {
				continue
			}
			u, err := url.Parse(r.URL)
			if err != nil {
				continue
			}
			normalizeURL(u)
			key := u.String()
			if blockedURL(key, policy.Blocked) {
				continue
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return domainRank(out[i].URL, policy.Priority) > domainRank(out[j].URL, policy.Priority)
	})
	log.Info().Int("unique", len(out)).Msg("merged search results")
	return out
}

// normalizeURL unifies scheme to https, lowercases the host, and strips the
// trailing slash so path variants of the same page collapse together.
func normalizeURL(u *url.URL) {
	u.Scheme = "https"
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
}

func blockedURL(normalized string, blocked []string) bool {
	for _, b := range blocked {
		if b != "" && strings.Contains(normalized, b) {
			return true
		}
	}
	return false
}

// domainRank scores a URL by the first priority entry its host contains:
// earlier entries score higher, no match scores zero.
func domainRank(raw string, priority []string) int {
	u, err := url.Parse(raw)
	if err != nil {
		return 0
	}
	host := u.Hostname()
	for i, p := range priority {
		if p != "" && strings.Contains(host, p) {
			return len(priority) - i
		}
	}
	return 0
}
