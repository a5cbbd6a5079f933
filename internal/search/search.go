package search

import (
	"context"
)

// Result represents a single search hit from any provider.
type Result struct {
	Title   string
	URL     string
	Snippet string
	Source  string // provider name for observability
}

// Provider is a minimal interface for search providers. Implementations
// return an empty slice rather than an error for per-query failures so one
// bad query never aborts discovery.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}

// DomainPolicy filters and orders merged results. Blocked entries are
// substring-matched against the normalized URL and drop the result;
// Priority entries rank matching hosts ahead of everything else, earlier
// entries ranking higher.
type DomainPolicy struct {
	Blocked  []string
	Priority []string
}
