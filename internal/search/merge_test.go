package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeDeduplicatesByCanonicalURL(t *testing.T) {
	groups := [][]Result{
		{
			{Title: "first", URL: "http://Example.com/page/"},
			{Title: "other", URL: "https://example.org/a#section"},
		},
		{
			{Title: "dup", URL: "https://example.com/page"},
			{Title: "frag", URL: "https://example.org/a"},
		},
	}
	got := Merge(groups, DomainPolicy{})
	assert.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Title, "first occurrence wins")
	assert.Equal(t, "http://Example.com/page/", got[0].URL, "the original URL survives")
	assert.Equal(t, "https://example.org/a#section", got[1].URL)
}

func TestMergeDropsBlockedDomains(t *testing.T) {
	groups := [][]Result{{
		{URL: "https://spam.example.com/post"},
		{URL: "https://good.example.org/post"},
	}}
	got := Merge(groups, DomainPolicy{Blocked: []string{"spam."}})
	assert.Len(t, got, 1)
	assert.Equal(t, "https://good.example.org/post", got[0].URL)
}

func TestMergePriorityOrdering(t *testing.T) {
	groups := [][]Result{{
		{Title: "c", URL: "https://random.example/post"},
		{Title: "b", URL: "https://docs.vendor.example/guide"},
		{Title: "a", URL: "https://community.vendor.example/thread"},
	}}
	got := Merge(groups, DomainPolicy{
		Priority: []string{"community.vendor.example", "docs.vendor.example"},
	})
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].Title, got[1].Title, got[2].Title})
}

func TestMergeUnmatchedKeepRelativeOrder(t *testing.T) {
	groups := [][]Result{{
		{Title: "x", URL: "https://one.example/p"},
		{Title: "y", URL: "https://two.example/p"},
	}}
	got := Merge(groups, DomainPolicy{Priority: []string{"nomatch.example"}})
	assert.Equal(t, "x", got[0].Title)
	assert.Equal(t, "y", got[1].Title)
}
