package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<!DOCTYPE html>
<html><body>
<div class="result">
  <a class="result__a" href="https://example.com/case-study">Invoice automation at Example Corp</a>
  <div class="result__snippet">How Example Corp automated invoicing.</div>
</div>
<div class="result">
  <a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fblog.example.org%2Fworkflow&amp;rut=abc">Workflow post</a>
  <div class="result__snippet">A workflow writeup.</div>
</div>
<div class="result">
  <a class="result__a" href="javascript:void(0)">Not a link</a>
</div>
<div class="result">
  <a class="result__a" href="https://example.net/third">Third</a>
</div>
</body></html>`

func TestSearchParsesResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "workflow automation", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	d := &DuckDuckGo{BaseURL: srv.URL + "/html/"}
	got, err := d.Search(context.Background(), "workflow automation", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "Invoice automation at Example Corp", got[0].Title)
	assert.Equal(t, "https://example.com/case-study", got[0].URL)
	assert.Equal(t, "How Example Corp automated invoicing.", got[0].Snippet)
	assert.Equal(t, "duckduckgo", got[0].Source)

	// The redirect wrapper must be unwrapped to the destination URL.
	assert.Equal(t, "https://blog.example.org/workflow", got[1].URL)

	// The javascript: href is dropped, not kept as an empty result.
	assert.Equal(t, "https://example.net/third", got[2].URL)
}

func TestSearchHonorsLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(resultsPage))
	}))
	defer srv.Close()

	d := &DuckDuckGo{BaseURL: srv.URL + "/html/"}
	got, err := d.Search(context.Background(), "anything", 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSearchFailureDegradesToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	d := &DuckDuckGo{BaseURL: srv.URL + "/html/"}
	got, err := d.Search(context.Background(), "anything", 10)
	require.NoError(t, err, "a failed query must not abort the run")
	assert.Empty(t, got)
}

func TestUnwrapRedirect(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"https://example.com/page", "https://example.com/page"},
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fa%20b", "https://example.com/a b"},
		{"/l/?uddg=https%3A%2F%2Fexample.org%2F", "https://example.org/"},
		{"//duckduckgo.com/l/?rut=onlyjunk", "//duckduckgo.com/l/?rut=onlyjunk"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, unwrapRedirect(tc.in), "input %q", tc.in)
	}
}
