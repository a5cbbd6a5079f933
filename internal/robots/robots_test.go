package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleRobots = `
# comment
User-agent: *
Disallow: /private/
Allow: /private/ok

User-agent: caselens
Disallow: /blocked$
`

func TestParseGroups(t *testing.T) {
	r := Parse(sampleRobots)
	assert.Len(t, r.Groups, 2)
	assert.Equal(t, []string{"*"}, r.Groups[0].Agents)
	assert.Equal(t, []string{"/private/"}, r.Groups[0].Disallow)
	assert.Equal(t, []string{"/private/ok"}, r.Groups[0].Allow)
	assert.Equal(t, []string{"caselens"}, r.Groups[1].Agents)
}

func TestIsAllowed(t *testing.T) {
	r := Parse(sampleRobots)
	cases := []struct {
		ua, path string
		want     bool
	}{
		{"otherbot", "/public/page", true},
		{"otherbot", "/private/page", false},
		{"otherbot", "/private/ok", true}, // more specific allow wins
		{"caselens/1.0", "/blocked", false},
		{"caselens/1.0", "/blocked/deeper", true}, // end anchor
		{"caselens/1.0", "/private/page", true},   // named group shadows wildcard
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, r.IsAllowed(tc.ua, tc.path), "ua=%s path=%s", tc.ua, tc.path)
	}
}

func TestIsAllowedWildcardPattern(t *testing.T) {
	r := Parse("User-agent: *\nDisallow: /*.pdf$\n")
	assert.False(t, r.IsAllowed("bot", "/files/report.pdf"))
	assert.True(t, r.IsAllowed("bot", "/files/report.pdf.html"))
}

func TestEmptyRulesAllowEverything(t *testing.T) {
	var r Rules
	assert.True(t, r.IsAllowed("bot", "/anything"))
}

func TestGateFetchesOncePerHost(t *testing.T) {
	robotsCalls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			robotsCalls++
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /secret/\n"))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	g := &Gate{UserAgent: "caselens"}
	ctx := context.Background()
	assert.True(t, g.Allowed(ctx, srv.URL+"/page"))
	assert.False(t, g.Allowed(ctx, srv.URL+"/secret/page"))
	assert.True(t, g.Allowed(ctx, srv.URL+"/another"))
	assert.Equal(t, 1, robotsCalls)
}

func TestGateUnreachableRobotsAllows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := &Gate{}
	assert.True(t, g.Allowed(context.Background(), srv.URL+"/anything"))
}
