// Package robots implements a small robots.txt gate for the page fetcher.
// Rules are fetched once per host and held in memory for the run; a host
// whose robots.txt cannot be retrieved is treated as allow-all, since search
// results already come from the public web.
package robots

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Rules holds the parsed directive groups of one robots.txt.
type Rules struct {
	Groups []Group
}

// Group is one user-agent block.
type Group struct {
	Agents   []string
	Allow    []string
	Disallow []string
}

// Gate answers "may I fetch this URL" per robots.txt, one lookup per host.
type Gate struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds the robots.txt fetch. Zero means 10s.
	Timeout time.Duration

	mu    sync.Mutex
	hosts map[string]Rules
}

// Allowed reports whether rawURL may be fetched for the gate's user agent.
// Unparseable URLs and hosts without reachable robots.txt are allowed.
func (g *Gate) Allowed(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return true
	}
	rules := g.rulesFor(ctx, u)
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return rules.IsAllowed(g.UserAgent, path)
}

func (g *Gate) rulesFor(ctx context.Context, u *url.URL) Rules {
	host := strings.ToLower(u.Hostname())

	g.mu.Lock()
	if g.hosts == nil {
		g.hosts = make(map[string]Rules)
	}
	if r, ok := g.hosts[host]; ok {
		g.mu.Unlock()
		return r
	}
	g.mu.Unlock()

	rules := g.fetch(ctx, u.Scheme+"://"+u.Host+"/robots.txt")

	g.mu.Lock()
	g.hosts[host] = rules
	g.mu.Unlock()
	return rules
}

func (g *Gate) fetch(ctx context.Context, robotsURL string) Rules {
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return Rules{}
	}
	if g.UserAgent != "" {
		req.Header.Set("User-Agent", g.UserAgent)
	}
	client := g.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Rules{}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Rules{}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Rules{}
	}
	return Parse(string(data))
}

// Parse reads robots.txt text into directive groups. Unknown directives and
// comments are skipped.
func Parse(text string) Rules {
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var groups []Group
	current := Group{}
	flush := func() {
		if len(current.Agents) == 0 && len(current.Allow) == 0 && len(current.Disallow) == 0 {
			return
		}
		groups = append(groups, current)
		current = Group{}
	}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		colon := strings.IndexByte(line, ':')
		if colon <= 0 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(line[:colon]))
		val := strings.TrimSpace(line[colon+1:])
		switch key {
		case "user-agent", "useragent":
			if len(current.Agents) > 0 && (len(current.Allow) > 0 || len(current.Disallow) > 0) {
				flush()
			}
			current.Agents = append(current.Agents, strings.ToLower(val))
		case "allow":
			current.Allow = append(current.Allow, val)
		case "disallow":
			current.Disallow = append(current.Disallow, val)
		}
	}
	flush()
	return Rules{Groups: groups}
}

// IsAllowed evaluates a path against the rules for the given user agent.
// The most specific matching user-agent group is selected (longest agent
// token, wildcard "*" losing to any named match); within it the most
// specific matching directive wins, Allow beating Disallow on ties. No
// matching directive means allow.
func (r Rules) IsAllowed(userAgent, path string) bool {
	idx := r.selectGroup(userAgent)
	if idx < 0 {
		return true
	}
	grp := r.Groups[idx]

	bestScore := -1
	bestAllow := true
	evaluate := func(patterns []string, isAllow bool) {
		for _, p := range patterns {
			if p == "" {
				continue
			}
			if !patternMatches(p, path) {
				continue
			}
			score := patternSpecificity(p)
			if score > bestScore || (score == bestScore && isAllow && !bestAllow) {
				bestScore = score
				bestAllow = isAllow
			}
		}
	}
	evaluate(grp.Disallow, false)
	evaluate(grp.Allow, true)

	if bestScore == -1 {
		return true
	}
	return bestAllow
}

func (r Rules) selectGroup(userAgent string) int {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	bestIdx := -1
	bestScore := -1
	for i, g := range r.Groups {
		for _, a := range g.Agents {
			token := strings.ToLower(strings.TrimSpace(a))
			if token == "" {
				continue
			}
			var score int
			switch {
			case token == "*":
				score = 0
			case strings.Contains(ua, token):
				score = len(token)
			default:
				continue
			}
			if score > bestScore {
				bestScore = score
				bestIdx = i
			}
		}
	}
	return bestIdx
}

// patternMatches supports '*' wildcards and a trailing '$' end anchor,
// matching anchored at the start of the path.
func patternMatches(pattern, path string) bool {
	anchorEnd := strings.HasSuffix(pattern, "$")
	p := strings.TrimSuffix(pattern, "$")
	var b strings.Builder
	b.WriteString("^")
	for _, rn := range p {
		if rn == '*' {
			b.WriteString(".*")
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(rn)))
	}
	if anchorEnd {
		b.WriteString("$")
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(path)
}

// patternSpecificity scores a pattern by its concrete length, ignoring '*'
// and a trailing '$'.
func patternSpecificity(pattern string) int {
	p := strings.TrimSuffix(pattern, "$")
	return len(strings.ReplaceAll(p, "*", ""))
}
