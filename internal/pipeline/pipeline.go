package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/caselens/caselens/internal/extract"
	"github.com/caselens/caselens/internal/fetch"
	"github.com/caselens/caselens/internal/normalize"
	"github.com/caselens/caselens/internal/schema"
	"github.com/caselens/caselens/internal/search"
)

// Skip/failure reasons recorded in the audit log.
const (
	ReasonFetchFailed   = "content too short or fetch failed"
	ReasonExtractFailed = "LLM extraction failed"
)

// Runner drives the fetch→extract pipeline over search results with a fixed
// concurrency ceiling. Tasks are fully isolated: one task's failure or panic
// never affects its siblings, and the run always waits for every task.
type Runner struct {
	Fetcher   *fetch.Fetcher
	Extractor *extract.Adapter
	// PrimaryDomains mark hosts whose pages start as primary information.
	PrimaryDomains []string
	// Concurrency is the admission limit. Minimum 1.
	Concurrency int
	Audit       *Sink
	// Vocab and DefaultProduct parameterize per-record normalization.
	Vocab          normalize.Vocabulary
	DefaultProduct string
}

// Run processes every search result and returns the accumulated records in
// task-completion order. The ordering is nondeterministic under concurrency;
// dedup and identifier assignment downstream operate on whatever order
// completion produced.
func (r *Runner) Run(ctx context.Context, results []search.Result) []schema.Record {
	n := r.Concurrency
	if n < 1 {
		n = 1
	}

	var mu sync.Mutex
	records := make([]schema.Record, 0, len(results))

	var g errgroup.Group
	g.SetLimit(n)
	for _, res := range results {
		res := res
		g.Go(func() error {
			rec := r.runTask(ctx, res)
			if rec != nil {
				mu.Lock()
				records = append(records, rec)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	log.Info().Int("urls", len(results)).Int("records", len(records)).Msg("pipeline complete")
	return records
}

// runTask runs one URL through fetch, extraction, and normalization, and
// writes exactly one audit entry whatever the outcome.
func (r *Runner) runTask(ctx context.Context, res search.Result) (rec schema.Record) {
	start := time.Now()
	entry := Entry{URL: res.URL, Host: hostOf(res.URL), Status: StatusFailed}

	defer func() {
		if p := recover(); p != nil {
			entry.Status = StatusFailed
			entry.Reason = fmt.Sprintf("panic: %v", p)
			entry.TimeSec = time.Since(start).Seconds()
			r.Audit.Write(entry)
			rec = nil
		}
	}()

	content := r.Fetcher.Fetch(ctx, res.URL)
	if content == nil {
		entry.Status = StatusSkipped
		entry.Reason = ReasonFetchFailed
		entry.TimeSec = time.Since(start).Seconds()
		r.Audit.Write(entry)
		return nil
	}

	hint := schema.InfoSecondary
	if hostMatchesAny(content.Host, r.PrimaryDomains) {
		hint = schema.InfoPrimary
	}

	rec, err := r.Extractor.Extract(ctx, content, hint)
	if err != nil {
		entry.Status = StatusFailed
		entry.Reason = ReasonExtractFailed
		entry.TimeSec = time.Since(start).Seconds()
		r.Audit.Write(entry)
		return nil
	}

	rec[schema.FieldSourceURL] = res.URL
	normalize.Apply(rec, r.Vocab, r.DefaultProduct)

	entry.Status = StatusSuccess
	entry.InfoType = rec[schema.FieldInfoType]
	entry.DetectedDate = rec[schema.FieldDate]
	entry.TimeSec = time.Since(start).Seconds()
	r.Audit.Write(entry)
	return rec
}

// AuditDuplicates records one duplicate entry per dropped record so dedup
// decisions are visible in the same stream as task outcomes.
func (r *Runner) AuditDuplicates(dropped []schema.Record) {
	for _, rec := range dropped {
		u := rec[schema.FieldSourceURL]
		r.Audit.Write(Entry{
			URL:    u,
			Host:   hostOf(u),
			Status: StatusDuplicate,
			Reason: "dedup key already seen: " + rec[schema.FieldDedupKey],
		})
	}
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func hostMatchesAny(host string, domains []string) bool {
	for _, d := range domains {
		if d != "" && strings.Contains(host, d) {
			return true
		}
	}
	return false
}
