package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/caselens/caselens/internal/cache"
	"github.com/caselens/caselens/internal/extract"
	"github.com/caselens/caselens/internal/fetch"
	"github.com/caselens/caselens/internal/llm"
	"github.com/caselens/caselens/internal/normalize"
	"github.com/caselens/caselens/internal/pipeline"
	"github.com/caselens/caselens/internal/report"
	"github.com/caselens/caselens/internal/robots"
	"github.com/caselens/caselens/internal/schema"
	"github.com/caselens/caselens/internal/search"
)

// ErrNoRecords reports a run that completed but produced zero records, so
// callers can exit with a distinct status.
var ErrNoRecords = errors.New("no records collected")

const userAgent = "caselens/1.0 (+https://github.com/caselens/caselens)"

// App wires the search, fetch, extraction, and reporting stages for one run.
type App struct {
	cfg      Config
	tpl      *Template
	searcher search.Provider
	runner   *pipeline.Runner
	audit    *pipeline.Sink
}

// New resolves the template and provider and builds a ready-to-run App.
// Configuration and template problems are fatal here, before any network
// traffic.
func New(cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	tpl := DefaultTemplate()
	if cfg.TemplatePath != "" {
		var err error
		tpl, err = LoadTemplate(cfg.TemplatePath)
		if err != nil {
			return nil, err
		}
	}
	if cfg.TargetRows > 0 {
		tpl.Execution.TargetRows = cfg.TargetRows
	}
	if cfg.Concurrency > 0 {
		tpl.Execution.Concurrency = cfg.Concurrency
	}
	if cfg.PerQuery > 0 {
		tpl.Execution.PerQuery = cfg.PerQuery
	}

	baseURL := cfg.LLMBaseURL
	if cfg.Provider == "ollama" && cfg.OllamaURL != "" {
		baseURL = cfg.OllamaURL
	}
	provider, err := llm.New(llm.Options{
		Kind:    cfg.Provider,
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		BaseURL: baseURL,
	})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	audit, err := pipeline.NewSink(filepath.Join(cfg.OutputDir, cfg.OutPrefix+"log.jsonl"))
	if err != nil {
		return nil, err
	}

	var pageCache *cache.PageCache
	if cfg.CacheDir != "" {
		pageCache = &cache.PageCache{Dir: cfg.CacheDir, MaxAge: cfg.CacheMaxAge}
		if cfg.CacheClear {
			if err := pageCache.Clear(); err != nil {
				return nil, fmt.Errorf("clear cache: %w", err)
			}
		}
	}

	httpClient := &http.Client{}
	vocab := normalize.Vocabulary{
		Categories: tpl.Normalization.Categories,
		Synonyms:   tpl.Normalization.Synonyms,
		Fallback:   tpl.Normalization.Fallback,
	}

	return &App{
		cfg: cfg,
		tpl: tpl,
		searcher: &search.DuckDuckGo{
			BaseURL:    cfg.SearchBaseURL,
			HTTPClient: httpClient,
			UserAgent:  userAgent,
			Limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
		},
		runner: &pipeline.Runner{
			// The fetcher builds its own client so its redirect cap applies.
			Fetcher: &fetch.Fetcher{
				UserAgent: userAgent,
				Cache:     pageCache,
				Robots: &robots.Gate{
					HTTPClient: httpClient,
					UserAgent:  userAgent,
				},
			},
			Extractor: &extract.Adapter{
				Provider:     provider,
				SystemPrompt: tpl.Extraction.SystemPrompt,
				UserTemplate: tpl.Extraction.UserPrompt,
				Required:     []string{schema.FieldTitle, schema.FieldCategory, schema.FieldSummary},
			},
			PrimaryDomains: tpl.Search.PrimaryDomains,
			Concurrency:    tpl.Execution.Concurrency,
			Audit:          audit,
			Vocab:          vocab,
			DefaultProduct: tpl.Normalization.DefaultProduct,
		},
		audit: audit,
	}, nil
}

// Run executes the full collection: search fan-out, the fetch→extract
// pipeline, dedup, ID assignment, and report rendering. It returns
// ErrNoRecords when the run yields nothing worth writing.
func (a *App) Run(ctx context.Context) error {
	defer a.audit.Close()
	start := time.Now()

	results := a.collectResults(ctx)
	if len(results) == 0 {
		return ErrNoRecords
	}
	log.Info().Int("urls", len(results)).Msg("search complete")

	records := a.runner.Run(ctx, results)

	unique, dropped := normalize.Deduplicate(records)
	a.runner.AuditDuplicates(dropped)
	normalize.AssignIDs(unique)

	if len(unique) == 0 {
		return ErrNoRecords
	}
	target := a.tpl.Execution.TargetRows
	if len(unique) < target*80/100 {
		log.Warn().
			Int("records", len(unique)).
			Int("target", target).
			Msg("collected records fall short of target")
	}

	if err := a.writeReports(unique); err != nil {
		return err
	}

	log.Info().
		Int("records", len(unique)).
		Int("duplicates", len(dropped)).
		Dur("elapsed", time.Since(start)).
		Msg("run complete")
	return nil
}

// collectResults runs all template queries and merges the grouped results
// under the template's domain policy. Individual query failures are logged
// and skipped; an empty merge is the caller's problem.
func (a *App) collectResults(ctx context.Context) []search.Result {
	queries := a.tpl.AllQueries()
	groups := make([][]search.Result, 0, len(queries))
	for _, q := range queries {
		rs, err := a.searcher.Search(ctx, q, a.tpl.Execution.PerQuery)
		if err != nil {
			log.Warn().Err(err).Str("query", q).Msg("search failed")
			continue
		}
		log.Debug().Str("query", q).Int("results", len(rs)).Msg("query done")
		groups = append(groups, rs)
	}
	return search.Merge(groups, search.DomainPolicy{
		Blocked:  a.tpl.Search.BlockedDomains,
		Priority: a.tpl.Search.PriorityDomains,
	})
}

// writeReports renders every artifact for the phase. Phase 2 additionally
// renders the focus subset over the template's focus categories.
func (a *App) writeReports(records []schema.Record) error {
	out := func(name string) string {
		return filepath.Join(a.cfg.OutputDir, a.cfg.OutPrefix+name)
	}
	fields := a.tpl.Schema.Fields
	title := a.tpl.Description
	if title == "" {
		title = a.tpl.Name
	}

	if err := report.WriteMarkdown(out("full.md"), title, fields, records); err != nil {
		return err
	}
	if err := report.WriteCSV(out("full.csv"), fields, records); err != nil {
		return err
	}
	if err := report.WritePivots(out("pivots.md"), records); err != nil {
		return err
	}
	if err := report.WriteTopROI(out("topROI.md"), records); err != nil {
		return err
	}

	if a.cfg.Phase == 2 && len(a.tpl.Output.FocusCategories) > 0 {
		focus := report.FilterCategories(records, a.tpl.Output.FocusCategories)
		if len(focus) > 0 {
			if err := report.WriteMarkdown(out("focus.md"), title+" (focus)", fields, focus); err != nil {
				return err
			}
			if err := report.WriteCSV(out("focus.csv"), fields, focus); err != nil {
				return err
			}
		}
	}

	if a.cfg.EnablePDF {
		if err := report.WritePDF(out("full.pdf"), title, records); err != nil {
			return err
		}
	}
	return nil
}
